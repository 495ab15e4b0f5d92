package httpclient

import (
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/fetchkit/logger"
)

func testClient() *Client {
	return &Client{log: logger.Nop()}
}

func appendStep(id string, order *[]string) *BeforeInterceptor {
	return Before(id, func(_ *Client, r *Request) (*Request, error) {
		*order = append(*order, id)
		r.Headers.Add("X-Steps", id)
		return r, nil
	})
}

func TestRunBefore_Order(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"single", []string{"a"}},
		{"three", []string{"a", "b", "c"}},
		{"reversed", []string{"c", "b", "a"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var order []string
			var chain []*BeforeInterceptor
			for _, id := range tc.ids {
				chain = append(chain, appendStep(id, &order))
			}

			out, err := runBefore(testClient(), NewRequest("GET", "p"), chain)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(order, ",") != strings.Join(tc.ids, ",") {
				t.Errorf("invocation order %v, want %v", order, tc.ids)
			}
			if got := out.Headers.Values("X-Steps"); strings.Join(got, ",") != strings.Join(tc.ids, ",") {
				t.Errorf("later stages should see earlier edits, got %v", got)
			}
		})
	}
}

func TestRunBefore_EmptyChainReturnsSeed(t *testing.T) {
	req := NewRequest("GET", "p")
	out, err := runBefore(testClient(), req, nil)
	if err != nil || out != req {
		t.Fatalf("expected seed back unchanged, got %v %v", out, err)
	}
}

func TestRunBefore_CopyOnWrite(t *testing.T) {
	req := NewRequest("GET", "p")
	req.SetHeader("X-A", "orig")

	var seen *Request
	chain := []*BeforeInterceptor{
		Before("mutate", func(_ *Client, r *Request) (*Request, error) {
			r.Headers.Set("X-A", "changed")
			return r, nil
		}),
		Before("capture", func(_ *Client, r *Request) (*Request, error) {
			seen = r
			r.Headers.Set("X-B", "late")
			return r, nil
		}),
	}

	out, err := runBefore(testClient(), req, chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Headers.Get("X-A") != "orig" {
		t.Errorf("seed request mutated: %v", req.Headers)
	}
	if seen.Headers.Get("X-A") != "changed" || out.Headers.Get("X-B") != "late" {
		t.Errorf("edits not passed forward: %v", out.Headers)
	}
}

func TestRunBefore_Violations(t *testing.T) {
	tests := []struct {
		name    string
		ic      *BeforeInterceptor
		wantMsg string
	}{
		{
			name:    "nil request with id",
			ic:      Before("auth", func(*Client, *Request) (*Request, error) { return nil, nil }),
			wantMsg: `before interceptor "auth": didn't return a request`,
		},
		{
			name:    "nil request without id",
			ic:      Before("", func(*Client, *Request) (*Request, error) { return nil, nil }),
			wantMsg: `before interceptor "unknown": didn't return a request`,
		},
		{
			name: "missing method",
			ic: Before("strip", func(_ *Client, r *Request) (*Request, error) {
				r.Method = ""
				return r, nil
			}),
			wantMsg: `before interceptor "strip": returned a request without a method`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runBefore(testClient(), NewRequest("GET", "p"), []*BeforeInterceptor{tc.ic})
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tc.wantMsg)
			}
			if !errors.Is(err, ErrContractViolation) {
				t.Error("expected ErrContractViolation")
			}
		})
	}
}

func TestRunBefore_StopsAtFailure(t *testing.T) {
	cause := errors.New("token expired")
	called := false
	chain := []*BeforeInterceptor{
		Before("auth", func(*Client, *Request) (*Request, error) { return nil, cause }),
		Before("later", func(_ *Client, r *Request) (*Request, error) {
			called = true
			return r, nil
		}),
	}

	_, err := runBefore(testClient(), NewRequest("GET", "p"), chain)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if errors.Is(err, ErrContractViolation) {
		t.Error("an interceptor's own error is not a contract violation")
	}
	var ce *ChainError
	if !errors.As(err, &ce) || ce.ID != "auth" || ce.Stage != StageBefore {
		t.Errorf("unexpected chain error %+v", ce)
	}
	if called {
		t.Error("chain must stop at the first failure")
	}
}

func TestRunBefore_PanicBecomesError(t *testing.T) {
	chain := []*BeforeInterceptor{
		Before("boom", func(*Client, *Request) (*Request, error) { panic("kaboom") }),
	}
	_, err := runBefore(testClient(), NewRequest("GET", "p"), chain)
	if err == nil || !strings.Contains(err.Error(), `"boom": panic: kaboom`) {
		t.Fatalf("expected panic turned into error, got %v", err)
	}
}

func TestRunAfter(t *testing.T) {
	resp := NewResponse(&BufferedResponse{StatusCode: 200})
	var order []string
	chain := []*AfterInterceptor{
		After("decode", func(_ *Client, _ *Request, r *Response) (*Response, error) {
			order = append(order, "decode")
			r.Data = "decoded"
			return r, nil
		}),
		After("", func(_ *Client, _ *Request, r *Response) (*Response, error) {
			order = append(order, "second")
			if r.Data != "decoded" {
				t.Errorf("expected data from previous stage, got %v", r.Data)
			}
			return r, nil
		}),
	}

	out, err := runAfter(testClient(), NewRequest("GET", "p"), resp, chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Data != "decoded" || strings.Join(order, ",") != "decode,second" {
		t.Errorf("unexpected result %v order %v", out.Data, order)
	}
	if resp.Data != nil {
		t.Error("seed response should not be mutated")
	}
}

func TestRunAfter_Violations(t *testing.T) {
	tests := []struct {
		name string
		fn   AfterFunc
	}{
		{"nil response", func(*Client, *Request, *Response) (*Response, error) { return nil, nil }},
		{"missing raw", func(*Client, *Request, *Response) (*Response, error) { return &Response{Data: 1}, nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runAfter(testClient(), NewRequest("GET", "p"), NewResponse(&BufferedResponse{StatusCode: 200}),
				[]*AfterInterceptor{After("", tc.fn)})
			if err == nil || !errors.Is(err, ErrContractViolation) {
				t.Fatalf("expected contract violation, got %v", err)
			}
			if !strings.Contains(err.Error(), `after interceptor "unknown": didn't return a response`) {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}
