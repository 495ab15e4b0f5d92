package httpclient_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/httpclient/testutil"
	"github.com/kbukum/fetchkit/logger"
)

func newClient(t *testing.T, tr httpclient.Transport, opts ...httpclient.Option) *httpclient.Client {
	t.Helper()
	opts = append([]httpclient.Option{httpclient.WithLogger(logger.Nop())}, opts...)
	c, err := httpclient.New(httpclient.Config{Base: "http://api.test", Transport: tr}, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestClient_BeforeHeaderReachesTransport(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)
	c.AddBefore(httpclient.Before("x-a", func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		r.SetHeader("X-A", "1")
		return r, nil
	}))

	resp, err := c.Get(context.Background(), "things")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Status() != 200 {
		t.Errorf("status = %d, want 200", resp.Status())
	}
	call := tr.LastCall()
	if call.Headers.Get("X-A") != "1" {
		t.Errorf("X-A = %q, want 1", call.Headers.Get("X-A"))
	}
	if call.URL != "http://api.test/things" {
		t.Errorf("URL = %q", call.URL)
	}
}

func TestClient_ServerErrorNotRecovered(t *testing.T) {
	tr := testutil.NewTransport().Route("broken", testutil.Text(500, "oops"))
	c := newClient(t, tr)

	seen := 0
	c.AddError(httpclient.OnError("observe", func(_ *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
		seen++
		return nil, nil
	}))

	resp, err := c.Get(context.Background(), "broken")
	if err == nil {
		t.Fatalf("expected error, got response %v", resp)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q should mention status", err.Error())
	}
	if seen != 1 {
		t.Errorf("error interceptor called %d times, want 1", seen)
	}

	var e *httpclient.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *httpclient.Error, got %T", err)
	}
	if e.Kind != httpclient.KindHTTP || e.StatusCode != 500 || !e.Retryable {
		t.Errorf("unexpected error fields %+v", e)
	}
	if e.Response == nil || e.Response.Status() != 500 {
		t.Error("expected failing response attached")
	}
	if e.Request == nil || e.Config == nil {
		t.Error("expected request and config attached")
	}
}

func TestClient_RecoverByReinvoking(t *testing.T) {
	tr := testutil.NewTransport().
		Route("private", testutil.Status(401)).
		Route("public", testutil.JSON(200, map[string]string{"ok": "yes"}))
	c := newClient(t, tr)

	c.AddError(httpclient.OnError("fallback", func(c *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
		if !httpclient.IsAuth(e) {
			return nil, nil
		}
		return c.Do(e.Request.Context(), httpclient.NewRequest("GET", "public"))
	}))

	resp, err := c.Get(context.Background(), "private")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	var body map[string]string
	if err := resp.DecodeJSON(&body); err != nil || body["ok"] != "yes" {
		t.Errorf("unexpected body %v (%v)", body, err)
	}
	if tr.CallCount() != 2 {
		t.Errorf("expected 2 transport calls, got %d", tr.CallCount())
	}
}

func TestClient_FirstRecoveryWins(t *testing.T) {
	tr := testutil.NewTransport()
	tr.Default = testutil.Status(503)
	c := newClient(t, tr)

	var order []string
	c.AddError(
		httpclient.OnError("pass", func(*httpclient.Client, *httpclient.Error) (*httpclient.Response, error) {
			order = append(order, "pass")
			return nil, nil
		}),
		httpclient.OnError("recover", func(*httpclient.Client, *httpclient.Error) (*httpclient.Response, error) {
			order = append(order, "recover")
			return testutil.Response(200, "cached"), nil
		}),
		httpclient.OnError("never", func(*httpclient.Client, *httpclient.Error) (*httpclient.Response, error) {
			order = append(order, "never")
			return testutil.Response(200, "late"), nil
		}),
	)

	afterRan := false
	c.AddAfter(httpclient.After("after", func(_ *httpclient.Client, _ *httpclient.Request, r *httpclient.Response) (*httpclient.Response, error) {
		afterRan = true
		return r, nil
	}))

	resp, err := c.Get(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := resp.Raw.Bytes()
	if string(body) != "cached" {
		t.Errorf("body = %q, want cached", body)
	}
	if strings.Join(order, ",") != "pass,recover" {
		t.Errorf("unexpected order %v", order)
	}
	if afterRan {
		t.Error("recovered responses must not run the after chain")
	}
}

func TestClient_ThrownErrorReplacesFailure(t *testing.T) {
	tr := testutil.NewTransport()
	tr.Default = testutil.Status(404)
	c := newClient(t, tr)

	boom := errors.New("lookup failed")
	var secondSaw *httpclient.Error
	c.AddError(
		httpclient.OnError("throw", func(*httpclient.Client, *httpclient.Error) (*httpclient.Response, error) {
			return nil, boom
		}),
		httpclient.OnError("inspect", func(_ *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
			secondSaw = e
			return nil, nil
		}),
	)

	_, err := c.Get(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Fatalf("expected thrown error, got %v", err)
	}
	if !httpclient.IsKind(err, httpclient.KindRecovery) {
		t.Errorf("expected recovery kind, got %v", err)
	}
	if secondSaw == nil || !errors.Is(secondSaw, boom) {
		t.Error("later interceptors should see the replaced error")
	}
}

func TestClient_NoErrorInterceptors(t *testing.T) {
	tr := testutil.NewTransport()
	tr.Default = testutil.Status(429)
	c := newClient(t, tr)

	_, err := c.Get(context.Background(), "x")
	if !httpclient.IsRateLimit(err) || !httpclient.IsRetryable(err) {
		t.Errorf("expected retryable rate limit error, got %v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	refused := errors.New("connection refused")
	tr := testutil.NewTransport().Enqueue(testutil.Fail(refused))
	c := newClient(t, tr)

	_, err := c.Get(context.Background(), "x")
	var e *httpclient.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *httpclient.Error, got %v", err)
	}
	if e.Kind != httpclient.KindTransport || e.Response != nil || !errors.Is(err, refused) {
		t.Errorf("unexpected transport error %+v", e)
	}
}

func TestClient_NoTransportIsRecoverable(t *testing.T) {
	c, err := httpclient.New(httpclient.Config{}, httpclient.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	_, err = c.Get(context.Background(), "x")
	if !errors.Is(err, httpclient.ErrNoTransport) {
		t.Fatalf("expected ErrNoTransport, got %v", err)
	}

	c.AddError(httpclient.OnError("stub", func(_ *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
		if errors.Is(e, httpclient.ErrNoTransport) {
			return testutil.Response(200, "offline"), nil
		}
		return nil, nil
	}))
	resp, err := c.Get(context.Background(), "x")
	if err != nil || resp.Status() != 200 {
		t.Fatalf("expected stubbed response, got %v %v", resp, err)
	}
}

func TestClient_BeforeFailureSkipsTransport(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)
	c.AddBefore(httpclient.Before("bad", func(*httpclient.Client, *httpclient.Request) (*httpclient.Request, error) {
		return nil, nil
	}))

	_, err := c.Get(context.Background(), "x")
	if !errors.Is(err, httpclient.ErrContractViolation) || !httpclient.IsKind(err, httpclient.KindBefore) {
		t.Fatalf("expected before contract violation, got %v", err)
	}
	if !strings.Contains(err.Error(), `"bad": didn't return a request`) {
		t.Errorf("unexpected message %q", err.Error())
	}
	if tr.CallCount() != 0 {
		t.Error("transport must not be called")
	}
}

func TestClient_AfterChainTransformsResponse(t *testing.T) {
	tr := testutil.NewTransport().Route("user", testutil.JSON(200, map[string]string{"name": "ada"}))
	c := newClient(t, tr)
	c.AddAfter(httpclient.After("decode", func(_ *httpclient.Client, _ *httpclient.Request, r *httpclient.Response) (*httpclient.Response, error) {
		var v map[string]string
		if err := r.DecodeJSON(&v); err != nil {
			return nil, err
		}
		r.Data = v["name"]
		return r, nil
	}))

	resp, err := c.Get(context.Background(), "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data != "ada" {
		t.Errorf("Data = %v, want ada", resp.Data)
	}
}

func TestClient_AfterFailureCarriesResponse(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)
	c.AddAfter(httpclient.After("reject", func(*httpclient.Client, *httpclient.Request, *httpclient.Response) (*httpclient.Response, error) {
		return nil, errors.New("unexpected payload")
	}))

	_, err := c.Get(context.Background(), "x")
	var e *httpclient.Error
	if !errors.As(err, &e) || e.Kind != httpclient.KindAfter {
		t.Fatalf("expected after error, got %v", err)
	}
	if e.Response == nil || e.Response.Status() != 200 {
		t.Error("after failures should carry the response")
	}
}

func TestClient_DefaultsAndRequestHeaders(t *testing.T) {
	tr := testutil.NewTransport()
	c, err := httpclient.New(httpclient.Config{
		Base:      "http://api.test/",
		Method:    "post",
		Headers:   httpclient.NewHeaders("X-Default", "1", "X-Over", "config"),
		Transport: tr,
	}, httpclient.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	req := &httpclient.Request{Path: []string{"items"}, Headers: httpclient.NewHeaders("X-Over", "request")}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() error: %v", err)
	}

	call := tr.LastCall()
	if call.Method != "POST" {
		t.Errorf("method = %q, want POST", call.Method)
	}
	if call.Headers.Get("X-Default") != "1" || call.Headers.Get("X-Over") != "request" {
		t.Errorf("unexpected headers %v", call.Headers)
	}
	if req.Method != "" || req.Headers.Has("X-Default") {
		t.Error("caller request must not be modified")
	}
}

func TestClient_URLBuilding(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	tests := []struct {
		name string
		req  *httpclient.Request
		want string
	}{
		{"segments", httpclient.NewRequest("GET", "users", "a b"), "http://api.test/users/a%20b"},
		{"query", &httpclient.Request{Path: []string{"search"}, Query: httpclient.QueryValues("q", "go lang")}, "http://api.test/search?q=go+lang"},
		{"raw query", &httpclient.Request{Path: []string{"s"}, Query: httpclient.RawQuery("a=1")}, "http://api.test/s?a=1"},
		{"absolute", httpclient.NewRequest("GET", "https://other.test/x"), "https://other.test/x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Do(context.Background(), tc.req); err != nil {
				t.Fatalf("Do() error: %v", err)
			}
			if got := tr.LastCall().URL; got != tc.want {
				t.Errorf("URL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClient_RequestTransportOverride(t *testing.T) {
	primary := testutil.NewTransport()
	override := testutil.NewTransport()
	c := newClient(t, primary)

	if _, err := c.Get(context.Background(), "x", httpclient.WithTransport(override)); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if primary.CallCount() != 0 || override.CallCount() != 1 {
		t.Errorf("override not used: primary=%d override=%d", primary.CallCount(), override.CallCount())
	}
}

func TestClient_AddRemove(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	tag := func(id string) *httpclient.BeforeInterceptor {
		return httpclient.Before(id, func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
			r.Headers.Add("X-Tag", id)
			return r, nil
		})
	}
	a, b, b2 := tag("a"), tag("b"), tag("b")
	c.AddBefore(a, b, b2)

	c.RemoveBefore(a)
	c.RemoveBefore(a)
	if got := len(c.Config().Interceptors.Before); got != 2 {
		t.Fatalf("expected 2 interceptors after removing a, got %d", got)
	}

	c.RemoveBeforeID("b")
	c.RemoveBeforeID("b")
	c.RemoveBeforeID("missing")
	if got := len(c.Config().Interceptors.Before); got != 0 {
		t.Fatalf("expected every b removed, got %d", got)
	}

	c.AddBefore(a, nil)
	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got := tr.LastCall().Headers.Values("X-Tag"); len(got) != 1 || got[0] != "a" {
		t.Errorf("unexpected tags %v", got)
	}

	onErr := httpclient.OnError("e", func(*httpclient.Client, *httpclient.Error) (*httpclient.Response, error) { return nil, nil })
	after := httpclient.After("f", func(_ *httpclient.Client, _ *httpclient.Request, r *httpclient.Response) (*httpclient.Response, error) {
		return r, nil
	})
	c.AddError(onErr)
	c.AddAfter(after)
	c.RemoveError(onErr)
	c.RemoveAfterID("f")
	cfg := c.Config()
	if len(cfg.Interceptors.Error) != 0 || len(cfg.Interceptors.After) != 0 {
		t.Errorf("expected empty chains, got %+v", cfg.Interceptors)
	}
}

func TestClient_ChangesApplyToLaterCalls(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	late := httpclient.Before("late", func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		r.SetHeader("X-Late", "1")
		return r, nil
	})
	c.AddBefore(httpclient.Before("installer", func(c *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		c.AddBefore(late)
		base := "http://changed.test"
		c.Merge(httpclient.ConfigPatch{Base: &base})
		return r, nil
	}))

	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	first := tr.LastCall()
	if first.Headers.Has("X-Late") || first.URL != "http://api.test/x" {
		t.Errorf("in-flight call saw later changes: %+v", first)
	}

	c.RemoveBeforeID("installer")
	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	second := tr.LastCall()
	if !second.Headers.Has("X-Late") || second.URL != "http://changed.test/x" {
		t.Errorf("later call missed changes: %+v", second)
	}
}

func TestClient_SkipSet(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)
	c.AddBefore(httpclient.Before("stub", func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		if r.Skips("stub") {
			return r, nil
		}
		r.SetHeader("X-Stub", "1")
		return r, nil
	}))

	if _, err := c.Get(context.Background(), "x", httpclient.WithSkip("stub")); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if tr.LastCall().Headers.Has("X-Stub") {
		t.Error("skipped interceptor should leave the request alone")
	}

	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !tr.LastCall().Headers.Has("X-Stub") {
		t.Error("interceptor should run when not skipped")
	}
}

func TestClient_Schedule(t *testing.T) {
	tr := testutil.NewTransport()
	var delays []time.Duration
	c := newClient(t, tr, httpclient.WithDelayFunc(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))

	resp, err := c.Schedule(context.Background(), 250*time.Millisecond, httpclient.NewRequest("GET", "x"))
	if err != nil || resp.Status() != 200 {
		t.Fatalf("Schedule() = %v, %v", resp, err)
	}
	if len(delays) != 1 || delays[0] != 250*time.Millisecond {
		t.Errorf("unexpected delays %v", delays)
	}
}

func TestClient_ScheduleCanceled(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Schedule(ctx, time.Hour, httpclient.NewRequest("GET", "x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr.CallCount() != 0 {
		t.Error("aborted schedule must not call the transport")
	}
}

func TestClient_ConcurrentUse(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ic := httpclient.Before("tmp", func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) { return r, nil })
			c.AddBefore(ic)
			if _, err := c.Get(context.Background(), "x"); err != nil {
				t.Errorf("Get() error: %v", err)
			}
			c.RemoveBefore(ic)
		}()
	}
	wg.Wait()

	if tr.CallCount() != 20 {
		t.Errorf("expected 20 calls, got %d", tr.CallCount())
	}
	if n := len(c.Config().Interceptors.Before); n != 0 {
		t.Errorf("expected empty chain, got %d", n)
	}
}

func TestClient_NilInterceptorsInConfigAreDropped(t *testing.T) {
	tr := testutil.NewTransport()
	c, err := httpclient.New(httpclient.Config{
		Base:      "http://api.test",
		Transport: tr,
		Interceptors: httpclient.Interceptors{
			Before: []*httpclient.BeforeInterceptor{nil},
			After:  []*httpclient.AfterInterceptor{nil},
			Error:  []*httpclient.ErrorInterceptor{nil},
		},
	}, httpclient.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	ics := c.Config().Interceptors
	if len(ics.Before)+len(ics.After)+len(ics.Error) != 0 {
		t.Errorf("expected nil entries to be dropped, got %+v", ics)
	}

	tr.Default = testutil.Status(500)
	c.RemoveErrorID("anything")
	if _, err := c.Get(context.Background(), "x"); !httpclient.IsServerError(err) {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestClient_RecoveryWithoutRawIsViolation(t *testing.T) {
	tr := testutil.NewTransport()
	tr.Default = testutil.Status(500)
	c := newClient(t, tr)

	var laterSaw *httpclient.Error
	c.AddError(
		httpclient.OnError("shapeless", func(*httpclient.Client, *httpclient.Error) (*httpclient.Response, error) {
			return &httpclient.Response{}, nil
		}),
		httpclient.OnError("inspect", func(_ *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
			laterSaw = e
			return nil, nil
		}),
	)

	resp, err := c.Get(context.Background(), "x")
	if resp != nil {
		t.Fatalf("expected no response, got %+v", resp)
	}
	if !errors.Is(err, httpclient.ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	if !httpclient.IsKind(err, httpclient.KindRecovery) {
		t.Errorf("expected recovery kind, got %v", err)
	}
	var ce *httpclient.ChainError
	if !errors.As(err, &ce) || ce.Stage != httpclient.StageError || ce.ID != "shapeless" {
		t.Errorf("expected error-stage chain error from shapeless, got %v", err)
	}
	if laterSaw == nil || !errors.Is(laterSaw, httpclient.ErrContractViolation) {
		t.Error("later interceptors should see the violation")
	}
}

func TestClient_ReaderBodyIsBuffered(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	if _, err := c.Post(context.Background(), "x", httpclient.WithBody(strings.NewReader("hello"))); err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	body, ok := tr.LastCall().Request.Body.([]byte)
	if !ok || string(body) != "hello" {
		t.Errorf("expected buffered body %q, got %#v", "hello", tr.LastCall().Request.Body)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestClient_UnreadableBody(t *testing.T) {
	tr := testutil.NewTransport()
	c := newClient(t, tr)

	_, err := c.Post(context.Background(), "x", httpclient.WithBody(failingReader{}))
	e, ok := httpclient.AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if e.Kind != httpclient.KindTransport || e.Code != httpclient.ErrCodeValidation || e.Retryable {
		t.Errorf("unexpected error: kind=%s code=%s retryable=%v", e.Kind, e.Code, e.Retryable)
	}
	if tr.CallCount() != 0 {
		t.Errorf("transport should not be called, got %d calls", tr.CallCount())
	}
}
