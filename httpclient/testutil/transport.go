package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/fetchkit/httpclient"
)

// Reply is a scripted transport outcome: a response, or an error when Err
// is set.
type Reply struct {
	Status  int
	Headers httpclient.Headers
	Body    []byte
	Err     error
}

// Status returns an empty reply with the given status.
func Status(code int) Reply {
	return Reply{Status: code}
}

// Text returns a text/plain reply.
func Text(code int, body string) Reply {
	return Reply{
		Status:  code,
		Headers: httpclient.NewHeaders("Content-Type", "text/plain"),
		Body:    []byte(body),
	}
}

// JSON returns an application/json reply with v marshalled as the body.
// It panics if v cannot be marshalled.
func JSON(code int, v any) Reply {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal reply: %v", err))
	}
	return Reply{
		Status:  code,
		Headers: httpclient.NewHeaders("Content-Type", "application/json"),
		Body:    body,
	}
}

// Fail returns a reply that makes the transport fail with err.
func Fail(err error) Reply {
	return Reply{Err: err}
}

// Response builds a raw response directly, for tests of after or error
// interceptors that never reach a transport.
func Response(code int, body string) *httpclient.Response {
	return httpclient.NewResponse(&httpclient.BufferedResponse{
		StatusCode: code,
		Headers:    httpclient.Headers{},
		Body:       []byte(body),
	})
}

// Call records one transport invocation.
type Call struct {
	URL     string
	Method  string
	Headers httpclient.Headers
	Request *httpclient.Request
}

type route struct {
	path  string
	reply Reply
}

// Transport is a scripted httpclient.Transport. A call is answered by the
// first route whose path matches the end of the URL path, then by the next
// queued reply, then by Default.
type Transport struct {
	mu     sync.Mutex
	routes []route
	queue  []Reply
	calls  []Call

	// Default answers calls nothing else matched. A zero Default replies 200.
	Default Reply
}

var _ httpclient.Transport = (*Transport)(nil)

// NewTransport creates an empty scripted transport.
func NewTransport() *Transport {
	return &Transport{}
}

// Route answers every call whose URL path ends with path.
func (t *Transport) Route(path string, r Reply) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route{path: "/" + strings.Trim(path, "/"), reply: r})
	return t
}

// Enqueue adds replies served once each, in order.
func (t *Transport) Enqueue(replies ...Reply) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, replies...)
	return t
}

// RoundTrip implements httpclient.Transport.
func (t *Transport) RoundTrip(ctx context.Context, url string, req *httpclient.Request) (httpclient.RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.calls = append(t.calls, Call{
		URL:     url,
		Method:  req.Method,
		Headers: req.Headers.Clone(),
		Request: req.Clone(),
	})
	reply := t.next(url)
	t.mu.Unlock()

	if reply.Err != nil {
		return nil, reply.Err
	}
	status := reply.Status
	if status == 0 {
		status = 200
	}
	headers := reply.Headers.Clone()
	return &httpclient.BufferedResponse{StatusCode: status, Headers: headers, Body: reply.Body}, nil
}

func (t *Transport) next(url string) Reply {
	path := url
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	for _, r := range t.routes {
		if strings.HasSuffix(path, r.path) {
			return r.reply
		}
	}
	if len(t.queue) > 0 {
		r := t.queue[0]
		t.queue = t.queue[1:]
		return r
	}
	return t.Default
}

// Calls returns every recorded call in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// CallCount returns the number of calls made.
func (t *Transport) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// LastCall returns the most recent call. It panics if there was none.
func (t *Transport) LastCall() Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		panic("testutil: no calls recorded")
	}
	return t.calls[len(t.calls)-1]
}
