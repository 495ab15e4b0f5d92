package httpclient

import (
	"context"
	"slices"
	"strings"
)

// Request describes one logical call. Before interceptors receive a clone
// and return the request the next stage should see; once the before chain
// finishes the request is treated as read-only.
type Request struct {
	// Path holds one segment (used verbatim) or several segments
	// (escaped individually and joined with "/").
	Path []string
	// Method is the HTTP method. Empty means the client default.
	Method string
	// Headers are merged over the client default headers.
	Headers Headers
	// Query is optional.
	Query *Query
	// Body is handed to the transport as is, except that readers (and
	// multipart file readers) are buffered first so a retry can resend them.
	Body any
	// Action is a free-form label carried into logs and errors.
	Action string
	// Skip lists interceptor ids that should not act on this request.
	Skip []string
	// Retry counts how many times this request has been retried.
	Retry int
	// Transport overrides the client transport for this request.
	Transport Transport

	ctx context.Context
}

// NewRequest creates a request for method and path segments.
func NewRequest(method string, path ...string) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		Path:    path,
		Headers: Headers{},
	}
}

// Context returns the request context, or context.Background if none is set.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a clone of r bound to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("httpclient: nil context")
	}
	r2 := r.Clone()
	r2.ctx = ctx
	return r2
}

// Clone returns a deep copy of r. Headers, query, path and skip set are
// copied; Body and Transport are shared.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	r2 := *r
	r2.Path = slices.Clone(r.Path)
	r2.Headers = r.Headers.Clone()
	r2.Query = r.Query.Clone()
	r2.Skip = slices.Clone(r.Skip)
	return &r2
}

// Skips reports whether interceptor id is in the skip set. Empty ids are
// never skipped.
func (r *Request) Skips(id string) bool {
	return r != nil && id != "" && slices.Contains(r.Skip, id)
}

// PathString returns the joined path.
func (r *Request) PathString() string {
	return JoinPath(r.Path)
}

// SetHeader sets a header, allocating the map if needed.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = Headers{}
	}
	r.Headers.Set(key, value)
}

// RequestOption customizes a request built by the client shortcuts.
type RequestOption func(*Request)

// WithSegments appends path segments.
func WithSegments(segments ...string) RequestOption {
	return func(r *Request) {
		r.Path = append(r.Path, segments...)
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.SetHeader(key, value)
	}
}

// WithHeaders overlays headers onto the request.
func WithHeaders(h Headers) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = Headers{}
		}
		r.Headers.Merge(h)
	}
}

// WithQuery sets the request query.
func WithQuery(q *Query) RequestOption {
	return func(r *Request) {
		r.Query = q
	}
}

// WithBody sets the request body.
func WithBody(body any) RequestOption {
	return func(r *Request) {
		r.Body = body
	}
}

// WithAction sets the diagnostic action label.
func WithAction(action string) RequestOption {
	return func(r *Request) {
		r.Action = action
	}
}

// WithSkip adds interceptor ids to the skip set.
func WithSkip(ids ...string) RequestOption {
	return func(r *Request) {
		r.Skip = append(r.Skip, ids...)
	}
}

// WithTransport overrides the transport for one request.
func WithTransport(t Transport) RequestOption {
	return func(r *Request) {
		r.Transport = t
	}
}
