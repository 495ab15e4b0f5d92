package httpclient

// BeforeFunc transforms the outgoing request. It receives an owned copy and
// must return the request the next stage should see.
type BeforeFunc func(c *Client, req *Request) (*Request, error)

// AfterFunc transforms the response of a successful call.
type AfterFunc func(c *Client, req *Request, resp *Response) (*Response, error)

// ErrorFunc may recover a failed call by returning a response. Returning
// (nil, nil) passes the error on unchanged; returning an error replaces it.
type ErrorFunc func(c *Client, err *Error) (*Response, error)

// Interceptor is a function with an optional identifier. The id is used for
// removal and for the per-request skip set, never for ordering.
type Interceptor[F any] struct {
	ID string
	Fn F
}

type (
	BeforeInterceptor = Interceptor[BeforeFunc]
	AfterInterceptor  = Interceptor[AfterFunc]
	ErrorInterceptor  = Interceptor[ErrorFunc]
)

// Before creates a before interceptor.
func Before(id string, fn BeforeFunc) *BeforeInterceptor {
	return &BeforeInterceptor{ID: id, Fn: fn}
}

// After creates an after interceptor.
func After(id string, fn AfterFunc) *AfterInterceptor {
	return &AfterInterceptor{ID: id, Fn: fn}
}

// OnError creates an error interceptor.
func OnError(id string, fn ErrorFunc) *ErrorInterceptor {
	return &ErrorInterceptor{ID: id, Fn: fn}
}

// Interceptors holds the three chains in registration order.
type Interceptors struct {
	Before []*BeforeInterceptor
	After  []*AfterInterceptor
	Error  []*ErrorInterceptor
}

// clone copies the chains, dropping nil entries.
func (i Interceptors) clone() Interceptors {
	return Interceptors{
		Before: appendInterceptors(nil, i.Before...),
		After:  appendInterceptors(nil, i.After...),
		Error:  appendInterceptors(nil, i.Error...),
	}
}

func (i *Interceptor[F]) label() string {
	if i == nil || i.ID == "" {
		return "unknown"
	}
	return i.ID
}

// appendInterceptors returns a fresh slice so snapshots taken by in-flight
// calls never share a backing array with the live config.
func appendInterceptors[F any](list []*Interceptor[F], add ...*Interceptor[F]) []*Interceptor[F] {
	out := make([]*Interceptor[F], 0, len(list)+len(add))
	out = append(out, list...)
	for _, ic := range add {
		if ic != nil {
			out = append(out, ic)
		}
	}
	return out
}

func removeInterceptor[F any](list []*Interceptor[F], target *Interceptor[F]) []*Interceptor[F] {
	out := make([]*Interceptor[F], 0, len(list))
	for _, ic := range list {
		if ic != target {
			out = append(out, ic)
		}
	}
	return out
}

func removeInterceptorID[F any](list []*Interceptor[F], id string) []*Interceptor[F] {
	out := make([]*Interceptor[F], 0, len(list))
	for _, ic := range list {
		if ic.ID != id {
			out = append(out, ic)
		}
	}
	return out
}
