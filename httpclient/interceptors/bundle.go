package interceptors

import (
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/observability"
)

// Bundle groups interceptors that work together across chains.
type Bundle struct {
	Before []*httpclient.BeforeInterceptor
	After  []*httpclient.AfterInterceptor
	Error  []*httpclient.ErrorInterceptor
}

// Befores bundles before interceptors.
func Befores(ics ...*httpclient.BeforeInterceptor) Bundle {
	return Bundle{Before: ics}
}

// OnErrors bundles error interceptors.
func OnErrors(ics ...*httpclient.ErrorInterceptor) Bundle {
	return Bundle{Error: ics}
}

// Chain concatenates bundles, keeping their order in every chain.
func Chain(bundles ...Bundle) Bundle {
	var out Bundle
	for _, b := range bundles {
		out.Before = append(out.Before, b.Before...)
		out.After = append(out.After, b.After...)
		out.Error = append(out.Error, b.Error...)
	}
	return out
}

// Register appends the bundle to c's chains.
func (b Bundle) Register(c *httpclient.Client) {
	c.AddBefore(b.Before...)
	c.AddAfter(b.After...)
	c.AddError(b.Error...)
}

// Unregister removes the bundle's interceptors from c.
func (b Bundle) Unregister(c *httpclient.Client) {
	for _, ic := range b.Before {
		c.RemoveBefore(ic)
	}
	for _, ic := range b.After {
		c.RemoveAfter(ic)
	}
	for _, ic := range b.Error {
		c.RemoveError(ic)
	}
}

// observer is the common shape of the observers: the before stage opens a
// CallContext for the attempt, and the after or error stage reports it
// exactly once.
type observer struct {
	id     string
	start  func(c *httpclient.Client, r *httpclient.Request, cc *observability.CallContext) *httpclient.Request
	finish func(r *httpclient.Request, cc *observability.CallContext, resp *httpclient.Response, e *httpclient.Error)
}

func (o observer) bundle() Bundle {
	before := httpclient.Before(o.id, func(c *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		if r.Skips(o.id) {
			return r, nil
		}
		cc := observability.NewCallContext(c.Config().Name, r.Method, r.PathString(), r.Action, r.Retry)
		r = r.WithContext(observability.WithCallContext(r.Context(), o.id, cc))
		if o.start != nil {
			r = o.start(c, r, cc)
		}
		return r, nil
	})

	after := httpclient.After(o.id, func(_ *httpclient.Client, r *httpclient.Request, resp *httpclient.Response) (*httpclient.Response, error) {
		if cc := callOf(r, o.id); cc != nil && cc.Finish() {
			o.finish(r, cc, resp, nil)
		}
		return resp, nil
	})

	onError := httpclient.OnError(o.id, func(_ *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
		if cc := callOf(e.Request, o.id); cc != nil && cc.Finish() {
			o.finish(e.Request, cc, e.Response, e)
		}
		return nil, nil
	})

	return Bundle{
		Before: []*httpclient.BeforeInterceptor{before},
		After:  []*httpclient.AfterInterceptor{after},
		Error:  []*httpclient.ErrorInterceptor{onError},
	}
}

func callOf(r *httpclient.Request, id string) *observability.CallContext {
	if r == nil {
		return nil
	}
	return observability.CallContextFromContext(r.Context(), id)
}
