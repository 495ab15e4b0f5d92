package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// CallContext holds what an observing interceptor knows about one call
// attempt. It travels in the request context from the before chain to the
// after or error chain, stored under the observer's name so observers of
// the same call do not share state.
type CallContext struct {
	Client  string
	Method  string
	Path    string
	Action  string
	Attempt int
	Start   time.Time

	finished atomic.Bool
}

// NewCallContext creates a call context starting now.
func NewCallContext(client, method, path, action string, attempt int) *CallContext {
	return &CallContext{
		Client:  client,
		Method:  method,
		Path:    path,
		Action:  action,
		Attempt: attempt,
		Start:   time.Now(),
	}
}

type callContextKey struct{ observer string }

// WithCallContext stores cc in ctx for observer.
func WithCallContext(ctx context.Context, observer string, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{observer}, cc)
}

// CallContextFromContext retrieves observer's CallContext from ctx, or nil.
func CallContextFromContext(ctx context.Context, observer string) *CallContext {
	if cc, ok := ctx.Value(callContextKey{observer}).(*CallContext); ok {
		return cc
	}
	return nil
}

// Finish marks the attempt as reported and returns true the first time
// only. A call whose after chain fails reaches the error chain too.
func (cc *CallContext) Finish() bool {
	return cc.finished.CompareAndSwap(false, true)
}

// Duration returns the elapsed time since the attempt started.
func (cc *CallContext) Duration() time.Duration {
	return time.Since(cc.Start)
}
