package httpclient

import (
	"errors"
	"fmt"
)

// Stage names a chain.
type Stage string

const (
	StageBefore Stage = "before"
	StageAfter  Stage = "after"
	StageError  Stage = "error"
)

// ErrContractViolation matches chain failures caused by an interceptor
// returning a value of the wrong shape.
var ErrContractViolation = errors.New("httpclient: interceptor contract violation")

// ChainError reports which interceptor broke a chain and why.
type ChainError struct {
	Stage Stage
	// ID of the failing interceptor; empty when it had none.
	ID string
	// Violation is set when the interceptor returned an invalid value
	// rather than an error of its own.
	Violation bool
	Err       error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	id := e.ID
	if id == "" {
		id = "unknown"
	}
	return fmt.Sprintf("%s interceptor %q: %v", e.Stage, id, e.Err)
}

// Unwrap returns the interceptor's own error.
func (e *ChainError) Unwrap() error {
	return e.Err
}

// Is matches ErrContractViolation for violations.
func (e *ChainError) Is(target error) bool {
	return e.Violation && target == ErrContractViolation
}

func violation(stage Stage, id, msg string) *ChainError {
	return &ChainError{Stage: stage, ID: id, Violation: true, Err: errors.New(msg)}
}

// runBefore applies the before chain in order. Each interceptor gets its
// own clone of the current request, so header edits never leak backwards.
func runBefore(c *Client, req *Request, chain []*BeforeInterceptor) (*Request, error) {
	current := req
	for _, ic := range chain {
		var next *Request
		err := guard(func() (err error) {
			next, err = ic.Fn(c, current.Clone())
			return err
		})
		if err != nil {
			return nil, &ChainError{Stage: StageBefore, ID: ic.ID, Err: err}
		}
		if next == nil {
			return nil, violation(StageBefore, ic.ID, "didn't return a request")
		}
		if next.Method == "" {
			return nil, violation(StageBefore, ic.ID, "returned a request without a method")
		}
		current = next
	}
	return current, nil
}

// runAfter applies the after chain in order over a wrapped response.
func runAfter(c *Client, req *Request, resp *Response, chain []*AfterInterceptor) (*Response, error) {
	current := resp
	for _, ic := range chain {
		var next *Response
		err := guard(func() (err error) {
			in := *current
			next, err = ic.Fn(c, req, &in)
			return err
		})
		if err != nil {
			return nil, &ChainError{Stage: StageAfter, ID: ic.ID, Err: err}
		}
		if next == nil || next.Raw == nil {
			return nil, violation(StageAfter, ic.ID, "didn't return a response")
		}
		current = next
	}
	return current, nil
}

// guard turns a panic inside an interceptor into an error so one bad
// interceptor fails its call instead of the process.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
