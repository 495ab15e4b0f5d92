package httpclient

import (
	"errors"

	"github.com/kbukum/fetchkit/logger"
)

// runError gives each error interceptor, in order, a chance to substitute a
// response for a failed call. The first non-nil response wins and is
// returned as is, without running the after chain. A nil response keeps
// the current error; a returned error, or a response without Raw, replaces
// it. When nothing recovers the call fails with the last error.
func (c *Client) runError(chain []*ErrorInterceptor, failure *Error) (*Response, error) {
	if len(chain) == 0 {
		return nil, failure
	}

	current := failure
	for _, ic := range chain {
		var resp *Response
		err := guard(func() (err error) {
			resp, err = ic.Fn(c, current)
			return err
		})
		if err != nil {
			current = recoveryError(current, err)
			c.log.Debug("error interceptor replaced the error", logger.Fields(
				logger.FieldInterceptor, ic.label(),
				logger.FieldError, current.Message,
			))
			continue
		}
		if resp != nil && resp.Raw == nil {
			current = recoveryError(current, violation(StageError, ic.ID, "returned a response without a raw response"))
			c.log.Debug("error interceptor broke its contract", logger.Fields(
				logger.FieldInterceptor, ic.label(),
				logger.FieldError, current.Message,
			))
			continue
		}
		if resp != nil {
			c.log.Debug("call recovered", logger.Fields(
				logger.FieldInterceptor, ic.label(),
				logger.FieldStatus, resp.Status(),
			))
			return resp, nil
		}
	}
	return nil, current
}

// recoveryError derives the error that replaces prev after an error
// interceptor failed with err. An *Error is kept as is, which lets a
// re-invoked call's own failure surface unchanged.
func recoveryError(prev *Error, err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{
		Kind:    KindRecovery,
		Message: err.Error(),
		Config:  prev.Config,
		Request: prev.Request,
		Err:     err,
	}
}
