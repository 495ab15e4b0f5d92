package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind tells which pipeline step produced an Error.
type Kind string

const (
	// KindBefore is a before interceptor failure.
	KindBefore Kind = "before interceptor"
	// KindTransport is a transport failure, including a missing transport.
	KindTransport Kind = "transport"
	// KindHTTP is a completed call with a non-2xx status.
	KindHTTP Kind = "http"
	// KindAfter is an after interceptor failure.
	KindAfter Kind = "after interceptor"
	// KindRecovery is an error raised by an error interceptor.
	KindRecovery Kind = "recovery"
)

// ErrNoTransport is wrapped by the error returned when neither the request
// nor the client provides a transport.
var ErrNoTransport = errors.New("transport not available")

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	// ErrCodeUnknown is used when the failure has no HTTP meaning, such as
	// an interceptor error.
	ErrCodeUnknown ErrorCode = iota
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout
	// ErrCodeConnection indicates a connection failure (refused, DNS, etc).
	ErrCodeConnection
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeValidation indicates a client-side validation error (400).
	ErrCodeValidation
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by a failed call, whatever the
// step that failed. Response is set for HTTP and after interceptor
// failures only.
type Error struct {
	Kind Kind
	Code ErrorCode
	// StatusCode is the HTTP status code (0 when no response was received).
	StatusCode int
	Message    string
	// Retryable indicates whether repeating the call may succeed.
	Retryable bool

	// Config is the client configuration the call ran with.
	Config *Config
	// Request is the request as last seen by the pipeline.
	Request  *Request
	Response *Response

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("httpclient: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyStatusCode maps an HTTP status to an error code and whether the
// call is worth retrying.
func ClassifyStatusCode(statusCode int) (ErrorCode, bool) {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrCodeAuth, false
	case statusCode == 404:
		return ErrCodeNotFound, false
	case statusCode == 408:
		return ErrCodeTimeout, true
	case statusCode == 429:
		return ErrCodeRateLimit, true
	case statusCode >= 400 && statusCode < 500:
		return ErrCodeValidation, false
	case statusCode >= 500:
		return ErrCodeServer, true
	default:
		return ErrCodeUnknown, false
	}
}

func newHTTPError(cfg *Config, req *Request, resp *Response) *Error {
	status := resp.Status()
	code, retryable := ClassifyStatusCode(status)
	msg := fmt.Sprintf("HTTP %d", status)
	if text := http.StatusText(status); text != "" {
		msg += " " + text
	}
	return &Error{
		Kind:       KindHTTP,
		Code:       code,
		StatusCode: status,
		Message:    msg,
		Retryable:  retryable,
		Config:     cfg,
		Request:    req,
		Response:   resp,
	}
}

// newTransportError wraps a transport failure. Classification already done
// by the transport is kept; anything else is sorted into timeout or
// connection failures.
func newTransportError(cfg *Config, req *Request, err error) *Error {
	e := &Error{
		Kind:    KindTransport,
		Message: err.Error(),
		Config:  cfg,
		Request: req,
		Err:     err,
	}

	var inner *Error
	var netErr net.Error
	switch {
	case errors.As(err, &inner):
		e.Code = inner.Code
		e.Retryable = inner.Retryable
		e.StatusCode = inner.StatusCode
		e.Message = inner.Message
	case errors.Is(err, ErrNoTransport):
		e.Code = ErrCodeUnknown
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		e.Code = ErrCodeTimeout
		e.Retryable = true
	case errors.Is(err, context.Canceled):
		e.Code = ErrCodeConnection
	default:
		e.Code = ErrCodeConnection
		e.Retryable = true
	}
	return e
}

// newStageError wraps an interceptor chain failure.
func newStageError(kind Kind, cfg *Config, req *Request, resp *Response, err error) *Error {
	return &Error{
		Kind:     kind,
		Message:  err.Error(),
		Config:   cfg,
		Request:  req,
		Response: resp,
		Err:      err,
	}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsKind checks whether err was produced by the given pipeline step.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeConnection
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeAuth
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeNotFound
}

// IsRateLimit checks if an error is a rate-limit error.
func IsRateLimit(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeRateLimit
}

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrCodeServer
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}
