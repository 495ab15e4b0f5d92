package httpclient

import (
	"encoding/json"
	"fmt"
)

// RawResponse is what a transport hands back: a status, headers and a
// body that can be read on demand. The client only looks at Status and OK.
type RawResponse interface {
	Status() int
	// OK reports a 2xx status.
	OK() bool
	Header() Headers
	Bytes() ([]byte, error)
}

// Response pairs the raw transport response with a decoded value that
// after interceptors may fill in.
type Response struct {
	Raw  RawResponse
	Data any
}

// NewResponse wraps raw.
func NewResponse(raw RawResponse) *Response {
	return &Response{Raw: raw}
}

// Status returns the raw status code, or 0 if there is no raw response.
func (r *Response) Status() int {
	if r == nil || r.Raw == nil {
		return 0
	}
	return r.Raw.Status()
}

// DecodeJSON unmarshals the raw body into v.
func (r *Response) DecodeJSON(v any) error {
	if r == nil || r.Raw == nil {
		return fmt.Errorf("httpclient: no response body")
	}
	body, err := r.Raw.Bytes()
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode body: %w", err)
	}
	return nil
}

// BufferedResponse is a RawResponse whose body has been read into memory.
type BufferedResponse struct {
	StatusCode int
	Headers    Headers
	Body       []byte
}

// Status implements RawResponse.
func (r *BufferedResponse) Status() int { return r.StatusCode }

// OK implements RawResponse.
func (r *BufferedResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Header implements RawResponse.
func (r *BufferedResponse) Header() Headers {
	if r.Headers == nil {
		return Headers{}
	}
	return r.Headers
}

// Bytes implements RawResponse.
func (r *BufferedResponse) Bytes() ([]byte, error) { return r.Body, nil }
