package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/kbukum/fetchkit/resilience"
)

// Transport performs the network call for a fully prepared request.
// Implementations report a completed exchange as a RawResponse whatever
// its status; status handling belongs to the client.
type Transport interface {
	RoundTrip(ctx context.Context, url string, req *Request) (RawResponse, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, req *Request) (RawResponse, error)

// RoundTrip calls f.
func (f TransportFunc) RoundTrip(ctx context.Context, url string, req *Request) (RawResponse, error) {
	return f(ctx, url, req)
}

// HTTPTransport is the default Transport, built on net/http with TLS and
// optional circuit breaking and rate limiting.
type HTTPTransport struct {
	httpClient *http.Client
	cb         *resilience.CircuitBreaker
	rl         *resilience.RateLimiter
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates an HTTPTransport from cfg.
func NewHTTPTransport(cfg HTTPConfig) (*HTTPTransport, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Apply TLS configuration
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	t := &HTTPTransport{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
	if cfg.CircuitBreaker != nil {
		t.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	if cfg.RateLimiter != nil {
		t.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	return t, nil
}

// RoundTrip sends req to url. Responses of any status are returned as a
// BufferedResponse; 5xx responses count as failures for the circuit breaker.
func (t *HTTPTransport) RoundTrip(ctx context.Context, url string, req *Request) (RawResponse, error) {
	if t.rl != nil {
		if err := t.rl.Wait(ctx); err != nil {
			return nil, &Error{
				Kind:    KindTransport,
				Code:    ErrCodeRateLimit,
				Message: "rate limiter: " + err.Error(),
				Err:     err,
			}
		}
	}

	if t.cb != nil {
		if err := t.cb.Allow(); err != nil {
			return nil, &Error{
				Kind:      KindTransport,
				Code:      ErrCodeConnection,
				Message:   err.Error(),
				Retryable: true,
				Err:       err,
			}
		}
	}

	resp, err := t.execute(ctx, url, req)

	if t.cb != nil {
		switch {
		case err != nil:
			t.cb.Record(err)
		case resp.StatusCode >= 500:
			t.cb.Record(fmt.Errorf("HTTP %d", resp.StatusCode))
		default:
			t.cb.Record(nil)
		}
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// execute builds and sends the HTTP request.
func (t *HTTPTransport) execute(ctx context.Context, url string, req *Request) (*BufferedResponse, error) {
	httpReq, err := buildHTTPRequest(ctx, url, req)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &Error{Kind: KindTransport, Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
		}
		retryable := !errors.Is(err, context.Canceled)
		return nil, &Error{Kind: KindTransport, Code: ErrCodeConnection, Message: err.Error(), Retryable: retryable, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("read response body: %w", err)
		return nil, &Error{Kind: KindTransport, Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
	}

	return &BufferedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headersFromHTTP(resp.Header),
		Body:       body,
	}, nil
}

// buildHTTPRequest constructs an *http.Request from a prepared request.
func buildHTTPRequest(ctx context.Context, url string, req *Request) (*http.Request, error) {
	if err := req.Headers.Validate(); err != nil {
		return nil, &Error{Kind: KindTransport, Code: ErrCodeValidation, Message: err.Error(), Err: err}
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		err = fmt.Errorf("encode body: %w", err)
		return nil, &Error{Kind: KindTransport, Code: ErrCodeValidation, Message: err.Error(), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		err = fmt.Errorf("create request: %w", err)
		return nil, &Error{Kind: KindTransport, Code: ErrCodeValidation, Message: err.Error(), Err: err}
	}

	httpReq.Header = req.Headers.HTTP()

	// Set content-type if body present and not already set
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// Available reports whether the transport accepts calls, which is false
// while the circuit breaker is open.
func (t *HTTPTransport) Available() bool {
	if t.cb != nil {
		return t.cb.State() != resilience.StateOpen
	}
	return true
}

// CircuitBreaker returns the breaker guarding this transport, or nil.
func (t *HTTPTransport) CircuitBreaker() *resilience.CircuitBreaker {
	return t.cb
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (t *HTTPTransport) Unwrap() *http.Client {
	return t.httpClient
}

// Close releases idle connections.
func (t *HTTPTransport) Close(_ context.Context) error {
	t.httpClient.CloseIdleConnections()
	return nil
}
