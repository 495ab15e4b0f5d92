package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/resilience"
)

// Client runs calls through the before chain, the transport, the after
// chain and, on failure, the error chain. A Client is safe for concurrent
// use. Each call works on a snapshot of the config taken when it starts,
// so Merge and the Add/Remove methods only affect calls started later.
type Client struct {
	mu  sync.RWMutex
	cfg Config

	log   *logger.Logger
	delay func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to the global logger tagged
// "httpclient".
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDelayFunc replaces the wait used by Schedule. Tests use it to make
// retries instant.
func WithDelayFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.delay = fn
		}
	}
}

// New creates a Client. If cfg has no Transport but has an HTTP section,
// an HTTPTransport is built from it.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Transport == nil && cfg.HTTP != nil {
		t, err := NewHTTPTransport(*cfg.HTTP)
		if err != nil {
			return nil, err
		}
		cfg.Transport = t
	}

	c := &Client{
		cfg:   cfg.clone(),
		log:   logger.Get("httpclient"),
		delay: resilience.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.Name != "" {
		c.log = c.log.WithFields(logger.Fields("client", cfg.Name))
	}
	return c, nil
}

// Config returns a snapshot of the current configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.clone()
}

// Merge applies a partial configuration.
func (c *Client) Merge(p ConfigPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg := c.cfg.clone()
	p.apply(&cfg)
	c.cfg = cfg
}

func (c *Client) update(fn func(*Interceptors)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ics := c.cfg.Interceptors.clone()
	fn(&ics)
	c.cfg.Interceptors = ics
}

// AddBefore appends before interceptors.
func (c *Client) AddBefore(ics ...*BeforeInterceptor) {
	c.update(func(i *Interceptors) { i.Before = appendInterceptors(i.Before, ics...) })
}

// AddAfter appends after interceptors.
func (c *Client) AddAfter(ics ...*AfterInterceptor) {
	c.update(func(i *Interceptors) { i.After = appendInterceptors(i.After, ics...) })
}

// AddError appends error interceptors.
func (c *Client) AddError(ics ...*ErrorInterceptor) {
	c.update(func(i *Interceptors) { i.Error = appendInterceptors(i.Error, ics...) })
}

// RemoveBefore removes a before interceptor by identity. Removing an
// interceptor that is not registered is a no-op, as for every Remove method.
func (c *Client) RemoveBefore(ic *BeforeInterceptor) {
	c.update(func(i *Interceptors) { i.Before = removeInterceptor(i.Before, ic) })
}

// RemoveAfter removes an after interceptor by identity.
func (c *Client) RemoveAfter(ic *AfterInterceptor) {
	c.update(func(i *Interceptors) { i.After = removeInterceptor(i.After, ic) })
}

// RemoveError removes an error interceptor by identity.
func (c *Client) RemoveError(ic *ErrorInterceptor) {
	c.update(func(i *Interceptors) { i.Error = removeInterceptor(i.Error, ic) })
}

// RemoveBeforeID removes every before interceptor with the given id.
func (c *Client) RemoveBeforeID(id string) {
	c.update(func(i *Interceptors) { i.Before = removeInterceptorID(i.Before, id) })
}

// RemoveAfterID removes every after interceptor with the given id.
func (c *Client) RemoveAfterID(id string) {
	c.update(func(i *Interceptors) { i.After = removeInterceptorID(i.After, id) })
}

// RemoveErrorID removes every error interceptor with the given id.
func (c *Client) RemoveErrorID(id string) {
	c.update(func(i *Interceptors) { i.Error = removeInterceptorID(i.Error, id) })
}

// Do executes one call. On failure the returned error is always an *Error,
// unless an error interceptor recovered the call.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	cfg := c.Config()
	snapshot := &cfg

	effective := prepare(snapshot, req)
	if ctx != nil {
		effective.ctx = ctx
	}

	log := c.log.WithFields(logger.Fields(logger.FieldAction, effective.Action))

	prepared, err := runBefore(c, effective, cfg.Interceptors.Before)
	if err != nil {
		log.Warn("before chain failed", logger.ErrorFields("before", err))
		return c.fail(snapshot, newStageError(KindBefore, snapshot, effective, nil, err))
	}

	body, err := replayable(prepared.Body)
	if err != nil {
		err = fmt.Errorf("buffer body: %w", err)
		return c.fail(snapshot, &Error{
			Kind:    KindTransport,
			Code:    ErrCodeValidation,
			Message: err.Error(),
			Config:  snapshot,
			Request: prepared,
			Err:     err,
		})
	}
	prepared.Body = body

	transport := prepared.Transport
	if transport == nil {
		transport = cfg.Transport
	}
	if transport == nil {
		return c.fail(snapshot, newTransportError(snapshot, prepared, ErrNoTransport))
	}

	url := BuildURL(cfg.Base, prepared.Path, prepared.Query)
	log.Debug("sending request", logger.Fields(
		logger.FieldMethod, prepared.Method,
		logger.FieldURL, url,
	))

	raw, err := transport.RoundTrip(prepared.Context(), url, prepared)
	if err == nil && raw == nil {
		err = fmt.Errorf("transport returned no response: %w", ErrContractViolation)
	}
	if err != nil {
		log.Debug("transport failed", logger.ErrorFields("transport", err))
		return c.fail(snapshot, newTransportError(snapshot, prepared, err))
	}

	resp := NewResponse(raw)
	if !raw.OK() {
		return c.fail(snapshot, newHTTPError(snapshot, prepared, resp))
	}

	final, err := runAfter(c, prepared, resp, cfg.Interceptors.After)
	if err != nil {
		log.Warn("after chain failed", logger.ErrorFields("after", err))
		return c.fail(snapshot, newStageError(KindAfter, snapshot, prepared, resp, err))
	}
	return final, nil
}

func (c *Client) fail(cfg *Config, e *Error) (*Response, error) {
	resp, err := c.runError(cfg.Interceptors.Error, e)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// prepare builds the effective request: a clone of req with the default
// method and default headers filled in. Request headers win key by key.
func prepare(cfg *Config, req *Request) *Request {
	var r *Request
	if req == nil {
		r = &Request{}
	} else {
		r = req.Clone()
	}
	if r.Method == "" {
		r.Method = cfg.Method
	}
	headers := cfg.Headers.Clone()
	headers.Merge(r.Headers)
	r.Headers = headers
	return r
}

// Schedule waits for delay and then runs req through Do. It is the hook
// error interceptors use to retry a call later.
func (c *Client) Schedule(ctx context.Context, delay time.Duration, req *Request) (*Response, error) {
	if err := c.delay(ctx, delay); err != nil {
		return nil, fmt.Errorf("httpclient: scheduled call aborted: %w", err)
	}
	return c.Do(ctx, req)
}

// Get issues a GET request for path.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodGet, path, opts)
}

// Post issues a POST request for path.
func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPost, path, opts)
}

// Put issues a PUT request for path.
func (c *Client) Put(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPut, path, opts)
}

// Patch issues a PATCH request for path.
func (c *Client) Patch(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPatch, path, opts)
}

// Delete issues a DELETE request for path.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodDelete, path, opts)
}

func (c *Client) call(ctx context.Context, method, path string, opts []RequestOption) (*Response, error) {
	var req *Request
	if path == "" {
		req = NewRequest(method)
	} else {
		req = NewRequest(method, path)
	}
	for _, opt := range opts {
		opt(req)
	}
	return c.Do(ctx, req)
}

// Close releases resources held by the configured transport, if it
// supports closing.
func (c *Client) Close(ctx context.Context) error {
	t := c.Config().Transport
	if closer, ok := t.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}
