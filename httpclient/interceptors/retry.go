package interceptors

import (
	"fmt"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/resilience"
	"github.com/kbukum/fetchkit/validation"
)

// RetryCondition decides whether a failed call is retried. resp is nil
// when the call failed before a response arrived.
type RetryCondition func(c *httpclient.Client, req *httpclient.Request, resp *httpclient.Response) bool

// RetryConfig configures Retry.
type RetryConfig struct {
	// ID is the interceptor id checked against the skip set. Defaults to
	// "retry".
	ID string `yaml:"id" mapstructure:"id"`
	// MaxRetries is the number of re-invocations after the first attempt.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=100"`
	// Backoff computes the delay before each retry.
	Backoff resilience.Backoff `yaml:"backoff" mapstructure:"backoff"`
	// Condition overrides the default policy, which retries errors marked
	// retryable (timeouts, connection failures, 408, 429 and 5xx).
	Condition RetryCondition `yaml:"-" mapstructure:"-"`
}

// DefaultRetryConfig returns three retries with the default backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		ID:         IDRetry,
		MaxRetries: 3,
		Backoff:    resilience.DefaultBackoff(),
	}
}

// Retry returns an error interceptor that re-runs a failed call through
// Client.Schedule until it succeeds or MaxRetries is reached. The attempt
// count travels in Request.Retry. The result of the last re-invocation,
// success or failure, becomes the result of the call.
func Retry(cfg RetryConfig) (*httpclient.ErrorInterceptor, error) {
	if cfg.ID == "" {
		cfg.ID = IDRetry
	}
	if err := validation.Validate(cfg); err != nil {
		return nil, fmt.Errorf("interceptors: retry config: %w", err)
	}
	log := logger.Get("retry")

	return httpclient.OnError(cfg.ID, func(c *httpclient.Client, e *httpclient.Error) (*httpclient.Response, error) {
		req := e.Request
		if req == nil || req.Skips(cfg.ID) || req.Retry >= cfg.MaxRetries {
			return nil, nil
		}
		if cfg.Condition != nil {
			if !cfg.Condition(c, req, e.Response) {
				return nil, nil
			}
		} else if !e.Retryable {
			return nil, nil
		}

		next := req.Clone()
		next.Retry++
		delay := cfg.Backoff.Delay(next.Retry)

		log.Debug("retrying call", logger.Fields(
			logger.FieldMethod, req.Method,
			logger.FieldURL, req.PathString(),
			logger.FieldAttempt, next.Retry,
			logger.FieldError, e.Message,
			"delay_ms", delay.Milliseconds(),
		))
		return c.Schedule(req.Context(), delay, next)
	}), nil
}
