package httpclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/fetchkit/resilience"
	"github.com/kbukum/fetchkit/security"
	"github.com/kbukum/fetchkit/validation"
)

const (
	defaultMethod  = "GET"
	defaultTimeout = 30 * time.Second
)

// Config configures a Client. It is shared by every call made through the
// client and changed only through Merge and the Add/Remove methods.
type Config struct {
	// Name identifies the client in logs and component listings.
	Name string `yaml:"name" mapstructure:"name" validate:"omitempty,max=64"`

	// Base is prepended to relative request paths. Stored without leading
	// or trailing slashes.
	Base string `yaml:"base" mapstructure:"base"`

	// Method is used when a request leaves its method empty. Defaults to GET.
	Method string `yaml:"method" mapstructure:"method" validate:"omitempty,uppercase"`

	// Headers are default headers. Request headers win key by key.
	Headers Headers `yaml:"headers" mapstructure:"headers"`

	// HTTP configures the built-in net/http transport. It is used only when
	// Transport is nil.
	HTTP *HTTPConfig `yaml:"http" mapstructure:"http"`

	// Transport performs the network call.
	Transport Transport `yaml:"-" mapstructure:"-"`

	// Interceptors are the before, after and error chains.
	Interceptors Interceptors `yaml:"-" mapstructure:"-"`
}

// HTTPConfig configures HTTPTransport.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// CircuitBreaker configures circuit breaker behavior. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// RateLimiter configures rate limiting. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.Base = strings.Trim(c.Base, "/")
	c.Method = strings.ToUpper(c.Method)
	if c.Method == "" {
		c.Method = defaultMethod
	}
	c.Headers = c.Headers.canonical()
	if c.HTTP != nil {
		c.HTTP.ApplyDefaults()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	if err := c.Headers.Validate(); err != nil {
		return err
	}
	if c.HTTP != nil {
		return c.HTTP.Validate()
	}
	return nil
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *HTTPConfig) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *HTTPConfig) Validate() error {
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// clone returns a copy whose headers and chains can be changed without
// affecting c.
func (c Config) clone() Config {
	c.Headers = c.Headers.Clone()
	c.Interceptors = c.Interceptors.clone()
	return c
}

// ConfigPatch is a partial Config for Client.Merge. Nil fields are left
// alone. Headers overlay the current headers key by key. A non-nil
// interceptor list replaces that chain.
type ConfigPatch struct {
	Base      *string
	Method    *string
	Headers   Headers
	Transport Transport

	Before []*BeforeInterceptor
	After  []*AfterInterceptor
	Error  []*ErrorInterceptor
}

// apply merges p into c.
func (p ConfigPatch) apply(c *Config) {
	if p.Base != nil {
		c.Base = strings.Trim(*p.Base, "/")
	}
	if p.Method != nil {
		c.Method = strings.ToUpper(*p.Method)
		if c.Method == "" {
			c.Method = defaultMethod
		}
	}
	if p.Headers != nil {
		c.Headers.Merge(p.Headers)
	}
	if p.Transport != nil {
		c.Transport = p.Transport
	}
	if p.Before != nil {
		c.Interceptors.Before = appendInterceptors(nil, p.Before...)
	}
	if p.After != nil {
		c.Interceptors.After = appendInterceptors(nil, p.After...)
	}
	if p.Error != nil {
		c.Interceptors.Error = appendInterceptors(nil, p.Error...)
	}
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	return &cfg
}

// DefaultRateLimiterConfig returns a default rate limiter config.
func DefaultRateLimiterConfig(name string) *resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(name)
	return &cfg
}
