package httpclient

import (
	"context"
	"errors"
	"sync"

	"github.com/kbukum/fetchkit/component"
	"github.com/kbukum/fetchkit/config"
	"github.com/kbukum/fetchkit/logger"
)

// Component wraps a Client with lifecycle management. When a watch file is
// set, base, method and headers are re-read from it on every write and
// merged into the running client.
type Component struct {
	config Config
	opts   []Option

	watchPath string
	watchKey  string

	mu     sync.RWMutex
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
	log    *logger.Logger
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a client component. The client is built in Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts, log: logger.Get("httpclient")}
}

// WatchFile makes the component reload client settings from the YAML file
// at path while running. key selects the section holding the client
// config, or "" for the whole file.
func (c *Component) WatchFile(path, key string) *Component {
	c.watchPath = path
	c.watchKey = key
	return c
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return "httpclient"
	}
	return c.config.Name
}

// Start builds the client and starts the config watcher, if any.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = client

	if c.watchPath != "" {
		watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		done := make(chan struct{})
		c.cancel, c.done = cancel, done
		go func() {
			defer close(done)
			if err := config.Watch(watchCtx, c.watchPath, c.reload); err != nil {
				c.log.Error("config watch stopped", logger.Fields("file", c.watchPath, logger.FieldError, err.Error()))
			}
		}()
	}
	return nil
}

// reload applies base, method and headers from the watched file. Settings
// missing from the file keep their current value, and headers are overlaid
// key by key.
func (c *Component) reload() {
	var fileCfg Config
	if err := config.LoadFile(c.watchPath, c.watchKey, &fileCfg); err != nil {
		c.log.Warn("config reload failed", logger.Fields("file", c.watchPath, logger.FieldError, err.Error()))
		return
	}
	hasBase, hasMethod := fileCfg.Base != "", fileCfg.Method != ""
	fileCfg.ApplyDefaults()
	if err := fileCfg.Validate(); err != nil {
		c.log.Warn("reloaded config is invalid", logger.Fields("file", c.watchPath, logger.FieldError, err.Error()))
		return
	}

	client := c.Client()
	if client == nil {
		return
	}
	patch := ConfigPatch{Headers: fileCfg.Headers}
	if hasBase {
		patch.Base = &fileCfg.Base
	}
	if hasMethod {
		patch.Method = &fileCfg.Method
	}
	client.Merge(patch)
	c.log.Info("client config reloaded", logger.Fields("file", c.watchPath, "base", fileCfg.Base))
}

// Stop stops the watcher and closes the client.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done, client := c.cancel, c.done, c.client
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return errors.Join(ctx.Err(), closeClient(ctx, client))
		}
	}
	return closeClient(ctx, client)
}

func closeClient(ctx context.Context, client *Client) error {
	if client == nil {
		return nil
	}
	return client.Close(ctx)
}

// Health reports unhealthy before Start and degraded while the transport's
// circuit breaker is open.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}

	client := c.Client()
	if client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if t, ok := client.Config().Transport.(*HTTPTransport); ok && !t.Available() {
		h.Status = component.StatusDegraded
		h.Message = "circuit breaker open"
	}
	return h
}

// Describe returns component description for startup summaries.
func (c *Component) Describe() component.Description {
	details := c.config.Base
	if client := c.Client(); client != nil {
		details = client.Config().Base
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "http-client",
		Details: details,
	}
}

// Client returns the running client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}
