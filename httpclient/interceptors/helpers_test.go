package interceptors_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/logger"
)

func newClient(t *testing.T, tr httpclient.Transport, opts ...httpclient.Option) *httpclient.Client {
	t.Helper()
	opts = append([]httpclient.Option{httpclient.WithLogger(logger.Nop())}, opts...)
	c, err := httpclient.New(httpclient.Config{Name: "users", Base: "http://api.test", Transport: tr}, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

// delayRecorder replaces the client's sleep and remembers each delay.
type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (d *delayRecorder) fn(_ context.Context, delay time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delays = append(d.delays, delay)
	return d.err
}

func (d *delayRecorder) recorded() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.delays...)
}
