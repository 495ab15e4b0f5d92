package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Backoff describes an exponential delay schedule.
type Backoff struct {
	// Initial is the delay before the first retry.
	Initial time.Duration `yaml:"initial" mapstructure:"initial"`
	// Max caps any single delay.
	Max time.Duration `yaml:"max" mapstructure:"max"`
	// Factor is the multiplier applied per attempt.
	Factor float64 `yaml:"factor" mapstructure:"factor"`
	// Jitter adds randomness to each delay (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
}

// DefaultBackoff returns sensible defaults.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial: 100 * time.Millisecond,
		Max:     10 * time.Second,
		Factor:  2.0,
		Jitter:  0.1,
	}
}

// withDefaults fills zero fields from DefaultBackoff.
func (b Backoff) withDefaults() Backoff {
	d := DefaultBackoff()
	if b.Initial <= 0 {
		b.Initial = d.Initial
	}
	if b.Max <= 0 {
		b.Max = d.Max
	}
	if b.Factor <= 0 {
		b.Factor = d.Factor
	}
	return b
}

// Delay returns the wait before the given attempt. Attempt 1 is the first
// retry and waits Initial.
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(b.Initial) * math.Pow(b.Factor, float64(attempt-1))

	if b.Jitter > 0 {
		spread := delay * b.Jitter
		delay += (rand.Float64()*2 - 1) * spread
	}

	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	if delay < 0 {
		delay = float64(b.Initial)
	}

	return time.Duration(delay)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
