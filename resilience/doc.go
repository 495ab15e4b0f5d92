// Package resilience provides the fault-tolerance primitives used by the
// fetchkit HTTP pipeline.
//
//   - Backoff: exponential delay with jitter, used by retry interceptors to
//     schedule re-invocations
//   - CircuitBreaker: fails fast while an upstream is unhealthy
//   - RateLimiter: token bucket that paces outbound calls
//
// The HTTP transport combines the guards around each round trip:
//
//	rl := resilience.NewRateLimiter(resilience.DefaultRateLimiterConfig("api"))
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("api"))
//
//	if err := rl.Wait(ctx); err != nil {
//	    return err
//	}
//	if err := cb.Allow(); err != nil {
//	    return err
//	}
//	resp, err := send(ctx)
//	cb.Record(err)
package resilience
