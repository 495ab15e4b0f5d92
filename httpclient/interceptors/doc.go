// Package interceptors provides ready-made pipeline stages for
// httpclient.Client: retry with backoff, request ids, a default User-Agent,
// structured logging, OpenTelemetry tracing and call metrics.
//
// Every interceptor has an id and leaves a request alone when the request
// lists that id in its skip set:
//
//	client.Get(ctx, "health", httpclient.WithSkip(interceptors.IDRetry))
//
// Observers (Logging, Tracing, Metrics) should be registered before Retry.
// The error chain stops at the first interceptor that recovers the call, so
// observers registered after a successful retry never see the failed
// attempt.
//
//	retry, _ := interceptors.Retry(interceptors.DefaultRetryConfig())
//	interceptors.Chain(
//	    interceptors.Befores(interceptors.RequestID(""), interceptors.UserAgent("")),
//	    interceptors.Logging(interceptors.LoggingConfig{}),
//	    interceptors.OnErrors(retry),
//	).Register(client)
package interceptors

// Interceptor ids.
const (
	IDRetry     = "retry"
	IDRequestID = "request-id"
	IDUserAgent = "user-agent"
	IDLogging   = "logging"
	IDTracing   = "tracing"
	IDMetrics   = "metrics"
)
