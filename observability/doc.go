// Package observability wires OpenTelemetry tracing and metrics for HTTP
// client calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("fetch"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("fetch"))
//	defer mp.Shutdown(ctx)
//
//	m, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//
// The interceptors package turns these into pipeline stages. Each observer
// keeps a CallContext per attempt in the request context.
package observability
