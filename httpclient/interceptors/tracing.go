package interceptors

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/observability"
)

// TracingConfig configures Tracing.
type TracingConfig struct {
	// ID defaults to "tracing".
	ID string
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
	// Propagator defaults to W3C trace context plus baggage.
	Propagator propagation.TextMapPropagator
}

// parentSpanKey holds the span context the first attempt of a call was
// started under, so retried attempts become its siblings.
type parentSpanKey struct{}

// Tracing starts a client span for every call attempt and injects the
// trace context into the request headers. The span ends when the attempt
// completes or fails.
func Tracing(cfg TracingConfig) Bundle {
	if cfg.ID == "" {
		cfg.ID = IDTracing
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = observability.Propagator()
	}
	tracer := cfg.TracerProvider.Tracer(observability.InstrumentationName)

	return observer{
		id: cfg.ID,
		start: func(_ *httpclient.Client, r *httpclient.Request, cc *observability.CallContext) *httpclient.Request {
			attrs := []attribute.KeyValue{
				attribute.String(observability.AttrMethod, cc.Method),
				attribute.String(observability.AttrURLPath, cc.Path),
			}
			if cc.Client != "" {
				attrs = append(attrs, attribute.String(observability.AttrClient, cc.Client))
			}
			if cc.Action != "" {
				attrs = append(attrs, attribute.String(observability.AttrAction, cc.Action))
			}
			if cc.Attempt > 0 {
				attrs = append(attrs, attribute.Int(observability.AttrAttempt, cc.Attempt))
			}

			ctx := r.Context()
			parent, retried := ctx.Value(parentSpanKey{}).(trace.SpanContext)
			if retried {
				ctx = trace.ContextWithSpanContext(ctx, parent)
			} else {
				ctx = context.WithValue(ctx, parentSpanKey{}, trace.SpanContextFromContext(ctx))
			}
			ctx, _ = tracer.Start(ctx, cc.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(attrs...),
			)

			carrier := propagation.HeaderCarrier(http.Header{})
			cfg.Propagator.Inject(ctx, carrier)
			for k, vs := range carrier {
				for i, v := range vs {
					if i == 0 {
						r.Headers.Set(k, v)
					} else {
						r.Headers.Add(k, v)
					}
				}
			}
			return r.WithContext(ctx)
		},
		finish: func(r *httpclient.Request, _ *observability.CallContext, resp *httpclient.Response, e *httpclient.Error) {
			span := trace.SpanFromContext(r.Context())
			if status := resp.Status(); status != 0 {
				span.SetAttributes(attribute.Int(observability.AttrStatusCode, status))
			}
			if e != nil {
				span.SetAttributes(attribute.String(observability.AttrErrorType, string(e.Kind)))
				span.RecordError(e)
				span.SetStatus(codes.Error, e.Message)
			}
			span.End()
		},
	}.bundle()
}
