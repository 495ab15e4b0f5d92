package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/validation"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" validate:"required"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it as
// the global default. The returned provider should be shut down on
// application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	if err := validation.Validate(config); err != nil {
		return nil, fmt.Errorf("observability: meter config: %w", err)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: create metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("observability: create resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Instrument names recorded by ClientMetrics.
const (
	MetricCalls    = "http.client.calls"
	MetricDuration = "http.client.request.duration"
)

// ClientMetrics holds the instruments recorded for each HTTP client call.
type ClientMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewClientMetrics creates the client instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	calls, err := meter.Int64Counter(MetricCalls,
		metric.WithDescription("Completed HTTP client calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: create %s counter: %w", MetricCalls, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of HTTP client calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: create %s histogram: %w", MetricDuration, err)
	}

	return &ClientMetrics{calls: calls, duration: duration}, nil
}

// CallResult describes one finished call attempt.
type CallResult struct {
	Client   string
	Method   string
	Status   int
	Attempt  int
	Duration time.Duration
	// ErrorType is empty for a successful call, otherwise the failing
	// pipeline step.
	ErrorType string
}

// Record counts the call and records its duration.
func (m *ClientMetrics) Record(ctx context.Context, r CallResult) {
	outcome := "ok"
	if r.ErrorType != "" {
		outcome = "error"
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrClient, r.Client),
		attribute.String(AttrMethod, r.Method),
		attribute.Int(AttrStatusCode, r.Status),
		attribute.String(AttrOutcome, outcome),
	}
	if r.ErrorType != "" {
		attrs = append(attrs, attribute.String(AttrErrorType, r.ErrorType))
	}

	m.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.duration.Record(ctx, r.Duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrClient, r.Client),
		attribute.String(AttrMethod, r.Method),
		attribute.String(AttrOutcome, outcome),
	))
}
