package main

import (
	"fmt"

	"github.com/kbukum/fetchkit/config"
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/httpclient/interceptors"
	"github.com/kbukum/fetchkit/observability"
	"github.com/kbukum/fetchkit/validation"
)

const programName = "fetch"

// AppConfig is the fetch configuration file:
//
//	client:
//	  base: https://api.example.com
//	  headers:
//	    Accept: application/json
//	  http:
//	    timeout: 10s
//	retry:
//	  max_retries: 3
//	telemetry:
//	  tracing: true
//	  tracer:
//	    endpoint: localhost:4318
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Client    httpclient.Config        `yaml:"client" mapstructure:"client"`
	Retry     interceptors.RetryConfig `yaml:"retry" mapstructure:"retry"`
	Telemetry TelemetryConfig          `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig switches OTLP export on. Exporters are only created for
// enabled signals.
type TelemetryConfig struct {
	Tracing bool                       `yaml:"tracing" mapstructure:"tracing"`
	Metrics bool                       `yaml:"metrics" mapstructure:"metrics"`
	Tracer  observability.TracerConfig `yaml:"tracer" mapstructure:"tracer"`
	Meter   observability.MeterConfig  `yaml:"meter" mapstructure:"meter"`
}

// ApplyDefaults fills in zero values. The CLI logs at warn level unless
// configured otherwise.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = programName
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Client.Name == "" {
		c.Client.Name = c.Name
	}
	if c.Client.HTTP == nil {
		c.Client.HTTP = &httpclient.HTTPConfig{}
	}
	c.Client.ApplyDefaults()
	if c.Retry.ID == "" {
		c.Retry.ID = interceptors.IDRetry
	}

	tracer := observability.DefaultTracerConfig(c.Name)
	if c.Telemetry.Tracer.ServiceName == "" {
		c.Telemetry.Tracer.ServiceName = tracer.ServiceName
	}
	if c.Telemetry.Tracer.Endpoint == "" {
		c.Telemetry.Tracer.Endpoint = tracer.Endpoint
		c.Telemetry.Tracer.Insecure = tracer.Insecure
	}
	if c.Telemetry.Tracer.SampleRate == 0 {
		c.Telemetry.Tracer.SampleRate = tracer.SampleRate
	}
	if c.Telemetry.Tracer.Environment == "" {
		c.Telemetry.Tracer.Environment = c.Environment
	}

	meter := observability.DefaultMeterConfig(c.Name)
	if c.Telemetry.Meter.ServiceName == "" {
		c.Telemetry.Meter.ServiceName = meter.ServiceName
	}
	if c.Telemetry.Meter.Endpoint == "" {
		c.Telemetry.Meter.Endpoint = meter.Endpoint
		c.Telemetry.Meter.Insecure = meter.Insecure
	}
	if c.Telemetry.Meter.Interval == 0 {
		c.Telemetry.Meter.Interval = meter.Interval
	}
	if c.Telemetry.Meter.Environment == "" {
		c.Telemetry.Meter.Environment = c.Environment
	}
}

// Validate checks the service, client and retry settings, and telemetry
// settings for enabled signals.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Retry); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if c.Telemetry.Tracing {
		if err := validation.Validate(c.Telemetry.Tracer); err != nil {
			return fmt.Errorf("telemetry.tracer: %w", err)
		}
	}
	if c.Telemetry.Metrics {
		if err := validation.Validate(c.Telemetry.Meter); err != nil {
			return fmt.Errorf("telemetry.meter: %w", err)
		}
	}
	return nil
}

func loadConfig(opts *rootOptions) (*AppConfig, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(programName, cfg, loaderOpts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
