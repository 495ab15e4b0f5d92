package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/bootstrap"
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/httpclient/interceptors"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
)

type callOptions struct {
	base    string
	method  string
	headers []string
	query   []string
	data    string
	action  string
	retries int
	timeout time.Duration
	trace   bool
	metrics bool
	include bool
}

func newCallCmd(root *rootOptions) *cobra.Command {
	opts := &callOptions{}
	cmd := &cobra.Command{
		Use:   "call [segments...]",
		Short: "Send one request through the pipeline and print the response body",
		Example: `  fetch call --base https://api.example.com users 42
  fetch call -X POST -H "Content-Type: application/json" -d '{"name":"ada"}' users
  fetch call --retries 3 -q page=2 -q "tag=go lang" search`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if err := opts.apply(cfg, root); err != nil {
				return err
			}
			return runCall(cmd.Context(), cfg, root, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.base, "base", "", "base URL, overrides client.base")
	f.StringVarP(&opts.method, "method", "X", "", "HTTP method (default client.method, or POST with --data)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `request header as "Key: Value" or Key=Value (repeatable)`)
	f.StringArrayVarP(&opts.query, "query", "q", nil, "query parameter as key=value (repeatable)")
	f.StringVarP(&opts.data, "data", "d", "", "request body, or @file to read it from a file")
	f.StringVar(&opts.action, "action", "", "action label carried into logs, spans and errors")
	f.IntVar(&opts.retries, "retries", -1, "maximum retries, overrides retry.max_retries")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout, overrides client.http.timeout")
	f.BoolVar(&opts.trace, "trace", false, "export a trace span per attempt over OTLP")
	f.BoolVar(&opts.metrics, "metrics", false, "export call metrics over OTLP")
	f.BoolVarP(&opts.include, "include", "i", false, "print status and response headers before the body")
	return cmd
}

// apply overlays command line flags on the loaded config.
func (o *callOptions) apply(cfg *AppConfig, root *rootOptions) error {
	if o.base != "" {
		cfg.Client.Base = o.base
	}
	if o.retries >= 0 {
		cfg.Retry.MaxRetries = o.retries
	}
	if o.timeout > 0 {
		if cfg.Client.HTTP == nil {
			cfg.Client.HTTP = &httpclient.HTTPConfig{}
		}
		cfg.Client.HTTP.Timeout = o.timeout
	}
	if o.trace {
		cfg.Telemetry.Tracing = true
	}
	if o.metrics {
		cfg.Telemetry.Metrics = true
	}
	if root.verbose {
		cfg.Logging.Level = "debug"
	}
	return nil
}

// request builds the request for segments from the flags.
func (o *callOptions) request(segments []string) (*httpclient.Request, error) {
	req := httpclient.NewRequest(o.method, segments...)
	req.Action = o.action

	for _, h := range o.headers {
		key, value, err := splitHeader(h)
		if err != nil {
			return nil, err
		}
		req.Headers.Add(key, value)
	}

	if len(o.query) > 0 {
		q := httpclient.QueryValues()
		for _, kv := range o.query {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid query %q: want key=value", kv)
			}
			q.Add(key, value)
		}
		req.Query = q
	}

	if o.data != "" {
		body, err := readData(o.data)
		if err != nil {
			return nil, err
		}
		if json.Valid(body) && !req.Headers.Has("Content-Type") {
			req.Headers.Set("Content-Type", "application/json")
		}
		req.Body = body
		if req.Method == "" {
			// A body with no explicit method means POST, as with curl.
			req.Method = "POST"
		}
	}
	return req, nil
}

func splitHeader(h string) (string, string, error) {
	sep := strings.IndexAny(h, ":=")
	if sep <= 0 {
		return "", "", fmt.Errorf(`invalid header %q: want "Key: Value" or Key=Value`, h)
	}
	return strings.TrimSpace(h[:sep]), strings.TrimSpace(h[sep+1:]), nil
}

func readData(data string) ([]byte, error) {
	path, ok := strings.CutPrefix(data, "@")
	if !ok {
		return []byte(data), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func runCall(ctx context.Context, cfg *AppConfig, root *rootOptions, opts *callOptions, segments []string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := opts.request(segments)
	if err != nil {
		return err
	}

	appOpts := []bootstrap.Option{bootstrap.WithoutSummary()}
	if root.verbose {
		appOpts = []bootstrap.Option{bootstrap.WithSummaryOutput(errOut)}
	}
	app, err := bootstrap.NewApp(cfg, appOpts...)
	if err != nil {
		return err
	}

	clientComp := httpclient.NewComponent(cfg.Client, httpclient.WithLogger(logger.Get("httpclient")))
	if err := app.RegisterComponent(clientComp); err != nil {
		return err
	}

	pipeline, err := buildPipeline(ctx, app, cfg)
	if err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		client := clientComp.Client()
		pipeline.Register(client)

		resp, err := client.Do(ctx, req)
		if err != nil {
			if e, ok := httpclient.AsError(err); ok && e.Response != nil && opts.include {
				_ = writeResponse(out, e.Response, true)
			}
			return err
		}
		return writeResponse(out, resp, opts.include)
	})
}

// buildPipeline assembles the interceptors in the order the client runs
// them. Observers come before Retry so they see every failed attempt.
func buildPipeline(ctx context.Context, app *bootstrap.App[*AppConfig], cfg *AppConfig) (interceptors.Bundle, error) {
	bundles := []interceptors.Bundle{
		interceptors.Befores(interceptors.RequestID(""), interceptors.UserAgent("")),
		interceptors.Logging(interceptors.LoggingConfig{Logger: logger.Get("call")}),
	}

	if cfg.Telemetry.Tracing {
		tp, err := observability.InitTracer(ctx, cfg.Telemetry.Tracer)
		if err != nil {
			return interceptors.Bundle{}, err
		}
		app.OnStop(tp.Shutdown)
		bundles = append(bundles, interceptors.Tracing(interceptors.TracingConfig{TracerProvider: tp}))
	}

	if cfg.Telemetry.Metrics {
		mp, err := observability.InitMeter(ctx, cfg.Telemetry.Meter)
		if err != nil {
			return interceptors.Bundle{}, err
		}
		app.OnStop(mp.Shutdown)
		cm, err := observability.NewClientMetrics(mp.Meter(observability.InstrumentationName))
		if err != nil {
			return interceptors.Bundle{}, err
		}
		bundles = append(bundles, interceptors.Metrics(interceptors.MetricsConfig{Metrics: cm}))
	}

	if cfg.Retry.MaxRetries > 0 {
		retry, err := interceptors.Retry(cfg.Retry)
		if err != nil {
			return interceptors.Bundle{}, err
		}
		bundles = append(bundles, interceptors.OnErrors(retry))
	}
	return interceptors.Chain(bundles...), nil
}

func writeResponse(w io.Writer, resp *httpclient.Response, include bool) error {
	if include {
		fmt.Fprintf(w, "HTTP %d\n", resp.Status())
		headers := resp.Raw.Header()
		keys := make([]string, 0, len(headers))
		for k := range headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range headers[k] {
				fmt.Fprintf(w, "%s: %s\n", k, v)
			}
		}
		fmt.Fprintln(w)
	}

	body, err := resp.Raw.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, err = fmt.Fprintln(w)
	}
	return err
}
