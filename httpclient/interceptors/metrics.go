package interceptors

import (
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/observability"
)

// MetricsConfig configures Metrics.
type MetricsConfig struct {
	// ID defaults to "metrics".
	ID string
	// Metrics receives one record per call attempt.
	Metrics *observability.ClientMetrics
}

// Metrics records the count and duration of every call attempt.
func Metrics(cfg MetricsConfig) Bundle {
	if cfg.ID == "" {
		cfg.ID = IDMetrics
	}

	return observer{
		id: cfg.ID,
		finish: func(r *httpclient.Request, cc *observability.CallContext, resp *httpclient.Response, e *httpclient.Error) {
			if cfg.Metrics == nil {
				return
			}
			result := observability.CallResult{
				Client:   cc.Client,
				Method:   cc.Method,
				Status:   resp.Status(),
				Attempt:  cc.Attempt,
				Duration: cc.Duration(),
			}
			if e != nil {
				result.ErrorType = string(e.Kind)
			}
			cfg.Metrics.Record(r.Context(), result)
		},
	}.bundle()
}
