package interceptors

import (
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
)

// LoggingConfig configures Logging.
type LoggingConfig struct {
	// ID defaults to "logging".
	ID string
	// Logger defaults to the global logger tagged "httpclient".
	Logger *logger.Logger
}

// Logging logs every call attempt with method, path, status and duration.
// Completed calls log at debug level, 4xx failures at warn and 5xx or
// network failures at error.
func Logging(cfg LoggingConfig) Bundle {
	if cfg.ID == "" {
		cfg.ID = IDLogging
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get("httpclient")
	}

	return observer{
		id: cfg.ID,
		finish: func(r *httpclient.Request, cc *observability.CallContext, resp *httpclient.Response, e *httpclient.Error) {
			fields := logger.Fields(
				logger.FieldMethod, cc.Method,
				logger.FieldURL, cc.Path,
				logger.FieldDuration, cc.Duration().Milliseconds(),
			)
			if cc.Client != "" {
				fields["client"] = cc.Client
			}
			if cc.Action != "" {
				fields[logger.FieldAction] = cc.Action
			}
			if cc.Attempt > 0 {
				fields[logger.FieldAttempt] = cc.Attempt
			}
			if id := r.Headers.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			status := resp.Status()
			if status != 0 {
				fields[logger.FieldStatus] = status
			}

			if e == nil {
				log.Debug("call completed", fields)
				return
			}
			fields[logger.FieldError] = e.Message
			fields[logger.FieldStage] = string(e.Kind)
			if status >= 400 && status < 500 {
				log.Warn("call failed", fields)
				return
			}
			log.Error("call failed", fields)
		},
	}.bundle()
}
