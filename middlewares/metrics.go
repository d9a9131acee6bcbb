package middlewares

import (
	"net/http"
	"time"

	"github.com/subhakaryam/subhakaryam/internal/web"
)

// RequestObserver records one finished request.
type RequestObserver interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// StatusMapper predicts the status the error handler will render for err.
type StatusMapper func(err error) int

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	status StatusMapper
}

// WithStatusMapper lets Metrics count errors under the status the
// application's error handler will use for them.
func WithStatusMapper(fn StatusMapper) MetricsOption {
	return func(cfg *metricsConfig) {
		if fn != nil {
			cfg.status = fn
		}
	}
}

// Metrics reports every request to obs. Place it early in the chain so that
// errors from later middleware and handlers have not been rendered yet.
func Metrics(obs RequestObserver, opts ...MetricsOption) web.Middleware {
	cfg := &metricsConfig{status: httpErrorStatus}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			start := time.Now()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = cfg.status(err)
			}
			obs.ObserveRequest(c.Request().Method, status, time.Since(start))
			return err
		}
	}
}

func httpErrorStatus(err error) int {
	if he := web.AsHTTPError(err); he != nil {
		return he.Code
	}
	if status := StatusOf(err); status != 0 {
		return status
	}
	return http.StatusInternalServerError
}
