package middlewares

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/subhakaryam/subhakaryam/internal/web"
)

// DefaultTimeout applies when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures Timeout.
type TimeoutConfig struct {
	Timeout time.Duration
	Skip    func(c web.Context) bool
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutSkip replaces the default skip rule, which exempts event streams.
func WithTimeoutSkip(fn func(c web.Context) bool) TimeoutOption {
	return func(cfg *TimeoutConfig) { cfg.Skip = fn }
}

// Timeout attaches a deadline to the request context. A handler that returns
// after the deadline without having written a response yields a *TimeoutError.
// Handlers observe the deadline through the context they pass to stores.
func Timeout(timeout time.Duration, opts ...TimeoutOption) web.Middleware {
	cfg := &TimeoutConfig{Timeout: timeout, Skip: isEventStream}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if cfg.Skip != nil && cfg.Skip(c) {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
			defer cancel()
			c.SetContext(ctx)

			err := next(c)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
				c.LogWarn("request timeout", "timeout", cfg.Timeout.String())
				return errors.Join(&TimeoutError{Duration: cfg.Timeout}, err)
			}
			return err
		}
	}
}

func isEventStream(c web.Context) bool {
	return strings.Contains(c.Header("Accept"), "text/event-stream")
}
