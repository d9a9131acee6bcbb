package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/subhakaryam/subhakaryam/internal/web"
)

// DefaultStackSize caps the captured stack trace, in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures Recover.
type RecoverConfig struct {
	StackSize    int
	DisableStack bool
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

func WithRecoverDisableStack() RecoverOption {
	return func(cfg *RecoverConfig) { cfg.DisableStack = true }
}

// Recover converts a panic into a *PanicError for the application's error handler.
func Recover(opts ...RecoverOption) web.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				pe := &PanicError{
					Value: r,
					Route: c.Request().Method + " " + c.Request().URL.Path,
				}
				if !cfg.DisableStack {
					stack := make([]byte, cfg.StackSize)
					pe.Stack = stack[:runtime.Stack(stack, false)]
				}
				c.LogError("panic recovered", slog.Any("panic", pe))
				err = pe
			}()
			return next(c)
		}
	}
}
