package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	baseCtx         context.Context
	address         string
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	listener        net.Listener
}

// Address sets the listen address. Defaults to :8080.
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// ShutdownTimeout bounds graceful shutdown. Defaults to 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs after the listener is open and before serving.
// A failing hook aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) { c.startupHooks = append(c.startupHooks, fn) }
}

// ShutdownHook runs after the HTTP server stops, in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) { c.shutdownHooks = append(c.shutdownHooks, fn) }
}

// WithContext makes Run return when ctx is cancelled, in addition to SIGINT/SIGTERM.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) { c.baseCtx = ctx }
}

// WithListener serves on an existing listener instead of Address.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) { c.listener = ln }
}

// Run serves until a signal arrives or the base context ends, then shuts down
// gracefully. Write timeouts are left to middleware so chat streams stay open.
func (a *App) Run(opts ...RunOption) error {
	cfg := &runConfig{
		baseCtx:         context.Background(),
		address:         ":8080",
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln := cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.address); err != nil {
			return err
		}
	}

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	server := &http.Server{
		Handler:           a,
		ReadTimeout:       defaultReadTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			a.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("shutdown completed")
	return nil
}
