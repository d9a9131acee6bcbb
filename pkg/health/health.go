// Package health serves liveness and readiness probes.
//
// Readiness runs every registered check in parallel under a shared timeout
// and reports 503 when any of them fails. Both probes answer JSON.
package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 5 * time.Second
)

// CheckFunc reports a dependency's health. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Response is the probe body.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is a single dependency's result.
type Check struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures the readiness handler.
type Option func(*config)

// WithTimeout bounds the whole readiness run.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes all checks concurrently and aggregates the results.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	cfg := &config{timeout: defaultTimeout, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	resp := &Response{Status: StatusHealthy, Checks: make(map[string]Check, len(checks))}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			result.Latency = time.Since(start).Round(time.Microsecond).String()

			mu.Lock()
			resp.Checks[name] = result
			if result.Status == StatusUnhealthy {
				resp.Status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return resp
}

// LivenessHandler always answers 200 while the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Run(r.Context(), checks, opts...)
		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
