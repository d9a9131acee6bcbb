package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subhakaryam/subhakaryam/pkg/health"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// App owns the router. It is immutable once New returns.
type App struct {
	router           chi.Router
	logger           *slog.Logger
	errorHandler     ErrorHandler
	notFound         HandlerFunc
	methodNotAllowed HandlerFunc
	roles            RolePermissions
	health           *healthConfig
	middlewares      []Middleware
	handlers         []Handler
	mounts           []mount
}

type mount struct {
	pattern string
	handler http.Handler
}

// New builds the router from opts.
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// ServeHTTP makes App usable with httptest.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Every request gets one ResponseWriter so Written() is shared by all layers.
	a.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := w.(*ResponseWriter); !ok {
				w = NewResponseWriter(w)
			}
			next.ServeHTTP(w, r)
		})
	})
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.notFound != nil {
		a.router.NotFound(a.wrapHandler(a.notFound))
	}
	if a.methodNotAllowed != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowed))
	}

	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks, health.WithLogger(a.logger)))
	}
	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.deliverError(r, c, err)
		}
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogWarn("handler error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.Any("error", herr))
		}
		return
	}
	http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides /health/live.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides /health/ready.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named dependency check to the readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
