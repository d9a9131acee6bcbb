package web

import (
	"log/slog"
	"net/http"
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to every Context.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware appends global middleware. They run in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, mw...) }
}

// WithHandlers registers feature handlers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithErrorHandler sets how handler errors become responses.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.errorHandler = h }
}

// WithNotFoundHandler replaces chi's plain-text 404.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) { a.notFound = h }
}

// WithMethodNotAllowedHandler replaces chi's plain-text 405.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) { a.methodNotAllowed = h }
}

// WithRoles enables Context.Can. The role comes from the caller's Identity.
func WithRoles(perms RolePermissions) Option {
	return func(a *App) { a.roles = perms }
}

// WithMount attaches a plain http.Handler such as promhttp. Global middleware
// still runs in front of it.
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) { a.mounts = append(a.mounts, mount{pattern: pattern, handler: h}) }
}

// WithHealthChecks exposes liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{livenessPath: "/health/live", readinessPath: "/health/ready"}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}
