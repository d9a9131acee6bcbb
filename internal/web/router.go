package web

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router is what handlers use to declare routes.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	PUT(path string, h HandlerFunc, mw ...Middleware)
	PATCH(path string, h HandlerFunc, mw ...Middleware)
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// Group creates an inline group that can carry its own middleware.
	Group(fn func(r Router))
	// Route creates a group under a path prefix.
	Route(pattern string, fn func(r Router))
	Use(mw ...Middleware)
	// Mount attaches a plain http.Handler, e.g. promhttp.
	Mount(pattern string, h http.Handler)
}

type routerAdapter struct {
	router chi.Router
	app    *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Get(path, r.wrap(h, mw))
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Post(path, r.wrap(h, mw))
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Put(path, r.wrap(h, mw))
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Patch(path, r.wrap(h, mw))
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Delete(path, r.wrap(h, mw))
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) { fn(&routerAdapter{router: cr, app: r.app}) })
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) { fn(&routerAdapter{router: cr, app: r.app}) })
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

// wrap applies route middleware so that the first one listed runs first.
func (r *routerAdapter) wrap(h HandlerFunc, mw []Middleware) http.HandlerFunc {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	return r.app.wrapHandler(h)
}

// adaptMiddleware turns a Middleware into chi middleware. Values the
// middleware stores on the Context travel to the next handler with the request.
// Errors from inner layers are handed back through an errorSink so that every
// global middleware sees them, and only the outermost layer renders them.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := mw(func(c Context) error {
				sink := &errorSink{}
				req := c.Request()
				next.ServeHTTP(c.Response(), req.WithContext(context.WithValue(req.Context(), errorSinkKey{}, sink)))
				return sink.err
			})
			c := newContext(w, r, a)
			if err := h(c); err != nil {
				a.deliverError(r, c, err)
			}
		})
	}
}

type errorSinkKey struct{}

type errorSink struct{ err error }

// deliverError passes err to the enclosing middleware, or renders it when
// there is none.
func (a *App) deliverError(r *http.Request, c Context, err error) {
	if sink, ok := r.Context().Value(errorSinkKey{}).(*errorSink); ok {
		sink.err = err
		return
	}
	a.handleError(c, err)
}
