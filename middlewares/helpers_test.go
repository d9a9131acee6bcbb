package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
)

type routeFunc func(r web.Router)

func (f routeFunc) Routes(r web.Router) { f(r) }

// recorder captures the last error that reached the error handler.
type recorder struct {
	mu  sync.Mutex
	err error
}

func (r *recorder) handle(c web.Context, err error) error {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()

	switch {
	case middlewares.IsPanicError(err):
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "internal error"})
	case middlewares.IsTimeoutError(err):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"message": "timeout"})
	}
	if he := web.AsHTTPError(err); he != nil {
		return c.JSON(he.Code, he)
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
}

func (r *recorder) last() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// serve mounts h at every method of "/" behind mw and runs req through it.
func serve(t *testing.T, req *http.Request, h web.HandlerFunc, mw ...web.Middleware) (*httptest.ResponseRecorder, *recorder) {
	t.Helper()
	rec := &recorder{}
	app := web.New(
		web.WithMiddleware(mw...),
		web.WithErrorHandler(rec.handle),
		web.WithRoles(web.RolePermissions{
			"admin":    {"providers.verify", "payments.resolve"},
			"provider": {"bookings.confirm"},
		}),
		web.WithHandlers(routeFunc(func(r web.Router) {
			r.GET("/", h)
			r.POST("/", h)
			r.DELETE("/", h)
		})),
	)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w, rec
}

func ok(c web.Context) error { return c.NoContent(http.StatusOK) }
