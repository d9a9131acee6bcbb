// Package webtest runs handlers through a real web.App in tests.
package webtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/pkg/validator"
)

const (
	userHeader = "X-Test-User"
	roleHeader = "X-Test-Role"
)

// Server wraps an App and remembers the last error its handlers returned.
type Server struct {
	app http.Handler
	mu  sync.Mutex
	err error
}

// New builds an App serving handlers. Requests made with AsUser are
// authenticated; roles grant permissions as in perms.
func New(perms web.RolePermissions, handlers ...web.Handler) *Server {
	s := &Server{}
	s.app = web.New(
		web.WithHandlers(handlers...),
		web.WithRoles(perms),
		web.WithMiddleware(fakeAuth),
		web.WithErrorHandler(s.handleError),
	)
	return s
}

func fakeAuth(next web.HandlerFunc) web.HandlerFunc {
	return func(c web.Context) error {
		if uid := c.Header(userHeader); uid != "" {
			c.SetIdentity(web.Identity{UserID: uid, Role: c.Header(roleHeader)})
		}
		return next(c)
	}
}

// handleError renders HTTPErrors and validation errors with their status and
// anything else as 500.
func (s *Server) handleError(c web.Context, err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": ve})
	}
	if he := web.AsHTTPError(err); he != nil {
		return c.JSON(he.Code, he)
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
}

// Err returns the last error that reached the error handler.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Do serves req.
func (s *Server) Do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	return rec
}

// Request builds a request with body encoded as JSON when it is not nil.
func Request(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			r = bytes.NewBufferString(raw)
		} else {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			r = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// AsUser marks req as coming from userID with role.
func AsUser(req *http.Request, userID, role string) *http.Request {
	req.Header.Set(userHeader, userID)
	req.Header.Set(roleHeader, role)
	return req
}

// Decode unmarshals the recorded body into v.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}
