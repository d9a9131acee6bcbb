package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subhakaryam/subhakaryam/pkg/validator"
)

// Permission names an action guarded by RBAC.
type Permission string

// RolePermissions maps a role to the permissions it grants.
type RolePermissions = map[string][]Permission

// Identity is the authenticated caller, set by the auth middleware.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type identityKey struct{}

// maxJSONBody caps request bodies decoded by BindJSON.
const maxJSONBody = 1 << 20

// Context gives handlers access to the request, the response and the caller.
// It implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter
	Context() context.Context

	// SetContext replaces the request context, e.g. to attach a deadline.
	SetContext(ctx context.Context)

	Param(name string) string
	Query(name string) string
	Header(name string) string
	SetHeader(name, value string)

	// BindJSON decodes the body into v and validates its struct tags.
	// Malformed JSON yields a 400 HTTPError; invalid fields yield
	// validator.ValidationErrors.
	BindJSON(v any) error

	JSON(code int, v any) error
	NoContent(code int) error
	Redirect(code int, url string) error
	Written() bool

	// Identity returns the authenticated caller, or false for anonymous requests.
	Identity() (Identity, bool)
	SetIdentity(id Identity)
	// Can reports whether the caller's role grants p.
	Can(p Permission) bool

	Set(key, value any)
	Get(key any) any

	Logger() *slog.Logger
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	logger   *slog.Logger
	roles    RolePermissions
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{request: r, response: rw, logger: app.logger, roles: app.roles}
}

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) Request() *http.Request          { return c.request }
func (c *requestContext) Response() http.ResponseWriter   { return c.response }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.response }
func (c *requestContext) Context() context.Context        { return c.request.Context() }

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Param(name string) string { return chi.URLParam(c.request, name) }
func (c *requestContext) Query(name string) string { return c.request.URL.Query().Get(name) }
func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) BindJSON(v any) error {
	dec := json.NewDecoder(io.LimitReader(c.request.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrBadRequest("request body is empty", WithError(err))
		}
		return ErrBadRequest("malformed JSON body", WithError(err), WithDetail(err.Error()))
	}
	if err := validator.Struct(v); err != nil {
		if validator.IsValidationError(err) {
			return err
		}
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Written() bool { return c.response.Written() }

func (c *requestContext) Identity() (Identity, bool) {
	id, ok := c.request.Context().Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

func (c *requestContext) SetIdentity(id Identity) {
	c.Set(identityKey{}, id)
}

func (c *requestContext) Can(p Permission) bool {
	id, ok := c.Identity()
	if !ok || c.roles == nil {
		return false
	}
	return slices.Contains(c.roles[id.Role], p)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any { return c.request.Context().Value(key) }

func (c *requestContext) Logger() *slog.Logger { return c.logger }

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

// IdentityFrom returns the identity stored on ctx by the auth middleware.
// Used by log extractors and code that only holds a context.Context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
