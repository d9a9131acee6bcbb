package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
	"github.com/subhakaryam/subhakaryam/pkg/cookie"
	"github.com/subhakaryam/subhakaryam/pkg/id"
	"github.com/subhakaryam/subhakaryam/pkg/oauth"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// GoogleFlow is the part of *oauth.Google the handler uses.
type GoogleFlow interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*oauth.UserInfo, error)
}

// Handler serves /api/auth.
type Handler struct {
	svc     *Service
	google  GoogleFlow
	cookies *cookie.Signer
}

// NewHandler wires the auth routes. google may be nil to disable Google sign-in.
func NewHandler(svc *Service, google GoogleFlow, cookies *cookie.Signer) *Handler {
	return &Handler{svc: svc, google: google, cookies: cookies}
}

func (h *Handler) Routes(r web.Router) {
	r.Route("/api/auth", func(r web.Router) {
		r.POST("/register", h.register)
		r.POST("/login", h.login)
		r.GET("/me", h.me, middlewares.RequireAuth())
		r.GET("/google", h.googleStart)
		r.GET("/google/callback", h.googleCallback)
	})
}

type registerResponse struct {
	User  *User  `json:"user"`
	Token *Token `json:"token"`
}

func (h *Handler) register(c web.Context) error {
	var in RegisterInput
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	u, tok, err := h.svc.Register(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{User: u, Token: tok})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(c web.Context) error {
	var in loginRequest
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	tok, err := h.svc.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

func (h *Handler) me(c web.Context) error {
	uid, err := CallerID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Me(c.Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) googleStart(c web.Context) error {
	if h.google == nil {
		return web.ErrNotFound("google sign-in is not enabled")
	}
	state := id.NewShortID()
	h.cookies.Set(c.Response(), stateCookie, state, stateTTL)
	return c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

func (h *Handler) googleCallback(c web.Context) error {
	if h.google == nil {
		return web.ErrNotFound("google sign-in is not enabled")
	}
	if e := c.Query("error"); e != "" {
		return web.ErrUnauthorized("google sign-in was cancelled", web.WithDetail(e))
	}

	want, err := h.cookies.Get(c.Request(), stateCookie)
	h.cookies.Delete(c.Response(), stateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		return web.ErrBadRequest("invalid oauth state", web.WithError(err))
	}

	info, err := h.google.Identify(c.Context(), c.Query("code"))
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return web.ErrForbidden("google email is not verified", web.WithError(err))
		}
		return web.ErrUnauthorized("google sign-in failed", web.WithError(err))
	}

	tok, err := h.svc.LoginWithGoogle(c.Context(), info)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}
