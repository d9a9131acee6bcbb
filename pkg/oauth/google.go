// Package oauth implements "Sign in with Google" on top of x/oauth2.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrNotConfigured    = errors.New("oauth: google client is not configured")
	ErrExchangeFailed   = errors.New("oauth: code exchange failed")
	ErrFetchFailed      = errors.New("oauth: fetch user info failed")
	ErrEmailNotVerified = errors.New("oauth: email not verified")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig is embedded in the application config.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/auth/google/callback"`
}

// Enabled reports whether Google sign-in can be offered.
func (c GoogleConfig) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

// UserInfo is the verified Google identity.
type UserInfo struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Google runs the authorization code flow.
type Google struct {
	cfg         *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// Option customises Google. Mostly useful in tests.
type Option func(*Google)

// WithEndpoints overrides the token, auth and user info endpoints.
func WithEndpoints(authURL, tokenURL, userInfoURL string) Option {
	return func(g *Google) {
		g.cfg.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
		g.userInfoURL = userInfoURL
	}
}

// WithHTTPClient sets the client used for token and user info requests.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Google) { g.httpClient = c }
}

// NewGoogle returns ErrNotConfigured when the client id or secret is empty.
func NewGoogle(cfg GoogleConfig, opts ...Option) (*Google, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	g := &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// AuthCodeURL is where the browser is redirected to start sign-in.
func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Identify exchanges code for a token and returns the verified user.
func (g *Google) Identify(ctx context.Context, code string) (*UserInfo, error) {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	resp, err := g.cfg.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, body)
	}

	var u struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrFetchFailed, err)
	}
	if !u.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Picture: u.Picture}, nil
}
