package middlewares

import (
	"github.com/subhakaryam/subhakaryam/internal/web"
)

// TokenParser resolves an access token into the caller's identity.
type TokenParser interface {
	Authenticate(token string) (web.Identity, error)
}

// AuthConfig configures Authenticate.
type AuthConfig struct {
	Extractor web.Extractor
}

// AuthOption configures AuthConfig.
type AuthOption func(*AuthConfig)

// WithTokenExtractor replaces the default bearer-token extractor.
func WithTokenExtractor(ext web.Extractor) AuthOption {
	return func(cfg *AuthConfig) { cfg.Extractor = ext }
}

// Authenticate stores the identity behind a valid token. Requests without a
// token continue anonymously; a token that fails to parse is a 401.
func Authenticate(parser TokenParser, opts ...AuthOption) web.Middleware {
	cfg := &AuthConfig{Extractor: web.NewExtractor(web.FromBearerToken())}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			token, ok := cfg.Extractor.Extract(c)
			if !ok {
				return next(c)
			}
			id, err := parser.Authenticate(token)
			if err != nil {
				return web.ErrUnauthorized("invalid or expired token", web.WithError(err))
			}
			c.SetIdentity(id)
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if _, ok := c.Identity(); !ok {
				return web.ErrUnauthorized("authentication required")
			}
			return next(c)
		}
	}
}

// RequireRole admits authenticated callers holding one of roles.
func RequireRole(roles ...string) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			id, ok := c.Identity()
			if !ok {
				return web.ErrUnauthorized("authentication required")
			}
			for _, r := range roles {
				if id.Role == r {
					return next(c)
				}
			}
			return web.ErrForbidden("insufficient role")
		}
	}
}

// RequirePermission admits callers whose role grants p.
func RequirePermission(p web.Permission) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if _, ok := c.Identity(); !ok {
				return web.ErrUnauthorized("authentication required")
			}
			if !c.Can(p) {
				return web.ErrForbidden("permission denied")
			}
			return next(c)
		}
	}
}
