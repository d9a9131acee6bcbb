package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/subhakaryam/subhakaryam/internal/web"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures CORS.
type CORSConfig struct {
	// AllowOrigins lists allowed origins; "*" allows any.
	AllowOrigins []string
	// AllowOriginFunc, when set, replaces AllowOrigins.
	AllowOriginFunc  func(origin string) bool
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOrigins = origins }
}

func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOriginFunc = fn }
}

func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowHeaders = headers }
}

func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.ExposeHeaders = headers }
}

// WithAllowCredentials makes the response echo the caller's origin instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowCredentials = true }
}

func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) { cfg.MaxAge = d }
}

// CORS adds CORS headers for allowed origins and answers preflight requests with 204.
// Requests from other origins pass through untouched and the browser blocks them.
func CORS(opts ...CORSOption) web.Middleware {
	cfg := &CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))
	wildcard := slices.Contains(cfg.AllowOrigins, "*")

	allowed := func(origin string) bool {
		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(origin)
		}
		return wildcard || slices.Contains(cfg.AllowOrigins, origin)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !allowed(origin) {
				return next(c)
			}

			h := c.Response().Header()
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials || !wildcard {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposeHeaders != "" {
				h.Set("Access-Control-Expose-Headers", exposeHeaders)
			}

			if c.Request().Method != http.MethodOptions || c.Header("Access-Control-Request-Method") == "" {
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
