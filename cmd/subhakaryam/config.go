package main

import (
	"time"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/notify"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/pkg/db"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
	"github.com/subhakaryam/subhakaryam/pkg/mailer"
	"github.com/subhakaryam/subhakaryam/pkg/mailer/resend"
	"github.com/subhakaryam/subhakaryam/pkg/oauth"
	"github.com/subhakaryam/subhakaryam/pkg/redis"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
)

// config is read from the environment once at startup.
type config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	CookieSecret    string        `env:"COOKIE_SECRET"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"true"`
	UploadsURL      string        `env:"UPLOADS_URL" envDefault:"http://localhost:8080/uploads"`
	ListingCacheTTL time.Duration `env:"PROVIDER_LISTING_TTL" envDefault:"5m"`

	DB      db.Config
	Redis   redis.Config
	Storage storage.Config
	Mailer  mailer.Config
	Resend  resend.Config
	Sentry  logger.SentryConfig
	Auth    auth.Config
	Payment payment.Config
	Google  oauth.GoogleConfig
	Notify  notify.Config
}

// cookieSecret falls back to the JWT secret so a single secret is enough in
// development.
func (c config) cookieSecret() string {
	if c.CookieSecret != "" {
		return c.CookieSecret
	}
	return c.Auth.JWTSecret
}
