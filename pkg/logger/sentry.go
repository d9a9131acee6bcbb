package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig configures error forwarding to Sentry.
type SentryConfig struct {
	DSN         string     `env:"SENTRY_DSN"`
	Environment string     `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string     `env:"SENTRY_RELEASE"`
	Level       slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// NewWithSentry returns a JSON stdout logger that also ships records to Sentry.
// Errors become Sentry issues, warnings are stored as breadcrumb logs.
// An empty DSN or a failed init falls back to the plain stdout logger.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := jsonHandler(os.Stdout, cfg.Level)

	if cfg.DSN == "" {
		return slog.New(Decorate(stdout, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("sentry init failed", slog.String("error", err.Error()))
		return slog.New(Decorate(stdout, extractors...))
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(Decorate(fanout{stdout, sentryHandler}, extractors...))
}
