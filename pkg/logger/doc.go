// Package logger builds the service's slog loggers.
//
// Every logger writes JSON to stdout and runs each record through a set of
// ContextExtractor functions, so request-scoped values such as the request id
// or the authenticated user id land on every line logged with a context:
//
//	log := logger.New(middlewares.RequestIDExtractor(), auth.UserIDExtractor())
//	log.InfoContext(ctx, "booking confirmed", slog.String("booking_id", id))
//
// NewWithSentry additionally forwards warnings and errors to Sentry when a DSN
// is configured. Without a DSN it behaves exactly like New.
package logger
