// Package db wraps pgxpool with the connection, migration and transaction
// helpers the service needs.
//
// Configuration comes from the environment:
//
//	DATABASE_URL                 - PostgreSQL connection URL (required)
//	DATABASE_MAX_CONNS           - pool size (default: 10)
//	DATABASE_MIN_CONNS           - idle connections kept open (default: 2)
//	DATABASE_RETRY_ATTEMPTS      - startup connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL      - base backoff between attempts (default: 2s)
//	DATABASE_MIGRATIONS_TABLE    - goose version table (default: schema_migrations)
package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrParseConfig       = errors.New("db: failed to parse database configuration")
	ErrConnect           = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")
	ErrSetDialect        = errors.New("db: failed to set migration dialect")
	ErrApplyMigrations   = errors.New("db: failed to apply migrations")
)

// Config holds pool settings.
type Config struct {
	URL               string        `env:"DATABASE_URL,required"`
	MigrationsTable   string        `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
	MaxConns          int32         `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	MinConns          int32         `env:"DATABASE_MIN_CONNS" envDefault:"2"`
	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`
	RetryAttempts     int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval     time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`
}

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx, so stores can
// run the same queries inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pool and pings it. Startup failures are retried with a
// linearly growing delay: attempt n waits n*RetryInterval.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrConnect, lastErr)
}

// Healthcheck returns a readiness probe that pings the pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the pool.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}

// WithTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics, and committed otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// TxRunner runs fn in a transaction. Services take a TxRunner instead of a
// pool so tests can run fn without a database.
type TxRunner func(ctx context.Context, fn func(tx pgx.Tx) error) error

// Runner binds WithTx to pool.
func Runner(pool *pgxpool.Pool) TxRunner {
	return func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return WithTx(ctx, pool, fn)
	}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ConstraintName returns the violated constraint of a PostgreSQL error, or "".
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
