//go:build integration

// Package dbtest starts a disposable PostgreSQL for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/subhakaryam/subhakaryam/pkg/db"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
)

// Postgres is a running container with a connected pool.
type Postgres struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// Start runs postgres:17-alpine and connects to it. When migrations is not
// nil the schema is applied before Start returns. The container is
// terminated on test cleanup.
func Start(t testing.TB, migrations fs.FS) *Postgres {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("subhakaryam"),
		postgres.WithUsername("subhakaryam"),
		postgres.WithPassword("subhakaryam"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := db.Connect(ctx, db.Config{URL: url, RetryAttempts: 3, RetryInterval: time.Second})
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if migrations != nil {
		if err := db.Migrate(ctx, pool, migrations, "schema_migrations", logger.NewNope()); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	return &Postgres{Container: container, Pool: pool}
}

// Truncate empties the tables and everything referencing them.
func (p *Postgres) Truncate(ctx context.Context, tables ...string) error {
	_, err := p.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", ")))
	return err
}
