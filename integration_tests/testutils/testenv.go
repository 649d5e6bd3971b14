//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"testing"

	"github.com/Black-And-White-Club/pitwall-bot/app/migrations"
	"github.com/Black-And-White-Club/pitwall-bot/integration_tests/containers"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	// Registers the "pgx" driver the container wait strategy pings with.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// appTables are emptied between tests. The achievement catalogue is seeded
// by a migration and survives resets.
var appTables = []string{
	"ranking_cache",
	"rivalries",
	"user_achievements",
	"bets",
	"teams",
	"race_results",
	"races",
	"seasons",
	"river_job",
}

// TestEnvironment is a migrated Postgres shared by the tests of one package.
type TestEnvironment struct {
	PgContainer *postgres.PostgresContainer
	DSN         string
	DB          *bun.DB
}

var (
	env     *TestEnvironment
	envOnce sync.Once
	envErr  error
)

// GetTestEnv starts the container on first use. The container lives until
// the test binary exits.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()

	envOnce.Do(func() {
		env, envErr = newTestEnvironment(context.Background())
	})
	if envErr != nil {
		t.Fatalf("test environment initialization failed: %v", envErr)
	}
	return env
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())

	if _, err := migrations.River(ctx, dsn, rivermigrate.DirectionUp); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		return nil, err
	}
	if err := migrations.Up(ctx, db); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		return nil, err
	}
	log.Println("All migrations ran successfully")

	return &TestEnvironment{PgContainer: pgContainer, DSN: dsn, DB: db}, nil
}

// Reset truncates every application table.
func (e *TestEnvironment) Reset(ctx context.Context) error {
	for _, table := range appTables {
		if _, err := e.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
