//go:build integration

package containers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pitwallDB       = "pitwall_test"
	pitwallUser     = "pitwall"
	pitwallPassword = "pitwall"
	postgresImage   = "postgres:16-alpine"

	// civilTimezone is the scheduler's default zone.
	civilTimezone = "America/Sao_Paulo"
)

// SetupPostgresContainer starts the database the repositories and the job
// queue share, and returns a DSN for it.
func SetupPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	pgContainer, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase(pitwallDB),
		postgres.WithUsername(pitwallUser),
		postgres.WithPassword(pitwallPassword),
		testcontainers.WithEnv(map[string]string{
			"TZ":   civilTimezone,
			"PGTZ": civilTimezone,
		}),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
					pitwallUser, pitwallPassword, host, port.Port(), pitwallDB)
			}).WithStartupTimeout(45*time.Second),
		),
	)
	if err != nil {
		if pgContainer != nil {
			pgContainer.Terminate(ctx)
		}
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx)
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	dsn, err := withTestParams(connStr)
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, "", err
	}

	log.Printf("Postgres container ready (database %s)", pitwallDB)
	return pgContainer, dsn, nil
}

// withTestParams disables TLS and tags the connections so pg_stat_activity
// shows which ones belong to the test run.
func withTestParams(connStr string) (string, error) {
	parsed, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	query := parsed.Query()
	query.Set("sslmode", "disable")
	query.Set("application_name", "pitwall-integration")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
