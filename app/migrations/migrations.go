// Package migrations lists the schema of every module in dependency order.
package migrations

import (
	"context"
	"fmt"

	badgemigrations "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories/migrations"
	racemigrations "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories/migrations"
	rankingmigrations "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories/migrations"
	rivalrymigrations "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories/migrations"
	scoringmigrations "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories/migrations"
	teammigrations "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module is one module's migration set.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules are applied in slice order: later schemas reference earlier ones.
var Modules = []Module{
	{Name: "race", Migrations: racemigrations.Migrations},
	{Name: "team", Migrations: teammigrations.Migrations},
	{Name: "scoring", Migrations: scoringmigrations.Migrations},
	{Name: "badge", Migrations: badgemigrations.Migrations},
	{Name: "rivalry", Migrations: rivalrymigrations.Migrations},
	{Name: "ranking", Migrations: rankingmigrations.Migrations},
}

// NewMigrator returns a migrator that tracks m in its own bookkeeping table,
// so rolling back one module never touches another.
func NewMigrator(db *bun.DB, m Module) *migrate.Migrator {
	return migrate.NewMigrator(db, m.Migrations,
		migrate.WithTableName("bun_migrations_"+m.Name),
		migrate.WithLocksTableName("bun_migration_locks_"+m.Name),
	)
}

// Up initializes and applies every module, in order.
func Up(ctx context.Context, db *bun.DB) error {
	for _, m := range Modules {
		migrator := NewMigrator(db, m)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s migrations: %w", m.Name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
	}
	return nil
}

// River applies the job queue schema in direction. Down steps back one
// version at a time.
func River(ctx context.Context, dsn string, direction rivermigrate.Direction) (*rivermigrate.MigrateResult, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create River migrator: %w", err)
	}

	opts := &rivermigrate.MigrateOpts{}
	if direction == rivermigrate.DirectionDown {
		opts.MaxSteps = 1
	}
	res, err := migrator.Migrate(ctx, direction, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to run River migrations: %w", err)
	}
	return res, nil
}
