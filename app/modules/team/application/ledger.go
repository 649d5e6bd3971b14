package teamservice

import (
	"context"
	"fmt"
	"log/slog"

	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/uptrace/bun"
)

// Ledger is the only writer of Team.TotalPoints. Scoring and membership
// changes both go through it, inside the caller's transaction.
type Ledger struct {
	repo   teamdb.Repository
	logger *slog.Logger
}

// NewLedger creates a ledger over repo.
func NewLedger(repo teamdb.Repository, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{repo: repo, logger: logger}
}

// Credit adds points to the team total. Non-positive amounts are ignored.
func (l *Ledger) Credit(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	if points <= 0 {
		return nil
	}
	if err := l.repo.AddPoints(ctx, db, teamID, points); err != nil {
		return fmt.Errorf("failed to credit team %d: %w", teamID, err)
	}
	l.logger.DebugContext(ctx, "Team credited", attr.TeamID(teamID), attr.Int("points", points))
	return nil
}

// Debit removes points from the team total, never going below zero.
// Non-positive amounts are ignored.
func (l *Ledger) Debit(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	if points <= 0 {
		return nil
	}
	if err := l.repo.SubtractPointsClamped(ctx, db, teamID, points); err != nil {
		return fmt.Errorf("failed to debit team %d: %w", teamID, err)
	}
	l.logger.DebugContext(ctx, "Team debited", attr.TeamID(teamID), attr.Int("points", points))
	return nil
}
