package teamservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// CreateTeam creates a season team with captainID as its only member.
func (s *TeamService) CreateTeam(ctx context.Context, seasonID int64, name string, captainID int64) (*teamdb.Team, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*teamdb.Team, error], error) {
		name = strings.TrimSpace(name)
		if name == "" || seasonID <= 0 || captainID <= 0 {
			return results.FailureResult[*teamdb.Team, error](ErrInvalidTeam), nil
		}
		if failure, err := s.ensureTeamless(ctx, db, seasonID, captainID); failure != nil || err != nil {
			return results.OperationResult[*teamdb.Team, error]{Failure: failure}, err
		}

		team := &teamdb.Team{SeasonID: seasonID, Name: name, CaptainID: captainID}
		if err := s.repo.CreateTeam(ctx, db, team); err != nil {
			return results.OperationResult[*teamdb.Team, error]{}, fmt.Errorf("failed to create team: %w", err)
		}
		return results.SuccessResult[*teamdb.Team, error](team), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "CreateTeam", strconv.FormatInt(captainID, 10),
		func(ctx context.Context) (results.OperationResult[*teamdb.Team, error], error) {
			return telemetry.RunInTx(ctx, s.db, createTx)
		})
	return telemetry.Unwrap(result, err)
}

// Join fills the partner slot of teamID with userID.
func (s *TeamService) Join(ctx context.Context, teamID, userID int64) (*teamdb.Team, error) {
	joinTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*teamdb.Team, error], error) {
		team, err := s.repo.GetTeamForUpdate(ctx, db, teamID)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[*teamdb.Team, error](ErrTeamNotFound), nil
			}
			return results.OperationResult[*teamdb.Team, error]{}, fmt.Errorf("failed to load team: %w", err)
		}
		if team.CaptainID == userID {
			return results.FailureResult[*teamdb.Team, error](ErrAlreadyInTeam), nil
		}
		if team.IsFull() {
			return results.FailureResult[*teamdb.Team, error](ErrTeamFull), nil
		}
		if failure, err := s.ensureTeamless(ctx, db, team.SeasonID, userID); failure != nil || err != nil {
			return results.OperationResult[*teamdb.Team, error]{Failure: failure}, err
		}

		ok, err := s.repo.SetPartner(ctx, db, teamID, userID)
		if err != nil {
			return results.OperationResult[*teamdb.Team, error]{}, fmt.Errorf("failed to set partner: %w", err)
		}
		if !ok {
			return results.FailureResult[*teamdb.Team, error](ErrTeamFull), nil
		}
		team.PartnerID = &userID
		return results.SuccessResult[*teamdb.Team, error](team), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "Join", strconv.FormatInt(teamID, 10),
		func(ctx context.Context) (results.OperationResult[*teamdb.Team, error], error) {
			return telemetry.RunInTx(ctx, s.db, joinTx)
		})
	return telemetry.Unwrap(result, err)
}

func (s *TeamService) Leave(ctx context.Context, seasonID, userID int64) (MembershipChange, error) {
	leaveTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[MembershipChange, error], error) {
		team, err := s.repo.FindTeamForUser(ctx, db, seasonID, userID)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[MembershipChange, error](ErrNotInTeam), nil
			}
			return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to load team: %w", err)
		}
		if team.CaptainID == userID {
			return results.FailureResult[MembershipChange, error](ErrCaptainCannotLeave), nil
		}
		return s.removePartner(ctx, db, team.ID, userID)
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "Leave", strconv.FormatInt(userID, 10),
		func(ctx context.Context) (results.OperationResult[MembershipChange, error], error) {
			release, err := s.lockLedger(ctx, seasonID)
			if err != nil {
				return s.ledgerLockFailure(err)
			}
			defer s.unlockLedger(ctx, seasonID, release)

			return telemetry.RunInTx(ctx, s.db, leaveTx)
		})
	return telemetry.Unwrap(result, err)
}

func (s *TeamService) KickPartner(ctx context.Context, teamID, captainID int64) (MembershipChange, error) {
	kickTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[MembershipChange, error], error) {
		team, err := s.repo.GetTeam(ctx, db, teamID)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[MembershipChange, error](ErrTeamNotFound), nil
			}
			return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to load team: %w", err)
		}
		if team.CaptainID != captainID {
			return results.FailureResult[MembershipChange, error](ErrNotCaptain), nil
		}
		if team.PartnerID == nil {
			return results.FailureResult[MembershipChange, error](ErrNoPartner), nil
		}
		return s.removePartner(ctx, db, team.ID, *team.PartnerID)
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "KickPartner", strconv.FormatInt(teamID, 10),
		func(ctx context.Context) (results.OperationResult[MembershipChange, error], error) {
			// Teams never change season, so the lock key can be resolved
			// before the transaction re-reads the team.
			team, err := s.repo.GetTeam(ctx, nil, teamID)
			if err != nil {
				if errors.Is(err, teamdb.ErrNotFound) {
					return results.FailureResult[MembershipChange, error](ErrTeamNotFound), nil
				}
				return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to load team: %w", err)
			}

			release, err := s.lockLedger(ctx, team.SeasonID)
			if err != nil {
				return s.ledgerLockFailure(err)
			}
			defer s.unlockLedger(ctx, team.SeasonID, release)

			return telemetry.RunInTx(ctx, s.db, kickTx)
		})
	return telemetry.Unwrap(result, err)
}

func (s *TeamService) ledgerLockFailure(err error) (results.OperationResult[MembershipChange, error], error) {
	if errors.Is(err, ErrLedgerBusy) {
		return results.FailureResult[MembershipChange, error](ErrLedgerBusy), nil
	}
	return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to lock season ledger: %w", err)
}

// removePartner debits what userID contributed to the team, detaches their
// bets from it and empties the partner slot. The team row stays locked for
// the rest of the transaction so concurrent ledger writes queue behind it.
func (s *TeamService) removePartner(ctx context.Context, db bun.IDB, teamID, userID int64) (results.OperationResult[MembershipChange, error], error) {
	if _, err := s.repo.GetTeamForUpdate(ctx, db, teamID); err != nil {
		if errors.Is(err, teamdb.ErrNotFound) {
			return results.FailureResult[MembershipChange, error](ErrTeamNotFound), nil
		}
		return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to lock team: %w", err)
	}

	contributed, err := s.repo.SumContributedPoints(ctx, db, userID, teamID)
	if err != nil {
		return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to sum contributed points: %w", err)
	}
	if err := s.ledger.Debit(ctx, db, teamID, contributed); err != nil {
		return results.OperationResult[MembershipChange, error]{}, err
	}

	detached, err := s.repo.DetachBets(ctx, db, userID, teamID)
	if err != nil {
		return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to detach bets: %w", err)
	}

	ok, err := s.repo.ClearPartner(ctx, db, teamID, userID)
	if err != nil {
		return results.OperationResult[MembershipChange, error]{}, fmt.Errorf("failed to clear partner: %w", err)
	}
	if !ok {
		return results.FailureResult[MembershipChange, error](ErrNotInTeam), nil
	}

	s.logger.InfoContext(ctx, "Partner removed from team",
		attr.TeamID(teamID),
		attr.UserID(userID),
		attr.Int("points_debited", contributed),
		attr.Int("bets_detached", detached),
	)
	return results.SuccessResult[MembershipChange, error](MembershipChange{
		TeamID:        teamID,
		UserID:        userID,
		PointsDebited: contributed,
		BetsDetached:  detached,
	}), nil
}

func (s *TeamService) ensureTeamless(ctx context.Context, db bun.IDB, seasonID, userID int64) (*error, error) {
	_, err := s.repo.FindTeamForUser(ctx, db, seasonID, userID)
	switch {
	case err == nil:
		failure := ErrAlreadyInTeam
		return &failure, nil
	case errors.Is(err, teamdb.ErrNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to check existing team: %w", err)
	}
}
