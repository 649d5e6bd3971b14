package scoringdb

import (
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	"github.com/uptrace/bun"
)

// Bet is a user's prediction for one race. TeamID is the team the user
// represented when the bet was last written; Points is only written by the
// scorer.
type Bet struct {
	bun.BaseModel `bun:"table:bets,alias:b"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        int64     `bun:"user_id,notnull,unique:bets_user_race"`
	RaceID        int64     `bun:"race_id,notnull,unique:bets_user_race"`
	TeamID        *int64    `bun:"team_id"`
	Points        int       `bun:"points,notnull,default:0"`
	PoleDriverID  int64     `bun:"pole_driver_id,nullzero"`
	DotdDriverID  int64     `bun:"dotd_driver_id,nullzero"`
	WinningTeamID int64     `bun:"winning_team_id,nullzero"`
	P1            int64     `bun:"p1,nullzero"`
	P2            int64     `bun:"p2,nullzero"`
	P3            int64     `bun:"p3,nullzero"`
	P4            int64     `bun:"p4,nullzero"`
	P5            int64     `bun:"p5,nullzero"`
	P6            int64     `bun:"p6,nullzero"`
	P7            int64     `bun:"p7,nullzero"`
	P8            int64     `bun:"p8,nullzero"`
	P9            int64     `bun:"p9,nullzero"`
	P10           int64     `bun:"p10,nullzero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Picks returns the prediction part of the bet.
func (b *Bet) Picks() racedomain.Picks {
	return racedomain.Picks{
		PoleDriverID:  b.PoleDriverID,
		DotdDriverID:  b.DotdDriverID,
		WinningTeamID: b.WinningTeamID,
		Top10:         [racedomain.TopPositions]int64{b.P1, b.P2, b.P3, b.P4, b.P5, b.P6, b.P7, b.P8, b.P9, b.P10},
	}
}

// SetPicks overwrites the prediction part of the bet.
func (b *Bet) SetPicks(p racedomain.Picks) {
	b.PoleDriverID = p.PoleDriverID
	b.DotdDriverID = p.DotdDriverID
	b.WinningTeamID = p.WinningTeamID
	b.P1, b.P2, b.P3, b.P4, b.P5 = p.Top10[0], p.Top10[1], p.Top10[2], p.Top10[3], p.Top10[4]
	b.P6, b.P7, b.P8, b.P9, b.P10 = p.Top10[5], p.Top10[6], p.Top10[7], p.Top10[8], p.Top10[9]
}
