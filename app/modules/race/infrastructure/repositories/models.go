package racedb

import (
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	"github.com/uptrace/bun"
)

// Season groups races and teams. At most one season is active at a time.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:sn"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Year       int       `bun:"year,notnull,unique"`
	IsActive   bool      `bun:"is_active,notnull,default:false"`
	IsFinished bool      `bun:"is_finished,notnull,default:false"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Race is one grand prix weekend and its betting window.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:r"`

	ID          int64             `bun:"id,pk,autoincrement"`
	SeasonID    int64             `bun:"season_id,notnull"`
	Name        string            `bun:"name,notnull"`
	Country     string            `bun:"country,notnull"`
	RaceDate    time.Time         `bun:"race_date,notnull"`
	BetsOpenAt  *time.Time        `bun:"bets_open_at"`
	BetsCloseAt *time.Time        `bun:"bets_close_at"`
	Status      racedomain.Status `bun:"status,notnull,default:'SCHEDULED'"`
	Alert1hSent bool              `bun:"alert_1h_sent,notnull,default:false"`
	Alert5mSent bool              `bun:"alert_5m_sent,notnull,default:false"`
	CreatedAt   time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Result *RaceResult `bun:"rel:has-one,join:id=race_id"`
}

// Schedule projects the race onto the phase machine.
func (r *Race) Schedule() racedomain.Schedule {
	return racedomain.Schedule{
		Status:      r.Status,
		BetsOpenAt:  r.BetsOpenAt,
		BetsCloseAt: r.BetsCloseAt,
	}
}

// AlertState projects the race onto the countdown alert check.
func (r *Race) AlertState() racedomain.AlertState {
	return racedomain.AlertState{
		Status:          r.Status,
		BetsCloseAt:     r.BetsCloseAt,
		OneHourSent:     r.Alert1hSent,
		FiveMinutesSent: r.Alert5mSent,
	}
}

// RaceResult is the official answer key of a race. Zero ids are stored as
// NULL.
type RaceResult struct {
	bun.BaseModel `bun:"table:race_results,alias:rr"`

	ID            int64     `bun:"id,pk,autoincrement"`
	RaceID        int64     `bun:"race_id,notnull,unique"`
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
}

// Picks returns the result in the shape bets are scored against.
func (rr *RaceResult) Picks() racedomain.Picks {
	return racedomain.Picks{
		PoleDriverID:  rr.PoleDriverID,
		DotdDriverID:  rr.DotdDriverID,
		WinningTeamID: rr.WinningTeamID,
		Top10:         [racedomain.TopPositions]int64{rr.P1, rr.P2, rr.P3, rr.P4, rr.P5, rr.P6, rr.P7, rr.P8, rr.P9, rr.P10},
	}
}

// NewRaceResult builds a result row for raceID from picks.
func NewRaceResult(raceID int64, p racedomain.Picks) *RaceResult {
	return &RaceResult{
		RaceID:        raceID,
		PoleDriverID:  p.PoleDriverID,
		DotdDriverID:  p.DotdDriverID,
		WinningTeamID: p.WinningTeamID,
		P1:            p.Top10[0],
		P2:            p.Top10[1],
		P3:            p.Top10[2],
		P4:            p.Top10[3],
		P5:            p.Top10[4],
		P6:            p.Top10[5],
		P7:            p.Top10[6],
		P8:            p.Top10[7],
		P9:            p.Top10[8],
		P10:           p.Top10[9],
	}
}
