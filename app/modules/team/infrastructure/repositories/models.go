package teamdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Team is a one or two person grouping for a season. TotalPoints is the
// materialized sum of the points of every scored bet whose snapshot
// team_id is this team, and only changes through AddPoints and
// SubtractPointsClamped.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement"`
	SeasonID    int64     `bun:"season_id,notnull"`
	Name        string    `bun:"name,notnull"`
	CaptainID   int64     `bun:"captain_id,notnull"`
	PartnerID   *int64    `bun:"partner_id"`
	TotalPoints int       `bun:"total_points,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Members returns the captain followed by the partner, if any.
func (t *Team) Members() []int64 {
	if t.PartnerID == nil {
		return []int64{t.CaptainID}
	}
	return []int64{t.CaptainID, *t.PartnerID}
}

// IsFull reports whether the team already has a partner.
func (t *Team) IsFull() bool {
	return t.PartnerID != nil
}
