package rivalrydb

import (
	"time"

	rivalrydomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/domain"
	"github.com/uptrace/bun"
)

// Rivalry is a head-to-head challenge on one race.
type Rivalry struct {
	bun.BaseModel `bun:"table:rivalries,alias:rv"`

	ID           int64                `bun:"id,pk,autoincrement"`
	ChallengerID int64                `bun:"challenger_id,notnull"`
	OpponentID   int64                `bun:"opponent_id,notnull"`
	RaceID       int64                `bun:"race_id,notnull"`
	Status       rivalrydomain.Status `bun:"status,notnull,default:'PENDING'"`
	WinnerID     *int64               `bun:"winner_id"`
	Margin       int                  `bun:"margin,notnull,default:0"`
	CreatedAt    time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Participants returns the challenger and the opponent.
func (r *Rivalry) Participants() []int64 {
	return []int64{r.ChallengerID, r.OpponentID}
}
