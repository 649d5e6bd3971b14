package rankingdb

import (
	"time"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/uptrace/bun"
)

// RankingCache is one materialized standings row. A season's rows are
// always replaced together.
type RankingCache struct {
	bun.BaseModel `bun:"table:ranking_cache,alias:rc"`

	ID        int64                  `bun:"id,pk,autoincrement"`
	SeasonID  int64                  `bun:"season_id,notnull,unique:ranking_cache_entity"`
	Category  rankingdomain.Category `bun:"category,notnull,unique:ranking_cache_entity"`
	EntityID  int64                  `bun:"entity_id,notnull,unique:ranking_cache_entity"`
	Points    int                    `bun:"points,notnull,default:0"`
	Position  int                    `bun:"position,notnull"`
	UpdatedAt time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Entry converts the row to its domain form.
func (rc *RankingCache) Entry() rankingdomain.Entry {
	return rankingdomain.Entry{
		Category: rc.Category,
		EntityID: rc.EntityID,
		Points:   rc.Points,
		Position: rc.Position,
	}
}

// TeamTotal is a team's ledger total with its members.
type TeamTotal struct {
	TeamID      int64  `bun:"id"`
	TotalPoints int    `bun:"total_points"`
	CaptainID   int64  `bun:"captain_id"`
	PartnerID   *int64 `bun:"partner_id"`
}
