package badgedb

import (
	"time"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	"github.com/uptrace/bun"
)

// Achievement is a badge definition.
type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:a"`

	ID          int64                `bun:"id,pk,autoincrement"`
	Code        string               `bun:"code,notnull,unique"`
	Name        string               `bun:"name,notnull"`
	Description string               `bun:"description,notnull"`
	Icon        string               `bun:"icon,notnull,default:'🏆'"`
	Color       string               `bun:"color,notnull,default:'gold'"`
	RuleType    badgedomain.RuleKind `bun:"rule_type,notnull"`
	Threshold   int                  `bun:"threshold,notnull"`
	CreatedAt   time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Rule parses the stored rule.
func (a *Achievement) Rule() (badgedomain.Rule, error) {
	return badgedomain.ParseRule(a.RuleType, a.Threshold)
}

// UserAchievement is a grant. SeasonID is set for season awards only.
type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievements,alias:ua"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        int64     `bun:"user_id,notnull"`
	AchievementID int64     `bun:"achievement_id,notnull"`
	EarnedAt      time.Time `bun:"earned_at,nullzero,notnull,default:current_timestamp"`
	RaceID        *int64    `bun:"race_id"`
	TeamID        *int64    `bun:"team_id"`
	SeasonID      *int64    `bun:"season_id"`
	Seen          bool      `bun:"seen,notnull,default:false"`

	Achievement *Achievement `bun:"rel:belongs-to,join:achievement_id=id"`
}
