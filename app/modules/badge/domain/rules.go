// Package badgedomain holds achievement rule kinds and their evaluators.
package badgedomain

import (
	"errors"
	"fmt"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
)

// RuleKind is the stored discriminator of an achievement rule.
type RuleKind string

const (
	KindTotalPoints       RuleKind = "TOTAL_POINTS"
	KindRacePoints        RuleKind = "RACE_POINTS"
	KindPoleHits          RuleKind = "POLE_HITS"
	KindWinnerHits        RuleKind = "WINNER_HITS"
	KindDotdHits          RuleKind = "DOTD_HITS"
	KindRacesParticipated RuleKind = "RACES_PARTICIPATED"
	KindPilotRanking      RuleKind = "PILOT_RANKING"
	KindTeamRanking       RuleKind = "TEAM_RANKING"
)

// RaceKinds are evaluated after every scored bet.
var RaceKinds = []RuleKind{
	KindTotalPoints,
	KindRacePoints,
	KindPoleHits,
	KindWinnerHits,
	KindDotdHits,
	KindRacesParticipated,
}

// SeasonKinds are evaluated once, when a season closes.
var SeasonKinds = []RuleKind{KindPilotRanking, KindTeamRanking}

var (
	ErrUnknownRule      = errors.New("unknown achievement rule")
	ErrInvalidThreshold = errors.New("achievement threshold must be positive")
)

// RaceStats is what per-race rules measure for one user after one race.
type RaceStats struct {
	RacePoints        int `bun:"race_points"`
	TotalPoints       int `bun:"total_points"`
	PoleHits          int `bun:"pole_hits"`
	WinnerHits        int `bun:"winner_hits"`
	DotdHits          int `bun:"dotd_hits"`
	RacesParticipated int `bun:"races_participated"`
}

// Rule is an achievement condition. The set of implementations is closed:
// RaceRule and SeasonRule.
type Rule interface {
	Kind() RuleKind
	Threshold() int
	isRule()
}

// RaceRule compares one RaceStats metric against a threshold.
type RaceRule struct {
	kind      RuleKind
	threshold int
	metric    func(RaceStats) int
}

func (r RaceRule) Kind() RuleKind { return r.kind }
func (r RaceRule) Threshold() int { return r.threshold }
func (RaceRule) isRule()          {}

// Met reports whether stats reach the threshold.
func (r RaceRule) Met(stats RaceStats) bool {
	return r.metric(stats) >= r.threshold
}

// SeasonRule awards whoever holds a position in a final standings category.
type SeasonRule struct {
	kind     RuleKind
	Category rankingdomain.Category
	Position int
}

func (r SeasonRule) Kind() RuleKind { return r.kind }
func (r SeasonRule) Threshold() int { return r.Position }
func (SeasonRule) isRule()          {}

// Winner is one user granted a season award.
type Winner struct {
	UserID int64
	TeamID *int64
}

// Winners returns the users holding the rule's position. For team
// standings both members win. A position past the end of the standings has
// no winners.
func (r SeasonRule) Winners(s rankingdomain.Standings) []Winner {
	switch r.Category {
	case rankingdomain.CategoryDriver:
		e, ok := s.DriverAt(r.Position)
		if !ok {
			return nil
		}
		return []Winner{{UserID: e.EntityID}}
	case rankingdomain.CategoryTeam:
		t, ok := s.TeamAt(r.Position)
		if !ok {
			return nil
		}
		teamID := t.EntityID
		members := t.Members()
		out := make([]Winner, len(members))
		for i, userID := range members {
			out[i] = Winner{UserID: userID, TeamID: &teamID}
		}
		return out
	}
	return nil
}

// ParseRule builds the evaluator for a stored kind and threshold.
func ParseRule(kind RuleKind, threshold int) (Rule, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}

	race := func(metric func(RaceStats) int) Rule {
		return RaceRule{kind: kind, threshold: threshold, metric: metric}
	}

	switch kind {
	case KindTotalPoints:
		return race(func(s RaceStats) int { return s.TotalPoints }), nil
	case KindRacePoints:
		return race(func(s RaceStats) int { return s.RacePoints }), nil
	case KindPoleHits:
		return race(func(s RaceStats) int { return s.PoleHits }), nil
	case KindWinnerHits:
		return race(func(s RaceStats) int { return s.WinnerHits }), nil
	case KindDotdHits:
		return race(func(s RaceStats) int { return s.DotdHits }), nil
	case KindRacesParticipated:
		return race(func(s RaceStats) int { return s.RacesParticipated }), nil
	case KindPilotRanking:
		return SeasonRule{kind: kind, Category: rankingdomain.CategoryDriver, Position: threshold}, nil
	case KindTeamRanking:
		return SeasonRule{kind: kind, Category: rankingdomain.CategoryTeam, Position: threshold}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRule, kind)
}
