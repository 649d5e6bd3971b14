package rankingdomain

import (
	"fmt"
	"sort"
)

// Category separates driver (user) standings from team standings.
type Category string

const (
	CategoryDriver Category = "DRIVER"
	CategoryTeam   Category = "TEAM"
)

func (c Category) Valid() bool {
	return c == CategoryDriver || c == CategoryTeam
}

// ParseCategory accepts the stored names case-sensitively.
func ParseCategory(v string) (Category, error) {
	c := Category(v)
	if !c.Valid() {
		return "", fmt.Errorf("unknown ranking category %q", v)
	}
	return c, nil
}

// Total is an unranked points sum for one user or team.
type Total struct {
	EntityID int64
	Points   int
}

// Entry is one ranked row.
type Entry struct {
	Category Category
	EntityID int64
	Points   int
	Position int
}

// Rank orders totals by points descending, lowest entity id first on ties,
// and numbers them from 1. Positions are sequential, so tied entries still
// get distinct positions.
func Rank(category Category, totals []Total) []Entry {
	sorted := make([]Total, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].EntityID < sorted[j].EntityID
	})

	entries := make([]Entry, len(sorted))
	for i, t := range sorted {
		entries[i] = Entry{Category: category, EntityID: t.EntityID, Points: t.Points, Position: i + 1}
	}
	return entries
}

// TeamEntry is a ranked team with its members.
type TeamEntry struct {
	Entry
	CaptainID int64
	PartnerID *int64
}

// Members returns the captain followed by the partner, if any.
func (t TeamEntry) Members() []int64 {
	if t.PartnerID == nil {
		return []int64{t.CaptainID}
	}
	return []int64{t.CaptainID, *t.PartnerID}
}

// Standings is the ranked state of a season.
type Standings struct {
	SeasonID int64
	Drivers  []Entry
	Teams    []TeamEntry
}

// DriverAt returns the driver holding position (1-indexed).
func (s Standings) DriverAt(position int) (Entry, bool) {
	if position < 1 || position > len(s.Drivers) {
		return Entry{}, false
	}
	return s.Drivers[position-1], true
}

// TeamAt returns the team holding position (1-indexed).
func (s Standings) TeamAt(position int) (TeamEntry, bool) {
	if position < 1 || position > len(s.Teams) {
		return TeamEntry{}, false
	}
	return s.Teams[position-1], true
}
