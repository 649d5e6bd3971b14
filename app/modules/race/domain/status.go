package racedomain

import (
	"fmt"
	"time"
)

// Status is a race's betting phase.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusOpen      Status = "OPEN"
	StatusClosed    Status = "CLOSED"
	StatusFinished  Status = "FINISHED"
)

func (s Status) order() int {
	switch s {
	case StatusScheduled:
		return 0
	case StatusOpen:
		return 1
	case StatusClosed:
		return 2
	case StatusFinished:
		return 3
	default:
		return -1
	}
}

func (s Status) Valid() bool { return s.order() >= 0 }

func (s Status) String() string { return string(s) }

// CanTransitionTo reports whether moving from s to next keeps the lifecycle
// monotonic. Time drives SCHEDULED→OPEN→CLOSED one step at a time; FINISHED
// is reachable from any earlier phase because scoring forces it.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StatusFinished {
		return s != StatusFinished
	}
	return next.order() == s.order()+1
}

// ParseStatus validates a stored status string.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown race status %q", v)
	}
	return s, nil
}

// Schedule is the slice of a race the phase machine looks at.
type Schedule struct {
	Status      Status
	BetsOpenAt  *time.Time
	BetsCloseAt *time.Time
}

// NextTransition returns the status a time-driven check moves the race to.
// It advances at most one step; callers that want to catch up a race whose
// deadlines both passed run the check again.
func NextTransition(s Schedule, now time.Time) (Status, bool) {
	switch s.Status {
	case StatusScheduled:
		if reached(s.BetsOpenAt, now) {
			return StatusOpen, true
		}
	case StatusOpen:
		if reached(s.BetsCloseAt, now) {
			return StatusClosed, true
		}
	}
	return s.Status, false
}

// AcceptsBets reports whether a bet may still be written at now.
func AcceptsBets(s Schedule, now time.Time) bool {
	if s.Status == StatusFinished {
		return false
	}
	if s.BetsCloseAt == nil {
		return true
	}
	return !now.After(s.BetsCloseAt.In(now.Location()))
}

// reached is now >= deadline, compared in now's civil location.
func reached(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	return !now.Before(deadline.In(now.Location()))
}
