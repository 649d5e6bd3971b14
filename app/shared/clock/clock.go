// Package clock provides the civil-time clock every deadline comparison uses.
// Admins enter race deadlines in one local timezone, so "now" is always
// expressed in that same zone.
package clock

import (
	"fmt"
	"time"
)

// DefaultTimezone is the civil timezone race deadlines are entered in.
const DefaultTimezone = "America/Sao_Paulo"

// Clock abstracts time for services and the scheduler.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Civil reports wall-clock time in a fixed location.
type Civil struct {
	loc *time.Location
}

var _ Clock = (*Civil)(nil)

// NewCivil loads the named zone. An empty name selects DefaultTimezone.
func NewCivil(name string) (*Civil, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return &Civil{loc: loc}, nil
}

func (c *Civil) Now() time.Time { return time.Now().In(c.loc) }

func (c *Civil) Location() *time.Location { return c.loc }

// FakeClock is a Clock whose behaviour is supplied by the test.
type FakeClock struct {
	NowFn func() time.Time
	Loc   *time.Location
}

var _ Clock = (*FakeClock)(nil)

func (f *FakeClock) Now() time.Time {
	if f.NowFn != nil {
		return f.NowFn().In(f.Location())
	}
	return time.Now().In(f.Location())
}

func (f *FakeClock) Location() *time.Location {
	if f.Loc != nil {
		return f.Loc
	}
	return time.UTC
}

// Fixed returns a FakeClock frozen at t, in t's location.
func Fixed(t time.Time) *FakeClock {
	return &FakeClock{NowFn: func() time.Time { return t }, Loc: t.Location()}
}
