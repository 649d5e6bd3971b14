package racedomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(t time.Time) *time.Time { return &t }

func TestNextTransition(t *testing.T) {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	now := time.Date(2026, 5, 10, 14, 0, 0, 0, loc)

	tests := []struct {
		name     string
		schedule Schedule
		want     Status
		moved    bool
	}{
		{
			name:     "scheduled opens at the exact instant",
			schedule: Schedule{Status: StatusScheduled, BetsOpenAt: ptr(now)},
			want:     StatusOpen,
			moved:    true,
		},
		{
			name:     "scheduled stays before open",
			schedule: Schedule{Status: StatusScheduled, BetsOpenAt: ptr(now.Add(time.Second))},
			want:     StatusScheduled,
		},
		{
			name:     "scheduled without open time never opens",
			schedule: Schedule{Status: StatusScheduled},
			want:     StatusScheduled,
		},
		{
			name: "open closes once deadline passed",
			schedule: Schedule{
				Status:      StatusOpen,
				BetsCloseAt: ptr(now.Add(-time.Minute)),
			},
			want:  StatusClosed,
			moved: true,
		},
		{
			name: "deadline stored in UTC compares as the same instant",
			schedule: Schedule{
				Status:      StatusOpen,
				BetsCloseAt: ptr(now.UTC()),
			},
			want:  StatusClosed,
			moved: true,
		},
		{
			name: "scheduled with both deadlines passed advances one step",
			schedule: Schedule{
				Status:      StatusScheduled,
				BetsOpenAt:  ptr(now.Add(-2 * time.Hour)),
				BetsCloseAt: ptr(now.Add(-time.Hour)),
			},
			want:  StatusOpen,
			moved: true,
		},
		{
			name:     "closed is terminal for time",
			schedule: Schedule{Status: StatusClosed, BetsCloseAt: ptr(now.Add(-time.Hour))},
			want:     StatusClosed,
		},
		{
			name:     "finished is never touched",
			schedule: Schedule{Status: StatusFinished, BetsOpenAt: ptr(now.Add(-time.Hour))},
			want:     StatusFinished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := NextTransition(tt.schedule, now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.moved, moved)
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusScheduled.CanTransitionTo(StatusOpen))
	assert.True(t, StatusOpen.CanTransitionTo(StatusClosed))
	assert.True(t, StatusScheduled.CanTransitionTo(StatusFinished))
	assert.True(t, StatusClosed.CanTransitionTo(StatusFinished))

	assert.False(t, StatusOpen.CanTransitionTo(StatusScheduled))
	assert.False(t, StatusScheduled.CanTransitionTo(StatusClosed))
	assert.False(t, StatusFinished.CanTransitionTo(StatusFinished))
	assert.False(t, StatusFinished.CanTransitionTo(StatusOpen))
	assert.False(t, Status("LIVE").CanTransitionTo(StatusOpen))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("OPEN")
	assert.NoError(t, err)
	assert.Equal(t, StatusOpen, s)

	_, err = ParseStatus("open")
	assert.Error(t, err)
}

func TestAcceptsBets(t *testing.T) {
	now := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)

	assert.True(t, AcceptsBets(Schedule{Status: StatusScheduled}, now))
	assert.True(t, AcceptsBets(Schedule{Status: StatusOpen, BetsCloseAt: ptr(now)}, now), "close instant is still accepted")
	assert.False(t, AcceptsBets(Schedule{Status: StatusOpen, BetsCloseAt: ptr(now.Add(-time.Nanosecond))}, now))
	assert.False(t, AcceptsBets(Schedule{Status: StatusFinished}, now))
}
