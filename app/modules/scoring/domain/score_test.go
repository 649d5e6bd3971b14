package scoringdomain

import (
	"testing"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	"github.com/stretchr/testify/assert"
)

// Drivers D1..D10 are ids 1..10, team T1 is id 100.
var officialResult = racedomain.Picks{
	PoleDriverID:  1,
	DotdDriverID:  2,
	WinningTeamID: 100,
	Top10:         [10]int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		bet  racedomain.Picks
		want int
	}{
		{
			name: "perfect bet",
			bet:  officialResult,
			want: MaxPoints,
		},
		{
			name: "duplicate in p10 loses only that slot",
			bet: racedomain.Picks{
				PoleDriverID:  1,
				DotdDriverID:  2,
				WinningTeamID: 100,
				Top10:         [10]int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 2},
			},
			want: 12,
		},
		{
			name: "right driver in the wrong slot scores nothing",
			bet: racedomain.Picks{
				Top10: [10]int64{0, 0, 0, 0, 7, 0, 5, 0, 0, 0},
			},
			want: 0,
		},
		{
			name: "extras only",
			bet: racedomain.Picks{
				PoleDriverID:  1,
				DotdDriverID:  9,
				WinningTeamID: 100,
				Top10:         [10]int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
			},
			want: 2,
		},
		{
			name: "empty bet",
			bet:  racedomain.Picks{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.bet, officialResult))
		})
	}
}

func TestScore_EmptyPicksNeverMatch(t *testing.T) {
	// A result with missing fields must not reward bets with missing fields.
	assert.Equal(t, 0, Score(racedomain.Picks{}, racedomain.Picks{}))
}

func TestCompare_ReportsEachSlot(t *testing.T) {
	bet := officialResult
	bet.Top10[4] = 7
	bet.DotdDriverID = 3

	h := Compare(bet, officialResult)
	assert.True(t, h.Pole)
	assert.False(t, h.Dotd)
	assert.True(t, h.Winner)
	assert.False(t, h.Positions[4])
	assert.True(t, h.Positions[3])
	assert.Equal(t, 11, h.Points())
}

func TestValidateBet(t *testing.T) {
	assert.NoError(t, ValidateBet(officialResult))

	dup := officialResult
	dup.Top10[9] = 2
	assert.ErrorIs(t, ValidateBet(dup), ErrDuplicatePick)

	missing := officialResult
	missing.Top10[3] = 0
	assert.ErrorIs(t, ValidateBet(missing), ErrIncompleteBet)

	noPole := officialResult
	noPole.PoleDriverID = 0
	assert.ErrorIs(t, ValidateBet(noPole), ErrIncompleteBet)
}
