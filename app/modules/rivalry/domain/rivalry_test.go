package rivalrydomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		challenger int
		opponent   int
		wantWinner int64
		wantMargin int
	}{
		{name: "challenger wins", challenger: 9, opponent: 4, wantWinner: 1, wantMargin: 5},
		{name: "opponent wins", challenger: 2, opponent: 13, wantWinner: 2, wantMargin: 11},
		{name: "missing bet counts zero", challenger: 0, opponent: 3, wantWinner: 2, wantMargin: 3},
		{name: "tie", challenger: 6, opponent: 6},
		{name: "scoreless tie", challenger: 0, opponent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resolve(1, tt.challenger, 2, tt.opponent)
			if tt.wantWinner == 0 {
				assert.Nil(t, out.WinnerID)
				assert.Zero(t, out.Margin)
				return
			}
			require.NotNil(t, out.WinnerID)
			assert.Equal(t, tt.wantWinner, *out.WinnerID)
			assert.Equal(t, tt.wantMargin, out.Margin)
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusAccepted))
	assert.True(t, StatusPending.CanTransitionTo(StatusDeclined))
	assert.True(t, StatusAccepted.CanTransitionTo(StatusFinished))
	assert.False(t, StatusPending.CanTransitionTo(StatusFinished))
	assert.False(t, StatusAccepted.CanTransitionTo(StatusDeclined))
	assert.False(t, StatusDeclined.CanTransitionTo(StatusAccepted))
	assert.False(t, StatusFinished.CanTransitionTo(StatusPending))
}
