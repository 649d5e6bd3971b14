package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTop10(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    [10]int64
		wantErr string
	}{
		{
			name: "ten drivers",
			in:   "1, 44,16,4,81,63,12,14,10,23",
			want: [10]int64{1, 44, 16, 4, 81, 63, 12, 14, 10, 23},
		},
		{name: "too few", in: "1,2,3", wantErr: "needs 10 drivers, got 3"},
		{name: "duplicate", in: "1,2,3,4,5,6,7,8,9,1", wantErr: "driver 1 listed twice"},
		{name: "not a number", in: "1,2,3,4,5,x,7,8,9,10", wantErr: "position 6"},
		{name: "zero id", in: "0,2,3,4,5,6,7,8,9,10", wantErr: "position 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTop10(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("3, 5,,8")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 8}, ids)

	_, err = parseIDs("3,x")
	assert.Error(t, err)
}
