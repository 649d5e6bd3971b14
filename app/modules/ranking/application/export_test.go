package rankingservice

import (
	"bytes"
	"context"
	"testing"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	repo := NewFakeRankingRepo()
	seedTotals(repo)
	svc := newTestService(repo, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), 7, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{driverSheet, teamSheet}, f.GetSheetList())

	drivers, err := f.GetRows(driverSheet)
	require.NoError(t, err)
	require.Len(t, drivers, 4)
	assert.Equal(t, []string{"Position", "User ID", "Points"}, drivers[0])
	assert.Equal(t, []string{"1", "10", "40"}, drivers[1])

	teams, err := f.GetRows(teamSheet)
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, []string{"1", "1", "30", "", "61"}, teams[1])
	assert.Equal(t, []string{"2", "2", "10", "20", "61"}, teams[2])
}

func TestRenderChart(t *testing.T) {
	pngMagic := []byte("\x89PNG")

	t.Run("draws the cached standings", func(t *testing.T) {
		repo := NewFakeRankingRepo()
		seedTotals(repo)
		svc := newTestService(repo, nil)
		require.NoError(t, svc.RefreshLeaderboard(context.Background(), 7))

		img, err := svc.RenderChart(context.Background(), 7, rankingdomain.CategoryDriver, 2)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(img, pngMagic))
	})

	t.Run("empty season renders a placeholder", func(t *testing.T) {
		svc := newTestService(NewFakeRankingRepo(), nil)

		img, err := svc.RenderChart(context.Background(), 7, rankingdomain.CategoryTeam, 0)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(img, pngMagic))
	})
}
