package rankingservice

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	driverSheet = "Drivers"
	teamSheet   = "Teams"
)

// ExportXLSX writes the live standings of a season, drivers and teams on
// separate sheets.
func (s *RankingService) ExportXLSX(ctx context.Context, seasonID int64, w io.Writer) error {
	standings, err := s.ComputeStandings(ctx, seasonID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), driverSheet); err != nil {
		return fmt.Errorf("failed to name driver sheet: %w", err)
	}
	if _, err := f.NewSheet(teamSheet); err != nil {
		return fmt.Errorf("failed to add team sheet: %w", err)
	}

	driverRows := [][]any{{"Position", "User ID", "Points"}}
	for _, e := range standings.Drivers {
		driverRows = append(driverRows, []any{e.Position, e.EntityID, e.Points})
	}
	if err := writeRows(f, driverSheet, driverRows); err != nil {
		return err
	}

	teamRows := [][]any{{"Position", "Team ID", "Captain ID", "Partner ID", "Points"}}
	for _, t := range standings.Teams {
		partner := ""
		if t.PartnerID != nil {
			partner = strconv.FormatInt(*t.PartnerID, 10)
		}
		teamRows = append(teamRows, []any{t.Position, t.EntityID, t.CaptainID, partner, t.Points})
	}
	if err := writeRows(f, teamSheet, teamRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, idx+1, err)
		}
	}
	return nil
}
