package rankingservice

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette colors the rendered charts.
type Palette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

var DefaultPalette = Palette{
	Background: drawing.ColorFromHex("15171c"),
	Bar:        drawing.ColorFromHex("e10600"),
	Text:       drawing.ColorFromHex("f5f5f5"),
}

// DefaultChartSize is how many entries RenderChart draws when top <= 0.
const DefaultChartSize = 10

// RenderChart draws the cached standings of one category. Labels are the
// entity ids; the caller maps them to display names.
func (s *RankingService) RenderChart(ctx context.Context, seasonID int64, category rankingdomain.Category, top int) ([]byte, error) {
	entries, err := s.GetStandings(ctx, seasonID, category)
	if err != nil {
		return nil, err
	}
	if top <= 0 {
		top = DefaultChartSize
	}
	if len(entries) > top {
		entries = entries[:top]
	}
	return renderStandingsChart(fmt.Sprintf("%s standings", category), entries, DefaultPalette)
}

func renderStandingsChart(title string, entries []rankingdomain.Entry, palette Palette) ([]byte, error) {
	bars := make([]chart.Value, 0, len(entries))
	nonZero := false
	for _, e := range entries {
		if e.Points > 0 {
			nonZero = true
		}
		bars = append(bars, chart.Value{
			Label: "#" + strconv.Itoa(e.Position) + " " + strconv.FormatInt(e.EntityID, 10),
			Value: float64(e.Points),
			Style: chart.Style{FillColor: palette.Bar, StrokeColor: palette.Bar},
		})
	}
	// A range of zero width cannot be drawn.
	if !nonZero {
		return renderNoDataPlaceholder(palette)
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      900,
		Height:     450,
		BarWidth:   50,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{FillColor: palette.Background},
		XAxis:  chart.Style{FontColor: palette.Text},
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: palette.Text},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette Palette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No standings yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	chart.Draw.Box(r, chart.Box{Right: width, Bottom: height}, chart.Style{
		FillColor:   palette.Background,
		StrokeColor: palette.Background,
		StrokeWidth: 1,
	})
	r.SetFont(font)
	r.SetFontColor(palette.Text)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
