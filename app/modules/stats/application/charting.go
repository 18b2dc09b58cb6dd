package statsservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// ChartPalette holds the colors used for rendered charts.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultPalette matches the dark embed theme the gateway renders around
// the attached image.
func DefaultPalette() ChartPalette {
	return ChartPalette{
		Background:  drawing.Color{R: 0x2b, G: 0x2d, B: 0x31, A: 0xff},
		PrimaryLine: drawing.Color{R: 0x58, G: 0x65, B: 0xf2, A: 0xff},
		AccentLine:  drawing.Color{R: 0xfe, G: 0xe7, B: 0x5c, A: 0xff},
		TextColor:   drawing.Color{R: 0xdb, G: 0xde, B: 0xe1, A: 0xff},
	}
}

func kdaRatio(m MatchSummary) float64 {
	if m.Deaths == 0 {
		return float64(m.Kills + m.Assists)
	}
	return float64(m.Kills+m.Assists) / float64(m.Deaths)
}

// GeneratePerformanceChart produces a PNG line chart of KDA across recent
// matches, oldest to newest.
func GeneratePerformanceChart(history *MatchHistory, palette ChartPalette) ([]byte, error) {
	// go-chart cannot render a zero-width time range.
	if history == nil || len(history.Matches) < 2 {
		return renderNoDataPlaceholder(palette)
	}

	// History arrives newest first; the x-axis reads left to right in time.
	matches := history.Matches
	xValues := make([]time.Time, len(matches))
	yValues := make([]float64, len(matches))
	for i, m := range matches {
		j := len(matches) - 1 - i
		xValues[j] = time.UnixMilli(m.GameCreation)
		yValues[j] = kdaRatio(m)
	}

	mainSeries := chart.TimeSeries{
		Name:    "KDA",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    palette.AccentLine,
		},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s - last %d matches", history.GameName, len(matches)),
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		YAxis: chart.YAxis{
			Name: "KDA",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "Not enough matches to chart"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// PerformanceChart renders a PNG of the user's recent match performance.
// The second return value is the attachment filename.
func (s *StatsService) PerformanceChart(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
	count = clampMatchCount(count)
	result, err := withTelemetry(s, ctx, "PerformanceChart", string(userID), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		history, err := s.recentHistory(ctx, userID, count)
		if err != nil {
			if errors.Is(err, ErrNoLink) {
				return results.FailureResult[[]byte, error](err), nil
			}
			return results.OperationResult[[]byte, error]{}, err
		}
		png, err := GeneratePerformanceChart(history, DefaultPalette())
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
	if err != nil {
		return nil, "", err
	}
	if result.IsFailure() {
		return nil, "", *result.Failure
	}
	return *result.Success, "performance.png", nil
}
