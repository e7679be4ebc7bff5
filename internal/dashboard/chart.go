package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lamitex/lamitex-crm/internal/catalog"
)

// ChartKind selects a dashboard chart.
type ChartKind string

const (
	ChartSegments ChartKind = "segments"
	ChartPipeline ChartKind = "pipeline"
)

// ErrUnknownChart is returned for a chart kind that does not exist.
var ErrUnknownChart = errors.New("dashboard: unknown chart")

var brandBlue = drawing.ColorFromHex("0047AB")

// ParseChartKind validates a chart name.
func ParseChartKind(raw string) (ChartKind, error) {
	switch k := ChartKind(raw); k {
	case ChartSegments, ChartPipeline:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, raw)
}

// RenderChart writes the requested bar chart as PNG. Segments plots lead
// counts per segment; pipeline plots value per stage.
func (d *Dashboard) RenderChart(ctx context.Context, kind ChartKind, w io.Writer) error {
	stats, err := d.Stats(ctx, catalog.CategoryAll)
	if err != nil {
		return err
	}

	var bars []chart.Value
	switch kind {
	case ChartSegments:
		for _, s := range stats.Segments {
			bars = append(bars, bar(float64(s.Count), string(s.Segment)))
		}
	case ChartPipeline:
		for _, s := range stats.Stages {
			bars = append(bars, bar(s.Total, s.Label))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}

	yMax := 0.0
	for _, b := range bars {
		if b.Value > yMax {
			yMax = b.Value
		}
	}
	// go-chart rejects a zero-height range.
	if yMax <= 0 {
		yMax = 1
	}

	graph := chart.BarChart{
		Width:    1100,
		Height:   600,
		BarWidth: 56,
		Background: chart.Style{Padding: chart.Box{
			Top:    50,
			Left:   16,
			Right:  16,
			Bottom: 0,
		}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: yMax}},
		Bars:  bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("dashboard: render %s chart: %w", kind, err)
	}
	return nil
}

func bar(v float64, label string) chart.Value {
	return chart.Value{
		Value: v,
		Label: label,
		Style: chart.Style{FillColor: brandBlue, StrokeColor: brandBlue},
	}
}
