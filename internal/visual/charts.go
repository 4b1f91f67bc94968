package visual

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	// Asset pixel size matches the 0.35W x 0.5H visual region at roughly 200 dpi
	assetWidth  = 940
	assetHeight = 750
)

// Theme carries the design colors visuals are drawn with, as #rrggbb
type Theme struct {
	Accent     string
	Text       string
	Background string
}

var seriesPalette = []string{"#3498db", "#2ecc71", "#e67e22", "#9b59b6", "#e74c3c", "#1abc9c"}

// RenderBarChart draws a bar chart as PNG
func RenderBarChart(data ChartData, theme Theme) ([]byte, error) {
	if len(data.Values) == 0 {
		return nil, fmt.Errorf("bar chart has no values")
	}

	bars := make([]chart.Value, 0, len(data.Values))
	for i, v := range data.Values {
		fill := color(theme.Accent)
		if i > 0 {
			fill = color(seriesPalette[i%len(seriesPalette)])
		}
		bars = append(bars, chart.Value{
			Label: data.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title:      data.Title,
		TitleStyle: chart.Style{FontColor: color(theme.Text), FontSize: 16},
		Width:      assetWidth,
		Height:     assetHeight,
		BarWidth:   barWidth(len(bars)),
		Background: chart.Style{
			FillColor: color(theme.Background),
			Padding:   chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: color(theme.Background)},
		XAxis:  chart.Style{FontColor: color(theme.Text), FontSize: 11},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: color(theme.Text), FontSize: 11},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPieChart draws a pie chart as PNG
func RenderPieChart(data ChartData, theme Theme) ([]byte, error) {
	if len(data.Values) == 0 {
		return nil, fmt.Errorf("pie chart has no values")
	}

	values := make([]chart.Value, 0, len(data.Values))
	for i, v := range data.Values {
		fill := color(seriesPalette[i%len(seriesPalette)])
		if i == 0 {
			fill = color(theme.Accent)
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.0f%%", data.Labels[i], v),
			Value: v,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
				FontSize:    12,
			},
		})
	}

	graph := chart.PieChart{
		Title:      data.Title,
		TitleStyle: chart.Style{FontColor: color(theme.Text), FontSize: 16},
		Width:      assetWidth,
		Height:     assetHeight,
		Background: chart.Style{FillColor: color(theme.Background)},
		Canvas:     chart.Style{FillColor: color(theme.Background)},
		Values:     values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barWidth(n int) int {
	w := (assetWidth - 120) / max(n, 1) * 2 / 3
	return min(max(w, 30), 140)
}

// color parses #rrggbb, falling back to dark gray on empty input
func color(hex string) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if hex == "" {
		return drawing.ColorFromHex("333333")
	}
	return drawing.ColorFromHex(hex)
}
