package figure

import (
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderPNG draws a static version of fig: dimensions 1 and 2 only, one dot
// series per trace plus point labels, on the figure's fixed axis ranges.
func RenderPNG(w io.Writer, fig Figure) error {
	x, y := fig.Layout.XAxis, fig.Layout.YAxis
	title := fig.Layout.Title.Text
	if fig.Layout.Scene != nil {
		x, y = &fig.Layout.Scene.XAxis, &fig.Layout.Scene.YAxis
		title += " (dimensions 1-2)"
	}
	if x == nil || y == nil {
		return fmt.Errorf("figure %q has no axes", fig.Layout.Title.Text)
	}

	var series []chart.Series
	var labels []chart.Value2
	for _, t := range fig.Data {
		if len(t.X) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    t.Name,
			XValues: t.X,
			YValues: t.Y,
			Style:   dotStyle(t.Marker.Color),
		})
		for i := range t.X {
			labels = append(labels, chart.Value2{XValue: t.X[i], YValue: t.Y[i], Label: t.Text[i]})
		}
	}
	if len(series) == 0 {
		return fmt.Errorf("figure %q has no points", fig.Layout.Title.Text)
	}
	series = append(series, chart.AnnotationSeries{Annotations: labels})

	graph := chart.Chart{
		Title:  title,
		Width:  fig.Layout.Width,
		Height: fig.Layout.Height,
		Background: chart.Style{Padding: chart.Box{
			Top: fig.Layout.Margin.T, Left: fig.Layout.Margin.L,
			Right: fig.Layout.Margin.R, Bottom: fig.Layout.Margin.B,
		}},
		XAxis: chart.XAxis{
			Name:  x.Title.Text,
			Range: &chart.ContinuousRange{Min: x.Range[0], Max: x.Range[1]},
		},
		YAxis: chart.YAxis{
			Name:  y.Title.Text,
			Range: &chart.ContinuousRange{Min: y.Range[0], Max: y.Range[1]},
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}

// dotStyle renders points only, colored per point.
func dotStyle(colors []string) chart.Style {
	parsed := make([]drawing.Color, len(colors))
	for i, c := range colors {
		parsed[i] = drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
	}
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    6,
		DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			if index < len(parsed) {
				return parsed[index]
			}
			return chart.ColorBlack
		},
	}
}
