// Package figure turns a facet's coordinate table into a plotly.js chart
// specification. Building is pure: the same points and facet always give
// the same figure.
package figure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/satindergrewal/voicemds/internal/coords"
	"github.com/satindergrewal/voicemds/internal/resolve"
)

// Figure is a plotly.js figure: {data, layout}.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one scatter series.
type Trace struct {
	Type         string     `json:"type"`
	Name         string     `json:"name"`
	Mode         string     `json:"mode"`
	X            []float64  `json:"x"`
	Y            []float64  `json:"y"`
	Z            []float64  `json:"z,omitempty"`
	Text         []string   `json:"text"`
	TextPosition string     `json:"textposition"`
	HoverText    []string   `json:"hovertext"`
	HoverInfo    string     `json:"hoverinfo"`
	CustomData   [][]string `json:"customdata"` // candidate audio files per point
	Marker       Marker     `json:"marker"`
	ShowLegend   bool       `json:"showlegend"`
}

// Marker styles a series' points.
type Marker struct {
	Symbol string   `json:"symbol"`
	Size   int      `json:"size"`
	Color  []string `json:"color"`
	Line   Line     `json:"line"`
}

// Line is a marker outline.
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Layout is the plotly layout object.
type Layout struct {
	Title      Title  `json:"title"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Margin     Margin `json:"margin"`
	ShowLegend bool   `json:"showlegend"`
	ClickMode  string `json:"clickmode"`
	XAxis      *Axis  `json:"xaxis,omitempty"`
	YAxis      *Axis  `json:"yaxis,omitempty"`
	Scene      *Scene `json:"scene,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

// Axis is a fixed-range axis.
type Axis struct {
	Title Title      `json:"title"`
	Range [2]float64 `json:"range"`
}

// Scene holds the three axes of a 3D chart.
type Scene struct {
	XAxis Axis `json:"xaxis"`
	YAxis Axis `json:"yaxis"`
	ZAxis Axis `json:"zaxis"`
}

// Series symbols. Languages other than can/eng in a single-language facet
// get an open circle so they stay visible.
const (
	symbolCan   = "circle"
	symbolEng   = "square"
	symbolMixed = "diamond"
	symbolOther = "circle-open"
)

// Builder builds figures with a fixed resolver and session-wide axes.
type Builder struct {
	Resolver resolve.Resolver
	Axes     coords.Axes
}

// Build returns the chart specification for one facet.
func (b Builder) Build(f coords.Facet, pts []coords.Point) Figure {
	colors := Palette(pts)

	var data []Trace
	for _, s := range partition(f, pts) {
		data = append(data, b.trace(f, s, colors))
	}

	layout := Layout{
		Title:      Title{Text: f.Title()},
		Width:      800,
		Height:     600,
		Margin:     Margin{L: 60, R: 60, B: 60, T: 60},
		ShowLegend: false,
		ClickMode:  "event",
	}
	x := axis("Dimension 1", b.Axes.X)
	y := axis("Dimension 2", b.Axes.Y)
	if f.Dim == coords.Dim3 {
		layout.Scene = &Scene{XAxis: x, YAxis: y, ZAxis: axis("Dimension 3", b.Axes.Z)}
	} else {
		layout.XAxis = &x
		layout.YAxis = &y
	}
	return Figure{Data: data, Layout: layout}
}

func axis(title string, r coords.AxisRange) Axis {
	return Axis{Title: Title{Text: title}, Range: [2]float64{r.Min, r.Max}}
}

type series struct {
	name   string
	symbol string
	points []coords.Point
}

// partition splits points by language (can, eng, then any other language
// in sorted order) or into one mixed series. Every point lands in exactly
// one series; empty series are omitted.
func partition(f coords.Facet, pts []coords.Point) []series {
	if f.Stimulus == coords.StimMixed {
		if len(pts) == 0 {
			return nil
		}
		return []series{{name: string(coords.StimMixed), symbol: symbolMixed, points: pts}}
	}

	byLang := make(map[string][]coords.Point)
	for _, p := range pts {
		l := strings.ToLower(p.Language)
		byLang[l] = append(byLang[l], p)
	}
	var others []string
	for l := range byLang {
		if l != "can" && l != "eng" {
			others = append(others, l)
		}
	}
	sort.Strings(others)

	var out []series
	if p := byLang["can"]; len(p) > 0 {
		out = append(out, series{name: "can", symbol: symbolCan, points: p})
	}
	if p := byLang["eng"]; len(p) > 0 {
		out = append(out, series{name: "eng", symbol: symbolEng, points: p})
	}
	for _, l := range others {
		out = append(out, series{name: l, symbol: symbolOther, points: byLang[l]})
	}
	return out
}

func (b Builder) trace(f coords.Facet, s series, colors map[string]string) Trace {
	t := Trace{
		Type:         "scatter",
		Name:         s.name,
		Mode:         "markers+text",
		TextPosition: "top center",
		HoverInfo:    "text",
		Marker: Marker{
			Symbol: s.symbol,
			Size:   15,
			Line:   Line{Width: 1, Color: "black"},
		},
	}
	if f.Dim == coords.Dim3 {
		t.Type = "scatter3d"
		t.Marker.Size = 6
	}

	n := len(s.points)
	t.X = make([]float64, n)
	t.Y = make([]float64, n)
	if f.Dim == coords.Dim3 {
		t.Z = make([]float64, n)
	}
	t.Text = make([]string, n)
	t.HoverText = make([]string, n)
	t.CustomData = make([][]string, n)
	t.Marker.Color = make([]string, n)

	for i, p := range s.points {
		t.X[i] = p.At(0)
		t.Y[i] = p.At(1)
		if t.Z != nil {
			t.Z[i] = p.At(2)
		}
		t.Text[i] = p.Label
		t.HoverText[i] = HoverText(p, f.Dim)
		t.Marker.Color[i] = colors[p.Speaker]

		files := []string{}
		if b.Resolver != nil {
			if r := b.Resolver.Resolve(p.Label, f.Stimulus); r != nil {
				files = r
			}
		}
		t.CustomData[i] = files
	}
	return t
}

// HoverText describes a point: label, speaker, language and coordinates.
func HoverText(p coords.Point, d coords.Dim) string {
	var sb strings.Builder
	sb.WriteString(p.Label)
	fmt.Fprintf(&sb, "<br>Speaker: %s", p.Speaker)
	fmt.Fprintf(&sb, "<br>Language: %s", p.Language)
	if name := LanguageName(p.Language); name != "" {
		fmt.Fprintf(&sb, " (%s)", name)
	}
	for i := 0; i < d.N(); i++ {
		fmt.Fprintf(&sb, "<br>Dim %d: %.3f", i+1, p.At(i))
	}
	return sb.String()
}
