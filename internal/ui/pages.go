package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/satindergrewal/voicemds/internal/figure"
	"github.com/satindergrewal/voicemds/internal/interact"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages renders the page and its fragments.
type Pages struct {
	t *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{t: t}, nil
}

type indexData struct {
	Title   string
	Caption *Caption
	Facet   facetData
}

type facetData struct {
	View   View
	Figure string
	Audio  audioData
}

type audioData struct {
	Panel     interact.Panel
	Listen    bool
	ListenURL string
	WebRTC    bool
	Files     string
}

func newFacetData(v View, fig figure.Figure, audio audioData) (facetData, error) {
	b, err := json.Marshal(fig)
	if err != nil {
		return facetData{}, fmt.Errorf("encode figure %s: %w", v.Facet, err)
	}
	return facetData{View: v, Figure: string(b), Audio: audio}, nil
}

// newAudioData decorates a panel with the audition links for its players.
func newAudioData(p interact.Panel, listen, webrtc bool) audioData {
	a := audioData{Panel: p}
	if len(p.Players) == 0 {
		return a
	}
	files := make([]string, len(p.Players))
	q := url.Values{}
	for i, pl := range p.Players {
		files[i] = pl.File
		q.Add("file", pl.File)
	}
	if listen {
		a.Listen = true
		a.ListenURL = "/listen?" + q.Encode()
	}
	if webrtc {
		b, _ := json.Marshal(files)
		a.WebRTC = true
		a.Files = string(b)
	}
	return a
}

func (p *Pages) index(w io.Writer, d indexData) error {
	return p.t.ExecuteTemplate(w, "index", d)
}

func (p *Pages) facet(w io.Writer, d facetData) error {
	return p.t.ExecuteTemplate(w, "facet", d)
}

func (p *Pages) audio(w io.Writer, d audioData) error {
	return p.t.ExecuteTemplate(w, "audio", d)
}
