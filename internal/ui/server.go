package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/satindergrewal/voicemds/internal/audio"
	"github.com/satindergrewal/voicemds/internal/coords"
	"github.com/satindergrewal/voicemds/internal/figure"
	"github.com/satindergrewal/voicemds/internal/interact"
)

const maxClickBody = 1 << 20

// PeerCounter reports active WebRTC auditions.
type PeerCounter interface {
	PeerCount() int
	Auditions() []audio.Status
}

type auditionStatus struct {
	Clip     string  `json:"clip"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// ServerConfig wires the server's data and optional audition handlers.
type ServerConfig struct {
	Title   string
	Store   *coords.Store
	Builder figure.Builder
	Caption *Caption
	Assets  fs.FS // audio clips, served under /assets/

	// Optional. Nil disables the route.
	Listen http.Handler
	WebRTC interface {
		http.Handler
		PeerCounter
	}
}

// Server is the HTTP adapter over the composed page, the chart figures and
// the interaction handler. All state is read-only after NewServer.
type Server struct {
	cfg     ServerConfig
	pages   *Pages
	figures map[coords.Facet]figure.Figure
	started time.Time
}

// NewServer builds every facet's figure once, so each point's audio list
// is fixed for the life of the process.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("ui: nil store")
	}
	if cfg.Title == "" {
		cfg.Title = "MDS results"
	}
	pages, err := NewPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		pages:   pages,
		figures: make(map[coords.Facet]figure.Figure),
		started: time.Now(),
	}
	for _, f := range cfg.Store.Facets() {
		pts, _ := cfg.Store.Points(f)
		s.figures[f] = cfg.Builder.Build(f, pts)
	}
	log.Printf("Built %d figures", len(s.figures))
	return s, nil
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/facet", s.handleFacet)
	mux.HandleFunc("/api/click", s.handleClick)
	mux.HandleFunc("/api/figure", s.handleFigure)
	mux.HandleFunc("/api/figure.png", s.handleFigurePNG)
	mux.HandleFunc("/api/status", s.handleStatus)

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if s.cfg.Assets != nil {
		mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(s.cfg.Assets)))
	}

	if s.cfg.Listen != nil {
		mux.Handle("/listen", s.cfg.Listen)
	}
	if s.cfg.WebRTC != nil {
		mux.Handle("/offer", s.cfg.WebRTC)
	}
	return mux
}

func (s *Server) idleAudio() audioData {
	return newAudioData(interact.Render(interact.Idle(), s.cfg.Assets), false, false)
}

func (s *Server) facetData(sel Selection) (facetData, error) {
	v, ok := Compose(s.cfg.Store.Facets(), sel)
	if !ok {
		return facetData{}, coords.ErrNoFacets
	}
	return newFacetData(v, s.figures[v.Facet], s.idleAudio())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fd, err := s.facetData(SelectionFromQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, func(b io.Writer) error {
		return s.pages.index(b, indexData{Title: s.cfg.Title, Caption: s.cfg.Caption, Facet: fd})
	})
}

// handleFacet returns the tab tiers, chart and a fresh idle audio panel for
// the requested selection.
func (s *Server) handleFacet(w http.ResponseWriter, r *http.Request) {
	fd, err := s.facetData(SelectionFromQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, func(b io.Writer) error { return s.pages.facet(b, fd) })
}

// handleClick takes plotly clickData and returns the audio panel.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxClickBody))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}

	ev := interact.ClickEvent{}
	if len(bytes.TrimSpace(body)) > 0 {
		if ev, err = interact.ParseClick(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	panel := interact.Render(interact.Transition(interact.Idle(), ev), s.cfg.Assets)
	if panel.Kind == interact.PanelNotFound {
		log.Printf("Audio not found: %v", panel.Missing)
	}
	a := newAudioData(panel, s.cfg.Listen != nil, s.cfg.WebRTC != nil)
	s.render(w, func(b io.Writer) error { return s.pages.audio(b, a) })
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (figure.Figure, bool) {
	f, err := coords.ParseFacet(r.URL.Query().Get("facet"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return figure.Figure{}, false
	}
	fig, ok := s.figures[f]
	if !ok {
		http.Error(w, fmt.Sprintf("facet %s not loaded", f), http.StatusNotFound)
		return figure.Figure{}, false
	}
	return fig, true
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	fig, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fig); err != nil {
		log.Printf("Write figure: %v", err)
	}
}

func (s *Server) handleFigurePNG(w http.ResponseWriter, r *http.Request) {
	fig, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := figure.RenderPNG(&buf, fig); err != nil {
		log.Printf("Render PNG: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Write PNG: %v", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	facets := s.cfg.Store.Facets()
	names := make([]string, len(facets))
	points := 0
	for i, f := range facets {
		names[i] = f.String()
		pts, _ := s.cfg.Store.Points(f)
		points += len(pts)
	}
	axes := s.cfg.Builder.Axes
	peers := 0
	auditions := []auditionStatus{}
	if s.cfg.WebRTC != nil {
		peers = s.cfg.WebRTC.PeerCount()
		for _, a := range s.cfg.WebRTC.Auditions() {
			auditions = append(auditions, auditionStatus{
				Clip:     a.Clip,
				Position: a.Position.Seconds(),
				Duration: a.Duration.Seconds(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	err := json.NewEncoder(w).Encode(map[string]any{
		"facets":           names,
		"points":           points,
		"caption":          s.cfg.Caption != nil,
		"webrtc_listeners": peers,
		"auditions":        auditions,
		"uptime":           time.Since(s.started).Seconds(),
		"axes": map[string]any{
			"x": []float64{axes.X.Min, axes.X.Max},
			"y": []float64{axes.Y.Min, axes.Y.Max},
			"z": []float64{axes.Z.Min, axes.Z.Max},
		},
	})
	if err != nil {
		log.Printf("Write status: %v", err)
	}
}

// render writes the output of exec as HTML, or a 500 if it fails.
func (s *Server) render(w http.ResponseWriter, exec func(io.Writer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		log.Printf("Render: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Write page: %v", err)
	}
}
