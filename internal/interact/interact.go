// Package interact turns chart clicks into audio-panel state.
//
// There are two states: idle (nothing clicked on the current charts) and
// selected (the last click, carrying that point's candidate audio files).
// Remounting a chart on a tab change starts again from Idle.
package interact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var ErrBadClick = errors.New("malformed click event")

// State is the audio panel's state.
type State struct {
	Selected   bool
	Candidates []string
}

// Idle is the state before any click.
func Idle() State {
	return State{}
}

// ClickEvent is a decoded plotly click. Point is false when the click
// carried no point or the point had no customdata.
type ClickEvent struct {
	Point      bool
	Candidates []string
}

type clickData struct {
	Points []struct {
		CustomData json.RawMessage `json:"customdata"`
	} `json:"points"`
}

// ParseClick decodes plotly clickData ({"points":[{"customdata":...}]}).
// A null body, an empty point list or null customdata all decode to a
// click without a point. customdata may be a single filename or a list.
func ParseClick(data []byte) (ClickEvent, error) {
	var cd *clickData
	if err := json.Unmarshal(data, &cd); err != nil {
		return ClickEvent{}, fmt.Errorf("%w: %v", ErrBadClick, err)
	}
	if cd == nil || len(cd.Points) == 0 {
		return ClickEvent{}, nil
	}
	raw := cd.Points[0].CustomData
	if len(raw) == 0 || string(raw) == "null" {
		return ClickEvent{}, nil
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return ClickEvent{Point: true, Candidates: []string{one}}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return ClickEvent{}, fmt.Errorf("%w: customdata: %v", ErrBadClick, err)
	}
	if many == nil {
		many = []string{}
	}
	return ClickEvent{Point: true, Candidates: many}, nil
}

// Transition applies a click to the current state. Any click on a point
// selects it, regardless of the previous state.
func Transition(_ State, ev ClickEvent) State {
	if !ev.Point {
		return Idle()
	}
	return State{Selected: true, Candidates: append([]string{}, ev.Candidates...)}
}

// PanelKind says what the audio panel shows.
type PanelKind int

const (
	PanelIdle PanelKind = iota
	PanelPlayers
	PanelNotFound
	PanelNoAudio
)

func (k PanelKind) String() string {
	switch k {
	case PanelIdle:
		return "idle"
	case PanelPlayers:
		return "players"
	case PanelNotFound:
		return "not-found"
	case PanelNoAudio:
		return "no-audio"
	}
	return fmt.Sprintf("PanelKind(%d)", int(k))
}

const (
	MsgIdle    = "Please click a point to play audio."
	MsgNoAudio = "No audio available for this point."
)

// Player is one playable clip, named relative to the asset directory.
type Player struct {
	File string
}

// Panel is the rendered audio panel.
type Panel struct {
	Kind    PanelKind
	Message string
	Players []Player
	Missing []string
}

// Render produces the panel for s, checking each candidate against assets
// now rather than at load time.
func Render(s State, assets fs.FS) Panel {
	if !s.Selected {
		return Panel{Kind: PanelIdle, Message: MsgIdle}
	}
	if len(s.Candidates) == 0 {
		return Panel{Kind: PanelNoAudio, Message: MsgNoAudio}
	}

	var p Panel
	for _, name := range s.Candidates {
		if Exists(assets, name) {
			p.Players = append(p.Players, Player{File: name})
		} else {
			p.Missing = append(p.Missing, name)
		}
	}
	if len(p.Players) == 0 {
		p.Kind = PanelNotFound
		p.Message = "Audio file not found: " + strings.Join(p.Missing, ", ")
		return p
	}
	p.Kind = PanelPlayers
	return p
}

// Exists reports whether name is a regular file in assets. Names that are
// not valid fs paths (absolute, containing "..") never exist.
func Exists(assets fs.FS, name string) bool {
	if assets == nil || !fs.ValidPath(name) || name == "." {
		return false
	}
	fi, err := fs.Stat(assets, name)
	return err == nil && fi.Mode().IsRegular()
}
