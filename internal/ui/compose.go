// Package ui composes the faceted page and serves it over HTTP.
package ui

import (
	"net/url"

	"github.com/satindergrewal/voicemds/internal/coords"
)

// Selection is the tab chosen in each tier. Zero fields mean "no
// preference".
type Selection struct {
	Dim      coords.Dim
	Stimulus coords.Stimulus
	Group    coords.Group
}

// SelectionFromQuery reads ?dim=&stim=&group=.
func SelectionFromQuery(q url.Values) Selection {
	return Selection{
		Dim:      coords.Dim(q.Get("dim")),
		Stimulus: coords.Stimulus(q.Get("stim")),
		Group:    coords.Group(q.Get("group")),
	}
}

// Query encodes the selection for a /facet request.
func (s Selection) Query() string {
	q := url.Values{}
	q.Set("dim", string(s.Dim))
	q.Set("stim", string(s.Stimulus))
	q.Set("group", string(s.Group))
	return q.Encode()
}

// Tab is one selectable tab. Target is the selection that clicking it
// requests; tiers below it keep their current choice and fall back if
// that choice does not exist under the new parent.
type Tab struct {
	Label  string
	Active bool
	Target Selection
}

// Tier is one row of tabs.
type Tier struct {
	Name string
	Tabs []Tab
}

// View is a composed page state: the resolved facet and its tab tiers,
// outermost first.
type View struct {
	Facet coords.Facet
	Tiers []Tier
}

// Compose resolves sel against the available facets. Each tier offers only
// values that exist under the tiers above it, and an unavailable choice
// falls back to the first available value. ok is false when there are no
// facets.
func Compose(facets []coords.Facet, sel Selection) (v View, ok bool) {
	if len(facets) == 0 {
		return View{}, false
	}

	dims := available(facets, coords.Dims, func(f coords.Facet) coords.Dim { return f.Dim })
	dim := pick(dims, sel.Dim)

	underDim := filter(facets, func(f coords.Facet) bool { return f.Dim == dim })
	stims := available(underDim, coords.Stimuli, func(f coords.Facet) coords.Stimulus { return f.Stimulus })
	stim := pick(stims, sel.Stimulus)

	underStim := filter(underDim, func(f coords.Facet) bool { return f.Stimulus == stim })
	groups := available(underStim, coords.Groups, func(f coords.Facet) coords.Group { return f.Group })
	group := pick(groups, sel.Group)

	cur := Selection{Dim: dim, Stimulus: stim, Group: group}
	v.Facet = coords.Facet{Dim: dim, Stimulus: stim, Group: group}

	dimTier := Tier{Name: "dim"}
	for _, d := range dims {
		t := cur
		t.Dim = d
		dimTier.Tabs = append(dimTier.Tabs, Tab{Label: d.Label(), Active: d == dim, Target: t})
	}
	stimTier := Tier{Name: "stim"}
	for _, s := range stims {
		t := cur
		t.Stimulus = s
		stimTier.Tabs = append(stimTier.Tabs, Tab{Label: s.Label(), Active: s == stim, Target: t})
	}
	groupTier := Tier{Name: "group"}
	for _, g := range groups {
		t := cur
		t.Group = g
		groupTier.Tabs = append(groupTier.Tabs, Tab{Label: g.Label(), Active: g == group, Target: t})
	}
	v.Tiers = []Tier{dimTier, stimTier, groupTier}
	return v, true
}

// available lists the values of key present in facets, in canonical order.
func available[T comparable](facets []coords.Facet, order []T, key func(coords.Facet) T) []T {
	present := make(map[T]bool)
	for _, f := range facets {
		present[key(f)] = true
	}
	var out []T
	for _, v := range order {
		if present[v] {
			out = append(out, v)
		}
	}
	return out
}

func pick[T comparable](vals []T, want T) T {
	for _, v := range vals {
		if v == want {
			return v
		}
	}
	return vals[0]
}

func filter(facets []coords.Facet, keep func(coords.Facet) bool) []coords.Facet {
	var out []coords.Facet
	for _, f := range facets {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
