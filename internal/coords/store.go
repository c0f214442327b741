// Package coords holds the precomputed MDS coordinate tables, one per
// facet, loaded once at startup and never modified afterwards.
package coords

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

var (
	ErrNoFacets      = errors.New("coords: no coordinate tables")
	ErrMissingColumn = errors.New("coords: missing column")
	ErrBadValue      = errors.New("coords: bad value")
)

// Store maps facets to their coordinate points.
type Store struct {
	facets []Facet
	points map[Facet][]Point
}

// NewStore validates and freezes a set of facet tables.
func NewStore(tables map[Facet][]Point) (*Store, error) {
	if len(tables) == 0 {
		return nil, ErrNoFacets
	}
	s := &Store{points: make(map[Facet][]Point, len(tables))}
	for f, pts := range tables {
		if len(pts) == 0 {
			return nil, fmt.Errorf("%w: facet %s has no points", ErrBadValue, f)
		}
		for _, p := range pts {
			if len(p.Coords) < f.Dim.N() {
				return nil, fmt.Errorf("%w: facet %s point %q has %d coordinates, want %d",
					ErrBadValue, f, p.Label, len(p.Coords), f.Dim.N())
			}
		}
		s.points[f] = clonePoints(pts)
		s.facets = append(s.facets, f)
	}
	sort.Slice(s.facets, func(i, j int) bool { return s.facets[i].less(s.facets[j]) })
	return s, nil
}

// Facets returns the available facets in tab order.
func (s *Store) Facets() []Facet {
	return slices.Clone(s.facets)
}

// Has reports whether the facet has a table.
func (s *Store) Has(f Facet) bool {
	_, ok := s.points[f]
	return ok
}

// Points returns a copy of the facet's points in table order.
func (s *Store) Points(f Facet) ([]Point, bool) {
	pts, ok := s.points[f]
	if !ok {
		return nil, false
	}
	return clonePoints(pts), true
}

func clonePoints(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		p.Coords = slices.Clone(p.Coords)
		out[i] = p
	}
	return out
}

// AxisRange is a closed plotting interval.
type AxisRange struct {
	Min float64
	Max float64
}

// Axes holds the ranges shared by every chart of a session.
type Axes struct {
	X, Y, Z AxisRange
}

// FixedAxes returns [-limit, limit] on every axis.
func FixedAxes(limit float64) Axes {
	r := AxisRange{Min: -limit, Max: limit}
	return Axes{X: r, Y: r, Z: r}
}

// GlobalAxes returns [min-pad, max+pad] per axis over every point of every
// facet. Without any 3D facet the Z range mirrors X.
func (s *Store) GlobalAxes(pad float64) Axes {
	ranges := [3]AxisRange{}
	seen := [3]bool{}
	for _, f := range s.facets {
		for _, p := range s.points[f] {
			for i := 0; i < f.Dim.N(); i++ {
				v := p.Coords[i]
				if !seen[i] {
					ranges[i] = AxisRange{Min: v, Max: v}
					seen[i] = true
					continue
				}
				ranges[i].Min = math.Min(ranges[i].Min, v)
				ranges[i].Max = math.Max(ranges[i].Max, v)
			}
		}
	}
	if !seen[2] {
		ranges[2] = ranges[0]
	}
	for i := range ranges {
		ranges[i].Min -= pad
		ranges[i].Max += pad
	}
	return Axes{X: ranges[0], Y: ranges[1], Z: ranges[2]}
}
