package coords

import (
	"fmt"
	"log"

	"github.com/satindergrewal/voicemds/internal/mds"
	"github.com/satindergrewal/voicemds/internal/trials"
)

// FromTrials computes every facet the trial table supports: 2D and 3D
// embeddings for stimulus types all, can and eng, per listener group that
// has subject columns. Mixed-language tables only come precomputed.
func FromTrials(t *trials.Table) (*Store, error) {
	tables := make(map[Facet][]Point)
	for _, dim := range Dims {
		for _, stim := range []Stimulus{StimAll, StimCan, StimEng} {
			for _, group := range Groups {
				f := Facet{Dim: dim, Stimulus: stim, Group: group}
				pts, err := Embed(t, f)
				if err != nil {
					return nil, err
				}
				if pts == nil {
					continue
				}
				tables[f] = pts
			}
		}
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("trial table: %w", ErrNoFacets)
	}
	log.Printf("Computed %d facets from %d trials", len(tables), len(t.Trials))
	return NewStore(tables)
}

// Embed runs MDS for one facet. It returns nil points, without error, when
// the table has no subject columns for the group or fewer than two labels
// for the stimulus type.
func Embed(t *trials.Table, f Facet) ([]Point, error) {
	if f.Stimulus == StimMixed {
		return nil, fmt.Errorf("facet %s: mixed-language embeddings cannot be computed from trials", f)
	}
	cols := t.SubjectColumns(string(f.Group))
	if len(cols) == 0 {
		return nil, nil
	}
	var keep func(trials.Trial) bool
	if f.Stimulus != StimAll {
		keep = trials.SameLanguage(string(f.Stimulus))
	}
	labels, d := t.Dissimilarity(cols, keep)
	if len(labels) < 2 {
		return nil, nil
	}

	xy, err := mds.Classical(d, f.Dim.N())
	if err != nil {
		return nil, fmt.Errorf("facet %s: %w", f, err)
	}
	pts := make([]Point, len(labels))
	for i, l := range labels {
		spk, lang := trials.SplitLabel(l)
		pts[i] = Point{Label: l, Speaker: spk, Language: lang, Coords: xy[i]}
	}
	return pts, nil
}
