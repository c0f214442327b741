package coords

import (
	"fmt"
	"strings"
)

// Dim is the dimensionality of an MDS embedding.
type Dim string

const (
	Dim2 Dim = "2d"
	Dim3 Dim = "3d"
)

// N returns the number of coordinates per point.
func (d Dim) N() int {
	if d == Dim3 {
		return 3
	}
	return 2
}

// Stimulus is the category of audio content that was compared.
type Stimulus string

const (
	StimAll   Stimulus = "all"
	StimCan   Stimulus = "can"
	StimEng   Stimulus = "eng"
	StimMixed Stimulus = "mixed"
)

// Group is the listener group whose ratings were aggregated.
type Group string

const (
	GroupAll Group = "all"
	GroupCan Group = "can"
	GroupEng Group = "eng"
)

// Canonical orderings, used for tab order and facet sorting.
var (
	Dims    = []Dim{Dim2, Dim3}
	Stimuli = []Stimulus{StimAll, StimCan, StimEng, StimMixed}
	Groups  = []Group{GroupAll, GroupCan, GroupEng}
)

// Facet selects one coordinate table and chart.
type Facet struct {
	Dim      Dim
	Stimulus Stimulus
	Group    Group
}

// String renders the facet as "2d/can/all".
func (f Facet) String() string {
	return string(f.Dim) + "/" + string(f.Stimulus) + "/" + string(f.Group)
}

// FileName is the conventional table name for the facet, e.g. "2d_can_all.csv".
func (f Facet) FileName() string {
	return string(f.Dim) + "_" + string(f.Stimulus) + "_" + string(f.Group) + ".csv"
}

// ParseFacet parses "2d/can/all", "2d_can_all" or "2d_can_all.csv".
func ParseFacet(s string) (Facet, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".csv")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '_' })
	if len(parts) != 3 {
		return Facet{}, fmt.Errorf("facet %q: want dim/stimulus/group", s)
	}
	f := Facet{Dim: Dim(parts[0]), Stimulus: Stimulus(parts[1]), Group: Group(parts[2])}
	if indexOf(Dims, f.Dim) < 0 {
		return Facet{}, fmt.Errorf("facet %q: unknown dimensionality %q", s, parts[0])
	}
	if indexOf(Stimuli, f.Stimulus) < 0 {
		return Facet{}, fmt.Errorf("facet %q: unknown stimulus type %q", s, parts[1])
	}
	if indexOf(Groups, f.Group) < 0 {
		return Facet{}, fmt.Errorf("facet %q: unknown listener group %q", s, parts[2])
	}
	return f, nil
}

func (f Facet) less(o Facet) bool {
	if a, b := indexOf(Dims, f.Dim), indexOf(Dims, o.Dim); a != b {
		return a < b
	}
	if a, b := indexOf(Stimuli, f.Stimulus), indexOf(Stimuli, o.Stimulus); a != b {
		return a < b
	}
	return indexOf(Groups, f.Group) < indexOf(Groups, o.Group)
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// Point is one labelled voice in a facet's embedding.
type Point struct {
	Label    string
	Speaker  string
	Language string
	Coords   []float64 // dim1, dim2[, dim3]
}

// At returns coordinate i, or 0 when the point has fewer dimensions.
func (p Point) At(i int) float64 {
	if i < len(p.Coords) {
		return p.Coords[i]
	}
	return 0
}

// Label is the tab caption for the dimensionality.
func (d Dim) Label() string {
	if d == Dim3 {
		return "3D"
	}
	return "2D"
}

var stimulusLabels = map[Stimulus]string{
	StimAll:   "All stimuli",
	StimCan:   "Cantonese stimuli",
	StimEng:   "English stimuli",
	StimMixed: "Mixed-language stimuli",
}

// Label is the tab caption for the stimulus type.
func (s Stimulus) Label() string {
	if l, ok := stimulusLabels[s]; ok {
		return l
	}
	return string(s)
}

var groupLabels = map[Group]string{
	GroupAll: "All participants",
	GroupCan: "Cantonese-English participants",
	GroupEng: "English participants",
}

// Label is the tab caption for the listener group.
func (g Group) Label() string {
	if l, ok := groupLabels[g]; ok {
		return l
	}
	return string(g)
}

// Title describes the facet in one line.
func (f Facet) Title() string {
	return f.Dim.Label() + " · " + f.Stimulus.Label() + " · " + f.Group.Label()
}
