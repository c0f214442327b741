// Package trials loads the pairwise-trial table: one row per compared
// stimulus pair with a dissimilarity score per subject.
package trials

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrMissingColumn = errors.New("trials: missing column")
	ErrNoSubjects    = errors.New("trials: no subject columns")
	ErrBadScore      = errors.New("trials: non-numeric score")
)

// Listener-group column prefixes. subjC* columns hold Cantonese-English
// listeners, subjE* English listeners.
var groupPrefix = map[string]string{
	"all": "subj",
	"can": "subjC",
	"eng": "subjE",
}

// Trial is one pairwise comparison.
type Trial struct {
	Stim1  string
	Stim2  string
	Label1 string
	Label2 string
	Scores []float64 // aligned with Table.Subjects
}

// Table is the full trial table in file order.
type Table struct {
	Subjects []string
	Trials   []Trial
}

// LabelOf returns the speaker+language label encoded in a stimulus filename:
// the first two underscore-delimited tokens.
func LabelOf(filename string) string {
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return filename
	}
	return parts[0] + "_" + parts[1]
}

// SplitLabel returns the speaker and language tokens of a label.
// Language is empty when the label has no underscore.
func SplitLabel(label string) (speaker, language string) {
	speaker, language, _ = strings.Cut(label, "_")
	return speaker, language
}

// Load reads a trial table from a CSV file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trials: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a trial table from CSV. The header must contain stim1, stim2
// and at least one subj* column; other columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	stim1, stim2 := -1, -1
	var subjectIdx []int
	t := &Table{}
	for i, h := range header {
		h = clean(h)
		switch {
		case strings.EqualFold(h, "stim1"):
			stim1 = i
		case strings.EqualFold(h, "stim2"):
			stim2 = i
		case strings.HasPrefix(h, "subj"):
			subjectIdx = append(subjectIdx, i)
			t.Subjects = append(t.Subjects, h)
		}
	}
	if stim1 < 0 {
		return nil, fmt.Errorf("%w: stim1", ErrMissingColumn)
	}
	if stim2 < 0 {
		return nil, fmt.Errorf("%w: stim2", ErrMissingColumn)
	}
	if len(subjectIdx) == 0 {
		return nil, ErrNoSubjects
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= stim1 || len(rec) <= stim2 {
			return nil, fmt.Errorf("line %d: %w: short row", line, ErrMissingColumn)
		}

		tr := Trial{
			Stim1:  clean(rec[stim1]),
			Stim2:  clean(rec[stim2]),
			Scores: make([]float64, len(subjectIdx)),
		}
		tr.Label1 = LabelOf(tr.Stim1)
		tr.Label2 = LabelOf(tr.Stim2)
		for j, idx := range subjectIdx {
			if idx >= len(rec) {
				return nil, fmt.Errorf("line %d: %w: %s missing", line, ErrBadScore, t.Subjects[j])
			}
			v, err := strconv.ParseFloat(clean(rec[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %s=%q", line, ErrBadScore, t.Subjects[j], rec[idx])
			}
			tr.Scores[j] = v
		}
		t.Trials = append(t.Trials, tr)
	}
	return t, nil
}

// clean trims a cell and drops the byte order mark some spreadsheets put
// before the first header.
func clean(s string) string {
	return norm.NFKC.String(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

// SubjectColumns returns the indexes into Trial.Scores for a listener group
// ("all", "can" or "eng"). Unknown groups select nothing.
func (t *Table) SubjectColumns(group string) []int {
	prefix, ok := groupPrefix[group]
	if !ok {
		return nil
	}
	var cols []int
	for i, s := range t.Subjects {
		if strings.HasPrefix(s, prefix) {
			cols = append(cols, i)
		}
	}
	return cols
}

// Labels returns the sorted unique labels across all trials.
func (t *Table) Labels() []string {
	return t.labels(nil)
}

func (t *Table) labels(keep func(Trial) bool) []string {
	seen := make(map[string]struct{})
	for _, tr := range t.Trials {
		if keep != nil && !keep(tr) {
			continue
		}
		seen[tr.Label1] = struct{}{}
		seen[tr.Label2] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Dissimilarity builds the symmetric label×label matrix of mean scores over
// the given subject columns, restricted to trials accepted by keep (nil keeps
// everything). A later row for the same pair overwrites an earlier one.
func (t *Table) Dissimilarity(cols []int, keep func(Trial) bool) ([]string, [][]float64) {
	labels := t.labels(keep)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	m := make([][]float64, len(labels))
	for i := range m {
		m[i] = make([]float64, len(labels))
	}
	if len(cols) == 0 {
		return labels, m
	}

	for _, tr := range t.Trials {
		if keep != nil && !keep(tr) {
			continue
		}
		i, j := index[tr.Label1], index[tr.Label2]
		if i == j {
			continue
		}
		var sum float64
		for _, c := range cols {
			sum += tr.Scores[c]
		}
		d := sum / float64(len(cols))
		m[i][j] = d
		m[j][i] = d
	}
	return labels, m
}

// FirstStimulus returns the literal stimulus filename of the first trial, in
// file order, whose stim1 or stim2 carries the label.
func (t *Table) FirstStimulus(label string) (string, bool) {
	for _, tr := range t.Trials {
		if tr.Label1 == label {
			return tr.Stim1, true
		}
		if tr.Label2 == label {
			return tr.Stim2, true
		}
	}
	return "", false
}

// SameLanguage returns a filter keeping trials whose two stimuli are both in
// the given language.
func SameLanguage(lang string) func(Trial) bool {
	return func(tr Trial) bool {
		_, l1 := SplitLabel(tr.Label1)
		_, l2 := SplitLabel(tr.Label2)
		return strings.EqualFold(l1, lang) && strings.EqualFold(l2, lang)
	}
}
