package coords

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/satindergrewal/voicemds/internal/trials"
)

// Manifest lists facet tables explicitly. File paths are relative to the
// manifest's directory unless absolute.
type Manifest struct {
	Facets []ManifestEntry `yaml:"facets"`
}

// ManifestEntry binds one facet to its table file.
type ManifestEntry struct {
	Facet string `yaml:"facet"`
	File  string `yaml:"file"`
}

// LoadManifest reads a YAML manifest and loads every table it lists.
// Every listed file is required.
func LoadManifest(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Facets) == 0 {
		return nil, fmt.Errorf("manifest %s: %w", path, ErrNoFacets)
	}

	base := filepath.Dir(path)
	files := make(map[Facet]string, len(m.Facets))
	for _, e := range m.Facets {
		f, err := ParseFacet(e.Facet)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		if _, dup := files[f]; dup {
			return nil, fmt.Errorf("manifest %s: facet %s listed twice", path, f)
		}
		file := e.File
		if file == "" {
			file = f.FileName()
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		files[f] = file
	}
	return loadFiles(files)
}

// LoadDir discovers {dim}_{stim}_{group}.csv tables in dir.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	files := make(map[Facet]string)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		f, err := ParseFacet(e.Name())
		if err != nil {
			continue
		}
		files[f] = filepath.Join(dir, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFacets)
	}
	return loadFiles(files)
}

func loadFiles(files map[Facet]string) (*Store, error) {
	type result struct {
		facet  Facet
		points []Point
	}
	results := make([]result, 0, len(files))
	for f := range files {
		results = append(results, result{facet: f})
	}

	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			f := results[i].facet
			pts, err := ReadTableFile(files[f], f)
			if err != nil {
				return err
			}
			results[i].points = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make(map[Facet][]Point, len(results))
	for _, r := range results {
		tables[r.facet] = r.points
		log.Printf("Loaded facet %s: %d points from %s", r.facet, len(r.points), files[r.facet])
	}
	return NewStore(tables)
}

// ReadTableFile reads one coordinate table from disk.
func ReadTableFile(path string, f Facet) ([]Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("facet %s: %w", f, err)
	}
	defer file.Close()

	pts, err := ReadTable(file, f)
	if err != nil {
		return nil, fmt.Errorf("facet %s (%s): %w", f, path, err)
	}
	return pts, nil
}

var columnAliases = map[string][]string{
	"label":    {"label", "labels", "name", "stimulus"},
	"speaker":  {"speaker", "spk", "talker"},
	"language": {"language", "lang", "languages"},
	"dim1":     {"dim1", "dimension1", "d1", "mds1", "x"},
	"dim2":     {"dim2", "dimension2", "d2", "mds2", "y"},
	"dim3":     {"dim3", "dimension3", "d3", "mds3", "z"},
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ReadTable parses a coordinate table. Column names are matched
// case-insensitively with common aliases; a missing label is built from
// speaker and language, and missing speaker/language come from the label.
func ReadTable(r io.Reader, f Facet) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int)
	for i, h := range header {
		h = normalizeHeader(h)
		for name, aliases := range columnAliases {
			if _, taken := col[name]; taken {
				continue
			}
			for _, a := range aliases {
				if h == a {
					col[name] = i
				}
			}
		}
	}

	_, hasLabel := col["label"]
	_, hasSpeaker := col["speaker"]
	_, hasLanguage := col["language"]
	if !hasLabel && !(hasSpeaker && hasLanguage) {
		return nil, fmt.Errorf("%w: label (or speaker and language)", ErrMissingColumn)
	}
	dims := make([]string, f.Dim.N())
	for i := range dims {
		dims[i] = fmt.Sprintf("dim%d", i+1)
		if _, ok := col[dims[i]]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, dims[i])
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var pts []Point
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := Point{
			Label:    cell(rec, "label"),
			Speaker:  cell(rec, "speaker"),
			Language: cell(rec, "language"),
		}
		if p.Label == "" {
			p.Label = p.Speaker + "_" + p.Language
		}
		spk, lang := trials.SplitLabel(p.Label)
		if p.Speaker == "" {
			p.Speaker = spk
		}
		if p.Language == "" {
			p.Language = lang
		}
		if p.Language == "" && f.Stimulus == StimMixed {
			p.Language = string(StimMixed)
		}
		if p.Label == "" || p.Label == "_" {
			return nil, fmt.Errorf("line %d: %w: empty label", line, ErrBadValue)
		}

		p.Coords = make([]float64, len(dims))
		for i, d := range dims {
			v, err := strconv.ParseFloat(cell(rec, d), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %s=%q", line, ErrBadValue, d, cell(rec, d))
			}
			p.Coords[i] = v
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrBadValue)
	}
	return pts, nil
}

// WriteTable writes points in the format ReadTable accepts.
func WriteTable(w io.Writer, f Facet, pts []Point) error {
	cw := csv.NewWriter(w)
	header := []string{"label", "speaker", "language"}
	for i := 1; i <= f.Dim.N(); i++ {
		header = append(header, fmt.Sprintf("dim%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{p.Label, p.Speaker, p.Language}
		for i := 0; i < f.Dim.N(); i++ {
			rec = append(rec, strconv.FormatFloat(p.At(i), 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
