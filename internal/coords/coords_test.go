package coords

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satindergrewal/voicemds/internal/trials"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseFacet(t *testing.T) {
	f, err := ParseFacet("2d/can/all")
	require.NoError(t, err)
	assert.Equal(t, Facet{Dim: Dim2, Stimulus: StimCan, Group: GroupAll}, f)
	assert.Equal(t, "2d/can/all", f.String())
	assert.Equal(t, "2d_can_all.csv", f.FileName())

	f, err = ParseFacet("3D_Mixed_eng.csv")
	require.NoError(t, err)
	assert.Equal(t, Facet{Dim: Dim3, Stimulus: StimMixed, Group: GroupEng}, f)

	for _, bad := range []string{"", "2d/can", "4d/can/all", "2d/fr/all", "2d/can/mixed"} {
		_, err := ParseFacet(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadTableAliases(t *testing.T) {
	body := "Label,Speaker,Lang,Dim 1,Dim_2\nS1_can,S1,can,0.1,-0.2\nS2_eng,S2,eng,0.3,0.4\n"
	pts, err := ReadTable(strings.NewReader(body), Facet{Dim: Dim2, Stimulus: StimAll, Group: GroupAll})
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, Point{Label: "S1_can", Speaker: "S1", Language: "can", Coords: []float64{0.1, -0.2}}, pts[0])
}

func TestReadTableByteOrderMark(t *testing.T) {
	pts, err := ReadTable(strings.NewReader("\ufeffdim1,dim2,label\n0.1,0.2,S1_can\n"), Facet{Dim: Dim2, Stimulus: StimCan, Group: GroupAll})
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, []float64{0.1, 0.2}, pts[0].Coords)
	assert.Equal(t, "S1_can", pts[0].Label)
}

func TestReadTableDerivesFields(t *testing.T) {
	pts, err := ReadTable(strings.NewReader("label,x,y\nS3_eng,1,2\n"), Facet{Dim: Dim2, Stimulus: StimEng, Group: GroupAll})
	require.NoError(t, err)
	assert.Equal(t, "S3", pts[0].Speaker)
	assert.Equal(t, "eng", pts[0].Language)

	pts, err = ReadTable(strings.NewReader("speaker,language,dim1,dim2\nS4,can,1,2\n"), Facet{Dim: Dim2, Stimulus: StimCan, Group: GroupAll})
	require.NoError(t, err)
	assert.Equal(t, "S4_can", pts[0].Label)

	pts, err = ReadTable(strings.NewReader("label,dim1,dim2\nS5,1,2\n"), Facet{Dim: Dim2, Stimulus: StimMixed, Group: GroupAll})
	require.NoError(t, err)
	assert.Equal(t, "mixed", pts[0].Language)
	assert.Equal(t, "S5", pts[0].Speaker)
}

func TestReadTableErrors(t *testing.T) {
	f3 := Facet{Dim: Dim3, Stimulus: StimAll, Group: GroupAll}
	_, err := ReadTable(strings.NewReader("label,dim1,dim2\nS1_can,1,2\n"), f3)
	assert.ErrorIs(t, err, ErrMissingColumn)

	f2 := Facet{Dim: Dim2, Stimulus: StimAll, Group: GroupAll}
	_, err = ReadTable(strings.NewReader("dim1,dim2\n1,2\n"), f2)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadTable(strings.NewReader("label,dim1,dim2\nS1_can,one,2\n"), f2)
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = ReadTable(strings.NewReader("label,dim1,dim2\n"), f2)
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2d_can_all.csv", "label,dim1,dim2\nS1_can,0.1,0.2\nS2_can,-0.1,0.3\n")
	writeFile(t, dir, "3d_all_eng.csv", "label,dim1,dim2,dim3\nS1_can,0.1,0.2,0.3\n")
	writeFile(t, dir, "2d_all_all.csv", "label,dim1,dim2\nS1_can,0.5,0.5\n")
	writeFile(t, dir, "notes.csv", "ignored\n")
	writeFile(t, dir, "README.txt", "ignored\n")

	s, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []Facet{
		{Dim2, StimAll, GroupAll},
		{Dim2, StimCan, GroupAll},
		{Dim3, StimAll, GroupEng},
	}, s.Facets())

	pts, ok := s.Points(Facet{Dim2, StimCan, GroupAll})
	require.True(t, ok)
	assert.Len(t, pts, 2)
	assert.False(t, s.Has(Facet{Dim2, StimMixed, GroupAll}))
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.ErrorIs(t, err, ErrNoFacets)
}

func TestLoadDirMalformedIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2d_can_all.csv", "label,dim1,dim2\nS1_can,0.1,0.2\n")
	writeFile(t, dir, "2d_eng_all.csv", "label,dim1\nS1_eng,0.1\n")

	_, err := LoadDir(dir)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "can.csv", "label,dim1,dim2\nS1_can,0.1,0.2\n")
	writeFile(t, dir, "2d_mixed_all.csv", "label,dim1,dim2\nS1,0.1,0.2\n")
	manifest := writeFile(t, dir, "manifest.yaml", `facets:
  - facet: 2d/can/all
    file: can.csv
  - facet: 2d/mixed/all
`)

	s, err := LoadManifest(manifest)
	require.NoError(t, err)
	assert.Len(t, s.Facets(), 2)
	assert.True(t, s.Has(Facet{Dim2, StimMixed, GroupAll}))
}

func TestLoadManifestMissingFile(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, dir, "manifest.yaml", "facets:\n  - facet: 2d/can/all\n    file: absent.csv\n")

	_, err := LoadManifest(manifest)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPointsReturnsCopy(t *testing.T) {
	f := Facet{Dim2, StimCan, GroupAll}
	s, err := NewStore(map[Facet][]Point{f: {{Label: "S1_can", Coords: []float64{1, 2}}}})
	require.NoError(t, err)

	pts, _ := s.Points(f)
	pts[0].Coords[0] = 99
	again, _ := s.Points(f)
	assert.Equal(t, 1.0, again[0].Coords[0])
}

func TestNewStoreRejectsShortPoints(t *testing.T) {
	_, err := NewStore(map[Facet][]Point{
		{Dim3, StimAll, GroupAll}: {{Label: "S1_can", Coords: []float64{1, 2}}},
	})
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = NewStore(nil)
	assert.ErrorIs(t, err, ErrNoFacets)
}

func TestAxes(t *testing.T) {
	s, err := NewStore(map[Facet][]Point{
		{Dim2, StimCan, GroupAll}: {{Label: "a", Coords: []float64{-1, 2}}, {Label: "b", Coords: []float64{0.5, -3}}},
		{Dim3, StimAll, GroupAll}: {{Label: "a", Coords: []float64{2, 0, 4}}, {Label: "b", Coords: []float64{0, 1, -1}}},
	})
	require.NoError(t, err)

	g := s.GlobalAxes(0.5)
	assert.Equal(t, AxisRange{Min: -1.5, Max: 2.5}, g.X)
	assert.Equal(t, AxisRange{Min: -3.5, Max: 2.5}, g.Y)
	assert.Equal(t, AxisRange{Min: -1.5, Max: 4.5}, g.Z)

	fixed := FixedAxes(0.8)
	assert.Equal(t, AxisRange{Min: -0.8, Max: 0.8}, fixed.X)
	assert.Equal(t, fixed.X, fixed.Y)
	assert.Equal(t, fixed.X, fixed.Z)
}

func TestWriteTableReadsBack(t *testing.T) {
	f := Facet{Dim3, StimAll, GroupAll}
	in := []Point{{Label: "S1_can", Speaker: "S1", Language: "can", Coords: []float64{0.125, -2, 3.5}}}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, f, in))
	out, err := ReadTable(&buf, f)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFromTrials(t *testing.T) {
	tbl, err := trials.Parse(strings.NewReader(`stim1,stim2,subjC1,subjE1
S1_can_a.wav,S2_can_a.wav,1,2
S1_can_a.wav,S3_can_a.wav,2,2
S2_can_a.wav,S3_can_a.wav,3,1
S1_eng_a.wav,S2_eng_a.wav,2,3
S1_can_a.wav,S1_eng_a.wav,4,4
`))
	require.NoError(t, err)

	s, err := FromTrials(tbl)
	require.NoError(t, err)

	pts, ok := s.Points(Facet{Dim2, StimCan, GroupEng})
	require.True(t, ok)
	require.Len(t, pts, 3)
	assert.Equal(t, "S1_can", pts[0].Label)
	assert.Equal(t, "S1", pts[0].Speaker)
	assert.Equal(t, "can", pts[0].Language)
	assert.Len(t, pts[0].Coords, 2)

	pts, ok = s.Points(Facet{Dim3, StimAll, GroupAll})
	require.True(t, ok)
	assert.Len(t, pts, 5)
	assert.Len(t, pts[0].Coords, 3)

	assert.False(t, s.Has(Facet{Dim2, StimMixed, GroupAll}))
}
