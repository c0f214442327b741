package trials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `stim1,stim2,subjC1,subjC2,subjE1
S1_can_utt1.wav,S2_can_utt1.wav,1,3,5
S1_can_utt2.wav,S1_eng_utt1.wav,2,2,2
S2_eng_utt1.wav,S1_eng_utt2.wav,4,4,1
S2_can_utt2.wav,S2_eng_utt2.wav,6,0,3
`

func mustParse(t *testing.T, s string) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return tbl
}

func TestLabelOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"S1_can_utt1.wav", "S1_can"},
		{"S1_can", "S1_can"},
		{"single.wav", "single.wav"},
		{"a_b_c_d", "a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelOf(tt.in), tt.in)
	}
}

func TestSplitLabel(t *testing.T) {
	spk, lang := SplitLabel("S7_eng")
	assert.Equal(t, "S7", spk)
	assert.Equal(t, "eng", lang)

	spk, lang = SplitLabel("S7")
	assert.Equal(t, "S7", spk)
	assert.Empty(t, lang)
}

func TestParse(t *testing.T) {
	tbl := mustParse(t, sample)

	assert.Equal(t, []string{"subjC1", "subjC2", "subjE1"}, tbl.Subjects)
	require.Len(t, tbl.Trials, 4)
	first := tbl.Trials[0]
	assert.Equal(t, "S1_can", first.Label1)
	assert.Equal(t, "S2_can", first.Label2)
	assert.Equal(t, []float64{1, 3, 5}, first.Scores)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("stim2,subj1\na,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = Parse(strings.NewReader("stim1,stim2,rating\na,b,1\n"))
	assert.ErrorIs(t, err, ErrNoSubjects)

	_, err = Parse(strings.NewReader("stim1,stim2,subj1\na_x,b_y,high\n"))
	assert.ErrorIs(t, err, ErrBadScore)
}

func TestParseByteOrderMark(t *testing.T) {
	tbl := mustParse(t, "\ufeff"+sample)
	require.Len(t, tbl.Trials, 4)
	assert.Equal(t, "S1_can_utt1.wav", tbl.Trials[0].Stim1)
}

func TestLabels(t *testing.T) {
	tbl := mustParse(t, sample)
	assert.Equal(t, []string{"S1_can", "S1_eng", "S2_can", "S2_eng"}, tbl.Labels())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mds_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Trials, 4)
}

func TestSubjectColumns(t *testing.T) {
	tbl := mustParse(t, sample)
	assert.Equal(t, []int{0, 1, 2}, tbl.SubjectColumns("all"))
	assert.Equal(t, []int{0, 1}, tbl.SubjectColumns("can"))
	assert.Equal(t, []int{2}, tbl.SubjectColumns("eng"))
	assert.Nil(t, tbl.SubjectColumns("mixed"))
}

func TestDissimilarity(t *testing.T) {
	tbl := mustParse(t, sample)

	labels, m := tbl.Dissimilarity(tbl.SubjectColumns("can"), nil)
	require.Equal(t, []string{"S1_can", "S1_eng", "S2_can", "S2_eng"}, labels)

	// S1_can vs S2_can: mean(1,3) = 2
	assert.InDelta(t, 2.0, m[0][2], 1e-12)
	assert.InDelta(t, 2.0, m[2][0], 1e-12)
	// S2_can vs S2_eng: mean(6,0) = 3
	assert.InDelta(t, 3.0, m[2][3], 1e-12)
	for i := range m {
		assert.Zero(t, m[i][i])
	}
}

func TestDissimilarityFiltered(t *testing.T) {
	tbl := mustParse(t, sample)

	labels, m := tbl.Dissimilarity(tbl.SubjectColumns("eng"), SameLanguage("can"))
	require.Equal(t, []string{"S1_can", "S2_can"}, labels)
	assert.InDelta(t, 5.0, m[0][1], 1e-12)
}

func TestFirstStimulus(t *testing.T) {
	tbl := mustParse(t, sample)

	stim, ok := tbl.FirstStimulus("S1_eng")
	require.True(t, ok)
	assert.Equal(t, "S1_eng_utt1.wav", stim)

	// First trial in file order wins, whichever side the label is on.
	stim, ok = tbl.FirstStimulus("S2_can")
	require.True(t, ok)
	assert.Equal(t, "S2_can_utt1.wav", stim)

	_, ok = tbl.FirstStimulus("S9_can")
	assert.False(t, ok)
}
