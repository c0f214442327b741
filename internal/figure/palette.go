package figure

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/satindergrewal/voicemds/internal/coords"
)

// Colors is the plotly/D3 qualitative palette.
var Colors = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Palette assigns each speaker of the facet a color by its rank among the
// sorted unique speakers, cycling when there are more speakers than colors.
func Palette(pts []coords.Point) map[string]string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, p := range pts {
		if _, ok := seen[p.Speaker]; ok {
			continue
		}
		seen[p.Speaker] = struct{}{}
		speakers = append(speakers, p.Speaker)
	}
	sort.Strings(speakers)

	out := make(map[string]string, len(speakers))
	for i, s := range speakers {
		out[s] = Colors[i%len(Colors)]
	}
	return out
}

// Study language codes that are not (or not unambiguously) BCP 47.
var languageTags = map[string]language.Tag{
	"can": language.MustParse("yue"),
	"eng": language.English,
}

// LanguageName returns the English display name for a language code, or ""
// when unknown.
func LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == string(coords.StimMixed) {
		return ""
	}
	tag, ok := languageTags[code]
	if !ok {
		t, err := language.Parse(code)
		if err != nil {
			return ""
		}
		tag = t
	}
	return display.English.Languages().Name(tag)
}
