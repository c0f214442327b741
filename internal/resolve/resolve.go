// Package resolve maps a point's label to the audio clips that represent it.
package resolve

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/satindergrewal/voicemds/internal/config"
	"github.com/satindergrewal/voicemds/internal/coords"
	"github.com/satindergrewal/voicemds/internal/trials"
)

// Resolver returns candidate audio filenames for a label. An empty result
// means no audio is available; resolvers never fail.
type Resolver interface {
	Resolve(label string, stim coords.Stimulus) []string
}

// Languages heard in the mixed-language condition, as they appear in filenames.
var mixedLanguages = []string{"can", "eng"}

// Synthesized builds filenames from the label: {speaker}_{language}_utt{1,2}.wav.
type Synthesized struct{}

// Resolve implements Resolver.
func (Synthesized) Resolve(label string, stim coords.Stimulus) []string {
	speaker, lang := trials.SplitLabel(label)
	if speaker == "" {
		return nil
	}
	if stim == coords.StimMixed {
		return mixed(speaker)
	}
	if lang == "" {
		return nil
	}
	return utterances(speaker, lang)
}

// TrialLookup returns the literal stimulus filename of the first trial that
// carries the label.
type TrialLookup struct {
	Table *trials.Table
}

// Resolve implements Resolver.
func (r TrialLookup) Resolve(label string, stim coords.Stimulus) []string {
	if stim == coords.StimMixed {
		speaker, _ := trials.SplitLabel(label)
		if speaker == "" {
			return nil
		}
		return mixed(speaker)
	}
	if r.Table == nil {
		return nil
	}
	if stim, ok := r.Table.FirstStimulus(label); ok {
		return []string{stim}
	}
	return nil
}

func utterances(speaker, lang string) []string {
	return []string{
		fmt.Sprintf("%s_%s_utt1.wav", speaker, lang),
		fmt.Sprintf("%s_%s_utt2.wav", speaker, lang),
	}
}

// mixed returns two utterances per language with title-cased language
// tokens, e.g. S1_Can_utt1.wav.
func mixed(speaker string) []string {
	// Casers carry state and are not shared between goroutines.
	title := cases.Title(language.Und)
	var out []string
	for _, l := range mixedLanguages {
		out = append(out, utterances(speaker, title.String(l))...)
	}
	return out
}

// New picks the resolver variant configured by mode. The trial lookup needs
// a loaded table and falls back to Synthesized without one.
func New(mode string, t *trials.Table) Resolver {
	if mode == config.AudioTrials && t != nil {
		return TrialLookup{Table: t}
	}
	return Synthesized{}
}
