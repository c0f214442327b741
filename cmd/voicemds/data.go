package main

import (
	"log"

	"github.com/satindergrewal/voicemds/internal/config"
	"github.com/satindergrewal/voicemds/internal/coords"
	"github.com/satindergrewal/voicemds/internal/trials"
)

type dataSet struct {
	store  *coords.Store
	trials *trials.Table // nil unless the config needs it
}

// loadData loads the trial table when needed and the coordinate store from
// the configured source.
func loadData(cfg config.Config) (dataSet, error) {
	var d dataSet
	if cfg.NeedsTrials() {
		t, err := trials.Load(cfg.TrialsPath)
		if err != nil {
			return d, err
		}
		log.Printf("Loaded %d trials, %d subjects from %s", len(t.Trials), len(t.Subjects), cfg.TrialsPath)
		d.trials = t
	}

	var err error
	switch {
	case cfg.Source == config.SourceTrials:
		d.store, err = coords.FromTrials(d.trials)
	case cfg.Manifest != "":
		d.store, err = coords.LoadManifest(cfg.Manifest)
	default:
		d.store, err = coords.LoadDir(cfg.DataDir)
	}
	if err != nil {
		return d, err
	}
	return d, nil
}

func sessionAxes(cfg config.Config, s *coords.Store) coords.Axes {
	if cfg.AxisMode == config.AxisGlobal {
		return s.GlobalAxes(cfg.AxisPad)
	}
	return coords.FixedAxes(cfg.AxisLimit)
}
