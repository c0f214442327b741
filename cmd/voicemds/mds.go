package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/voicemds/internal/coords"
	"github.com/satindergrewal/voicemds/internal/trials"
)

var (
	mdsTrials string
	mdsOut    string
)

var mdsCmd = &cobra.Command{
	Use:   "mds",
	Short: "Compute coordinate tables from a pairwise trial table",
	Long: `Run classical MDS over the trial table for every dimensionality,
stimulus type and listener group that has data, and write one
{dim}_{stim}_{group}.csv table per facet into the output directory.

Example:
  voicemds mds --trials mds_data.csv --out data`,
	RunE: runMDS,
}

func init() {
	rootCmd.AddCommand(mdsCmd)
	mdsCmd.Flags().StringVar(&mdsTrials, "trials", "mds_data.csv", "pairwise trial table (CSV)")
	mdsCmd.Flags().StringVar(&mdsOut, "out", "data", "output directory for coordinate tables")
}

func runMDS(cmd *cobra.Command, args []string) error {
	t, err := trials.Load(mdsTrials)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d trials over %d stimuli from %s", len(t.Trials), len(t.Labels()), mdsTrials)
	store, err := coords.FromTrials(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(mdsOut, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", mdsOut, err)
	}
	for _, f := range store.Facets() {
		pts, _ := store.Points(f)
		path := filepath.Join(mdsOut, f.FileName())
		if err := writeTable(path, f, pts); err != nil {
			return err
		}
		log.Printf("Wrote %s: %d points", path, len(pts))
	}
	return nil
}

func writeTable(path string, f coords.Facet, pts []coords.Point) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := coords.WriteTable(out, f, pts); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
