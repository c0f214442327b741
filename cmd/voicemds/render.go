package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/voicemds/internal/config"
	"github.com/satindergrewal/voicemds/internal/coords"
	"github.com/satindergrewal/voicemds/internal/figure"
)

var (
	renderFacet  string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one facet's chart to a PNG file",
	Long: `Render a static PNG of one facet (dimensions 1 and 2) using the same
data source and axis ranges the server would use.

Example:
  voicemds render --facet 2d/can/all -o 2d_can_all.png`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderFacet, "facet", "", "facet to render, e.g. 2d/can/all")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default: {dim}_{stim}_{group}.png)")
	renderCmd.MarkFlagRequired("facet")
}

func runRender(cmd *cobra.Command, args []string) error {
	f, err := coords.ParseFacet(renderFacet)
	if err != nil {
		return err
	}
	cfg := config.Load()
	data, err := loadData(cfg)
	if err != nil {
		return err
	}
	pts, ok := data.store.Points(f)
	if !ok {
		return fmt.Errorf("facet %s: %w", f, coords.ErrNoFacets)
	}

	fig := figure.Builder{Axes: sessionAxes(cfg, data.store)}.Build(f, pts)

	path := renderOutput
	if path == "" {
		path = strings.TrimSuffix(f.FileName(), ".csv") + ".png"
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := figure.RenderPNG(out, fig); err != nil {
		out.Close()
		return fmt.Errorf("render %s: %w", f, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %s", path)
	return nil
}
