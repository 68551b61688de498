// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/harvest"
	"github.com/pdiddy/wikigraph/internal/metrics"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Scrape infobox templates into a Turtle graph",
	Long: `Harvest discovers the infobox templates of the wiki (or uses the ones
given with --template), lists the pages that use each template, extracts the
infobox parameters, maps them onto schema.org, and writes the graph to
<output-dir>/<name>_<timestamp>.ttl together with the template list.

Pages that fail are reported and counted; the command exits non-zero when
any page failed.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringSlice("template", nil, "template to harvest (repeatable; default: all infobox templates)")
	harvestCmd.Flags().Int("limit", 0, "pages per template (overrides harvest.pages_per_template; 0 keeps the configured value)")
	harvestCmd.Flags().Bool("all", false, "harvest every page of each template")
	harvestCmd.Flags().Bool("no-probe", false, "do not skip templates without pages")
	harvestCmd.Flags().Bool("split", false, "also write one Turtle file per category")
	harvestCmd.Flags().String("name", "tolkien_gateway", "base name of the output file")
	addOutputFlags(harvestCmd)

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOutputDir(cmd, &cfg)
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Harvest.PagesPerTemplate = limit
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		cfg.Harvest.PagesPerTemplate = 0
	}
	if noProbe, _ := cmd.Flags().GetBool("no-probe"); noProbe {
		cfg.Harvest.Probe = false
	}
	if split, _ := cmd.Flags().GetBool("split"); split {
		cfg.Harvest.SplitByCategory = true
	}
	templates, _ := cmd.Flags().GetStringSlice("template")
	name, _ := cmd.Flags().GetString("name")

	m := metrics.New()
	h, err := newHarvester(cfg, m)
	if err != nil {
		return err
	}

	sum, err := h.Run(cmd.Context(), harvest.Options{
		Templates:        templates,
		PagesPerTemplate: cfg.Harvest.PagesPerTemplate,
		Probe:            cfg.Harvest.Probe,
	}, os.Stdout)
	g := h.Builder.Graph()
	harvest.PrintSummary(os.Stdout, sum, g)
	if err := finishRun(cmd, cfg, name, g, sum.Templates, sum.Collisions, m, err); err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d page(s) failed", sum.Failed)
	}
	return nil
}
