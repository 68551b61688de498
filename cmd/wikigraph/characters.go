// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/harvest"
	"github.com/pdiddy/wikigraph/internal/metrics"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "Harvest every member of a category",
	Long: `Characters lists the members of a wiki category (Characters by default)
and extracts one infobox template from each page. Pages without the infobox
still get a subject with their name, URL, and source, so the graph covers the
whole category.`,
	RunE: runCharacters,
}

func init() {
	charactersCmd.Flags().String("category", "Characters", "wiki category to harvest")
	charactersCmd.Flags().String("template", "Infobox character", "infobox template to extract")
	charactersCmd.Flags().Int("limit", 0, "maximum pages (0 = all)")
	charactersCmd.Flags().String("name", "tolkien_characters", "base name of the output file")
	addOutputFlags(charactersCmd)

	rootCmd.AddCommand(charactersCmd)
}

func runCharacters(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOutputDir(cmd, &cfg)
	category, _ := cmd.Flags().GetString("category")
	template, _ := cmd.Flags().GetString("template")
	limit, _ := cmd.Flags().GetInt("limit")
	name, _ := cmd.Flags().GetString("name")

	m := metrics.New()
	h, err := newHarvester(cfg, m)
	if err != nil {
		return err
	}

	sum, err := h.RunCategory(cmd.Context(), category, template, limit, os.Stdout)
	g := h.Builder.Graph()
	harvest.PrintSummary(os.Stdout, sum, g)
	if err := finishRun(cmd, cfg, name, g, nil, sum.Collisions, m, err); err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d page(s) failed", sum.Failed)
	}
	return nil
}
