// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/harvest"
	"github.com/pdiddy/wikigraph/internal/metrics"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align wiki resources with DBpedia and YAGO",
	Long: `Align reads the external links of each page (from --title, or the
members of --category) and, for the first link to a Wikipedia article, adds
owl:sameAs links to the DBpedia and YAGO resources of the same name. The
result is written to <output-dir>/<name>_<timestamp>.ttl.`,
	RunE: runAlign,
}

func init() {
	alignCmd.Flags().StringSlice("title", nil, "page to align (repeatable)")
	alignCmd.Flags().String("category", "", "align the members of this category")
	alignCmd.Flags().Int("limit", 0, "maximum category members (0 = all)")
	alignCmd.Flags().String("name", "api_alignments", "base name of the output file")
	addOutputFlags(alignCmd)

	rootCmd.AddCommand(alignCmd)
}

func runAlign(cmd *cobra.Command, args []string) error {
	titles, _ := cmd.Flags().GetStringSlice("title")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	name, _ := cmd.Flags().GetString("name")
	if len(titles) == 0 && category == "" {
		return fmt.Errorf("give --title or --category")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOutputDir(cmd, &cfg)

	m := metrics.New()
	h, err := newHarvester(cfg, m)
	if err != nil {
		return err
	}
	if category != "" {
		members, err := h.Wiki.CategoryMembers(cmd.Context(), category, limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d pages in %s\n", len(members), category)
		titles = append(titles, members...)
	}

	sum, err := h.Align(cmd.Context(), titles, os.Stdout)
	g := h.Builder.Graph()
	harvest.PrintAlignSummary(os.Stdout, sum)
	if err := finishRun(cmd, cfg, name, g, nil, sum.Collisions, m, err); err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d page(s) failed", sum.Failed)
	}
	return nil
}
