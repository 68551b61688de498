// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/harvest"
	"github.com/pdiddy/wikigraph/internal/metrics"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Describe wiki pages and the entities they are about",
	Long: `Pages lists the articles of the wiki and adds, for each one, a
schema:WebPage node linked to its resource with schema:about and
schema:subjectOf. No page content is fetched.`,
	RunE: runPages,
}

func init() {
	pagesCmd.Flags().Int("limit", 100, "maximum pages (0 = all)")
	pagesCmd.Flags().String("name", "tolkien_wiki_pages", "base name of the output file")
	addOutputFlags(pagesCmd)

	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOutputDir(cmd, &cfg)
	limit, _ := cmd.Flags().GetInt("limit")
	name, _ := cmd.Flags().GetString("name")

	m := metrics.New()
	h, err := newHarvester(cfg, m)
	if err != nil {
		return err
	}

	sum, err := h.RunPages(cmd.Context(), limit, os.Stdout)
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
