// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/sink"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <files or globs...>",
	Short: "Merge several RDF files into one Turtle file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "merged.ttl", "output Turtle file")
	mergeCmd.Flags().Bool("labels", false, "add multilingual rdfs:label triples to persons")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	files, err := sink.ResolveFiles(args)
	if err != nil {
		return err
	}
	g, err := graph.MergeFiles(files, prefixes(cfg))
	if err != nil {
		return err
	}
	if withLabels, _ := cmd.Flags().GetBool("labels"); withLabels {
		fmt.Printf("Added %d multilingual labels\n", graph.AddLabels(g, graph.DefaultTranslations()))
	}

	out, _ := cmd.Flags().GetString("output")
	if err := graph.WriteFile(out, g); err != nil {
		return err
	}
	fmt.Printf("Merged %d files into %s (%d triples)\n", len(files), out, g.Len())
	return nil
}
