// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/schema"
)

var labelsCmd = &cobra.Command{
	Use:   "labels <input.ttl>",
	Short: "Add multilingual rdfs:label triples to the persons of a graph",
	Long: `Labels reads a Turtle file and gives every schema:Person language-tagged
rdfs:label triples. Known characters get their translated names; everyone
else gets the default languages. A YAML translation table can replace the
built-in one.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().StringP("output", "o", "", "output file (default: overwrite the input)")
	labelsCmd.Flags().String("translations", "", "YAML translation table")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tr := graph.DefaultTranslations()
	if path, _ := cmd.Flags().GetString("translations"); path != "" {
		if tr, err = graph.LoadTranslations(path); err != nil {
			return err
		}
	}

	g, err := graph.ReadFile(args[0], prefixes(cfg))
	if err != nil {
		return err
	}
	n := graph.AddLabels(g, tr)

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = args[0]
	}
	if err := graph.WriteFile(out, g); err != nil {
		return err
	}
	fmt.Printf("Added %d labels to %d persons; wrote %s\n", n, len(g.SubjectsOfType(schema.Person)), out)
	return nil
}
