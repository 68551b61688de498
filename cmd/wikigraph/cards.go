// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/cards"
	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/sink"
)

var cardsCmd = &cobra.Command{
	Use:   "cards <cards.json>",
	Short: "Link METW cards to graph entities",
	Long: `Cards reads Middle-earth: The Wizards card data, describes every card,
and links each card to the entity whose name appears in the card name. The
entities are the persons of the --graph Turtle files, or a built-in list of
well-known characters when no graph is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runCards,
}

func init() {
	cardsCmd.Flags().StringSlice("graph", nil, "Turtle file or glob supplying entity names (repeatable)")
	cardsCmd.Flags().String("name", "metw_integration_cards", "base name of the output file")
	addOutputFlags(cardsCmd)

	rootCmd.AddCommand(cardsCmd)
}

func runCards(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOutputDir(cmd, &cfg)
	name, _ := cmd.Flags().GetString("name")
	patterns, _ := cmd.Flags().GetStringSlice("graph")

	all, err := cards.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d cards loaded from %s\n", len(all), args[0])

	entities := cards.EntitiesFromNames(cards.DefaultEntities, cfg.Graph.ResourceBase)
	if len(patterns) > 0 {
		files, err := sink.ResolveFiles(patterns)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintf(os.Stdout, "no graph files matched; using %d built-in names\n", len(entities))
		} else {
			source, err := graph.MergeFiles(files, prefixes(cfg))
			if err != nil {
				return err
			}
			entities = cards.EntitiesFromGraph(source)
			fmt.Fprintf(os.Stdout, "%d persons read from %d file(s)\n", len(entities), len(files))
		}
	}

	g := graph.New(prefixes(cfg))
	sum := cards.Link(g, all, entities, cfg.Graph.OntologyBase)
	cards.PrintSummary(os.Stdout, sum)
	return finishRun(cmd, cfg, name, g, nil, nil, metrics.New(), nil)
}
