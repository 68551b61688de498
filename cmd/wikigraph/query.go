// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/sink"
)

var queryCmd = &cobra.Command{
	Use:   "query [implicit-query]",
	Short: "Run an implicit-fact or ad hoc SPARQL query against Fuseki",
	Long: `Query runs one of the named implicit-fact queries (family relationships,
multilingual entities, transitive connections, type inheritance, most
described characters) or an ad hoc SELECT given with --sparql or --file.
Use --list to see the named queries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Bool("list", false, "list the named implicit-fact queries")
	queryCmd.Flags().String("sparql", "", "SELECT query text")
	queryCmd.Flags().String("file", "", "file holding a SELECT query")
	queryCmd.Flags().Int("limit", 20, "result limit for named queries")
	queryCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	queries := sink.NewQueries()
	if list, _ := cmd.Flags().GetBool("list"); list {
		info := queries.Implicit()
		for _, name := range queries.ImplicitNames() {
			fmt.Printf("%-28s %s\n", name, info[name])
		}
		return nil
	}

	text, _ := cmd.Flags().GetString("sparql")
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading query: %w", err)
		}
		text = string(data)
	}
	if text == "" && len(args) == 0 {
		return fmt.Errorf("provide a query name, --sparql, or --file (see --list)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFuseki(cfg, metrics.New())
	if err != nil {
		return err
	}

	var rows sink.Rows
	if text != "" {
		rows, err = f.Select(cmd.Context(), text)
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		rows, err = queries.RunImplicit(cmd.Context(), f, args[0], limit)
	}
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRows(rows, jsonOutput)
}

func formatRows(rows sink.Rows, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows.Bindings) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Println(strings.Join(rows.Vars, "\t"))
	fmt.Println(strings.Repeat("-", 80))
	for _, b := range rows.Bindings {
		cells := make([]string, len(rows.Vars))
		for i, v := range rows.Vars {
			cells[i] = b[v]
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Printf("\n%d results\n", len(rows.Bindings))
	return nil
}
