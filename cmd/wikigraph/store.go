// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/sink"
	"github.com/pdiddy/wikigraph/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local triple store (ingest, search, export)",
	Long: `Store keeps harvested graphs in a local SQLite database with full-text
search over literal values. Each ingest is recorded as a run; triples that
are already stored are skipped.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest <files or globs...>",
	Short: "Ingest RDF files into the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
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

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = strings.Join(files, ",")
	}
	_, err = st.Ingest(cmd.Context(), g, source, nil, os.Stdout)
	return err
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Full-text search over stored literal values",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStoreSearch,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	matches, err := st.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatMatches(matches, jsonOutput)
}

func formatMatches(matches []store.Match, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-30s  %s\n", "Rank", "Subject", "Property", "Value")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for i, m := range matches {
		value := m.Value
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		if m.Lang != "" {
			value += "@" + m.Lang
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-30s  %s\n", i+1, localName(m.Subject), localName(m.Predicate), value)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(matches))
	return nil
}

// localName returns the part of iri after its last '/' or '#'.
func localName(iri string) string {
	if i := strings.LastIndexAny(iri, "/#"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store summary or graph",
	Long: `Export writes a summary of the store (runs, pages, collisions) to
<store-dir>/export.yaml or export.json. With --format turtle the whole stored
graph is written instead.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		path, err := st.ExportYAML(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
	case "json":
		path, err := st.ExportJSON(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
	case "turtle", "ttl":
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			return fmt.Errorf("--output is required for turtle export")
		}
		g, err := st.Graph(ctx, prefixes(cfg))
		if err != nil {
			return err
		}
		if err := graph.WriteFile(out, g); err != nil {
			return err
		}
		fmt.Printf("Exported %d triples to %s\n", g.Len(), out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or turtle", format)
	}
	return nil
}

func init() {
	storeIngestCmd.Flags().String("source", "", "source label recorded with the run (default: the file list)")

	storeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = store.max_results)")
	storeSearchCmd.Flags().Bool("json", false, "output results as JSON")

	storeExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or turtle")
	storeExportCmd.Flags().StringP("output", "o", "", "output file for turtle export")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
