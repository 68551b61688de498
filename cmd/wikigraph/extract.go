// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/harvest"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract an infobox from a saved wikitext file",
	Long: `Extract reads a page's wikitext from a local file, finds the infobox
template (the first one whose name contains "infobox", or --template), and
prints its cleaned parameters. With --format turtle the parameters are mapped
and printed as triples, as harvest would add them.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("template", "", "template to extract (default: first infobox)")
	extractCmd.Flags().String("title", "", "page title (default: derived from the file name)")
	extractCmd.Flags().String("format", "text", "output format: text, json, yaml, or turtle")
	extractCmd.Flags().Bool("list", false, "list every template invocation in the file")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	template, _ := cmd.Flags().GetString("template")
	res, err := harvest.ExtractFile(args[0], template)
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, inv := range res.Invocations {
			fmt.Printf("%6d  %-40s %d params\n", inv.Offset, inv.Name, inv.Bag.Len())
		}
		return nil
	}
	if err != nil {
		return err
	}
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		res.Title = title
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		fmt.Printf("%s (%s, %d params)\n", res.Title, res.Template, res.Bag.Len())
		for _, p := range res.Bag.Params {
			fmt.Printf("  %-20s %s\n", p.Key, p.Value)
		}
		if res.Bag.Len() == 0 {
			fmt.Println("  template found but empty")
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Bag)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(res.Bag)
	case "turtle", "ttl":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := newBuilder(cfg)
		if err != nil {
			return err
		}
		if _, err := b.AddPage(res.Title, res.Template, res.Bag); err != nil {
			return err
		}
		return graph.Encode(os.Stdout, b.Graph(), graph.Turtle)
	default:
		return fmt.Errorf("unsupported format %q: use text, json, yaml, or turtle", format)
	}
	return nil
}
