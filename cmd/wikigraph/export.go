// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/metrics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the Fuseki dataset as Turtle",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFuseki(cfg, metrics.New())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	path, _ := cmd.Flags().GetString("output")
	if path != "" {
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer out.Close()
		w = out
	}

	n, err := f.Export(cmd.Context(), w, prefixes(cfg))
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "Exported %d triples to %s\n", n, path)
	}
	return nil
}
