// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/sink"
)

var loadCmd = &cobra.Command{
	Use:   "load [files or globs...]",
	Short: "Upload Turtle or N-Triples files into Fuseki",
	Long: `Load waits for the Fuseki server, then uploads each file to the
dataset's default graph in the order given. Arguments may be plain paths or
doublestar globs such as data/**/*.ttl; without arguments every .ttl file in
the output directory is loaded. A failed file is reported and the rest are
still loaded.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().Bool("clear", false, "clear the dataset before loading")
	loadCmd.Flags().Int("wait", 10, "attempts to wait for Fuseki before giving up")
	loadCmd.Flags().Duration("delay", 0, "pause between uploads (overrides sink.load_delay)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{filepath.Join(cfg.Harvest.OutputDir, "*.ttl")}
	}
	files, err := sink.ResolveFiles(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no RDF files match %v", patterns)
	}

	f, err := newFuseki(cfg, metrics.New())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	attempts, _ := cmd.Flags().GetInt("wait")
	if err := f.WaitReady(ctx, attempts, os.Stdout); err != nil {
		return err
	}
	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		if err := f.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("Cleared dataset", f.DatasetURL())
	}

	delay := cfg.Sink.LoadDelay
	if d, _ := cmd.Flags().GetDuration("delay"); d > 0 {
		delay = d
	}
	loader := sink.Loader{Sink: f, Delay: delay}
	result, err := loader.Load(ctx, files, os.Stdout)
	if err != nil {
		return err
	}
	if n, err := f.Count(ctx); err == nil {
		fmt.Printf("Dataset now holds %d triples\n", n)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to load", len(result.Failed))
	}
	return nil
}
