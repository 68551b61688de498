// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/metrics"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every triple in the Fuseki dataset",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().Bool("yes", false, "confirm deleting the dataset contents")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return fmt.Errorf("refusing to clear the dataset without --yes")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFuseki(cfg, metrics.New())
	if err != nil {
		return err
	}
	if err := f.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Cleared dataset", f.DatasetURL())
	return nil
}
