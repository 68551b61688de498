// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/container"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/secrets"
)

var fusekiCmd = &cobra.Command{
	Use:   "fuseki",
	Short: "Run a local Fuseki triplestore in Docker or Podman",
}

var fusekiUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the Fuseki container and wait until it answers",
	RunE:  runFusekiUp,
}

var fusekiDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the Fuseki container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		return container.Down(rt, name, os.Stdout)
	},
}

func init() {
	fusekiCmd.PersistentFlags().String("name", "wikigraph-fuseki", "container name")
	fusekiUpCmd.Flags().String("image", container.DefaultFusekiImage, "Fuseki image")
	fusekiUpCmd.Flags().Int("port", 3030, "host port")
	fusekiUpCmd.Flags().String("data-dir", "", "host directory mounted at /fuseki")

	fusekiCmd.AddCommand(fusekiUpCmd)
	fusekiCmd.AddCommand(fusekiDownCmd)
	rootCmd.AddCommand(fusekiCmd)
}

func runFusekiUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}

	opts := container.FusekiOptions{
		Dataset:       cfg.Sink.Dataset,
		AdminPassword: secrets.AdminPassword(loadedSecrets),
	}
	opts.Name, _ = cmd.Flags().GetString("name")
	opts.Image, _ = cmd.Flags().GetString("image")
	opts.Port, _ = cmd.Flags().GetInt("port")
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", dir, err)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", abs, err)
		}
		opts.DataDir = abs
	}

	if _, err := container.Up(rt, opts, os.Stdout); err != nil {
		return err
	}

	cfg.Sink.Endpoint = fmt.Sprintf("http://localhost:%d", opts.Port)
	f, err := newFuseki(cfg, metrics.New())
	if err != nil {
		return err
	}
	return f.WaitReady(cmd.Context(), 0, os.Stdout)
}
