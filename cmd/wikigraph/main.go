// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wikigraph CLI. It scrapes infobox
// templates from a MediaWiki site into an RDF graph, writes Turtle, and
// loads the result into a Fuseki triplestore or a local SQLite store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wikigraph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the wikigraph CLI.
var rootCmd = &cobra.Command{
	Use:   "wikigraph",
	Short: "Turn MediaWiki infoboxes into a schema.org knowledge graph",
	Long: `wikigraph harvests infobox templates from a MediaWiki site (Tolkien Gateway
by default), maps their parameters onto schema.org, and writes the result as
Turtle. The graph can be loaded into an Apache Jena Fuseki dataset, indexed in
a local SQLite store, and browsed as linked data.

A typical run is: templates, harvest, load, serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wikigraph.yaml or ~/.config/wikigraph/wikigraph.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().String("api-url", "", "MediaWiki API endpoint (overrides wiki.api_url)")
	rootCmd.PersistentFlags().String("fuseki", "", "Fuseki server URL (overrides sink.endpoint)")
	rootCmd.PersistentFlags().String("dataset", "", "Fuseki dataset name (overrides sink.dataset)")
	rootCmd.PersistentFlags().String("store-dir", "", "local store directory (overrides store.dir)")

	viper.BindPFlag("wiki.api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("sink.endpoint", rootCmd.PersistentFlags().Lookup("fuseki"))
	viper.BindPFlag("sink.dataset", rootCmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wikigraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wikigraph"))
		}
	}

	viper.SetEnvPrefix("WIKIGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
