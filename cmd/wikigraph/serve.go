// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve resources as linked data",
	Long: `Serve starts an HTTP server with one page per resource
(/resource/{name}), Turtle downloads (/download/{name}.ttl), the implicit-fact
queries as JSON (/implicit, /implicit/{name}), and Prometheus metrics
(/metrics). Resources come from Fuseki, or from the local store with --local;
the implicit queries always need Fuseki.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides serve.addr)")
	serveCmd.Flags().Bool("local", false, "describe resources from the local store")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Serve.Addr = addr
	}

	m := metrics.New()
	f, err := newFuseki(cfg, m)
	if err != nil {
		return err
	}
	opts := server.Options{
		ResourceBase: cfg.Graph.ResourceBase,
		Prefixes:     prefixes(cfg),
		Resources:    f,
		Facts:        f,
		Metrics:      m,
		Logger:       slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	if local, _ := cmd.Flags().GetBool("local"); local {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Resources = st
	}

	return server.NewServer(opts).ListenAndServe(cmd.Context(), cfg.Serve.Addr)
}
