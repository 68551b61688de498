// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/harvest"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/internal/sink"
	"github.com/pdiddy/wikigraph/internal/store"
	"github.com/pdiddy/wikigraph/internal/wiki"
	"github.com/pdiddy/wikigraph/pkg/types"
)

// prefixes returns the output prefix table for cfg's namespaces.
func prefixes(cfg types.PipelineConfig) map[string]string {
	return schema.Prefixes(cfg.Graph.ResourceBase, cfg.Graph.OntologyBase)
}

// newBuilder returns a graph builder over an empty graph, with any extra
// mapping rules from harvest.mapping_file.
func newBuilder(cfg types.PipelineConfig) (*graph.Builder, error) {
	var extra []schema.Rule
	if cfg.Harvest.MappingFile != "" {
		rules, err := schema.LoadRules(cfg.Harvest.MappingFile)
		if err != nil {
			return nil, err
		}
		extra = rules
	}
	mapper := schema.NewMapper(cfg.Graph.ResourceBase, cfg.Graph.OntologyBase, extra)
	g := graph.New(prefixes(cfg))
	return graph.NewBuilder(g, mapper, graph.NewMinter(cfg.Graph.Collision), cfg.Graph), nil
}

// newWikiClient returns a MediaWiki client with a page cache.
func newWikiClient(cfg types.PipelineConfig) (*wiki.Client, error) {
	cache, err := wiki.NewPageCache(cfg.Wiki.CacheSize)
	if err != nil {
		return nil, err
	}
	return wiki.NewClient(cfg.Wiki, cache)
}

// newHarvester wires a wiki client, builder, and metrics together.
func newHarvester(cfg types.PipelineConfig, m *metrics.Metrics) (*harvest.Harvester, error) {
	client, err := newWikiClient(cfg)
	if err != nil {
		return nil, err
	}
	b, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return harvest.New(client, b, m, cfg.Wiki.PageDelay), nil
}

func newFuseki(cfg types.PipelineConfig, m *metrics.Metrics) (*sink.Fuseki, error) {
	return sink.NewFuseki(cfg.Sink, m)
}

func openStore(cfg types.PipelineConfig) (*store.Store, error) {
	return store.NewStore(cfg.Store, cfg.Graph.OntologyBase)
}

// finishRun ends a harvest command. A completed run goes through
// finishGraph. A cancelled run still writes what it accumulated, skips the
// upload and ingest, and returns the cancellation.
func finishRun(cmd *cobra.Command, cfg types.PipelineConfig, name string, g *graph.Graph, templates []string, collisions []graph.Collision, m *metrics.Metrics, runErr error) error {
	if runErr == nil {
		return finishGraph(cmd, cfg, name, g, templates, collisions, m)
	}
	if !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	if g.Len() == 0 {
		return runErr
	}
	fmt.Fprintf(os.Stdout, "Interrupted; saving the partial graph\n")
	if err := saveGraph(cmd, cfg, name, g, templates); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// finishGraph writes the harvested graph, then optionally uploads it and
// ingests it into the local store, as selected by the harvest flags.
func finishGraph(cmd *cobra.Command, cfg types.PipelineConfig, name string, g *graph.Graph, templates []string, collisions []graph.Collision, m *metrics.Metrics) error {
	ctx := cmd.Context()

	if err := saveGraph(cmd, cfg, name, g, templates); err != nil {
		return err
	}

	if upload, _ := cmd.Flags().GetBool("upload"); upload {
		if err := uploadGraph(ctx, cfg, g, m); err != nil {
			return err
		}
	}
	if ingest, _ := cmd.Flags().GetBool("ingest"); ingest {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.Ingest(ctx, g, name, collisions, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

// saveGraph adds labels when asked and writes the Turtle output files.
func saveGraph(cmd *cobra.Command, cfg types.PipelineConfig, name string, g *graph.Graph, templates []string) error {
	if withLabels, _ := cmd.Flags().GetBool("labels"); withLabels {
		n := graph.AddLabels(g, graph.DefaultTranslations())
		fmt.Fprintf(os.Stdout, "Added %d multilingual labels\n", n)
	}

	out, err := harvest.WriteOutput(cfg.Harvest.OutputDir, name, g, templates,
		cfg.Harvest.SplitByCategory, cfg.Graph.OntologyBase, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Saved %d triples to %s\n", g.Len(), out.Graph)
	if out.Templates != "" {
		fmt.Fprintf(os.Stdout, "Saved template list to %s\n", out.Templates)
	}
	for _, p := range out.Categories {
		fmt.Fprintf(os.Stdout, "Saved category graph to %s\n", p)
	}
	return nil
}

func uploadGraph(ctx context.Context, cfg types.PipelineConfig, g *graph.Graph, m *metrics.Metrics) error {
	f, err := newFuseki(cfg, m)
	if err != nil {
		return err
	}
	if err := f.WaitReady(ctx, 0, os.Stdout); err != nil {
		return err
	}
	if err := f.UploadGraph(ctx, g); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Uploaded %d triples to %s\n", g.Len(), f.DatasetURL())
	return nil
}

// addOutputFlags registers the flags finishGraph reads.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("labels", false, "add multilingual rdfs:label triples to persons")
	cmd.Flags().Bool("upload", false, "upload the graph to Fuseki after saving")
	cmd.Flags().Bool("ingest", false, "ingest the graph into the local store after saving")
	cmd.Flags().String("output-dir", "", "directory for Turtle output (overrides harvest.output_dir)")
}

// applyOutputDir lets --output-dir override the configured directory.
func applyOutputDir(cmd *cobra.Command, cfg *types.PipelineConfig) {
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Harvest.OutputDir = dir
	}
}
