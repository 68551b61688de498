// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/wikigraph/internal/secrets"
	"github.com/pdiddy/wikigraph/pkg/types"
)

// loadConfig starts from types.Defaults, applies every key set in the
// config file, environment, or bound flags, fills credentials from the
// secrets directory, and validates the result.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.Defaults()

	setString("wiki.api_url", &cfg.Wiki.APIURL)
	setString("wiki.user_agent", &cfg.Wiki.UserAgent)
	setDuration("wiki.timeout", &cfg.Wiki.Timeout)
	setDuration("wiki.request_delay", &cfg.Wiki.RequestDelay)
	setDuration("wiki.page_delay", &cfg.Wiki.PageDelay)
	setInt("wiki.max_retries", &cfg.Wiki.MaxRetries)
	setDuration("wiki.retry_delay", &cfg.Wiki.RetryDelay)
	setInt("wiki.cache_size", &cfg.Wiki.CacheSize)
	setString("wiki.infobox_category", &cfg.Wiki.InfoboxCategory)

	setString("graph.resource_base", &cfg.Graph.ResourceBase)
	setString("graph.ontology_base", &cfg.Graph.OntologyBase)
	setString("graph.page_base", &cfg.Graph.PageBase)
	setString("graph.wiki_url", &cfg.Graph.WikiURL)
	setString("graph.source_name", &cfg.Graph.SourceName)
	if viper.IsSet("graph.collision") {
		cfg.Graph.Collision = types.CollisionPolicy(viper.GetString("graph.collision"))
	}

	setInt("harvest.pages_per_template", &cfg.Harvest.PagesPerTemplate)
	setString("harvest.output_dir", &cfg.Harvest.OutputDir)
	setBool("harvest.probe", &cfg.Harvest.Probe)
	setString("harvest.mapping_file", &cfg.Harvest.MappingFile)
	setBool("harvest.split_by_category", &cfg.Harvest.SplitByCategory)

	setString("sink.endpoint", &cfg.Sink.Endpoint)
	setString("sink.dataset", &cfg.Sink.Dataset)
	setString("sink.user_agent", &cfg.Sink.UserAgent)
	setDuration("sink.timeout", &cfg.Sink.Timeout)
	setInt("sink.max_retries", &cfg.Sink.MaxRetries)
	setDuration("sink.retry_delay", &cfg.Sink.RetryDelay)
	setDuration("sink.load_delay", &cfg.Sink.LoadDelay)
	setString("sink.username", &cfg.Sink.Username)

	setString("store.dir", &cfg.Store.Dir)
	setInt("store.max_results", &cfg.Store.MaxResults)

	setString("serve.addr", &cfg.Serve.Addr)

	secrets.Apply(loadedSecrets, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Empty strings from unset bound flags do not override file values.
func setString(key string, dst *string) {
	if viper.IsSet(key) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
}

func setInt(key string, dst *int) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func setBool(key string, dst *bool) {
	if viper.IsSet(key) {
		*dst = viper.GetBool(key)
	}
}

func setDuration(key string, dst *time.Duration) {
	if viper.IsSet(key) {
		*dst = viper.GetDuration(key)
	}
}
