// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"net/url"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "wikigraph/0.1 (contact@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds the retry loop on transient failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the fixed pause between retries (default 2s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// WikiConfig holds settings for the MediaWiki locator and fetcher.
type WikiConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the MediaWiki Action API endpoint.
	APIURL string `json:"api_url" yaml:"api_url"`

	// RequestDelay is the pause between continuation requests (default 500ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// PageDelay is the pause between consecutive page fetches (default 200ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// CacheSize bounds the in-memory wikitext cache (default 512 pages).
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// InfoboxCategory is the category listing infobox templates
	// (default "Infobox templates").
	InfoboxCategory string `json:"infobox_category" yaml:"infobox_category"`
}

// CollisionPolicy decides what happens when two distinct page titles
// sanitize to the same URI fragment.
type CollisionPolicy string

const (
	// CollisionSuffix gives later titles a numeric suffix (_2, _3, ...).
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionReject refuses the later title with an error.
	CollisionReject CollisionPolicy = "reject"
	// CollisionMerge lets both titles share one subject URI.
	CollisionMerge CollisionPolicy = "merge"
)

// GraphConfig holds namespace and subject-minting settings.
type GraphConfig struct {
	// ResourceBase is the namespace for entity URIs.
	ResourceBase string `json:"resource_base" yaml:"resource_base"`

	// OntologyBase is the namespace for unmapped properties and custom terms.
	OntologyBase string `json:"ontology_base" yaml:"ontology_base"`

	// PageBase is the namespace for wiki page (document) URIs.
	PageBase string `json:"page_base" yaml:"page_base"`

	// WikiURL is the article URL prefix used for schema:url values.
	WikiURL string `json:"wiki_url" yaml:"wiki_url"`

	// SourceName is the dcterms:source literal attached to every subject.
	SourceName string `json:"source_name" yaml:"source_name"`

	// Collision selects the title collision policy.
	Collision CollisionPolicy `json:"collision" yaml:"collision"`
}

// HarvestConfig holds settings for the harvest stage.
type HarvestConfig struct {
	// PagesPerTemplate caps the pages processed per template (0 = all).
	PagesPerTemplate int `json:"pages_per_template" yaml:"pages_per_template"`

	// OutputDir receives Turtle files and template lists (default "data").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Probe checks each template for embedding pages before harvesting it.
	Probe bool `json:"probe" yaml:"probe"`

	// MappingFile is an optional YAML file of extra property mapping rules.
	MappingFile string `json:"mapping_file,omitempty" yaml:"mapping_file,omitempty"`

	// SplitByCategory also writes one Turtle file per category.
	SplitByCategory bool `json:"split_by_category" yaml:"split_by_category"`
}

// SinkConfig holds settings for the triplestore sink.
type SinkConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the Fuseki server base URL (e.g. "http://localhost:3030").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Dataset is the Fuseki dataset name (e.g. "tolkienKG").
	Dataset string `json:"dataset" yaml:"dataset"`

	// Username and Password enable HTTP basic auth on update requests.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"-" yaml:"-"`

	// LoadDelay is the pause between consecutive file uploads (default 1s).
	LoadDelay time.Duration `json:"load_delay" yaml:"load_delay"`
}

// StoreConfig holds settings for the local SQLite triple store.
type StoreConfig struct {
	// Dir holds wikigraph.db and exports (default "store").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default search result limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServeConfig holds settings for the linked-data server.
type ServeConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Wiki    WikiConfig    `json:"wiki" yaml:"wiki"`
	Graph   GraphConfig   `json:"graph" yaml:"graph"`
	Harvest HarvestConfig `json:"harvest" yaml:"harvest"`
	Sink    SinkConfig    `json:"sink" yaml:"sink"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Serve   ServeConfig   `json:"serve" yaml:"serve"`
}

// Defaults returns the configuration used when no file or flag overrides a value.
func Defaults() PipelineConfig {
	return PipelineConfig{
		Wiki: WikiConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgent:  "wikigraph/0.1",
				MaxRetries: 3,
				RetryDelay: 2 * time.Second,
			},
			APIURL:          "https://tolkiengateway.net/w/api.php",
			RequestDelay:    500 * time.Millisecond,
			PageDelay:       200 * time.Millisecond,
			CacheSize:       512,
			InfoboxCategory: "Infobox templates",
		},
		Graph: GraphConfig{
			ResourceBase: "http://tolkiengateway.net/resource/",
			OntologyBase: "http://tolkiengateway.net/ontology/",
			PageBase:     "http://tolkiengateway.net/page/",
			WikiURL:      "https://tolkiengateway.net/wiki/",
			SourceName:   "Tolkien Gateway",
			Collision:    CollisionSuffix,
		},
		Harvest: HarvestConfig{
			PagesPerTemplate: 10,
			OutputDir:        "data",
			Probe:            true,
		},
		Sink: SinkConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    60 * time.Second,
				UserAgent:  "wikigraph/0.1",
				MaxRetries: 3,
				RetryDelay: 2 * time.Second,
			},
			Endpoint:  "http://localhost:3030",
			Dataset:   "tolkienKG",
			LoadDelay: time.Second,
		},
		Store: StoreConfig{
			Dir:        "store",
			MaxResults: 20,
		},
		Serve: ServeConfig{
			Addr: ":5000",
		},
	}
}

// Validate reports the first configuration value that cannot work.
func (c PipelineConfig) Validate() error {
	if _, err := url.ParseRequestURI(c.Wiki.APIURL); err != nil {
		return fmt.Errorf("wiki.api_url %q: %w", c.Wiki.APIURL, err)
	}
	if c.Wiki.UserAgent == "" {
		return fmt.Errorf("wiki.user_agent must not be empty")
	}
	if c.Wiki.CacheSize < 0 {
		return fmt.Errorf("wiki.cache_size must not be negative")
	}
	switch c.Graph.Collision {
	case CollisionSuffix, CollisionReject, CollisionMerge:
	default:
		return fmt.Errorf("graph.collision %q: use suffix, reject, or merge", c.Graph.Collision)
	}
	for name, base := range map[string]string{
		"graph.resource_base": c.Graph.ResourceBase,
		"graph.ontology_base": c.Graph.OntologyBase,
		"graph.page_base":     c.Graph.PageBase,
	} {
		if _, err := url.ParseRequestURI(base); err != nil {
			return fmt.Errorf("%s %q: %w", name, base, err)
		}
	}
	if c.Harvest.PagesPerTemplate < 0 {
		return fmt.Errorf("harvest.pages_per_template must not be negative")
	}
	return nil
}
