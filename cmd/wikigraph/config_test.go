// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikigraph/internal/secrets"
	"github.com/pdiddy/wikigraph/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	loadedSecrets = nil
	t.Cleanup(func() {
		viper.Reset()
		loadedSecrets = nil
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	resetConfig(t)
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.Defaults(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	resetConfig(t)
	viper.Set("wiki.page_delay", "1s")
	viper.Set("graph.collision", "merge")
	viper.Set("harvest.pages_per_template", 3)
	viper.Set("harvest.probe", false)
	viper.Set("sink.dataset", "middleEarth")
	viper.Set("store.dir", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Wiki.PageDelay)
	assert.Equal(t, types.CollisionMerge, cfg.Graph.Collision)
	assert.Equal(t, 3, cfg.Harvest.PagesPerTemplate)
	assert.False(t, cfg.Harvest.Probe)
	assert.Equal(t, "middleEarth", cfg.Sink.Dataset)
	assert.Equal(t, "store", cfg.Store.Dir, "empty strings keep the default")
}

func TestLoadConfigEnv(t *testing.T) {
	resetConfig(t)
	viper.SetEnvPrefix("WIKIGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	t.Setenv("WIKIGRAPH_SINK_ENDPOINT", "http://fuseki:3030")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://fuseki:3030", cfg.Sink.Endpoint)
}

func TestLoadConfigSecrets(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{
		secrets.FusekiUsername: "admin",
		secrets.FusekiPassword: "pw",
		secrets.WikiContact:    "me@example.org",
	}
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.Sink.Username)
	assert.Equal(t, "pw", cfg.Sink.Password)
	assert.Equal(t, "wikigraph/0.1 (me@example.org)", cfg.Wiki.UserAgent)
}

func TestLoadConfigInvalid(t *testing.T) {
	resetConfig(t)
	viper.Set("graph.collision", "overwrite")
	_, err := loadConfig()
	assert.ErrorContains(t, err, "graph.collision")
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "Elrond", localName("http://tolkiengateway.net/resource/Elrond"))
	assert.Equal(t, "label", localName("http://www.w3.org/2000/01/rdf-schema#label"))
	assert.Equal(t, "plain", localName("plain"))
}
