// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.PageFetched("ok")
	m.PageFetched("ok")
	m.PageFetched("missing")
	m.Extraction("extracted", "Character")
	m.TriplesAdded(12)
	m.TriplesAdded(-3)
	m.Upload("error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pagesFetched.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pagesFetched.WithLabelValues("missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("extracted", "Character")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.triples))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PageFetched("ok")
		m.Extraction("empty", "Other")
		m.TriplesAdded(1)
		m.Upload("ok")
		m.ObserveRequest("wiki", time.Now())
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.TriplesAdded(5)
	m.ObserveRequest("fuseki", time.Now())

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "wikigraph_triples_produced_total 5")
	assert.Contains(t, string(body), `wikigraph_request_duration_seconds_count{target="fuseki"} 1`)
}
