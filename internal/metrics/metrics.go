// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for harvests, uploads and
// the linked-data server. Collectors live on a private registry so tests and
// multiple pipelines do not collide on the global one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wikigraph"

// Metrics is a set of collectors registered on one registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	pagesFetched *prometheus.CounterVec
	extractions  *prometheus.CounterVec
	triples      prometheus.Counter
	uploads      *prometheus.CounterVec
	requests     *prometheus.HistogramVec
}

// New returns Metrics registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Wiki pages fetched, by result.",
		}, []string{"result"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Infobox extraction outcomes, by outcome and category.",
		}, []string{"outcome", "category"}),
		triples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_produced_total",
			Help:      "New triples added to harvested graphs.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Files uploaded to the triplestore, by result.",
		}, []string{"result"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound and served requests, by target.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
	}
	m.registry.MustRegister(m.pagesFetched, m.extractions, m.triples, m.uploads, m.requests)
	return m
}

// PageFetched counts one wikitext fetch. result is "ok", "missing" or "error".
func (m *Metrics) PageFetched(result string) {
	if m == nil {
		return
	}
	m.pagesFetched.WithLabelValues(result).Inc()
}

// Extraction counts one per-page extraction outcome.
func (m *Metrics) Extraction(outcome, category string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome, category).Inc()
}

// TriplesAdded adds n to the produced triple count.
func (m *Metrics) TriplesAdded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.triples.Add(float64(n))
}

// Upload counts one file upload. result is "ok" or "error".
func (m *Metrics) Upload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of a request to target since start.
func (m *Metrics) ObserveRequest(target string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(target).Observe(time.Since(start).Seconds())
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
