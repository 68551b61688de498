// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink loads graphs into an Apache Jena Fuseki dataset and reads
// them back with SPARQL.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/antonholmquist/jason"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/httputil"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/pkg/types"
)

const (
	clearUpdate  = "DELETE WHERE { ?s ?p ?o }"
	exportQuery  = "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }"
	countQuery   = "SELECT (COUNT(*) AS ?triples) WHERE { ?s ?p ?o }"
	maxErrorBody = 200
)

// Rows is a SPARQL SELECT result with every binding reduced to its
// lexical value.
type Rows struct {
	Vars     []string            `json:"vars"`
	Bindings []map[string]string `json:"bindings"`
}

// Fuseki talks to one dataset on a Fuseki server. Every request carries the
// configured basic auth credentials. SELECT results are read as SPARQL JSON;
// CONSTRUCT results are read as Turtle.
type Fuseki struct {
	Client  *http.Client
	Metrics *metrics.Metrics

	cfg     types.SinkConfig
	queries *Queries
}

// NewFuseki returns a client for cfg.Dataset on cfg.Endpoint.
func NewFuseki(cfg types.SinkConfig, m *metrics.Metrics) (*Fuseki, error) {
	if cfg.Endpoint == "" || cfg.Dataset == "" {
		return nil, fmt.Errorf("sink endpoint and dataset are required")
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Fuseki{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Metrics: m,
		cfg:     cfg,
		queries: NewQueries(),
	}, nil
}

// DatasetURL returns the dataset base URL.
func (f *Fuseki) DatasetURL() string {
	return f.cfg.Endpoint + "/" + f.cfg.Dataset
}

// Ping checks that the server answers with 200.
func (f *Fuseki) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.Endpoint+"/", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("Fuseki ping: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Fuseki ping returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// WaitReady pings up to attempts times, pausing RetryDelay between tries.
func (f *Fuseki) WaitReady(ctx context.Context, attempts int, w io.Writer) error {
	if attempts <= 0 {
		attempts = 10
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = f.Ping(ctx); err == nil {
			fmt.Fprintf(w, "Fuseki is ready at %s\n", f.cfg.Endpoint)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i < attempts {
			fmt.Fprintf(w, "  attempt %d/%d: waiting for Fuseki...\n", i, attempts)
			if serr := httputil.Sleep(ctx, f.retryPolicy().Delay); serr != nil {
				return serr
			}
		}
	}
	return fmt.Errorf("Fuseki not ready after %d attempts: %w", attempts, err)
}

// Upload posts RDF in format to the dataset's graph store endpoint,
// adding to the default graph.
func (f *Fuseki) Upload(ctx context.Context, r io.Reader, format graph.Format) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}
	err = f.post(ctx, f.DatasetURL()+"/data", format.ContentType(), body)
	if err != nil {
		f.Metrics.Upload("error")
		return err
	}
	f.Metrics.Upload("ok")
	return nil
}

// UploadFile uploads the RDF file at path, choosing the format from its
// extension.
func (f *Fuseki) UploadFile(ctx context.Context, path string) error {
	format, err := graph.FormatFor(path)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()
	return f.Upload(ctx, in, format)
}

// UploadGraph serializes g as Turtle and uploads it.
func (f *Fuseki) UploadGraph(ctx context.Context, g *graph.Graph) error {
	var buf bytes.Buffer
	if err := graph.Encode(&buf, g, graph.Turtle); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return f.Upload(ctx, &buf, graph.Turtle)
}

// Clear deletes every triple in the dataset's default graph.
func (f *Fuseki) Clear(ctx context.Context) error {
	return f.Update(ctx, clearUpdate)
}

// Update runs a SPARQL Update request.
func (f *Fuseki) Update(ctx context.Context, update string) error {
	form := url.Values{"update": {update}}
	return f.post(ctx, f.DatasetURL()+"/update", "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// Select runs a SELECT query.
func (f *Fuseki) Select(ctx context.Context, query string) (Rows, error) {
	body, err := f.query(ctx, query, "application/sparql-results+json")
	if err != nil {
		return Rows{}, err
	}
	defer body.Close()

	rows, err := parseResults(body)
	if err != nil {
		return Rows{}, fmt.Errorf("parsing SPARQL results: %w", err)
	}
	return rows, nil
}

// parseResults decodes an application/sparql-results+json document. Unbound
// variables are absent from their row.
func parseResults(r io.Reader) (Rows, error) {
	doc, err := jason.NewObjectFromReader(r)
	if err != nil {
		return Rows{}, err
	}
	vars, err := doc.GetStringArray("head", "vars")
	if err != nil {
		return Rows{}, fmt.Errorf("head.vars: %w", err)
	}
	bindings, err := doc.GetObjectArray("results", "bindings")
	if err != nil {
		return Rows{}, fmt.Errorf("results.bindings: %w", err)
	}
	rows := Rows{Vars: vars}
	for _, b := range bindings {
		row := make(map[string]string, len(vars))
		for k, v := range b.Map() {
			term, err := v.Object()
			if err != nil {
				return Rows{}, fmt.Errorf("binding %s: %w", k, err)
			}
			value, err := term.GetString("value")
			if err != nil {
				return Rows{}, fmt.Errorf("binding %s: %w", k, err)
			}
			row[k] = value
		}
		rows.Bindings = append(rows.Bindings, row)
	}
	return rows, nil
}

// Construct runs a CONSTRUCT query and returns the triples as a graph.
func (f *Fuseki) Construct(ctx context.Context, query string, prefixes map[string]string) (*graph.Graph, error) {
	body, err := f.query(ctx, query, "text/turtle")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	g, err := graph.Decode(body, graph.Turtle, prefixes)
	if err != nil {
		return nil, fmt.Errorf("parsing CONSTRUCT result: %w", err)
	}
	return g, nil
}

// Describe returns the triples whose subject is the given IRI.
func (f *Fuseki) Describe(ctx context.Context, subject string, prefixes map[string]string) (*graph.Graph, error) {
	query, err := f.queries.Prepare("construct_subject", QueryParams{Subject: subject})
	if err != nil {
		return nil, err
	}
	return f.Construct(ctx, query, prefixes)
}

// Count returns the number of triples in the default graph.
func (f *Fuseki) Count(ctx context.Context) (int, error) {
	rows, err := f.Select(ctx, countQuery)
	if err != nil {
		return 0, err
	}
	if len(rows.Bindings) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	n, err := strconv.Atoi(rows.Bindings[0]["triples"])
	if err != nil {
		return 0, fmt.Errorf("parsing triple count: %w", err)
	}
	return n, nil
}

// Export writes the whole default graph to w as Turtle and returns the
// number of triples written.
func (f *Fuseki) Export(ctx context.Context, w io.Writer, prefixes map[string]string) (int, error) {
	g, err := f.Construct(ctx, exportQuery, prefixes)
	if err != nil {
		return 0, err
	}
	if err := graph.Encode(w, g, graph.Turtle); err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}
	return g.Len(), nil
}

// query posts a SPARQL query to the dataset's query endpoint and returns the
// response body, which the caller closes.
func (f *Fuseki) query(ctx context.Context, query, accept string) (io.ReadCloser, error) {
	target := f.DatasetURL() + "/sparql"
	form := url.Values{"query": {query}}
	resp, err := f.send(ctx, target, "application/x-www-form-urlencoded", accept, []byte(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("SPARQL query: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("SPARQL query returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp.Body, nil
}

func (f *Fuseki) post(ctx context.Context, target, contentType string, body []byte) error {
	resp, err := f.send(ctx, target, contentType, "", body)
	if err != nil {
		return fmt.Errorf("POST %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("POST %s returned HTTP %d: %s", target, resp.StatusCode, strings.TrimSpace(string(msg)))
}

// send POSTs body with the user agent and basic auth set, retrying
// transient failures.
func (f *Fuseki) send(ctx context.Context, target, contentType, accept string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	if f.cfg.Username != "" {
		req.SetBasicAuth(f.cfg.Username, f.cfg.Password)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, f.Client, req, f.retryPolicy())
	f.Metrics.ObserveRequest("fuseki", start)
	return resp, err
}

func (f *Fuseki) retryPolicy() httputil.Policy {
	return httputil.Policy{MaxRetries: f.cfg.MaxRetries, Delay: f.cfg.RetryDelay}
}
