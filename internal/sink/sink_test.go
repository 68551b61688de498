// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/pkg/types"
)

func newFuseki(t *testing.T, handler http.HandlerFunc) *Fuseki {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f, err := NewFuseki(types.SinkConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    5 * time.Second,
			UserAgent:  "wikigraph-test",
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
		},
		Endpoint: srv.URL + "/",
		Dataset:  "tolkienKG",
		Username: "admin",
		Password: "secret",
	}, metrics.New())
	require.NoError(t, err)
	return f
}

func TestUpload(t *testing.T) {
	var got string
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tolkienKG/data", r.URL.Path)
		assert.Equal(t, "text/turtle", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusCreated)
	})

	err := f.Upload(context.Background(), strings.NewReader("<http://a> <http://b> <http://c> ."), graph.Turtle)
	require.NoError(t, err)
	assert.Equal(t, "<http://a> <http://b> <http://c> .", got)
}

func TestUpload_NTriplesContentType(t *testing.T) {
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/n-triples", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, f.Upload(context.Background(), strings.NewReader(""), graph.NTriples))
}

func TestUpload_Rejected(t *testing.T) {
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Parse error: bad turtle", http.StatusBadRequest)
	})

	err := f.Upload(context.Background(), strings.NewReader("garbage"), graph.Turtle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "bad turtle")
}

func TestUpload_RetriesTransient(t *testing.T) {
	var calls int32
	var bodies []string
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, f.Upload(context.Background(), strings.NewReader("payload"), graph.Turtle))
	assert.Equal(t, []string{"payload", "payload"}, bodies)
}

func TestUploadGraphAndFile(t *testing.T) {
	var bodies []string
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		w.WriteHeader(http.StatusOK)
	})

	g := graph.New(nil)
	g.Add(graph.T("http://tolkiengateway.net/resource/Elrond", "http://schema.org/name", graph.Literal("Elrond")))
	require.NoError(t, f.UploadGraph(context.Background(), g))
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "Elrond")

	path := filepath.Join(t.TempDir(), "one.nt")
	require.NoError(t, os.WriteFile(path, []byte("<http://a> <http://b> \"c\" .\n"), 0o644))
	require.NoError(t, f.UploadFile(context.Background(), path))
	assert.Len(t, bodies, 2)

	assert.Error(t, f.UploadFile(context.Background(), filepath.Join(t.TempDir(), "x.json")))
}

func TestClear(t *testing.T) {
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tolkienKG/update", r.URL.Path)
		assert.Equal(t, "DELETE WHERE { ?s ?p ?o }", r.FormValue("update"))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, f.Clear(context.Background()))
}

const countResults = `{"head":{"vars":["triples"]},"results":{"bindings":[
	{"triples":{"type":"literal","datatype":"http://www.w3.org/2001/XMLSchema#integer","value":"42"}}]}}`

func sparqlHandler(t *testing.T, results, turtle string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tolkienKG/sparql", r.URL.Path)
		q := r.FormValue("query")
		if strings.HasPrefix(strings.TrimSpace(q), "CONSTRUCT") {
			w.Header().Set("Content-Type", "text/turtle")
			fmt.Fprint(w, turtle)
			return
		}
		w.Header().Set("Content-Type", "application/sparql-results+json")
		fmt.Fprint(w, results)
	}
}

func TestCount(t *testing.T) {
	f := newFuseki(t, sparqlHandler(t, countResults, ""))
	n, err := f.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestSelect(t *testing.T) {
	f := newFuseki(t, sparqlHandler(t, `{"head":{"vars":["s","name"]},"results":{"bindings":[
		{"s":{"type":"uri","value":"http://tolkiengateway.net/resource/Elrond"},
		 "name":{"type":"literal","xml:lang":"en","value":"Elrond"}}]}}`, ""))

	rows, err := f.Select(context.Background(), "SELECT ?s ?name WHERE { ?s ?p ?name }")
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "name"}, rows.Vars)
	require.Len(t, rows.Bindings, 1)
	assert.Equal(t, "Elrond", rows.Bindings[0]["name"])
	assert.Equal(t, "http://tolkiengateway.net/resource/Elrond", rows.Bindings[0]["s"])
}

func TestParseResults(t *testing.T) {
	rows, err := parseResults(strings.NewReader(`{"head":{"vars":["s","o"]},"results":{"bindings":[
		{"s":{"type":"uri","value":"http://tolkiengateway.net/resource/Elrond"}},
		{"s":{"type":"bnode","value":"b0"},"o":{"type":"literal","datatype":"http://www.w3.org/2001/XMLSchema#integer","value":"3"}}]}}`))
	require.NoError(t, err)
	require.Len(t, rows.Bindings, 2)
	_, bound := rows.Bindings[0]["o"]
	assert.False(t, bound, "unbound variables are left out")
	assert.Equal(t, "3", rows.Bindings[1]["o"])

	rows, err = parseResults(strings.NewReader(`{"head":{"vars":["n"]},"results":{"bindings":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, rows.Bindings)

	for _, bad := range []string{
		`not json`,
		`{"results":{"bindings":[]}}`,
		`{"head":{"vars":["s"]}}`,
		`{"head":{"vars":["s"]},"results":{"bindings":[{"s":"plain"}]}}`,
	} {
		_, err := parseResults(strings.NewReader(bad))
		assert.Error(t, err, bad)
	}
}

func TestSelect_ContextCancelled(t *testing.T) {
	f := newFuseki(t, sparqlHandler(t, countResults, ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Select(ctx, countQuery)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport(t *testing.T) {
	f := newFuseki(t, sparqlHandler(t, "", `<http://tolkiengateway.net/resource/Elrond> <http://schema.org/name> "Elrond" .
<http://tolkiengateway.net/resource/Elrond> <http://schema.org/spouse> <http://tolkiengateway.net/resource/Celebrian> .
`))

	var buf bytes.Buffer
	n, err := f.Export(context.Background(), &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	back, err := graph.Decode(&buf, graph.Turtle, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Len())
}

func requireAuth(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func TestQueriesSendBasicAuth(t *testing.T) {
	f := newFuseki(t, requireAuth(t, sparqlHandler(t, countResults,
		`<http://tolkiengateway.net/resource/Elrond> <http://schema.org/name> "Elrond" .
`)))

	n, err := f.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	g, err := f.Describe(context.Background(), "http://tolkiengateway.net/resource/Elrond", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())

	var buf bytes.Buffer
	_, err = f.Export(context.Background(), &buf, nil)
	require.NoError(t, err)
}

func TestQueriesUnauthorized(t *testing.T) {
	f := newFuseki(t, requireAuth(t, sparqlHandler(t, countResults, "")))
	f.cfg.Username = ""

	_, err := f.Select(context.Background(), countQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestWaitReady(t *testing.T) {
	var calls int32
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	var buf bytes.Buffer
	require.NoError(t, f.WaitReady(context.Background(), 5, &buf))
	assert.Contains(t, buf.String(), "attempt 2/5")
	assert.Contains(t, buf.String(), "Fuseki is ready")
}

func TestWaitReady_GivesUp(t *testing.T) {
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := f.WaitReady(context.Background(), 2, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready after 2 attempts")
}

func TestNewFuseki_RequiresDataset(t *testing.T) {
	_, err := NewFuseki(types.SinkConfig{Endpoint: "http://localhost:3030"}, nil)
	assert.Error(t, err)
}

func TestQueries(t *testing.T) {
	q := NewQueries()

	s, err := q.Prepare("family_relationships", QueryParams{Limit: 5})
	require.NoError(t, err)
	assert.Contains(t, s, "schema:children")
	assert.Contains(t, s, "LIMIT 5")

	s, err = q.Prepare("most_described_characters", QueryParams{})
	require.NoError(t, err)
	assert.Contains(t, s, "LIMIT 20")

	s, err = q.Prepare("describe_subject", QueryParams{Subject: "http://tolkiengateway.net/resource/Elrond"})
	require.NoError(t, err)
	assert.Contains(t, s, "<http://tolkiengateway.net/resource/Elrond> ?p ?o")

	_, err = q.Prepare("describe_subject", QueryParams{Subject: "http://x> . ?s ?p <http://y"})
	assert.Error(t, err)

	_, err = q.Prepare("nope", QueryParams{})
	assert.Error(t, err)

	assert.Equal(t, []string{
		"family_relationships",
		"most_described_characters",
		"multilingual_entities",
		"transitive_connections",
		"type_inheritance",
	}, q.ImplicitNames())
	assert.Len(t, q.Implicit(), 5)
}

func TestLoadBank(t *testing.T) {
	bank := loadBank(bankSource)
	assert.Len(t, bank, 7)

	bank = loadBank(`
# header comment
# tag: one
SELECT ?s WHERE { ?s ?p ?o }
# a note inside the query
LIMIT {{.Limit}}
# tag: two
ASK { <{{.Subject}}> ?p ?o }
`)
	require.Len(t, bank, 2)
	q := &Queries{bank: bank}
	s, err := q.Prepare("one", QueryParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "SELECT ?s WHERE { ?s ?p ?o }\nLIMIT 2", s)
	s, err = q.Prepare("two", QueryParams{Subject: "http://x/a"})
	require.NoError(t, err)
	assert.Equal(t, "ASK { <http://x/a> ?p ?o }", s)
}

func TestRunImplicit(t *testing.T) {
	f := newFuseki(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.FormValue("query"), "LIMIT 3")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		fmt.Fprint(w, `{"head":{"vars":["character","name","propertyCount"]},"results":{"bindings":[
			{"character":{"type":"uri","value":"http://tolkiengateway.net/resource/Elrond"},
			 "name":{"type":"literal","value":"Elrond"},
			 "propertyCount":{"type":"literal","value":"14"}}]}}`)
	})

	q := NewQueries()
	rows, err := q.RunImplicit(context.Background(), f, "most_described_characters", 3)
	require.NoError(t, err)
	require.Len(t, rows.Bindings, 1)
	assert.Equal(t, "14", rows.Bindings[0]["propertyCount"])

	_, err = q.RunImplicit(context.Background(), f, "describe_subject", 3)
	assert.Error(t, err)
}

func TestResolveFiles(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a.ttl", "sub/b.ttl", "c.nt", "notes.txt"} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	files, err := ResolveFiles([]string{
		filepath.Join(dir, "c.nt"),
		filepath.Join(dir, "**", "*.ttl"),
		filepath.Join(dir, "c.nt"),
		filepath.Join(dir, "none", "*.ttl"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "c.nt"),
		filepath.Join(dir, "a.ttl"),
		filepath.Join(dir, "sub", "b.ttl"),
	}, files)

	_, err = ResolveFiles([]string{filepath.Join(dir, "missing.ttl")})
	assert.Error(t, err)
}

type fakeUploader struct {
	fail map[string]bool
	seen []string
}

func (f *fakeUploader) UploadFile(ctx context.Context, path string) error {
	f.seen = append(f.seen, path)
	if f.fail[path] {
		return errors.New("HTTP 400")
	}
	return nil
}

func TestLoader_ContinuesAfterFailure(t *testing.T) {
	up := &fakeUploader{fail: map[string]bool{"b.ttl": true}}
	l := &Loader{Sink: up}

	var buf bytes.Buffer
	res, err := l.Load(context.Background(), []string{"a.ttl", "b.ttl", "c.ttl"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ttl", "b.ttl", "c.ttl"}, up.seen)
	assert.Equal(t, []string{"a.ttl", "c.ttl"}, res.Loaded)
	assert.True(t, res.HasFailures())
	assert.Equal(t, 3, res.Total())
	assert.Contains(t, buf.String(), "failed:  b.ttl")
	assert.Contains(t, buf.String(), "2 loaded, 1 failed (total: 3)")
}

func TestLoader_StopsOnCancel(t *testing.T) {
	up := &fakeUploader{}
	l := &Loader{Sink: up}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := l.Load(ctx, []string{"a.ttl", "b.ttl"}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a.ttl"}, res.Loaded)
}
