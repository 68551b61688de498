// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/wikigraph/internal/graph"
)

// Match is one literal that matched a full-text search.
type Match struct {
	Subject   string  `json:"subject" yaml:"subject"`
	Predicate string  `json:"predicate" yaml:"predicate"`
	Value     string  `json:"value" yaml:"value"`
	Lang      string  `json:"lang,omitempty" yaml:"lang,omitempty"`
	Rank      float64 `json:"rank" yaml:"rank"`
}

// Run is one recorded ingest.
type Run struct {
	ID      string `json:"id" yaml:"id"`
	Started string `json:"started" yaml:"started"`
	Source  string `json:"source" yaml:"source"`
	Triples int    `json:"triples" yaml:"triples"`
}

// Search finds literal values matching text, best match first. Each word
// of text is matched as a phrase, so punctuation needs no escaping. A zero
// limit uses the store default.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]Match, error) {
	query := ftsQuery(text)
	if query == "" {
		return nil, fmt.Errorf("empty search")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT t.s, t.p, t.o_value, t.o_lang, triples_fts.rank
		FROM triples_fts
		JOIN triples t ON t.rowid = triples_fts.rowid
		WHERE triples_fts MATCH ?
		ORDER BY triples_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Subject, &m.Predicate, &m.Value, &m.Lang, &m.Rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ftsQuery quotes each word so FTS5 operators in user text are literal.
func ftsQuery(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// Subject returns every stored triple about iri in insertion order.
func (s *Store) Subject(ctx context.Context, iri string) ([]graph.Triple, error) {
	return s.triples(ctx, `WHERE s = ?`, iri)
}

// Describe returns the stored triples about subject as a graph.
func (s *Store) Describe(ctx context.Context, subject string, prefixes map[string]string) (*graph.Graph, error) {
	ts, err := s.Subject(ctx, subject)
	if err != nil {
		return nil, err
	}
	g := graph.New(prefixes)
	g.AddAll(ts)
	return g, nil
}

// Graph rebuilds the whole stored graph with the given prefix table.
func (s *Store) Graph(ctx context.Context, prefixes map[string]string) (*graph.Graph, error) {
	ts, err := s.triples(ctx, "")
	if err != nil {
		return nil, err
	}
	g := graph.New(prefixes)
	g.AddAll(ts)
	return g, nil
}

func (s *Store) triples(ctx context.Context, where string, args ...any) ([]graph.Triple, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s, p, o_kind, o_value, o_datatype, o_lang FROM triples `+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying triples: %w", err)
	}
	defer rows.Close()

	var out []graph.Triple
	for rows.Next() {
		var subj, pred, kind string
		var o graph.Term
		if err := rows.Scan(&subj, &pred, &kind, &o.Value, &o.Datatype, &o.Lang); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		o.Kind = kindOf(kind)
		out = append(out, graph.T(subj, pred, o))
	}
	return out, rows.Err()
}

// Runs lists ingest runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started, COALESCE(source, ''), triples FROM runs ORDER BY started, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Started, &r.Source, &r.Triples); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Collisions returns the logged title collisions ordered by title.
func (s *Store) Collisions(ctx context.Context) ([]graph.Collision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, owner, base, name FROM collisions ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("querying collisions: %w", err)
	}
	defer rows.Close()

	var out []graph.Collision
	for rows.Next() {
		var c graph.Collision
		if err := rows.Scan(&c.Title, &c.Owner, &c.Base, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of stored triples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM triples`).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("counting triples: %w", err)
	}
	return n, nil
}
