// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps harvested triples in a local SQLite database with a
// full-text index over literal values, so graphs from several runs can be
// searched and rebuilt without a triplestore.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/pkg/types"
)

const (
	dbFile = "wikigraph.db"

	kindIRI     = "iri"
	kindLiteral = "literal"
)

// Store manages the triple database.
type Store struct {
	db           *sql.DB
	dir          string
	ontologyBase string
	maxResults   int
}

// NewStore opens or creates cfg.Dir/wikigraph.db and creates the schema if
// it does not exist. ontologyBase locates the usesTemplate property when
// pages are recorded.
func NewStore(cfg types.StoreConfig, ontologyBase string) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	if ontologyBase == "" {
		ontologyBase = schema.OntologyNS
	}

	s := &Store{
		db:           db,
		dir:          cfg.Dir,
		ontologyBase: ontologyBase,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started TEXT NOT NULL,
			source TEXT,
			triples INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS triples (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			s TEXT NOT NULL,
			p TEXT NOT NULL,
			o_kind TEXT NOT NULL,
			o_value TEXT NOT NULL,
			o_datatype TEXT NOT NULL DEFAULT '',
			o_lang TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL REFERENCES runs(id),
			UNIQUE (s, p, o_kind, o_value, o_datatype, o_lang)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_s ON triples(s)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_p ON triples(p)`,
		`CREATE TABLE IF NOT EXISTS pages (
			subject TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			template TEXT,
			updated TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS collisions (
			title TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			base TEXT NOT NULL,
			name TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 over literal objects, kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='triples_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE triples_fts USING fts5(o_value, content=triples, content_rowid=rowid)`,
			`CREATE TRIGGER triples_ai AFTER INSERT ON triples WHEN new.o_kind = 'literal' BEGIN
				INSERT INTO triples_fts(rowid, o_value) VALUES (new.rowid, new.o_value);
			END`,
			`CREATE TRIGGER triples_ad AFTER DELETE ON triples WHEN old.o_kind = 'literal' BEGIN
				INSERT INTO triples_fts(triples_fts, rowid, o_value) VALUES('delete', old.rowid, old.o_value);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	RunID      string
	Added      int
	Existing   int
	Pages      int
	Collisions int
}

// Total returns the number of triples offered.
func (s IngestSummary) Total() int {
	return s.Added + s.Existing
}

// Ingest stores every triple of g under a new run. Triples already in the
// store are left with their original run. Subjects carrying a template are
// recorded as pages, and collisions are logged. On success it writes
// export.yaml.
func (s *Store) Ingest(ctx context.Context, g *graph.Graph, source string, collisions []graph.Collision, w io.Writer) (IngestSummary, error) {
	sum := IngestSummary{RunID: uuid.NewString()}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, source) VALUES (?, ?, ?)`, sum.RunID, now, source,
	); err != nil {
		return sum, fmt.Errorf("recording run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO triples (s, p, o_kind, o_value, o_datatype, o_lang, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return sum, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range g.Triples() {
		res, err := stmt.ExecContext(ctx,
			t.S.Value, t.P.Value, kindName(t.O.Kind), t.O.Value, t.O.Datatype, t.O.Lang, sum.RunID)
		if err != nil {
			return sum, fmt.Errorf("inserting %s: %w", t, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			sum.Added++
		} else {
			sum.Existing++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET triples = ? WHERE id = ?`, sum.Added, sum.RunID,
	); err != nil {
		return sum, fmt.Errorf("updating run: %w", err)
	}

	templateProp := s.ontologyBase + "usesTemplate"
	for _, subj := range g.Subjects() {
		tmpl := firstValue(g.Objects(subj, templateProp))
		title := firstValue(g.Objects(subj, schema.Name))
		if tmpl == "" || title == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pages (subject, title, template, updated) VALUES (?, ?, ?, ?)
			 ON CONFLICT(subject) DO UPDATE SET
				title=excluded.title, template=excluded.template, updated=excluded.updated`,
			subj, title, tmpl, now,
		); err != nil {
			return sum, fmt.Errorf("recording page %s: %w", subj, err)
		}
		sum.Pages++
	}

	for _, c := range collisions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collisions (title, owner, base, name, run_id) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(title) DO UPDATE SET
				owner=excluded.owner, base=excluded.base, name=excluded.name, run_id=excluded.run_id`,
			c.Title, c.Owner, c.Base, c.Name, sum.RunID,
		); err != nil {
			return sum, fmt.Errorf("logging collision %q: %w", c.Title, err)
		}
		sum.Collisions++
	}

	if err := tx.Commit(); err != nil {
		return sum, fmt.Errorf("committing run: %w", err)
	}

	fmt.Fprintf(w, "run %s: %d added, %d already stored, %d pages, %d collisions\n",
		sum.RunID, sum.Added, sum.Existing, sum.Pages, sum.Collisions)

	if sum.Added > 0 {
		if _, err := s.ExportYAML(ctx); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return sum, nil
}

func kindName(k graph.Kind) string {
	if k == graph.KindIRI {
		return kindIRI
	}
	return kindLiteral
}

func kindOf(name string) graph.Kind {
	if name == kindIRI {
		return graph.KindIRI
	}
	return graph.KindLiteral
}

func firstValue(ts []graph.Term) string {
	for _, t := range ts {
		if t.Value != "" {
			return t.Value
		}
	}
	return ""
}
