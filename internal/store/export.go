// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikigraph/internal/graph"
)

// Export is the summary written by ExportYAML and ExportJSON.
type Export struct {
	Triples    int               `json:"triples" yaml:"triples"`
	Subjects   int               `json:"subjects" yaml:"subjects"`
	Runs       []Run             `json:"runs" yaml:"runs"`
	Pages      []ExportPage      `json:"pages" yaml:"pages"`
	Collisions []graph.Collision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
}

// ExportPage is one recorded page with the size of its description.
type ExportPage struct {
	Subject  string `json:"subject" yaml:"subject"`
	Title    string `json:"title" yaml:"title"`
	Template string `json:"template" yaml:"template"`
	Triples  int    `json:"triples" yaml:"triples"`
	Updated  string `json:"updated" yaml:"updated"`
}

// ExportYAML writes the store summary to <dir>/export.yaml and returns the
// path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	e, err := s.export(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the store summary to <dir>/export.json and returns the
// path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	e, err := s.export(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context) (Export, error) {
	var e Export
	var err error

	if e.Triples, err = s.Count(ctx); err != nil {
		return e, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(DISTINCT s) FROM triples`).Scan(&e.Subjects); err != nil {
		return e, fmt.Errorf("counting subjects: %w", err)
	}
	if e.Runs, err = s.Runs(ctx); err != nil {
		return e, err
	}
	if e.Collisions, err = s.Collisions(ctx); err != nil {
		return e, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.subject, p.title, COALESCE(p.template, ''), p.updated,
			(SELECT count(*) FROM triples t WHERE t.s = p.subject)
		FROM pages p
		ORDER BY p.title`)
	if err != nil {
		return e, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p ExportPage
		if err := rows.Scan(&p.Subject, &p.Title, &p.Template, &p.Updated, &p.Triples); err != nil {
			return e, fmt.Errorf("scanning row: %w", err)
		}
		e.Pages = append(e.Pages, p)
	}
	return e, rows.Err()
}
