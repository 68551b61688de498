// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/internal/wikitext"
)

const (
	timestampLayout = "20060102_150405"
	categoriesDir   = "categories"
)

// Output lists the files written for one run.
type Output struct {
	Graph      string
	Templates  string
	Categories []string
}

// WriteOutput saves g as <dir>/<name>_<timestamp>.ttl and, when templates
// is non-empty, a templates_<timestamp>.txt list beside it. With split, each
// category also gets <dir>/categories/<category>_<timestamp>.ttl, using the
// category literal under ontologyNS.
func WriteOutput(dir, name string, g *graph.Graph, templates []string, split bool, ontologyNS string, now time.Time) (Output, error) {
	var out Output
	stamp := now.Format(timestampLayout)

	out.Graph = filepath.Join(dir, fmt.Sprintf("%s_%s.ttl", name, stamp))
	if err := graph.WriteFile(out.Graph, g); err != nil {
		return out, err
	}

	if len(templates) > 0 {
		out.Templates = filepath.Join(dir, fmt.Sprintf("templates_%s.txt", stamp))
		if err := writeTemplateList(out.Templates, templates); err != nil {
			return out, err
		}
	}

	if split {
		parts := g.SplitBy(ontologyNS+"category", schema.Other)
		keys := make([]string, 0, len(parts))
		for k := range parts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p := filepath.Join(dir, categoriesDir, fmt.Sprintf("%s_%s.ttl", strings.ToLower(wikitext.SafeName(k)), stamp))
			if err := graph.WriteFile(p, parts[k]); err != nil {
				return out, err
			}
			out.Categories = append(out.Categories, p)
		}
	}
	return out, nil
}

func writeTemplateList(path string, templates []string) error {
	var b strings.Builder
	for _, t := range templates {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nTotal: %d templates\n", len(templates))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing template list %s: %w", path, err)
	}
	return nil
}
