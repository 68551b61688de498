// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest drives the scrape pipeline: it locates templates, fetches
// the pages that use them, extracts infobox parameters, and accumulates the
// resulting triples in a graph.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/httputil"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/internal/wiki"
	"github.com/pdiddy/wikigraph/internal/wikitext"
)

// Wiki is the part of the MediaWiki client the harvester needs.
type Wiki interface {
	InfoboxTemplates(ctx context.Context, w io.Writer) ([]string, error)
	CategoryMembers(ctx context.Context, category string, limit int) ([]string, error)
	EmbeddedIn(ctx context.Context, template string, limit int) ([]string, error)
	HasPages(ctx context.Context, template string) (bool, error)
	AllPages(ctx context.Context, limit int) ([]string, error)
	Wikitext(ctx context.Context, title string) (string, error)
	ExternalLinks(ctx context.Context, title string) ([]string, error)
}

// Outcome is the result of harvesting one page.
type Outcome string

const (
	// Extracted means the infobox yielded at least one parameter.
	Extracted Outcome = "extracted"
	// NotFound means the page does not invoke the template.
	NotFound Outcome = "not-found"
	// Empty means the template was found but produced no parameters.
	Empty Outcome = "empty"
	// Missing means the wiki reported the page as missing.
	Missing Outcome = "missing"
	// Failed means fetching or building the page failed.
	Failed Outcome = "failed"
)

// Options selects what Run harvests.
type Options struct {
	// Templates to harvest. Empty means discover them from the infobox
	// category.
	Templates []string

	// PagesPerTemplate caps pages per template (0 = all).
	PagesPerTemplate int

	// Probe skips templates no page transcludes.
	Probe bool
}

// Summary holds the outcome of a harvest run.
type Summary struct {
	Templates        []string
	SkippedTemplates []string
	Extracted        int
	NotFound         int
	Empty            int
	Missing          int
	Failed           int
	Triples          int
	ByCategory       map[string]int
	Collisions       []graph.Collision
}

// Total returns the number of pages processed.
func (s Summary) Total() int {
	return s.Extracted + s.NotFound + s.Empty + s.Missing + s.Failed
}

// HasFailures reports whether any page failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Categories returns the categories with at least one extracted page,
// sorted by name.
func (s Summary) Categories() []string {
	var out []string
	for c, n := range s.ByCategory {
		if n > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Summary) count(o Outcome) {
	switch o {
	case Extracted:
		s.Extracted++
	case NotFound:
		s.NotFound++
	case Empty:
		s.Empty++
	case Missing:
		s.Missing++
	default:
		s.Failed++
	}
}

// Harvester accumulates harvested pages into its builder's graph.
type Harvester struct {
	Wiki    Wiki
	Builder *graph.Builder
	Metrics *metrics.Metrics

	// PageDelay is the pause between consecutive page fetches.
	PageDelay time.Duration
}

// New returns a Harvester.
func New(w Wiki, b *graph.Builder, m *metrics.Metrics, pageDelay time.Duration) *Harvester {
	return &Harvester{Wiki: w, Builder: b, Metrics: m, PageDelay: pageDelay}
}

// Run harvests every template in opts: for each one it lists the pages that
// use it, fetches their wikitext, extracts the infobox and adds the triples.
// Per-page failures are reported to w and counted; only listing the
// templates and context cancellation end the run early.
func (h *Harvester) Run(ctx context.Context, opts Options, w io.Writer) (Summary, error) {
	sum := Summary{ByCategory: make(map[string]int)}

	templates := opts.Templates
	if len(templates) == 0 {
		var err error
		if templates, err = h.Wiki.InfoboxTemplates(ctx, w); err != nil {
			return sum, err
		}
	}

	if opts.Probe {
		var kept []string
		for _, t := range templates {
			ok, err := h.Wiki.HasPages(ctx, t)
			if err != nil {
				if ctx.Err() != nil {
					return h.finish(sum), ctx.Err()
				}
				fmt.Fprintf(w, "  warning: probing %s: %v\n", t, err)
			}
			if !ok {
				sum.SkippedTemplates = append(sum.SkippedTemplates, t)
				continue
			}
			kept = append(kept, t)
		}
		fmt.Fprintf(w, "%d templates with pages, %d skipped\n", len(kept), len(sum.SkippedTemplates))
		templates = kept
	}

	first := true
	for i, tmpl := range templates {
		category := schema.Categorize(tmpl)
		fmt.Fprintf(w, "\n[%d/%d] %s (%s)\n", i+1, len(templates), tmpl, category)

		pages, err := h.Wiki.EmbeddedIn(ctx, tmpl, opts.PagesPerTemplate)
		if err != nil {
			if ctx.Err() != nil {
				return h.finish(sum), ctx.Err()
			}
			fmt.Fprintf(w, "  failed:  listing pages (%v)\n", err)
			continue
		}
		sum.Templates = append(sum.Templates, tmpl)
		if len(pages) == 0 {
			fmt.Fprintf(w, "  no pages\n")
			continue
		}

		extracted := 0
		for _, title := range pages {
			if !first {
				if err := httputil.Sleep(ctx, h.PageDelay); err != nil {
					return h.finish(sum), err
				}
			}
			first = false

			o := h.harvestPage(ctx, title, tmpl, false, &sum, w)
			if o == Extracted {
				extracted++
			}
		}
		fmt.Fprintf(w, "  %d/%d extracted\n", extracted, len(pages))
	}
	return h.finish(sum), nil
}

// RunCategory harvests the members of a category with one template. Pages
// without the infobox still get a subject with its name and category class.
func (h *Harvester) RunCategory(ctx context.Context, category, template string, limit int, w io.Writer) (Summary, error) {
	sum := Summary{ByCategory: make(map[string]int), Templates: []string{template}}

	titles, err := h.Wiki.CategoryMembers(ctx, category, limit)
	if err != nil {
		return sum, err
	}
	fmt.Fprintf(w, "%d pages in %s\n", len(titles), category)

	for i, title := range titles {
		if i > 0 {
			if err := httputil.Sleep(ctx, h.PageDelay); err != nil {
				return h.finish(sum), err
			}
		}
		h.harvestPage(ctx, title, template, true, &sum, w)
	}
	return h.finish(sum), nil
}

// RunPages adds a page document and its entity for every wiki page, linked
// with schema:about and schema:subjectOf. No wikitext is fetched.
func (h *Harvester) RunPages(ctx context.Context, limit int, w io.Writer) (Summary, error) {
	sum := Summary{ByCategory: make(map[string]int)}

	titles, err := h.Wiki.AllPages(ctx, limit)
	if err != nil {
		return sum, err
	}
	fmt.Fprintf(w, "%d pages listed\n", len(titles))

	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return h.finish(sum), err
		}
		n, err := h.Builder.AddPageEntity(title)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", title, err)
			sum.count(Failed)
			continue
		}
		sum.count(Extracted)
		sum.Triples += n
		h.Metrics.TriplesAdded(n)
		if (i+1)%500 == 0 {
			fmt.Fprintf(w, "  %d pages...\n", i+1)
		}
	}
	return h.finish(sum), nil
}

// harvestPage fetches and extracts one page and records its outcome. With
// keepBare, pages without a usable infobox are still added with no
// parameters.
func (h *Harvester) harvestPage(ctx context.Context, title, template string, keepBare bool, sum *Summary, w io.Writer) Outcome {
	category := schema.Categorize(template)
	o, params, added := h.page(ctx, title, template, keepBare, w)

	sum.count(o)
	sum.Triples += added
	if o == Extracted {
		sum.ByCategory[category]++
	}
	h.Metrics.Extraction(string(o), category)
	h.Metrics.TriplesAdded(added)

	switch o {
	case Extracted:
		fmt.Fprintf(w, "  extracted: %s (%d params, %d triples)\n", title, params, added)
	case Failed:
	default:
		fmt.Fprintf(w, "  %s: %s\n", o, title)
	}
	return o
}

func (h *Harvester) page(ctx context.Context, title, template string, keepBare bool, w io.Writer) (Outcome, int, int) {
	start := time.Now()
	text, err := h.Wiki.Wikitext(ctx, title)
	h.Metrics.ObserveRequest("wiki", start)
	switch {
	case errors.Is(err, wiki.ErrPageMissing):
		h.Metrics.PageFetched("missing")
		return Missing, 0, 0
	case err != nil:
		h.Metrics.PageFetched("error")
		fmt.Fprintf(w, "  failed:  %s (%v)\n", title, err)
		return Failed, 0, 0
	}
	h.Metrics.PageFetched("ok")

	bag, err := wikitext.Extract(text, template)
	outcome := Extracted
	switch {
	case errors.Is(err, wikitext.ErrTemplateNotFound):
		outcome = NotFound
	case bag.Len() == 0:
		outcome = Empty
	}
	if outcome != Extracted && !keepBare {
		return outcome, 0, 0
	}

	res, err := h.Builder.AddPage(title, template, bag)
	if err != nil {
		fmt.Fprintf(w, "  failed:  %s (%v)\n", title, err)
		return Failed, 0, 0
	}
	return outcome, res.Params, res.Added
}

func (h *Harvester) finish(sum Summary) Summary {
	sum.Collisions = h.Builder.Minter().Collisions()
	return sum
}

// PrintSummary writes the run totals and per-category counts.
func PrintSummary(w io.Writer, sum Summary, g *graph.Graph) {
	fmt.Fprintf(w, "\nHarvest summary: %d extracted, %d not found, %d empty, %d missing, %d failed (total: %d)\n",
		sum.Extracted, sum.NotFound, sum.Empty, sum.Missing, sum.Failed, sum.Total())
	if len(sum.SkippedTemplates) > 0 {
		fmt.Fprintf(w, "Templates skipped without pages: %d\n", len(sum.SkippedTemplates))
	}
	fmt.Fprintf(w, "Triples: %d new, %d in graph\n", sum.Triples, g.Len())
	for _, c := range sum.Categories() {
		fmt.Fprintf(w, "  %-14s %d\n", c, sum.ByCategory[c])
	}
	if n := len(sum.Collisions); n > 0 {
		fmt.Fprintf(w, "Title collisions resolved: %d\n", n)
	}
}
