// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/httputil"
	"github.com/pdiddy/wikigraph/internal/wiki"
)

// AlignSummary holds the outcome of an alignment run.
type AlignSummary struct {
	Aligned    int
	NoLink     int
	Missing    int
	Failed     int
	Triples    int
	Collisions []graph.Collision
}

// Total returns the number of pages processed.
func (s AlignSummary) Total() int {
	return s.Aligned + s.NoLink + s.Missing + s.Failed
}

// HasFailures reports whether any page failed.
func (s AlignSummary) HasFailures() bool {
	return s.Failed > 0
}

// Align reads the external links of each title and adds owl:sameAs links
// to DBpedia and YAGO for the first Wikipedia article found. Pages are
// fetched with the same page delay as a harvest.
func (h *Harvester) Align(ctx context.Context, titles []string, w io.Writer) (AlignSummary, error) {
	var sum AlignSummary
	finish := func() AlignSummary {
		sum.Collisions = h.Builder.Minter().Collisions()
		return sum
	}

	for i, title := range titles {
		if i > 0 {
			if err := httputil.Sleep(ctx, h.PageDelay); err != nil {
				return finish(), err
			}
		} else if err := ctx.Err(); err != nil {
			return finish(), err
		}

		start := time.Now()
		links, err := h.Wiki.ExternalLinks(ctx, title)
		h.Metrics.ObserveRequest("wiki", start)
		switch {
		case errors.Is(err, wiki.ErrPageMissing):
			h.Metrics.PageFetched("missing")
			sum.Missing++
			fmt.Fprintf(w, "  missing: %s\n", title)
			continue
		case err != nil:
			h.Metrics.PageFetched("error")
			sum.Failed++
			fmt.Fprintf(w, "  failed:  %s (%v)\n", title, err)
			continue
		}
		h.Metrics.PageFetched("ok")

		article, n, err := h.Builder.AddAlignment(title, links)
		if err != nil {
			sum.Failed++
			fmt.Fprintf(w, "  failed:  %s (%v)\n", title, err)
			continue
		}
		if article == "" {
			sum.NoLink++
			fmt.Fprintf(w, "  no Wikipedia link: %s (%d external links)\n", title, len(links))
			continue
		}
		sum.Aligned++
		sum.Triples += n
		h.Metrics.TriplesAdded(n)
		fmt.Fprintf(w, "  aligned: %s -> %s\n", title, article)
	}
	return finish(), nil
}

// PrintAlignSummary writes the alignment totals.
func PrintAlignSummary(w io.Writer, sum AlignSummary) {
	fmt.Fprintf(w, "\nAlignment summary: %d aligned, %d without Wikipedia link, %d missing, %d failed (total: %d)\n",
		sum.Aligned, sum.NoLink, sum.Missing, sum.Failed, sum.Total())
	fmt.Fprintf(w, "owl:sameAs triples: %d\n", sum.Triples)
}
