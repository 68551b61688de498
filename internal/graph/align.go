// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"net/url"
	"strings"

	"github.com/pdiddy/wikigraph/internal/schema"
)

// WikipediaTitle returns the article name of a Wikipedia article URL, with
// spaces as underscores. Anchors and query strings are dropped.
func WikipediaTitle(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "wikipedia.org" && !strings.HasSuffix(host, ".wikipedia.org") {
		return "", false
	}
	title, ok := strings.CutPrefix(u.Path, "/wiki/")
	if !ok {
		return "", false
	}
	title = strings.Trim(strings.ReplaceAll(title, " ", "_"), "_")
	if title == "" || strings.ContainsAny(title, "<>\"{}|\\^`") {
		return "", false
	}
	return title, true
}

// Align adds owl:sameAs links from subject to the DBpedia and YAGO resources
// named after the first Wikipedia article in links. It returns the article
// name used and the number of new triples; an empty name means no link
// pointed at Wikipedia.
func Align(g *Graph, subject string, links []string) (string, int) {
	for _, link := range links {
		title, ok := WikipediaTitle(link)
		if !ok {
			continue
		}
		return title, g.AddAll([]Triple{
			T(subject, schema.SameAs, IRI(schema.DBpediaNS+title)),
			T(subject, schema.SameAs, IRI(schema.YAGONS+title)),
		})
	}
	return "", 0
}

// AddAlignment aligns the resource for title. It mints the subject the
// same way pages are minted.
func (b *Builder) AddAlignment(title string, links []string) (string, int, error) {
	subject, err := b.Subject(title)
	if err != nil {
		return "", 0, err
	}
	article, n := Align(b.graph, subject, links)
	return article, n, nil
}
