// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/internal/wikitext"
	"github.com/pdiddy/wikigraph/pkg/types"
)

// Ontology terms local to the wiki vocabulary.
const (
	usesTemplate    = "usesTemplate"
	categoryTerm    = "category"
	descriptionNote = "descriptionNote"
)

// placeholderValues are infobox values that carry no information.
var placeholderValues = map[string]bool{
	"unknown": true,
	"none":    true,
	"?":       true,
	"n/a":     true,
}

// singleLinkRe matches markup that is exactly one internal link.
var singleLinkRe = regexp.MustCompile(`^\[\[[^\[\]]+\]\]$`)

var refRe = regexp.MustCompile(`(?is)<ref\b[^>]*/\s*>|<ref\b[^>]*>.*?</ref\s*>|<!--.*?-->`)

// PageResult summarizes one AddPage call.
type PageResult struct {
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Params   int    `json:"params"`
	Added    int    `json:"added"`
}

// Builder turns extracted infobox parameters into triples on a Graph.
type Builder struct {
	graph  *Graph
	mapper *schema.Mapper
	minter *Minter
	cfg    types.GraphConfig
}

// NewBuilder returns a Builder writing into g.
func NewBuilder(g *Graph, mapper *schema.Mapper, minter *Minter, cfg types.GraphConfig) *Builder {
	return &Builder{graph: g, mapper: mapper, minter: minter, cfg: cfg}
}

// Graph returns the graph being built.
func (b *Builder) Graph() *Graph { return b.graph }

// Minter returns the subject minter.
func (b *Builder) Minter() *Minter { return b.minter }

// Subject returns the resource IRI for a page title, minting it if needed.
func (b *Builder) Subject(title string) (string, error) {
	name, err := b.minter.Mint(title)
	if err != nil {
		return "", err
	}
	return b.cfg.ResourceBase + name, nil
}

// AddPage adds the triples for one page whose infobox was extracted with
// template. Every subject gets rdf:type schema:Thing plus its category class,
// schema:name, schema:url, dcterms:source, the template used and, for
// disambiguated titles, the parenthesized note.
//
// Each parameter is mapped through the schema mapper. Date properties are
// always literals. A value that is a single link becomes a reference to that
// page's resource; a value with several links keeps its cleaned literal and
// gains one reference per link. Placeholder values such as "unknown" are
// skipped.
func (b *Builder) AddPage(title, template string, bag wikitext.Bag) (PageResult, error) {
	subject, err := b.Subject(title)
	if err != nil {
		return PageResult{}, fmt.Errorf("minting %q: %w", title, err)
	}

	category := schema.Categorize(template)
	res := PageResult{Subject: subject, Category: category, Params: bag.Len()}
	add := func(p string, o Term) {
		if b.graph.Add(T(subject, p, o)) {
			res.Added++
		}
	}

	add(schema.RDFType, IRI(schema.Thing))
	if class := schema.ClassFor(category); class != schema.Thing {
		add(schema.RDFType, IRI(class))
	}
	add(schema.Name, Literal(strings.TrimSpace(title)))
	add(schema.URL, TypedLiteral(b.pageURL(title), schema.XSDAnyURI))
	add(schema.Source, Literal(b.cfg.SourceName))
	add(b.cfg.OntologyBase+usesTemplate, Literal(strings.TrimPrefix(template, "Template:")))
	add(b.cfg.OntologyBase+categoryTerm, Literal(category))
	if note := wikitext.Disambiguator(title); note != "" {
		add(b.cfg.OntologyBase+descriptionNote, Literal(note))
	}

	for _, p := range bag.Params {
		if placeholderValues[strings.ToLower(p.Value)] {
			continue
		}
		m := b.mapper.Map(p.Key)
		if m.Date {
			add(m.Property, Literal(m.Value(p.Value)))
			continue
		}

		links := b.linkTargets(p.Raw, title)
		markup := strings.TrimSpace(refRe.ReplaceAllString(p.Raw, ""))
		if len(links) == 1 && singleLinkRe.MatchString(markup) {
			if ref, ok := b.ref(links[0]); ok {
				add(m.Property, ref)
				continue
			}
		}
		add(m.Property, Literal(p.Value))
		for _, l := range links {
			if ref, ok := b.ref(l); ok {
				add(m.Property, ref)
			}
		}
	}
	return res, nil
}

// ref resolves a link target to its resource. Under the reject policy a
// target that collides has no resource and the value stays literal.
func (b *Builder) ref(title string) (Term, bool) {
	name, err := b.minter.Ref(title)
	if err != nil {
		return Term{}, false
	}
	return IRI(b.cfg.ResourceBase + name), true
}

// AddPageEntity links a wiki page document to the entity it describes:
// page/X is a schema:WebPage about resource/X, and resource/X is the
// schema:subjectOf page/X. It returns the number of new triples.
func (b *Builder) AddPageEntity(title string) (int, error) {
	entity, err := b.Subject(title)
	if err != nil {
		return 0, fmt.Errorf("minting %q: %w", title, err)
	}
	page := b.cfg.PageBase + strings.TrimPrefix(entity, b.cfg.ResourceBase)
	title = strings.TrimSpace(title)
	url := TypedLiteral(b.pageURL(title), schema.XSDAnyURI)

	return b.graph.AddAll([]Triple{
		T(page, schema.RDFType, IRI(schema.WebPage)),
		T(page, schema.Name, Literal("Wiki page: "+title)),
		T(page, schema.URL, url),
		T(page, schema.DCTermsNS+"title", Literal(title)),
		T(page, schema.Source, Literal(b.cfg.SourceName)),
		T(entity, schema.RDFType, IRI(schema.Thing)),
		T(entity, schema.Name, Literal(title)),
		T(entity, schema.URL, url),
		T(page, schema.About, IRI(entity)),
		T(entity, schema.SubjectOf, IRI(page)),
	}), nil
}

// linkTargets returns the pages linked from raw, leaving out self links.
func (b *Builder) linkTargets(raw, title string) []string {
	self := titleKey(title)
	var out []string
	for _, l := range wikitext.Links(raw) {
		if titleKey(l) != self {
			out = append(out, l)
		}
	}
	return out
}

func (b *Builder) pageURL(title string) string {
	return b.cfg.WikiURL + strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}
