// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"maps"
	"sort"

	"github.com/pdiddy/wikigraph/internal/schema"
)

// Graph is an insertion-ordered set of triples. Adding a triple that is
// already present is a no-op. A Graph is not safe for concurrent use.
type Graph struct {
	triples  []Triple
	index    map[string]int
	prefixes map[string]string
}

// New returns an empty graph using the given prefix table for output.
// A nil table selects the default namespaces.
func New(prefixes map[string]string) *Graph {
	if prefixes == nil {
		prefixes = schema.Prefixes(schema.ResourceNS, schema.OntologyNS)
	}
	return &Graph{
		index:    make(map[string]int),
		prefixes: maps.Clone(prefixes),
	}
}

// Prefixes returns the prefix to namespace table used when encoding.
func (g *Graph) Prefixes() map[string]string { return g.prefixes }

// Add inserts t and reports whether it was new.
func (g *Graph) Add(t Triple) bool {
	k := t.String()
	if _, ok := g.index[k]; ok {
		return false
	}
	g.index[k] = len(g.triples)
	g.triples = append(g.triples, t)
	return true
}

// AddAll inserts every triple and returns how many were new.
func (g *Graph) AddAll(ts []Triple) int {
	n := 0
	for _, t := range ts {
		if g.Add(t) {
			n++
		}
	}
	return n
}

// Has reports whether t is in the graph.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.index[t.String()]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns the triples in insertion order. The slice is shared;
// callers must not modify it.
func (g *Graph) Triples() []Triple { return g.triples }

// Subjects returns distinct subject IRIs in order of first appearance.
func (g *Graph) Subjects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range g.triples {
		if !seen[t.S.Value] {
			seen[t.S.Value] = true
			out = append(out, t.S.Value)
		}
	}
	return out
}

// Filter returns the triples matching the given pattern. Nil positions
// match anything.
func (g *Graph) Filter(s, p *Term, o *Term) []Triple {
	var out []Triple
	for _, t := range g.triples {
		if s != nil && t.S != *s {
			continue
		}
		if p != nil && t.P != *p {
			continue
		}
		if o != nil && t.O != *o {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Objects returns the objects of every (subject, predicate) triple.
func (g *Graph) Objects(subject, predicate string) []Term {
	s, p := IRI(subject), IRI(predicate)
	var out []Term
	for _, t := range g.Filter(&s, &p, nil) {
		out = append(out, t.O)
	}
	return out
}

// SubjectsOfType returns the subjects typed as class, in order.
func (g *Graph) SubjectsOfType(class string) []string {
	p, o := IRI(schema.RDFType), IRI(class)
	var out []string
	for _, t := range g.Filter(nil, &p, &o) {
		out = append(out, t.S.Value)
	}
	return out
}

// Merge adds every triple of other and returns how many were new. Prefixes
// missing from g are copied over.
func (g *Graph) Merge(other *Graph) int {
	for k, v := range other.prefixes {
		if _, ok := g.prefixes[k]; !ok {
			g.prefixes[k] = v
		}
	}
	return g.AddAll(other.triples)
}

// Count is a label with an occurrence count.
type Count struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// TypeCounts counts rdf:type objects, most frequent first.
func (g *Graph) TypeCounts() []Count {
	counts := make(map[string]int)
	for _, t := range g.triples {
		if t.P.Value == schema.RDFType && t.O.IsIRI() {
			counts[t.O.Value]++
		}
	}
	return sortCounts(counts)
}

// LanguageCounts counts language tags on literals, most frequent first.
func (g *Graph) LanguageCounts() []Count {
	counts := make(map[string]int)
	for _, t := range g.triples {
		if t.O.Lang != "" {
			counts[t.O.Lang]++
		}
	}
	return sortCounts(counts)
}

// SplitBy partitions the graph by the literal value each subject carries for
// predicate. Subjects without one land under fallback. Every triple of a
// subject goes to that subject's partition.
func (g *Graph) SplitBy(predicate, fallback string) map[string]*Graph {
	group := make(map[string]string)
	for _, t := range g.triples {
		if t.P.Value == predicate && !t.O.IsIRI() {
			if _, ok := group[t.S.Value]; !ok {
				group[t.S.Value] = t.O.Value
			}
		}
	}
	out := make(map[string]*Graph)
	for _, t := range g.triples {
		key, ok := group[t.S.Value]
		if !ok {
			key = fallback
		}
		part, ok := out[key]
		if !ok {
			part = New(g.prefixes)
			out[key] = part
		}
		part.Add(t)
	}
	return out
}

func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
