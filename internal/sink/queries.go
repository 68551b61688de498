// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// bankSource holds the named queries. Each query starts at a "# tag:" line;
// {{.Limit}} and {{.Subject}} are filled in by Prepare.
const bankSource = `
# Direct and two-step parent/child links through schema:children.
# tag: family_relationships
PREFIX schema: <http://schema.org/>
SELECT ?person1 ?person2 ?relationship WHERE {
  {
    ?person1 schema:children ?person2 .
    BIND("child of" AS ?relationship)
  }
  UNION
  {
    ?person1 schema:children ?child .
    ?child schema:children ?person2 .
    BIND("grandchild of" AS ?relationship)
  }
}
ORDER BY ?person1 ?person2
LIMIT {{.Limit}}

# People labelled in more than one language.
# tag: multilingual_entities
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX schema: <http://schema.org/>
SELECT ?entity ?name (COUNT(DISTINCT ?lang) AS ?languages)
       (GROUP_CONCAT(DISTINCT ?lang; separator=", ") AS ?langList)
WHERE {
  ?entity a schema:Person .
  ?entity schema:name ?name .
  OPTIONAL {
    ?entity rdfs:label ?label .
    BIND(LANG(?label) AS ?lang)
  }
}
GROUP BY ?entity ?name
HAVING (?languages > 1)
ORDER BY DESC(?languages)
LIMIT {{.Limit}}

# Entities reachable through a chain of schema:relatedTo but not directly.
# tag: transitive_connections
PREFIX schema: <http://schema.org/>
SELECT DISTINCT ?entity1 ?entity3 WHERE {
  ?entity1 schema:relatedTo+ ?entity3 .
  FILTER(!EXISTS { ?entity1 schema:relatedTo ?entity3 })
  FILTER(?entity1 != ?entity3)
}
ORDER BY ?entity1
LIMIT {{.Limit}}

# schema.org types together with their superclasses.
# tag: type_inheritance
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?entity ?explicitType ?superType WHERE {
  ?entity rdf:type ?explicitType .
  ?explicitType rdfs:subClassOf* ?superType .
  FILTER(?explicitType != ?superType)
  FILTER(strstarts(str(?explicitType), "http://schema.org/"))
  FILTER(strstarts(str(?superType), "http://schema.org/"))
}
ORDER BY ?entity
LIMIT {{.Limit}}

# Characters ranked by how many properties describe them.
# tag: most_described_characters
PREFIX schema: <http://schema.org/>
SELECT ?character ?name (COUNT(?p) AS ?propertyCount) WHERE {
  ?character a schema:Person .
  ?character schema:name ?name .
  ?character ?p ?o .
}
GROUP BY ?character ?name
ORDER BY DESC(?propertyCount)
LIMIT {{.Limit}}

# Every statement about one subject.
# tag: describe_subject
SELECT ?p ?o WHERE {
  <{{.Subject}}> ?p ?o .
}

# The triples of one subject as a graph.
# tag: construct_subject
CONSTRUCT { <{{.Subject}}> ?p ?o } WHERE {
  <{{.Subject}}> ?p ?o .
}
`

// implicitQueries describes the queries served as implicit facts.
var implicitQueries = map[string]string{
	"family_relationships":      "Family relationships (parent, child, grandparent)",
	"multilingual_entities":     "Entities with labels in multiple languages",
	"transitive_connections":    "Indirect connections through relatedTo",
	"type_inheritance":          "Type inheritance chains",
	"most_described_characters": "Characters with the most properties",
}

const defaultQueryLimit = 20

// QueryParams fills the placeholders of a bank query.
type QueryParams struct {
	Limit   int
	Subject string
}

// Queries is the named SPARQL query bank.
type Queries struct {
	bank map[string]*template.Template
}

// NewQueries loads the built-in query bank.
func NewQueries() *Queries {
	return &Queries{bank: loadBank(bankSource)}
}

// loadBank splits src at "# tag:" lines. Comment lines before a tag belong
// to no query. A query runs until the next tag.
func loadBank(src string) map[string]*template.Template {
	bank := make(map[string]*template.Template)
	var name string
	var body strings.Builder
	flush := func() {
		if name != "" {
			bank[name] = template.Must(template.New(name).Parse(strings.TrimSpace(body.String())))
		}
		body.Reset()
	}
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := sc.Text()
		if tag, ok := strings.CutPrefix(strings.TrimSpace(line), "# tag:"); ok {
			flush()
			name = strings.TrimSpace(tag)
			continue
		}
		if name == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return bank
}

// Prepare renders the named query. A zero limit selects 20. Subjects must be
// absolute IRIs without angle brackets or spaces.
func (q *Queries) Prepare(name string, p QueryParams) (string, error) {
	if p.Limit <= 0 {
		p.Limit = defaultQueryLimit
	}
	if strings.ContainsAny(p.Subject, "<> \"{}|\\^`") {
		return "", fmt.Errorf("invalid subject IRI %q", p.Subject)
	}
	t, ok := q.bank[name]
	if !ok {
		return "", fmt.Errorf("unknown query %q", name)
	}
	var b strings.Builder
	if err := t.Execute(&b, p); err != nil {
		return "", fmt.Errorf("preparing %s: %w", name, err)
	}
	return b.String(), nil
}

// Implicit lists the implicit-fact query names with their descriptions.
func (q *Queries) Implicit() map[string]string {
	out := make(map[string]string, len(implicitQueries))
	for k, v := range implicitQueries {
		out[k] = v
	}
	return out
}

// ImplicitNames returns the implicit-fact query names, sorted.
func (q *Queries) ImplicitNames() []string {
	names := make([]string, 0, len(implicitQueries))
	for k := range implicitQueries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Selector runs SELECT queries.
type Selector interface {
	Select(ctx context.Context, query string) (Rows, error)
}

// RunImplicit runs one implicit-fact query.
func (q *Queries) RunImplicit(ctx context.Context, s Selector, name string, limit int) (Rows, error) {
	if _, ok := implicitQueries[name]; !ok {
		return Rows{}, fmt.Errorf("unknown implicit query %q", name)
	}
	query, err := q.Prepare(name, QueryParams{Limit: limit})
	if err != nil {
		return Rows{}, err
	}
	return s.Select(ctx, query)
}
