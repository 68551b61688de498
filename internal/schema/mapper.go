// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikigraph/internal/wikitext"
)

// minOverlap is the shortest key that may match by substring. It keeps
// two-letter parameter names from mapping onto anything containing them.
const minOverlap = 3

// Rule maps one parameter name to a property. Property is a prefixed name
// (schema:birthDate) or a full IRI.
type Rule struct {
	Key      string `json:"key" yaml:"key"`
	Property string `json:"property" yaml:"property"`
	Date     bool   `json:"date,omitempty" yaml:"date,omitempty"`
}

// DefaultRules is the built-in mapping table. Order breaks ties between
// equally long substring matches.
var DefaultRules = []Rule{
	{Key: "name", Property: "schema:name"},
	{Key: "title", Property: "schema:name"},
	{Key: "othernames", Property: "schema:alternateName"},
	{Key: "alias", Property: "schema:alternateName"},
	{Key: "image", Property: "schema:image"},
	{Key: "caption", Property: "schema:caption"},
	{Key: "description", Property: "schema:description"},
	{Key: "type", Property: "schema:additionalType"},

	{Key: "birth", Property: "schema:birthDate", Date: true},
	{Key: "death", Property: "schema:deathDate", Date: true},
	{Key: "race", Property: "tgwo:race"},
	{Key: "spouse", Property: "schema:spouse"},
	{Key: "children", Property: "schema:children"},
	{Key: "parents", Property: "schema:parent"},
	{Key: "siblings", Property: "schema:sibling"},
	{Key: "height", Property: "schema:height"},
	{Key: "hair", Property: "tgwo:hairColor"},
	{Key: "eyes", Property: "tgwo:eyeColor"},
	{Key: "age", Property: "tgwo:age"},
	{Key: "gender", Property: "schema:gender"},
	{Key: "birthplace", Property: "schema:birthPlace"},
	{Key: "deathplace", Property: "schema:deathPlace"},
	{Key: "realm", Property: "tgwo:realm"},
	{Key: "weapon", Property: "tgwo:weapon"},

	{Key: "location", Property: "schema:location"},
	{Key: "inhabitants", Property: "tgwo:inhabitedBy"},
	{Key: "events", Property: "schema:event"},
	{Key: "builder", Property: "schema:creator"},
	{Key: "built", Property: "schema:foundingDate", Date: true},
	{Key: "destroyed", Property: "tgwo:destroyedDate"},

	{Key: "author", Property: "schema:author"},
	{Key: "artist", Property: "schema:creator"},
	{Key: "director", Property: "schema:director"},
	{Key: "publisher", Property: "schema:publisher"},
	{Key: "release", Property: "schema:datePublished", Date: true},
	{Key: "language", Property: "schema:inLanguage"},
	{Key: "pages", Property: "schema:numberOfPages"},

	{Key: "date", Property: "schema:startDate", Date: true},
	{Key: "enddate", Property: "schema:endDate", Date: true},
	{Key: "participants", Property: "schema:participant"},
	{Key: "outcome", Property: "tgwo:outcome"},
}

// Mapping is the result of looking up one parameter name.
type Mapping struct {
	// Property is the full property IRI.
	Property string

	// Date marks properties whose values go through GuessDate.
	Date bool

	// Rule is the key of the rule that matched, empty for a fallback.
	Rule string

	// Exact is true when the name matched a rule key exactly.
	Exact bool
}

// Fallback reports whether no rule matched.
func (m Mapping) Fallback() bool { return m.Rule == "" }

// Mapper resolves parameter names against an ordered rule list.
type Mapper struct {
	rules      []Rule
	prefixes   map[string]string
	ontologyNS string
}

// NewMapper returns a Mapper over extra rules followed by DefaultRules.
// Extra rules take precedence on exact matches and on substring ties.
func NewMapper(resourceNS, ontologyNS string, extra []Rule) *Mapper {
	rules := make([]Rule, 0, len(extra)+len(DefaultRules))
	for _, r := range extra {
		r.Key = normalizeKey(r.Key)
		rules = append(rules, r)
	}
	for _, r := range DefaultRules {
		r.Key = normalizeKey(r.Key)
		rules = append(rules, r)
	}
	return &Mapper{
		rules:      rules,
		prefixes:   Prefixes(resourceNS, ontologyNS),
		ontologyNS: ontologyNS,
	}
}

// Rules returns the effective rule list in precedence order.
func (m *Mapper) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}

// Map resolves a parameter name. An exact case-insensitive key match wins.
// Otherwise the rule whose key and the name contain one another over the
// longest span wins, with earlier rules winning ties; spans shorter than
// three characters never match. Names no rule covers map to the ontology
// namespace plus wikitext.SafeName(name).
func (m *Mapper) Map(name string) Mapping {
	n := normalizeKey(name)

	for _, r := range m.rules {
		if r.Key == n {
			return m.mapping(r, true)
		}
	}

	best, bestLen := -1, 0
	for i, r := range m.rules {
		overlap := 0
		switch {
		case strings.Contains(n, r.Key):
			overlap = len(r.Key)
		case strings.Contains(r.Key, n):
			overlap = len(n)
		}
		if overlap >= minOverlap && overlap > bestLen {
			best, bestLen = i, overlap
		}
	}
	if best >= 0 {
		return m.mapping(m.rules[best], false)
	}

	return Mapping{Property: m.ontologyNS + wikitext.SafeName(name)}
}

// Value applies date extraction when the mapping calls for it and returns
// the literal to store.
func (m Mapping) Value(cleaned string) string {
	if !m.Date {
		return cleaned
	}
	if d, ok := GuessDate(cleaned); ok {
		return d
	}
	return cleaned
}

func (m *Mapper) mapping(r Rule, exact bool) Mapping {
	return Mapping{
		Property: Expand(r.Property, m.prefixes),
		Date:     r.Date,
		Rule:     r.Key,
		Exact:    exact,
	}
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}

// ruleFile is the on-disk layout read by LoadRules.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads extra mapping rules from a YAML file of the form
//
//	rules:
//	  - key: culture
//	    property: tgwo:culture
//	  - key: founded
//	    property: schema:foundingDate
//	    date: true
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	for i, r := range f.Rules {
		if strings.TrimSpace(r.Key) == "" || strings.TrimSpace(r.Property) == "" {
			return nil, fmt.Errorf("rules %s: entry %d needs key and property", path, i+1)
		}
	}
	return f.Rules, nil
}
