// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikigraph/internal/schema"
)

// Translation holds the labels for one name. Either Labels gives a
// translated label per language, or Languages lists the languages in which
// the name is used unchanged.
type Translation struct {
	Labels    map[string]string
	Languages []string
}

// UnmarshalYAML accepts either a language to label mapping or a list of
// language codes.
func (t *Translation) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		return n.Decode(&t.Labels)
	case yaml.SequenceNode:
		return n.Decode(&t.Languages)
	}
	return fmt.Errorf("line %d: translation must be a mapping or a list", n.Line)
}

// MarshalYAML writes the same two shapes UnmarshalYAML reads.
func (t Translation) MarshalYAML() (any, error) {
	if t.Labels != nil {
		return t.Labels, nil
	}
	return t.Languages, nil
}

// Translations is the label table applied by AddLabels.
type Translations struct {
	// DefaultLanguages label every person absent from Names.
	DefaultLanguages []string               `yaml:"default_languages"`
	Names            map[string]Translation `yaml:"names"`
}

var allLanguages = []string{"en", "fr", "es", "de", "it"}

// DefaultTranslations returns the built-in table: the four hobbits of the
// Fellowship have translated names, a few well known characters keep their
// names in five languages, and everyone else gets English and French labels.
func DefaultTranslations() Translations {
	names := map[string]Translation{
		"Frodo Baggins": {Labels: map[string]string{
			"en": "Frodo Baggins", "fr": "Frodon Sacquet", "es": "Frodo Bolsón", "de": "Frodo Beutlin", "it": "Frodo Baggins",
		}},
		"Samwise Gamgee": {Labels: map[string]string{
			"en": "Samwise Gamgee", "fr": "Samsagace Gamegie", "es": "Samsagaz Gamyi", "de": "Samweis Gamdschie", "it": "Samvise Gamgee",
		}},
		"Meriadoc Brandybuck": {Labels: map[string]string{
			"en": "Meriadoc Brandybuck", "fr": "Meriadoc Brandebouc", "es": "Meriadoc Brandigamo", "de": "Meriadoc Brandybuck", "it": "Meriadoc Brandibuck",
		}},
		"Peregrin Took": {Labels: map[string]string{
			"en": "Peregrin Took", "fr": "Peregrin Touque", "es": "Peregrin Tuk", "de": "Peregrin Tuk", "it": "Peregrino Tuc",
		}},
	}
	for _, n := range []string{
		"Gandalf", "Aragorn", "Elrond", "Sauron", "Legolas", "Gimli", "Galadriel", "Boromir",
		"Saruman", "Théoden", "Éowyn", "Faramir", "Gollum", "Treebeard", "Tom Bombadil",
	} {
		names[n] = Translation{Languages: allLanguages}
	}
	return Translations{DefaultLanguages: []string{"en", "fr"}, Names: names}
}

// LoadTranslations reads a translation table from a YAML file.
func LoadTranslations(path string) (Translations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Translations{}, fmt.Errorf("reading translations %s: %w", path, err)
	}
	var tr Translations
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return Translations{}, fmt.Errorf("parsing translations %s: %w", path, err)
	}
	if len(tr.DefaultLanguages) == 0 {
		tr.DefaultLanguages = []string{"en", "fr"}
	}
	return tr, nil
}

// AddLabels adds rdfs:label literals with language tags to every
// schema:Person in g, keyed by the person's first schema:name. It returns
// the number of new triples.
func AddLabels(g *Graph, tr Translations) int {
	added := 0
	for _, s := range g.SubjectsOfType(schema.Person) {
		name := firstLiteral(g.Objects(s, schema.Name))
		if name == "" {
			continue
		}
		var labels []Term
		t, ok := tr.Names[name]
		switch {
		case ok && t.Labels != nil:
			langs := make([]string, 0, len(t.Labels))
			for lang := range t.Labels {
				langs = append(langs, lang)
			}
			sort.Strings(langs)
			for _, lang := range langs {
				labels = append(labels, LangLiteral(t.Labels[lang], lang))
			}
		case ok:
			for _, lang := range t.Languages {
				labels = append(labels, LangLiteral(name, lang))
			}
		default:
			for _, lang := range tr.DefaultLanguages {
				labels = append(labels, LangLiteral(name, lang))
			}
		}
		for _, l := range labels {
			if g.Add(T(s, schema.RDFSLabel, l)) {
				added++
			}
		}
	}
	return added
}

func firstLiteral(ts []Term) string {
	for _, t := range ts {
		if t.Kind == KindLiteral && t.Value != "" {
			return t.Value
		}
	}
	return ""
}
