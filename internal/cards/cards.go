// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cards links Middle-earth: The Wizards (METW) card data to the
// entities of the graph by name.
package cards

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/antonholmquist/jason"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/internal/wikitext"
)

// minMatch is the shortest entity name matched inside a card name.
const minMatch = 3

// expansionNames maps METW set codes to their titles.
var expansionNames = map[string]string{
	"AS": "Against the Shadow",
	"BA": "The Balrog",
	"DM": "Dark Minions",
	"LE": "Legends",
	"TD": "The Dragons",
	"TW": "The Wizards",
	"WH": "White Hand",
}

// nameLangs is the preference order for multilingual card names.
var nameLangs = []string{"en", "es", "de", "fr", "it"}

// DefaultEntities are matched when no graph supplies entity names.
var DefaultEntities = []string{
	"Elrond", "Gandalf", "Aragorn", "Frodo Baggins", "Samwise Gamgee",
	"Legolas", "Gimli", "Boromir", "Gollum", "Saruman", "Galadriel",
	"Bilbo Baggins", "Théoden", "Éowyn", "Éomer", "Faramir", "Denethor",
	"Treebeard", "Tom Bombadil", "Sauron", "Witch-king", "Balrog",
	"Celeborn", "Arwen", "Elendil", "Isildur", "Glorfindel", "Haldir",
	"Radagast", "Shelob", "Thorin Oakenshield", "Bard", "Beorn",
	"Elfhelm", "Erkenbrand", "Gamling", "Háma", "Gríma", "Wormtongue",
}

// Card is one METW card.
type Card struct {
	ID            string `json:"id" yaml:"id"`
	Expansion     string `json:"expansion" yaml:"expansion"`
	ExpansionName string `json:"expansion_name" yaml:"expansion_name"`
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Entity is a graph subject cards can be matched to.
type Entity struct {
	Name string
	IRI  string
}

// Summary holds the outcome of linking cards.
type Summary struct {
	Cards       int
	Matched     int
	Triples     int
	ByExpansion map[string]int
}

// Load reads a card file: an object keyed by expansion code whose values
// hold a "cards" object keyed by card ID.
func Load(path string) ([]Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	cards, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cards, nil
}

// Parse decodes card data from r. Cards are returned sorted by expansion
// and ID. Entries that are not objects are skipped.
func Parse(r io.Reader) ([]Card, error) {
	root, err := jason.NewObjectFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []Card
	for code, v := range root.Map() {
		exp, err := v.Object()
		if err != nil {
			continue
		}
		cards, err := exp.GetObject("cards")
		if err != nil {
			continue
		}
		for id, cv := range cards.Map() {
			obj, err := cv.Object()
			if err != nil {
				continue
			}
			card := Card{
				ID:            id,
				Expansion:     code,
				ExpansionName: expansionName(code),
				Name:          cardName(obj, id),
			}
			if t, err := obj.GetString("type"); err == nil {
				card.Type = strings.TrimSpace(t)
			}
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Expansion != out[j].Expansion {
			return out[i].Expansion < out[j].Expansion
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func expansionName(code string) string {
	if name, ok := expansionNames[code]; ok {
		return name
	}
	return code
}

// cardName picks the first non-empty name by language, then a plain
// string field, then the ID.
func cardName(obj *jason.Object, id string) string {
	if names, err := obj.GetObject("name"); err == nil {
		for _, lang := range nameLangs {
			if n, err := names.GetString(lang); err == nil && strings.TrimSpace(n) != "" {
				return strings.TrimSpace(n)
			}
		}
	}
	for _, key := range []string{"name", "Name", "title", "Title", "cardname"} {
		if n, err := obj.GetString(key); err == nil && strings.TrimSpace(n) != "" {
			return strings.TrimSpace(n)
		}
	}
	return id
}

// EntitiesFromNames turns plain names into entities under resourceBase.
func EntitiesFromNames(names []string, resourceBase string) []Entity {
	out := make([]Entity, 0, len(names))
	for _, n := range names {
		out = append(out, Entity{Name: n, IRI: resourceBase + wikitext.SafeName(n)})
	}
	return out
}

// EntitiesFromGraph returns every subject of g typed schema:Person with its
// first schema:name, in graph order.
func EntitiesFromGraph(g *graph.Graph) []Entity {
	var out []Entity
	for _, s := range g.SubjectsOfType(schema.Person) {
		names := g.Objects(s, schema.Name)
		if len(names) == 0 {
			continue
		}
		out = append(out, Entity{Name: names[0].Value, IRI: s})
	}
	return out
}

// Match returns the entity whose name occurs in the card name, comparing
// case-insensitively with and without spaces. The longest name wins; ties
// go to the earlier entity. Names shorter than three characters never match.
func Match(cardName string, entities []Entity) (Entity, bool) {
	lower := strings.ToLower(cardName)
	squashed := strings.ReplaceAll(lower, " ", "")

	var best Entity
	found := false
	for _, e := range entities {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if len([]rune(name)) < minMatch {
			continue
		}
		if !strings.Contains(lower, name) && !strings.Contains(squashed, strings.ReplaceAll(name, " ", "")) {
			continue
		}
		if !found || len(name) > len(strings.ToLower(best.Name)) {
			best, found = e, true
		}
	}
	return best, found
}

// Link adds every card to g and, for cards that match an entity, links the
// two both ways with ontology link properties and schema:relatedTo.
func Link(g *graph.Graph, cards []Card, entities []Entity, ontologyBase string) Summary {
	sum := Summary{Cards: len(cards), ByExpansion: make(map[string]int)}
	for _, c := range cards {
		card := schema.METWNS + wikitext.SafeName(c.ID+" "+c.Name)
		ts := []graph.Triple{
			graph.T(card, schema.RDFType, graph.IRI(ontologyBase+"Card")),
			graph.T(card, schema.RDFType, graph.IRI(schema.CreativeWork)),
			graph.T(card, schema.Name, graph.LangLiteral(c.Name, "en")),
			graph.T(card, ontologyBase+"cardId", graph.Literal(c.ID)),
			graph.T(card, ontologyBase+"expansion", graph.Literal(c.Expansion)),
			graph.T(card, ontologyBase+"expansionName", graph.Literal(c.ExpansionName)),
		}
		if c.Type != "" {
			ts = append(ts, graph.T(card, ontologyBase+"cardType", graph.Literal(c.Type)))
		}
		if e, ok := Match(c.Name, entities); ok {
			sum.Matched++
			sum.ByExpansion[c.Expansion]++
			ts = append(ts,
				graph.T(e.IRI, ontologyBase+"hasCardRepresentation", graph.IRI(card)),
				graph.T(card, ontologyBase+"representsEntity", graph.IRI(e.IRI)),
				graph.T(e.IRI, schema.RelatedTo, graph.IRI(card)),
				graph.T(card, schema.RelatedTo, graph.IRI(e.IRI)),
			)
		}
		sum.Triples += g.AddAll(ts)
	}
	return sum
}

// PrintSummary writes the card totals and matches per expansion.
func PrintSummary(w io.Writer, sum Summary) {
	rate := 0.0
	if sum.Cards > 0 {
		rate = float64(sum.Matched) / float64(sum.Cards) * 100
	}
	fmt.Fprintf(w, "\nCards: %d processed, %d matched (%.1f%%), %d triples\n", sum.Cards, sum.Matched, rate, sum.Triples)
	codes := make([]string, 0, len(sum.ByExpansion))
	for c := range sum.ByExpansion {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  %-4s %-20s %d\n", c, expansionName(c), sum.ByExpansion[c])
	}
}
