// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import "strings"

// Template categories.
const (
	Character    = "Character"
	Location     = "Location"
	Book         = "Book"
	Film         = "Film"
	Event        = "Event"
	Organization = "Organization"
	Race         = "Race"
	Item         = "Item"
	Media        = "Media"
	Other        = "Other"
)

// categoryKeywords is checked top to bottom; the first category with a
// keyword inside the template name wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{Character, []string{"character", "person", "elf", "dwarf", "hobbit", "orc", "troll", "valar", "maiar", "wizard", "king"}},
	{Location, []string{"location", "place", "city", "country", "kingdom", "realm", "region", "forest", "mountain", "river"}},
	{Book, []string{"book", "novel", "publication"}},
	{Film, []string{"film", "movie", "video"}},
	{Event, []string{"event", "battle", "war", "campaign", "feast"}},
	{Organization, []string{"organization", "company", "society", "guild"}},
	{Race, []string{"race", "species", "people", "culture"}},
	{Item, []string{"item", "object", "artifact", "weapon", "ring"}},
	{Media, []string{"media", "audio", "song", "music", "album"}},
}

var categoryClasses = map[string]string{
	Character:    SchemaNS + "Person",
	Location:     SchemaNS + "Place",
	Item:         SchemaNS + "Thing",
	Event:        SchemaNS + "Event",
	Organization: SchemaNS + "Organization",
	Media:        SchemaNS + "MediaObject",
	Book:         SchemaNS + "Book",
	Film:         SchemaNS + "Movie",
	Race:         SchemaNS + "Person",
	Other:        SchemaNS + "Thing",
}

// Categorize guesses a template's category from keywords in its name.
// Keyword matching is loose: "Infobox kingdom" is a Character because
// "king" is checked before "kingdom".
func Categorize(template string) string {
	name := strings.ToLower(template)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(name, kw) {
				return c.category
			}
		}
	}
	return Other
}

// ClassFor returns the schema.org class IRI for a category, schema:Thing
// for unknown categories.
func ClassFor(category string) string {
	if c, ok := categoryClasses[category]; ok {
		return c
	}
	return Thing
}

// Categories lists every category in keyword precedence order, Other last.
func Categories() []string {
	out := make([]string, 0, len(categoryKeywords)+1)
	for _, c := range categoryKeywords {
		out = append(out, c.category)
	}
	return append(out, Other)
}
