// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikitext

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const elrondPage = `'''Elrond''' was the Lord of [[Rivendell]].
{{Infobox character
| name = Elrond
| image = [[File:Elrond.jpg|250px]]
| othernames = Half-elven, [[Peredhel]]
| birth = {{FA|532}}<ref>{{HM|S}}</ref>
| spouse = [[Celebrían]]
| children = [[Elladan]] & [[Elrohir]] ([[twins]])<br/>[[Arwen]]
| 1 = positional
| unnamed
| language = [[Sindarin|S]], {{IPA|['ɛlʲrond]}}
}}
Elrond was the son of [[Eärendil]].`

func TestExtract(t *testing.T) {
	bag, err := Extract(elrondPage, "Infobox character")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "othernames", "birth", "spouse", "children", "language"}, bag.Keys())

	want := map[string]string{
		"name":       "Elrond",
		"othernames": "Half-elven, Peredhel",
		"birth":      "FA 532",
		"spouse":     "Celebrían",
		"children":   "Elladan & Elrohir (twins) Arwen",
		"language":   "S, IPA ['ɛlʲrond]",
	}
	for k, v := range want {
		got, ok := bag.Get(k)
		assert.True(t, ok, k)
		assert.Equal(t, v, got, k)
	}
	assert.Equal(t, "[[Celebrían]]", bag.Params[3].Raw)
}

func TestExtractNameVariants(t *testing.T) {
	for _, name := range []string{
		"Infobox character",
		"Template:Infobox_character",
		"INFOBOX CHARACTER",
		"character",
		"Character infobox",
	} {
		t.Run(name, func(t *testing.T) {
			bag, err := Extract(elrondPage, name)
			require.NoError(t, err)
			assert.Equal(t, 6, bag.Len())
		})
	}
}

func TestExtractNotFound(t *testing.T) {
	_, err := Extract(elrondPage, "Infobox location")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = Extract("no templates here", "Infobox character")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = Extract(elrondPage, "")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestExtractFoundButEmpty(t *testing.T) {
	bag, err := Extract("{{Infobox character\n| image = \n| 1 = x\n| positional}}", "Infobox character")
	require.NoError(t, err)
	assert.Equal(t, 0, bag.Len())
}

func TestExtractFirstMatchWins(t *testing.T) {
	text := "{{Character infobox|name=A}}\n{{Infobox character|name=B}}"
	bag, err := Extract(text, "Infobox character")
	require.NoError(t, err)
	name, _ := bag.Get("name")
	assert.Equal(t, "A", name)
}

func TestExtractDuplicateReplacesInPlace(t *testing.T) {
	bag, err := Extract("{{Infobox character|name=A|race=Elf|name=B}}", "Infobox character")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "race"}, bag.Keys())
	name, _ := bag.Get("name")
	assert.Equal(t, "B", name)
}

func TestExtractNestedEquals(t *testing.T) {
	bag, err := Extract("{{Infobox|title={{Lang|sjn=Imladris}}|x=1|link=[[A|b=c]]}}", "Infobox")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "x", "link"}, bag.Keys())
	title, _ := bag.Get("title")
	assert.Equal(t, "Lang Imladris", title)
	link, _ := bag.Get("link")
	assert.Equal(t, "b=c", link)
}

func TestExtractSkipsPlaceholders(t *testing.T) {
	bag, err := Extract("{{{name}}} {{Infobox character|name=X}}", "Infobox character")
	require.NoError(t, err)
	name, _ := bag.Get("name")
	assert.Equal(t, "X", name)
}

func TestExtractExtraOpeningBraces(t *testing.T) {
	bag, err := Extract("{{{{Infobox character|a=b}}}}", "Infobox character")
	require.NoError(t, err)
	a, _ := bag.Get("a")
	assert.Equal(t, "b", a)

	bag, err = Extract("{{{Infobox character|name=Elrond}}", "Infobox character")
	require.NoError(t, err)
	name, _ := bag.Get("name")
	assert.Equal(t, "Elrond", name)

	invs := ExtractAll("{{{{Infobox character|a=b}}}} {{{1}}}")
	require.Len(t, invs, 1)
	assert.Equal(t, "Infobox character", invs[0].Name)
	assert.Equal(t, 2, invs[0].Offset)
}

func TestExtractUnclosed(t *testing.T) {
	bag, err := Extract("{{Infobox character|name=Elrond|race=Elves", "Infobox character")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "race"}, bag.Keys())
}

func TestExtractAll(t *testing.T) {
	text := "{{Quote|Hello}} text {{Infobox character|name=Elrond|race={{Elves}}}} {{Cite|book=LotR}}"
	invs := ExtractAll(text)
	require.Len(t, invs, 3)

	assert.Equal(t, "Quote", invs[0].Name)
	assert.Equal(t, 0, invs[0].Bag.Len())

	assert.Equal(t, "Infobox character", invs[1].Name)
	race, _ := invs[1].Bag.Get("race")
	assert.Equal(t, "Elves", race)

	assert.Equal(t, "Cite", invs[2].Name)
	book, _ := invs[2].Bag.Get("book")
	assert.Equal(t, "LotR", book)
	assert.Equal(t, 70, invs[2].Offset)
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Adrahil (Captain of the Left Wing)", "Adrahil"},
		{"Template:Infobox character", "Infobox_character"},
		{"Minas Tirith", "Minas_Tirith"},
		{"Eärnur", "Earnur"},
		{"Fëanor", "Feanor"},
		{"Beren and Lúthien (book)", "Beren_and_Luthien"},
		{"Ælfwine", "AElfwine"},
		{"  --Hello, World!--  ", "Hello_World"},
		{"A__B", "A_B"},
		{"(Disambiguation only)", "Disambiguation_only"},
		{"", "unknown"},
		{"???", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

var safeNameShape = regexp.MustCompile(`^[A-Za-z0-9]+(?:_[A-Za-z0-9]+)*$`)

func TestSafeNameShape(t *testing.T) {
	for _, in := range []string{
		"Adrahil (Captain of the Left Wing)", "_x_", "a  b", "Ñoldor — exiles",
		"x (y) z", "Tuor's Song", "100 Years", "日本", "C++", "__init__",
	} {
		got := SafeName(in)
		assert.Regexp(t, safeNameShape, got, in)
	}
}

func TestDisambiguator(t *testing.T) {
	assert.Equal(t, "Captain of the Left Wing", Disambiguator("Adrahil (Captain of the Left Wing)"))
	assert.Equal(t, "", Disambiguator("Elrond"))
	assert.Equal(t, "", Disambiguator("(x)"))
	assert.Equal(t, "Adrahil", BaseTitle("Adrahil (Captain of the Left Wing)"))
}
