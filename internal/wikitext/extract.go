// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikitext

import (
	"errors"
	"strings"
)

// ErrTemplateNotFound is returned by Extract when no invocation of the
// requested template appears in the text.
var ErrTemplateNotFound = errors.New("template not found")

// Param is one named template parameter.
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`

	// Raw is the value's markup before cleaning. Callers use it to find links.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Bag is the ordered parameter set of one template invocation. Keys are
// unique; setting an existing key replaces its value in place.
type Bag struct {
	Template string  `json:"template" yaml:"template"`
	Params   []Param `json:"params" yaml:"params"`
}

// Len returns the number of parameters.
func (b *Bag) Len() int { return len(b.Params) }

// Get returns the cleaned value for key. Keys compare case-insensitively.
func (b *Bag) Get(key string) (string, bool) {
	if i := b.index(key); i >= 0 {
		return b.Params[i].Value, true
	}
	return "", false
}

// Set adds a parameter, or replaces an existing one without moving it.
func (b *Bag) Set(p Param) {
	if i := b.index(p.Key); i >= 0 {
		b.Params[i] = p
		return
	}
	b.Params = append(b.Params, p)
}

// Keys returns parameter names in source order.
func (b *Bag) Keys() []string {
	keys := make([]string, len(b.Params))
	for i, p := range b.Params {
		keys[i] = p.Key
	}
	return keys
}

func (b *Bag) index(key string) int {
	for i, p := range b.Params {
		if strings.EqualFold(p.Key, key) {
			return i
		}
	}
	return -1
}

// Invocation is one template call found in a page.
type Invocation struct {
	Name   string `json:"name" yaml:"name"`
	Offset int    `json:"offset" yaml:"offset"`
	Bag    Bag    `json:"bag" yaml:"bag"`
}

// Extract finds the first invocation of template in text and returns its
// named parameters. Names compare case-insensitively, ignoring a
// "Template:" prefix, underscores, and an "infobox " prefix or " infobox"
// suffix on either side, so "Infobox character" also matches {{character}}.
// When several invocations match, the earliest in the text wins.
//
// Extract returns ErrTemplateNotFound when nothing matches. A template that
// matches but carries no usable parameters yields an empty Bag and a nil error.
func Extract(text, template string) (Bag, error) {
	want := variants(template)
	if len(want) == 0 {
		return Bag{}, ErrTemplateNotFound
	}

	for start := 0; ; {
		i := strings.Index(text[start:], "{{")
		if i < 0 {
			return Bag{}, ErrTemplateNotFound
		}
		i += start
		if placeholderAt(text, i) {
			start = i + 3
			continue
		}
		i += braceRun(text, i) - 2
		end := closingBraces(text, i)
		segments := splitTop(text[i+2:end], '|')
		name := templateName(segments[0])
		if matches(variants(name), want) {
			return buildBag(template, segments[1:]), nil
		}
		start = i + 2
	}
}

// ExtractAll returns every top-level template invocation in text, in
// source order. Templates nested inside another template's arguments are
// not listed separately.
func ExtractAll(text string) []Invocation {
	var out []Invocation
	for start := 0; ; {
		i := strings.Index(text[start:], "{{")
		if i < 0 {
			return out
		}
		i += start
		placeholder := placeholderAt(text, i)
		if !placeholder {
			i += braceRun(text, i) - 2
		}
		end := closingBraces(text, i)
		segments := splitTop(text[i+2:end], '|')
		name := templateName(segments[0])
		if name != "" && !placeholder && !strings.HasPrefix(name, "#") {
			out = append(out, Invocation{
				Name:   name,
				Offset: i,
				Bag:    buildBag(name, segments[1:]),
			})
		}
		start = end + 2
		if start > len(text) {
			return out
		}
	}
}

func buildBag(template string, segments []string) Bag {
	bag := Bag{Template: template}
	for _, seg := range segments {
		eq := indexTop(seg, '=')
		if eq < 0 {
			continue // positional
		}
		rawKey := strings.TrimSpace(seg[:eq])
		if rawKey == "" || strings.ContainsAny(rawKey, "<>[]{}") {
			continue
		}
		key := Clean(rawKey)
		if key == "" || isNumeric(key) {
			continue
		}
		raw := strings.TrimSpace(seg[eq+1:])
		value := Clean(raw)
		if value == "" {
			continue
		}
		bag.Set(Param{Key: key, Value: value, Raw: raw})
	}
	return bag
}

// closingBraces returns the index of the "}}" that closes the "{{" at open,
// or len(text) when the invocation is never closed.
// braceRun counts the consecutive '{' starting at i.
func braceRun(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == '{' {
		n++
	}
	return n
}

// placeholderAt reports whether a {{{parameter}}} opens at i: exactly three
// braces, closed by three.
func placeholderAt(text string, i int) bool {
	return braceRun(text, i) == 3 && strings.Contains(text[i+3:], "}}}")
}

func closingBraces(text string, open int) int {
	depth := 0
	for i := open; i < len(text)-1; i++ {
		switch {
		case text[i] == '{' && text[i+1] == '{':
			depth++
			i++
		case text[i] == '}' && text[i+1] == '}':
			depth--
			if depth == 0 {
				return i
			}
			i++
		}
	}
	return len(text)
}

// splitTop splits s on sep wherever sep sits outside any {{ }} or [[ ]].
func splitTop(s string, sep byte) []string {
	var out []string
	last := 0
	for {
		i := indexTop(s[last:], sep)
		if i < 0 {
			return append(out, s[last:])
		}
		out = append(out, s[last:last+i])
		last += i + 1
	}
}

// indexTop returns the first index of sep outside nested braces or brackets.
func indexTop(s string, sep byte) int {
	braces, brackets := 0, 0
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) {
			switch s[i : i+2] {
			case "{{":
				braces++
				i++
				continue
			case "}}":
				if braces > 0 {
					braces--
				}
				i++
				continue
			case "[[":
				brackets++
				i++
				continue
			case "]]":
				if brackets > 0 {
					brackets--
				}
				i++
				continue
			}
		}
		if s[i] == sep && braces == 0 && brackets == 0 {
			return i
		}
	}
	return -1
}

func templateName(s string) string {
	s = commentRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
}

// variants returns the comparison forms of a template name.
func variants(name string) []string {
	n := strings.ToLower(templateName(name))
	n = strings.TrimSpace(strings.TrimPrefix(n, "template:"))
	if n == "" {
		return nil
	}
	out := []string{n}
	if s, ok := strings.CutPrefix(n, "infobox "); ok && s != "" {
		out = append(out, strings.TrimSpace(s))
	}
	if s, ok := strings.CutSuffix(n, " infobox"); ok && s != "" {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func matches(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
