// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikitext

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disambiguatorRe = regexp.MustCompile(`\s*\(([^()]*)\)\s*$`)
	unsafeRe        = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	underscoresRe   = regexp.MustCompile(`_{2,}`)
)

// letters without a combining-mark decomposition.
var foldReplacer = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th",
	"ł", "l", "Ł", "L",
	"ı", "i",
)

// SafeName turns a page or template title into a URI fragment made only of
// [A-Za-z0-9_], with no leading, trailing or doubled underscore.
// A "Template:" prefix and a trailing "(...)" disambiguator are dropped and
// accented letters are folded to ASCII, so
// "Adrahil (Captain of the Left Wing)" becomes "Adrahil" and "Eärnur"
// becomes "Earnur". An input with nothing usable yields "unknown".
func SafeName(title string) string {
	s := strings.TrimSpace(title)
	if rest, ok := cutPrefixFold(s, "template:"); ok {
		s = rest
	}
	if loc := disambiguatorRe.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = s[:loc[0]]
	}
	s = fold(s)
	s = unsafeRe.ReplaceAllString(s, "_")
	s = underscoresRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// Disambiguator returns the text of a trailing "(...)" in title, or "".
func Disambiguator(title string) string {
	s := strings.TrimSpace(title)
	loc := disambiguatorRe.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] == 0 {
		return ""
	}
	return strings.TrimSpace(s[loc[2]:loc[3]])
}

// BaseTitle returns title without its disambiguator.
func BaseTitle(title string) string {
	s := strings.TrimSpace(title)
	if loc := disambiguatorRe.FindStringIndex(s); loc != nil && loc[0] > 0 {
		return s[:loc[0]]
	}
	return s
}

func fold(s string) string {
	s = foldReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
