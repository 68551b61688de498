// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikitext reads MediaWiki markup: it locates template invocations,
// splits them into named parameters and reduces parameter values to plain text.
// clean.go holds the value cleaning pipeline and link discovery.
package wikitext

import (
	"regexp"
	"strings"
)

// Cleaning patterns, applied in the order Clean lists them.
var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)`)

	// innerLinkRe matches a [[...]] link that contains no nested link.
	innerLinkRe = regexp.MustCompile(`\[\[([^\[\]]*)\]\]`)

	// innerTemplateRe matches a {{...}} invocation that contains no nested template.
	innerTemplateRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

	// externalLinkRe matches [http://host/path anchor] and bare [//host].
	externalLinkRe = regexp.MustCompile(`\[(?:(?i:https?|ftp):)?//[^\s\]]*(?:\s+([^\]]*))?\]`)

	refSelfClosingRe = regexp.MustCompile(`(?i)<ref\b[^>]*/\s*>`)
	refBlockRe       = regexp.MustCompile(`(?is)<ref\b[^>]*>.*?</ref\s*>`)
	tagRe            = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	quoteRunRe       = regexp.MustCompile(`'{2,}`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// fileNamespaces are link prefixes that embed media rather than point at a page.
var fileNamespaces = []string{"file:", "image:", "media:", "category:"}

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&ndash;", "–",
	"&mdash;", "—",
	"&thinsp;", " ",
)

var residueReplacer = strings.NewReplacer("[[", "", "]]", "", "{{", "", "}}", "")

// maxPasses bounds the fixed-point loop in Clean. Every pass either
// shortens the string or only normalises whitespace, so real input
// settles in two or three passes.
const maxPasses = 8

// Clean reduces a wikitext fragment to plain text. The steps run in order:
//
//  1. HTML comments are removed.
//  2. Internal links resolve to their display text, or the target when
//     there is none; File, Image, Media and Category links are removed.
//  3. Templates are surfaced innermost first: {{FA|532}} becomes "FA 532"
//     and named arguments keep only their value.
//  4. Unbalanced [[ ]] {{ }} residue is dropped.
//  5. External links become their anchor text; bare [url] links vanish.
//  6. <ref>...</ref> spans and self-closing <ref/> tags are removed.
//  7. Every other HTML tag becomes a space.
//  8. Bold and italic quote runs are removed and common entities decoded.
//  9. Whitespace is collapsed and enclosing quotes or balanced brackets stripped.
//
// The pipeline repeats until the output stops changing, so
// Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := cleanPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanPass(s string) string {
	s = commentRe.ReplaceAllString(s, "")
	s = resolveLinks(s)
	s = surfaceTemplates(s)
	s = residueReplacer.Replace(s)
	s = externalLinkRe.ReplaceAllString(s, "$1")
	s = refSelfClosingRe.ReplaceAllString(s, "")
	s = refBlockRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	s = quoteRunRe.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	return trimEnclosing(s)
}

// resolveLinks rewrites links innermost first so a caption holding its own
// link is resolved before the outer link is inspected.
func resolveLinks(s string) string {
	for strings.Contains(s, "[[") {
		next := innerLinkRe.ReplaceAllStringFunc(s, func(m string) string {
			return linkText(m[2 : len(m)-2])
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

func linkText(inner string) string {
	target, display, piped := strings.Cut(inner, "|")
	if isFileLink(target) {
		return ""
	}
	if piped {
		// [[Target|]] is the pipe trick: the target is shown.
		if strings.TrimSpace(display) != "" {
			return display
		}
	}
	return strings.TrimPrefix(strings.TrimSpace(target), ":")
}

func isFileLink(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	for _, ns := range fileNamespaces {
		if strings.HasPrefix(t, ns) {
			return true
		}
	}
	return false
}

func surfaceTemplates(s string) string {
	for strings.Contains(s, "{{") {
		next := innerTemplateRe.ReplaceAllStringFunc(s, func(m string) string {
			return templateText(m[2 : len(m)-2])
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

// templateText flattens "FA|532|name=x" into "FA 532 x".
func templateText(inner string) string {
	parts := strings.Split(inner, "|")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			if _, v, ok := strings.Cut(p, "="); ok {
				p = v
			}
		}
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

var enclosingPairs = map[rune]rune{
	'(':  ')',
	'[':  ']',
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
}

// trimEnclosing collapses whitespace and strips a quote or bracket pair that
// wraps the whole value, repeating while one does.
func trimEnclosing(s string) string {
	for {
		s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
		r := []rune(s)
		if len(r) < 2 {
			return s
		}
		closer, ok := enclosingPairs[r[0]]
		if !ok || r[len(r)-1] != closer || !wraps(r, r[0], closer) {
			return s
		}
		s = string(r[1 : len(r)-1])
	}
}

// wraps reports whether the opener at r[0] is closed by the final rune and
// not earlier, so "(a) and (b)" is left intact.
func wraps(r []rune, opener, closer rune) bool {
	if opener == closer {
		for _, c := range r[1 : len(r)-1] {
			if c == opener {
				return false
			}
		}
		return true
	}
	depth := 0
	for i, c := range r {
		switch c {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 && i != len(r)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// linkTargetRe matches a link with no nested link inside its target.
var linkTargetRe = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)

// Links returns the distinct page targets linked from s, in order of first
// appearance. File-like links are skipped and section anchors dropped.
func Links(s string) []string {
	s = commentRe.ReplaceAllString(s, "")
	s = refSelfClosingRe.ReplaceAllString(s, "")
	s = refBlockRe.ReplaceAllString(s, "")

	seen := make(map[string]bool)
	var out []string
	for _, m := range linkTargetRe.FindAllStringSubmatch(s, -1) {
		target := m[1]
		if isFileLink(target) {
			continue
		}
		target = strings.TrimPrefix(strings.TrimSpace(target), ":")
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(strings.ReplaceAll(target, "_", " "))
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}
