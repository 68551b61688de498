// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import "regexp"

// Month names: Gregorian plus the Shire Reckoning, which the wiki uses for
// hobbit births and deaths.
const months = `(?:January|February|March|April|May|June|July|August|September|October|November|December|` +
	`Afteryule|Solmath|Rethe|Astron|Thrimidge|Forelithe|Afterlithe|Wedmath|Halimath|Winterfilth|Blotmath|Foreyule)`

// era matches an age prefix such as "TA" or "FA".
const era = `(?:(?:YT|YS|FA|SA|TA|FO|Fo\.A\.|S\.R\.)\s*)`

// datePatterns are tried in order; the first match is the guess.
var datePatterns = []*regexp.Regexp{
	// 29 September, TA 3021
	regexp.MustCompile(`\b\d{1,2}\s+` + months + `,?\s+` + era + `?\d{1,4}\b`),
	// September TA 3021, March 3019
	regexp.MustCompile(`\b` + months + `,?\s+` + era + `?\d{1,4}\b`),
	// TA 3021, FA 532, 1937
	regexp.MustCompile(`\b(?:` + era + `\d{1,4}|\d{3,4})\b`),
	// 25 March
	regexp.MustCompile(`\b\d{1,2}\s+` + months + `\b`),
}

// GuessDate returns the most specific date-like substring of value: a full
// date, then month and year, then a year, then day and month.
func GuessDate(value string) (string, bool) {
	for _, re := range datePatterns {
		if m := re.FindString(value); m != "" {
			return m, true
		}
	}
	return "", false
}
