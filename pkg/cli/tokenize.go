// Package cli holds the small input-handling helpers for the interactive
// front end.
package cli

import "regexp"

// Matches a double-quoted run (captured without the quotes) or a bare word.
var tokenPattern = regexp.MustCompile(`"([^"]*)"|(\S+)`)

// SplitQuoted splits s on spaces while treating double-quoted substrings as
// single tokens:
//
//	`A "two words" body` -> ["A", "two words", "body"]
func SplitQuoted(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	return out
}
