package model

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:html)?[ \t]*\r?\n")
	trailingFence = regexp.MustCompile("\r?\n[ \t]*```$")
)

// SanitizeArtifact strips a leading code fence (optionally tagged html) and a
// trailing code fence. Both are anchored to the ends of the trimmed string
// and the markup itself is left untouched.
//
// Stripping repeats until the string is stable, so the result never starts or
// ends with a fence and SanitizeArtifact(SanitizeArtifact(x)) equals
// SanitizeArtifact(x).
func SanitizeArtifact(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := leadingFence.ReplaceAllString(s, "")
		next = trailingFence.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}
