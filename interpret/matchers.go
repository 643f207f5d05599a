package interpret

import (
	"regexp"
	"strings"
)

// positionMatcher is one strategy for splitting a callout line into a
// position and the remaining text. Matchers run in priority order; the
// first one producing a rest that contains a letter wins.
type positionMatcher struct {
	name string
	re   *regexp.Regexp
}

var positionMatchers = []positionMatcher{
	// Optional label (Pos, Item, Nr, ...) or bare number with an
	// optional letter suffix, then a separator.
	{
		name: "callout",
		re:   regexp.MustCompile(`(?i)^\s*(?:[-•]\s*)?(?:(?:pos(?:ition)?|item|nr|no\.?|#)\s*)?(\d{1,3}[A-Za-z]?)(?:\s*[.:)\-])?\s+(.+)$`),
	},
	// Letter-prefixed label such as "A1:" or "B12 -".
	{
		name: "labelled",
		re:   regexp.MustCompile(`^([A-Za-z]\d{1,3})\s*[:\-]\s*(.+)$`),
	},
	// Bare enumeration: number followed by whitespace.
	{
		name: "enumerated",
		re:   regexp.MustCompile(`^(\d{1,3})\s+(.+)$`),
	},
}

var letterRe = regexp.MustCompile(`[A-Za-z]`)

// splitPositionAndRest separates a position token from the rest of the
// line. When no matcher applies, the whole line becomes the rest as long
// as it contains a letter; ok is false otherwise.
func splitPositionAndRest(text string) (position, rest string, ok bool) {
	for _, matcher := range positionMatchers {
		groups := matcher.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		candidate := strings.TrimSpace(groups[2])
		if candidate == "" || !letterRe.MatchString(candidate) {
			continue
		}
		return groups[1], candidate, true
	}

	if letterRe.MatchString(text) {
		return "", strings.TrimSpace(text), true
	}
	return "", "", false
}
