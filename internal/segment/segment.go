// Package segment splits long input into sentence-bounded chunks no
// longer than a configured character budget, for the CLI tokenize
// command's batch input, where a single Worker sentence should not span
// unboundedly long text.
package segment

import (
	"github.com/clipperhouse/uax29/v2/sentences"
)

// DefaultMaxChars is the default per-segment character budget.
const DefaultMaxChars = 4096

// Split breaks text into sentence-boundary-respecting segments, each at
// most maxChars runes long; a single sentence longer than maxChars is
// still emitted whole (the budget is advisory, not a hard truncation).
// maxChars <= 0 uses DefaultMaxChars.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var segments []string
	var buf []rune
	n := 0

	flush := func() {
		if len(buf) > 0 {
			segments = append(segments, string(buf))
			buf = buf[:0]
			n = 0
		}
	}

	it := sentences.FromString(text)
	for it.Next() {
		sent := it.Value()
		sentLen := len([]rune(sent))
		if n > 0 && n+sentLen > maxChars {
			flush()
		}
		buf = append(buf, []rune(sent)...)
		n += sentLen
	}
	flush()
	return segments
}
