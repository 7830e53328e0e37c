// Package sanitize strips markup from user-supplied text.
package sanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds the strip/decode loop for deeply entity-escaped input.
const maxPasses = 4

var strictPolicy = bluemonday.StrictPolicy()

// Text removes every HTML tag. Entities escaped by the policy are decoded
// so plain punctuation is stored as typed, and the strip is repeated until
// decoding no longer produces markup. Input that has not settled after
// maxPasses is returned in its escaped form.
func Text(input string) string {
	out := input
	for range maxPasses {
		next := html.UnescapeString(strictPolicy.Sanitize(out))
		if next == out {
			return out
		}
		out = next
	}
	return strictPolicy.Sanitize(out)
}
