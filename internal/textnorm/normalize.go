// Package textnorm cleans raw feedback text before it is scored or sent to a model.
package textnorm

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var punctuationReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"&#39;", "'",
	"&#039;", "'",
	"&apos;", "'",
	"&lsquo;", "'",
	"&rsquo;", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"&quot;", `"`,
	"&ldquo;", `"`,
	"&rdquo;", `"`,
)

var dropControl = runes.Remove(runes.Predicate(isASCIIControl))

// Normalize drops undecodable bytes and ASCII control characters, folds curly
// quotes and quote entities to plain ASCII, and trims surrounding whitespace.
// It never fails: anything it cannot make sense of is dropped.
func Normalize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text, _, _ = transform.String(dropControl, text)
	text = punctuationReplacer.Replace(text)
	return strings.TrimSpace(text)
}

// NormalizeAll normalizes every entry, keeping positions.
func NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Normalize(t)
	}
	return out
}

func isASCIIControl(r rune) bool {
	return r <= 0x1F || r == 0x7F
}
