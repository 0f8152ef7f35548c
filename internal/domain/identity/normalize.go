// Package identity canonicalizes artist names for comparison.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Apostrophe is the canonical apostrophe kept by Normalize.
const Apostrophe = '\''

// apostrophes lists the variants folded into Apostrophe.
var apostrophes = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"′", "'", // prime
	"´", "'", // acute accent
	"`", "'",
)

// letters folds lowercase letters that NFKD leaves undecomposed.
var letters = strings.NewReplacer( //nolint:gochecknoglobals // immutable replacer
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ß", "ss",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
)

// Normalize lowercases name, folds apostrophe variants, diacritics and
// letters such as ø or ß that have no decomposition, drops
// every character outside [a-z0-9 '], collapses whitespace runs and trims.
// It is total and idempotent.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	name = apostrophes.Replace(name)
	name = letters.Replace(strings.ToLower(name))
	name = norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(name))
	pendingSpace := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case isKept(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isKept(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == Apostrophe
}
