// Package derivation computes a character's class, characteristic bonuses
// and class-granted skills from nationality and characteristic rolls. Every
// operation is best effort: names that map to nothing are skipped, never
// reported as errors.
package derivation

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips diacritics and trims surrounding space, so that
// "Melniboné", "MELNIBONE" and " melnibone " compare equal.
func Fold(s string) string {
	// transformers and casers are stateful; build them per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.TrimSpace(cases.Lower(language.Und).String(stripped))
}

// MatchKey finds the entry of keys that name refers to: exact match first,
// then folded equality, then a folded name that contains a key. Keys are
// tried in order within each pass.
func MatchKey(name string, keys []string) (string, bool) {
	for _, k := range keys {
		if k == name {
			return k, true
		}
	}

	folded := Fold(name)
	if folded == "" {
		return "", false
	}

	for _, k := range keys {
		if Fold(k) == folded {
			return k, true
		}
	}

	for _, k := range keys {
		fk := Fold(k)
		if fk == "" {
			continue
		}
		if strings.Contains(folded, fk) {
			return k, true
		}
	}

	return "", false
}

// skillKey turns a display name into the key used inside a skill category
func skillKey(name string) string {
	return strings.Join(strings.Fields(Fold(name)), "_")
}
