// Package textfold normalises free text before lexical matching.
//
// Catalog exports mix Polish diacritics with plain ASCII spellings of the
// same product names, so every comparison in the matching pipeline runs on
// folded text.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ASCII strips combining marks so that e.g. "opakowań" becomes "opakowan".
// Characters without a decomposition (such as "ł") are mapped explicitly.
func ASCII(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case 'ł':
			return 'l'
		case 'Ł':
			return 'L'
		}
		return r
	}, folded)
}

// Normalize folds diacritics and lower-cases in one step.
func Normalize(s string) string {
	return strings.ToLower(ASCII(s))
}
