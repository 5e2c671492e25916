package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casing is how a body is re-cased to follow the typed trigger.
type Casing int

const (
	CasingNone Casing = iota
	CasingUppercase
	CasingCapitalize
	CasingCapitalizeWords
)

// Uppercase styles accepted by propagate_case matches.
const (
	StyleUppercase       = "uppercase"
	StyleCapitalize      = "capitalize"
	StyleCapitalizeWords = "capitalize_words"
)

// CasingFromTrigger derives the casing from the literal typed trigger.
// A trigger whose letters are all upper case (at least two) gives
// upper case; one whose first letter is upper case gives capitalization,
// per word when style is capitalize_words.
func CasingFromTrigger(typed, style string) Casing {
	var letters []rune
	for _, r := range typed {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 || !unicode.IsUpper(letters[0]) {
		return CasingNone
	}

	allUpper := len(letters) >= 2
	for _, r := range letters[1:] {
		if !unicode.IsUpper(r) {
			allUpper = false
			break
		}
	}

	switch {
	case allUpper && style != StyleCapitalize && style != StyleCapitalizeWords:
		return CasingUppercase
	case style == StyleCapitalizeWords:
		return CasingCapitalizeWords
	default:
		return CasingCapitalize
	}
}

// ApplyCasing re-cases body.
func ApplyCasing(body string, c Casing) string {
	switch c {
	case CasingUppercase:
		return cases.Upper(language.Und).String(body)
	case CasingCapitalizeWords:
		return cases.Title(language.Und, cases.NoLower).String(body)
	case CasingCapitalize:
		idx := strings.IndexFunc(body, unicode.IsLetter)
		if idx < 0 {
			return body
		}
		r := []rune(body[idx:])[0]
		return body[:idx] + cases.Upper(language.Und).String(string(r)) + body[idx+len(string(r)):]
	}
	return body
}
