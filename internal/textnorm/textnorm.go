// Package textnorm folds free text typed by users into comparable forms.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	spaces     = regexp.MustCompile(`\s+`)
	nonDigits  = regexp.MustCompile(`\D`)
	coverSplit = ","
)

// StripAccents removes combining marks, so "Olá" becomes "Ola".
func StripAccents(s string) string {
	if s == "" {
		return ""
	}
	// Chains keep state between calls, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases, trims, strips accents and collapses whitespace. It is the
// comparison form for command and yes/no tokens.
func Fold(s string) string {
	s = StripAccents(strings.ToLower(strings.TrimSpace(s)))
	return spaces.ReplaceAllString(s, " ")
}

// Neighborhood normalizes a neighborhood name: lowercase, no accents, no
// punctuation, single spaces.
func Neighborhood(s string) string {
	s = StripAccents(strings.ToLower(strings.TrimSpace(s)))
	s = nonWord.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CoverageTokens splits a comma-separated coverage area into normalized
// neighborhoods, dropping empty entries.
func CoverageTokens(area string) []string {
	var tokens []string
	for _, part := range strings.Split(area, coverSplit) {
		if n := Neighborhood(part); n != "" {
			tokens = append(tokens, n)
		}
	}
	return tokens
}

// LocationCandidates returns the normalized forms a pickup location may match
// against coverage tokens: the whole text and each comma-separated part.
// "Centro, SP" yields ["centro sp", "centro", "sp"].
func LocationCandidates(location string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(Neighborhood(location))
	for _, part := range CoverageTokens(location) {
		add(part)
	}
	return out
}

// Covers reports whether location falls within a comma-separated coverage area.
func Covers(coverageArea, location string) bool {
	tokens := CoverageTokens(coverageArea)
	if len(tokens) == 0 {
		return false
	}
	for _, candidate := range LocationCandidates(location) {
		for _, token := range tokens {
			if candidate == token {
				return true
			}
		}
	}
	return false
}

// Phone normalizes Brazilian numbers to +55 international form. Anything it
// cannot recognize is returned unchanged.
func Phone(phone string) string {
	if phone == "" {
		return ""
	}
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10 || len(digits) == 11:
		return "+55" + digits
	case len(digits) == 13 && strings.HasPrefix(digits, "55"):
		return "+" + digits
	}
	return phone
}
