// Package textnorm provides the case and accent folding used to compare
// questions against stored agent and campaign names.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents decomposes s and drops every combining mark.
func StripAccents(s string) string {
	// transformers keep state, so each call builds its own chain
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold returns the lowercase, accent-free form of s.
func Fold(s string) string {
	return StripAccents(strings.ToLower(s))
}

// Upper is the form stored in the table for names and campaigns.
func Upper(s string) string {
	return strings.ToUpper(StripAccents(strings.TrimSpace(s)))
}

// Title capitalizes each word and lowercases the rest ("JUAN PEREZ" -> "Juan Perez").
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}
