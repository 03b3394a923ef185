// Package locale defines the closed set of languages the site is published in.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Tag identifies a supported language.
type Tag string

const (
	FR Tag = "fr"
	DE Tag = "de"
	EN Tag = "en"
	SR Tag = "sr"
)

// Default is the language served without a URL prefix and stored in unsuffixed files.
const Default = FR

// all is ordered: default first, then the prefixed locales in routing order.
var all = [...]Tag{FR, DE, EN, SR}

var matcher = language.NewMatcher([]language.Tag{
	language.French,
	language.German,
	language.English,
	language.Serbian,
})

func (t Tag) String() string { return string(t) }

// IsDefault reports whether t is the default locale.
func (t Tag) IsDefault() bool { return t == Default }

// All returns every supported locale, default first.
func All() []Tag {
	out := make([]Tag, len(all))
	copy(out, all[:])
	return out
}

// NonDefault returns the locales that are served under a /{locale} prefix.
func NonDefault() []Tag {
	out := make([]Tag, 0, len(all)-1)
	for _, t := range all {
		if t != Default {
			out = append(out, t)
		}
	}
	return out
}

// Strings returns All as plain strings.
func Strings() []string {
	out := make([]string, 0, len(all))
	for _, t := range all {
		out = append(out, string(t))
	}
	return out
}

// Parse returns the Tag for s. Matching is exact after trimming and lower-casing;
// region subtags are not accepted here because they never appear in URLs or filenames.
func Parse(s string) (Tag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range all {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsSupported reports whether s names a supported locale.
func IsSupported(s string) bool {
	_, ok := Parse(s)
	return ok
}

// HasSuffix reports whether a path segment ends in ".{locale}" for any supported locale,
// e.g. "danse.de".
func HasSuffix(segment string) bool {
	_, ok := SuffixOf(segment)
	return ok
}

// SuffixOf returns the locale encoded as a ".{locale}" suffix of segment.
func SuffixOf(segment string) (Tag, bool) {
	dot := strings.LastIndexByte(segment, '.')
	if dot <= 0 || dot == len(segment)-1 {
		return "", false
	}
	return Parse(segment[dot+1:])
}

// StripSuffix removes a trailing ".{locale}" from segment. Segments without a locale
// suffix are returned unchanged.
func StripSuffix(segment string) string {
	if _, ok := SuffixOf(segment); !ok {
		return segment
	}
	return segment[:strings.LastIndexByte(segment, '.')]
}

// Match picks the best supported locale for an Accept-Language header value.
// An empty or unparsable header yields Default.
func Match(acceptLanguage string) Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(all) {
		return Default
	}
	return all[idx]
}
