// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"strings"
	"unicode"

	"github.com/verte-zerg/keyladder/internal/keymap"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// CharSet is a set of typeable characters.
type CharSet map[rune]struct{}

// NewCharSet builds a CharSet from runes.
func NewCharSet(chars ...rune) CharSet {
	set := make(CharSet, len(chars))
	for _, r := range chars {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is typeable, checking the exact rune first, then its other case,
// then its keyboard equivalent.
func (s CharSet) Has(r rune) bool {
	if _, ok := s[r]; ok {
		return true
	}
	if _, ok := s[unicode.ToLower(r)]; ok {
		return true
	}
	if _, ok := s[unicode.ToUpper(r)]; ok {
		return true
	}
	if c := keymap.Canonical(r); c != r {
		return s.Has(c)
	}
	return false
}

// IsTypeable reports whether every character of word is in allowed. Empty words are not typeable.
func IsTypeable(word string, allowed CharSet) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !allowed.Has(r) {
			return false
		}
	}
	return true
}

// FilterCorpus keeps the items of corpus that are typeable with allowed, preserving order.
func FilterCorpus(corpus []string, allowed CharSet) []string {
	out := make([]string, 0, len(corpus))
	for _, item := range corpus {
		if IsTypeable(item, allowed) {
			out = append(out, item)
		}
	}
	return out
}

// FilterForLang returns a language-specific filter for plain word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	default:
		return filterLetters
	}
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

func filterLetters(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
