// Package charpool derives the character working sets a stage offers to generation.
package charpool

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/keyladder/internal/keymap"
	"github.com/verte-zerg/keyladder/internal/model"
)

// Punctuation is the set of marks that count as sentence punctuation.
const Punctuation = ".,!?:;-"

// Terminal marks end a sentence.
const Terminal = ".!?"

const vowels = "aeiouyàáâäãåèéêëìíîïòóôöõùúûüýæœ"

// Pool holds the views over a stage's characters. It is recomputed per call, never cached.
type Pool struct {
	// All is every single non-space character of the stage, in stage order.
	All []rune
	// New is the stage's newly introduced characters, or All when none are new.
	New         []rune
	Letters     []rune
	Vowels      []rune
	Consonants  []rune
	Punctuation []rune
	Digits      []rune
	Symbols     []rune
	Left        []rune
	Right       []rune
}

// FromStage builds the pool for a stage.
func FromStage(st model.Stage) Pool {
	p := Pool{}
	seen := map[rune]struct{}{}
	for _, c := range st.Chars {
		r, ok := single(c)
		if !ok || unicode.IsSpace(r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		p.All = append(p.All, r)
	}
	for _, c := range st.NewChars {
		if c == model.ShiftKey {
			continue
		}
		r, ok := single(c)
		if !ok || unicode.IsSpace(r) {
			continue
		}
		if _, in := seen[r]; in && !containsRune(p.New, r) {
			p.New = append(p.New, r)
		}
	}
	if len(p.New) == 0 {
		p.New = append([]rune(nil), p.All...)
	}
	for _, r := range p.All {
		switch {
		case unicode.IsLetter(r):
			p.Letters = append(p.Letters, r)
			if IsVowel(r) {
				p.Vowels = append(p.Vowels, r)
			} else {
				p.Consonants = append(p.Consonants, r)
			}
		case unicode.IsDigit(r):
			p.Digits = append(p.Digits, r)
		}
		if strings.ContainsRune(Punctuation, r) {
			p.Punctuation = append(p.Punctuation, r)
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			p.Symbols = append(p.Symbols, r)
		}
		switch keymap.HandOf(r) {
		case keymap.HandLeft:
			p.Left = append(p.Left, r)
		case keymap.HandRight:
			p.Right = append(p.Right, r)
		}
	}
	return p
}

// Words returns the characters pseudo-words are built from: letters when the stage has any,
// otherwise everything.
func (p Pool) Words() []rune {
	if len(p.Letters) > 0 {
		return p.Letters
	}
	return p.All
}

// Empty reports whether the stage offers nothing to type besides space.
func (p Pool) Empty() bool {
	return len(p.All) == 0
}

// TerminalMarks returns the pool's sentence-ending marks, falling back to any punctuation.
func (p Pool) TerminalMarks() []rune {
	out := filter(p.Punctuation, Terminal)
	if len(out) == 0 {
		return p.Punctuation
	}
	return out
}

// InnerMarks returns punctuation suitable after an interior token.
func (p Pool) InnerMarks() []rune {
	out := filter(p.Punctuation, ",;:")
	if len(out) == 0 {
		return p.Punctuation
	}
	return out
}

// IsVowel reports whether r is a vowel, case-insensitively.
func IsVowel(r rune) bool {
	return strings.ContainsRune(vowels, unicode.ToLower(r))
}

// Set returns the stage's characters as a lookup set, space included.
func Set(st model.Stage) map[rune]struct{} {
	set := make(map[rune]struct{}, len(st.Chars))
	for _, c := range st.Chars {
		if r, ok := single(c); ok {
			set[r] = struct{}{}
		}
	}
	return set
}

func single(c string) (rune, bool) {
	if utf8.RuneCountInString(c) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c)
	return r, true
}

func filter(rs []rune, allowed string) []rune {
	var out []rune
	for _, r := range rs {
		if strings.ContainsRune(allowed, r) {
			out = append(out, r)
		}
	}
	return out
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}
