// Package keymap normalizes raw key names into the characters they produce.
package keymap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// namedKeys maps platform key names (lowercased) to the literal they type.
var namedKeys = map[string]rune{
	"space":          ' ',
	"spacebar":       ' ',
	"enter":          '\n',
	"return":         '\n',
	"numpadenter":    '\n',
	"period":         '.',
	"comma":          ',',
	"minus":          '-',
	"dash":           '-',
	"hyphen":         '-',
	"equal":          '=',
	"equals":         '=',
	"slash":          '/',
	"backslash":      '\\',
	"semicolon":      ';',
	"quote":          '\'',
	"apostrophe":     '\'',
	"backquote":      '`',
	"grave":          '`',
	"bracketleft":    '[',
	"bracketright":   ']',
	"numpadadd":      '+',
	"numpadminus":    '-',
	"numpadsubtract": '-',
	"numpadmultiply": '*',
	"numpaddivide":   '/',
	"numpaddecimal":  '.',
}

// shifted maps an unshifted US layout key to its shifted literal.
var shifted = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
	'-': '_', '=': '+', '[': '{', ']': '}', '\\': '|',
	';': ':', '\'': '"', ',': '<', '.': '>', '/': '?', '`': '~',
}

var modifiers = map[string]struct{}{
	"shift": {}, "shiftleft": {}, "shiftright": {}, "lshift": {}, "rshift": {},
	"control": {}, "ctrl": {}, "controlleft": {}, "controlright": {}, "lctrl": {}, "rctrl": {},
	"alt": {}, "altleft": {}, "altright": {}, "option": {}, "altgraph": {},
	"meta": {}, "metaleft": {}, "metaright": {}, "command": {}, "cmd": {}, "super": {},
	"tab": {},
}

// equivalents folds typographic characters onto what a keyboard types.
var equivalents = map[rune]rune{
	'–': '-',  // en dash
	'—': '-',  // em dash
	'−': '-',  // minus sign
	'‘': '\'', // left single quote
	'’': '\'', // right single quote
	'“': '"',
	'”': '"',
	' ': ' ', // no-break space
	'…': '.', // ellipsis, typed as its first dot
}

// IsModifier reports whether name is a modifier-only key (including tab).
func IsModifier(name string) bool {
	_, ok := modifiers[strings.ToLower(name)]
	return ok
}

// IsCapsLock reports whether name is the caps-lock toggle.
func IsCapsLock(name string) bool {
	switch strings.ToLower(name) {
	case "capslock", "caps_lock", "caps":
		return true
	}
	return false
}

// Normalize converts a raw key (literal character or named key) into the character it types.
// The second return is false when the key produces no character.
func Normalize(raw string, shift, capsLock bool) (rune, bool) {
	if raw == "" {
		return 0, false
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if r == '\t' {
			return 0, false
		}
		return r, true
	}
	name := strings.ToLower(raw)
	if IsModifier(name) || IsCapsLock(name) {
		return 0, false
	}
	if r, ok := namedKeys[name]; ok {
		if shift {
			if s, ok := shifted[r]; ok {
				return s, true
			}
		}
		return r, true
	}
	if rest, ok := strings.CutPrefix(name, "key"); ok && len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
		r := rune(rest[0])
		if shift != capsLock {
			r = unicode.ToUpper(r)
		}
		return r, true
	}
	for _, prefix := range []string{"digit", "numpad"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && len(rest) == 1 && rest[0] >= '0' && rest[0] <= '9' {
			r := rune(rest[0])
			if shift && prefix == "digit" {
				return shifted[r], true
			}
			return r, true
		}
	}
	return 0, false
}

// Canonical folds r through the equivalence table so targets and typed keys compare equal.
func Canonical(r rune) rune {
	if e, ok := equivalents[r]; ok {
		return e
	}
	return r
}

// Equal reports whether typed satisfies target.
func Equal(target, typed rune) bool {
	return Canonical(target) == Canonical(typed)
}
