package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw    string
		shift  bool
		caps   bool
		want   rune
		wantOK bool
	}{
		{raw: "a", want: 'a', wantOK: true},
		{raw: "–", want: '–', wantOK: true},
		{raw: "Space", want: ' ', wantOK: true},
		{raw: "Enter", want: '\n', wantOK: true},
		{raw: "Period", want: '.', wantOK: true},
		{raw: "Period", shift: true, want: '>', wantOK: true},
		{raw: "Minus", want: '-', wantOK: true},
		{raw: "KeyQ", want: 'q', wantOK: true},
		{raw: "KeyQ", shift: true, want: 'Q', wantOK: true},
		{raw: "KeyQ", caps: true, want: 'Q', wantOK: true},
		{raw: "KeyQ", shift: true, caps: true, want: 'q', wantOK: true},
		{raw: "Digit1", shift: true, want: '!', wantOK: true},
		{raw: "Numpad7", shift: true, want: '7', wantOK: true},
		{raw: "ShiftLeft"},
		{raw: "CapsLock"},
		{raw: "\t"},
		{raw: "F13"},
		{raw: ""},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.raw, tc.shift, tc.caps)
		assert.Equal(t, tc.wantOK, ok, "%q", tc.raw)
		if tc.wantOK {
			assert.Equal(t, string(tc.want), string(got), "%q", tc.raw)
		}
	}
}

func TestEquivalence(t *testing.T) {
	assert.True(t, Equal('–', '-'))
	assert.True(t, Equal('—', '-'))
	assert.True(t, Equal('’', '\''))
	assert.True(t, Equal('“', '"'))
	assert.True(t, Equal(' ', ' '))
	assert.False(t, Equal('-', '_'))
	assert.Equal(t, 'x', Canonical('x'))
}

func TestModifierNames(t *testing.T) {
	for _, name := range []string{"Shift", "ControlRight", "AltLeft", "Meta", "Tab"} {
		assert.True(t, IsModifier(name), name)
	}
	assert.False(t, IsModifier("KeyA"))
	assert.True(t, IsCapsLock("CapsLock"))
	assert.False(t, IsCapsLock("Shift"))
}

func TestHands(t *testing.T) {
	assert.Equal(t, HandLeft, HandOf('f'))
	assert.Equal(t, HandRight, HandOf('J'))
	assert.Equal(t, LeftIndex, FingerOf('g'))
	assert.Equal(t, RightPinky, FingerOf(';'))
	assert.Equal(t, RightPinky, FingerOf('–'))
	assert.Equal(t, HandNone, HandOf('€'))
	assert.Equal(t, HandNone, HandOf(' '))
	assert.Equal(t, "L index", LeftIndex.String())
}
