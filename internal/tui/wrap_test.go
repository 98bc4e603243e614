package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missedAt(idx ...int) func(int) bool {
	set := map[int]bool{}
	for _, i := range idx {
		set[i] = true
	}
	return func(i int) bool { return set[i] }
}

func TestBuildStyledRunesCursor(t *testing.T) {
	runes := buildStyledRunes([]rune("ab"), missedAt(), 1)
	require.Len(t, runes, 2)
	assert.Equal(t, correctStyle.Render("a"), runes[0].s)
	assert.Equal(t, cursorStyle.Render("b"), runes[1].s)
	assert.True(t, runes[1].cursor)
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := buildStyledRunes([]rune("a"), missedAt(), 1)
	require.Len(t, runes, 1)
	assert.Equal(t, correctStyle.Render("a"), runes[0].s)
	assert.False(t, runes[0].cursor)
}

func TestBuildStyledRunesMissedStaysMarked(t *testing.T) {
	runes := buildStyledRunes([]rune("abc"), missedAt(0, 1), 1)
	assert.Equal(t, missedStyle.Render("a"), runes[0].s)
	assert.Equal(t, incorrectCursorStyle.Render("b"), runes[1].s)
	assert.Equal(t, pendingStyle.Render("c"), runes[2].s)
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := buildStyledRunes([]rune("one two"), missedAt(), 1)
	assert.Equal(t, correctStyle.Render("o"), runes[0].s)
	assert.Equal(t, cursorStyle.Render("n"), runes[1].s)
	assert.Equal(t, currentWordStyle.Render("e"), runes[2].s)
	assert.Equal(t, pendingStyle.Render("t"), runes[4].s)
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	runes := buildStyledRunes([]rune("a b"), missedAt(1), 1)
	require.Len(t, runes, 3)
	assert.Equal(t, incorrectCursorStyle.Render("•"), runes[1].s)
}

func TestBuildStyledRunesVisibleWhitespace(t *testing.T) {
	runes := buildStyledRunes([]rune("a\n\tb"), missedAt(), 0)
	assert.Equal(t, pendingStyle.Render("⏎"), runes[1].s)
	assert.True(t, runes[1].newline)
	assert.Equal(t, pendingStyle.Render("→"), runes[2].s)
}

func TestWrapStyledRunes(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	runes := buildStyledRunes([]rune("aaa bbb ccc"), missedAt(), 9)
	lines, cursorLine := wrapStyledRunes(runes, 8)
	assert.Equal(t, []string{"aaa bbb ", "c" + cursorStyle.Render("c") + "c"}, lines)
	assert.Equal(t, 1, cursorLine)

	lines, _ = wrapStyledRunes(buildStyledRunes([]rune("aaa bbb ccc"), missedAt(), 11), 0)
	assert.Equal(t, []string{"aaa bbb ccc"}, lines)
}

func TestWrapStyledRunesHardBreaks(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	runes := buildStyledRunes([]rune("abcdef"), missedAt(), 0)
	lines, cursorLine := wrapStyledRunes(runes, 4)
	assert.Equal(t, []string{cursorStyle.Render("a") + "bcd", "ef"}, lines)
	assert.Equal(t, 0, cursorLine)

	runes = buildStyledRunes([]rune("if x\n\treturn"), missedAt(), 6)
	lines, cursorLine = wrapStyledRunes(runes, 40)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "⏎"))
	assert.Equal(t, 1, cursorLine)
}

func TestWrapEmpty(t *testing.T) {
	lines, cursorLine := wrapStyledRunes(nil, 10)
	assert.Equal(t, []string{""}, lines)
	assert.Equal(t, 0, cursorLine)
}
