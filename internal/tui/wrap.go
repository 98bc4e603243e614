package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
	newline bool
	cursor  bool
}

// buildStyledRunes renders the tape. Characters before the cursor are typed, the cursor
// cell shows whether the last attempt there failed and the rest is pending.
func buildStyledRunes(buffer []rune, missed func(int) bool, cursor int) []styledRune {
	currentWord := wordForCursor(findWords(buffer), cursor)

	out := make([]styledRune, 0, len(buffer))
	for i, target := range buffer {
		displayed := target
		style := pendingStyle
		wrong := i <= cursor && missed(i)
		switch {
		case i < cursor && wrong:
			style = missedStyle
		case i < cursor:
			style = correctStyle
		case i == cursor && wrong:
			style = incorrectCursorStyle
		case i == cursor:
			style = cursorStyle
		case currentWord != nil && i >= currentWord.start && i < currentWord.end:
			style = currentWordStyle
		}
		switch {
		case target == ' ' && wrong:
			displayed = '•'
		case target == '\n':
			displayed = '⏎'
		case target == '\t':
			displayed = '→'
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: target == ' ',
			newline: target == '\n',
			cursor:  i == cursor,
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(buffer []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range buffer {
		if unicode.IsSpace(r) {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(buffer)})
	}
	return words
}

func wordForCursor(words []wordRange, cursor int) *wordRange {
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks the tape into lines no wider than width, preferring to break after
// a space. Newline targets always end their line. It returns the lines and the index of the
// line holding the cursor.
func wrapStyledRunes(runes []styledRune, width int) ([]string, int) {
	var lines []string
	cursorLine := 0
	flush := func(items []styledRune) {
		for _, item := range items {
			if item.cursor {
				cursorLine = len(lines)
			}
		}
		lines = append(lines, renderStyledRunes(items))
	}

	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1
	for i := 0; i < len(runes); {
		item := runes[i]
		if width > 0 && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				flush(line[:lastSpaceIdx+1])
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				flush(line)
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
		if item.newline {
			flush(line)
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
		}
	}
	if len(line) > 0 || len(lines) == 0 {
		flush(line)
	}
	return lines, cursorLine
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
