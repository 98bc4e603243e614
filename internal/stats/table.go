package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keyladder/internal/keymap"
	"github.com/verte-zerg/keyladder/internal/model"
)

// ErrorRow is one line of the mistyped-character table.
type ErrorRow struct {
	Label  string
	Finger string
	Errors int
	Share  float64
}

// ErrorRows ranks aggregates by error count and attaches the finger that types each char.
// top limits the rows; zero or less keeps all.
func ErrorRows(aggs []model.CharAggregate, top int) []ErrorRow {
	total := 0
	for _, agg := range aggs {
		total += agg.Errors
	}
	ranked := rankByErrors(aggs)
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}
	rows := make([]ErrorRow, 0, len(ranked))
	for _, agg := range ranked {
		row := ErrorRow{Label: CharLabel(agg.Char), Finger: keymap.FingerNone.String(), Errors: agg.Errors}
		if r := []rune(agg.Char); len(r) > 0 {
			row.Finger = keymap.FingerOf(r[0]).String()
		}
		if total > 0 {
			row.Share = float64(agg.Errors) / float64(total) * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// CharLabel makes whitespace characters visible in tables.
func CharLabel(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\n":
		return "<enter>"
	case "\t":
		return "<tab>"
	default:
		return ch
	}
}

// RenderErrorTable prints the most mistyped characters.
func RenderErrorTable(w io.Writer, aggs []model.CharAggregate, top int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No mistyped characters recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Mistyped Characters"); err != nil {
		return err
	}
	headers := []string{"Char", "Finger", "Errors", "Share"}
	tableRows := make([][]string, 0, len(aggs))
	for _, r := range ErrorRows(aggs, top) {
		tableRows = append(tableRows, []string{
			r.Label,
			r.Finger,
			fmt.Sprintf("%d", r.Errors),
			fmt.Sprintf("%.1f%%", r.Share),
		})
	}
	lines := formatTable(headers, tableRows, map[int]bool{2: true, 3: true})
	return writeLines(w, append(lines, ""))
}

// RenderStageTable prints the best completed run for every practiced stage and level.
func RenderStageTable(w io.Writer, best []model.StageBest, names map[int]string) error {
	if len(best) == 0 {
		_, err := fmt.Fprintln(w, "No stages practiced yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Stages"); err != nil {
		return err
	}
	headers := []string{"Stage", "Name", "Level", "Best WPM", "Best Acc", "Runs"}
	tableRows := make([][]string, 0, len(best))
	for _, b := range best {
		name := names[b.Stage]
		if name == "" {
			name = "-"
		}
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", b.Stage),
			name,
			fmt.Sprintf("%d", b.Level),
			fmt.Sprintf("%d", b.WPM),
			fmt.Sprintf("%d%%", b.Accuracy),
			fmt.Sprintf("%d", b.Runs),
		})
	}
	lines := formatTable(headers, tableRows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true})
	return writeLines(w, append(lines, ""))
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		if rightAlignCols[i] {
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		} else {
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
	}
	return strings.TrimRight(b.String(), " ")
}
