// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/keyladder/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	minCurveWidth       = 10
	// Label column plus the min/max suffix around each sparkline.
	curveChrome = 30
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Resample averages values into at most width buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// TerminalWidth returns the width of the terminal behind f, or 80 when f is not a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// CurveWidthFor returns the sparkline width that fits in totalWidth columns.
func CurveWidthFor(totalWidth int) int {
	width := totalWidth - curveChrome
	if width < minCurveWidth {
		return minCurveWidth
	}
	return width
}

// Summary holds headline numbers over a set of sessions.
type Summary struct {
	Sessions     int
	Completed    int
	Disqualified int
	Abandoned    int
	AvgWPM       float64
	BestWPM      int
	AvgAccuracy  float64
	Errors       int
	Chars        int
	PracticeMs   int64
}

// Summarize aggregates sessions. Averages only cover completed sessions.
func Summarize(sessions []model.SessionAggregate) Summary {
	var sum Summary
	var totalWPM, totalAcc float64
	for _, s := range sessions {
		sum.Sessions++
		sum.Errors += s.Errors
		sum.Chars += s.TotalChars
		sum.PracticeMs += s.DurationMs
		switch s.Reason {
		case model.EndCompleted:
			sum.Completed++
			totalWPM += float64(s.WPM)
			totalAcc += float64(s.Accuracy)
			if s.WPM > sum.BestWPM {
				sum.BestWPM = s.WPM
			}
		case model.EndDisqualified:
			sum.Disqualified++
		case model.EndAbandoned:
			sum.Abandoned++
		}
	}
	if sum.Completed > 0 {
		sum.AvgWPM = totalWPM / float64(sum.Completed)
		sum.AvgAccuracy = totalAcc / float64(sum.Completed)
	}
	return sum
}

// RenderSummary prints a summary table for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (completed %d, disqualified %d, abandoned %d)",
			sum.Sessions, sum.Completed, sum.Disqualified, sum.Abandoned),
		fmt.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %d", sum.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy),
		fmt.Sprintf("Errors: %d over %d chars", sum.Errors, sum.Chars),
		fmt.Sprintf("Practice time: %s", formatDuration(sum.PracticeMs)),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints WPM and accuracy learning curves as sparklines.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	var completed []model.SessionAggregate
	for _, s := range sessions {
		if s.Reason == model.EndCompleted {
			completed = append(completed, s)
		}
	}
	if len(completed) == 0 {
		return nil
	}
	wpms := make([]float64, len(completed))
	accs := make([]float64, len(completed))
	for i, s := range completed {
		wpms[i] = float64(s.WPM)
		accs[i] = float64(s.Accuracy)
	}
	lines := []string{fmt.Sprintf("Learning Curves (moving average of %d)", max(window, 1))}
	lines = append(lines, curveLine("WPM", MovingAverage(wpms, window), width, "%.0f"))
	lines = append(lines, curveLine("Accuracy", MovingAverage(accs, window), width, "%.0f%%"))
	lines = append(lines, "")
	return writeLines(w, lines)
}

func curveLine(name string, values []float64, width int, format string) string {
	minVal, maxVal := minMax(values)
	spark := Sparkline(Resample(values, width))
	return fmt.Sprintf("%-9s %s  min "+format+" max "+format, name, spark, minVal, maxVal)
}

func formatDuration(ms int64) string {
	secs := ms / 1000
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
