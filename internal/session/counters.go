package session

import (
	"math"
	"time"

	"github.com/verte-zerg/keyladder/internal/model"
)

// Counters are the running tallies of a session. Session.Press is the only code that
// replaces them; every other accessor hands out a copy.
type Counters struct {
	Keystrokes int
	Mistakes   int
	Consumed   int
	Errors     map[rune]int
}

// record returns the counters after one scored keystroke. The receiver is left untouched.
func (c Counters) record(outcome Outcome, expected rune) Counters {
	next := c
	switch outcome {
	case Match:
		next.Keystrokes++
	case Mismatch:
		next.Keystrokes++
		next.Mistakes++
		next.Errors = make(map[rune]int, len(c.Errors)+1)
		for r, n := range c.Errors {
			next.Errors[r] = n
		}
		next.Errors[expected]++
	}
	return next
}

func (c Counters) clone() Counters {
	out := c
	if c.Errors != nil {
		out.Errors = make(map[rune]int, len(c.Errors))
		for r, n := range c.Errors {
			out.Errors[r] = n
		}
	}
	return out
}

// Compute derives a statistics snapshot from keystroke totals and elapsed time using the
// five-characters-per-word convention.
func Compute(keystrokes, mistakes int, elapsed time.Duration) model.GameStats {
	st := model.GameStats{
		Errors:     mistakes,
		TotalChars: keystrokes,
	}
	if elapsed > 0 {
		st.ElapsedSeconds = elapsed.Seconds()
		st.WPM = int(math.Round((float64(keystrokes) / 5) / (st.ElapsedSeconds / 60)))
	}
	if keystrokes > 0 {
		acc := int(math.Round(float64(keystrokes-mistakes) / float64(keystrokes) * 100))
		if acc < 0 {
			acc = 0
		}
		st.Accuracy = acc
	}
	return st
}
