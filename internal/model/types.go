// Package model defines shared data structures.
package model

import "time"

// ShiftKey is the pseudo-character a stage lists in NewChars when it unlocks capitalization.
const ShiftKey = "Shift"

// Category selects which curated corpus a mastery stage draws from.
type Category string

// Corpus categories.
const (
	CategoryNone     Category = ""
	CategoryGeneral  Category = "general"
	CategoryBusiness Category = "business"
	CategoryCode     Category = "code"
	CategoryAll      Category = "all"
)

// Stage is one curriculum unit. Chars is cumulative and includes the space character.
type Stage struct {
	ID       int
	Name     string
	Chars    []string
	NewChars []string
	Category Category
}

// HasChar reports whether ch is listed in the stage's cumulative set.
func (s Stage) HasChar(ch string) bool {
	for _, c := range s.Chars {
		if c == ch {
			return true
		}
	}
	return false
}

// Config defines practice settings.
type Config struct {
	Lang         string
	Stage        int
	Level        int
	Endless      bool
	ZeroMistakes bool
	Seed         int64
	FocusWeak    bool
	WeakTop      int
	WeakFactor   float64
	WeakWindow   int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Stage       int
}

// GameStats is an immutable summary of a typing session.
type GameStats struct {
	WPM            int
	Accuracy       int
	Errors         int
	TotalChars     int
	ElapsedSeconds float64
	ErrorHistogram map[string]int
}

// EndReason describes why a session reached its terminal state.
type EndReason string

// End reasons.
const (
	EndNone         EndReason = ""
	EndCompleted    EndReason = "completed"
	EndDisqualified EndReason = "disqualified"
	EndAbandoned    EndReason = "abandoned"
)

// SessionRecord captures a finished session for persistence.
type SessionRecord struct {
	StartedAt     time.Time
	EndedAt       time.Time
	Lang          string
	Stage         int
	Level         int
	Endless       bool
	ZeroMistakes  bool
	Reason        EndReason
	ConsumedChars int
	Stats         GameStats
}

// CharAggregate aggregates mistyped-character counts across sessions.
type CharAggregate struct {
	Char   string
	Errors int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  int64
	UUID       string
	EndedAt    time.Time
	Stage      int
	Level      int
	Reason     EndReason
	WPM        int
	Accuracy   int
	Errors     int
	TotalChars int
	DurationMs int64
}

// StageBest holds the best result recorded for a stage and level.
type StageBest struct {
	Stage    int
	Level    int
	WPM      int
	Accuracy int
	Runs     int
}
