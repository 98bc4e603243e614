// Package session implements the typing session state machine: it matches key events
// against a target buffer, keeps counters and produces statistics snapshots.
package session

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/keyladder/internal/keymap"
	"github.com/verte-zerg/keyladder/internal/model"
)

// Endless buffer bounds, in characters.
const (
	// LookAhead is the minimum number of characters kept ahead of the cursor.
	LookAhead = 50
	// RefillTo is how far ahead the buffer is topped up once it runs low.
	RefillTo = 150
	// TrimAfter is the cursor position past which the front of the buffer is dropped.
	TrimAfter = 200
	// TrimSize is how many characters one trim drops.
	TrimSize = 100
)

const maxEmptyChunks = 3

// KeyEvent is one key press or release from an input layer.
type KeyEvent struct {
	// Key is a literal character ("a", "-") or a named key ("Space", "Shift", "KeyA").
	Key      string
	Shift    bool
	Ctrl     bool
	Alt      bool
	Meta     bool
	CapsLock bool
	Release  bool
}

// Outcome classifies how a key event was handled.
type Outcome int

const (
	Ignored Outcome = iota
	Match
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "ignored"
	}
}

// State is the lifecycle phase of a session.
type State int

const (
	Idle State = iota
	Active
	Terminal
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Terminal:
		return "terminal"
	default:
		return "idle"
	}
}

// ChunkSource supplies more text to endless sessions.
type ChunkSource interface {
	NextChunk(lang string) string
}

// Options configure a Session.
type Options struct {
	// ZeroMistakes ends the session on its first mismatch.
	ZeroMistakes bool
	// Source turns the session endless. The initial text is streamed in through the same
	// bounded buffer as later chunks.
	Source ChunkSource
	Lang   string
	Clock  func() time.Time
	Logger *zap.SugaredLogger
}

// Session is a single typing run. It is not safe for concurrent use; one input loop owns it.
type Session struct {
	buffer  []rune
	missed  []bool
	pending []rune
	cursor  int

	counters Counters
	state    State
	reason   model.EndReason
	last     Outcome

	startedAt time.Time
	lastKeyAt time.Time
	endedAt   time.Time

	shift    bool
	capsLock bool

	opts  Options
	clock func() time.Time
	log   *zap.SugaredLogger
}

// New starts a session over text. An empty buffer makes the session terminal at once.
func New(text string, opts Options) *Session {
	s := &Session{
		opts:  opts,
		clock: opts.Clock,
		log:   opts.Logger,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.Endless() {
		s.pending = []rune(text)
		s.extend()
	} else {
		s.buffer = []rune(text)
		s.missed = make([]bool, len(s.buffer))
	}
	if len(s.buffer) == 0 {
		s.finish(model.EndCompleted, s.clock())
	}
	return s
}

// Press feeds one key event through the state machine.
func (s *Session) Press(ev KeyEvent) Outcome {
	if s.state == Terminal {
		return Ignored
	}
	if keymap.IsModifier(ev.Key) {
		if isShift(ev.Key) {
			s.shift = !ev.Release
		}
		return Ignored
	}
	if keymap.IsCapsLock(ev.Key) {
		if !ev.Release {
			s.capsLock = !s.capsLock
		}
		return Ignored
	}
	if ev.Release {
		return Ignored
	}
	typed, ok := keymap.Normalize(ev.Key, ev.Shift || s.shift, ev.CapsLock || s.capsLock)
	if !ok {
		return Ignored
	}

	now := s.clock()
	if s.state == Idle {
		s.state = Active
		s.startedAt = now
	}
	s.lastKeyAt = now
	expected := s.buffer[s.cursor]

	if !keymap.Equal(expected, typed) {
		s.counters = s.counters.record(Mismatch, expected)
		s.missed[s.cursor] = true
		s.last = Mismatch
		if s.opts.ZeroMistakes {
			s.log.Debugw("session disqualified", "expected", string(expected), "typed", string(typed))
			s.finish(model.EndDisqualified, now)
		}
		return Mismatch
	}

	s.counters = s.counters.record(Match, expected)
	s.cursor++
	s.last = Match
	if s.Endless() {
		s.extend()
		s.trim()
	}
	if s.cursor >= len(s.buffer) {
		s.finish(model.EndCompleted, now)
	}
	return Match
}

// Abandon ends a non-terminal session at the current time. It reports whether the
// session was still running.
func (s *Session) Abandon() bool {
	if s.state == Terminal {
		return false
	}
	s.finish(model.EndAbandoned, s.clock())
	return true
}

// Stats returns the statistics snapshot. For a running session the elapsed time is
// measured up to the last scored keystroke, so repeated calls agree.
func (s *Session) Stats() model.GameStats {
	end := s.lastKeyAt
	if s.state == Terminal {
		end = s.endedAt
	}
	var elapsed time.Duration
	if !s.startedAt.IsZero() && end.After(s.startedAt) {
		elapsed = end.Sub(s.startedAt)
	}
	st := Compute(s.counters.Keystrokes, s.counters.Mistakes, elapsed)
	if len(s.counters.Errors) > 0 {
		st.ErrorHistogram = make(map[string]int, len(s.counters.Errors))
		for r, n := range s.counters.Errors {
			st.ErrorHistogram[string(r)] += n
		}
	}
	return st
}

// LiveWPM estimates the current speed against the clock. It is for display only.
func (s *Session) LiveWPM() int {
	switch s.state {
	case Active:
		return Compute(s.counters.Keystrokes, s.counters.Mistakes, s.clock().Sub(s.startedAt)).WPM
	case Terminal:
		return s.Stats().WPM
	default:
		return 0
	}
}

// Buffer returns the current target characters. Callers must not modify it.
func (s *Session) Buffer() []rune { return s.buffer }

// Missed reports whether the character at buffer index i was ever mistyped.
func (s *Session) Missed(i int) bool {
	return i >= 0 && i < len(s.missed) && s.missed[i]
}

// Cursor returns the index of the next expected character.
func (s *Session) Cursor() int { return s.cursor }

// Expected returns the character under the cursor.
func (s *Session) Expected() (rune, bool) {
	if s.cursor >= len(s.buffer) {
		return 0, false
	}
	return s.buffer[s.cursor], true
}

// Counters returns a copy of the running counters.
func (s *Session) Counters() Counters { return s.counters.clone() }

// State returns the lifecycle phase.
func (s *Session) State() State { return s.state }

// Reason returns why a terminal session ended.
func (s *Session) Reason() model.EndReason { return s.reason }

// Last returns the outcome of the most recent scored key.
func (s *Session) Last() Outcome { return s.last }

// Endless reports whether the buffer is streamed from a chunk source.
func (s *Session) Endless() bool { return s.opts.Source != nil }

// ZeroMistakes reports whether the first mistake disqualifies the run.
func (s *Session) ZeroMistakes() bool { return s.opts.ZeroMistakes }

// ShiftHeld and CapsLock expose modifier state for on-screen keyboards.
func (s *Session) ShiftHeld() bool { return s.shift }

func (s *Session) CapsLock() bool { return s.capsLock }

// StartedAt is the time of the first scored keystroke, zero before it.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// EndedAt is the time the session turned terminal.
func (s *Session) EndedAt() time.Time { return s.endedAt }

func (s *Session) finish(reason model.EndReason, at time.Time) {
	s.state = Terminal
	s.reason = reason
	s.endedAt = at
}

// extend tops up the look-ahead from pending text, pulling new chunks when it runs dry.
func (s *Session) extend() {
	ahead := len(s.buffer) - s.cursor
	if ahead >= LookAhead {
		return
	}
	for empty := 0; len(s.pending) < RefillTo-ahead && empty < maxEmptyChunks; {
		chunk := []rune(s.opts.Source.NextChunk(s.opts.Lang))
		if len(chunk) == 0 {
			empty++
			continue
		}
		if len(s.pending) > 0 || len(s.buffer) > 0 {
			s.pending = append(s.pending, ' ')
		}
		s.pending = append(s.pending, chunk...)
	}
	n := RefillTo - ahead
	if n > len(s.pending) {
		n = len(s.pending)
	}
	s.buffer = append(s.buffer, s.pending[:n]...)
	s.missed = append(s.missed, make([]bool, n)...)
	s.pending = append(s.pending[:0], s.pending[n:]...)
	s.log.Debugw("extended endless buffer", "added", n, "buffer", len(s.buffer), "cursor", s.cursor)
}

func (s *Session) trim() {
	if s.cursor <= TrimAfter {
		return
	}
	s.buffer = append(s.buffer[:0], s.buffer[TrimSize:]...)
	s.missed = append(s.missed[:0], s.missed[TrimSize:]...)
	s.cursor -= TrimSize
	s.counters.Consumed += TrimSize
	s.log.Debugw("trimmed endless buffer", "consumed", s.counters.Consumed, "cursor", s.cursor)
}

func isShift(name string) bool {
	return strings.Contains(strings.ToLower(name), "shift")
}
