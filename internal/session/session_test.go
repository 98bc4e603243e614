package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/keyladder/internal/model"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixedSource struct {
	chunk string
	calls int
}

func (f *fixedSource) NextChunk(string) string {
	f.calls++
	return f.chunk
}

func typeString(s *Session, text string) {
	for _, r := range text {
		s.Press(KeyEvent{Key: string(r)})
	}
}

func TestCatScenario(t *testing.T) {
	clock := newFakeClock()
	s := New("cat", Options{Clock: clock.Now})
	assert.Equal(t, Idle, s.State())

	assert.Equal(t, Match, s.Press(KeyEvent{Key: "c"}))
	assert.Equal(t, Active, s.State())
	clock.Advance(time.Second)
	assert.Equal(t, Match, s.Press(KeyEvent{Key: "a"}))
	assert.Equal(t, Mismatch, s.Press(KeyEvent{Key: "x"}))

	c := s.Counters()
	assert.Equal(t, 1, c.Mistakes)
	assert.Equal(t, 3, c.Keystrokes)
	assert.Equal(t, 2, s.Cursor())
	assert.Equal(t, map[rune]int{'t': 1}, c.Errors)
	assert.True(t, s.Missed(2))

	clock.Advance(time.Second)
	assert.Equal(t, Match, s.Press(KeyEvent{Key: "t"}))
	assert.Equal(t, 3, s.Cursor())
	assert.Equal(t, Terminal, s.State())
	assert.Equal(t, model.EndCompleted, s.Reason())

	st := s.Stats()
	assert.Equal(t, 75, st.Accuracy)
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, 4, st.TotalChars)
	assert.InDelta(t, 2.0, st.ElapsedSeconds, 1e-9)
	assert.Equal(t, map[string]int{"t": 1}, st.ErrorHistogram)

	assert.Equal(t, Ignored, s.Press(KeyEvent{Key: "z"}))
	assert.False(t, s.Abandon())
}

func TestZeroMistakesDisqualifies(t *testing.T) {
	s := New(strings.Repeat("long text ", 20), Options{ZeroMistakes: true, Clock: newFakeClock().Now})
	assert.Equal(t, Mismatch, s.Press(KeyEvent{Key: "q"}))
	assert.Equal(t, Terminal, s.State())
	assert.Equal(t, model.EndDisqualified, s.Reason())
	assert.Equal(t, 1, s.Counters().Mistakes)
	assert.Equal(t, 0, s.Cursor())
}

func TestWPMFormula(t *testing.T) {
	st := Compute(300, 0, 60*time.Second)
	assert.Equal(t, 60, st.WPM)
	assert.Equal(t, 100, st.Accuracy)

	zero := Compute(0, 0, 0)
	assert.Equal(t, model.GameStats{}, zero)

	assert.Equal(t, 0, Compute(4, 9, time.Second).Accuracy)
}

func TestTimerStartsOnFirstKey(t *testing.T) {
	clock := newFakeClock()
	s := New("ab", Options{Clock: clock.Now})
	clock.Advance(time.Hour)
	s.Press(KeyEvent{Key: "a"})
	clock.Advance(6 * time.Second)
	s.Press(KeyEvent{Key: "b"})
	assert.Equal(t, clock.now.Add(-6*time.Second), s.StartedAt())
	assert.InDelta(t, 6.0, s.Stats().ElapsedSeconds, 1e-9)
	assert.Equal(t, 4, s.Stats().WPM)
}

func TestModifiersAreIgnored(t *testing.T) {
	s := New("A;", Options{Clock: newFakeClock().Now})
	for _, key := range []string{"Shift", "ControlLeft", "Alt", "Tab", "\t", "Meta"} {
		assert.Equal(t, Ignored, s.Press(KeyEvent{Key: key}), key)
	}
	assert.Equal(t, Idle, s.State())
	assert.True(t, s.ShiftHeld())

	assert.Equal(t, Match, s.Press(KeyEvent{Key: "KeyA"}))
	assert.Equal(t, Ignored, s.Press(KeyEvent{Key: "Shift", Release: true}))
	assert.False(t, s.ShiftHeld())
	assert.Equal(t, Match, s.Press(KeyEvent{Key: "Semicolon", Ctrl: true}))
	assert.Equal(t, 2, s.Counters().Keystrokes)
	assert.Equal(t, 0, s.Counters().Mistakes)
}

func TestCapsLockToggle(t *testing.T) {
	s := New("Ab", Options{Clock: newFakeClock().Now})
	assert.Equal(t, Ignored, s.Press(KeyEvent{Key: "CapsLock"}))
	assert.True(t, s.CapsLock())
	assert.Equal(t, Match, s.Press(KeyEvent{Key: "KeyA"}))
	s.Press(KeyEvent{Key: "CapsLock"})
	assert.Equal(t, Match, s.Press(KeyEvent{Key: "KeyB"}))
	assert.Equal(t, Terminal, s.State())
}

func TestModifiedWrongKeyIsMismatch(t *testing.T) {
	s := New("a", Options{Clock: newFakeClock().Now})
	assert.Equal(t, Mismatch, s.Press(KeyEvent{Key: "s", Ctrl: true}))
}

func TestEnDashMatchesMinus(t *testing.T) {
	s := New("a–b", Options{Clock: newFakeClock().Now})
	typeString(s, "a-b")
	assert.Equal(t, Terminal, s.State())
	assert.Equal(t, 0, s.Counters().Mistakes)
}

func TestEmptyBufferIsTerminal(t *testing.T) {
	s := New("", Options{Clock: newFakeClock().Now})
	assert.Equal(t, Terminal, s.State())
	assert.Equal(t, model.GameStats{}, s.Stats())
	assert.Equal(t, Ignored, s.Press(KeyEvent{Key: "a"}))
}

func TestSnapshotIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	s := New("hello world", Options{Clock: clock.Now})
	typeString(s, "hel")
	clock.Advance(3 * time.Second)
	s.Press(KeyEvent{Key: "x"})
	first := s.Stats()
	clock.Advance(10 * time.Second)
	assert.Equal(t, first, s.Stats())
	assert.Greater(t, first.ElapsedSeconds, 0.0)
}

func TestAbandonSnapshot(t *testing.T) {
	clock := newFakeClock()
	s := New("hello", Options{Clock: clock.Now})
	typeString(s, "he")
	clock.Advance(12 * time.Second)
	assert.True(t, s.Abandon())
	assert.Equal(t, model.EndAbandoned, s.Reason())
	st := s.Stats()
	assert.Equal(t, 2, st.TotalChars)
	assert.InDelta(t, 12.0, st.ElapsedSeconds, 1e-9)
	assert.Equal(t, st, s.Stats())
}

func TestLiveWPMFollowsClock(t *testing.T) {
	clock := newFakeClock()
	s := New(strings.Repeat("a", 100), Options{Clock: clock.Now})
	assert.Equal(t, 0, s.LiveWPM())
	typeString(s, strings.Repeat("a", 10))
	clock.Advance(12 * time.Second)
	assert.Equal(t, 10, s.LiveWPM())
	assert.Equal(t, 0, s.Stats().WPM)
}

func TestEndlessBufferStaysBounded(t *testing.T) {
	src := &fixedSource{chunk: strings.Repeat("abc ", 100)}
	s := New("start", Options{Source: src, Clock: newFakeClock().Now, Logger: zaptest.NewLogger(t).Sugar()})
	require.True(t, s.Endless())
	for i := 0; i < 5000; i++ {
		exp, ok := s.Expected()
		require.True(t, ok)
		require.Equal(t, Match, s.Press(KeyEvent{Key: string(exp)}))
		require.LessOrEqual(t, s.Cursor(), TrimAfter)
		require.LessOrEqual(t, len(s.Buffer())-s.Cursor(), RefillTo)
		require.GreaterOrEqual(t, len(s.Buffer())-s.Cursor(), LookAhead)
	}
	c := s.Counters()
	assert.Equal(t, 5000, c.Keystrokes)
	assert.Equal(t, 5000, c.Consumed+s.Cursor())
	assert.Equal(t, Active, s.State())
	assert.Greater(t, src.calls, 1)
}

func TestEndlessStartsWithInitialText(t *testing.T) {
	src := &fixedSource{chunk: "next"}
	s := New("first", Options{Source: src, Clock: newFakeClock().Now})
	assert.True(t, strings.HasPrefix(string(s.Buffer()), "first next"))
}

func TestEndlessDrySourceCompletes(t *testing.T) {
	src := &fixedSource{}
	s := New("ab", Options{Source: src, Clock: newFakeClock().Now})
	typeString(s, "ab")
	assert.Equal(t, Terminal, s.State())
	assert.Equal(t, model.EndCompleted, s.Reason())
}

func TestCountersAreCopies(t *testing.T) {
	s := New("ab", Options{Clock: newFakeClock().Now})
	s.Press(KeyEvent{Key: "x"})
	before := s.Counters()
	before.Errors['a'] = 99
	s.Press(KeyEvent{Key: "y"})
	assert.Equal(t, 2, s.Counters().Errors['a'])
	assert.Equal(t, 1, before.Mistakes)
}
