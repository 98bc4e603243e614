package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/keyladder/internal/generator"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/session"
	"github.com/verte-zerg/keyladder/internal/stages"
)

type fakeStore struct {
	records     []model.SessionRecord
	recent      []model.CharAggregate
	recentCalls int
}

func (f *fakeStore) InsertSession(_ context.Context, rec model.SessionRecord) (int64, string, error) {
	f.records = append(f.records, rec)
	return int64(len(f.records)), "uuid", nil
}

func (f *fakeStore) ListSessions(context.Context, model.StatsConfig) ([]model.SessionAggregate, error) {
	out := make([]model.SessionAggregate, 0, len(f.records))
	for i, rec := range f.records {
		out = append(out, model.SessionAggregate{
			SessionID: int64(i + 1),
			Reason:    rec.Reason,
			WPM:       rec.Stats.WPM,
			Accuracy:  rec.Stats.Accuracy,
		})
	}
	return out, nil
}

func (f *fakeStore) RecentErrors(context.Context, int, string) ([]model.CharAggregate, error) {
	f.recentCalls++
	return f.recent, nil
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(150 * time.Millisecond)
	return c.now
}

func newTestModel(t *testing.T, cfg model.Config, st *fakeStore) *Model {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	stage, err := stages.Default().Find(1)
	require.NoError(t, err)
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	clock := &stepClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	log := zaptest.NewLogger(t).Sugar()
	m := NewModel(Options{
		Config:    cfg,
		Stage:     stage,
		Mix:       generator.DefaultMix(),
		Generator: generator.New(generator.WithSeed(7), generator.WithLogger(log)),
		Store:     st,
		Logger:    log,
		Clock:     clock.Now,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func keyFor(r rune) tea.KeyMsg {
	switch r {
	case ' ':
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case '\n':
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeExpected(m *Model, n int) {
	for i := 0; i < n; i++ {
		r, ok := m.sess.Expected()
		if !ok {
			return
		}
		m.Update(keyFor(r))
	}
}

func TestCompleteSessionShowsResults(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{}, st)
	require.Equal(t, screenTyping, m.screen)
	assert.Contains(t, m.View(), "Stage 1")

	typeExpected(m, len(m.sess.Buffer()))
	require.Equal(t, screenResults, m.screen)
	require.Len(t, st.records, 1)
	rec := st.records[0]
	assert.Equal(t, model.EndCompleted, rec.Reason)
	assert.Equal(t, 1, rec.Stage)
	assert.Equal(t, 100, rec.Stats.Accuracy)
	assert.Equal(t, len(m.sess.Buffer()), rec.ConsumedChars)

	view := m.View()
	assert.Contains(t, view, "Session complete")
	assert.Contains(t, view, "Progress 100%")
	assert.Contains(t, view, "All-time")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenTyping, m.screen)
	assert.Equal(t, session.Idle, m.sess.State())
}

func TestMistakesAreShownInResults(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{}, st)
	m.Update(keyFor('q'))
	typeExpected(m, len(m.sess.Buffer()))
	require.Equal(t, screenResults, m.screen)
	assert.Equal(t, 1, st.records[0].Stats.Errors)
	assert.Contains(t, m.View(), "Missed")
}

func TestZeroMistakesRestarts(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{ZeroMistakes: true}, st)
	typeExpected(m, 3)
	m.Update(keyFor('q'))

	require.Len(t, st.records, 1)
	assert.Equal(t, model.EndDisqualified, st.records[0].Reason)
	assert.True(t, st.records[0].ZeroMistakes)
	assert.Equal(t, screenTyping, m.screen)
	assert.Equal(t, session.Idle, m.sess.State())
	assert.Contains(t, m.View(), "Mistake!")
}

func TestEscAbandonsRunningSession(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{}, st)
	typeExpected(m, 2)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	require.Len(t, st.records, 1)
	assert.Equal(t, model.EndAbandoned, st.records[0].Reason)
}

func TestQuitBeforeTypingSavesNothing(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{}, st)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Empty(t, st.records)
}

func TestEndlessKeepsGoing(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{Endless: true}, st)
	require.True(t, m.sess.Endless())
	typeExpected(m, 600)
	assert.Equal(t, screenTyping, m.screen)
	assert.Equal(t, session.Active, m.sess.State())
	assert.LessOrEqual(t, len(m.sess.Buffer()), session.TrimAfter+session.RefillTo)
	assert.NotContains(t, m.View(), "Progress")
	assert.Contains(t, m.View(), "endless")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, st.records, 1)
	assert.Equal(t, 600, st.records[0].ConsumedChars)
	assert.True(t, st.records[0].Endless)
}

func TestLevelKeysOnResults(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, model.Config{Level: 10}, st)
	typeExpected(m, len(m.sess.Buffer()))
	require.Equal(t, screenResults, m.screen)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	assert.Equal(t, 10, m.cfg.Level)

	typeExpected(m, len(m.sess.Buffer()))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
	assert.Equal(t, 9, m.cfg.Level)
	assert.Equal(t, screenTyping, m.screen)
	assert.Contains(t, m.View(), "level 9")
}

func TestFocusWeakReadsRecentErrors(t *testing.T) {
	st := &fakeStore{recent: []model.CharAggregate{{Char: "j", Errors: 4}}}
	m := newTestModel(t, model.Config{FocusWeak: true, WeakTop: 3, WeakWindow: 10, WeakFactor: 2}, st)
	assert.Equal(t, 1, st.recentCalls)
	typeExpected(m, len(m.sess.Buffer()))
	assert.Equal(t, 2, st.recentCalls)
}

func TestTickKeepsTicking(t *testing.T) {
	m := newTestModel(t, model.Config{}, &fakeStore{})
	require.NotNil(t, m.Init())
	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
}

func TestWorstChars(t *testing.T) {
	assert.Equal(t, "j×3 <space>×1", worstChars(map[string]int{" ": 1, "j": 3}, 5))
	assert.Equal(t, "", worstChars(nil, 5))
}
