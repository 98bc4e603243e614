package statsui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keyladder/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	errs     []model.CharAggregate
	best     []model.StageBest
	fail     error
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	f.lastCfg = cfg
	return f.sessions, f.fail
}

func (f *fakeSource) ListErrorAggregates(context.Context, []int64) ([]model.CharAggregate, error) {
	return f.errs, nil
}

func (f *fakeSource) BestByStage(context.Context, string) ([]model.StageBest, error) {
	return f.best, nil
}

func newSource() *fakeSource {
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: 1, Reason: model.EndCompleted, WPM: 30, Accuracy: 96, DurationMs: 30000},
			{SessionID: 2, Reason: model.EndCompleted, WPM: 42, Accuracy: 98, DurationMs: 30000},
		},
		errs: []model.CharAggregate{{Char: "f", Errors: 3}, {Char: " ", Errors: 1}},
		best: []model.StageBest{{Stage: 1, Level: 2, WPM: 42, Accuracy: 98, Runs: 2}},
	}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(*Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsSummary(t *testing.T) {
	m := sized(t, NewModel(newSource(), model.StatsConfig{CurveWindow: 5}, map[int]string{1: "Home anchors"}))
	view := m.View()
	assert.Contains(t, view, "Overview")
	assert.Contains(t, view, "Best WPM")
	assert.Contains(t, view, "42")
	assert.Contains(t, view, "window=5")
}

func TestTabsShowTables(t *testing.T) {
	m := sized(t, NewModel(newSource(), model.StatsConfig{CurveWindow: 5}, map[int]string{1: "Home anchors"}))
	m.Update(key("right"))
	assert.Contains(t, m.View(), "Home anchors")

	m.Update(key("right"))
	view := m.View()
	assert.Contains(t, view, "<space>")
	assert.Contains(t, view, "L index")

	m.Update(key("right"))
	assert.Equal(t, tabOverview, m.activeTab)
}

func TestCurveWindowKeys(t *testing.T) {
	m := sized(t, NewModel(newSource(), model.StatsConfig{CurveWindow: 3}, nil))
	m.Update(key("="))
	assert.Equal(t, 5, m.cfg.CurveWindow)
	m.Update(key("="))
	assert.Equal(t, 10, m.cfg.CurveWindow)
	m.Update(key("-"))
	assert.Equal(t, 5, m.cfg.CurveWindow)
	m.Update(key("-"))
	assert.Equal(t, 1, m.cfg.CurveWindow)
}

func TestFilterForm(t *testing.T) {
	src := newSource()
	m := sized(t, NewModel(src, model.StatsConfig{CurveWindow: 5}, nil))
	m.Update(key("/"))
	require.True(t, m.filterMode)
	for _, r := range "de" {
		m.Update(key(string(r)))
	}
	m.Update(key("tab"))
	for _, r := range "2024-05-01" {
		m.Update(key(string(r)))
	}
	m.Update(key("enter"))
	require.False(t, m.filterMode)
	assert.Equal(t, "de", src.lastCfg.Lang)
	require.NotNil(t, src.lastCfg.Since)
	assert.Equal(t, time.May, src.lastCfg.Since.Month())
}

func TestFilterFormRejectsBadInput(t *testing.T) {
	m := sized(t, NewModel(newSource(), model.StatsConfig{CurveWindow: 5}, nil))
	m.Update(key("/"))
	m.setFilterIndex(filterLast)
	m.Update(key("x"))
	m.Update(key("enter"))
	assert.True(t, m.filterMode)
	assert.Contains(t, m.View(), "last must be a non-negative number")

	m.Update(key("esc"))
	assert.False(t, m.filterMode)
}

func TestLoadError(t *testing.T) {
	src := newSource()
	src.fail = errors.New("disk gone")
	m := sized(t, NewModel(src, model.StatsConfig{CurveWindow: 5}, nil))
	view := m.View()
	assert.Contains(t, view, "Failed to load stats.")
	assert.Contains(t, view, "disk gone")
}

func TestQuit(t *testing.T) {
	m := sized(t, NewModel(newSource(), model.StatsConfig{CurveWindow: 5}, nil))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
