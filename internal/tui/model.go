// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/keyladder/internal/generator"
	"github.com/verte-zerg/keyladder/internal/input"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/session"
	statsPkg "github.com/verte-zerg/keyladder/internal/stats"
)

// Store is the persistence the typing screen needs.
type Store interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) (int64, string, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	RecentErrors(ctx context.Context, window int, lang string) ([]model.CharAggregate, error)
}

// Options configure the typing screen. Store may be nil, in which case nothing is saved.
type Options struct {
	Config    model.Config
	Stage     model.Stage
	Mix       generator.Mix
	Generator *generator.Generator
	Store     Store
	Logger    *zap.SugaredLogger
	Clock     func() time.Time
}

type screen int

const (
	screenTyping screen = iota
	screenResults
)

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	cfg      model.Config
	stage    model.Stage
	gen      *generator.Generator
	supplier *generator.ChunkSupplier
	store    Store
	log      *zap.SugaredLogger
	clock    func() time.Time

	width  int
	height int

	sess   *session.Session
	screen screen
	result model.GameStats
	notice string

	hasLast bool
	lastWPM int
	lastAcc int
	summary statsPkg.Summary

	keys keyMap
	help help.Model
}

var (
	correctStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	missedStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
	incorrectStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle          = pendingStyle.Underline(true)
	incorrectCursorStyle = incorrectStyle.Underline(true)
	footerStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	noticeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	valueStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model and starts the first session.
func NewModel(opts Options) *Model {
	m := &Model{
		cfg:   opts.Config,
		stage: opts.Stage,
		gen:   opts.Generator,
		store: opts.Store,
		log:   opts.Logger,
		clock: opts.Clock,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.gen == nil {
		m.gen = generator.New(generator.WithSeed(m.cfg.Seed), generator.WithLogger(m.log))
	}
	if m.cfg.Endless {
		m.supplier = generator.NewChunkSupplier(m.gen, m.stage, opts.Mix)
	}
	m.loadHistory()
	m.refreshWeakSet()
	m.resetSession()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		if m.screen == screenResults {
			return m.updateResults(msg)
		}
		return m.updateTyping(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.sess.Abandon() {
			m.persist()
		}
		return m, tea.Quit
	}
	for _, ev := range input.FromTea(msg) {
		m.sess.Press(ev)
		if m.sess.State() == session.Terminal {
			break
		}
	}
	if m.sess.State() == session.Terminal {
		m.finishSession()
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.resetSession()
	case key.Matches(msg, m.keys.LevelUp):
		if m.cfg.Level < generator.MaxSubLevel {
			m.cfg.Level++
		}
		m.resetSession()
	case key.Matches(msg, m.keys.LevelDown):
		if m.cfg.Level > 0 {
			m.cfg.Level--
		}
		m.resetSession()
	}
	return m, nil
}

func (m *Model) finishSession() {
	m.persist()
	switch m.sess.Reason() {
	case model.EndDisqualified:
		m.notice = "Mistake! Restarting with fresh text."
		m.resetSession()
	default:
		m.result = m.sess.Stats()
		m.screen = screenResults
	}
}

func (m *Model) resetSession() {
	text := ""
	var source session.ChunkSource
	if m.supplier != nil {
		source = m.supplier
	} else {
		text = m.gen.Level(m.stage, m.cfg.Level, m.cfg.Lang)
	}
	m.sess = session.New(text, session.Options{
		ZeroMistakes: m.cfg.ZeroMistakes,
		Source:       source,
		Lang:         m.cfg.Lang,
		Clock:        m.clock,
		Logger:       m.log,
	})
	m.screen = screenTyping
	if m.sess.State() != session.Terminal {
		return
	}
	m.notice = "No practice text available for this stage."
	m.result = m.sess.Stats()
	m.screen = screenResults
}

// persist saves the session when at least one key was scored.
func (m *Model) persist() {
	counters := m.sess.Counters()
	if counters.Keystrokes == 0 {
		return
	}
	st := m.sess.Stats()
	if m.sess.Reason() == model.EndCompleted {
		m.notice = ""
		m.lastWPM = st.WPM
		m.lastAcc = st.Accuracy
		m.hasLast = true
	}
	if m.store == nil {
		return
	}
	rec := model.SessionRecord{
		StartedAt:     m.sess.StartedAt(),
		EndedAt:       m.sess.EndedAt(),
		Lang:          m.cfg.Lang,
		Stage:         m.stage.ID,
		Level:         m.cfg.Level,
		Endless:       m.cfg.Endless,
		ZeroMistakes:  m.cfg.ZeroMistakes,
		Reason:        m.sess.Reason(),
		ConsumedChars: counters.Consumed + m.sess.Cursor(),
		Stats:         st,
	}
	ctx := context.Background()
	id, sessionUUID, err := m.store.InsertSession(ctx, rec)
	if err != nil {
		m.log.Errorw("failed to save session", "err", err)
		return
	}
	m.log.Debugw("session saved", "id", id, "uuid", sessionUUID, "reason", rec.Reason, "wpm", st.WPM)
	m.loadHistory()
	m.refreshWeakSet()
}

func (m *Model) loadHistory() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{Lang: m.cfg.Lang})
	if err != nil {
		m.log.Warnw("failed to load session stats", "err", err)
		return
	}
	m.summary = statsPkg.Summarize(sessions)
	if m.hasLast {
		return
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Reason == model.EndCompleted {
			m.lastWPM = sessions[i].WPM
			m.lastAcc = sessions[i].Accuracy
			m.hasLast = true
			return
		}
	}
}

func (m *Model) refreshWeakSet() {
	if !m.cfg.FocusWeak || m.store == nil {
		return
	}
	aggs, err := m.store.RecentErrors(context.Background(), m.cfg.WeakWindow, m.cfg.Lang)
	if err != nil {
		m.log.Warnw("failed to load weak chars", "err", err)
		return
	}
	weak := statsPkg.SelectWeakChars(aggs, m.cfg.WeakTop)
	if len(weak) == 0 {
		m.log.Debugw("no stats available for weak-char focus yet")
	}
	m.gen.SetFocus(weak, m.cfg.WeakFactor)
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	var helpKeys []key.Binding
	if m.screen == screenResults {
		body = m.renderResults()
		helpKeys = m.keys.resultsHelp()
	} else {
		body = m.renderTape()
		helpKeys = m.keys.typingHelp()
	}
	footer := m.renderFooter()
	helpLine := m.help.ShortHelpView(helpKeys)
	header := m.renderHeader()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, body, footer, helpLine}, "\n")
	}
	bodyHeight := m.height - 4
	if bodyHeight < 1 {
		return body
	}
	return strings.Join([]string{
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, header),
		lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body),
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer),
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine),
	}, "\n")
}

func (m *Model) renderHeader() string {
	parts := []string{fmt.Sprintf("Stage %d", m.stage.ID)}
	if m.stage.Name != "" {
		parts = append(parts, m.stage.Name)
	}
	if m.cfg.Endless {
		parts = append(parts, "endless")
	} else {
		parts = append(parts, fmt.Sprintf("level %d", m.cfg.Level))
	}
	if m.cfg.ZeroMistakes {
		parts = append(parts, "zero mistakes")
	}
	if m.sess.CapsLock() {
		parts = append(parts, "CAPS")
	}
	return titleStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderTape() string {
	styled := buildStyledRunes(m.sess.Buffer(), m.sess.Missed, m.sess.Cursor())
	width := m.contentWidth()
	lines, cursorLine := wrapStyledRunes(styled, width)
	if m.height > 0 {
		visible := max(1, m.height-6)
		start := max(0, cursorLine-1)
		if start+visible > len(lines) {
			start = max(0, len(lines)-visible)
		}
		lines = lines[start:min(len(lines), start+visible)]
	}
	content := strings.Join(lines, "\n")
	if width > 0 {
		content = lipgloss.NewStyle().Width(width).Render(content)
	}
	if m.notice != "" {
		content = noticeStyle.Render(m.notice) + "\n\n" + content
	}
	return content
}

func (m *Model) renderResults() string {
	lines := []string{}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice), "")
	}
	lines = append(lines,
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("WPM       %s", valueStyle.Render(fmt.Sprintf("%d", m.result.WPM))),
		fmt.Sprintf("Accuracy  %s", valueStyle.Render(fmt.Sprintf("%d%%", m.result.Accuracy))),
		fmt.Sprintf("Errors    %s", valueStyle.Render(fmt.Sprintf("%d", m.result.Errors))),
		fmt.Sprintf("Time      %s", valueStyle.Render(fmt.Sprintf("%.1fs", m.result.ElapsedSeconds))),
	)
	if worst := worstChars(m.result.ErrorHistogram, 5); worst != "" {
		lines = append(lines, fmt.Sprintf("Missed    %s", worst))
	}
	return strings.Join(lines, "\n")
}

func worstChars(hist map[string]int, n int) string {
	if len(hist) == 0 {
		return ""
	}
	chars := make([]string, 0, len(hist))
	for ch := range hist {
		chars = append(chars, ch)
	}
	sort.Slice(chars, func(i, j int) bool {
		if hist[chars[i]] == hist[chars[j]] {
			return chars[i] < chars[j]
		}
		return hist[chars[i]] > hist[chars[j]]
	})
	if len(chars) > n {
		chars = chars[:n]
	}
	parts := make([]string, len(chars))
	for i, ch := range chars {
		parts[i] = fmt.Sprintf("%s×%d", statsPkg.CharLabel(ch), hist[ch])
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	st := m.sess.Stats()
	segments := []string{fmt.Sprintf("WPM %d", m.sess.LiveWPM())}
	segments = append(segments, fmt.Sprintf("Acc %d%%", st.Accuracy))
	segments = append(segments, fmt.Sprintf("Errors %d", st.Errors))
	if !m.sess.Endless() {
		buffer := len(m.sess.Buffer())
		progress := 0
		if buffer > 0 {
			progress = m.sess.Cursor() * 100 / buffer
		}
		if m.sess.Reason() == model.EndCompleted {
			progress = 100
		}
		segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc))
	}
	if m.summary.Completed > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.summary.AvgWPM, m.summary.AvgAccuracy))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
