// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/stats"
)

const (
	tabOverview = iota
	tabStages
	tabErrors
)

const (
	filterLang = iota
	filterSince
	filterLast
	filterWindow
	filterStage
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src   stats.Source
	cfg   model.StatsConfig
	names map[int]string

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model. names maps stage ids to display names.
func NewModel(src stats.Source, cfg model.StatsConfig, names map[int]string) *Model {
	m := &Model{
		src:      src,
		cfg:      cfg,
		names:    names,
		tabs:     []string{"Overview", "Stages", "Errors"},
		overview: viewport.New(0, 0),
	}
	stageTable := newTable(stageColumns())
	errorTable := newTable(errorColumns())
	m.tables = map[int]*table.Model{tabStages: &stageTable, tabErrors: &errorTable}
	m.initInputs()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if t, ok := m.tables[m.activeTab]; ok {
			*t, cmd = t.Update(msg)
			return m, cmd
		}
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Lang: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
		newFilterInput("Stage: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[filterLang].SetValue(strings.TrimSpace(m.cfg.Lang))
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	m.filterInputs[filterSince].SetValue(since)
	m.filterInputs[filterLast].SetValue(optionalInt(m.cfg.Last))
	m.filterInputs[filterWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	m.filterInputs[filterStage].SetValue(optionalInt(m.cfg.Stage))
}

func optionalInt(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(1),
		table.WithFocused(true),
	)
	t.SetStyles(tableStyles())
	return t
}

func stageColumns() []table.Column {
	return []table.Column{
		{Title: "Stage", Width: 5},
		{Title: "Name", Width: 24},
		{Title: "Level", Width: 5},
		{Title: "Best WPM", Width: 8},
		{Title: "Best Acc", Width: 8},
		{Title: "Runs", Width: 5},
	}
}

func errorColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 7},
		{Title: "Finger", Width: 9},
		{Title: "Errors", Width: 7},
		{Title: "Share", Width: 7},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		// The header row and its border take two lines.
		t.SetHeight(max(1, bodyHeight-2))
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFilterSummary() string {
	lang := m.cfg.Lang
	if lang == "" {
		lang = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	stage := "all"
	if m.cfg.Stage > 0 {
		stage = strconv.Itoa(m.cfg.Stage)
	}
	summary := fmt.Sprintf("Settings: lang=%s  since=%s  last=%s  window=%d  stage=%s",
		lang, since, last, m.cfg.CurveWindow, stage)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.errMsg != "" {
		return "Failed to load stats."
	}
	switch m.activeTab {
	case tabStages:
		if len(m.report.Best) == 0 {
			return "No stages practiced yet."
		}
		return tableMutedStyle.Render(m.tables[tabStages].View())
	case tabErrors:
		if len(m.report.ErrorsAll) == 0 {
			return "No mistyped characters recorded."
		}
		return tableMutedStyle.Render(m.tables[tabErrors].View())
	default:
		return m.overview.View()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabStages].SetRows(stageRows(report.Best, m.names))
	m.tables[tabErrors].SetRows(errorRows(report.ErrorsAll))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	sum := stats.Summarize(report.Sessions)
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", sum.Sessions)),
		metricCard("Completed", fmt.Sprintf("%d", sum.Completed)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", sum.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%d", sum.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", sum.AvgAccuracy)),
		metricCard("Practice", (time.Duration(sum.PracticeMs) * time.Millisecond).Round(time.Second).String()),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Sessions, window, stats.CurveWidthFor(width)); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	if err := stats.RenderErrorTable(&buf, report.ErrorsWindow, 5); err != nil {
		return fmt.Sprintf("Failed to render errors: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func stageRows(best []model.StageBest, names map[int]string) []table.Row {
	rows := make([]table.Row, 0, len(best))
	for _, b := range best {
		name := names[b.Stage]
		if name == "" {
			name = "-"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(b.Stage),
			name,
			strconv.Itoa(b.Level),
			strconv.Itoa(b.WPM),
			fmt.Sprintf("%d%%", b.Accuracy),
			strconv.Itoa(b.Runs),
		})
	}
	return rows
}

func errorRows(aggs []model.CharAggregate) []table.Row {
	ranked := stats.ErrorRows(aggs, 0)
	rows := make([]table.Row, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, table.Row{
			r.Label,
			r.Finger,
			strconv.Itoa(r.Errors),
			fmt.Sprintf("%.1f%%", r.Share),
		})
	}
	return rows
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case "enter":
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.refreshReport()
		return m, nil
	case "tab", "down":
		return m, m.setFilterIndex((m.filterIndex + 1) % len(m.filterInputs))
	case "shift+tab", "up":
		return m, m.setFilterIndex((m.filterIndex - 1 + len(m.filterInputs)) % len(m.filterInputs))
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == idx {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	cfg := m.cfg
	cfg.Lang = strings.TrimSpace(m.filterInputs[filterLang].Value())

	cfg.Since = nil
	if raw := strings.TrimSpace(m.filterInputs[filterSince].Value()); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (use YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}

	var err error
	if cfg.Last, err = parseOptional(m.filterInputs[filterLast].Value(), "last"); err != nil {
		return err
	}
	if cfg.Stage, err = parseOptional(m.filterInputs[filterStage].Value(), "stage"); err != nil {
		return err
	}
	window, err := parseOptional(m.filterInputs[filterWindow].Value(), "curve window")
	if err != nil {
		return err
	}
	if window < 1 {
		return fmt.Errorf("curve window must be >= 1")
	}
	cfg.CurveWindow = window
	m.cfg = cfg
	return nil
}

func parseOptional(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", name)
	}
	return n, nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
