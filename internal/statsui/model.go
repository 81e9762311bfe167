// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/stats"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

const (
	tabOverview = iota
	tabSessions
	tabSubjects
)

var chartViews = []model.ChartView{model.ChartWeekly, model.ChartDaily, model.ChartMonthly}

var chartTitles = map[model.ChartView]string{
	model.ChartDaily:   "This month, by day",
	model.ChartWeekly:  "This week",
	model.ChartMonthly: "This year, by month",
}

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
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Source supplies the collections the dashboard shows.
type Source interface {
	Subjects() []model.Subject
	Sessions() []model.Session
}

// Config holds the initial chart settings.
type Config struct {
	View model.ChartView
	Mode model.BarMode
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src   Source
	clock clock.Clock
	cfg   Config

	subjects []model.Subject
	sessions []model.Session
	summary  model.Stats

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	sessionTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(src Source, c clock.Clock, cfg Config) *Model {
	if cfg.View == "" {
		cfg.View = model.ChartWeekly
	}
	if cfg.Mode == "" {
		cfg.Mode = model.BarStacked
	}
	m := &Model{
		src:   src,
		clock: c,
		cfg:   cfg,
		tabs:  []string{"Overview", "Sessions", "Subjects"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.sessionTable = table.New(table.WithColumns(sessionColumns(80)), table.WithHeight(1))
	m.sessionTable.SetStyles(sessionTableStyles())
	m.refresh()
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "v":
			m.cfg.View = nextView(m.cfg.View)
			m.renderTabContents()
			return m, nil
		case "m":
			if m.cfg.Mode == model.BarSimple {
				m.cfg.Mode = model.BarStacked
			} else {
				m.cfg.Mode = model.BarSimple
			}
			m.renderTabContents()
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		case "g", "home":
			if m.activeTab == tabSessions {
				m.sessionTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSessions {
				m.sessionTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabSessions {
				var cmd tea.Cmd
				m.sessionTable, cmd = m.sessionTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
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
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refresh() {
	m.subjects = m.src.Subjects()
	m.sessions = m.src.Sessions()
	m.summary = stats.Compute(m.sessions, m.clock.Now())
	m.sessionTable.SetRows(sessionRows(m.sessions, m.subjects))
	m.renderTabContents()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.sessionTable.SetColumns(sessionColumns(m.width))
	m.sessionTable.SetWidth(m.width)
	m.sessionTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.sessionTable.Focus()
	} else {
		m.sessionTable.Blur()
	}
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
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Chart: %s  Bars: %s  Subjects: %d  Sessions: %d",
		m.cfg.View, m.cfg.Mode, len(m.subjects), len(m.sessions))
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Chart: v  Bars: m  Reload: r  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderBody() string {
	if m.activeTab == tabSessions {
		if len(m.sessions) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(m.sessionTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabSubjects].SetContent(renderSubjects(m.subjects, m.sessions))
}

func (m *Model) renderOverview(width int) string {
	cards := renderSummaryCards(m.summary, width)
	points := stats.Chart(m.sessions, m.subjects, m.cfg.View, m.clock.Now())
	var buf bytes.Buffer
	err := stats.RenderChart(&buf, points, m.subjects, stats.ChartOptions{
		Title: chartTitles[m.cfg.View],
		Mode:  m.cfg.Mode,
		Width: width,
		Color: true,
	})
	if err != nil {
		return cards + "\n\n" + fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(st model.Stats, width int) string {
	cards := []string{
		metricCard("Today", timecalc.FormatDuration(st.Today)),
		metricCard("This week", timecalc.FormatDuration(st.ThisWeek)),
		metricCard("This month", timecalc.FormatDuration(st.ThisMonth)),
		metricCard("Streak", fmt.Sprintf("%d days", st.Streak)),
	}
	if width < 60 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderSubjects(subjects []model.Subject, sessions []model.Session) string {
	var buf bytes.Buffer
	if err := stats.RenderSubjects(&buf, subjects, sessions); err != nil {
		return fmt.Sprintf("Failed to render subjects: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func sessionColumns(width int) []table.Column {
	fixed := 10 + 20 + 9
	notes := maxInt(10, width-fixed-4)
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Subject", Width: 20},
		{Title: "Duration", Width: 9},
		{Title: "Notes", Width: notes},
	}
}

func sessionRows(sessions []model.Session, subjects []model.Subject) []table.Row {
	names := stats.SubjectNames(subjects)
	sorted := stats.NewestFirst(sessions)
	rows := make([]table.Row, 0, len(sorted))
	for _, s := range sorted {
		name, ok := names[s.SubjectID]
		if !ok {
			name = "(deleted)"
		}
		notes := ""
		if s.Notes != nil {
			notes = strings.ReplaceAll(*s.Notes, "\n", " ")
		}
		rows = append(rows, table.Row{
			string(s.Date),
			name,
			timecalc.FormatDuration(s.Duration),
			notes,
		})
	}
	return rows
}

func sessionTableStyles() table.Styles {
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

func nextView(v model.ChartView) model.ChartView {
	for i, cv := range chartViews {
		if cv == v {
			return chartViews[(i+1)%len(chartViews)]
		}
	}
	return chartViews[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
