// Package tui provides the Bubble Tea live timer screen.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/timecalc"
	"github.com/verte-zerg/studytime/internal/timer"
)

// Engine is the part of the timer the screen drives.
type Engine interface {
	Snapshot() timer.State
	Pause() bool
	Resume() bool
	Stop() (timer.Result, bool)
	Reset()
}

// Options wires the screen to the rest of the application. Every field is
// optional.
type Options struct {
	// Subject resolves the subject being timed, for its name and color.
	Subject func(id string) (model.Subject, bool)
	// OnStop stores a finished session and returns a confirmation line.
	OnStop func(timer.Result) string
	// Summary supplies the totals shown in the footer.
	Summary func() model.Stats
	// Interval is the refresh cadence; zero means timer.DefaultTickInterval.
	Interval time.Duration
}

type tickMsg time.Time

// Model implements the Bubble Tea timer UI.
type Model struct {
	engine Engine
	opts   Options
	keys   keyMap
	help   help.Model

	state   timer.State
	message string

	width  int
	height int
}

var (
	clockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8E0D4"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a timer UI model.
func NewModel(e Engine, opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = timer.DefaultTickInterval
	}
	m := &Model{
		engine: e,
		opts:   opts,
		keys:   newKeyMap(),
		help:   help.New(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
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
		m.refresh()
		return m, m.tick()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
		case key.Matches(msg, m.keys.Stop):
			m.stop()
		case key.Matches(msg, m.keys.Reset):
			m.engine.Reset()
			m.message = "Timer reset."
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.refresh()
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) refresh() {
	m.state = m.engine.Snapshot()
}

func (m *Model) toggle() {
	switch m.engine.Snapshot().Status() {
	case timer.Running:
		m.engine.Pause()
		m.message = ""
	case timer.Paused:
		m.engine.Resume()
		m.message = ""
	}
}

func (m *Model) stop() {
	res, ok := m.engine.Stop()
	if !ok {
		return
	}
	if m.opts.OnStop != nil {
		m.message = m.opts.OnStop(res)
		return
	}
	m.message = fmt.Sprintf("Stopped after %s.", timecalc.FormatDuration(res.Duration))
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	footerBlock := lipgloss.Place(m.width, footerHeight, lipgloss.Center, lipgloss.Bottom, footer)
	return body + "\n" + footerBlock
}

func (m *Model) renderContent() string {
	lines := make([]string, 0, 4)
	status := m.state.Status()
	if status == timer.Idle {
		lines = append(lines, idleStyle.Render("No timer running."))
	} else {
		lines = append(lines, m.renderSubject())
		clock := timecalc.FormatClock(m.state.Elapsed)
		if status == timer.Paused {
			lines = append(lines, pausedStyle.Render(clock), pausedStyle.Render("Paused"))
		} else {
			lines = append(lines, clockStyle.Render(clock), idleStyle.Render("Running"))
		}
	}
	if m.message != "" {
		lines = append(lines, messageStyle.Render(m.message))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderSubject() string {
	if m.opts.Subject == nil {
		return m.state.SubjectID
	}
	s, ok := m.opts.Subject(m.state.SubjectID)
	if !ok {
		return m.state.SubjectID
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color.Hex())).Bold(true).Render(s.Name)
}

func (m *Model) renderFooter() string {
	segments := make([]string, 0, 2)
	if m.opts.Summary != nil {
		st := m.opts.Summary()
		segments = append(segments, footerStyle.Render(fmt.Sprintf(
			"Today %s · Week %s · Streak %d",
			timecalc.FormatDuration(st.Today),
			timecalc.FormatDuration(st.ThisWeek),
			st.Streak,
		)))
	}
	segments = append(segments, m.help.View(m.keys))
	return strings.Join(segments, "\n")
}
