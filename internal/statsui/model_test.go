package statsui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/model"
)

type fakeSource struct {
	subjects []model.Subject
	sessions []model.Session
}

func (f *fakeSource) Subjects() []model.Subject { return f.subjects }
func (f *fakeSource) Sessions() []model.Session { return f.sessions }

func newTestModel(t *testing.T) (*Model, *fakeSource) {
	t.Helper()
	src := &fakeSource{
		subjects: []model.Subject{{ID: "a", Name: "Math", Color: model.ColorMint}},
		sessions: []model.Session{
			{ID: "s1", SubjectID: "a", Date: "2026-10-15", Duration: 90},
			{ID: "s2", SubjectID: "a", Date: "2026-10-14", Duration: 30},
		},
	}
	fc := clock.NewFake(time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC))
	m := NewModel(src, fc, Config{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, src
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsCardsAndChart(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	for _, want := range []string{"Overview", "Today", "1h 30min", "2 days", "This week", "Legend:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestSessionsTabListsNewestFirst(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab, got %d", m.activeTab)
	}
	out := m.View()
	first := strings.Index(out, "2026-10-15")
	second := strings.Index(out, "2026-10-14")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected newest session first:\n%s", out)
	}
}

func TestTabsWrapAround(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabSubjects {
		t.Fatalf("expected wrap to subjects tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Math") {
		t.Fatalf("expected subject listed")
	}
}

func TestChartViewAndModeKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("v"))
	if m.cfg.View != model.ChartDaily {
		t.Fatalf("expected daily view, got %s", m.cfg.View)
	}
	m.Update(key("v"))
	m.Update(key("v"))
	if m.cfg.View != model.ChartWeekly {
		t.Fatalf("expected view to cycle back to weekly, got %s", m.cfg.View)
	}
	m.Update(key("m"))
	if m.cfg.Mode != model.BarSimple {
		t.Fatalf("expected simple bars, got %s", m.cfg.Mode)
	}
	if strings.Contains(m.View(), "Legend:") {
		t.Fatalf("expected no legend in simple mode")
	}
}

func TestReloadPicksUpNewSessions(t *testing.T) {
	m, src := newTestModel(t)
	src.sessions = append(src.sessions, model.Session{ID: "s3", SubjectID: "a", Date: "2026-10-15", Duration: 30})
	m.Update(key("r"))
	if m.summary.Today != 120 {
		t.Fatalf("expected 120 minutes today after reload, got %d", m.summary.Today)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("expected untouched line, got %q", got)
	}
}
