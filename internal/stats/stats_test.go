package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/studytime/internal/model"
)

// Thursday.
var now = time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)

func session(subject string, date model.Date, minutes int) model.Session {
	return model.Session{SubjectID: subject, Date: date, Duration: minutes}
}

func TestComputeTotals(t *testing.T) {
	sessions := []model.Session{
		session("a", "2026-10-15", 30),
		session("b", "2026-10-14", 20),
		session("a", "2026-10-12", 10),
		session("a", "2026-10-11", 40),
		session("b", "2026-10-01", 5),
		session("a", "2026-09-30", 100),
	}
	got := Compute(sessions, now)
	want := model.Stats{Today: 30, ThisWeek: 60, ThisMonth: 105, Streak: 2}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, now); got != (model.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		days []model.Date
		want int
	}{
		{name: "three days ending today", now: now, days: []model.Date{"2026-10-15", "2026-10-14", "2026-10-13"}, want: 3},
		{name: "nothing today", now: now, days: []model.Date{"2026-10-14", "2026-10-13"}, want: 0},
		{name: "gap stops the count", now: now, days: []model.Date{"2026-10-15", "2026-10-13"}, want: 1},
		{name: "duplicate days count once", now: now, days: []model.Date{"2026-10-15", "2026-10-15"}, want: 1},
		{
			name: "across a month boundary",
			now:  time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
			days: []model.Date{"2026-10-01", "2026-09-30", "2026-09-29"},
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := make([]model.Session, 0, len(tt.days))
			for _, d := range tt.days {
				sessions = append(sessions, session("a", d, 15))
			}
			if got := Compute(sessions, tt.now).Streak; got != tt.want {
				t.Fatalf("expected streak %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWeekStartsMonday(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	sessions := []model.Session{
		session("a", "2026-10-12", 10), // Monday
		session("a", "2026-10-11", 99), // previous Sunday
	}
	if got := Compute(sessions, sunday).ThisWeek; got != 10 {
		t.Fatalf("expected 10 minutes this week, got %d", got)
	}
}

func TestChartWeekly(t *testing.T) {
	subjects := []model.Subject{{ID: "a"}, {ID: "b"}}
	sessions := []model.Session{
		session("a", "2026-10-12", 30),
		session("b", "2026-10-12", 15),
		session("a", "2026-10-15", 45),
		session("gone", "2026-10-15", 500),
		session("a", "2026-10-05", 60),
	}
	points := Chart(sessions, subjects, model.ChartWeekly, now)
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	if points[0].Label != "Mon" || points[6].Label != "Sun" {
		t.Fatalf("unexpected labels %q..%q", points[0].Label, points[6].Label)
	}
	if points[0].Total != 45 || points[0].BySub["a"] != 30 || points[0].BySub["b"] != 15 {
		t.Fatalf("unexpected monday point: %+v", points[0])
	}
	if points[3].Total != 45 {
		t.Fatalf("expected orphaned session left out, got %d", points[3].Total)
	}
}

func TestChartDaily(t *testing.T) {
	subjects := []model.Subject{{ID: "a"}}
	sessions := []model.Session{
		session("a", "2026-10-15", 20),
		session("a", "2026-10-31", 10),
		session("a", "2026-11-01", 10),
	}
	points := Chart(sessions, subjects, model.ChartDaily, now)
	if len(points) != 31 {
		t.Fatalf("expected 31 days, got %d", len(points))
	}
	if points[14].Label != "15" || points[14].Total != 20 {
		t.Fatalf("unexpected day 15: %+v", points[14])
	}
	if points[30].Total != 10 {
		t.Fatalf("expected 10 minutes on day 31, got %d", points[30].Total)
	}
}

func TestChartMonthly(t *testing.T) {
	subjects := []model.Subject{{ID: "a"}}
	sessions := []model.Session{
		session("a", "2026-03-02", 60),
		session("a", "2026-10-15", 30),
		session("a", "2025-12-31", 90),
	}
	points := Chart(sessions, subjects, model.ChartMonthly, now)
	if len(points) != 12 {
		t.Fatalf("expected 12 months, got %d", len(points))
	}
	if points[0].Label != "Jan" || points[11].Label != "Dec" {
		t.Fatalf("unexpected labels %q..%q", points[0].Label, points[11].Label)
	}
	// The earliest session is in 2025, so every month up to now is tracked.
	if points[0].Empty || points[9].Empty {
		t.Fatalf("expected months through October to be tracked")
	}
	if !points[10].Empty || !points[11].Empty {
		t.Fatalf("expected future months to be empty")
	}
	if points[2].Total != 60 || points[9].Total != 30 || points[0].Total != 0 {
		t.Fatalf("unexpected monthly totals: %+v", points)
	}
}

func TestChartMonthlyBeforeFirstSession(t *testing.T) {
	subjects := []model.Subject{{ID: "a"}}
	sessions := []model.Session{session("a", "2026-06-10", 30)}
	points := Chart(sessions, subjects, model.ChartMonthly, now)
	for i, p := range points {
		wantEmpty := i < 5 || i > 9
		if p.Empty != wantEmpty {
			t.Fatalf("month %s: expected empty=%v", p.Label, wantEmpty)
		}
	}
}

func TestChartMonthlyWithoutSessions(t *testing.T) {
	for _, p := range Chart(nil, nil, model.ChartMonthly, now) {
		if !p.Empty {
			t.Fatalf("expected %s to be empty", p.Label)
		}
	}
}
