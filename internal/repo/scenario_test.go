package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/repo"
	"github.com/verte-zerg/studytime/internal/stats"
	"github.com/verte-zerg/studytime/internal/store"
	"github.com/verte-zerg/studytime/internal/timer"
	"github.com/verte-zerg/studytime/internal/writebehind"
)

func TestTimedSessionFlowsIntoStats(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	fc := clock.NewFake(time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local))
	w := writebehind.New(st, writebehind.WithClock(fc))
	r := repo.New(fc, w)
	e := timer.New(fc, w, timer.WithSubjectCheck(r.HasSubject))
	defer e.Close()

	math, ok := r.AddSubject("Math", "")
	if !ok || math.Color != model.ColorMint {
		t.Fatalf("expected Math with mint, got %+v", math)
	}
	if !e.Start(math.ID) {
		t.Fatalf("expected timer to start")
	}
	fc.Set(fc.Now().Add(90 * time.Second))
	res, ok := e.Stop()
	if !ok {
		t.Fatalf("expected stop to yield a result")
	}
	start, end := res.StartedAt, res.EndedAt
	if _, ok := r.AddSession(model.NewSession{
		SubjectID: res.SubjectID,
		Date:      model.DateOf(res.StartedAt),
		Duration:  res.Duration,
		StartTime: &start,
		EndTime:   &end,
	}); !ok {
		t.Fatalf("expected session to be recorded")
	}

	sessions := r.Sessions()
	if len(sessions) != 1 || sessions[0].Duration != 2 {
		t.Fatalf("expected one 2-minute session, got %+v", sessions)
	}
	got := stats.Compute(sessions, fc.Now())
	if got.Today != 2 || got.Streak != 1 {
		t.Fatalf("expected today=2 streak=1, got %+v", got)
	}

	if err := w.Close(ctx); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	reloaded := repo.New(fc, w)
	reloaded.Load(ctx, st)
	if len(reloaded.Sessions()) != 1 || len(reloaded.Subjects()) != 1 {
		t.Fatalf("expected persisted data to reload")
	}
	if _, ok, _ := st.Get(ctx, timer.StorageKey); ok {
		t.Fatalf("expected timer record removed after stop")
	}
}
