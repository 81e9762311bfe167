package timer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

// Restore reloads a session persisted by an earlier process. A paused
// session comes back paused with the elapsed time it had when pausing began.
// A running session comes back running, with the time the process was down
// counted as study time. Anything unreadable leaves the timer idle.
//
// Restore is meant to be called once, before any other transition.
func (e *Engine) Restore(ctx context.Context, loader Loader) Status {
	raw, ok, err := loader.Get(ctx, StorageKey)
	if err != nil {
		e.logger.Warn("load timer state", "error", err)
		return e.Snapshot().Status()
	}
	if !ok {
		return e.Snapshot().Status()
	}
	var rec model.TimerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		e.logger.Warn("corrupt timer state; ignoring", "error", err)
		return e.Snapshot().Status()
	}
	if !rec.IsRunning {
		return e.Snapshot().Status()
	}
	if rec.SubjectID == nil || *rec.SubjectID == "" || rec.StartTime == nil {
		e.logger.Warn("incomplete timer state; discarding")
		e.persister.Delete(StorageKey)
		return e.Snapshot().Status()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Running {
		return e.state.Status()
	}

	now := e.clock.Now()
	start := timecalc.FromMillis(*rec.StartTime)
	paused := time.Duration(rec.PausedTime) * time.Millisecond
	if paused < 0 {
		paused = 0
	}
	e.state = State{
		Running:    true,
		Paused:     rec.IsPaused,
		SubjectID:  *rec.SubjectID,
		StartTime:  start,
		PausedTime: paused,
	}
	if rec.IsPaused {
		pausedAt := now
		if rec.PauseTimestamp != nil {
			pausedAt = timecalc.FromMillis(*rec.PauseTimestamp)
		}
		e.state.PausedAt = pausedAt
		e.state.Elapsed = clampElapsed(pausedAt.Sub(start) - paused)
		return Paused
	}
	e.state.Elapsed = clampElapsed(now.Sub(start) - paused)
	e.startTickerLocked()
	return Running
}

func clampElapsed(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
