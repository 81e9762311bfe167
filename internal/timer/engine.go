// Package timer implements the study stopwatch.
//
// An Engine owns the single active timing session. It moves between Idle,
// Running and Paused, derives elapsed time from wall-clock timestamps, and
// writes its state through a write-behind Persister after every transition so
// a session survives the process exiting mid-run.
package timer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

// StorageKey is where the timer record is persisted.
const StorageKey = "study-tracker-timer"

// DefaultTickInterval is how often the displayed elapsed time is refreshed.
const DefaultTickInterval = 100 * time.Millisecond

// Status is the state machine position.
type Status int

// Timer states.
const (
	Idle Status = iota
	Running
	Paused
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Persister receives serialized timer records. Implementations must not block.
type Persister interface {
	Put(key string, value []byte)
	Delete(key string)
}

// Loader reads a previously persisted record.
type Loader interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// State is a point-in-time copy of the timer.
type State struct {
	Running    bool
	Paused     bool
	SubjectID  string
	StartTime  time.Time
	PausedTime time.Duration // accumulated, excluding an ongoing pause
	PausedAt   time.Time     // zero unless Paused
	Elapsed    time.Duration // last computed display value
}

// Status derives the state machine position.
func (s State) Status() Status {
	switch {
	case !s.Running:
		return Idle
	case s.Paused:
		return Paused
	default:
		return Running
	}
}

// Result is a finished timing session, ready to be stored.
type Result struct {
	SubjectID string
	Duration  int // whole minutes, at least 1
	StartedAt time.Time
	EndedAt   time.Time
}

// Engine is the timer state machine. It is safe for concurrent use; all
// transitions are serialized.
type Engine struct {
	clock     clock.Clock
	persister Persister
	logger    *slog.Logger
	interval  time.Duration
	validID   func(string) bool

	mu    sync.Mutex
	state State
	gen   uint64
	stop  func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for persistence problems.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTickInterval overrides the display refresh cadence.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithSubjectCheck makes Start reject ids for which valid returns false.
func WithSubjectCheck(valid func(id string) bool) Option {
	return func(e *Engine) {
		e.validID = valid
	}
}

// New returns an idle Engine.
func New(c clock.Clock, p Persister, opts ...Option) *Engine {
	e := &Engine{
		clock:     c,
		persister: p,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		interval:  DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start begins timing subjectID. It is a no-op returning false when the
// timer is not idle or the id is empty or rejected.
func (e *Engine) Start(subjectID string) bool {
	if subjectID == "" {
		return false
	}
	if e.validID != nil && !e.validID(subjectID) {
		return false
	}
	e.mu.Lock()
	if e.state.Running {
		e.mu.Unlock()
		return false
	}
	e.state = State{
		Running:   true,
		SubjectID: subjectID,
		StartTime: e.clock.Now(),
	}
	e.persistLocked()
	e.startTickerLocked()
	e.mu.Unlock()
	return true
}

// Pause freezes the elapsed time. No-op unless running and not paused.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	if !e.state.Running || e.state.Paused {
		e.mu.Unlock()
		return false
	}
	now := e.clock.Now()
	e.state.Elapsed = e.elapsedAt(now)
	e.state.Paused = true
	e.state.PausedAt = now
	cancel := e.detachTickerLocked()
	e.persistLocked()
	e.mu.Unlock()
	cancel()
	return true
}

// Resume continues a paused timer, adding the pause to the paused total.
func (e *Engine) Resume() bool {
	e.mu.Lock()
	if !e.state.Running || !e.state.Paused {
		e.mu.Unlock()
		return false
	}
	if !e.state.PausedAt.IsZero() {
		if d := e.clock.Now().Sub(e.state.PausedAt); d > 0 {
			e.state.PausedTime += d
		}
	}
	e.state.Paused = false
	e.state.PausedAt = time.Time{}
	e.persistLocked()
	e.startTickerLocked()
	e.mu.Unlock()
	return true
}

// Stop ends the session and returns it. The timer goes back to Idle and the
// persisted record is removed. ok is false when nothing was running.
func (e *Engine) Stop() (Result, bool) {
	e.mu.Lock()
	if !e.state.Running || e.state.SubjectID == "" {
		e.mu.Unlock()
		return Result{}, false
	}
	now := e.clock.Now()
	elapsed := e.state.Elapsed
	if !e.state.Paused {
		elapsed = e.elapsedAt(now)
	}
	res := Result{
		SubjectID: e.state.SubjectID,
		Duration:  timecalc.WholeMinutes(elapsed),
		StartedAt: e.state.StartTime,
		EndedAt:   now,
	}
	cancel := e.resetLocked()
	e.mu.Unlock()
	cancel()
	return res, true
}

// Reset discards any session in progress.
func (e *Engine) Reset() {
	e.mu.Lock()
	cancel := e.resetLocked()
	e.mu.Unlock()
	cancel()
}

// Close stops the tick loop without touching the persisted record, so a
// running session resumes on the next start.
func (e *Engine) Close() {
	e.mu.Lock()
	cancel := e.detachTickerLocked()
	e.mu.Unlock()
	cancel()
}

func (e *Engine) resetLocked() func() {
	cancel := e.detachTickerLocked()
	e.state = State{}
	e.persister.Delete(StorageKey)
	return cancel
}

// elapsedAt computes running time at now. Callers hold mu.
func (e *Engine) elapsedAt(now time.Time) time.Duration {
	return now.Sub(e.state.StartTime) - e.state.PausedTime
}

func (e *Engine) record() model.TimerRecord {
	rec := model.TimerRecord{
		IsRunning:  e.state.Running,
		IsPaused:   e.state.Paused,
		PausedTime: e.state.PausedTime.Milliseconds(),
	}
	if e.state.SubjectID != "" {
		id := e.state.SubjectID
		rec.SubjectID = &id
	}
	if !e.state.StartTime.IsZero() {
		ms := timecalc.Millis(e.state.StartTime)
		rec.StartTime = &ms
	}
	if !e.state.PausedAt.IsZero() {
		ms := timecalc.Millis(e.state.PausedAt)
		rec.PauseTimestamp = &ms
	}
	return rec
}

// persistLocked hands the record to the persister while mu is held, so
// records reach the queue in transition order.
func (e *Engine) persistLocked() {
	data, err := json.Marshal(e.record())
	if err != nil {
		e.logger.Warn("encode timer state", "error", err)
		return
	}
	e.persister.Put(StorageKey, data)
}
