// Package repo holds the subject and session collections.
//
// Every mutation applies to memory immediately and hands the affected
// collection to a write-behind Persister; callers never wait for storage.
package repo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/model"
)

// Storage keys for the two collections.
const (
	SubjectsKey = "study-tracker-subjects"
	SessionsKey = "study-tracker-sessions"
)

// Persister receives serialized collections. Implementations must not block.
type Persister interface {
	Put(key string, value []byte)
}

// Loader reads previously persisted collections.
type Loader interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// Repository owns subjects and sessions.
type Repository struct {
	clock     clock.Clock
	persister Persister
	logger    *slog.Logger
	newID     func() string

	mu       sync.RWMutex
	subjects []model.Subject
	sessions []model.Session
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger for load and encode problems.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New returns an empty Repository.
func New(c clock.Clock, p Persister, opts ...Option) *Repository {
	r := &Repository{
		clock:     c,
		persister: p,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:     uuid.NewString,
		subjects:  []model.Subject{},
		sessions:  []model.Session{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory collections with what the loader holds.
// Missing keys leave a collection empty; unreadable ones are logged and
// skipped.
func (r *Repository) Load(ctx context.Context, loader Loader) {
	var subjects []model.Subject
	var sessions []model.Session
	r.loadKey(ctx, loader, SubjectsKey, &subjects)
	r.loadKey(ctx, loader, SessionsKey, &sessions)

	r.mu.Lock()
	defer r.mu.Unlock()
	if subjects != nil {
		r.subjects = subjects
	}
	if sessions != nil {
		r.sessions = sessions
	}
}

func (r *Repository) loadKey(ctx context.Context, loader Loader, key string, dst any) {
	raw, ok, err := loader.Get(ctx, key)
	if err != nil {
		r.logger.Warn("load collection", "key", key, "error", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn("corrupt collection; ignoring", "key", key, "error", err)
	}
}

// Subjects returns a copy of the subjects in insertion order.
func (r *Repository) Subjects() []model.Subject {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Subject(nil), r.subjects...)
}

// Sessions returns a copy of the sessions in insertion order.
func (r *Repository) Sessions() []model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Session(nil), r.sessions...)
}

// Subject looks a subject up by id.
func (r *Repository) Subject(id string) (model.Subject, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return model.Subject{}, false
}

// HasSubject reports whether id names an existing subject.
func (r *Repository) HasSubject(id string) bool {
	_, ok := r.Subject(id)
	return ok
}

// FindSubject resolves ref as an id, then as a case-insensitive name.
func (r *Repository) FindSubject(ref string) (model.Subject, bool) {
	if s, ok := r.Subject(ref); ok {
		return s, true
	}
	ref = strings.TrimSpace(ref)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.subjects {
		if strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	return model.Subject{}, false
}

// NextColor returns the color a new subject would get.
func (r *Repository) NextColor() model.Color {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextColorLocked()
}

func (r *Repository) nextColorLocked() model.Color {
	used := make([]model.Color, len(r.subjects))
	for i, s := range r.subjects {
		used[i] = s.Color
	}
	return model.NextColor(model.Palette, used, len(r.subjects))
}

// AddSubject creates a subject. An empty color, or one outside the palette,
// picks the next available color. ok is false when the trimmed name is empty.
func (r *Repository) AddSubject(name string, color model.Color) (model.Subject, bool) {
	name = sanitize(name, model.MaxSubjectNameLen)
	if name == "" {
		return model.Subject{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !color.Valid() {
		color = r.nextColorLocked()
	}
	s := model.Subject{
		ID:        r.newID(),
		Name:      name,
		Color:     color,
		CreatedAt: r.clock.Now(),
	}
	r.subjects = append(r.subjects, s)
	r.persistSubjectsLocked()
	return s, true
}

// UpdateSubject applies a partial update. Unknown ids, empty names and
// invalid colors are ignored.
func (r *Repository) UpdateSubject(id string, upd model.SubjectUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.subjects {
		if r.subjects[i].ID != id {
			continue
		}
		if upd.Name != nil {
			if name := sanitize(*upd.Name, model.MaxSubjectNameLen); name != "" {
				r.subjects[i].Name = name
			}
		}
		if upd.Color != nil && upd.Color.Valid() {
			r.subjects[i].Color = *upd.Color
		}
		r.persistSubjectsLocked()
		return true
	}
	return false
}

// DeleteSubject removes a subject together with all of its sessions.
func (r *Repository) DeleteSubject(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subjects := r.subjects[:0:0]
	for _, s := range r.subjects {
		if s.ID != id {
			subjects = append(subjects, s)
		}
	}
	sessions := r.sessions[:0:0]
	for _, s := range r.sessions {
		if s.SubjectID != id {
			sessions = append(sessions, s)
		}
	}
	r.subjects = subjects
	r.sessions = sessions
	r.persistSubjectsLocked()
	r.persistSessionsLocked()
}

// AddSession records a session. ok is false when the subject id is empty or
// the duration is below one minute.
func (r *Repository) AddSession(in model.NewSession) (model.Session, bool) {
	if in.SubjectID == "" || in.Duration < 1 {
		return model.Session{}, false
	}
	if in.Date == "" {
		in.Date = model.DateOf(r.clock.Now())
	}
	s := model.Session{
		SubjectID: in.SubjectID,
		Date:      in.Date,
		Duration:  in.Duration,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Notes:     sanitizeNotes(in.Notes),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.newID()
	s.CreatedAt = r.clock.Now()
	r.sessions = append(r.sessions, s)
	r.persistSessionsLocked()
	return s, true
}

// UpdateSession applies a partial update. Unknown ids are ignored, as are an
// empty subject id and a duration below one minute.
func (r *Repository) UpdateSession(id string, upd model.SessionUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sessions {
		s := &r.sessions[i]
		if s.ID != id {
			continue
		}
		if upd.SubjectID != nil && *upd.SubjectID != "" {
			s.SubjectID = *upd.SubjectID
		}
		if upd.Date != nil && *upd.Date != "" {
			s.Date = *upd.Date
		}
		if upd.Duration != nil && *upd.Duration >= 1 {
			s.Duration = *upd.Duration
		}
		if upd.Notes != nil {
			s.Notes = sanitizeNotes(upd.Notes)
		}
		r.persistSessionsLocked()
		return true
	}
	return false
}

// DeleteSession removes a session by id.
func (r *Repository) DeleteSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sessions {
		if s.ID == id {
			r.sessions = append(r.sessions[:i:i], r.sessions[i+1:]...)
			r.persistSessionsLocked()
			return
		}
	}
}

// SessionsInRange returns sessions dated within [from, to], inclusive.
func (r *Repository) SessionsInRange(from, to model.Date) []model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Session
	for _, s := range r.sessions {
		if s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out
}

// ClearAllData empties both collections.
func (r *Repository) ClearAllData() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = []model.Subject{}
	r.sessions = []model.Session{}
	r.persistSubjectsLocked()
	r.persistSessionsLocked()
}

func (r *Repository) persistSubjectsLocked() {
	r.persist(SubjectsKey, r.subjects)
}

func (r *Repository) persistSessionsLocked() {
	r.persist(SessionsKey, r.sessions)
}

func (r *Repository) persist(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("encode collection", "key", key, "error", err)
		return
	}
	r.persister.Put(key, data)
}

// sanitize trims s and caps it at max characters.
func sanitize(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > max {
		s = string(runes[:max])
	}
	return s
}

func sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	n := sanitize(*notes, model.MaxNotesLen)
	return &n
}
