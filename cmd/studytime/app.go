package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/config"
	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/repo"
	"github.com/verte-zerg/studytime/internal/store"
	"github.com/verte-zerg/studytime/internal/timecalc"
	"github.com/verte-zerg/studytime/internal/timer"
	"github.com/verte-zerg/studytime/internal/writebehind"
)

const closeTimeout = 5 * time.Second

// app is the wired object graph one command runs against.
type app struct {
	cfg    config.FileConfig
	clock  clock.Clock
	logger *slog.Logger
	store  store.Store
	writer *writebehind.Writer
	repo   *repo.Repository
	timer  *timer.Engine
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &rootBackend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "db", &rootDBPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "log-level", &rootLogLevel, fileCfg.Log.Level)

	level, err := config.ParseLogLevel(rootLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	backend := strings.ToLower(strings.TrimSpace(rootBackend))
	path := rootDBPath
	if path == "" {
		path = defaultStorePath(backend)
	}
	st, err := store.Open(backend, path, logger.With("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	c := clock.Real{}
	w := writebehind.New(st,
		writebehind.WithClock(c),
		writebehind.WithLogger(logger.With("component", "writebehind")),
	)
	r := repo.New(c, w, repo.WithLogger(logger.With("component", "repo")))

	ctx := context.Background()
	r.Load(ctx, st)

	opts := []timer.Option{
		timer.WithLogger(logger.With("component", "timer")),
		timer.WithSubjectCheck(r.HasSubject),
	}
	if fileCfg.Timer.TickMs != nil && *fileCfg.Timer.TickMs > 0 {
		opts = append(opts, timer.WithTickInterval(tickInterval(*fileCfg.Timer.TickMs)))
	}
	e := timer.New(c, w, opts...)
	e.Restore(ctx, st)

	return &app{
		cfg:    fileCfg,
		clock:  c,
		logger: logger,
		store:  st,
		writer: w,
		repo:   r,
		timer:  e,
	}, nil
}

func tickInterval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func defaultStorePath(backend string) string {
	if backend == store.BackendBadger {
		return config.DefaultBadgerPath()
	}
	return config.DefaultDBPath()
}

// Close stops the timer display loop, drains pending writes and closes the
// store. A running timer stays persisted for the next invocation.
func (a *app) Close() {
	a.timer.Close()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.writer.Close(ctx); err != nil {
		logErrf("failed to flush pending writes: %v\n", err)
	}
	if err := a.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// withApp runs fn against a freshly opened app and always closes it.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (a *app) subject(ref string) (model.Subject, error) {
	s, ok := a.repo.FindSubject(ref)
	if !ok {
		return model.Subject{}, fmt.Errorf("unknown subject %q", ref)
	}
	return s, nil
}

func (a *app) session(id string) (model.Session, error) {
	for _, s := range a.repo.Sessions() {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Session{}, fmt.Errorf("unknown session %q", id)
}

// saveResult records a finished timer run as a session dated on the day it
// stopped. It fails when the subject was removed while the timer ran.
func (a *app) saveResult(res timer.Result, notes string) (model.Session, bool) {
	if !a.repo.HasSubject(res.SubjectID) {
		return model.Session{}, false
	}
	start, end := res.StartedAt, res.EndedAt
	in := model.NewSession{
		SubjectID: res.SubjectID,
		Date:      model.DateOf(res.EndedAt),
		Duration:  res.Duration,
		StartTime: &start,
		EndTime:   &end,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		in.Notes = &notes
	}
	return a.repo.AddSession(in)
}

func (a *app) subjectName(id string) string {
	if s, ok := a.repo.Subject(id); ok {
		return s.Name
	}
	return id
}

func (a *app) describeResult(res timer.Result) string {
	return fmt.Sprintf("Saved %s of %s.", timecalc.FormatDuration(res.Duration), a.subjectName(res.SubjectID))
}
