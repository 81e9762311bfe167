// Package writebehind applies store writes asynchronously in issuance order.
//
// Callers mutate their in-memory state first and hand the serialized result
// to a Writer. The Writer never blocks the caller on I/O and never reports
// failures back; it logs them. A single worker applies operations FIFO, and an
// operation is skipped when a newer one for the same key is already queued,
// so a slow write can never land after, and undo, a later one.
package writebehind

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/verte-zerg/studytime/internal/clock"
	"github.com/verte-zerg/studytime/internal/store"
)

type opKind int

const (
	opPut opKind = iota
	opDelete
	opBarrier
)

type op struct {
	kind  opKind
	seq   uint64
	key   string
	value []byte
	done  chan struct{}
}

// Writer is a write-behind queue in front of a store.Store.
type Writer struct {
	store  store.Store
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	queue   []op
	seq     uint64
	latest  map[string]uint64
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used for write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp updatedAt.
func WithClock(c clock.Clock) Option {
	return func(w *Writer) {
		if c != nil {
			w.clock = c
		}
	}
}

// New starts a Writer in front of st.
func New(st store.Store, opts ...Option) *Writer {
	w := &Writer{
		store:   st,
		clock:   clock.Real{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		latest:  map[string]uint64{},
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Put schedules value to be written under key.
func (w *Writer) Put(key string, value []byte) {
	buf := make([]byte, len(value))
	copy(buf, value)
	w.enqueue(op{kind: opPut, key: key, value: buf})
}

// Delete schedules key to be removed.
func (w *Writer) Delete(key string) {
	w.enqueue(op{kind: opDelete, key: key})
}

func (w *Writer) enqueue(o op) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("write-behind queue closed; dropping write", "key", o.key)
		return false
	}
	w.seq++
	o.seq = w.seq
	if o.kind != opBarrier {
		w.latest[o.key] = o.seq
	}
	w.queue = append(w.queue, o)
	// wake is closed under mu, so signal while still holding it.
	select {
	case w.wake <- struct{}{}:
	default:
	}
	w.mu.Unlock()
	return true
}

// Flush waits until every operation issued before the call has been applied
// or ctx is done.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !w.enqueue(op{kind: opBarrier, done: done}) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending operations and stops the worker. Puts after Close
// are dropped with a warning.
func (w *Writer) Close(ctx context.Context) error {
	err := w.Flush(ctx)
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.wake)
	}
	w.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		batch := w.take()
		for _, o := range batch {
			w.apply(o)
		}
		if len(batch) > 0 {
			continue
		}
		if _, ok := <-w.wake; !ok {
			for _, o := range w.take() {
				w.apply(o)
			}
			return
		}
	}
}

func (w *Writer) take() []op {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := w.queue
	w.queue = nil
	return batch
}

func (w *Writer) superseded(o op) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest[o.key] > o.seq
}

func (w *Writer) apply(o op) {
	if o.kind == opBarrier {
		close(o.done)
		return
	}
	if w.superseded(o) {
		return
	}
	ctx := context.Background()
	var err error
	switch o.kind {
	case opPut:
		err = w.store.Put(ctx, o.key, o.value, w.clock.Now())
	case opDelete:
		err = w.store.Delete(ctx, o.key)
	}
	if err != nil {
		w.logger.Warn("persist failed", "key", o.key, "error", err)
	}
}
