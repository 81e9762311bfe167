package writebehind

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/studytime/internal/store"
)

// gatedStore records applied operations and can hold the first Put until
// released, so tests can queue work behind an in-flight write.
type gatedStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	applied   []string
	gate      chan struct{}
	entered   chan struct{}
	enterOnce sync.Once
	failPut   bool
}

func newGatedStore() *gatedStore {
	return &gatedStore{data: map[string][]byte{}}
}

func (s *gatedStore) hold() {
	s.gate = make(chan struct{})
	s.entered = make(chan struct{})
}

func (s *gatedStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *gatedStore) Put(_ context.Context, key string, value []byte, _ time.Time) error {
	if s.gate != nil {
		s.enterOnce.Do(func() { close(s.entered) })
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errors.New("disk full")
	}
	s.data[key] = value
	s.applied = append(s.applied, "put "+key+"="+string(value))
	return nil
}

func (s *gatedStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.applied = append(s.applied, "delete "+key)
	return nil
}

func (s *gatedStore) Close() error { return nil }

func (s *gatedStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.applied...)
}

func TestWriterAppliesInOrder(t *testing.T) {
	st := newGatedStore()
	st.hold()
	w := New(st)
	defer w.Close(context.Background())

	w.Put("a", []byte("1"))
	<-st.entered

	w.Put("b", []byte("2"))
	w.Delete("a")
	close(st.gate)
	require.NoError(t, w.Flush(context.Background()))

	assert.Equal(t, []string{"put a=1", "put b=2", "delete a"}, st.snapshot())
	_, ok, _ := st.Get(context.Background(), "a")
	assert.False(t, ok)
}

func TestWriterCoalescesQueuedWrites(t *testing.T) {
	st := newGatedStore()
	st.hold()
	w := New(st)
	defer w.Close(context.Background())

	w.Put("first", []byte("0"))
	<-st.entered

	w.Put("a", []byte("1"))
	w.Put("b", []byte("2"))
	w.Delete("a")
	close(st.gate)
	require.NoError(t, w.Flush(context.Background()))

	assert.Equal(t, []string{"put first=0", "put b=2", "delete a"}, st.snapshot())
}

func TestWriterSkipsSupersededWrites(t *testing.T) {
	st := newGatedStore()
	st.hold()
	w := New(st)
	defer w.Close(context.Background())

	w.Put("timer", []byte("running"))
	<-st.entered

	w.Put("timer", []byte("paused"))
	w.Put("other", []byte("x"))
	w.Delete("timer")
	close(st.gate)
	require.NoError(t, w.Flush(context.Background()))

	assert.Equal(t, []string{"put timer=running", "put other=x", "delete timer"}, st.snapshot())
	_, ok, _ := st.Get(context.Background(), "timer")
	assert.False(t, ok, "late write must not revert the delete")
}

func TestWriterLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	st := newGatedStore()
	st.failPut = true
	w := New(st, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	w.Put("sessions", []byte("[]"))
	require.NoError(t, w.Flush(context.Background()))
	assert.Contains(t, logs.String(), "persist failed")
	assert.Contains(t, logs.String(), "key=sessions")

	st.mu.Lock()
	st.failPut = false
	st.mu.Unlock()
	w.Put("sessions", []byte("[1]"))
	require.NoError(t, w.Close(context.Background()))

	got, ok, _ := st.Get(context.Background(), "sessions")
	require.True(t, ok)
	assert.Equal(t, []byte("[1]"), got)
}

func TestWriterDropsAfterClose(t *testing.T) {
	st := newGatedStore()
	w := New(st)
	require.NoError(t, w.Close(context.Background()))

	w.Put("late", []byte("x"))
	require.NoError(t, w.Flush(context.Background()))
	assert.Empty(t, st.snapshot())
}

func TestWriterFlushHonorsContext(t *testing.T) {
	st := newGatedStore()
	st.hold()
	w := New(st)

	w.Put("slow", []byte("x"))
	<-st.entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, w.Flush(ctx), context.DeadlineExceeded)

	close(st.gate)
	require.NoError(t, w.Close(context.Background()))
}

func TestWriterWithBadger(t *testing.T) {
	st, err := store.OpenBadgerInMemory()
	require.NoError(t, err)
	defer st.Close()

	w := New(st)
	for i := 0; i < 50; i++ {
		w.Put("counter", []byte{byte(i)})
	}
	require.NoError(t, w.Close(context.Background()))

	got, ok, err := st.Get(context.Background(), "counter")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{49}, got)
}
