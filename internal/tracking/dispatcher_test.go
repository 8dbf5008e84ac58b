package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

func (s *memSink) Deliver(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func drain(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.True(t, d.DrainUntil(ctx), "drain timeout")
}

func TestDispatcherDeliversAllEvents(t *testing.T) {
	sink := &memSink{}
	d, err := NewDispatcher(sink, Options{Workers: 3, OutBuffer: 8})
	require.NoError(t, err)
	d.Start(context.Background())
	defer d.Stop()

	for i := 0; i < 100; i++ {
		d.Track(context.Background(), Event{Type: EventAddToCart, ProductID: "tomato", Quantity: 1})
	}
	drain(t, d)

	got := sink.snapshot()
	assert.Len(t, got, 100)
	seen := map[uint64]bool{}
	for _, ev := range got {
		assert.False(t, ev.At.IsZero())
		seen[ev.Sequence] = true
	}
	assert.Len(t, seen, 100, "sequence numbers are unique")

	m := d.Metrics()
	assert.EqualValues(t, 100, m.Enqueued)
	assert.EqualValues(t, 100, m.Delivered)
	assert.Zero(t, m.Failed)
}

func TestDispatcherCountsFailures(t *testing.T) {
	sink := &memSink{err: errors.New("downstream unavailable")}
	d, err := NewDispatcher(sink, Options{Workers: 1})
	require.NoError(t, err)
	d.Start(context.Background())
	defer d.Stop()

	d.Track(context.Background(), Event{Type: EventAddToWishlist})
	d.Track(context.Background(), Event{Type: EventAddToWishlist})
	drain(t, d)
	assert.EqualValues(t, 2, d.Metrics().Failed)
}

func TestDispatcherStopClosesIntakeAndSink(t *testing.T) {
	sink := &memSink{}
	d, err := NewDispatcher(sink, Options{})
	require.NoError(t, err)
	d.Start(context.Background())
	d.Stop()

	d.Track(context.Background(), Event{Type: EventLanguageChange})
	assert.Zero(t, d.Metrics().Enqueued)
	assert.True(t, sink.closed)
}
