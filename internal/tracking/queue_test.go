package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueNeverBlocks(t *testing.T) {
	q := newQueue(1)
	for i := 0; i < 1000; i++ {
		require.True(t, q.enqueue(Event{Type: EventAddToCart}), "enqueue %d", i)
	}
	assert.Equal(t, 1000, q.backlogSize())
	q.flush()
	assert.Equal(t, 999, q.backlogSize())
	assert.Equal(t, 1000, q.depth())
}

func TestQueueClosedIntake(t *testing.T) {
	q := newQueue(1)
	q.closeIntake()
	assert.False(t, q.enqueue(Event{Type: EventAddToCart}))
	assert.Zero(t, q.enqueued.Load())
}

func TestQueueRunFeedsOutput(t *testing.T) {
	q := newQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.run(ctx, 0)

	q.enqueue(Event{Type: EventLanguageChange, Language: "en"})
	select {
	case ev := <-q.out:
		assert.Equal(t, "en", ev.Language)
	case <-time.After(time.Second):
		t.Fatal("event not brokered")
	}
}
