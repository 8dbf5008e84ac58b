package tracking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

// queue is an unbounded event backlog drained into a buffered channel by a broker goroutine.
// Enqueue never blocks, so tracking can never stall a store mutation.
type queue struct {
	mu      sync.Mutex
	backlog []Event
	notify  chan struct{}
	out     chan Event
	closed  atomic.Bool

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

func newQueue(outBuffer int) *queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &queue{
		notify: make(chan struct{}, 1),
		out:    make(chan Event, outBuffer),
	}
}

// run moves backlog items to the output channel until ctx ends.
func (q *queue) run(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	warned := false
	for {
		q.flush()
		if highWatermark > 0 {
			sz := q.backlogSize()
			switch {
			case sz > highWatermark && !warned:
				obs.Logger.Warn("tracking_backlog_high", "backlog_size", sz, "high_watermark", highWatermark)
				warned = true
			case sz <= highWatermark:
				warned = false
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

func (q *queue) flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for n < len(q.backlog) && len(q.out) < cap(q.out) {
		q.out <- q.backlog[n]
		n++
	}
	q.backlog = q.backlog[n:]
}

func (q *queue) enqueue(ev Event) bool {
	if q.closed.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *queue) backlogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// depth is backlog plus events waiting in the output buffer.
func (q *queue) depth() int {
	return q.backlogSize() + len(q.out)
}

func (q *queue) closeIntake() { q.closed.Store(true) }
