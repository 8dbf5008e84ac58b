package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

// Options configures a Dispatcher.
type Options struct {
	Workers       int
	OutBuffer     int
	HighWatermark int
}

// Metrics is a point-in-time view of the dispatcher counters.
type Metrics struct {
	Enqueued  uint64 `json:"events_enqueued"`
	Delivered uint64 `json:"events_delivered"`
	Failed    uint64 `json:"events_failed"`
	Backlog   int    `json:"backlog_size"`
	Depth     int    `json:"queue_depth"`
	Running   int    `json:"workers_running"`
}

// Dispatcher is a Tracker that queues events and delivers them to a Sink on a worker pool.
type Dispatcher struct {
	q     *queue
	seq   sequencer
	sink  Sink
	pool  *ants.Pool
	opts  Options
	now   func() time.Time
	start sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	pumpWG sync.WaitGroup
}

// NewDispatcher builds a Dispatcher delivering to sink. Call Start before tracking.
func NewDispatcher(sink Sink, opts Options) (*Dispatcher, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	pool, err := ants.NewPool(opts.Workers, ants.WithPanicHandler(func(p any) {
		obs.Logger.Error("tracking_delivery_panic", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, fmt.Errorf("tracking: create worker pool: %w", err)
	}
	return &Dispatcher{
		q:    newQueue(opts.OutBuffer),
		sink: sink,
		pool: pool,
		opts: opts,
		now:  time.Now,
	}, nil
}

// Start begins brokering and delivery in the background.
func (d *Dispatcher) Start(parent context.Context) {
	d.start.Do(func() {
		d.ctx, d.cancel = context.WithCancel(parent)
		d.pumpWG.Add(2)
		go func() {
			defer d.pumpWG.Done()
			d.q.run(d.ctx, d.opts.HighWatermark)
		}()
		go func() {
			defer d.pumpWG.Done()
			d.pump()
		}()
	})
}

func (d *Dispatcher) pump() {
	for {
		select {
		case <-d.ctx.Done():
			return
		case ev := <-d.q.out:
			if err := d.pool.Submit(func() { d.deliver(ev) }); err != nil {
				d.q.failed.Add(1)
				obs.Logger.Warn("tracking_submit_failed", "type", ev.Type, "sequence", ev.Sequence, "error", err)
			}
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	if err := d.sink.Deliver(d.ctx, ev); err != nil {
		d.q.failed.Add(1)
		obs.Logger.Warn("tracking_delivery_failed", "type", ev.Type, "sequence", ev.Sequence, "error", err)
		return
	}
	d.q.delivered.Add(1)
}

// Track stamps ev and queues it. It never blocks and never fails the caller.
func (d *Dispatcher) Track(_ context.Context, ev Event) {
	ev.Sequence = d.seq.next()
	if ev.At.IsZero() {
		ev.At = d.now().UTC()
	}
	if !d.q.enqueue(ev) {
		obs.Logger.Debug("tracking_intake_closed", "type", ev.Type)
	}
}

// Metrics exposes the queue counters for observability.
func (d *Dispatcher) Metrics() Metrics {
	return Metrics{
		Enqueued:  d.q.enqueued.Load(),
		Delivered: d.q.delivered.Load(),
		Failed:    d.q.failed.Load(),
		Backlog:   d.q.backlogSize(),
		Depth:     d.q.depth(),
		Running:   d.pool.Running(),
	}
}

// DrainUntil blocks until every accepted event was delivered or failed, or ctx is done.
func (d *Dispatcher) DrainUntil(ctx context.Context) bool {
	for {
		m := d.Metrics()
		if m.Depth == 0 && m.Enqueued == m.Delivered+m.Failed {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// CloseIntake makes further Track calls no-ops.
func (d *Dispatcher) CloseIntake() { d.q.closeIntake() }

// Stop cancels the broker, releases the pool and closes the sink.
func (d *Dispatcher) Stop() {
	d.CloseIntake()
	if d.cancel != nil {
		d.cancel()
	}
	d.pumpWG.Wait()
	if err := d.pool.ReleaseTimeout(5 * time.Second); err != nil {
		obs.Logger.Warn("tracking_pool_release_timeout", "error", err)
	}
	if err := d.sink.Close(); err != nil {
		obs.Logger.Warn("tracking_sink_close_failed", "error", err)
	}
}
