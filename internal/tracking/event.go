// Package tracking delivers fire-and-forget conversion events.
package tracking

import (
	"context"
	"sync"
	"time"
)

// Event types emitted by the stores.
const (
	EventAddToCart      = "add_to_cart"
	EventAddToWishlist  = "add_to_wishlist"
	EventLanguageChange = "language_change"
)

// Event is a single conversion notification.
type Event struct {
	Type      string    `json:"type"`
	ProductID string    `json:"product_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Category  string    `json:"category,omitempty"`
	Price     int64     `json:"price,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Language  string    `json:"language,omitempty"`
	Sequence  uint64    `json:"sequence"`
	At        time.Time `json:"at"`
}

// Tracker accepts events without blocking the caller.
type Tracker interface {
	Track(ctx context.Context, ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Track(context.Context, Event) {}

// Recorder keeps events in memory; useful in tests and for debugging.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Track(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(typ string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
