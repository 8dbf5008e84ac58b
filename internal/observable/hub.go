// Package observable implements the subscribe/notify contract shared by the stores.
package observable

import "sync"

// Hub fans a state snapshot out to subscribers in subscription order.
type Hub[S any] struct {
	mu     sync.Mutex
	nextID uint64
	order  []uint64
	subs   map[uint64]func(S)

	pubMu      sync.Mutex
	delivering bool
	pending    *versioned[S]
	delivered  uint64
}

type versioned[S any] struct {
	version uint64
	state   S
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (h *Hub[S]) Subscribe(fn func(S)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[uint64]func(S))
	}
	h.nextID++
	id := h.nextID
	h.subs[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub[S]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Publish delivers s to every current subscriber.
// It must not be called with a store lock held.
func (h *Hub[S]) Publish(s S) {
	h.mu.Lock()
	fns := make([]func(S), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Len returns the number of subscribers.
func (h *Hub[S]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// PublishVersion delivers s tagged with version, which callers assign in
// mutation order. Snapshots older than one already delivered or queued are
// dropped, so the last snapshot subscribers see is always the newest.
// Deliveries never overlap; a call made while another goroutine (or a
// subscriber) is delivering queues s and returns.
func (h *Hub[S]) PublishVersion(version uint64, s S) {
	h.pubMu.Lock()
	if version <= h.delivered || (h.pending != nil && version <= h.pending.version) {
		h.pubMu.Unlock()
		return
	}
	h.pending = &versioned[S]{version: version, state: s}
	if h.delivering {
		h.pubMu.Unlock()
		return
	}
	h.delivering = true
	for h.pending != nil {
		next := h.pending
		h.pending = nil
		h.delivered = next.version
		h.pubMu.Unlock()
		h.Publish(next.state)
		h.pubMu.Lock()
	}
	h.delivering = false
	h.pubMu.Unlock()
}
