package feedback

import (
	"context"
	"sync"

	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

// Toast is a short user-visible message.
type Toast struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notifier surfaces toasts to the user.
type Notifier interface {
	Notify(ctx context.Context, t Toast)
}

// Toasts collects the toasts raised while serving one request.
type Toasts struct {
	mu    sync.Mutex
	items []Toast
}

func (c *Toasts) add(t Toast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, t)
}

// All returns the collected toasts in order.
func (c *Toasts) All() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Toast(nil), c.items...)
}

type toastsKey struct{}

// WithToasts returns a context whose toasts are collected into the returned Toasts.
func WithToasts(ctx context.Context) (context.Context, *Toasts) {
	c := &Toasts{}
	return context.WithValue(ctx, toastsKey{}, c), c
}

// ContextNotifier logs every toast and records it on the request's Toasts, if any.
type ContextNotifier struct{}

func (ContextNotifier) Notify(ctx context.Context, t Toast) {
	obs.Logger.InfoContext(ctx, "toast", "level", t.Level, "message", t.Message)
	if c, ok := ctx.Value(toastsKey{}).(*Toasts); ok {
		c.add(t)
	}
}
