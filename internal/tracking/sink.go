package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

// Sink is the downstream consumer of conversion events.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
	Close() error
}

// LogSink writes each event to the structured log.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, ev Event) error {
	obs.Logger.Info("conversion_event",
		"type", ev.Type,
		"sequence", ev.Sequence,
		"product_id", ev.ProductID,
		"category", ev.Category,
		"price", ev.Price,
		"quantity", ev.Quantity,
		"language", ev.Language,
	)
	return nil
}

func (LogSink) Close() error { return nil }

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes events as JSON on "<prefix>.<event type>".
type NATSSink struct {
	pub     Publisher
	prefix  string
	closeFn func()
}

// NewNATSSink wraps an existing publisher.
func NewNATSSink(pub Publisher, prefix string) *NATSSink {
	return &NATSSink{pub: pub, prefix: prefix}
}

// DialNATS connects to url and returns a sink owning the connection.
func DialNATS(url, prefix string) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("vegifarm-storefront"))
	if err != nil {
		return nil, fmt.Errorf("tracking: connect nats: %w", err)
	}
	s := NewNATSSink(nc, prefix)
	s.closeFn = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return s, nil
}

// Subject returns the subject an event of type typ is published on.
func (s *NATSSink) Subject(typ string) string {
	if s.prefix == "" {
		return typ
	}
	return s.prefix + "." + typ
}

func (s *NATSSink) Deliver(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("tracking: encode event: %w", err)
	}
	return s.pub.Publish(s.Subject(ev.Type), data)
}

func (s *NATSSink) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
