package kv

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// Valkey stores values in a Valkey server under an optional key prefix.
type Valkey struct {
	client valkey.Client
	prefix string
}

// NewValkey connects using a redis:// style URL and pings the server.
func NewValkey(ctx context.Context, url, prefix string) (*Valkey, error) {
	opts, err := valkey.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("kv: parse valkey url: %w", err)
	}
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: connect valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("kv: ping valkey: %w", err)
	}
	return &Valkey{client: client, prefix: prefix}, nil
}

func (s *Valkey) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(s.prefix+key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Valkey) Set(ctx context.Context, key, value string) error {
	return s.client.Do(ctx, s.client.B().Set().Key(s.prefix+key).Value(value).Build()).Error()
}

func (s *Valkey) Delete(ctx context.Context, key string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.prefix+key).Build()).Error()
}

func (s *Valkey) Close() error {
	s.client.Close()
	return nil
}
