// Package kv provides the durable local key-value storage behind the stores.
//
// Values are plain strings. Writes are last-write-wins; there is no versioning.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Keys used by the storefront.
const (
	KeyProducts            = "vegifarm-products"
	KeyFavorites           = "vegifarm-favorites"
	KeyLanguage            = "vegifarm-language-preference"
	KeyTranslationFeedback = "translation-feedback"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("kv: unknown storage driver")

// Storage is a string-valued key-value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver    string
	DSN       string
	KeyPrefix string
}

// Open constructs the Storage named by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(ctx, opts.DSN)
	case "redis":
		return NewRedis(ctx, opts.DSN, opts.KeyPrefix)
	case "valkey":
		return NewValkey(ctx, opts.DSN, opts.KeyPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
