package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyLanguage, "en"))
	v, ok, err := s.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)

	require.NoError(t, s.Set(ctx, KeyLanguage, "ko"))
	v, _, err = s.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.Equal(t, "ko", v, "last write wins")

	require.NoError(t, s.Delete(ctx, KeyLanguage))
	_, ok, err = s.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "kv.db")
	s, err := NewSQLite(context.Background(), path)
	require.NoError(t, err)
	exerciseStorage(t, s)
	require.NoError(t, s.Set(context.Background(), KeyFavorites, `["tomato"]`))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), KeyFavorites)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["tomato"]`, v)
}

func TestRedis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	s, err := NewRedis(context.Background(), url, "kvtest:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}

func TestValkey(t *testing.T) {
	url := os.Getenv("TEST_VALKEY_URL")
	if url == "" {
		t.Skip("TEST_VALKEY_URL not set")
	}
	s, err := NewValkey(context.Background(), url, "kvtest:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(context.Background(), Options{Driver: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
