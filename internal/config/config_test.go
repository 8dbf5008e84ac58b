package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LANG", "ja_JP.UTF-8")
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "sqlite", c.StorageDriver)
	assert.Equal(t, "vegifarm.db", c.StorageDSN)
	assert.Equal(t, 4, c.WarmConcurrency)
	assert.Equal(t, 5*time.Second, c.WebhookTimeout)
	assert.Equal(t, "vegifarm.conversions", c.NATSSubjectPrefix)
	assert.Equal(t, 5000, c.TrackingQueueHighWatermark)
	assert.Equal(t, 10*time.Minute, c.FeedbackRateIdle)
	assert.False(t, c.TrustProxyHeaders)
	assert.Equal(t, "ja_JP.UTF-8", c.BrowserLanguage)
	assert.False(t, c.IsProduction())
	assert.False(t, c.BackendConfigured())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("BROWSER_LANGUAGE", "ko-KR,ko;q=0.9")
	t.Setenv("WARM_CONCURRENCY", "0")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/vegifarm")
	t.Setenv("FEEDBACK_RATE_BURST", "9")
	t.Setenv("FEEDBACK_RATE_IDLE", "30s")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 2*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "memory", c.StorageDriver)
	assert.Equal(t, "ko-KR,ko;q=0.9", c.BrowserLanguage)
	assert.Equal(t, 1, c.WarmConcurrency)
	assert.Equal(t, 9, c.FeedbackRateBurst)
	assert.Equal(t, 30*time.Second, c.FeedbackRateIdle)
	assert.True(t, c.TrustProxyHeaders)
	assert.True(t, c.IsProduction())
	assert.True(t, c.BackendConfigured())
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vegifarm.env")
	require.NoError(t, os.WriteFile(path, []byte("NATS_SUBJECT_PREFIX=shop.events\nHTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_ADDR", ":9999")
	t.Cleanup(func() { _ = os.Unsetenv("NATS_SUBJECT_PREFIX") })

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "shop.events", c.NATSSubjectPrefix)
	assert.Equal(t, ":9999", c.HTTPAddr)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	_, err := Load()
	require.NoError(t, err)
}
