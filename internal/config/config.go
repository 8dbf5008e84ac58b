// Package config provides runtime configuration values for the storefront.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when ENV_FILE is unset.
const DefaultEnvFile = ".env"

// Config holds configuration knobs for the HTTP server, storage, translations,
// tracking and the hosted feedback backend.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	Environment     string        `env:"ENVIRONMENT"      envDefault:"development"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	StorageDriver    string `env:"STORAGE_DRIVER"     envDefault:"sqlite"`
	StorageDSN       string `env:"STORAGE_DSN"        envDefault:"vegifarm.db"`
	StorageKeyPrefix string `env:"STORAGE_KEY_PREFIX" envDefault:""`

	BrowserLanguage string `env:"BROWSER_LANGUAGE"`
	BundleDir       string `env:"BUNDLE_DIR"`
	WarmConcurrency int    `env:"WARM_CONCURRENCY" envDefault:"4"`

	DatabaseURL     string        `env:"DATABASE_URL"`
	SlackWebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	WebhookTimeout  time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`

	NATSURL           string `env:"NATS_URL"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"vegifarm.conversions"`

	TrackingWorkers            int `env:"TRACKING_WORKERS"              envDefault:"4"`
	TrackingQueueHighWatermark int `env:"TRACKING_QUEUE_HIGH_WATERMARK" envDefault:"5000"`

	FeedbackRateLimit float64       `env:"FEEDBACK_RATE_LIMIT" envDefault:"1"`
	FeedbackRateBurst int           `env:"FEEDBACK_RATE_BURST" envDefault:"5"`
	FeedbackRateIdle  time.Duration `env:"FEEDBACK_RATE_IDLE"  envDefault:"10m"`

	// TrustProxyHeaders keys rate limits on X-Forwarded-For and X-Real-IP.
	// Enable only behind a reverse proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// Load collects configuration from environment with defaults. Variables from
// the dotenv file named by ENV_FILE fill in anything the environment lacks.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.BrowserLanguage == "" {
		cfg.BrowserLanguage = os.Getenv("LANG")
	}
	if cfg.WarmConcurrency <= 0 {
		cfg.WarmConcurrency = 1
	}
	if cfg.TrackingWorkers <= 0 {
		cfg.TrackingWorkers = 1
	}
	return cfg, nil
}

// IsProduction reports whether missing-translation diagnostics should be muted.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// BackendConfigured reports whether the hosted feedback database is reachable by config.
func (c Config) BackendConfigured() bool {
	return c.DatabaseURL != ""
}

func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
