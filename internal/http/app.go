package httpapi

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/vegifarm-storefront/internal/config"
	"github.com/fairyhunter13/vegifarm-storefront/internal/feedback"
	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/store"
	"github.com/fairyhunter13/vegifarm-storefront/internal/tracking"
)

// MetricsSource reports conversion dispatch counters.
type MetricsSource interface {
	Metrics() tracking.Metrics
}

// App holds the stores and services behind the HTTP handlers.
type App struct {
	Cfg      config.Config
	Catalog  *store.Store
	Lang     *i18n.Store
	Feedback *feedback.Service
	Tracking MetricsSource
	Bundles  i18n.Loader

	limiter *ipLimiter
	closing atomic.Bool
	started time.Time
}

func NewApp(cfg config.Config, catalog *store.Store, lang *i18n.Store, fb *feedback.Service, tr MetricsSource) *App {
	return &App{
		Cfg:      cfg,
		Catalog:  catalog,
		Lang:     lang,
		Feedback: fb,
		Tracking: tr,
		Bundles:  i18n.NewFSLoader(cfg.BundleDir),
		limiter:  newIPLimiter(cfg.FeedbackRateLimit, cfg.FeedbackRateBurst, cfg.FeedbackRateIdle),
		started:  time.Now(),
	}
}

// StartShutdown makes write endpoints refuse new work.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) metrics() tracking.Metrics {
	if a.Tracking == nil {
		return tracking.Metrics{}
	}
	return a.Tracking.Metrics()
}

// locale resolves an optional ?lang= override against the active language.
func (a *App) locale(code string) i18n.Locale {
	if l, ok := i18n.Parse(code); ok {
		return l
	}
	return a.Lang.Language()
}

func notify(ctx context.Context, level, msg string) {
	feedback.ContextNotifier{}.Notify(ctx, feedback.Toast{Level: level, Message: msg})
}
