package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/vegifarm-storefront/internal/config"
	"github.com/fairyhunter13/vegifarm-storefront/internal/feedback"
	httpapi "github.com/fairyhunter13/vegifarm-storefront/internal/http"
	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
	"github.com/fairyhunter13/vegifarm-storefront/internal/store"
	"github.com/fairyhunter13/vegifarm-storefront/internal/tracking"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.InitLogger(cfg.LogLevel, cfg.LogFormat)
	obs.Logger.Info("service_starting", "environment", cfg.Environment, "storage_driver", cfg.StorageDriver)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	storage, err := kv.Open(ctx, kv.Options{Driver: cfg.StorageDriver, DSN: cfg.StorageDSN, KeyPrefix: cfg.StorageKeyPrefix})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			obs.Logger.Warn("storage_close_failed", "error", err)
		}
	}()

	disp, err := newDispatcher(cfg)
	if err != nil {
		return err
	}
	disp.Start(ctx)

	overlays, err := i18n.DefaultOverlays()
	if err != nil {
		return fmt.Errorf("load product overlays: %w", err)
	}
	lang := i18n.NewStore(ctx, i18n.Options{
		Loader:          i18n.NewFSLoader(cfg.BundleDir),
		Storage:         storage,
		Tracker:         disp,
		BrowserLanguage: cfg.BrowserLanguage,
		WarmConcurrency: cfg.WarmConcurrency,
		Production:      cfg.IsProduction(),
	})
	catalog := store.Open(ctx, store.Options{Storage: storage, Tracker: disp, Overlays: overlays})
	svc := newFeedbackService(ctx, cfg, storage)

	app := httpapi.NewApp(cfg, catalog, lang, svc, disp)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	var serveErr error
	select {
	case s := <-sigc:
		obs.Logger.Info("shutdown_signal", "signal", s.String())
	case serveErr = <-errc:
		obs.Logger.Error("http_server_error", "error", serveErr)
	}

	app.StartShutdown()
	m := disp.Metrics()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", m.Backlog, "queue_depth", m.Depth)

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := disp.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	lang.Close()
	disp.Stop()
	if err := svc.Close(); err != nil {
		obs.Logger.Warn("feedback_close_failed", "error", err)
	}
	obs.Logger.Info("service_stopped")
	return serveErr
}

// newDispatcher delivers conversions to the log and, when configured, to NATS.
func newDispatcher(cfg config.Config) (*tracking.Dispatcher, error) {
	sinks := tracking.MultiSink{tracking.LogSink{}}
	if cfg.NATSURL != "" {
		ns, err := tracking.DialNATS(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			obs.Logger.Warn("nats_unavailable", "url", cfg.NATSURL, "error", err)
		} else {
			sinks = append(sinks, ns)
		}
	}
	return tracking.NewDispatcher(sinks, tracking.Options{
		Workers:       cfg.TrackingWorkers,
		HighWatermark: cfg.TrackingQueueHighWatermark,
	})
}

// newFeedbackService connects the hosted backend, falling back to local storage.
func newFeedbackService(ctx context.Context, cfg config.Config, storage kv.Storage) *feedback.Service {
	opts := feedback.Options{Local: storage}
	if cfg.BackendConfigured() {
		repo, err := feedback.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			obs.Logger.Error("feedback_backend_unavailable", "error", err)
		} else {
			opts.Repository = repo
		}
	}
	if cfg.SlackWebhookURL != "" {
		opts.Webhook = feedback.NewSlackWebhook(cfg.SlackWebhookURL, cfg.WebhookTimeout)
	}
	return feedback.NewService(opts)
}
