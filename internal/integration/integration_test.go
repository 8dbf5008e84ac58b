package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/vegifarm-storefront/internal/config"
	"github.com/fairyhunter13/vegifarm-storefront/internal/feedback"
	httpapi "github.com/fairyhunter13/vegifarm-storefront/internal/http"
	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/store"
	"github.com/fairyhunter13/vegifarm-storefront/internal/tracking"
)

// captureSink records every delivered conversion.
type captureSink struct {
	mu     sync.Mutex
	events []tracking.Event
}

func (c *captureSink) Deliver(_ context.Context, ev tracking.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) types() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]int{}
	for _, ev := range c.events {
		out[ev.Type]++
	}
	return out
}

type stack struct {
	srv     *httptest.Server
	app     *httpapi.App
	disp    *tracking.Dispatcher
	sink    *captureSink
	lang    *i18n.Store
	storage kv.Storage
	once    sync.Once
}

// boot wires the storefront the way the serve command does, on a sqlite file.
func boot(t *testing.T, dsn string) *stack {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.FeedbackRateLimit = 100
	cfg.FeedbackRateBurst = 100
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	storage, err := kv.Open(ctx, kv.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sink := &captureSink{}
	disp, err := tracking.NewDispatcher(sink, tracking.Options{Workers: 2, HighWatermark: 100})
	require.NoError(t, err)
	disp.Start(context.Background())

	overlays, err := i18n.DefaultOverlays()
	require.NoError(t, err)
	lang := i18n.NewStore(ctx, i18n.Options{Storage: storage, Tracker: disp, BrowserLanguage: "ja-JP"})
	require.NoError(t, lang.WaitLoaded(ctx))
	catalog := store.Open(ctx, store.Options{Storage: storage, Tracker: disp, Overlays: overlays})
	svc := feedback.NewService(feedback.Options{Local: storage})

	app := httpapi.NewApp(cfg, catalog, lang, svc, disp)
	s := &stack{srv: httptest.NewServer(httpapi.NewRouter(app)), app: app, disp: disp, sink: sink, lang: lang, storage: storage}
	t.Cleanup(s.close)
	return s
}

func (s *stack) close() {
	s.once.Do(func() {
		s.srv.Close()
		s.lang.Close()
		s.disp.Stop()
		_ = s.storage.Close()
	})
}

func (s *stack) call(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestIntegration_ShopperJourney(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "vegifarm.db")
	s := boot(t, dsn)

	resp, out := s.call(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ja", resp.Header.Get("Content-Language"))
	assert.Equal(t, "storefront", out["data"].(map[string]any)["view"])

	resp, _ = s.call(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "mini-tomato"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.call(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "carrots"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = s.call(t, http.MethodPut, "/api/favorites/leafy-greens", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.call(t, http.MethodPut, "/api/language", map[string]string{"language": "ko"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ko", resp.Header.Get("Content-Language"))
	resp, _ = s.call(t, http.MethodPost, "/api/feedback", map[string]string{
		"language": "ko", "page": "/", "suggestion": "더 자연스럽게", "type": "improvement",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.True(t, s.disp.DrainUntil(ctx))
	assert.Equal(t, map[string]int{
		tracking.EventAddToCart:      1,
		tracking.EventAddToWishlist:  1,
		tracking.EventLanguageChange: 1,
	}, s.sink.types())

	_, out = s.call(t, http.MethodGet, "/debug/metrics", nil)
	assert.EqualValues(t, 3, out["events_delivered"])

	// A restart on the same file keeps favorites, language and feedback but not the cart.
	s.close()
	s2 := boot(t, dsn)
	assert.Equal(t, i18n.Korean, s2.lang.Language())
	assert.Equal(t, []string{"leafy-greens"}, s2.app.Catalog.Favorites())
	assert.Empty(t, s2.app.Catalog.Items())
	_, out = s2.call(t, http.MethodGet, "/api/feedback", nil)
	assert.Len(t, out["data"], 1)
}

func TestIntegration_CatalogSurvivesRestart(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "vegifarm.db")
	s := boot(t, dsn)
	resp, out := s.call(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Shishito", "price": "¥350", "priceNumber": 350, "unit": "1袋", "stock": 12,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := out["data"].(map[string]any)["id"].(string)
	resp, _ = s.call(t, http.MethodDelete, "/api/products/tomato", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	s.close()
	s2 := boot(t, dsn)
	_, ok := s2.app.Catalog.Product(id)
	assert.True(t, ok)
	_, ok = s2.app.Catalog.Product("tomato")
	assert.False(t, ok)
	assert.Len(t, s2.app.Catalog.Products(), 6)
}

func TestIntegration_ConcurrentAddToCart(t *testing.T) {
	s := boot(t, filepath.Join(t.TempDir(), "vegifarm.db"))
	const concurrency, perGoroutine = 20, 10
	client := s.srv.Client()

	var wg sync.WaitGroup
	errCh := make(chan error, concurrency*perGoroutine)
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				r, _ := http.NewRequest(http.MethodPost, s.srv.URL+"/api/cart/items", bytes.NewBufferString(`{"productId":"seasonal-set"}`))
				r.Header.Set("Content-Type", "application/json")
				resp, err := client.Do(r)
				if err != nil {
					errCh <- err
					return
				}
				if resp.StatusCode != http.StatusOK {
					errCh <- fmt.Errorf("expected 200, got %d", resp.StatusCode)
				}
				_ = resp.Body.Close()
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
	assert.Equal(t, concurrency*perGoroutine, s.app.Catalog.TotalItems())
	assert.Equal(t, int64(concurrency*perGoroutine*2500), s.app.Catalog.TotalPrice())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, s.disp.DrainUntil(ctx))
	assert.Equal(t, concurrency*perGoroutine, s.sink.types()[tracking.EventAddToCart])
}

// BenchmarkAddToCart measures POST /api/cart/items end to end.
func BenchmarkAddToCart(b *testing.B) {
	storage := kv.NewMemory()
	overlays, _ := i18n.DefaultOverlays()
	lang := i18n.NewStore(context.Background(), i18n.Options{Storage: storage, Production: true})
	defer lang.Close()
	catalog := store.New(store.Options{Storage: storage, Overlays: overlays})
	cfg, _ := config.Load()
	h := httpapi.NewRouter(httpapi.NewApp(cfg, catalog, lang, feedback.NewService(feedback.Options{Local: storage}), nil))

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(`{"productId":"tomato"}`))
			r.Header.Set("Content-Type", "application/json")
			h.ServeHTTP(httptest.NewRecorder(), r)
		}
	})
}
