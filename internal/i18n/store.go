package i18n

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
	"github.com/fairyhunter13/vegifarm-storefront/internal/observable"
	"github.com/fairyhunter13/vegifarm-storefront/internal/tracking"
)

// Options configures a Store. Loader defaults to the embedded bundles.
type Options struct {
	Loader          Loader
	Storage         kv.Storage
	Tracker         tracking.Tracker
	BrowserLanguage string
	WarmConcurrency int
	Production      bool
}

// State is the snapshot delivered to subscribers.
type State struct {
	Language     Locale `json:"language"`
	IsLoading    bool   `json:"isLoading"`
	DocumentLang string `json:"documentLang"`
}

// Store owns the active locale and the translation bundles.
type Store struct {
	loader  Loader
	storage kv.Storage
	tracker tracking.Tracker
	opts    Options
	cache   *BundleCache
	group   singleflight.Group
	hub     observable.Hub[State]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	lang     Locale
	bundle   Bundle
	loading  bool
	gen      uint64
	docLang  string
	loadDone chan struct{}
	closed   bool
	version  uint64

	// writeMu keeps the persisted preference in step with the order of switches.
	writeMu sync.Mutex

	warmOnce  sync.Once
	warmDone  chan struct{}
	warmCount atomic.Int32
}

// NewStore resolves the initial locale and starts loading its bundle.
func NewStore(ctx context.Context, opts Options) *Store {
	if opts.Loader == nil {
		opts.Loader = NewFSLoader("")
	}
	if opts.Tracker == nil {
		opts.Tracker = tracking.Nop{}
	}
	if opts.WarmConcurrency <= 0 {
		opts.WarmConcurrency = 4
	}
	s := &Store{
		loader:   opts.Loader,
		storage:  opts.Storage,
		tracker:  opts.Tracker,
		opts:     opts,
		cache:    NewBundleCache(),
		warmDone: make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.activate(InitialLocale(ctx, opts.Storage, opts.BrowserLanguage))
	return s
}

// InitialLocale returns the stored preference, else the browser language, else ja.
func InitialLocale(ctx context.Context, storage kv.Storage, browser string) Locale {
	if storage != nil {
		v, ok, err := storage.Get(ctx, kv.KeyLanguage)
		switch {
		case err != nil:
			obs.Logger.Error("language_preference_read_failed", "error", err)
		case ok && IsSupported(v):
			return Locale(v)
		}
	}
	if l, ok := DetectBrowser(browser); ok {
		return l
	}
	return DefaultLocale
}

// Language returns the active locale.
func (s *Store) Language() Locale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// IsLoading reports whether the active locale's bundle is still being fetched.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// DocumentLang is the language attribute of the rendered document.
func (s *Store) DocumentLang() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docLang
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{Language: s.lang, IsLoading: s.loading, DocumentLang: s.docLang}
}

// Subscribe registers fn for state changes and returns its unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.hub.Subscribe(fn)
}

// SetLanguage switches to code when supported. It returns false and leaves the
// state untouched otherwise.
func (s *Store) SetLanguage(ctx context.Context, code string) bool {
	l, ok := Parse(code)
	if !ok {
		obs.Logger.Error("unsupported_language", "language", code)
		return false
	}
	if s.Language() != l {
		s.activate(l)
	}
	s.tracker.Track(ctx, tracking.Event{Type: tracking.EventLanguageChange, Language: string(l)})
	return true
}

// T returns the active translation of key with params substituted.
// Unknown keys and keys with empty values return the key itself.
func (s *Store) T(key string, params map[string]any) string {
	s.mu.RLock()
	b, lang := s.bundle, s.lang
	s.mu.RUnlock()
	v, ok := b.Lookup(key)
	if !ok {
		if !s.opts.Production {
			obs.Logger.Warn("translation_missing", "key", key, "language", lang)
		}
		return key
	}
	return Format(v, params)
}

// CachedLocales lists the locales whose bundles are resident.
func (s *Store) CachedLocales() []Locale {
	return s.cache.Locales()
}

// Reset drops every cached bundle. The active bundle stays in use.
func (s *Store) Reset() {
	s.cache.Reset()
}

// WaitLoaded blocks until the active locale's load finishes or ctx ends.
func (s *Store) WaitLoaded(ctx context.Context) error {
	s.mu.RLock()
	done := s.loadDone
	s.mu.RUnlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitWarm blocks until the background warm-up of the other locales finishes.
func (s *Store) WaitWarm(ctx context.Context) error {
	select {
	case <-s.warmDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight loads and waits for them. Results of cancelled
// loads are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

func (s *Store) activate(l Locale) {
	s.mu.Lock()
	s.lang = l
	s.docLang = string(l)
	s.gen++
	gen := s.gen
	done := make(chan struct{})
	s.loadDone = done
	if b, ok := s.cache.Get(l); ok {
		s.bundle = b
		s.loading = false
		close(done)
		v, st := s.snapshotLocked()
		s.persistUnlock(l)
		s.hub.PublishVersion(v, st)
		s.startWarm()
		return
	}
	s.loading = true
	v, st := s.snapshotLocked()
	s.persistUnlock(l)
	s.hub.PublishVersion(v, st)
	if !s.spawn(func(ctx context.Context) { s.apply(gen, s.load(ctx, l), done) }) {
		close(done)
	}
}

func (s *Store) apply(gen uint64, b Bundle, done chan struct{}) {
	defer close(done)
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	if b == nil {
		b = Bundle{}
	}
	s.bundle = b
	s.loading = false
	v, st := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.PublishVersion(v, st)
	s.startWarm()
}

// load fetches l, falling back to ja. It returns nil when both fail.
func (s *Store) load(ctx context.Context, l Locale) Bundle {
	b, err := s.fetch(ctx, l)
	if err == nil {
		return b
	}
	obs.Logger.Warn("bundle_load_failed", "language", l, "error", err)
	if l != DefaultLocale && ctx.Err() == nil {
		if b, err = s.fetch(ctx, DefaultLocale); err == nil {
			return b
		}
	}
	obs.Logger.Error("bundle_fallback_failed", "language", l, "fallback", DefaultLocale, "error", err)
	return nil
}

func (s *Store) fetch(ctx context.Context, l Locale) (Bundle, error) {
	if b, ok := s.cache.Get(l); ok {
		return b, nil
	}
	v, err, _ := s.group.Do(string(l), func() (any, error) {
		if b, ok := s.cache.Get(l); ok {
			return b, nil
		}
		start := time.Now()
		b, err := s.loader.Load(ctx, l)
		if err != nil {
			return nil, err
		}
		obs.Logger.Debug("bundle_loaded", "language", l, "keys", len(b), "duration_ms", time.Since(start).Milliseconds())
		return s.cache.Put(l, b), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Bundle), nil
}

func (s *Store) startWarm() {
	s.warmOnce.Do(func() {
		if !s.spawn(s.warm) {
			close(s.warmDone)
		}
	})
}

// warm loads every other locale in parallel. Failures are logged and isolated.
func (s *Store) warm(ctx context.Context) {
	defer close(s.warmDone)
	start := time.Now()
	active := s.Language()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.WarmConcurrency)
	pending := 0
	for _, l := range supported {
		if l == active || s.cache.Has(l) {
			continue
		}
		pending++
		g.Go(func() error {
			if _, err := s.fetch(gctx, l); err != nil {
				obs.Logger.Warn("bundle_preload_failed", "language", l, "error", err)
				return nil
			}
			s.warmCount.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	obs.Logger.Info("bundles_preloaded",
		"loaded", s.warmCount.Load(),
		"requested", pending,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Store) spawn(fn func(context.Context)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

func (s *Store) snapshotLocked() (uint64, State) {
	s.version++
	return s.version, s.stateLocked()
}

// persistUnlock releases mu and writes l. Writes land in the order the
// switches took mu, so the stored preference always names the active locale.
func (s *Store) persistUnlock(l Locale) {
	s.writeMu.Lock()
	s.mu.Unlock()
	defer s.writeMu.Unlock()
	if s.storage == nil {
		return
	}
	if err := s.storage.Set(s.ctx, kv.KeyLanguage, string(l)); err != nil {
		obs.Logger.Error("language_preference_write_failed", "language", l, "error", err)
	}
}
