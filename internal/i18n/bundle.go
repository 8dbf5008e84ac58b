package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed locales/*.toml
var embeddedLocales embed.FS

// Bundle maps dotted translation keys to template strings.
type Bundle map[string]string

// Lookup returns the non-empty template stored under key.
func (b Bundle) Lookup(key string) (string, bool) {
	v, ok := b[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Keys returns every key in the bundle.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	return keys
}

// Format replaces every "{name}" in tmpl with the stringified params value.
func Format(tmpl string, params map[string]any) string {
	if len(params) == 0 {
		return tmpl
	}
	// Single left-to-right pass: substituted values are never scanned again.
	var sb strings.Builder
	sb.Grow(len(tmpl))
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(tmpl[open+1:], '}')
		if end < 0 {
			break
		}
		v, ok := params[tmpl[open+1:open+1+end]]
		if !ok {
			sb.WriteString(tmpl[:open+1])
			tmpl = tmpl[open+1:]
			continue
		}
		sb.WriteString(tmpl[:open])
		sb.WriteString(fmt.Sprint(v))
		tmpl = tmpl[open+end+2:]
	}
	sb.WriteString(tmpl)
	return sb.String()
}

// Loader fetches the bundle for one locale.
type Loader interface {
	Load(ctx context.Context, l Locale) (Bundle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, l Locale) (Bundle, error)

func (f LoaderFunc) Load(ctx context.Context, l Locale) (Bundle, error) { return f(ctx, l) }

// FSLoader reads "<locale>.toml" message files from a filesystem.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader reads bundles from dir, or from the embedded copies when dir is empty.
func NewFSLoader(dir string) *FSLoader {
	if dir == "" {
		sub, _ := fs.Sub(embeddedLocales, "locales")
		return &FSLoader{fsys: sub}
	}
	return &FSLoader{fsys: os.DirFS(dir)}
}

// NewFSLoaderFS reads bundles from the root of fsys.
func NewFSLoaderFS(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

func (f *FSLoader) Load(ctx context.Context, l Locale) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := string(l) + ".toml"
	buf, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("i18n: read bundle %s: %w", l, err)
	}
	return ParseBundle(name, buf)
}

var unmarshalers = map[string]goi18n.UnmarshalFunc{"toml": toml.Unmarshal}

// ParseBundle decodes a go-i18n message file. Nested tables flatten to dotted keys.
func ParseBundle(path string, buf []byte) (Bundle, error) {
	mf, err := goi18n.ParseMessageFileBytes(buf, path, unmarshalers)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse %s: %w", path, err)
	}
	b := make(Bundle, len(mf.Messages))
	for _, m := range mf.Messages {
		b[m.ID] = m.Other
	}
	return b, nil
}

// BundleCache holds loaded bundles for the lifetime of a Store.
// Entries are only added if absent and are removed only by Reset.
type BundleCache struct {
	mu      sync.RWMutex
	bundles map[Locale]Bundle
}

// NewBundleCache returns an empty cache.
func NewBundleCache() *BundleCache {
	return &BundleCache{bundles: make(map[Locale]Bundle)}
}

func (c *BundleCache) Get(l Locale) (Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bundles[l]
	return b, ok
}

func (c *BundleCache) Has(l Locale) bool {
	_, ok := c.Get(l)
	return ok
}

// Put stores b unless l is already cached and returns the resident bundle.
func (c *BundleCache) Put(l Locale, b Bundle) Bundle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.bundles[l]; ok {
		return cur
	}
	c.bundles[l] = b
	return b
}

// Locales lists the cached locales in display order.
func (c *BundleCache) Locales() []Locale {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Locale
	for _, l := range supported {
		if _, ok := c.bundles[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (c *BundleCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundles = make(map[Locale]Bundle)
}
