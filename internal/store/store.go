// Package store holds the catalog, the shopping cart and the favorites set.
package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
	"github.com/fairyhunter13/vegifarm-storefront/internal/observable"
	"github.com/fairyhunter13/vegifarm-storefront/internal/tracking"
)

const writeTimeout = 5 * time.Second

// Options wires a Store to its collaborators. Every field is optional.
type Options struct {
	Storage  kv.Storage
	Tracker  tracking.Tracker
	Overlays i18n.Overlays
	NewID    func() string
}

// State is the snapshot delivered to subscribers.
type State struct {
	Products  []model.Product  `json:"products"`
	Items     []model.CartItem `json:"items"`
	Favorites []string         `json:"favorites"`
}

type dirty uint8

const (
	dirtyProducts dirty = 1 << iota
	dirtyFavorites
)

// Store is safe for concurrent use. Mutations never fail; storage errors are logged.
type Store struct {
	storage  kv.Storage
	tracker  tracking.Tracker
	overlays i18n.Overlays
	newID    func() string
	hub      observable.Hub[State]

	mu        sync.RWMutex
	products  []model.Product
	items     []model.CartItem
	favorites []string
	favSet    map[string]struct{}
	version   uint64

	// writeMu orders storage writes the same way mutations were applied.
	writeMu sync.Mutex
}

// New returns a Store holding the seed catalog. It does not read storage.
func New(opts Options) *Store {
	if opts.Tracker == nil {
		opts.Tracker = tracking.Nop{}
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "product-" + xid.New().String() }
	}
	return &Store{
		storage:   opts.Storage,
		tracker:   opts.Tracker,
		overlays:  opts.Overlays,
		newID:     opts.NewID,
		products:  Seed(),
		favorites: []string{},
		favSet:    map[string]struct{}{},
	}
}

// Open builds a Store and loads its persisted catalog and favorites.
func Open(ctx context.Context, opts Options) *Store {
	s := New(opts)
	s.Load(ctx)
	return s
}

// Load replaces the catalog and favorites with their stored values.
// Unreadable or malformed catalogs fall back to the seed list.
func (s *Store) Load(ctx context.Context) {
	products := s.loadProducts(ctx)
	favorites := s.loadFavorites(ctx)

	s.mu.Lock()
	s.products = products
	s.favorites, s.favSet = dedupe(favorites)
	s.version++
	v, st := s.version, s.stateLocked()
	s.mu.Unlock()

	obs.Logger.Info("catalog_loaded", "products", len(products), "favorites", len(st.Favorites))
	s.hub.PublishVersion(v, st)
}

// dedupe keeps the first occurrence of each id and returns the matching index.
func dedupe(ids []string) ([]string, map[string]struct{}) {
	set := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		out = append(out, id)
	}
	return out, set
}

func (s *Store) loadProducts(ctx context.Context) []model.Product {
	if s.storage == nil {
		return Seed()
	}
	raw, ok, err := s.storage.Get(ctx, kv.KeyProducts)
	if err != nil {
		obs.Logger.Error("catalog_read_failed", "error", err)
		return Seed()
	}
	if !ok {
		return Seed()
	}
	var products []model.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil || products == nil {
		obs.Logger.Error("catalog_malformed", "error", err)
		return Seed()
	}
	return products
}

func (s *Store) loadFavorites(ctx context.Context) []string {
	if s.storage == nil {
		return []string{}
	}
	raw, ok, err := s.storage.Get(ctx, kv.KeyFavorites)
	if err != nil {
		obs.Logger.Error("favorites_read_failed", "error", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}
	var favorites []string
	if err := json.Unmarshal([]byte(raw), &favorites); err != nil || favorites == nil {
		obs.Logger.Error("favorites_malformed", "error", err)
		return []string{}
	}
	return favorites
}

// Subscribe registers fn for state changes and returns its unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.hub.Subscribe(fn)
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{
		Products:  cloneProducts(s.products),
		Items:     cloneItems(s.items),
		Favorites: slices.Clone(s.favorites),
	}
}

func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

func (s *Store) Items() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites)
}

// Product looks up a catalog entry by id.
func (s *Store) Product(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.productIndex(id); i >= 0 {
		return s.products[i].Clone(), true
	}
	return model.Product{}, false
}

// LocalizedProducts is the catalog in order with the locale's overlays applied.
func (s *Store) LocalizedProducts(l i18n.Locale) []model.Product {
	return s.overlays.LocalizeAll(s.Products(), l)
}

// LocalizedProduct is Product with the locale's overlays applied.
func (s *Store) LocalizedProduct(id string, l i18n.Locale) (model.Product, bool) {
	p, ok := s.Product(id)
	if !ok {
		return p, false
	}
	return s.overlays.Localize(p, l), true
}

// AddToCart increments the quantity of p, inserting it with quantity one when absent.
func (s *Store) AddToCart(ctx context.Context, p model.Product) {
	s.update(func() (bool, dirty) {
		if i := s.itemIndex(p.ID); i >= 0 {
			s.items[i].Quantity++
			return true, 0
		}
		s.items = append(s.items, model.CartItem{Product: p.Clone(), Quantity: 1})
		return true, 0
	})
	s.tracker.Track(ctx, tracking.Event{
		Type:      tracking.EventAddToCart,
		ProductID: p.ID,
		Name:      p.Name,
		Category:  category(p),
		Price:     p.PriceNumber,
		Quantity:  1,
	})
}

// RemoveFromCart drops the line for id if present.
func (s *Store) RemoveFromCart(id string) {
	s.update(func() (bool, dirty) {
		i := s.itemIndex(id)
		if i < 0 {
			return false, 0
		}
		s.items = slices.Delete(s.items, i, i+1)
		return true, 0
	})
}

// UpdateQuantity sets the quantity for id. Zero or less removes the line.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(id)
		return
	}
	s.update(func() (bool, dirty) {
		i := s.itemIndex(id)
		if i < 0 || s.items[i].Quantity == quantity {
			return false, 0
		}
		s.items[i].Quantity = quantity
		return true, 0
	})
}

func (s *Store) ClearCart() {
	s.update(func() (bool, dirty) {
		if len(s.items) == 0 {
			return false, 0
		}
		s.items = nil
		return true, 0
	})
}

// TotalItems is the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of line subtotals.
func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

// ShippingFee is settled after the order is placed, so it is always zero here.
func (s *Store) ShippingFee() int64 { return 0 }

func (s *Store) FinalTotal() int64 { return s.TotalPrice() + s.ShippingFee() }

// AddToFavorites inserts id once. The first insert of a catalog product is tracked.
func (s *Store) AddToFavorites(ctx context.Context, id string) {
	var (
		product model.Product
		known   bool
	)
	added := s.update(func() (bool, dirty) {
		if _, ok := s.favSet[id]; ok {
			return false, 0
		}
		s.favSet[id] = struct{}{}
		s.favorites = append(s.favorites, id)
		if i := s.productIndex(id); i >= 0 {
			product, known = s.products[i].Clone(), true
		}
		return true, dirtyFavorites
	})
	if !added || !known {
		return
	}
	s.tracker.Track(ctx, tracking.Event{
		Type:      tracking.EventAddToWishlist,
		ProductID: product.ID,
		Name:      product.Name,
		Category:  category(product),
		Price:     product.PriceNumber,
	})
}

func (s *Store) RemoveFromFavorites(id string) {
	s.update(func() (bool, dirty) {
		if !s.unfavoriteLocked(id) {
			return false, 0
		}
		return true, dirtyFavorites
	})
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favSet[id]
	return ok
}

// unfavoriteLocked drops id from the favorites list and its index.
func (s *Store) unfavoriteLocked(id string) bool {
	if _, ok := s.favSet[id]; !ok {
		return false
	}
	delete(s.favSet, id)
	if i := slices.Index(s.favorites, id); i >= 0 {
		s.favorites = slices.Delete(s.favorites, i, i+1)
	}
	return true
}

// AddProduct appends a new catalog entry under a fresh id and returns it.
func (s *Store) AddProduct(in model.ProductInput) model.Product {
	p := in.WithID(s.newID())
	s.update(func() (bool, dirty) {
		s.products = append(s.products, p.Clone())
		return true, dirtyProducts
	})
	obs.Logger.Info("product_added", "product_id", p.ID)
	return p
}

// UpdateProduct replaces every field of id except the id. It reports whether id exists.
func (s *Store) UpdateProduct(id string, in model.ProductInput) bool {
	return s.update(func() (bool, dirty) {
		i := s.productIndex(id)
		if i < 0 {
			return false, 0
		}
		s.products[i] = in.WithID(id)
		return true, dirtyProducts
	})
}

// DeleteProduct removes id from the catalog, the cart and favorites.
func (s *Store) DeleteProduct(id string) bool {
	ok := s.update(func() (bool, dirty) {
		i := s.productIndex(id)
		if i < 0 {
			return false, 0
		}
		s.products = slices.Delete(s.products, i, i+1)
		d := dirtyProducts
		if j := s.itemIndex(id); j >= 0 {
			s.items = slices.Delete(s.items, j, j+1)
		}
		if s.unfavoriteLocked(id) {
			d |= dirtyFavorites
		}
		return true, d
	})
	if ok {
		obs.Logger.Info("product_deleted", "product_id", id)
	}
	return ok
}

// update applies fn under the write lock, persists what it dirtied and notifies subscribers.
// Snapshots carry the mutation's version, so a slow publisher never overwrites a newer state.
func (s *Store) update(fn func() (bool, dirty)) bool {
	s.mu.Lock()
	changed, d := fn()
	if !changed {
		s.mu.Unlock()
		return false
	}
	writes := s.pendingWritesLocked(d)
	s.version++
	v, st := s.version, s.stateLocked()
	s.writeMu.Lock()
	s.mu.Unlock()

	s.flush(writes)
	s.writeMu.Unlock()
	s.hub.PublishVersion(v, st)
	return true
}

type write struct {
	key   string
	value []byte
}

func (s *Store) pendingWritesLocked(d dirty) []write {
	if s.storage == nil {
		return nil
	}
	var out []write
	// An empty catalog is never written: after the last product is deleted the
	// previously stored list stays in place and comes back on the next Load.
	if d&dirtyProducts != 0 && len(s.products) > 0 {
		if b, err := json.Marshal(s.products); err == nil {
			out = append(out, write{kv.KeyProducts, b})
		} else {
			obs.Logger.Error("catalog_encode_failed", "error", err)
		}
	}
	if d&dirtyFavorites != 0 {
		if b, err := json.Marshal(s.favorites); err == nil {
			out = append(out, write{kv.KeyFavorites, b})
		} else {
			obs.Logger.Error("favorites_encode_failed", "error", err)
		}
	}
	return out
}

func (s *Store) flush(writes []write) {
	if len(writes) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	for _, w := range writes {
		if err := s.storage.Set(ctx, w.key, string(w.value)); err != nil {
			obs.Logger.Error("storage_write_failed", "key", w.key, "error", err)
		}
	}
}

func (s *Store) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == id })
}

func (s *Store) itemIndex(id string) int {
	return slices.IndexFunc(s.items, func(it model.CartItem) bool { return it.ID == id })
}

func category(p model.Product) string {
	if p.Badge != "" {
		return p.Badge
	}
	return DefaultCategory
}

func cloneProducts(ps []model.Product) []model.Product {
	out := make([]model.Product, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func cloneItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, len(items))
	for i, it := range items {
		it.Product = it.Product.Clone()
		out[i] = it
	}
	return out
}
