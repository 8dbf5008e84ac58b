package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/vegifarm-storefront/internal/feedback"
	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
	"github.com/fairyhunter13/vegifarm-storefront/internal/store"
)

// Cart totals at which the free-shipping promotions kick in.
const (
	promoThreshold      = 3000
	promoBonusThreshold = 5000
)

type productView struct {
	model.Product
	DisplayPrice string `json:"displayPrice"`
	StockStatus  string `json:"stockStatus"`
	StockLabel   string `json:"stockLabel"`
	Favorite     bool   `json:"favorite"`
}

type cartLine struct {
	model.CartItem
	Subtotal        int64  `json:"subtotal"`
	DisplaySubtotal string `json:"displaySubtotal"`
	StockRemaining  string `json:"stockRemaining,omitempty"`
	OutOfStock      string `json:"outOfStock,omitempty"`
}

type cartView struct {
	Items        []cartLine `json:"items"`
	TotalItems   int        `json:"totalItems"`
	TotalPrice   int64      `json:"totalPrice"`
	ShippingFee  int64      `json:"shippingFee"`
	FinalTotal   int64      `json:"finalTotal"`
	DisplayTotal string     `json:"displayTotal"`
	Promo        string     `json:"promo"`
}

// tr translates with the bundle of the active language.
func (a *App) tr(key string, params map[string]any) string {
	return a.Lang.T(key, params)
}

func (a *App) productViews(l i18n.Locale) []productView {
	favs := a.Catalog.Favorites()
	isFav := make(map[string]bool, len(favs))
	for _, id := range favs {
		isFav[id] = true
	}
	ps := a.Catalog.LocalizedProducts(l)
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		key, params := store.StockLabel(p)
		out = append(out, productView{
			Product:      p,
			DisplayPrice: i18n.FormatPrice(p.PriceNumber, l),
			StockStatus:  store.CheckStock(p).String(),
			StockLabel:   a.tr(key, params),
			Favorite:     isFav[p.ID],
		})
	}
	return out
}

func (a *App) cartView(l i18n.Locale) cartView {
	items := a.Catalog.Items()
	lines := make([]cartLine, 0, len(items))
	for _, it := range items {
		if lp, ok := a.Catalog.LocalizedProduct(it.ID, l); ok {
			it.Name = lp.Name
		}
		line := cartLine{
			CartItem:        it,
			Subtotal:        it.Subtotal(),
			DisplaySubtotal: i18n.FormatPrice(it.Subtotal(), l),
		}
		// The two notes are independent; an over-ordered low-stock line shows both.
		if it.Stock != nil {
			n := *it.Stock
			if n > 0 && n <= store.RemainingThreshold {
				line.StockRemaining = a.tr("cart.stockRemaining", map[string]any{"count": n})
			}
			if it.Quantity > n {
				line.OutOfStock = a.tr("cart.outOfStock", map[string]any{"stock": n})
			}
		}
		lines = append(lines, line)
	}
	total := a.Catalog.TotalPrice()
	v := cartView{
		Items:        lines,
		TotalItems:   a.Catalog.TotalItems(),
		TotalPrice:   total,
		ShippingFee:  a.Catalog.ShippingFee(),
		FinalTotal:   a.Catalog.FinalTotal(),
		DisplayTotal: i18n.FormatPrice(a.Catalog.FinalTotal(), l),
	}
	switch {
	case total < promoThreshold:
		v.Promo = a.tr("cart.promo3000", map[string]any{"amount": i18n.FormatPrice(promoThreshold-total, l)})
	case total < promoBonusThreshold:
		v.Promo = a.tr("cart.promo3000Achieved", nil)
	default:
		v.Promo = a.tr("cart.promo5000", nil)
	}
	return v
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.productViews(a.locale(r.URL.Query().Get("lang"))), nil)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := a.Catalog.LocalizedProduct(r.PathValue("id"), a.locale(r.URL.Query().Get("lang")))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", a.tr("errors.notFound", nil))
		return
	}
	respond(w, http.StatusOK, p, nil)
}

func validateProduct(in model.ProductInput) string {
	switch {
	case in.Name == "":
		return "name is required"
	case in.PriceNumber < 0:
		return "priceNumber must be >= 0"
	case in.Stock != nil && *in.Stock < 0:
		return "stock must be >= 0"
	}
	return ""
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateProduct(in); msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	respond(w, http.StatusCreated, a.Catalog.AddProduct(in), nil)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateProduct(in); msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	id := r.PathValue("id")
	if !a.Catalog.UpdateProduct(id, in) {
		WriteJSONError(w, http.StatusNotFound, "not_found", a.tr("errors.notFound", nil))
		return
	}
	p, _ := a.Catalog.Product(id)
	respond(w, http.StatusOK, p, nil)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Catalog.DeleteProduct(r.PathValue("id")) {
		WriteJSONError(w, http.StatusNotFound, "not_found", a.tr("errors.notFound", nil))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.cartView(a.locale(r.URL.Query().Get("lang"))), nil)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
}

// addToCartHandler applies the stock gate before handing the product to the cart.
func (a *App) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l := a.Lang.Language()
	p, ok := a.Catalog.Product(req.ProductID)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", a.tr("errors.notFound", nil))
		return
	}
	status := store.CheckStock(p)
	if status == store.SoldOut {
		obs.Logger.InfoContext(r.Context(), "add_to_cart_rejected", "product_id", p.ID, "reason", status.String())
		WriteJSONError(w, http.StatusConflict, "sold_out", a.tr("products.errorSoldOut", nil))
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	a.Catalog.AddToCart(ctx, p)
	name := p.Name
	if lp, ok := a.Catalog.LocalizedProduct(p.ID, l); ok {
		name = lp.Name
	}
	notify(ctx, "success", a.tr("products.addedToCart", map[string]any{"name": name}))
	if status == store.LowStock {
		notify(ctx, "info", a.tr("products.lowStockWarning", map[string]any{"count": *p.Stock}))
	}
	respond(w, http.StatusOK, a.cartView(l), toasts)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (a *App) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a.Catalog.UpdateQuantity(r.PathValue("id"), req.Quantity)
	respond(w, http.StatusOK, a.cartView(a.Lang.Language()), nil)
}

func (a *App) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	a.Catalog.RemoveFromCart(r.PathValue("id"))
	respond(w, http.StatusOK, a.cartView(a.Lang.Language()), nil)
}

func (a *App) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	a.Catalog.ClearCart()
	respond(w, http.StatusOK, a.cartView(a.Lang.Language()), nil)
}

func (a *App) listFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.Catalog.Favorites(), nil)
}

func (a *App) addFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx, toasts := feedback.WithToasts(r.Context())
	added := !a.Catalog.IsFavorite(id)
	a.Catalog.AddToFavorites(ctx, id)
	if added {
		if p, ok := a.Catalog.LocalizedProduct(id, a.Lang.Language()); ok {
			notify(ctx, "success", a.tr("products.addedToFavorites", map[string]any{"name": p.Name}))
		}
	}
	respond(w, http.StatusOK, a.Catalog.Favorites(), toasts)
}

func (a *App) removeFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx, toasts := feedback.WithToasts(r.Context())
	if a.Catalog.IsFavorite(id) {
		a.Catalog.RemoveFromFavorites(id)
		if p, ok := a.Catalog.LocalizedProduct(id, a.Lang.Language()); ok {
			notify(ctx, "success", a.tr("products.removedFromFavorites", map[string]any{"name": p.Name}))
		}
	}
	respond(w, http.StatusOK, a.Catalog.Favorites(), toasts)
}
