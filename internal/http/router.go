package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", app.indexHandler)

	mux.HandleFunc("GET /api/products", app.listProductsHandler)
	mux.HandleFunc("POST /api/products", app.writable(app.createProductHandler))
	mux.HandleFunc("GET /api/products/{id}", app.getProductHandler)
	mux.HandleFunc("PUT /api/products/{id}", app.writable(app.updateProductHandler))
	mux.HandleFunc("DELETE /api/products/{id}", app.writable(app.deleteProductHandler))
	mux.HandleFunc("GET /api/products/{id}/reviews", app.productReviewsHandler)

	mux.HandleFunc("GET /api/cart", app.getCartHandler)
	mux.HandleFunc("DELETE /api/cart", app.writable(app.clearCartHandler))
	mux.HandleFunc("POST /api/cart/items", app.writable(app.addToCartHandler))
	mux.HandleFunc("PUT /api/cart/items/{id}", app.writable(app.updateCartItemHandler))
	mux.HandleFunc("DELETE /api/cart/items/{id}", app.writable(app.removeCartItemHandler))

	mux.HandleFunc("GET /api/favorites", app.listFavoritesHandler)
	mux.HandleFunc("PUT /api/favorites/{id}", app.writable(app.addFavoriteHandler))
	mux.HandleFunc("DELETE /api/favorites/{id}", app.writable(app.removeFavoriteHandler))

	mux.HandleFunc("GET /api/language", app.getLanguageHandler)
	mux.HandleFunc("PUT /api/language", app.writable(app.setLanguageHandler))
	mux.HandleFunc("GET /api/translations", app.translateHandler)

	mux.HandleFunc("POST /api/feedback", app.writable(app.rateLimited(app.createFeedbackHandler)))
	mux.HandleFunc("GET /api/feedback", app.listFeedbackHandler)
	mux.HandleFunc("GET /api/feedback/stats", app.feedbackStatsHandler)
	mux.HandleFunc("PATCH /api/feedback/{id}", app.writable(app.updateFeedbackHandler))

	mux.HandleFunc("POST /api/translation-reviews", app.writable(app.requireBackend(app.createTranslationReviewHandler)))
	mux.HandleFunc("GET /api/translation-reviews", app.listTranslationReviewsHandler)
	mux.HandleFunc("POST /api/translation-reviews/{id}/approve", app.writable(app.requireBackend(app.approveTranslationReviewHandler)))
	mux.HandleFunc("POST /api/quality-reports", app.writable(app.runQualityHandler))
	mux.HandleFunc("GET /api/quality-reports", app.listReportsHandler)

	mux.HandleFunc("POST /api/reviews", app.writable(app.requireBackend(app.rateLimited(app.createProductReviewHandler))))
	mux.HandleFunc("GET /api/reviews", app.reviewsByStatusHandler)
	mux.HandleFunc("POST /api/reviews/{id}/helpful", app.writable(app.requireBackend(app.markHelpfulHandler)))
	mux.HandleFunc("PUT /api/reviews/{id}/status", app.writable(app.requireBackend(app.setReviewStatusHandler)))

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)
	return WithRequestID(WithLogging(WithContentLanguage(app.Lang.DocumentLang, mux)))
}
