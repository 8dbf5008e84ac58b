package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

type storefrontView struct {
	View      string        `json:"view"`
	Language  languageView  `json:"language"`
	Title     string        `json:"title"`
	Products  []productView `json:"products"`
	Cart      cartView      `json:"cart"`
	Favorites []string      `json:"favorites"`
}

type translationAdminView struct {
	View     string                      `json:"view"`
	Backend  bool                        `json:"backendConfigured"`
	Stats    model.FeedbackStats         `json:"stats"`
	Feedback []model.TranslationFeedback `json:"feedback"`
	Reviews  []model.TranslationReview   `json:"reviews"`
	Reports  []model.QualityReport       `json:"reports"`
}

type reviewAdminView struct {
	View    string                `json:"view"`
	Backend bool                  `json:"backendConfigured"`
	Pending []model.ProductReview `json:"pending"`
}

// indexHandler picks the top-level view from ?admin=.
func (a *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.URL.Query().Get("admin") {
	case "translations":
		respond(w, http.StatusOK, translationAdminView{
			View:     "translation-admin",
			Backend:  a.Feedback.Configured(),
			Stats:    a.Feedback.Stats(ctx),
			Feedback: a.Feedback.ListFeedback(ctx, 0),
			Reviews:  a.Feedback.ListReviews(ctx, 0),
			Reports:  a.Feedback.LatestReports(ctx, 0),
		}, nil)
	case "reviews":
		respond(w, http.StatusOK, reviewAdminView{
			View:    "review-admin",
			Backend: a.Feedback.Configured(),
			Pending: a.Feedback.ProductReviewsByStatus(ctx, model.StatusPending, 0),
		}, nil)
	default:
		l := a.Lang.Language()
		respond(w, http.StatusOK, storefrontView{
			View:      "storefront",
			Language:  a.languageView(),
			Title:     a.tr("products.title", nil),
			Products:  a.productViews(l),
			Cart:      a.cartView(l),
			Favorites: a.Catalog.Favorites(),
		}, nil)
	}
}
