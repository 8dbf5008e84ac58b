package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/vegifarm-storefront/internal/feedback"
	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
	"github.com/fairyhunter13/vegifarm-storefront/internal/quality"
)

type feedbackRequest struct {
	Language       string             `json:"language"`
	Page           string             `json:"page"`
	TranslationKey string             `json:"translation_key,omitempty"`
	OriginalText   string             `json:"original_text,omitempty"`
	Suggestion     string             `json:"suggestion"`
	Type           model.FeedbackType `json:"type"`
	UserEmail      string             `json:"user_email,omitempty"`
}

// rateLimited throttles next per client address.
func (a *App) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, a.Cfg.TrustProxyHeaders)
		if !a.limiter.allow(ip) {
			obs.Logger.WarnContext(r.Context(), "rate_limited", "path", r.URL.Path, "client_ip", ip)
			WriteJSONError(w, http.StatusTooManyRequests, "too_many_requests", a.tr("feedback.tooManyRequests", nil))
			return
		}
		next(w, r)
	}
}

// requireBackend rejects review and report endpoints when no database is configured.
func (a *App) requireBackend(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Feedback.Configured() {
			WriteJSONError(w, http.StatusServiceUnavailable, "backend_not_configured", "")
			return
		}
		next(w, r)
	}
}

func (a *App) createFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case !i18n.IsSupported(req.Language):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "unsupported language")
		return
	case req.Suggestion == "":
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "suggestion is required")
		return
	case !req.Type.Valid():
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "type must be improvement, error or unclear")
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	f := a.Feedback.CreateFeedback(ctx, model.TranslationFeedback{
		Language:       req.Language,
		Page:           req.Page,
		TranslationKey: req.TranslationKey,
		OriginalText:   req.OriginalText,
		Suggestion:     req.Suggestion,
		Type:           req.Type,
		UserEmail:      req.UserEmail,
	})
	if f == nil {
		respond(w, http.StatusBadGateway, nil, toasts)
		return
	}
	notify(ctx, "success", a.tr("feedback.thanks", nil))
	respond(w, http.StatusCreated, f, toasts)
}

func (a *App) listFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryLimit(r)
	var out []model.TranslationFeedback
	switch {
	case q.Get("status") != "":
		out = a.Feedback.FeedbackByStatus(r.Context(), q.Get("status"), limit)
	case q.Get("language") != "":
		out = a.Feedback.FeedbackByLanguage(r.Context(), q.Get("language"), limit)
	default:
		out = a.Feedback.ListFeedback(r.Context(), limit)
	}
	respond(w, http.StatusOK, out, nil)
}

func (a *App) updateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var u model.FeedbackUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	f := a.Feedback.UpdateFeedback(ctx, r.PathValue("id"), u)
	if f == nil {
		respond(w, http.StatusNotFound, nil, toasts)
		return
	}
	respond(w, http.StatusOK, f, toasts)
}

func (a *App) feedbackStatsHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.Feedback.Stats(r.Context()), nil)
}

type translationReviewRequest struct {
	TranslationKey string `json:"translation_key"`
	Language       string `json:"language"`
	OldValue       string `json:"old_value,omitempty"`
	NewValue       string `json:"new_value"`
	ReviewerEmail  string `json:"reviewer_email"`
	ReviewType     string `json:"review_type"`
	Notes          string `json:"notes,omitempty"`
}

type approveRequest struct {
	Approver string `json:"approver"`
}

func (a *App) createTranslationReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req translationReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TranslationKey == "" || req.NewValue == "" || !i18n.IsSupported(req.Language) {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "translation_key, new_value and a supported language are required")
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	rv := a.Feedback.CreateReview(ctx, model.TranslationReview{
		TranslationKey: req.TranslationKey,
		Language:       req.Language,
		OldValue:       req.OldValue,
		NewValue:       req.NewValue,
		ReviewerEmail:  req.ReviewerEmail,
		ReviewType:     req.ReviewType,
		Notes:          req.Notes,
	})
	if rv == nil {
		respond(w, http.StatusBadGateway, nil, toasts)
		return
	}
	respond(w, http.StatusCreated, rv, toasts)
}

func (a *App) listTranslationReviewsHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.Feedback.ListReviews(r.Context(), queryLimit(r)), nil)
}

func (a *App) approveTranslationReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	rv := a.Feedback.ApproveReview(ctx, r.PathValue("id"), req.Approver)
	if rv == nil {
		respond(w, http.StatusNotFound, nil, toasts)
		return
	}
	respond(w, http.StatusOK, rv, toasts)
}

type qualityRun struct {
	Result quality.Result       `json:"result"`
	Report *model.QualityReport `json:"report,omitempty"`
}

// runQualityHandler checks every bundle against the reference and stores the report.
func (a *App) runQualityHandler(w http.ResponseWriter, r *http.Request) {
	res, err := quality.Run(r.Context(), a.Bundles)
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "quality_check_failed", err.Error())
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	rep := a.Feedback.CreateReport(ctx, res.Report(r.URL.Query().Get("created_by")))
	respond(w, http.StatusCreated, qualityRun{Result: res, Report: rep}, toasts)
}

func (a *App) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.Feedback.LatestReports(r.Context(), queryLimit(r)), nil)
}

type productReviewRequest struct {
	ProductID          string `json:"product_id"`
	Rating             int    `json:"rating"`
	ProductQuality     *int   `json:"product_quality,omitempty"`
	Freshness          *int   `json:"freshness,omitempty"`
	Delivery           *int   `json:"delivery,omitempty"`
	Title              string `json:"title,omitempty"`
	ReviewText         string `json:"review_text"`
	ReviewerName       string `json:"reviewer_name,omitempty"`
	ReviewerEmail      string `json:"reviewer_email"`
	IsAnonymous        bool   `json:"is_anonymous"`
	IsVerifiedPurchase bool   `json:"is_verified_purchase"`
}

type reviewStatusRequest struct {
	Status   string `json:"status"`
	Approver string `json:"approver,omitempty"`
}

func (a *App) createProductReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req productReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, ok := a.Catalog.Product(req.ProductID)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", a.tr("errors.notFound", nil))
		return
	}
	rv := model.ProductReview{
		ProductID:          p.ID,
		ProductName:        p.Name,
		Rating:             req.Rating,
		ProductQuality:     req.ProductQuality,
		Freshness:          req.Freshness,
		Delivery:           req.Delivery,
		Title:              req.Title,
		ReviewText:         req.ReviewText,
		ReviewerName:       req.ReviewerName,
		ReviewerEmail:      req.ReviewerEmail,
		IsAnonymous:        req.IsAnonymous,
		IsVerifiedPurchase: req.IsVerifiedPurchase,
	}
	if err := rv.Validate(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	saved := a.Feedback.CreateProductReview(ctx, rv)
	if saved == nil {
		respond(w, http.StatusBadGateway, nil, toasts)
		return
	}
	respond(w, http.StatusCreated, saved, toasts)
}

func (a *App) productReviewsHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.Feedback.ApprovedProductReviews(r.Context(), r.PathValue("id"), queryLimit(r)), nil)
}

func (a *App) reviewsByStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.StatusPending
	}
	respond(w, http.StatusOK, a.Feedback.ProductReviewsByStatus(r.Context(), status, queryLimit(r)), nil)
}

func (a *App) setReviewStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req reviewStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Status {
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "status must be pending, approved or rejected")
		return
	}
	ctx, toasts := feedback.WithToasts(r.Context())
	rv := a.Feedback.SetProductReviewStatus(ctx, r.PathValue("id"), req.Status, req.Approver)
	if rv == nil {
		respond(w, http.StatusNotFound, nil, toasts)
		return
	}
	respond(w, http.StatusOK, rv, toasts)
}

func (a *App) markHelpfulHandler(w http.ResponseWriter, r *http.Request) {
	rv := a.Feedback.MarkHelpful(r.Context(), r.PathValue("id"))
	if rv == nil {
		WriteJSONError(w, http.StatusNotFound, "not_found", a.tr("errors.notFound", nil))
		return
	}
	respond(w, http.StatusOK, rv, nil)
}
