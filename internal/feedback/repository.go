// Package feedback persists translation feedback, reviews, quality reports and product reviews.
package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

// ErrNotFound is returned by repositories when the addressed record does not exist.
var ErrNotFound = errors.New("feedback: record not found")

// FeedbackFilter narrows a feedback listing. Empty fields match everything.
type FeedbackFilter struct {
	Status   string
	Language string
}

// ProductReviewFilter narrows a product review listing. Empty fields match everything.
type ProductReviewFilter struct {
	ProductID string
	Status    string
}

// FeedbackStore is the feedback half of the backend. It is also served locally
// when no database is configured.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *model.TranslationFeedback) error
	ListFeedback(ctx context.Context, filter FeedbackFilter, limit int) ([]model.TranslationFeedback, error)
	UpdateFeedback(ctx context.Context, id string, u model.FeedbackUpdate, now time.Time) (model.TranslationFeedback, error)
}

// Repository is the hosted database. Listings are newest first.
type Repository interface {
	FeedbackStore

	CreateReview(ctx context.Context, r *model.TranslationReview) error
	ListReviews(ctx context.Context, limit int) ([]model.TranslationReview, error)
	ApproveReview(ctx context.Context, id, approver string, now time.Time) (model.TranslationReview, error)

	CreateReport(ctx context.Context, r *model.QualityReport) error
	LatestReports(ctx context.Context, limit int) ([]model.QualityReport, error)

	CreateProductReview(ctx context.Context, r *model.ProductReview) error
	ListProductReviews(ctx context.Context, filter ProductReviewFilter, limit int) ([]model.ProductReview, error)
	SetProductReviewStatus(ctx context.Context, id, status, approver string, now time.Time) (model.ProductReview, error)
	IncrementHelpful(ctx context.Context, id string) (model.ProductReview, error)

	Close() error
}
