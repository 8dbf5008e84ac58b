package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

const (
	DefaultLimit       = 100
	DefaultReportLimit = 10
	statsWindow        = 1000
)

// Toast messages shown when a backend write fails.
const (
	MsgFeedbackCreateFailed = "フィードバックの送信に失敗しました"
	MsgFeedbackUpdateFailed = "フィードバックの更新に失敗しました"
	MsgReviewCreateFailed   = "レビューの保存に失敗しました"
	MsgReviewApproveFailed  = "レビューの承認に失敗しました"
	MsgProductReviewFailed  = "商品レビューの保存に失敗しました"
)

// Webhook is told about every feedback record the backend accepted.
type Webhook interface {
	Send(ctx context.Context, f model.TranslationFeedback) error
}

// Options wires a Service. Repository nil means no database is configured.
type Options struct {
	Repository Repository
	Local      kv.Storage
	Webhook    Webhook
	Notifier   Notifier
}

// Service is the storefront's view of the feedback backend. It never returns
// backend errors: writes yield nil and raise a toast, reads yield empty slices.
type Service struct {
	repo     Repository
	feedback FeedbackStore
	webhook  Webhook
	notifier Notifier
	now      func() time.Time
}

func NewService(opts Options) *Service {
	s := &Service{
		repo:     opts.Repository,
		webhook:  opts.Webhook,
		notifier: opts.Notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if s.notifier == nil {
		s.notifier = ContextNotifier{}
	}
	switch {
	case opts.Repository != nil:
		s.feedback = opts.Repository
	case opts.Local != nil:
		s.feedback = NewLocalFeedback(opts.Local)
	default:
		s.feedback = NewLocalFeedback(kv.NewMemory())
	}
	return s
}

// Configured reports whether a database backs the service.
func (s *Service) Configured() bool { return s.repo != nil }

func (s *Service) fail(ctx context.Context, event, toast string, err error) {
	obs.Logger.ErrorContext(ctx, event, "error", err)
	if toast != "" {
		s.notifier.Notify(ctx, Toast{Level: "error", Message: toast})
	}
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// CreateFeedback stores f and forwards it to the webhook.
func (s *Service) CreateFeedback(ctx context.Context, f model.TranslationFeedback) *model.TranslationFeedback {
	if f.Status == "" {
		f.Status = model.StatusPending
	}
	if !f.Type.Valid() {
		s.fail(ctx, "feedback_invalid", MsgFeedbackCreateFailed, fmt.Errorf("unknown feedback type %q", f.Type))
		return nil
	}
	if !s.Configured() {
		obs.Logger.WarnContext(ctx, "feedback_backend_not_configured", "fallback", "local")
	}
	if err := s.feedback.CreateFeedback(ctx, &f); err != nil {
		s.fail(ctx, "feedback_create_failed", MsgFeedbackCreateFailed, err)
		return nil
	}
	if s.webhook != nil {
		if err := s.webhook.Send(ctx, f); err != nil {
			obs.Logger.ErrorContext(ctx, "feedback_webhook_failed", "feedback_id", f.ID, "error", err)
		}
	}
	obs.Logger.InfoContext(ctx, "feedback_created", "feedback_id", f.ID, "language", f.Language, "type", f.Type)
	return &f
}

func (s *Service) list(ctx context.Context, filter FeedbackFilter, limit int) []model.TranslationFeedback {
	out, err := s.feedback.ListFeedback(ctx, filter, limitOr(limit, DefaultLimit))
	if err != nil {
		s.fail(ctx, "feedback_list_failed", "", err)
		return []model.TranslationFeedback{}
	}
	if out == nil {
		out = []model.TranslationFeedback{}
	}
	return out
}

// ListFeedback returns the newest feedback.
func (s *Service) ListFeedback(ctx context.Context, limit int) []model.TranslationFeedback {
	return s.list(ctx, FeedbackFilter{}, limit)
}

func (s *Service) FeedbackByStatus(ctx context.Context, status string, limit int) []model.TranslationFeedback {
	return s.list(ctx, FeedbackFilter{Status: status}, limit)
}

func (s *Service) FeedbackByLanguage(ctx context.Context, language string, limit int) []model.TranslationFeedback {
	return s.list(ctx, FeedbackFilter{Language: language}, limit)
}

// UpdateFeedback applies u to feedback id. Unknown ids yield nil.
func (s *Service) UpdateFeedback(ctx context.Context, id string, u model.FeedbackUpdate) *model.TranslationFeedback {
	f, err := s.feedback.UpdateFeedback(ctx, id, u, s.now())
	if err != nil {
		toast := MsgFeedbackUpdateFailed
		if !s.Configured() {
			toast = ""
		}
		s.fail(ctx, "feedback_update_failed", toast, err)
		return nil
	}
	return &f
}

// Stats aggregates the latest feedback. Missing statuses count as pending.
func (s *Service) Stats(ctx context.Context) model.FeedbackStats {
	all := s.ListFeedback(ctx, statsWindow)
	st := model.FeedbackStats{
		Total:      len(all),
		ByStatus:   map[string]int{},
		ByLanguage: map[string]int{},
		ByType:     map[string]int{},
	}
	for _, f := range all {
		status := f.Status
		if status == "" {
			status = model.StatusPending
		}
		st.ByStatus[status]++
		st.ByLanguage[f.Language]++
		st.ByType[string(f.Type)]++
	}
	return st
}

func (s *Service) CreateReview(ctx context.Context, r model.TranslationReview) *model.TranslationReview {
	if !s.Configured() {
		obs.Logger.WarnContext(ctx, "review_not_saved", "reason", "backend not configured")
		return nil
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	if err := s.repo.CreateReview(ctx, &r); err != nil {
		s.fail(ctx, "review_create_failed", MsgReviewCreateFailed, err)
		return nil
	}
	return &r
}

func (s *Service) ListReviews(ctx context.Context, limit int) []model.TranslationReview {
	if !s.Configured() {
		return []model.TranslationReview{}
	}
	out, err := s.repo.ListReviews(ctx, limitOr(limit, DefaultLimit))
	if err != nil || out == nil {
		if err != nil {
			s.fail(ctx, "review_list_failed", "", err)
		}
		return []model.TranslationReview{}
	}
	return out
}

func (s *Service) ApproveReview(ctx context.Context, id, approver string) *model.TranslationReview {
	if !s.Configured() {
		return nil
	}
	r, err := s.repo.ApproveReview(ctx, id, approver, s.now())
	if err != nil {
		s.fail(ctx, "review_approve_failed", MsgReviewApproveFailed, err)
		return nil
	}
	return &r
}

// CreateReport stores a quality report. Failures are logged without a toast.
func (s *Service) CreateReport(ctx context.Context, r model.QualityReport) *model.QualityReport {
	if !s.Configured() {
		obs.Logger.WarnContext(ctx, "report_not_saved", "reason", "backend not configured")
		return nil
	}
	if err := s.repo.CreateReport(ctx, &r); err != nil {
		s.fail(ctx, "report_create_failed", "", err)
		return nil
	}
	return &r
}

func (s *Service) LatestReports(ctx context.Context, limit int) []model.QualityReport {
	if !s.Configured() {
		return []model.QualityReport{}
	}
	out, err := s.repo.LatestReports(ctx, limitOr(limit, DefaultReportLimit))
	if err != nil || out == nil {
		if err != nil {
			s.fail(ctx, "report_list_failed", "", err)
		}
		return []model.QualityReport{}
	}
	return out
}

// CreateProductReview validates and stores r as pending.
func (s *Service) CreateProductReview(ctx context.Context, r model.ProductReview) *model.ProductReview {
	if !s.Configured() {
		obs.Logger.WarnContext(ctx, "product_review_not_saved", "reason", "backend not configured")
		return nil
	}
	if err := r.Validate(); err != nil {
		s.fail(ctx, "product_review_invalid", MsgProductReviewFailed, err)
		return nil
	}
	r.Status = model.StatusPending
	r.HelpfulCount = 0
	if err := s.repo.CreateProductReview(ctx, &r); err != nil {
		s.fail(ctx, "product_review_create_failed", MsgProductReviewFailed, err)
		return nil
	}
	return &r
}

func (s *Service) listProductReviews(ctx context.Context, filter ProductReviewFilter, limit int) []model.ProductReview {
	if !s.Configured() {
		return []model.ProductReview{}
	}
	out, err := s.repo.ListProductReviews(ctx, filter, limitOr(limit, DefaultLimit))
	if err != nil || out == nil {
		if err != nil {
			s.fail(ctx, "product_review_list_failed", "", err)
		}
		return []model.ProductReview{}
	}
	return out
}

// ApprovedProductReviews lists the published reviews of one product.
func (s *Service) ApprovedProductReviews(ctx context.Context, productID string, limit int) []model.ProductReview {
	return s.listProductReviews(ctx, ProductReviewFilter{ProductID: productID, Status: model.StatusApproved}, limit)
}

func (s *Service) ProductReviewsByStatus(ctx context.Context, status string, limit int) []model.ProductReview {
	return s.listProductReviews(ctx, ProductReviewFilter{Status: status}, limit)
}

// SetProductReviewStatus moderates a review. Approval records the approver.
func (s *Service) SetProductReviewStatus(ctx context.Context, id, status, approver string) *model.ProductReview {
	if !s.Configured() {
		return nil
	}
	switch status {
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		s.fail(ctx, "product_review_status_invalid", MsgReviewApproveFailed, fmt.Errorf("unknown status %q", status))
		return nil
	}
	r, err := s.repo.SetProductReviewStatus(ctx, id, status, approver, s.now())
	if err != nil {
		s.fail(ctx, "product_review_status_failed", MsgReviewApproveFailed, err)
		return nil
	}
	return &r
}

func (s *Service) MarkHelpful(ctx context.Context, id string) *model.ProductReview {
	if !s.Configured() {
		return nil
	}
	r, err := s.repo.IncrementHelpful(ctx, id)
	if err != nil {
		s.fail(ctx, "product_review_helpful_failed", "", err)
		return nil
	}
	return &r
}

// Close releases the database connection, if any.
func (s *Service) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}
