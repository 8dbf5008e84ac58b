package feedback

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

var errDown = errors.New("database unavailable")

// memRepo is an in-memory Repository. When down is set every call fails.
type memRepo struct {
	mu       sync.Mutex
	down     bool
	seq      int
	feedback []model.TranslationFeedback
	reviews  []model.TranslationReview
	reports  []model.QualityReport
	products []model.ProductReview
}

func (m *memRepo) nextID() string {
	m.seq++
	return "id-" + string(rune('a'+m.seq-1))
}

func (m *memRepo) CreateFeedback(_ context.Context, f *model.TranslationFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	f.ID = m.nextID()
	m.feedback = append(m.feedback, *f)
	return nil
}

func (m *memRepo) ListFeedback(_ context.Context, filter FeedbackFilter, limit int) ([]model.TranslationFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errDown
	}
	var out []model.TranslationFeedback
	for _, f := range slices.Backward(m.feedback) {
		if (filter.Status == "" || f.Status == filter.Status) && (filter.Language == "" || f.Language == filter.Language) {
			out = append(out, f)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) UpdateFeedback(_ context.Context, id string, u model.FeedbackUpdate, now time.Time) (model.TranslationFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return model.TranslationFeedback{}, errDown
	}
	for i := range m.feedback {
		if m.feedback[i].ID == id {
			u.Apply(&m.feedback[i], now)
			return m.feedback[i], nil
		}
	}
	return model.TranslationFeedback{}, ErrNotFound
}

func (m *memRepo) CreateReview(_ context.Context, r *model.TranslationReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	r.ID = m.nextID()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memRepo) ListReviews(_ context.Context, limit int) ([]model.TranslationReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errDown
	}
	out := slices.Clone(m.reviews)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) ApproveReview(_ context.Context, id, approver string, now time.Time) (model.TranslationReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return model.TranslationReview{}, errDown
	}
	for i := range m.reviews {
		if m.reviews[i].ID == id {
			m.reviews[i].Status = model.StatusApproved
			m.reviews[i].ApprovedBy = approver
			m.reviews[i].ApprovedAt = &now
			return m.reviews[i], nil
		}
	}
	return model.TranslationReview{}, ErrNotFound
}

func (m *memRepo) CreateReport(_ context.Context, r *model.QualityReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	r.ID = m.nextID()
	m.reports = append(m.reports, *r)
	return nil
}

func (m *memRepo) LatestReports(_ context.Context, limit int) ([]model.QualityReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errDown
	}
	out := slices.Clone(m.reports)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) CreateProductReview(_ context.Context, r *model.ProductReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	r.ID = m.nextID()
	m.products = append(m.products, *r)
	return nil
}

func (m *memRepo) ListProductReviews(_ context.Context, filter ProductReviewFilter, limit int) ([]model.ProductReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errDown
	}
	var out []model.ProductReview
	for _, r := range slices.Backward(m.products) {
		if (filter.ProductID == "" || r.ProductID == filter.ProductID) && (filter.Status == "" || r.Status == filter.Status) {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) SetProductReviewStatus(_ context.Context, id, status, approver string, now time.Time) (model.ProductReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return model.ProductReview{}, errDown
	}
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].Status = status
			if status == model.StatusApproved {
				m.products[i].ApprovedBy = approver
				m.products[i].ApprovedAt = &now
			}
			return m.products[i], nil
		}
	}
	return model.ProductReview{}, ErrNotFound
}

func (m *memRepo) IncrementHelpful(_ context.Context, id string) (model.ProductReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return model.ProductReview{}, errDown
	}
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].HelpfulCount++
			return m.products[i], nil
		}
	}
	return model.ProductReview{}, ErrNotFound
}

func (m *memRepo) Close() error { return nil }
