package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

// LocalFeedback keeps feedback as a JSON array in the local key-value storage.
// It stands in for the database when none is configured.
type LocalFeedback struct {
	storage kv.Storage
	mu      sync.Mutex
}

func NewLocalFeedback(storage kv.Storage) *LocalFeedback {
	return &LocalFeedback{storage: storage}
}

func (l *LocalFeedback) read(ctx context.Context) ([]model.TranslationFeedback, error) {
	raw, ok, err := l.storage.Get(ctx, kv.KeyTranslationFeedback)
	if err != nil {
		return nil, fmt.Errorf("feedback: read local: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var out []model.TranslationFeedback
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("feedback: decode local: %w", err)
	}
	return out, nil
}

func (l *LocalFeedback) write(ctx context.Context, all []model.TranslationFeedback) error {
	b, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("feedback: encode local: %w", err)
	}
	if err := l.storage.Set(ctx, kv.KeyTranslationFeedback, string(b)); err != nil {
		return fmt.Errorf("feedback: write local: %w", err)
	}
	return nil
}

func (l *LocalFeedback) CreateFeedback(ctx context.Context, f *model.TranslationFeedback) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.read(ctx)
	if err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = "local-" + uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	return l.write(ctx, append(all, *f))
}

// ListFeedback returns matching feedback, newest first.
func (l *LocalFeedback) ListFeedback(ctx context.Context, filter FeedbackFilter, limit int) ([]model.TranslationFeedback, error) {
	l.mu.Lock()
	all, err := l.read(ctx)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]model.TranslationFeedback, 0, len(all))
	for _, f := range slices.Backward(all) {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Language != "" && f.Language != filter.Language {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (l *LocalFeedback) UpdateFeedback(ctx context.Context, id string, u model.FeedbackUpdate, now time.Time) (model.TranslationFeedback, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.read(ctx)
	if err != nil {
		return model.TranslationFeedback{}, err
	}
	i := slices.IndexFunc(all, func(f model.TranslationFeedback) bool { return f.ID == id })
	if i < 0 {
		return model.TranslationFeedback{}, ErrNotFound
	}
	u.Apply(&all[i], now)
	if err := l.write(ctx, all); err != nil {
		return model.TranslationFeedback{}, err
	}
	return all[i], nil
}
