package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
)

const slowQueryThreshold = 500 * time.Millisecond

// GormRepository stores records in Postgres through gorm.
type GormRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// Connect opens a pgx pool for databaseURL, wraps it in gorm and migrates the tables.
func Connect(ctx context.Context, databaseURL string) (*GormRepository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("feedback: parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("feedback: connect database: %w", err)
	}
	db, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 stdlib.OpenDBFromPool(pool),
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger:                 &dbLogger{slowThreshold: slowQueryThreshold},
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("feedback: open gorm: %w", err)
	}
	r := &GormRepository{db: db, pool: pool}
	if err := r.Migrate(ctx); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewGormRepository wraps an existing gorm handle. The caller owns its connection.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the four backend tables.
func (r *GormRepository) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&model.TranslationFeedback{},
		&model.TranslationReview{},
		&model.QualityReport{},
		&model.ProductReview{},
	)
	if err != nil {
		return fmt.Errorf("feedback: migrate: %w", err)
	}
	return nil
}

func (r *GormRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *GormRepository) CreateFeedback(ctx context.Context, f *model.TranslationFeedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return wrap("create feedback", r.db.WithContext(ctx).Create(f).Error)
}

func (r *GormRepository) ListFeedback(ctx context.Context, filter FeedbackFilter, limit int) ([]model.TranslationFeedback, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	var out []model.TranslationFeedback
	err := q.Find(&out).Error
	return out, wrap("list feedback", err)
}

func (r *GormRepository) UpdateFeedback(ctx context.Context, id string, u model.FeedbackUpdate, now time.Time) (model.TranslationFeedback, error) {
	var f model.TranslationFeedback
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&f, "id = ?", id).Error; err != nil {
			return err
		}
		u.Apply(&f, now)
		return tx.Save(&f).Error
	})
	return f, wrap("update feedback", err)
}

func (r *GormRepository) CreateReview(ctx context.Context, rv *model.TranslationReview) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	return wrap("create review", r.db.WithContext(ctx).Create(rv).Error)
}

func (r *GormRepository) ListReviews(ctx context.Context, limit int) ([]model.TranslationReview, error) {
	var out []model.TranslationReview
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, wrap("list reviews", err)
}

func (r *GormRepository) ApproveReview(ctx context.Context, id, approver string, now time.Time) (model.TranslationReview, error) {
	var rv model.TranslationReview
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rv, "id = ?", id).Error; err != nil {
			return err
		}
		rv.Status = model.StatusApproved
		rv.ApprovedBy = approver
		rv.ApprovedAt = &now
		rv.UpdatedAt = now
		return tx.Save(&rv).Error
	})
	return rv, wrap("approve review", err)
}

func (r *GormRepository) CreateReport(ctx context.Context, rep *model.QualityReport) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	return wrap("create report", r.db.WithContext(ctx).Create(rep).Error)
}

func (r *GormRepository) LatestReports(ctx context.Context, limit int) ([]model.QualityReport, error) {
	var out []model.QualityReport
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, wrap("list reports", err)
}

func (r *GormRepository) CreateProductReview(ctx context.Context, rv *model.ProductReview) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	return wrap("create product review", r.db.WithContext(ctx).Create(rv).Error)
}

func (r *GormRepository) ListProductReviews(ctx context.Context, filter ProductReviewFilter, limit int) ([]model.ProductReview, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var out []model.ProductReview
	err := q.Find(&out).Error
	return out, wrap("list product reviews", err)
}

func (r *GormRepository) SetProductReviewStatus(ctx context.Context, id, status, approver string, now time.Time) (model.ProductReview, error) {
	var rv model.ProductReview
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rv, "id = ?", id).Error; err != nil {
			return err
		}
		rv.Status = status
		rv.UpdatedAt = now
		if status == model.StatusApproved {
			rv.ApprovedBy = approver
			rv.ApprovedAt = &now
		}
		return tx.Save(&rv).Error
	})
	return rv, wrap("set product review status", err)
}

func (r *GormRepository) IncrementHelpful(ctx context.Context, id string) (model.ProductReview, error) {
	var rv model.ProductReview
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ProductReview{}).
			Where("id = ?", id).
			UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&rv, "id = ?", id).Error
	})
	return rv, wrap("mark review helpful", err)
}

func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("feedback: %s: %w", op, err)
	}
}

// dbLogger routes gorm's query log through the service logger.
type dbLogger struct {
	slowThreshold time.Duration
}

func (l *dbLogger) LogMode(glogger.LogLevel) glogger.Interface { return l }

func (l *dbLogger) Info(ctx context.Context, msg string, data ...any) {
	obs.Logger.InfoContext(ctx, "gorm_info", "message", fmt.Sprintf(msg, data...))
}

func (l *dbLogger) Warn(ctx context.Context, msg string, data ...any) {
	obs.Logger.WarnContext(ctx, "gorm_warn", "message", fmt.Sprintf(msg, data...))
}

func (l *dbLogger) Error(ctx context.Context, msg string, data ...any) {
	obs.Logger.ErrorContext(ctx, "gorm_error", "message", fmt.Sprintf(msg, data...))
}

func (l *dbLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	if !failed && !slow && !obs.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	sql, rows := fc()
	attrs := []any{"duration_ms", elapsed.Milliseconds(), "rows", rows, "query", sql}
	switch {
	case failed:
		obs.Logger.ErrorContext(ctx, "query_failed", append(attrs, "error", err)...)
	case slow:
		obs.Logger.WarnContext(ctx, "query_slow", attrs...)
	default:
		obs.Logger.DebugContext(ctx, "query_executed", attrs...)
	}
}
