package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

type recordingWebhook struct {
	sent []model.TranslationFeedback
}

func (w *recordingWebhook) Send(_ context.Context, f model.TranslationFeedback) error {
	w.sent = append(w.sent, f)
	return nil
}

func sample(lang string, typ model.FeedbackType) model.TranslationFeedback {
	return model.TranslationFeedback{Language: lang, Page: "/cart", Suggestion: "better wording", Type: typ}
}

func TestLocalFallbackStoresFeedback(t *testing.T) {
	mem := kv.NewMemory()
	hook := &recordingWebhook{}
	svc := NewService(Options{Local: mem, Webhook: hook})
	ctx := context.Background()
	require.False(t, svc.Configured())

	first := svc.CreateFeedback(ctx, sample("en", model.FeedbackImprovement))
	require.NotNil(t, first)
	assert.Regexp(t, `^local-[0-9a-f-]{36}$`, first.ID)
	assert.Equal(t, model.StatusPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())
	svc.CreateFeedback(ctx, sample("ja", model.FeedbackError))

	all := svc.ListFeedback(ctx, 0)
	require.Len(t, all, 2)
	assert.Equal(t, "ja", all[0].Language)
	assert.Len(t, svc.FeedbackByLanguage(ctx, "en", 10), 1)
	assert.Len(t, svc.ListFeedback(ctx, 1), 1)
	assert.Len(t, hook.sent, 2)

	raw, ok, err := mem.Get(ctx, kv.KeyTranslationFeedback)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, first.ID)
}

func TestLocalUpdateAndStats(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()
	f := svc.CreateFeedback(ctx, sample("vi", model.FeedbackUnclear))
	svc.CreateFeedback(ctx, sample("vi", model.FeedbackError))
	svc.CreateFeedback(ctx, sample("th", model.FeedbackError))

	status, reviewer := model.StatusApplied, "admin@example.com"
	updated := svc.UpdateFeedback(ctx, f.ID, model.FeedbackUpdate{Status: &status, ReviewedBy: &reviewer})
	require.NotNil(t, updated)
	assert.Equal(t, model.StatusApplied, updated.Status)
	require.NotNil(t, updated.ReviewedAt)

	assert.Nil(t, svc.UpdateFeedback(ctx, "local-missing", model.FeedbackUpdate{Status: &status}))
	assert.Len(t, svc.FeedbackByStatus(ctx, model.StatusApplied, 0), 1)

	st := svc.Stats(ctx)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, map[string]int{"applied": 1, "pending": 2}, st.ByStatus)
	assert.Equal(t, map[string]int{"vi": 2, "th": 1}, st.ByLanguage)
	assert.Equal(t, map[string]int{"unclear": 1, "error": 2}, st.ByType)
}

func TestInvalidFeedbackTypeIsRejected(t *testing.T) {
	svc := NewService(Options{})
	ctx, toasts := WithToasts(context.Background())
	assert.Nil(t, svc.CreateFeedback(ctx, sample("en", "praise")))
	require.Len(t, toasts.All(), 1)
	assert.Empty(t, svc.ListFeedback(context.Background(), 0))
}

func TestUnconfiguredReviewsAndReports(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()

	assert.Nil(t, svc.CreateReview(ctx, model.TranslationReview{TranslationKey: "cart.title"}))
	assert.NotNil(t, svc.ListReviews(ctx, 0))
	assert.Empty(t, svc.ListReviews(ctx, 0))
	assert.Nil(t, svc.ApproveReview(ctx, "x", "a@example.com"))
	assert.Nil(t, svc.CreateReport(ctx, model.QualityReport{}))
	assert.Empty(t, svc.LatestReports(ctx, 0))
	assert.Nil(t, svc.CreateProductReview(ctx, model.ProductReview{ProductID: "tomato", Rating: 5, ReviewText: "great"}))
	assert.Empty(t, svc.ApprovedProductReviews(ctx, "tomato", 0))
	assert.Nil(t, svc.MarkHelpful(ctx, "x"))
	assert.NoError(t, svc.Close())
}

func TestRepositoryBackedWorkflow(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(Options{Repository: repo})
	ctx := context.Background()
	require.True(t, svc.Configured())

	rv := svc.CreateReview(ctx, model.TranslationReview{TranslationKey: "cart.title", Language: "en", NewValue: "Basket", ReviewerEmail: "r@example.com", ReviewType: "ui"})
	require.NotNil(t, rv)
	assert.Equal(t, model.StatusPending, rv.Status)
	approved := svc.ApproveReview(ctx, rv.ID, "lead@example.com")
	require.NotNil(t, approved)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, "lead@example.com", approved.ApprovedBy)
	assert.Len(t, svc.ListReviews(ctx, 0), 1)

	rep := svc.CreateReport(ctx, model.QualityReport{Errors: 1, TotalIssues: 1})
	require.NotNil(t, rep)
	assert.Len(t, svc.LatestReports(ctx, 0), 1)

	pr := svc.CreateProductReview(ctx, model.ProductReview{ProductID: "tomato", Rating: 4, ReviewText: "sweet", HelpfulCount: 40, Status: model.StatusApproved})
	require.NotNil(t, pr)
	assert.Equal(t, model.StatusPending, pr.Status)
	assert.Zero(t, pr.HelpfulCount)
	assert.Empty(t, svc.ApprovedProductReviews(ctx, "tomato", 0))
	assert.Len(t, svc.ProductReviewsByStatus(ctx, model.StatusPending, 0), 1)

	require.NotNil(t, svc.SetProductReviewStatus(ctx, pr.ID, model.StatusApproved, "mod@example.com"))
	assert.Len(t, svc.ApprovedProductReviews(ctx, "tomato", 0), 1)
	assert.Nil(t, svc.SetProductReviewStatus(ctx, pr.ID, "published", "mod@example.com"))

	helpful := svc.MarkHelpful(ctx, pr.ID)
	require.NotNil(t, helpful)
	assert.Equal(t, 1, helpful.HelpfulCount)
}

func TestProductReviewValidation(t *testing.T) {
	svc := NewService(Options{Repository: &memRepo{}})
	ctx, toasts := WithToasts(context.Background())
	bad := 9
	assert.Nil(t, svc.CreateProductReview(ctx, model.ProductReview{ProductID: "tomato", Rating: 0, ReviewText: "x"}))
	assert.Nil(t, svc.CreateProductReview(ctx, model.ProductReview{ProductID: "tomato", Rating: 3, ReviewText: "x", Freshness: &bad}))
	assert.Len(t, toasts.All(), 2)
}

func TestBackendFailuresToastAndDegrade(t *testing.T) {
	repo := &memRepo{down: true}
	svc := NewService(Options{Repository: repo})
	ctx, toasts := WithToasts(context.Background())

	assert.Nil(t, svc.CreateFeedback(ctx, sample("en", model.FeedbackError)))
	status := model.StatusRejected
	assert.Nil(t, svc.UpdateFeedback(ctx, "id-a", model.FeedbackUpdate{Status: &status}))
	assert.Nil(t, svc.CreateReview(ctx, model.TranslationReview{}))
	assert.Nil(t, svc.ApproveReview(ctx, "id-a", "x"))
	assert.Nil(t, svc.CreateReport(ctx, model.QualityReport{}))

	assert.NotNil(t, svc.ListFeedback(ctx, 0))
	assert.Empty(t, svc.ListFeedback(ctx, 0))
	assert.Empty(t, svc.ListReviews(ctx, 0))
	assert.Empty(t, svc.LatestReports(ctx, 0))
	assert.Equal(t, 0, svc.Stats(ctx).Total)

	var msgs []string
	for _, ts := range toasts.All() {
		msgs = append(msgs, ts.Message)
	}
	assert.Equal(t, []string{
		MsgFeedbackCreateFailed,
		MsgFeedbackUpdateFailed,
		MsgReviewCreateFailed,
		MsgReviewApproveFailed,
	}, msgs)
}
