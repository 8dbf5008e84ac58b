package quality

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
)

func TestCheckFindsEachKindOfIssue(t *testing.T) {
	ref := i18n.Bundle{
		"cart.title":          "カート",
		"cart.stockRemaining": "残り{count}点",
		"cart.total":          "合計",
		"brand":               "VegiFarm",
	}
	res := Check(ref, map[i18n.Locale]i18n.Bundle{
		i18n.English: {
			"cart.title":          "Cart",
			"cart.stockRemaining": "{n} left",
			"cart.total":          "",
			"brand":               "VegiFarm",
			"cart.extra":          "Extra",
		},
		i18n.Korean: {
			"cart.title":          "장바구니",
			"cart.stockRemaining": "{count}개 남음",
			"cart.total":          "합계",
			"brand":               "베지팜",
		},
	})

	assert.Equal(t, []Issue{
		{Locale: i18n.English, Key: "brand", Severity: SeverityInfo, Message: "identical to reference"},
		{Locale: i18n.English, Key: "cart.stockRemaining", Severity: SeverityWarning, Message: "placeholders [n], reference has [count]"},
		{Locale: i18n.English, Key: "cart.total", Severity: SeverityError, Message: "empty translation"},
		{Locale: i18n.English, Key: "cart.extra", Severity: SeverityWarning, Message: "key not in reference"},
	}, res.Issues)
}

func TestCheckMissingKey(t *testing.T) {
	res := Check(i18n.Bundle{"a": "x"}, map[i18n.Locale]i18n.Bundle{i18n.Thai: {}})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, SeverityError, res.Issues[0].Severity)
	assert.Equal(t, 1, res.Count(SeverityError))
}

func TestReportCounts(t *testing.T) {
	res := Result{Issues: []Issue{
		{Locale: i18n.English, Key: "a", Severity: SeverityError},
		{Locale: i18n.English, Key: "b", Severity: SeverityWarning},
		{Locale: i18n.Thai, Key: "a", Severity: SeverityInfo},
	}}
	rep := res.Report("cli")
	assert.Equal(t, 3, rep.TotalIssues)
	assert.Equal(t, 1, rep.Errors)
	assert.Equal(t, 1, rep.Warnings)
	assert.Equal(t, 1, rep.Info)
	assert.Equal(t, "cli", rep.CreatedBy)
	assert.Len(t, rep.ReportData["en"], 2)
}

func TestRunOnEmbeddedBundlesHasNoErrors(t *testing.T) {
	res, err := Run(context.Background(), i18n.NewFSLoader(""))
	require.NoError(t, err)
	assert.Zero(t, res.Count(SeverityError))
}

func TestRunReportsUnloadableLocale(t *testing.T) {
	embedded := i18n.NewFSLoader("")
	loader := i18n.LoaderFunc(func(ctx context.Context, l i18n.Locale) (i18n.Bundle, error) {
		if l == i18n.Nepali {
			return nil, errors.New("gone")
		}
		return embedded.Load(ctx, l)
	})
	res, err := Run(context.Background(), loader)
	require.NoError(t, err)
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, i18n.Nepali, res.Issues[0].Locale)
	assert.Equal(t, 1, res.Count(SeverityError))

	_, err = Run(context.Background(), i18n.LoaderFunc(func(context.Context, i18n.Locale) (i18n.Bundle, error) {
		return nil, errors.New("gone")
	}))
	assert.Error(t, err)
}
