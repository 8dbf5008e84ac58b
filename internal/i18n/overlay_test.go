package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

func TestDefaultOverlaysCoverCatalog(t *testing.T) {
	o, err := DefaultOverlays()
	require.NoError(t, err)
	for _, id := range []string{"premium-mini-tomato", "mini-tomato", "tomato", "leafy-greens", "carrots", "seasonal-set"} {
		require.Contains(t, o, id)
		for _, l := range All() {
			assert.NotEmpty(t, o[id][l].Name, "%s/%s", id, l)
		}
	}
}

func TestLocalizeMergesPerField(t *testing.T) {
	o, err := ParseOverlays([]byte(`
carrots:
  ja:
    name: "有機人参"
    description: "甘い人参"
  en:
    name: "Organic Carrots"
    badge: "Organic"
  ko:
    name: "유기농 당근"
`))
	require.NoError(t, err)
	base := model.Product{ID: "carrots", Name: "人参", Description: "base", Badge: "base-badge", Stock: model.IntPtr(0)}

	ko := o.Localize(base, Korean)
	assert.Equal(t, "유기농 당근", ko.Name)
	assert.Equal(t, "甘い人参", ko.Description)
	assert.Equal(t, "Organic", ko.Badge)
	assert.Equal(t, 0, *ko.Stock)

	ko.Stock = model.IntPtr(9)
	assert.Equal(t, 0, *base.Stock)
}

func TestLocalizeWithoutOverlayKeepsBase(t *testing.T) {
	o := Overlays{}
	p := model.Product{ID: "product-x", Name: "Custom"}
	assert.Equal(t, p, o.Localize(p, Thai))

	got := o.LocalizeAll([]model.Product{p, {ID: "b"}}, English)
	assert.Equal(t, []string{"product-x", "b"}, []string{got[0].ID, got[1].ID})
}

func TestParseOverlaysRejectsGarbage(t *testing.T) {
	_, err := ParseOverlays([]byte("carrots: [unclosed"))
	assert.Error(t, err)
}
