package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupported(t *testing.T) {
	for _, l := range All() {
		assert.True(t, IsSupported(string(l)), l)
	}
	assert.Len(t, All(), 10)
	assert.False(t, IsSupported("fr"))
	assert.False(t, IsSupported("JA"))
	assert.False(t, IsSupported(""))
}

func TestDetectBrowser(t *testing.T) {
	cases := []struct {
		pref string
		want Locale
		ok   bool
	}{
		{"ja_JP.UTF-8", Japanese, true},
		{"en-US,en;q=0.9", English, true},
		{"fr-FR,pt-BR;q=0.8,en;q=0.5", Portuguese, true},
		{"zh-Hant-TW", Chinese, true},
		{"TL", Tagalog, true},
		{"C", "", false},
		{"", "", false},
		{"jav", "", false},
	}
	for _, tc := range cases {
		got, ok := DetectBrowser(tc.pref)
		assert.Equal(t, tc.ok, ok, tc.pref)
		assert.Equal(t, tc.want, got, tc.pref)
	}
}
