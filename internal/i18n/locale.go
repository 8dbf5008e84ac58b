// Package i18n owns the storefront's locale state, translation bundles and product overlays.
package i18n

import "strings"

// Locale is a supported language code.
type Locale string

const (
	Japanese   Locale = "ja"
	English    Locale = "en"
	Chinese    Locale = "zh"
	Korean     Locale = "ko"
	Vietnamese Locale = "vi"
	Tagalog    Locale = "tl"
	Portuguese Locale = "pt"
	Nepali     Locale = "ne"
	Indonesian Locale = "id"
	Thai       Locale = "th"
)

// DefaultLocale is used when no preference can be determined.
const DefaultLocale = Japanese

var supported = []Locale{Japanese, English, Chinese, Korean, Vietnamese, Tagalog, Portuguese, Nepali, Indonesian, Thai}

// All returns the supported locales in display order.
func All() []Locale {
	return append([]Locale(nil), supported...)
}

// IsSupported reports whether code is exactly one of the supported locale codes.
func IsSupported(code string) bool {
	for _, l := range supported {
		if string(l) == code {
			return true
		}
	}
	return false
}

// Parse returns code as a Locale when supported.
func Parse(code string) (Locale, bool) {
	if !IsSupported(code) {
		return "", false
	}
	return Locale(code), true
}

// DetectBrowser picks the first supported locale from a language preference.
// pref may be an Accept-Language list ("pt-BR,pt;q=0.9,en;q=0.8") or a POSIX
// locale such as "ja_JP.UTF-8". Entries are matched on their primary subtag.
func DetectBrowser(pref string) (Locale, bool) {
	for _, part := range strings.Split(pref, ",") {
		tag, _, _ := strings.Cut(part, ";")
		tag, _, _ = strings.Cut(strings.TrimSpace(tag), ".")
		tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
		primary, _, _ := strings.Cut(tag, "-")
		if l, ok := Parse(primary); ok {
			return l, true
		}
	}
	return "", false
}
