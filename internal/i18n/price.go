package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var priceTags = map[Locale]language.Tag{
	Japanese:   language.MustParse("ja-JP"),
	English:    language.MustParse("en-US"),
	Chinese:    language.MustParse("zh-CN"),
	Korean:     language.MustParse("ko-KR"),
	Vietnamese: language.MustParse("vi-VN"),
	Thai:       language.MustParse("th-TH"),
	Tagalog:    language.MustParse("en-PH"),
	Portuguese: language.MustParse("pt-BR"),
	Nepali:     language.MustParse("en-US"),
	Indonesian: language.MustParse("id-ID"),
}

// FormatPrice renders a yen amount with the locale's digit grouping.
// Unknown locales use Japanese formatting.
func FormatPrice(amount int64, l Locale) string {
	tag, ok := priceTags[l]
	if !ok {
		tag = priceTags[Japanese]
	}
	return message.NewPrinter(tag).Sprintf("¥%d", amount)
}
