package i18n

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

//go:embed overlays.yaml
var embeddedOverlays []byte

// Overlay is the localized copy of a product. Empty fields do not override.
type Overlay struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Badge       string `yaml:"badge"`
}

// Overlays maps product id to locale to localized copy.
type Overlays map[string]map[Locale]Overlay

// DefaultOverlays parses the embedded overlay asset.
func DefaultOverlays() (Overlays, error) {
	return ParseOverlays(embeddedOverlays)
}

// ParseOverlays decodes a YAML overlay document.
func ParseOverlays(buf []byte) (Overlays, error) {
	var o Overlays
	if err := yaml.Unmarshal(buf, &o); err != nil {
		return nil, fmt.Errorf("i18n: parse overlays: %w", err)
	}
	if o == nil {
		o = Overlays{}
	}
	return o, nil
}

// Localize merges the overlay for p onto a copy of p. Each field is taken from
// the first of l, ja, en that sets it, else the base record is kept.
func (o Overlays) Localize(p model.Product, l Locale) model.Product {
	out := p.Clone()
	byLocale, ok := o[p.ID]
	if !ok {
		return out
	}
	chain := []Locale{l, Japanese, English}
	pick := func(get func(Overlay) string) (string, bool) {
		for _, c := range chain {
			if v := get(byLocale[c]); v != "" {
				return v, true
			}
		}
		return "", false
	}
	if v, ok := pick(func(ov Overlay) string { return ov.Name }); ok {
		out.Name = v
	}
	if v, ok := pick(func(ov Overlay) string { return ov.Description }); ok {
		out.Description = v
	}
	if v, ok := pick(func(ov Overlay) string { return ov.Badge }); ok {
		out.Badge = v
	}
	return out
}

// LocalizeAll applies Localize to every product, preserving order.
func (o Overlays) LocalizeAll(ps []model.Product, l Locale) []model.Product {
	out := make([]model.Product, len(ps))
	for i, p := range ps {
		out[i] = o.Localize(p, l)
	}
	return out
}
