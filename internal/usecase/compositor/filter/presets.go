package filter

import "post-composer/internal/domain"

// Presets are the named filters offered to users, in display order.
var Presets = []domain.ImageFilter{
	domain.NoFilter,
	{ID: "warm", Name: "Warm", CSSFilter: "sepia(0.3) saturate(1.2) brightness(1.1)"},
	{ID: "cool", Name: "Cool", CSSFilter: "hue-rotate(200deg) saturate(1.1) brightness(1.05)"},
	{ID: "vintage", Name: "Vintage", CSSFilter: "sepia(0.5) contrast(1.2) brightness(0.9) saturate(0.8)"},
	{ID: "bright", Name: "Bright", CSSFilter: "brightness(1.2) contrast(1.1) saturate(1.3)"},
	{ID: "dramatic", Name: "Dramatic", CSSFilter: "contrast(1.4) brightness(0.95) saturate(1.2)"},
	{ID: "soft", Name: "Soft", CSSFilter: "brightness(1.1) contrast(0.9) saturate(0.9) blur(0.5px)"},
	{ID: "monochrome", Name: "Monochrome", CSSFilter: "grayscale(1) contrast(1.1)"},
	{ID: "pop", Name: "Pop", CSSFilter: "saturate(1.5) contrast(1.2) brightness(1.1) hue-rotate(10deg)"},
}

// Preset looks a preset up by id.
func Preset(id string) (domain.ImageFilter, bool) {
	for _, p := range Presets {
		if p.ID == id {
			return p, true
		}
	}
	return domain.ImageFilter{}, false
}
