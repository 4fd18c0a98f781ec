package editstate

import (
	"fmt"
	"math"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor/filter"
)

// TextPatch holds the fields of a partial text update. Nil fields are left
// unchanged.
type TextPatch struct {
	Text            *string
	X               *float64
	Y               *float64
	FontSize        *float64
	FontFamily      *string
	Color           *string
	BackgroundColor *string
	Rotation        *float64
	Opacity         *float64
	Visible         *bool
	StrokeColor     *string
	StrokeWidth     *float64
	ShadowColor     *string
	ShadowBlur      *float64
	ShadowOffsetX   *float64
	ShadowOffsetY   *float64
	TextAlign       *domain.TextAlign
	VerticalAlign   *domain.VerticalAlign
}

// AddText appends el on top of the existing texts.
func AddText(el domain.TextElement) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		el.X = domain.ClampDesign(el.X)
		el.Y = domain.ClampDesign(el.Y)
		st.TextElements = append(st.TextElements, el)
		return st, nil
	}
}

// PatchText applies p to the text element id.
func PatchText(id string, p TextPatch) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		i := textIndex(st, id)
		if i < 0 {
			return st, fmt.Errorf("%w: %s", ErrTextNotFound, id)
		}
		el := st.TextElements[i]

		setStr(&el.Text, p.Text)
		setFloat(&el.FontSize, p.FontSize)
		setStr(&el.FontFamily, p.FontFamily)
		setStr(&el.Color, p.Color)
		setFloat(&el.Rotation, p.Rotation)
		setFloat(&el.Opacity, p.Opacity)
		if p.X != nil {
			el.X = domain.ClampDesign(*p.X)
		}
		if p.Y != nil {
			el.Y = domain.ClampDesign(*p.Y)
		}
		if p.Visible != nil {
			el.Visible = *p.Visible
		}
		if p.BackgroundColor != nil {
			el.BackgroundColor = optional(*p.BackgroundColor)
		}
		if p.StrokeColor != nil {
			el.StrokeColor = optional(*p.StrokeColor)
		}
		if p.ShadowColor != nil {
			el.ShadowColor = optional(*p.ShadowColor)
		}
		if p.StrokeWidth != nil {
			el.StrokeWidth = domain.FloatPtr(*p.StrokeWidth)
		}
		if p.ShadowBlur != nil {
			el.ShadowBlur = domain.FloatPtr(*p.ShadowBlur)
		}
		if p.ShadowOffsetX != nil {
			el.ShadowOffsetX = domain.FloatPtr(*p.ShadowOffsetX)
		}
		if p.ShadowOffsetY != nil {
			el.ShadowOffsetY = domain.FloatPtr(*p.ShadowOffsetY)
		}
		if p.TextAlign != nil {
			el.TextAlign = *p.TextAlign
		}
		if p.VerticalAlign != nil {
			el.VerticalAlign = *p.VerticalAlign
		}

		st.TextElements[i] = el
		return st, nil
	}
}

// MoveText sets the anchor of text id, clamped into design space.
func MoveText(id string, x, y float64) Reducer {
	return PatchText(id, TextPatch{X: &x, Y: &y})
}

// RemoveText deletes text id.
func RemoveText(id string) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		i := textIndex(st, id)
		if i < 0 {
			return st, fmt.Errorf("%w: %s", ErrTextNotFound, id)
		}
		st.TextElements = append(st.TextElements[:i], st.TextElements[i+1:]...)
		return st, nil
	}
}

// SetCrop stores an explicit square crop in source pixels.
func SetCrop(c domain.CropSettings) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		for _, v := range []float64{c.X, c.Y, c.Width, c.Height} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return st, fmt.Errorf("%w: non-finite value", ErrInvalidCrop)
			}
		}
		if c.Width <= 0 || c.Height <= 0 {
			return st, fmt.Errorf("%w: width and height must be positive", ErrInvalidCrop)
		}
		c.AspectRatio = 1
		st.Crop = &c
		return st, nil
	}
}

// ClearCrop returns to the largest centered square.
func ClearCrop() Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		st.Crop = nil
		return st, nil
	}
}

// SetFilter selects f. The CSS filter string must parse.
func SetFilter(f domain.ImageFilter) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		if f.CSSFilter == "" {
			f.CSSFilter = "none"
		}
		if _, err := filter.Parse(f.CSSFilter); err != nil {
			return st, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		st.Filter = f
		return st, nil
	}
}

// AddDecoration appends d, placing it above existing decorations when no
// z-index was given.
func AddDecoration(d domain.DecorationElement) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		d.X = domain.ClampDesign(d.X)
		d.Y = domain.ClampDesign(d.Y)
		if d.ZIndex == 0 {
			for _, o := range st.DecorationElements {
				if o.ZIndex >= d.ZIndex {
					d.ZIndex = o.ZIndex + 1
				}
			}
		}
		st.DecorationElements = append(st.DecorationElements, d)
		return st, nil
	}
}

// RemoveDecoration deletes decoration id.
func RemoveDecoration(id string) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		for i, d := range st.DecorationElements {
			if d.ID == id {
				st.DecorationElements = append(st.DecorationElements[:i], st.DecorationElements[i+1:]...)
				return st, nil
			}
		}
		return st, fmt.Errorf("%w: %s", ErrDecorationNotFound, id)
	}
}

func textIndex(st domain.ImageEditState, id string) int {
	for i, el := range st.TextElements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// optional maps "" to nil so clients can clear a style.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
