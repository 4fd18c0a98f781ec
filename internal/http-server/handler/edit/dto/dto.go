package dto

import (
	"post-composer/internal/domain"
	"post-composer/internal/usecase/editor"
	"post-composer/internal/usecase/editstate"
)

type TextRequest struct {
	Text            string   `json:"text" validate:"required,max=500"`
	X               *float64 `json:"x" validate:"omitempty,gte=0,lte=400"`
	Y               *float64 `json:"y" validate:"omitempty,gte=0,lte=400"`
	FontSize        *float64 `json:"fontSize" validate:"omitempty,gt=0,lte=400"`
	FontFamily      string   `json:"fontFamily" validate:"omitempty,max=100"`
	Color           string   `json:"color" validate:"omitempty,css_color"`
	BackgroundColor *string  `json:"backgroundColor" validate:"omitempty,css_color"`
	TextAlign       string   `json:"textAlign" validate:"omitempty,oneof=left center right"`
	VerticalAlign   string   `json:"verticalAlign" validate:"omitempty,oneof=top middle bottom"`
}

// TextPatchRequest is a partial update; absent fields stay unchanged and an
// empty color string clears an optional style.
type TextPatchRequest struct {
	Text            *string  `json:"text" validate:"omitempty,max=500"`
	X               *float64 `json:"x" validate:"omitempty,gte=0,lte=400"`
	Y               *float64 `json:"y" validate:"omitempty,gte=0,lte=400"`
	FontSize        *float64 `json:"fontSize" validate:"omitempty,gt=0,lte=400"`
	FontFamily      *string  `json:"fontFamily" validate:"omitempty,max=100"`
	Color           *string  `json:"color" validate:"omitempty,css_color"`
	BackgroundColor *string  `json:"backgroundColor" validate:"omitempty,css_color"`
	Rotation        *float64 `json:"rotation" validate:"omitempty,gte=-360,lte=360"`
	Opacity         *float64 `json:"opacity" validate:"omitempty,gte=0,lte=1"`
	Visible         *bool    `json:"visible"`
	StrokeColor     *string  `json:"strokeColor" validate:"omitempty,css_color"`
	StrokeWidth     *float64 `json:"strokeWidth" validate:"omitempty,gte=0,lte=20"`
	ShadowColor     *string  `json:"shadowColor" validate:"omitempty,css_color"`
	ShadowBlur      *float64 `json:"shadowBlur" validate:"omitempty,gte=0,lte=50"`
	ShadowOffsetX   *float64 `json:"shadowOffsetX" validate:"omitempty,gte=-50,lte=50"`
	ShadowOffsetY   *float64 `json:"shadowOffsetY" validate:"omitempty,gte=-50,lte=50"`
	TextAlign       *string  `json:"textAlign" validate:"omitempty,oneof=left center right"`
	VerticalAlign   *string  `json:"verticalAlign" validate:"omitempty,oneof=top middle bottom"`
}

type CropRequest struct {
	X      float64 `json:"x" validate:"gte=0"`
	Y      float64 `json:"y" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type FilterRequest struct {
	ID        string `json:"id" validate:"required,max=50"`
	Name      string `json:"name" validate:"max=100"`
	CSSFilter string `json:"cssFilter" validate:"max=500"`
}

type DecorationRequest struct {
	Type     string   `json:"type" validate:"required,oneof=icon emoji shape"`
	IconID   string   `json:"iconId" validate:"required_unless=Type emoji,max=50"`
	Emoji    string   `json:"emoji" validate:"required_if=Type emoji,max=16"`
	X        float64  `json:"x" validate:"gte=0,lte=400"`
	Y        float64  `json:"y" validate:"gte=0,lte=400"`
	Size     float64  `json:"size" validate:"gt=0,lte=400"`
	Color    string   `json:"color" validate:"omitempty,css_color"`
	Rotation float64  `json:"rotation" validate:"gte=-360,lte=360"`
	Opacity  *float64 `json:"opacity" validate:"omitempty,gte=0,lte=1"`
	ZIndex   int      `json:"zIndex" validate:"gte=0"`
}

type TemplateRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	Subtitle   string `json:"subtitle" validate:"max=200"`
}

type PointerRequest struct {
	Type string  `json:"type" validate:"required,oneof=down move up leave"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type SelectRequest struct {
	TextID string `json:"textId"`
}

// CropModeRequest toggles crop mode when Enabled is absent.
type CropModeRequest struct {
	Enabled *bool `json:"enabled"`
}

// ZoomRequest either steps the zoom or sets it directly.
type ZoomRequest struct {
	Direction string   `json:"direction" validate:"omitempty,oneof=in out"`
	Zoom      *float64 `json:"zoom" validate:"omitempty,gte=0.5,lte=3"`
}

type SessionResponse struct {
	Session editor.Snapshot        `json:"session"`
	State   *domain.ImageEditState `json:"state,omitempty"`
}

type CropResponse struct {
	Crop  domain.CropSettings   `json:"cropSettings"`
	State domain.ImageEditState `json:"state"`
}

func (r TextRequest) Element(id string) domain.TextElement {
	el := domain.DefaultTextElement(id, r.Text)
	if r.X != nil {
		el.X = *r.X
	}
	if r.Y != nil {
		el.Y = *r.Y
	}
	if r.FontSize != nil {
		el.FontSize = *r.FontSize
	}
	if r.FontFamily != "" {
		el.FontFamily = r.FontFamily
	}
	if r.Color != "" {
		el.Color = r.Color
	}
	if r.BackgroundColor != nil {
		el.BackgroundColor = nil
		if *r.BackgroundColor != "" {
			el.BackgroundColor = r.BackgroundColor
		}
	}
	if r.TextAlign != "" {
		el.TextAlign = domain.TextAlign(r.TextAlign)
	}
	if r.VerticalAlign != "" {
		el.VerticalAlign = domain.VerticalAlign(r.VerticalAlign)
	}
	return el
}

func (r TextPatchRequest) Patch() editstate.TextPatch {
	p := editstate.TextPatch{
		Text:            r.Text,
		X:               r.X,
		Y:               r.Y,
		FontSize:        r.FontSize,
		FontFamily:      r.FontFamily,
		Color:           r.Color,
		BackgroundColor: r.BackgroundColor,
		Rotation:        r.Rotation,
		Opacity:         r.Opacity,
		Visible:         r.Visible,
		StrokeColor:     r.StrokeColor,
		StrokeWidth:     r.StrokeWidth,
		ShadowColor:     r.ShadowColor,
		ShadowBlur:      r.ShadowBlur,
		ShadowOffsetX:   r.ShadowOffsetX,
		ShadowOffsetY:   r.ShadowOffsetY,
	}
	if r.TextAlign != nil {
		a := domain.TextAlign(*r.TextAlign)
		p.TextAlign = &a
	}
	if r.VerticalAlign != nil {
		v := domain.VerticalAlign(*r.VerticalAlign)
		p.VerticalAlign = &v
	}
	return p
}

func (r DecorationRequest) Element(id string) domain.DecorationElement {
	opacity := 1.0
	if r.Opacity != nil {
		opacity = *r.Opacity
	}
	c := r.Color
	if c == "" {
		c = "#FFFFFF"
	}
	return domain.DecorationElement{
		ID:       id,
		Type:     domain.DecorationType(r.Type),
		IconID:   r.IconID,
		Emoji:    r.Emoji,
		X:        r.X,
		Y:        r.Y,
		Size:     r.Size,
		Color:    c,
		Rotation: r.Rotation,
		Opacity:  opacity,
		Visible:  true,
		ZIndex:   r.ZIndex,
	}
}
