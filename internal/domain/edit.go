package domain

import "time"

// DesignSize is the side of the logical square every element coordinate is
// stored against, independent of photo resolution or render size.
const DesignSize = 400.0

const (
	ExportSize        = 1080
	PreviewSize       = 400
	DefaultEditorSize = 600
)

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignMiddle VerticalAlign = "middle"
	VAlignBottom VerticalAlign = "bottom"
)

// TextElement is one text layer. X and Y are the anchor point in design
// units, not the top-left corner. Optional styling is nil when unset.
type TextElement struct {
	ID              string        `json:"id"`
	Text            string        `json:"text"`
	X               float64       `json:"x"`
	Y               float64       `json:"y"`
	FontSize        float64       `json:"fontSize"`
	FontFamily      string        `json:"fontFamily"`
	Color           string        `json:"color"`
	BackgroundColor *string       `json:"backgroundColor,omitempty"`
	Rotation        float64       `json:"rotation"`
	Opacity         float64       `json:"opacity"`
	Visible         bool          `json:"visible"`
	StrokeColor     *string       `json:"strokeColor,omitempty"`
	StrokeWidth     *float64      `json:"strokeWidth,omitempty"`
	ShadowColor     *string       `json:"shadowColor,omitempty"`
	ShadowBlur      *float64      `json:"shadowBlur,omitempty"`
	ShadowOffsetX   *float64      `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY   *float64      `json:"shadowOffsetY,omitempty"`
	TextAlign       TextAlign     `json:"textAlign"`
	VerticalAlign   VerticalAlign `json:"verticalAlign"`
}

type DecorationType string

const (
	DecorationIcon  DecorationType = "icon"
	DecorationEmoji DecorationType = "emoji"
	DecorationShape DecorationType = "shape"
)

type DecorationElement struct {
	ID       string         `json:"id"`
	Type     DecorationType `json:"type"`
	IconID   string         `json:"iconId,omitempty"`
	Emoji    string         `json:"emoji,omitempty"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Size     float64        `json:"size"`
	Color    string         `json:"color"`
	Rotation float64        `json:"rotation"`
	Opacity  float64        `json:"opacity"`
	Visible  bool           `json:"visible"`
	ZIndex   int            `json:"zIndex"`
}

// CropSettings is expressed in source-image pixels. AspectRatio is always 1.
type CropSettings struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`
}

// LegacyDefaultCrop is the tuple older clients send for "no crop chosen".
var LegacyDefaultCrop = CropSettings{X: 0, Y: 0, Width: DesignSize, Height: DesignSize, AspectRatio: 1}

// IsLegacyDefault reports whether c equals the 0,0,400,400 sentinel.
func (c CropSettings) IsLegacyDefault() bool {
	return c.X == 0 && c.Y == 0 && c.Width == DesignSize && c.Height == DesignSize
}

// IsActive reports whether c is an explicit crop. A nil crop and the legacy
// sentinel both mean "largest centered square".
func (c *CropSettings) IsActive() bool {
	return c != nil && !c.IsLegacyDefault()
}

type ImageFilter struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CSSFilter string `json:"cssFilter"`
}

var NoFilter = ImageFilter{ID: "none", Name: "Original", CSSFilter: "none"}

// ImageEditState is treated as an immutable value: every mutation produces a
// new state that replaces the previous one wholesale. Text z-order is list
// order, later elements are drawn on top.
type ImageEditState struct {
	ImageID            string              `json:"imageId"`
	TextElements       []TextElement       `json:"textElements"`
	DecorationElements []DecorationElement `json:"decorationElements"`
	Crop               *CropSettings       `json:"cropSettings,omitempty"`
	Filter             ImageFilter         `json:"imageFilter"`
	LastModified       time.Time           `json:"lastModified"`
}

// NewEditState returns the lazily created default: no crop, identity filter.
func NewEditState(imageID string) ImageEditState {
	return ImageEditState{
		ImageID:            imageID,
		TextElements:       []TextElement{},
		DecorationElements: []DecorationElement{},
		Filter:             NoFilter,
		LastModified:       time.Now(),
	}
}

// CropActive reports whether an explicit, non-sentinel crop was chosen.
func (s *ImageEditState) CropActive() bool {
	return s.Crop.IsActive()
}

// Clone returns a deep copy so reducers never alias the slices of the value
// they replace.
func (s ImageEditState) Clone() ImageEditState {
	out := s
	out.TextElements = make([]TextElement, len(s.TextElements))
	for i, el := range s.TextElements {
		out.TextElements[i] = el.clone()
	}
	out.DecorationElements = append([]DecorationElement{}, s.DecorationElements...)
	if s.Crop != nil {
		c := *s.Crop
		out.Crop = &c
	}
	return out
}

func (t TextElement) clone() TextElement {
	out := t
	out.BackgroundColor = cloneStr(t.BackgroundColor)
	out.StrokeColor = cloneStr(t.StrokeColor)
	out.ShadowColor = cloneStr(t.ShadowColor)
	out.StrokeWidth = cloneFloat(t.StrokeWidth)
	out.ShadowBlur = cloneFloat(t.ShadowBlur)
	out.ShadowOffsetX = cloneFloat(t.ShadowOffsetX)
	out.ShadowOffsetY = cloneFloat(t.ShadowOffsetY)
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ClampDesign clamps a design-space coordinate into [0, DesignSize].
func ClampDesign(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > DesignSize {
		return DesignSize
	}
	return v
}

// StrPtr and FloatPtr build optional fields.
func StrPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }

// DefaultTextElement is the element created when a generated snippet is
// placed on a photo.
func DefaultTextElement(id, text string) TextElement {
	return TextElement{
		ID:              id,
		Text:            text,
		X:               200,
		Y:               200,
		FontSize:        32,
		FontFamily:      "Arial",
		Color:           "#FFFFFF",
		BackgroundColor: StrPtr("rgba(0, 0, 0, 0.5)"),
		Rotation:        0,
		Opacity:         1,
		Visible:         true,
		StrokeColor:     StrPtr("#000000"),
		StrokeWidth:     FloatPtr(1),
		ShadowColor:     StrPtr("#000000"),
		ShadowBlur:      FloatPtr(4),
		ShadowOffsetX:   FloatPtr(2),
		ShadowOffsetY:   FloatPtr(2),
		TextAlign:       AlignCenter,
		VerticalAlign:   VAlignMiddle,
	}
}
