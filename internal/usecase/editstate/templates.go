package editstate

import (
	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor"
)

type TextStyle struct {
	FontSize        float64 `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
}

type TemplateDecoration struct {
	IconID string  `json:"iconId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
}

// Template is a design preset that adds a styled title and subtitle.
type Template struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Category    string               `json:"category"`
	Title       TextStyle            `json:"title"`
	Subtitle    TextStyle            `json:"subtitle"`
	Decorations []TemplateDecoration `json:"decorations,omitempty"`
}

var Templates = []Template{
	{
		ID: "modern-minimal", Name: "Modern Minimal", Category: "modern",
		Title:    TextStyle{FontSize: 48, FontFamily: "Arial", Color: "#1F2937", X: 200, Y: 100},
		Subtitle: TextStyle{FontSize: 24, FontFamily: "Arial", Color: "#6B7280", X: 200, Y: 300},
	},
	{
		ID: "vintage-warm", Name: "Vintage", Category: "vintage",
		Title:    TextStyle{FontSize: 44, FontFamily: "Georgia", Color: "#92400E", BackgroundColor: "rgba(254, 243, 199, 0.8)", X: 200, Y: 120},
		Subtitle: TextStyle{FontSize: 28, FontFamily: "Georgia", Color: "#451A03", X: 200, Y: 280},
	},
	{
		ID: "bold-impact", Name: "Impact", Category: "bold",
		Title:    TextStyle{FontSize: 52, FontFamily: "Impact", Color: "#FFFFFF", BackgroundColor: "rgba(239, 68, 68, 0.9)", X: 200, Y: 150},
		Subtitle: TextStyle{FontSize: 32, FontFamily: "Arial Black", Color: "#1F2937", X: 200, Y: 250},
	},
	{
		ID: "cute-pastel", Name: "Cute Pastel", Category: "cute",
		Title:    TextStyle{FontSize: 40, FontFamily: "Comic Sans MS", Color: "#EC4899", BackgroundColor: "rgba(252, 231, 243, 0.8)", X: 200, Y: 130},
		Subtitle: TextStyle{FontSize: 26, FontFamily: "Comic Sans MS", Color: "#7C3AED", X: 200, Y: 270},
		Decorations: []TemplateDecoration{
			{IconID: "heart", X: 50, Y: 50, Size: 24, Color: "#F472B6"},
			{IconID: "star", X: 350, Y: 80, Size: 20, Color: "#A78BFA"},
			{IconID: "heart", X: 80, Y: 320, Size: 18, Color: "#FB7185"},
		},
	},
	{
		ID: "minimal-clean", Name: "Clean Minimal", Category: "minimal",
		Title:    TextStyle{FontSize: 36, FontFamily: "Helvetica", Color: "#374151", X: 200, Y: 180},
		Subtitle: TextStyle{FontSize: 20, FontFamily: "Helvetica", Color: "#9CA3AF", X: 200, Y: 220},
		Decorations: []TemplateDecoration{
			{IconID: "circle", X: 50, Y: 180, Size: 4, Color: "#3B82F6"},
			{IconID: "circle", X: 350, Y: 180, Size: 4, Color: "#3B82F6"},
		},
	},
}

// FindTemplate looks a template up by id.
func FindTemplate(id string) (Template, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// ApplyTemplate appends the template's title and subtitle texts and its
// decorations. newID supplies element ids.
func ApplyTemplate(t Template, title, subtitle string, newID func() string) Reducer {
	return func(st domain.ImageEditState) (domain.ImageEditState, error) {
		st.TextElements = append(st.TextElements,
			styledText(newID(), title, t.Title),
			styledText(newID(), subtitle, t.Subtitle),
		)

		top := 0
		for _, d := range st.DecorationElements {
			if d.ZIndex > top {
				top = d.ZIndex
			}
		}
		for i, d := range t.Decorations {
			kind := domain.DecorationIcon
			for _, s := range compositor.Shapes {
				if s == d.IconID {
					kind = domain.DecorationShape
				}
			}
			st.DecorationElements = append(st.DecorationElements, domain.DecorationElement{
				ID:      newID(),
				Type:    kind,
				IconID:  d.IconID,
				X:       d.X,
				Y:       d.Y,
				Size:    d.Size,
				Color:   d.Color,
				Opacity: 1,
				Visible: true,
				ZIndex:  top + i + 1,
			})
		}
		return st, nil
	}
}

func styledText(id, text string, s TextStyle) domain.TextElement {
	el := domain.DefaultTextElement(id, text)
	el.X = s.X
	el.Y = s.Y
	el.FontSize = s.FontSize
	el.FontFamily = s.FontFamily
	el.Color = s.Color
	el.BackgroundColor = nil
	if s.BackgroundColor != "" {
		el.BackgroundColor = domain.StrPtr(s.BackgroundColor)
	}
	el.StrokeColor = nil
	el.StrokeWidth = nil
	el.ShadowColor = nil
	el.ShadowBlur = nil
	el.ShadowOffsetX = nil
	el.ShadowOffsetY = nil
	return el
}
