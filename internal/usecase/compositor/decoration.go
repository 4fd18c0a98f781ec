package compositor

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"post-composer/internal/domain"
)

// Shapes lists the decoration ids drawn as vector paths.
var Shapes = []string{"circle", "square", "triangle", "star", "heart", "diamond"}

// iconGlyphs are the text fallbacks for icons without a vector shape.
var iconGlyphs = map[string]string{
	"sparkles":  "✨",
	"zap":       "⚡",
	"sun":       "☀",
	"moon":      "☾",
	"cloud":     "☁",
	"flame":     "🔥",
	"snowflake": "❄",
	"music":     "♪",
	"coffee":    "☕",
	"camera":    "📷",
	"gift":      "🎁",
	"crown":     "♛",
}

const decorationFamily = "Arial"

func drawDecoration(s *Surface, dp DecorationPlan) error {
	el := dp.Element
	if dp.Size <= 0 {
		return nil
	}

	base, err := ParseColor(el.Color)
	if err != nil {
		base = color.NRGBA{0, 0, 0, 255}
	}
	c := fade(base, el.Opacity)

	return s.Scoped(func(dc *gg.Context) error {
		if el.Rotation != 0 {
			dc.RotateAbout(gg.Radians(el.Rotation), dp.Center.X, dp.Center.Y)
		}
		dc.SetColor(c)

		if el.Type != domain.DecorationEmoji && shapePath(dc, el.IconID, dp.Center.X, dp.Center.Y, dp.Size/2) {
			dc.Fill()
			return nil
		}

		glyph := el.Emoji
		if glyph == "" {
			glyph = iconGlyphs[el.IconID]
		}
		if glyph == "" {
			return nil
		}
		dc.SetFontFace(s.faces.face(decorationFamily, dp.Size))
		dc.DrawStringAnchored(glyph, dp.Center.X, dp.Center.Y, 0.5, 0.5)
		return nil
	})
}

// shapePath adds the outline of a known shape centered at (x, y) with
// radius r. It reports false for unknown ids.
func shapePath(dc *gg.Context, id string, x, y, r float64) bool {
	switch id {
	case "circle":
		dc.DrawCircle(x, y, r)
	case "square":
		dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
	case "triangle":
		dc.DrawRegularPolygon(3, x, y, r, 0)
	case "diamond":
		dc.DrawRegularPolygon(4, x, y, r, -math.Pi/4)
	case "star":
		dc.NewSubPath()
		for i := 0; i < 10; i++ {
			rr := r
			if i%2 == 1 {
				rr = r * 0.4
			}
			a := -math.Pi/2 + float64(i)*math.Pi/5
			dc.LineTo(x+rr*math.Cos(a), y+rr*math.Sin(a))
		}
		dc.ClosePath()
	case "heart":
		dc.NewSubPath()
		dc.MoveTo(x, y+r)
		dc.CubicTo(x-1.6*r, y-0.1*r, x-0.7*r, y-1.3*r, x, y-0.45*r)
		dc.CubicTo(x+0.7*r, y-1.3*r, x+1.6*r, y-0.1*r, x, y+r)
		dc.ClosePath()
	default:
		return false
	}
	return true
}
