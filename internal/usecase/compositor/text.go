package compositor

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

var (
	defaultFill   = color.NRGBA{255, 255, 255, 255}
	defaultStroke = color.NRGBA{0, 0, 0, 255}
	defaultShadow = color.NRGBA{0, 0, 0, 255}
)

// drawText paints one element: shadow, background box, stroke, fill. Every
// pass is rotated about the anchor and faded by the element opacity.
func drawText(s *Surface, tp TextPlan) error {
	el := tp.Element
	if tp.FontSize <= 0 {
		return nil
	}

	fill := paint(&el.Color, defaultFill, el.Opacity)

	if tp.Shadow != nil {
		drawShadow(s, tp)
	}

	return s.Scoped(func(dc *gg.Context) error {
		if el.Rotation != 0 {
			dc.RotateAbout(gg.Radians(el.Rotation), tp.Anchor.X, tp.Anchor.Y)
		}

		if tp.Background != nil {
			dc.SetColor(paint(el.BackgroundColor, color.NRGBA{}, el.Opacity))
			dc.DrawRectangle(tp.Background.X, tp.Background.Y, tp.Background.W, tp.Background.H)
			dc.Fill()
		}

		dc.SetFontFace(s.faces.face(el.FontFamily, tp.FontSize))

		if tp.StrokeWidth > 0 {
			dc.SetColor(paint(el.StrokeColor, defaultStroke, el.Opacity))
			for _, off := range strokeOffsets(tp.StrokeWidth / 2) {
				for _, l := range tp.Lines {
					dc.DrawString(l.Text, l.Left+off[0], l.Baseline+off[1])
				}
			}
		}

		dc.SetColor(fill)
		for _, l := range tp.Lines {
			dc.DrawString(l.Text, l.Left, l.Baseline)
		}
		return nil
	})
}

// drawShadow renders the background and glyph silhouettes on a separate
// layer, blurs it and composites it under the element. The offset is applied
// in canvas space, before rotation.
func drawShadow(s *Surface, tp TextPlan) {
	el := tp.Element
	shadow := paint(el.ShadowColor, defaultShadow, el.Opacity)

	layer := gg.NewContext(s.Width(), s.Height())
	layer.Translate(tp.Shadow.OffsetX, tp.Shadow.OffsetY)
	if el.Rotation != 0 {
		layer.RotateAbout(gg.Radians(el.Rotation), tp.Anchor.X, tp.Anchor.Y)
	}

	if tp.Background != nil {
		bg := paint(el.BackgroundColor, color.NRGBA{}, 1)
		layer.SetColor(fade(shadow, float64(bg.A)/255))
		layer.DrawRectangle(tp.Background.X, tp.Background.Y, tp.Background.W, tp.Background.H)
		layer.Fill()
	}

	layer.SetColor(shadow)
	layer.SetFontFace(s.faces.face(el.FontFamily, tp.FontSize))
	for _, l := range tp.Lines {
		layer.DrawString(l.Text, l.Left, l.Baseline)
	}

	// A canvas shadow blur is twice the gaussian sigma.
	blurred := imaging.Blur(layer.Image(), tp.Shadow.Blur/2)

	_ = s.Scoped(func(dc *gg.Context) error {
		dc.Identity()
		dc.DrawImage(blurred, 0, 0)
		return nil
	})
}

// strokeOffsets samples a disc of radius r for offset stamping.
func strokeOffsets(r float64) [][2]float64 {
	if r <= 0 {
		return nil
	}
	if r < 1 {
		out := make([][2]float64, 0, 8)
		for i := 0; i < 8; i++ {
			a := float64(i) * math.Pi / 4
			out = append(out, [2]float64{r * math.Cos(a), r * math.Sin(a)})
		}
		return out
	}

	n := int(math.Ceil(r))
	var out [][2]float64
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if float64(dx*dx+dy*dy) <= r*r+0.5 {
				out = append(out, [2]float64{float64(dx), float64(dy)})
			}
		}
	}
	return out
}
