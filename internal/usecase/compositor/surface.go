package compositor

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"post-composer/internal/usecase/compositor/textlayout"
)

// Surface is a drawing target whose transform and style changes are always
// undone by Scoped.
type Surface struct {
	dc    *gg.Context
	rgba  *image.RGBA
	faces *faceCache
}

func newSurface(w, h int, faces *faceCache) *Surface {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Surface{dc: gg.NewContextForRGBA(rgba), rgba: rgba, faces: faces}
}

// Scoped runs fn with a saved drawing state. The state is restored on every
// exit path, including a panic inside fn.
func (s *Surface) Scoped(fn func(dc *gg.Context) error) error {
	s.dc.Push()
	defer s.dc.Pop()
	return fn(s.dc)
}

// Image returns the backing pixels.
func (s *Surface) Image() *image.RGBA {
	return s.rgba
}

func (s *Surface) Width() int  { return s.rgba.Rect.Dx() }
func (s *Surface) Height() int { return s.rgba.Rect.Dy() }

// FillRect fills r with c at identity transform.
func (s *Surface) FillRect(r textlayout.Rect, c color.Color) {
	_ = s.Scoped(func(dc *gg.Context) error {
		dc.Identity()
		dc.SetColor(c)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
		return nil
	})
}

// StrokeRect outlines r. A non-empty dash pattern draws a dashed line.
func (s *Surface) StrokeRect(r textlayout.Rect, c color.Color, width float64, dash ...float64) {
	_ = s.Scoped(func(dc *gg.Context) error {
		dc.Identity()
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.SetDash(dash...)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Stroke()
		return nil
	})
}

// DrawText draws a single line with its left edge at x and baseline at y.
func (s *Surface) DrawText(text, family string, size, x, y float64, c color.Color) {
	_ = s.Scoped(func(dc *gg.Context) error {
		dc.Identity()
		dc.SetFontFace(s.faces.face(family, size))
		dc.SetColor(c)
		dc.DrawString(text, x, y)
		return nil
	})
}
