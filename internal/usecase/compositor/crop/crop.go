// Package crop turns stored crop settings into the square source region that
// is sampled when a photo is composited.
package crop

import (
	"math"

	"post-composer/internal/domain"
)

// Source is a square region of the source image, in source pixels.
type Source struct {
	X    float64
	Y    float64
	Size float64
}

// Settings returns s as explicit crop settings. Resolving them again yields s.
func (s Source) Settings() domain.CropSettings {
	return domain.CropSettings{X: s.X, Y: s.Y, Width: s.Size, Height: s.Size, AspectRatio: 1}
}

// Resolve computes the square source region for a w x h image. A nil or
// legacy-default crop selects the largest centered square.
func Resolve(c *domain.CropSettings, w, h float64) Source {
	if !c.IsActive() {
		return Centered(w, h)
	}

	x := clamp(c.X, 0, w)
	y := clamp(c.Y, 0, h)
	cw := clamp(c.Width, 0, w-x)
	ch := clamp(c.Height, 0, h-y)

	size := math.Min(cw, ch)
	return Source{
		X:    x + (cw-size)/2,
		Y:    y + (ch-size)/2,
		Size: size,
	}
}

// Centered is the largest square centered in a w x h image.
func Centered(w, h float64) Source {
	size := math.Min(w, h)
	return Source{
		X:    (w - size) / 2,
		Y:    (h - size) / 2,
		Size: size,
	}
}

// Viewport is the interactive crop view: the whole image covers a canvas of
// CanvasW x CanvasH, is scaled by Zoom about the canvas center and shifted
// by Pan.
type Viewport struct {
	CanvasW float64
	CanvasH float64
	Zoom    float64
	PanX    float64
	PanY    float64
}

// Placement returns where the image is drawn on the canvas for v.
func (v Viewport) Placement(imgW, imgH float64) (x, y, w, h float64) {
	baseW, baseH := cover(v.CanvasW, v.CanvasH, imgW, imgH)
	w = baseW * v.Zoom
	h = baseH * v.Zoom
	x = (v.CanvasW-w)/2 + v.PanX
	y = (v.CanvasH-h)/2 + v.PanY
	return x, y, w, h
}

// FromViewport reprojects the part of the image visible in v back into a
// square crop in source pixels, centered within the visible area.
func FromViewport(v Viewport, imgW, imgH float64) domain.CropSettings {
	if imgW <= 0 || imgH <= 0 || v.CanvasW <= 0 || v.CanvasH <= 0 || v.Zoom <= 0 {
		return Centered(imgW, imgH).Settings()
	}

	offX, offY, zw, zh := v.Placement(imgW, imgH)

	left := math.Max(0, -offX)
	top := math.Max(0, -offY)
	right := math.Min(zw, v.CanvasW-offX)
	bottom := math.Min(zh, v.CanvasH-offY)

	visW := math.Max(0, right-left)
	visH := math.Max(0, bottom-top)

	cx := left / zw * imgW
	cy := top / zh * imgH
	cw := visW / zw * imgW
	ch := visH / zh * imgH

	size := math.Min(cw, ch)
	return domain.CropSettings{
		X:           cx + (cw-size)/2,
		Y:           cy + (ch-size)/2,
		Width:       size,
		Height:      size,
		AspectRatio: 1,
	}
}

func cover(cw, ch, iw, ih float64) (float64, float64) {
	imgAspect := iw / ih
	canvasAspect := cw / ch
	if imgAspect > canvasAspect {
		return ch * imgAspect, ch
	}
	return cw, cw / imgAspect
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
