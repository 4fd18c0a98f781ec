package editor

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor"
	"post-composer/internal/usecase/compositor/crop"
	"post-composer/internal/usecase/compositor/space"
	"post-composer/internal/usecase/compositor/textlayout"
)

const (
	selectionPadding = 10.0
	handleSize       = 8.0
)

var (
	accent      = color.NRGBA{0x3B, 0x82, 0xF6, 0xFF}
	dragFill    = color.NRGBA{59, 130, 246, 51}
	cropInfoBox = color.NRGBA{59, 130, 246, 204}
)

// Renderer draws the editor canvas for a session.
type Renderer struct {
	comp *compositor.Compositor
}

func NewRenderer(comp *compositor.Compositor) *Renderer {
	return &Renderer{comp: comp}
}

// Scene returns what the editor canvas shows for snap. Outside crop mode the
// cropped photo fills the centered image area; in crop mode the whole photo
// covers the canvas, scaled by zoom and shifted by pan.
func Scene(snap Snapshot, src image.Image, state domain.ImageEditState) compositor.Scene {
	size := int(snap.CanvasSize)
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	if !snap.CropMode {
		sc := compositor.SquareScene(size, src, state)
		sc.Area = ImageArea(snap.CanvasSize)
		return sc
	}

	vp := crop.Viewport{CanvasW: snap.CanvasSize, CanvasH: snap.CanvasSize, Zoom: snap.Zoom, PanX: snap.PanX, PanY: snap.PanY}
	x, y, dw, dh := vp.Placement(w, h)
	return compositor.Scene{
		Width:  size,
		Height: size,
		Source: src,
		Region: compositor.Region{X: float64(b.Min.X), Y: float64(b.Min.Y), W: w, H: h},
		Area:   space.Rect{X: x, Y: y, W: dw, H: dh},
		State:  state,
	}
}

// Render draws the editor view including the selection outline or the crop
// overlay.
func (r *Renderer) Render(ctx context.Context, snap Snapshot, src image.Image, state domain.ImageEditState) (*image.RGBA, error) {
	if snap.CanvasSize <= 0 || snap.CanvasSize > domain.DefaultEditorSize {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCanvas, snap.CanvasSize)
	}

	sc := Scene(snap, src, state)
	surface, err := r.comp.Render(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to render editor view: %w", err)
	}

	if snap.CropMode {
		drawCropOverlay(surface, snap)
		return surface.Image(), nil
	}

	if snap.SelectedID != "" {
		for _, tp := range r.comp.Plan(sc).Texts {
			if tp.Element.ID == snap.SelectedID {
				drawSelection(surface, tp, snap.Mode == ModeDragging)
				break
			}
		}
	}

	return surface.Image(), nil
}

func drawSelection(s *compositor.Surface, tp compositor.TextPlan, dragging bool) {
	box := tp.Bounds.Pad(selectionPadding, selectionPadding)

	_ = s.Scoped(func(dc *gg.Context) error {
		if tp.Element.Rotation != 0 {
			dc.RotateAbout(gg.Radians(tp.Element.Rotation), tp.Anchor.X, tp.Anchor.Y)
		}

		dc.SetColor(accent)
		dc.SetLineWidth(2)
		dc.SetDash(5, 5)
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
		dc.Stroke()
		dc.SetDash()

		corners := [][2]float64{
			{box.X, box.Y},
			{box.X + box.W, box.Y},
			{box.X, box.Y + box.H},
			{box.X + box.W, box.Y + box.H},
		}
		for _, c := range corners {
			dc.DrawRectangle(c[0]-handleSize/2, c[1]-handleSize/2, handleSize, handleSize)
		}
		dc.Fill()

		if dragging {
			dc.SetColor(dragFill)
			dc.DrawRectangle(box.X, box.Y, box.W, box.H)
			dc.Fill()
		}
		return nil
	})
}

func drawCropOverlay(s *compositor.Surface, snap Snapshot) {
	s.StrokeRect(textlayout.Rect{W: snap.CanvasSize, H: snap.CanvasSize}, accent, 3, 10, 5)
	s.FillRect(textlayout.Rect{X: 10, Y: 10, W: 200, H: 60}, cropInfoBox)

	s.DrawText("Crop area", "Arial", 14, 20, 30, color.White)
	s.DrawText(fmt.Sprintf("Zoom: %.0f%%", snap.Zoom*100), "Arial", 14, 20, 50, color.White)
}
