// Package compositor renders an edit state onto a photo. The same pipeline
// serves the editor view, the 400px preview and the 1080px export, so what
// the editor shows matches the export up to resolution.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor/crop"
	"post-composer/internal/usecase/compositor/filter"
	"post-composer/internal/usecase/compositor/space"
	"post-composer/internal/usecase/compositor/textlayout"
)

// MaxSurface bounds either side of a render target.
const MaxSurface = 8192

// BackgroundPadding is the design-space padding around a text background.
const BackgroundPadding = 20.0

// Region is a rectangle of the source image, in source pixels.
type Region struct {
	X, Y, W, H float64
}

// Scene describes one render: Region of Source is scaled into Area of a
// Width x Height canvas, and element coordinates map onto Area.
type Scene struct {
	Width  int
	Height int
	Source image.Image
	Region Region
	Area   space.Rect
	State  domain.ImageEditState
}

type Compositor struct {
	fonts *FontBook
}

func New(fonts *FontBook) *Compositor {
	return &Compositor{fonts: fonts}
}

// Decode reads fully buffered image bytes, honouring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// SquareScene is the scene for a size x size square output of src with the
// state's crop applied.
func SquareScene(size int, src image.Image, state domain.ImageEditState) Scene {
	b := src.Bounds()
	s := crop.Resolve(state.Crop, float64(b.Dx()), float64(b.Dy()))
	return Scene{
		Width:  size,
		Height: size,
		Source: src,
		Region: Region{X: float64(b.Min.X) + s.X, Y: float64(b.Min.Y) + s.Y, W: s.Size, H: s.Size},
		Area:   space.Square(float64(size)),
		State:  state,
	}
}

// Composite renders state over src into a size x size image.
func (c *Compositor) Composite(ctx context.Context, size int, src image.Image, state domain.ImageEditState) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrDecode)
	}
	s, err := c.Render(ctx, SquareScene(size, src, state))
	if err != nil {
		return nil, err
	}
	return s.Image(), nil
}

// Render draws a scene and returns the surface so callers can add overlays.
func (c *Compositor) Render(ctx context.Context, sc Scene) (*Surface, error) {
	if sc.Width <= 0 || sc.Height <= 0 || sc.Width > MaxSurface || sc.Height > MaxSurface {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceUnavailable, sc.Width, sc.Height)
	}
	if sc.Source == nil {
		return nil, fmt.Errorf("%w: nil source", ErrDecode)
	}

	faces := newFaceCache(c.fonts)
	defer faces.close()

	surface := newSurface(sc.Width, sc.Height, faces)
	surface.FillRect(textlayout.Rect{W: float64(sc.Width), H: float64(sc.Height)}, color.White)

	plan := c.plan(sc, faces)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	drawPhoto(surface, sc, plan.Filter)

	for _, tp := range plan.Texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := drawText(surface, tp); err != nil {
			return nil, fmt.Errorf("failed to draw text %s: %w", tp.Element.ID, err)
		}
	}

	for _, dp := range plan.Decorations {
		if err := drawDecoration(surface, dp); err != nil {
			return nil, fmt.Errorf("failed to draw decoration %s: %w", dp.Element.ID, err)
		}
	}

	return surface, nil
}

// Plan is the geometry of a render, computed before any pixel is touched.
type Plan struct {
	Region      Region
	Area        space.Rect
	Filter      filter.Chain
	Texts       []TextPlan
	Decorations []DecorationPlan
}

// TextPlan is a visible text element resolved into output pixels.
type TextPlan struct {
	Element     domain.TextElement
	Anchor      space.Vec
	FontSize    float64
	Lines       []textlayout.Line
	Bounds      textlayout.Rect
	Background  *textlayout.Rect
	StrokeWidth float64
	Shadow      *ShadowPlan
}

type ShadowPlan struct {
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// DecorationPlan is a visible decoration resolved into output pixels.
type DecorationPlan struct {
	Element domain.DecorationElement
	Center  space.Vec
	Size    float64
}

// Plan computes the render geometry of sc without drawing.
func (c *Compositor) Plan(sc Scene) Plan {
	faces := newFaceCache(c.fonts)
	defer faces.close()
	return c.plan(sc, faces)
}

func (c *Compositor) plan(sc Scene, faces *faceCache) Plan {
	chain, err := filter.Parse(sc.State.Filter.CSSFilter)
	if err != nil {
		chain = nil
	}

	p := Plan{Region: sc.Region, Area: sc.Area, Filter: chain}

	for _, el := range sc.State.TextElements {
		if !el.Visible {
			continue
		}
		p.Texts = append(p.Texts, planText(sc.Area, faces, el))
	}

	decos := make([]domain.DecorationElement, 0, len(sc.State.DecorationElements))
	for _, d := range sc.State.DecorationElements {
		if d.Visible {
			decos = append(decos, d)
		}
	}
	sort.SliceStable(decos, func(i, j int) bool { return decos[i].ZIndex < decos[j].ZIndex })
	for _, d := range decos {
		p.Decorations = append(p.Decorations, DecorationPlan{
			Element: d,
			Center:  space.Point(sc.Area, space.Vec{X: d.X, Y: d.Y}),
			Size:    space.Length(sc.Area, d.Size),
		})
	}

	return p
}

func planText(area space.Rect, faces *faceCache, el domain.TextElement) TextPlan {
	anchor := space.Point(area, space.Vec{X: el.X, Y: el.Y})
	size := space.Length(area, el.FontSize)
	m := faces.measurer(el.FontFamily)

	block := textlayout.Measure(m, el.Text, size)
	tp := TextPlan{
		Element:  el,
		Anchor:   anchor,
		FontSize: size,
		Lines:    textlayout.Layout(m, el.Text, anchor.X, anchor.Y, size, el.TextAlign, el.VerticalAlign),
		Bounds:   textlayout.BlockBounds(block, anchor.X, anchor.Y, el.TextAlign, el.VerticalAlign),
	}

	if el.BackgroundColor != nil {
		bg := textlayout.Background(tp.Bounds, space.Length(area, BackgroundPadding))
		tp.Background = &bg
	}
	if el.StrokeColor != nil && el.StrokeWidth != nil && *el.StrokeWidth > 0 {
		tp.StrokeWidth = space.Length(area, *el.StrokeWidth)
	}
	if el.ShadowColor != nil && el.ShadowBlur != nil && *el.ShadowBlur > 0 {
		sp := &ShadowPlan{Blur: space.Length(area, *el.ShadowBlur)}
		if el.ShadowOffsetX != nil {
			sp.OffsetX = space.Length(area, *el.ShadowOffsetX)
		}
		if el.ShadowOffsetY != nil {
			sp.OffsetY = space.Length(area, *el.ShadowOffsetY)
		}
		tp.Shadow = sp
	}

	return tp
}

// drawPhoto samples the source region into an offscreen buffer the size of
// the area, filters it there and copies it onto the surface.
func drawPhoto(s *Surface, sc Scene, chain filter.Chain) {
	r := sc.Region
	if r.W <= 0 || r.H <= 0 || sc.Area.W <= 0 || sc.Area.H <= 0 {
		return
	}

	ox := math.Round(sc.Area.X)
	oy := math.Round(sc.Area.Y)
	bw := int(math.Ceil(sc.Area.W))
	bh := int(math.Ceil(sc.Area.H))

	buf := image.NewRGBA(image.Rect(0, 0, bw, bh))
	sx := sc.Area.W / r.W
	sy := sc.Area.H / r.H
	s2d := f64.Aff3{
		sx, 0, -r.X*sx + (sc.Area.X - ox),
		0, sy, -r.Y*sy + (sc.Area.Y - oy),
	}

	sr := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	).Intersect(sc.Source.Bounds())
	xdraw.BiLinear.Transform(buf, s2d, sc.Source, sr, xdraw.Src, nil)

	var out image.Image = buf
	if !chain.Identity() {
		out = filter.Apply(buf, chain, space.Scale(sc.Area))
	}

	xdraw.Draw(s.rgba, image.Rect(int(ox), int(oy), int(ox)+bw, int(oy)+bh), out, image.Point{}, xdraw.Over)
}
