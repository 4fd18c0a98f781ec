// Package textlayout measures and positions multi-line text blocks. Measure,
// Layout and Bounds share one line split and one line-height rule, so the
// rectangle used for backgrounds and selection outlines always matches what
// is drawn.
package textlayout

import (
	"strings"

	"post-composer/internal/domain"
)

// LineHeightFactor is the line pitch relative to the font size.
const LineHeightFactor = 1.2

// Measurer reports advance widths and vertical metrics for a font at a pixel size.
type Measurer interface {
	Advance(text string, size float64) float64
	Metrics(size float64) (ascent, descent float64)
}

// Block is the measured extent of a text block.
type Block struct {
	Width      float64
	Height     float64
	LineHeight float64
	Lines      []string
}

// Line is one positioned line. Left is where drawing starts, Baseline is the
// glyph baseline.
type Line struct {
	Text     string
	Left     float64
	Baseline float64
	Width    float64
}

// Rect is an axis-aligned rectangle in output pixels.
type Rect struct {
	X, Y, W, H float64
}

// Split breaks text on newlines. Empty lines are kept.
func Split(text string) []string {
	return strings.Split(text, "\n")
}

// Measure returns the block size of text at fontSize.
func Measure(m Measurer, text string, fontSize float64) Block {
	lines := Split(text)
	lh := fontSize * LineHeightFactor

	var maxW float64
	for _, l := range lines {
		if w := m.Advance(l, fontSize); w > maxW {
			maxW = w
		}
	}

	return Block{
		Width:      maxW,
		Height:     float64(len(lines)) * lh,
		LineHeight: lh,
		Lines:      lines,
	}
}

// Layout positions every line of text around the anchor (x, y).
func Layout(m Measurer, text string, x, y, fontSize float64, align domain.TextAlign, valign domain.VerticalAlign) []Line {
	b := Measure(m, text, fontSize)
	ascent, descent := m.Metrics(fontSize)

	startY := y
	switch valign {
	case domain.VAlignBottom:
		startY = y - b.Height + b.LineHeight
	case domain.VAlignTop:
	default:
		startY = y - (b.Height-b.LineHeight)/2
	}

	out := make([]Line, 0, len(b.Lines))
	for i, text := range b.Lines {
		ref := startY + float64(i)*b.LineHeight
		w := m.Advance(text, fontSize)
		out = append(out, Line{
			Text:     text,
			Left:     alignLeft(x, w, align),
			Baseline: baseline(ref, ascent, descent, valign),
			Width:    w,
		})
	}
	return out
}

// Bounds returns the rectangle the block occupies for the given anchor.
func Bounds(m Measurer, text string, x, y, fontSize float64, align domain.TextAlign, valign domain.VerticalAlign) Rect {
	b := Measure(m, text, fontSize)
	return BlockBounds(b, x, y, align, valign)
}

// BlockBounds places an already measured block around the anchor.
func BlockBounds(b Block, x, y float64, align domain.TextAlign, valign domain.VerticalAlign) Rect {
	top := y
	switch valign {
	case domain.VAlignBottom:
		top = y - b.Height
	case domain.VAlignTop:
	default:
		top = y - b.Height/2
	}
	return Rect{X: alignLeft(x, b.Width, align), Y: top, W: b.Width, H: b.Height}
}

// Pad grows r by h on the left and right and by v on the top and bottom.
func (r Rect) Pad(h, v float64) Rect {
	return Rect{X: r.X - h, Y: r.Y - v, W: r.W + 2*h, H: r.H + 2*v}
}

// Contains reports whether o lies inside r, within eps.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.X+o.W <= r.X+r.W+eps && o.Y+o.H <= r.Y+r.H+eps
}

// Background is the box filled behind a block: the block plus padding on
// each side horizontally and half that vertically.
func Background(bounds Rect, padding float64) Rect {
	return bounds.Pad(padding/2, padding/4)
}

func alignLeft(x, w float64, align domain.TextAlign) float64 {
	switch align {
	case domain.AlignLeft:
		return x
	case domain.AlignRight:
		return x - w
	default:
		return x - w/2
	}
}

// baseline maps a line's reference y to its glyph baseline. The reference
// is the top, middle or bottom of the line depending on valign.
func baseline(ref, ascent, descent float64, valign domain.VerticalAlign) float64 {
	switch valign {
	case domain.VAlignTop:
		return ref + ascent
	case domain.VAlignBottom:
		return ref - descent
	default:
		return ref + (ascent-descent)/2
	}
}
