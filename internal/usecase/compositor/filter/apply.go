package filter

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Apply runs the chain over img. scale converts design-space lengths (blur
// radius) into output pixels so a blur looks the same at every render size.
func Apply(img image.Image, chain Chain, scale float64) *image.NRGBA {
	out := imaging.Clone(img)

	var pending []matrixOp
	flush := func() {
		if len(pending) == 0 {
			return
		}
		ops := pending
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return applyColor(c, ops)
		})
		pending = nil
	}

	for _, op := range chain {
		if op.Kind == Blur {
			flush()
			if sigma := op.Amount * scale; sigma > 0 {
				out = imaging.Blur(out, sigma)
			}
			continue
		}
		pending = append(pending, toMatrix(op))
	}
	flush()

	return out
}

// matrixOp is a 3x3 colour matrix plus an offset and an alpha factor.
type matrixOp struct {
	m      [9]float64
	offset float64
	alpha  float64
}

var identity = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

func toMatrix(op Op) matrixOp {
	a := op.Amount
	switch op.Kind {
	case Brightness:
		return matrixOp{m: [9]float64{a, 0, 0, 0, a, 0, 0, 0, a}, alpha: 1}
	case Contrast:
		return matrixOp{m: [9]float64{a, 0, 0, 0, a, 0, 0, 0, a}, offset: 0.5 - 0.5*a, alpha: 1}
	case Saturate:
		return matrixOp{m: saturateMatrix(a), alpha: 1}
	case Grayscale:
		return matrixOp{m: saturateMatrix(1 - a), alpha: 1}
	case Sepia:
		r := 1 - a
		return matrixOp{m: [9]float64{
			0.393 + 0.607*r, 0.769 - 0.769*r, 0.189 - 0.189*r,
			0.349 - 0.349*r, 0.686 + 0.314*r, 0.168 - 0.168*r,
			0.272 - 0.272*r, 0.534 - 0.534*r, 0.131 + 0.869*r,
		}, alpha: 1}
	case HueRotate:
		rad := a * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		return matrixOp{m: [9]float64{
			0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928,
			0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283,
			0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072,
		}, alpha: 1}
	case Invert:
		k := 1 - 2*a
		return matrixOp{m: [9]float64{k, 0, 0, 0, k, 0, 0, 0, k}, offset: a, alpha: 1}
	case Opacity:
		return matrixOp{m: identity, alpha: a}
	default:
		return matrixOp{m: identity, alpha: 1}
	}
}

func saturateMatrix(s float64) [9]float64 {
	return [9]float64{
		0.2126 + 0.7874*s, 0.7152 - 0.7152*s, 0.0722 - 0.0722*s,
		0.2126 - 0.2126*s, 0.7152 + 0.2848*s, 0.0722 - 0.0722*s,
		0.2126 - 0.2126*s, 0.7152 - 0.7152*s, 0.0722 + 0.9278*s,
	}
}

// applyColor runs the ops in order, clamping after each one.
func applyColor(c color.NRGBA, ops []matrixOp) color.NRGBA {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255
	a := float64(c.A) / 255

	for _, op := range ops {
		m := op.m
		nr := m[0]*r + m[1]*g + m[2]*b + op.offset
		ng := m[3]*r + m[4]*g + m[5]*b + op.offset
		nb := m[6]*r + m[7]*g + m[8]*b + op.offset
		r, g, b = clamp01(nr), clamp01(ng), clamp01(nb)
		a = clamp01(a * op.alpha)
	}

	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: to8(a)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
