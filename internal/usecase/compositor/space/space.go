// Package space maps the fixed 400x400 design square onto any destination
// rectangle. Editor view, preview and export all go through it.
package space

import "post-composer/internal/domain"

// Rect is a destination rectangle in output pixels.
type Rect struct {
	X, Y, W, H float64
}

// Square returns the rectangle of a size x size render target.
func Square(size float64) Rect {
	return Rect{W: size, H: size}
}

// Vec is a point either in design units or in output pixels.
type Vec struct {
	X, Y float64
}

// Point maps a design-space position into r.
func Point(r Rect, v Vec) Vec {
	return Vec{
		X: r.X + v.X/domain.DesignSize*r.W,
		Y: r.Y + v.Y/domain.DesignSize*r.H,
	}
}

// Length maps an isotropic design quantity (font size, stroke width, blur,
// padding). It uses the shorter side so text never distorts.
func Length(r Rect, v float64) float64 {
	return v / domain.DesignSize * Min(r)
}

// Scale returns the pixels-per-design-unit factor of r.
func Scale(r Rect) float64 {
	return Min(r) / domain.DesignSize
}

// ToDesign maps an output pixel back into design space, clamped to the square.
func ToDesign(r Rect, p Vec) Vec {
	d := Inverse(r, p)
	return Vec{X: domain.ClampDesign(d.X), Y: domain.ClampDesign(d.Y)}
}

// Inverse is the exact inverse of Point. Pixels outside r map outside the
// design square.
func Inverse(r Rect, p Vec) Vec {
	if r.W <= 0 || r.H <= 0 {
		return Vec{}
	}
	return Vec{
		X: (p.X - r.X) / r.W * domain.DesignSize,
		Y: (p.Y - r.Y) / r.H * domain.DesignSize,
	}
}

// Min returns the shorter side of r.
func Min(r Rect) float64 {
	if r.W < r.H {
		return r.W
	}
	return r.H
}
