package operations

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// Resizer fits uploads inside a square of LongEdge pixels. Images already
// inside the box are left untouched.
type Resizer struct {
	LongEdge int
}

func NewResizer(longEdge int) *Resizer {
	return &Resizer{LongEdge: longEdge}
}

func (r *Resizer) Process(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() <= r.LongEdge && b.Dy() <= r.LongEdge {
		return img, nil
	}
	return imaging.Fit(img, r.LongEdge, r.LongEdge, imaging.Lanczos), nil
}
