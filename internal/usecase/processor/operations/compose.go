package operations

import (
	"context"
	"fmt"
	"image"
	"io"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor"
)

// Composer renders an edit state over a photo and encodes the result.
type Composer struct {
	comp *compositor.Compositor
}

func NewComposer(comp *compositor.Compositor) *Composer {
	return &Composer{comp: comp}
}

func (c *Composer) Process(ctx context.Context, img image.Image, state domain.ImageEditState, size int, opts domain.ExportOptions) (io.Reader, string, error) {
	out, err := c.comp.Composite(ctx, size, img, state)
	if err != nil {
		return nil, "", fmt.Errorf("failed to composite: %w", err)
	}

	buf, contentType, err := Encode(out, opts.Format, opts.Quality)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode composite: %w", err)
	}
	return buf, contentType, nil
}
