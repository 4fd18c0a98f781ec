package operations

import (
	"context"
	"fmt"
	"image"
	"io"

	"post-composer/internal/domain"

	"github.com/disintegration/imaging"
)

// Thumbnailer produces the square JPEG shown in the photo grid.
type Thumbnailer struct {
	Size int
}

func NewThumbnailer(size int) *Thumbnailer {
	if size <= 0 {
		size = domain.DefaultThumbnailSize
	}
	return &Thumbnailer{Size: size}
}

func (t *Thumbnailer) Process(ctx context.Context, img image.Image) (io.Reader, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	thumb := imaging.Fill(img, t.Size, t.Size, imaging.Center, imaging.Lanczos)

	buf, contentType, err := Encode(thumb, domain.ExportJPG, domain.DefaultJPEGQuality)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, contentType, nil
}
