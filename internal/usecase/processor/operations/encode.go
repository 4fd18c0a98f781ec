package operations

import (
	"bytes"
	"fmt"
	"image"

	"post-composer/internal/domain"

	"github.com/disintegration/imaging"
)

// Encode writes img as JPEG or PNG. quality only applies to JPEG and is
// clamped into the accepted export range.
func Encode(img image.Image, format domain.ExportFormat, quality int) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	var err error

	switch format {
	case domain.ExportPNG:
		err = imaging.Encode(buf, img, imaging.PNG)
	case domain.ExportJPG, "jpeg", "":
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(ClampQuality(quality)))
		format = domain.ExportJPG
	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}

	if err != nil {
		return nil, "", err
	}
	return buf, ContentType(format), nil
}

func ClampQuality(q int) int {
	switch {
	case q == 0:
		return domain.DefaultExportQuality
	case q < domain.MinExportQuality:
		return domain.MinExportQuality
	case q > domain.MaxExportQuality:
		return domain.MaxExportQuality
	}
	return q
}

func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportPNG {
		return "image/png"
	}
	return "image/jpeg"
}
