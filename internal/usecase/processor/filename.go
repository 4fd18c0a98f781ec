package processor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"post-composer/internal/domain"
)

const timestampLayout = "2006-01-02T15-04-05"

// ExportFilename names an exported photo after its original file and the
// kind of edits applied, e.g. "living_text2_cropped_2025-01-15T10-30-00.jpg".
func ExportFilename(original string, state domain.ImageEditState, format domain.ExportFormat, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "image"
	}

	var edits []string
	if n := len(state.TextElements); n > 0 {
		edits = append(edits, fmt.Sprintf("text%d", n))
	}
	if state.CropActive() {
		edits = append(edits, "cropped")
	}
	if len(edits) == 0 {
		edits = []string{"edited"}
	}

	if format == "" {
		format = domain.ExportJPG
	}
	return fmt.Sprintf("%s_%s_%s.%s", base, strings.Join(edits, "_"), at.UTC().Format(timestampLayout), format)
}
