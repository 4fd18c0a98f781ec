package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor"
	"post-composer/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/zlog"
)

// Ingested describes the stored artefacts of one upload.
type Ingested struct {
	Width         int
	Height        int
	MimeType      string
	Size          int64
	OriginalPath  string
	ThumbnailPath string
}

// Rendered is an encoded composite ready to be stored or streamed.
type Rendered struct {
	Data        []byte
	ContentType string
	Filename    string
}

// BatchItem pairs a photo with the edit state it is exported with.
type BatchItem struct {
	Photo *domain.Photo
	State domain.ImageEditState
}

type ImageProcessor struct {
	resizer     *operations.Resizer
	thumbnailer *operations.Thumbnailer
	composer    *operations.Composer
	fileRepo    fileRepository
	logger      *zlog.Zerolog
	pacing      time.Duration
	now         func() time.Time
}

// NewImageProcessor wires the ingestion and render pipeline. pacing is the
// pause between two items of a batch export.
func NewImageProcessor(comp *compositor.Compositor, fileRepo fileRepository, pacing time.Duration, logger *zlog.Zerolog) *ImageProcessor {
	return &ImageProcessor{
		resizer:     operations.NewResizer(domain.DefaultIngestLongEdge),
		thumbnailer: operations.NewThumbnailer(domain.DefaultThumbnailSize),
		composer:    operations.NewComposer(comp),
		fileRepo:    fileRepo,
		logger:      logger,
		pacing:      pacing,
		now:         time.Now,
	}
}

// Ingest validates an upload by decoding it, stores the bytes unchanged as
// the original and derives the thumbnail from a copy fitted into the ingest
// box. Width and Height are the native dimensions crops are resolved against.
func (p *ImageProcessor) Ingest(ctx context.Context, imageID, mimeType string, data []byte) (*Ingested, error) {
	img, err := compositor.Decode(data)
	if err != nil {
		p.logger.Error().Err(err).Str("image_id", imageID).Msg("Failed to decode upload")
		return nil, err
	}

	out := &Ingested{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		MimeType:      mimeType,
		Size:          int64(len(data)),
		OriginalPath:  fmt.Sprintf("%s%s.%s", domain.PathPrefixOriginal, imageID, originalExt(mimeType)),
		ThumbnailPath: fmt.Sprintf("%s%s.jpg", domain.PathPrefixThumbnail, imageID),
	}

	if err := p.fileRepo.SaveOriginal(ctx, out.OriginalPath, bytes.NewReader(data), out.Size, mimeType); err != nil {
		return nil, fmt.Errorf("failed to save original: %w", err)
	}

	fitted, err := p.resizer.Process(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	thumb, thumbType, err := p.thumbnailer.Process(ctx, fitted)
	if err != nil {
		return nil, fmt.Errorf("failed to build thumbnail: %w", err)
	}
	thumbData, err := io.ReadAll(thumb)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}
	if err := p.fileRepo.SaveOriginal(ctx, out.ThumbnailPath, bytes.NewReader(thumbData), int64(len(thumbData)), thumbType); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	p.logger.Info().
		Str("image_id", imageID).
		Int("width", out.Width).
		Int("height", out.Height).
		Int64("size", out.Size).
		Msg("Upload ingested")

	return out, nil
}

func originalExt(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "png"):
		return "png"
	case strings.Contains(mimeType, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}

// Source loads and decodes the stored original of photo.
func (p *ImageProcessor) Source(ctx context.Context, photo *domain.Photo) (image.Image, error) {
	reader, err := p.fileRepo.GetObject(ctx, photo.OriginalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get original image: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return compositor.Decode(data)
}

// Preview renders the small always-PNG preview of an edit state.
func (p *ImageProcessor) Preview(ctx context.Context, photo *domain.Photo, state domain.ImageEditState) (*Rendered, error) {
	return p.render(ctx, photo, state, domain.PreviewSize, domain.ExportOptions{Format: domain.ExportPNG})
}

// Export renders the full-size composite and names it for download.
func (p *ImageProcessor) Export(ctx context.Context, photo *domain.Photo, state domain.ImageEditState, opts domain.ExportOptions) (*Rendered, error) {
	if opts.Format == "" {
		opts.Format = domain.ExportJPG
	}
	out, err := p.render(ctx, photo, state, domain.ExportSize, opts)
	if err != nil {
		return nil, err
	}
	out.Filename = ExportFilename(photo.OriginalFilename, state, opts.Format, p.now())
	return out, nil
}

func (p *ImageProcessor) render(ctx context.Context, photo *domain.Photo, state domain.ImageEditState, size int, opts domain.ExportOptions) (*Rendered, error) {
	src, err := p.Source(ctx, photo)
	if err != nil {
		return nil, err
	}

	processed, contentType, err := p.composer.Process(ctx, src, state, size, opts)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(processed)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed data: %w", err)
	}
	return &Rendered{Data: data, ContentType: contentType}, nil
}

// ExportBatch exports items one after another, pausing between them, and
// stores every output under exports/{batchID}/. A failed item is recorded
// and the batch moves on. Cancelling ctx stops the batch between items; the
// items not reached stay pending and ctx's error is returned.
func (p *ImageProcessor) ExportBatch(ctx context.Context, batchID string, items []BatchItem, opts domain.ExportOptions, progress func(domain.ExportItem)) ([]domain.ExportItem, error) {
	results := make([]domain.ExportItem, len(items))
	for i, it := range items {
		results[i] = domain.ExportItem{
			ImageID:   it.Photo.ID,
			ImageName: it.Photo.OriginalFilename,
			Status:    domain.ExportPending,
		}
	}

	p.logger.Info().
		Str("batch_id", batchID).
		Int("items", len(items)).
		Str("format", string(opts.Format)).
		Msg("Starting batch export")

	for i, it := range items {
		if i > 0 {
			if err := p.wait(ctx); err != nil {
				p.logger.Warn().Err(err).Str("batch_id", batchID).Int("done", i).Msg("Batch export cancelled")
				return results, err
			}
		} else if err := ctx.Err(); err != nil {
			return results, err
		}

		results[i].Status = domain.ExportProcessing
		if progress != nil {
			progress(results[i])
		}

		start := time.Now()
		if err := p.exportOne(ctx, batchID, it, opts, &results[i]); err != nil {
			results[i].Status = domain.ExportError
			results[i].Error = err.Error()
			p.logger.Error().
				Err(err).
				Str("batch_id", batchID).
				Str("image_id", it.Photo.ID).
				Msg("Export item failed")
		} else {
			results[i].Status = domain.ExportCompleted
			p.logger.Debug().
				Str("batch_id", batchID).
				Str("image_id", it.Photo.ID).
				Str("path", results[i].Path).
				Dur("duration", time.Since(start)).
				Msg("Export item completed")
		}

		if progress != nil {
			progress(results[i])
		}
	}

	return results, nil
}

func (p *ImageProcessor) exportOne(ctx context.Context, batchID string, it BatchItem, opts domain.ExportOptions, item *domain.ExportItem) error {
	out, err := p.Export(ctx, it.Photo, it.State, opts)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s%s/%s", domain.PathPrefixExports, batchID, out.Filename)
	if err := p.fileRepo.SaveProcessed(ctx, path, bytes.NewReader(out.Data), int64(len(out.Data)), out.ContentType); err != nil {
		return fmt.Errorf("failed to save exported image: %w", err)
	}

	item.Filename = out.Filename
	item.Path = path
	return nil
}

func (p *ImageProcessor) wait(ctx context.Context) error {
	if p.pacing <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(p.pacing)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
