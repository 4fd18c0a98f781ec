package image

import (
	"context"
	stdimage "image"
	"io"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/processor"
)

type photoRepository interface {
	Save(ctx context.Context, photo *domain.Photo) error
	GetByID(ctx context.Context, id string) (*domain.Photo, error)
	List(ctx context.Context, projectID string) ([]domain.Photo, error)
	Count(ctx context.Context, projectID string) (int, error)
	Delete(ctx context.Context, id string) error
	SaveExportResult(ctx context.Context, result *domain.ExportResult) error
	GetExportResult(ctx context.Context, id string) (*domain.ExportResult, error)
}

type fileRepository interface {
	GetObject(ctx context.Context, path string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, path string) error
	PresignedExportURL(ctx context.Context, path string) (string, error)
}

type imageProcessor interface {
	Ingest(ctx context.Context, imageID, mimeType string, data []byte) (*processor.Ingested, error)
	Source(ctx context.Context, photo *domain.Photo) (stdimage.Image, error)
	Preview(ctx context.Context, photo *domain.Photo, state domain.ImageEditState) (*processor.Rendered, error)
	Export(ctx context.Context, photo *domain.Photo, state domain.ImageEditState, opts domain.ExportOptions) (*processor.Rendered, error)
}

type stateRegistry interface {
	Get(ctx context.Context, imageID string) domain.ImageEditState
	Lookup(ctx context.Context, imageID string) (domain.ImageEditState, bool)
	Delete(ctx context.Context, imageID string)
}

type exportProducer interface {
	SendExport(ctx context.Context, task *domain.ExportTask) error
}
