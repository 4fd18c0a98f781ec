package image

import (
	"context"
	"io"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/processor"
)

type imageUsecase interface {
	UploadImage(ctx context.Context, file io.Reader, filename string, fileSize int64) (*domain.Photo, error)
	ListImages(ctx context.Context) ([]domain.Photo, error)
	OpenOriginal(ctx context.Context, id string, thumbnail bool) (*domain.Photo, io.ReadCloser, error)
	DeleteImage(ctx context.Context, id string) error
	Preview(ctx context.Context, id string) (*processor.Rendered, error)
	Export(ctx context.Context, id string, opts domain.ExportOptions) (*processor.Rendered, error)
	QueueExport(ctx context.Context, opts domain.ExportOptions) (*domain.ExportResult, error)
	GetExport(ctx context.Context, id string) (*domain.ExportResult, error)
}

type sessionDropper interface {
	Drop(imageID string)
}
