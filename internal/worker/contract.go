package worker

import (
	"context"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/processor"
)

type photoStore interface {
	GetByID(ctx context.Context, id string) (*domain.Photo, error)
	SaveExportResult(ctx context.Context, result *domain.ExportResult) error
	GetExportResult(ctx context.Context, id string) (*domain.ExportResult, error)
}

type stateSource interface {
	Lookup(ctx context.Context, imageID string) (domain.ImageEditState, bool)
}

type batchExporter interface {
	ExportBatch(ctx context.Context, batchID string, items []processor.BatchItem, opts domain.ExportOptions, progress func(domain.ExportItem)) ([]domain.ExportItem, error)
}

type exportCleaner interface {
	DeleteObjectsWithPrefix(ctx context.Context, prefix string) error
}

type resultPublisher interface {
	SendResult(ctx context.Context, result *domain.ExportResult) error
}
