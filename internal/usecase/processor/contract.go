package processor

import (
	"context"
	"io"
)

type fileRepository interface {
	SaveOriginal(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
	GetObject(ctx context.Context, path string) (io.ReadCloser, error)
	SaveProcessed(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
}
