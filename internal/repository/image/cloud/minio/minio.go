package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"post-composer/internal/config"
	"post-composer/internal/repository/image"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// FileRepository keeps originals and thumbnails in one bucket and rendered
// exports in another.
type FileRepository struct {
	client         *minio.Client
	cfg            *config.Config
	retries        retry.Strategy
	logger         *zlog.Zerolog
	originalBucket string
	exportsBucket  string
}

func NewMinIORepository(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
		Region: cfg.Minio.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	repo := &FileRepository{
		client:         client,
		cfg:            cfg,
		retries:        retries,
		logger:         logger,
		originalBucket: cfg.Minio.OriginalBucket,
		exportsBucket:  cfg.Minio.ExportsBucket,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	for _, bucket := range []string{repo.originalBucket, repo.exportsBucket} {
		if err := repo.ensureBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (r *FileRepository) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := r.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}

	if err := r.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: r.cfg.Minio.Region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	r.logger.Info().Str("bucket", bucket).Msg("Bucket created")
	return nil
}

func (r *FileRepository) SaveOriginal(ctx context.Context, objectPath string, data io.Reader, size int64, contentType string) error {
	return r.put(ctx, r.originalBucket, objectPath, data, size, contentType)
}

func (r *FileRepository) SaveProcessed(ctx context.Context, objectPath string, data io.Reader, size int64, contentType string) error {
	return r.put(ctx, r.exportsBucket, objectPath, data, size, contentType)
}

func (r *FileRepository) GetObject(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	return r.get(ctx, r.originalBucket, objectPath)
}

func (r *FileRepository) DeleteObject(ctx context.Context, objectPath string) error {
	if err := r.client.RemoveObject(ctx, r.originalBucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", image.ErrStorageError, objectPath, err)
	}
	return nil
}

// DeleteObjectsWithPrefix removes every export stored under prefix.
func (r *FileRepository) DeleteObjectsWithPrefix(ctx context.Context, prefix string) error {
	objects := r.client.ListObjects(ctx, r.exportsBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var failed int
	for rerr := range r.client.RemoveObjects(ctx, r.exportsBucket, objects, minio.RemoveObjectsOptions{}) {
		failed++
		r.logger.Error().Err(rerr.Err).Str("object", rerr.ObjectName).Msg("Failed to remove object")
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d objects under %s not removed", image.ErrStorageError, failed, prefix)
	}
	return nil
}

// PresignedExportURL returns a time-limited download link for an export.
func (r *FileRepository) PresignedExportURL(ctx context.Context, objectPath string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(objectPath)))

	u, err := r.client.PresignedGetObject(ctx, r.exportsBucket, objectPath, r.cfg.Minio.PresignExpiry, params)
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign %s: %v", image.ErrStorageError, objectPath, err)
	}
	return u.String(), nil
}

func (r *FileRepository) put(ctx context.Context, bucket, objectPath string, data io.Reader, size int64, contentType string) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read upload payload: %w", err)
	}
	if size <= 0 {
		size = int64(len(payload))
	}

	err = retry.Do(func() error {
		_, err := r.client.PutObject(ctx, bucket, objectPath, bytes.NewReader(payload), size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	}, r.retries)
	if err != nil {
		r.logger.Error().Err(err).Str("bucket", bucket).Str("path", objectPath).Msg("Failed to store object")
		return fmt.Errorf("%w: failed to store %s: %v", image.ErrStorageError, objectPath, err)
	}

	r.logger.Debug().Str("bucket", bucket).Str("path", objectPath).Int64("size", size).Msg("Object stored")
	return nil
}

func (r *FileRepository) get(ctx context.Context, bucket, objectPath string) (io.ReadCloser, error) {
	obj, err := r.client.GetObject(ctx, bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", image.ErrStorageError, objectPath, err)
	}

	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			return nil, image.ErrFileNotFound
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %v", image.ErrStorageError, objectPath, err)
	}

	return obj, nil
}
