package image

import (
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"io"
	"time"

	"post-composer/internal/domain"
	repoImage "post-composer/internal/repository/image"
	"post-composer/internal/usecase/processor"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

var acceptedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Limits bounds what a project accepts.
type Limits struct {
	MaxUploadSize int64
	MaxPhotos     int
}

type ImageUsecase struct {
	repo      photoRepository
	fileRepo  fileRepository
	processor imageProcessor
	states    stateRegistry
	producer  exportProducer
	limits    Limits
	logger    *zlog.Zerolog
	now       func() time.Time
	newID     func() string
}

func NewImageUsecase(repo photoRepository, fileRepo fileRepository, proc imageProcessor, states stateRegistry, producer exportProducer, limits Limits, logger *zlog.Zerolog) *ImageUsecase {
	if limits.MaxUploadSize <= 0 {
		limits.MaxUploadSize = domain.DefaultMaxUploadSize
	}
	if limits.MaxPhotos <= 0 {
		limits.MaxPhotos = domain.DefaultMaxPhotos
	}
	return &ImageUsecase{
		repo:      repo,
		fileRepo:  fileRepo,
		processor: proc,
		states:    states,
		producer:  producer,
		limits:    limits,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// UploadImage validates and ingests one photo into the default project.
func (i *ImageUsecase) UploadImage(ctx context.Context, file io.Reader, filename string, fileSize int64) (*domain.Photo, error) {
	if fileSize > i.limits.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, i.limits.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > i.limits.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), acceptedTypes...) {
		i.logger.Warn().Str("filename", filename).Str("detected", mime.String()).Msg("Rejected upload type")
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileFormat, mime.String())
	}

	count, err := i.repo.Count(ctx, domain.DefaultProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if count >= i.limits.MaxPhotos {
		return nil, ErrTooManyImages
	}

	imageID := i.newID()
	ingested, err := i.processor.Ingest(ctx, imageID, mime.String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest image: %w", err)
	}

	now := i.now()
	photo := &domain.Photo{
		ID:               imageID,
		ProjectID:        domain.DefaultProjectID,
		OriginalFilename: filename,
		OriginalSize:     int64(len(data)),
		MimeType:         ingested.MimeType,
		Width:            ingested.Width,
		Height:           ingested.Height,
		Status:           domain.StatusReady,
		OriginalPath:     ingested.OriginalPath,
		ThumbnailPath:    ingested.ThumbnailPath,
		Bucket:           domain.BucketOriginal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := i.repo.Save(ctx, photo); err != nil {
		i.removeObjects(ctx, photo)
		return nil, fmt.Errorf("%w: failed to save photo metadata: %v", ErrDatabaseError, err)
	}

	i.logger.Info().Str("image_id", imageID).Str("filename", filename).Msg("Image uploaded")
	return photo, nil
}

// ListImages returns the project's photos with their edit states attached.
func (i *ImageUsecase) ListImages(ctx context.Context) ([]domain.Photo, error) {
	photos, err := i.repo.List(ctx, domain.DefaultProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for idx := range photos {
		if st, ok := i.states.Lookup(ctx, photos[idx].ID); ok {
			photos[idx].EditState = &st
		}
	}
	return photos, nil
}

func (i *ImageUsecase) GetImage(ctx context.Context, id string) (*domain.Photo, error) {
	photo, err := i.repo.GetByID(ctx, id)
	if errors.Is(err, repoImage.ErrImageNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	if st, ok := i.states.Lookup(ctx, id); ok {
		photo.EditState = &st
	}
	return photo, nil
}

// OpenOriginal streams the stored original, or its thumbnail.
func (i *ImageUsecase) OpenOriginal(ctx context.Context, id string, thumbnail bool) (*domain.Photo, io.ReadCloser, error) {
	photo, err := i.GetImage(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	path := photo.OriginalPath
	if thumbnail {
		path = photo.ThumbnailPath
	}

	reader, err := i.fileRepo.GetObject(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageError, err)
	}
	return photo, reader, nil
}

// DeleteImage removes a photo, its stored files and its edit state.
func (i *ImageUsecase) DeleteImage(ctx context.Context, id string) error {
	photo, err := i.GetImage(ctx, id)
	if err != nil {
		return err
	}

	i.removeObjects(ctx, photo)
	i.states.Delete(ctx, id)

	if err := i.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repoImage.ErrImageNotFound) {
			return ErrImageNotFound
		}
		return fmt.Errorf("%w: failed to delete photo: %v", ErrDatabaseError, err)
	}

	i.logger.Info().Str("image_id", id).Msg("Image deleted")
	return nil
}

// Source returns a photo with its decoded original.
func (i *ImageUsecase) Source(ctx context.Context, id string) (*domain.Photo, stdimage.Image, error) {
	photo, err := i.GetImage(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	img, err := i.processor.Source(ctx, photo)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageError, err)
	}
	return photo, img, nil
}

func (i *ImageUsecase) Preview(ctx context.Context, id string) (*processor.Rendered, error) {
	photo, err := i.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return i.processor.Preview(ctx, photo, i.states.Get(ctx, id))
}

// Export renders one edited photo at full size.
func (i *ImageUsecase) Export(ctx context.Context, id string, opts domain.ExportOptions) (*processor.Rendered, error) {
	photo, err := i.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !photo.Edited() {
		return nil, ErrNotEdited
	}

	out, err := i.processor.Export(ctx, photo, *photo.EditState, opts)
	if err != nil {
		return nil, err
	}

	i.logger.Info().Str("image_id", id).Str("filename", out.Filename).Msg("Image exported")
	return out, nil
}

// QueueExport records a pending batch of every edited photo and hands it to
// the export worker.
func (i *ImageUsecase) QueueExport(ctx context.Context, opts domain.ExportOptions) (*domain.ExportResult, error) {
	photos, err := i.ListImages(ctx)
	if err != nil {
		return nil, err
	}

	task := &domain.ExportTask{
		ID:        i.newID(),
		ProjectID: domain.DefaultProjectID,
		Format:    opts.Format,
		Quality:   opts.Quality,
		CreatedAt: i.now(),
	}
	result := &domain.ExportResult{
		ID:        task.ID,
		ProjectID: task.ProjectID,
		Status:    domain.ExportPending,
		UpdatedAt: task.CreatedAt,
	}
	for _, p := range photos {
		if !p.Edited() {
			continue
		}
		task.ImageIDs = append(task.ImageIDs, p.ID)
		result.Items = append(result.Items, domain.ExportItem{
			ImageID:   p.ID,
			ImageName: p.OriginalFilename,
			Status:    domain.ExportPending,
		})
	}
	if len(task.ImageIDs) == 0 {
		return nil, ErrNothingToExport
	}

	if err := i.repo.SaveExportResult(ctx, result); err != nil {
		return nil, fmt.Errorf("%w: failed to save export: %v", ErrDatabaseError, err)
	}

	if err := i.producer.SendExport(ctx, task); err != nil {
		i.logger.Error().Err(err).Str("export_id", task.ID).Msg("Failed to send export task")
		result.Status = domain.ExportError
		result.UpdatedAt = i.now()
		if saveErr := i.repo.SaveExportResult(ctx, result); saveErr != nil {
			i.logger.Error().Err(saveErr).Str("export_id", task.ID).Msg("Failed to mark export failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrMessageQueueError, err)
	}

	i.logger.Info().Str("export_id", task.ID).Int("images", len(task.ImageIDs)).Msg("Export queued")
	return result, nil
}

// GetExport returns a batch with download links for finished items.
func (i *ImageUsecase) GetExport(ctx context.Context, id string) (*domain.ExportResult, error) {
	result, err := i.repo.GetExportResult(ctx, id)
	if errors.Is(err, repoImage.ErrExportNotFound) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for idx := range result.Items {
		it := &result.Items[idx]
		if it.Status != domain.ExportCompleted || it.Path == "" {
			continue
		}
		url, err := i.fileRepo.PresignedExportURL(ctx, it.Path)
		if err != nil {
			i.logger.Warn().Err(err).Str("path", it.Path).Msg("Failed to presign export")
			continue
		}
		it.URL = url
	}
	return result, nil
}

func (i *ImageUsecase) removeObjects(ctx context.Context, photo *domain.Photo) {
	for _, path := range []string{photo.OriginalPath, photo.ThumbnailPath} {
		if path == "" {
			continue
		}
		if err := i.fileRepo.DeleteObject(ctx, path); err != nil {
			i.logger.Error().Err(err).Str("path", path).Msg("Failed to delete stored file")
		}
	}
}
