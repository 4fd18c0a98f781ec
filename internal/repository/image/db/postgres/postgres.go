package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"post-composer/internal/domain"
	"post-composer/internal/repository/image"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type PhotosRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewPhotosRepository(db *dbpg.DB, retries retry.Strategy) *PhotosRepository {
	return &PhotosRepository{
		db:      db,
		retries: retries,
	}
}

const photoColumns = `id, project_id, original_filename, original_size, mime_type,
		       width, height, status, original_path, thumbnail_path, bucket,
		       created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(s scanner) (*domain.Photo, error) {
	var p domain.Photo
	err := s.Scan(
		&p.ID,
		&p.ProjectID,
		&p.OriginalFilename,
		&p.OriginalSize,
		&p.MimeType,
		&p.Width,
		&p.Height,
		&p.Status,
		&p.OriginalPath,
		&p.ThumbnailPath,
		&p.Bucket,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PhotosRepository) Save(ctx context.Context, p *domain.Photo) error {
	query := `
		INSERT INTO photos (
			id, project_id, original_filename, original_size, mime_type,
			width, height, status, original_path, thumbnail_path, bucket,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		p.ID,
		p.ProjectID,
		p.OriginalFilename,
		p.OriginalSize,
		p.MimeType,
		p.Width,
		p.Height,
		p.Status,
		p.OriginalPath,
		p.ThumbnailPath,
		p.Bucket,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}

	return nil
}

func (r *PhotosRepository) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1 AND status != $2`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id, domain.StatusDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query photo: %w", err)
	}

	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, image.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan photo: %w", err)
	}

	return p, nil
}

// List returns the live photos of a project in upload order.
func (r *PhotosRepository) List(ctx context.Context, projectID string) ([]domain.Photo, error) {
	query := `SELECT ` + photoColumns + `
		FROM photos
		WHERE project_id = $1 AND status != $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, projectID, domain.StatusDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func (r *PhotosRepository) Count(ctx context.Context, projectID string) (int, error) {
	query := `SELECT COUNT(*) FROM photos WHERE project_id = $1 AND status != $2`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, projectID, domain.StatusDeleted)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}

	return count, nil
}

func (r *PhotosRepository) UpdateStatus(ctx context.Context, id string, status domain.ImageStatus) error {
	query := `UPDATE photos SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return image.ErrImageNotFound
	}

	return nil
}

// Delete marks the photo deleted; the row stays for auditing.
func (r *PhotosRepository) Delete(ctx context.Context, id string) error {
	return r.UpdateStatus(ctx, id, domain.StatusDeleted)
}
