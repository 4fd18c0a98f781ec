package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"post-composer/internal/domain"
	"post-composer/internal/repository/image"
)

// SaveExportResult upserts a batch with its per-item outcomes.
func (r *PhotosRepository) SaveExportResult(ctx context.Context, result *domain.ExportResult) error {
	items, err := json.Marshal(result.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal export items: %w", err)
	}

	query := `
		INSERT INTO export_results (id, project_id, status, items, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecWithRetry(ctx, r.retries, query,
		result.ID,
		result.ProjectID,
		result.Status,
		items,
		result.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save export result: %w", err)
	}

	return nil
}

func (r *PhotosRepository) GetExportResult(ctx context.Context, id string) (*domain.ExportResult, error) {
	query := `SELECT id, project_id, status, items, updated_at FROM export_results WHERE id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query export result: %w", err)
	}

	var (
		result domain.ExportResult
		items  []byte
	)
	err = row.Scan(&result.ID, &result.ProjectID, &result.Status, &items, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, image.ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export result: %w", err)
	}

	if err := json.Unmarshal(items, &result.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export items: %w", err)
	}

	return &result, nil
}
