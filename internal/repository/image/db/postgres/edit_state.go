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

// SaveEditState stores the whole state as one JSONB document.
func (r *PhotosRepository) SaveEditState(ctx context.Context, state domain.ImageEditState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal edit state: %w", err)
	}

	query := `
		INSERT INTO edit_states (image_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (image_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, state.ImageID, doc, state.LastModified); err != nil {
		return fmt.Errorf("failed to save edit state: %w", err)
	}

	return nil
}

func (r *PhotosRepository) GetEditState(ctx context.Context, imageID string) (*domain.ImageEditState, error) {
	query := `SELECT state FROM edit_states WHERE image_id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edit state: %w", err)
	}

	var doc []byte
	err = row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, image.ErrEditStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan edit state: %w", err)
	}

	var state domain.ImageEditState
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edit state: %w", err)
	}

	return &state, nil
}

func (r *PhotosRepository) DeleteEditState(ctx context.Context, imageID string) error {
	query := `DELETE FROM edit_states WHERE image_id = $1`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, imageID); err != nil {
		return fmt.Errorf("failed to delete edit state: %w", err)
	}

	return nil
}
