package editstate

import (
	"context"

	"post-composer/internal/domain"
)

type stateStore interface {
	SaveEditState(ctx context.Context, state domain.ImageEditState) error
	GetEditState(ctx context.Context, imageID string) (*domain.ImageEditState, error)
	DeleteEditState(ctx context.Context, imageID string) error
}
