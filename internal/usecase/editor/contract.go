package editor

import (
	"context"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/editstate"
)

type stateRegistry interface {
	Get(ctx context.Context, imageID string) domain.ImageEditState
	Update(ctx context.Context, imageID string, fn editstate.Reducer) (domain.ImageEditState, error)
}
