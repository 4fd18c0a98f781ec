package worker

import (
	"context"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/editstate"
)

type editStateReader interface {
	GetEditState(ctx context.Context, imageID string) (*domain.ImageEditState, error)
}

// storedStates reads edit states straight from the store, uncached.
type storedStates struct {
	store editStateReader
}

func (s storedStates) Lookup(ctx context.Context, imageID string) (domain.ImageEditState, bool) {
	st, err := s.store.GetEditState(ctx, imageID)
	if err != nil || st == nil {
		return domain.ImageEditState{}, false
	}
	return editstate.Normalize(*st), true
}
