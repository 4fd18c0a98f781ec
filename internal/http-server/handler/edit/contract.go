package edit

import (
	"context"
	"image"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/editor"
	"post-composer/internal/usecase/editstate"
)

type photoSource interface {
	GetImage(ctx context.Context, id string) (*domain.Photo, error)
	Source(ctx context.Context, id string) (*domain.Photo, image.Image, error)
}

type stateRegistry interface {
	Get(ctx context.Context, imageID string) domain.ImageEditState
	Update(ctx context.Context, imageID string, fn editstate.Reducer) (domain.ImageEditState, error)
	Replace(ctx context.Context, state domain.ImageEditState) (domain.ImageEditState, error)
}

type sessionManager interface {
	Session(imageID string) *editor.Session
}

type viewRenderer interface {
	Render(ctx context.Context, snap editor.Snapshot, src image.Image, state domain.ImageEditState) (*image.RGBA, error)
}
