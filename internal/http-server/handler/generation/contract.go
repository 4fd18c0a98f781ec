package generation

import (
	"context"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/generation"
)

type generator interface {
	Generate(ctx context.Context, req generation.Request) (*domain.GenerationResult, error)
}
