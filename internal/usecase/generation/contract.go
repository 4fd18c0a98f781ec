package generation

import (
	"context"

	"post-composer/internal/domain"
)

type chatClient interface {
	Complete(ctx context.Context, apiKey, system, user string) (string, *domain.TokenUsage, error)
}
