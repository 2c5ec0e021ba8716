package driven

import (
	"context"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// ConnectivityValidator checks provider credentials with a cheap live call.
type ConnectivityValidator interface {
	// ValidateLLM pings the configured LLM provider.
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error

	// ValidateSearch pings the configured search provider.
	ValidateSearch(ctx context.Context, settings *domain.SearchSettings) error
}
