package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/infosynth/internal/adapters/driven/search/serpapi"
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.ConnectivityValidator = (*ConfigValidator)(nil)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 10 * time.Second

// ConfigValidator validates provider configurations with a live ping.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM creates the LLM service and pings it.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateSearch creates the search provider and pings it when the
// provider supports a free check. Keyless providers always pass.
func (v *ConfigValidator) ValidateSearch(ctx context.Context, settings *domain.SearchSettings) error {
	provider, err := CreateSearchProvider(settings, nil)
	if err != nil {
		return err
	}

	searcher, ok := provider.(*serpapi.Searcher)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return searcher.Ping(ctx)
}
