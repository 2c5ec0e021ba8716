package driven

import (
	"context"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// SearchProvider runs a web search for a filled query.
//
// Implementations return the provider's organic results verbatim, capped at the
// configured result count, possibly empty. Failures wrap domain.ErrSearch.
// Each call is one outbound request counted against the provider quota.
type SearchProvider interface {
	// Search returns the organic results for query.
	Search(ctx context.Context, query string) ([]domain.SearchEntry, error)

	// Name identifies the provider in logs.
	Name() string
}
