package driven

import (
	"context"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// Extractor asks a language model to isolate the information requested by
// query from unstructured search results.
//
// The returned text is the model's raw answer. Transport or auth failures
// wrap domain.ErrExtraction.
type Extractor interface {
	Extract(ctx context.Context, results []domain.SearchEntry, query string) (string, error)
}
