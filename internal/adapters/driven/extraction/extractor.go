// Package extraction asks a language model to pull one requested fact out
// of web search results.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Prompt placeholders.
const (
	PlaceholderQuery   = "{query}"
	PlaceholderResults = "{search_results}"
)

// DefaultPrompt is used when no prompt store is configured or the stored
// prompt cannot be loaded.
const DefaultPrompt = `Extract ONLY the specific information requested from the search results for: {query}

Search Results:
{search_results}

Provide ONLY the extracted information as a simple text response.
If multiple items exist, separate them with semicolons.
If no relevant information is found, respond with "Not found".

For example:
- If asked for locations: "Bengaluru; Mumbai; Delhi"
- If asked for email: "contact@company.com"
- If asked for address: "123 Main Street, City, Country"
`

// Extractor renders the extraction prompt and returns the model's raw answer.
type Extractor struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// New creates an extractor. promptStore may be nil.
func New(llm driven.LLMService, promptStore driven.PromptStore) *Extractor {
	return &Extractor{llm: llm, promptStore: promptStore}
}

// Extract makes exactly one model call. The answer is returned unmodified.
func (e *Extractor) Extract(ctx context.Context, results []domain.SearchEntry, query string) (string, error) {
	prompt, err := e.render(results, query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	answer, err := e.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, e.llm.ModelName(), err)
	}
	return answer, nil
}

func (e *Extractor) render(results []domain.SearchEntry, query string) (string, error) {
	if results == nil {
		results = []domain.SearchEntry{}
	}
	evidence, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode search results: %w", err)
	}

	r := strings.NewReplacer(
		PlaceholderQuery, query,
		PlaceholderResults, string(evidence),
	)
	return r.Replace(e.template()), nil
}

// template loads the prompt from the store, falling back to the default if unavailable.
func (e *Extractor) template() string {
	if e.promptStore == nil {
		return DefaultPrompt
	}
	prompt, err := e.promptStore.Load(driven.PromptExtract)
	if err != nil {
		logger.Debug("extraction: using default prompt: %v", err)
		return DefaultPrompt
	}
	return prompt
}
