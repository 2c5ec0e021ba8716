// Package ai provides factory functions for creating LLM and search adapters.
package ai

import (
	"context"
	"fmt"

	anthropicllm "github.com/custodia-labs/infosynth/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/infosynth/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/infosynth/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/infosynth/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/search/duckduckgo"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/search/serpapi"
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
)

// CreateLLMService creates the LLM service named by settings.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: llm provider %q is not configured", domain.ErrConfiguration, providerOf(settings))
	}

	switch settings.Provider {
	case domain.AIProviderGroq:
		return createGroqLLM(settings)

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			MaxRetries: settings.MaxRetries,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			MaxRetries: settings.MaxRetries,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			MaxRetries: settings.MaxRetries,
		}), nil

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			MaxRetries: settings.MaxRetries,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

// createGroqLLM points the OpenAI-compatible adapter at Groq.
func createGroqLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = openaillm.GroqBaseURL
	}
	model := settings.Model
	if model == "" {
		model = openaillm.GroqModel
	}
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:     settings.APIKey,
		BaseURL:    baseURL,
		Model:      model,
		MaxRetries: settings.MaxRetries,
		Provider:   string(domain.AIProviderGroq),
	})
}

// CreateSearchProvider creates the search provider named by settings.
// backoff is optional and only used by providers that report a retry hint.
func CreateSearchProvider(settings *domain.SearchSettings, backoff serpapi.Backoff) (driven.SearchProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		provider := ""
		if settings != nil {
			provider = string(settings.Provider)
		}
		return nil, fmt.Errorf("%w: search provider %q is not configured", domain.ErrConfiguration, provider)
	}

	switch settings.Provider {
	case domain.SearchProviderSerpAPI:
		return serpapi.New(serpapi.Config{
			APIKey:     settings.APIKey,
			Country:    settings.Country,
			NumResults: settings.NumResults,
			Backoff:    backoff,
		})

	case domain.SearchProviderDuckDuckGo:
		return duckduckgo.New(duckduckgo.Config{
			Region:     duckduckgo.RegionFor(settings.Country),
			NumResults: settings.NumResults,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported search provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

func providerOf(settings *domain.LLMSettings) string {
	if settings == nil {
		return ""
	}
	return string(settings.Provider)
}
