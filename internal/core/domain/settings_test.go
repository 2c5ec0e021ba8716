package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range []AIProvider{AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderGemini} {
		assert.True(t, p.IsValid(), p)
		assert.NotEqual(t, unknownDescription, p.Description())
	}
	assert.False(t, AIProvider("bogus").IsValid())
	assert.Equal(t, unknownDescription, AIProvider("bogus").Description())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderGroq.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProvider("bogus").RequiresAPIKey())
}

func TestAIProvider_APIKeyEnv(t *testing.T) {
	assert.Equal(t, "GROQ_API_KEY", AIProviderGroq.APIKeyEnv())
	assert.Equal(t, "", AIProviderOllama.APIKeyEnv())
}

func TestSearchSettings_IsConfigured(t *testing.T) {
	assert.False(t, SearchSettings{Provider: SearchProviderSerpAPI}.IsConfigured())
	assert.True(t, SearchSettings{Provider: SearchProviderSerpAPI, APIKey: "k"}.IsConfigured())
	assert.True(t, SearchSettings{Provider: SearchProviderDuckDuckGo}.IsConfigured())
	assert.False(t, SearchSettings{Provider: "bing"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, SearchProviderSerpAPI, s.Search.Provider)
	assert.Equal(t, "in", s.Search.Country)
	assert.Equal(t, 5, s.Search.NumResults)
	assert.Equal(t, AIProviderGroq, s.LLM.Provider)
	assert.Equal(t, "llama-3.1-8b-instant", s.LLM.Model)
	assert.Equal(t, 2, s.LLM.MaxRetries)
	assert.Equal(t, FailureDrop, s.Pipeline.FailurePolicy)
	assert.Equal(t, time.Second, s.Pipeline.Interval())
}

func TestAppSettings_MissingSecrets(t *testing.T) {
	s := DefaultAppSettings()
	assert.Equal(t, []string{"SERPAPI_API_KEY", "GROQ_API_KEY"}, s.MissingSecrets())

	s.Search.APIKey = "serp"
	s.LLM.APIKey = "groq"
	assert.Empty(t, s.MissingSecrets())

	s.Search.Provider = SearchProviderDuckDuckGo
	s.LLM.Provider = AIProviderOllama
	s.Search.APIKey, s.LLM.APIKey = "", ""
	assert.Empty(t, s.MissingSecrets())
}

func TestPipelineSettings_Interval(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, PipelineSettings{RequestsPerSecond: 2}.Interval())
	assert.Equal(t, time.Duration(0), PipelineSettings{}.Interval())
}

func TestFailurePolicy_IsValid(t *testing.T) {
	assert.True(t, FailureDrop.IsValid())
	assert.True(t, FailureNA.IsValid())
	assert.False(t, FailurePolicy("retry").IsValid())
}
