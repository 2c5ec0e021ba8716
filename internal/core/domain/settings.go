package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a language model provider used for extraction.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != AIProviderOllama
}

// APIKeyEnv returns the environment variable holding this provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// SearchProvider identifies a web search backend.
type SearchProvider string

// Available search providers.
const (
	// SearchProviderSerpAPI queries Google through SerpAPI.
	SearchProviderSerpAPI SearchProvider = "serpapi"

	// SearchProviderDuckDuckGo scrapes DuckDuckGo's HTML endpoint. No key needed.
	SearchProviderDuckDuckGo SearchProvider = "duckduckgo"
)

// IsValid returns true if the search provider is recognised.
func (p SearchProvider) IsValid() bool {
	return p == SearchProviderSerpAPI || p == SearchProviderDuckDuckGo
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p SearchProvider) RequiresAPIKey() bool {
	return p == SearchProviderSerpAPI
}

// String returns the string representation.
func (p SearchProvider) String() string {
	return string(p)
}

// FailurePolicy decides what happens to a row whose search call fails.
type FailurePolicy string

// Available failure policies.
const (
	// FailureDrop omits the row from the results table.
	FailureDrop FailurePolicy = "drop"

	// FailureNA records "NA" for the row, keeping results aligned with the input.
	FailureNA FailurePolicy = "na"
)

// IsValid returns true if the policy is recognised.
func (f FailurePolicy) IsValid() bool {
	return f == FailureDrop || f == FailureNA
}

// String returns the string representation.
func (f FailurePolicy) String() string {
	return string(f)
}

// SearchSettings holds search provider configuration.
type SearchSettings struct {
	// Provider is the search backend.
	Provider SearchProvider

	// APIKey is the provider key (SerpAPI only).
	APIKey string

	// Country is the fixed region parameter sent with every query.
	Country string

	// NumResults caps the organic results requested per query.
	NumResults int
}

// IsConfigured returns true if the search provider is set up.
func (s SearchSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	return !s.Provider.RequiresAPIKey() || s.APIKey != ""
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and compatible gateways).
	BaseURL string

	// APIKey is the API key (cloud providers).
	APIKey string

	// MaxRetries bounds retries inside the provider adapter. Configured once per process.
	MaxRetries int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SheetsSettings holds spreadsheet access configuration.
type SheetsSettings struct {
	// CredentialsFile is the path to a service account JSON key.
	CredentialsFile string
}

// PipelineSettings holds row pipeline behaviour.
type PipelineSettings struct {
	// RequestsPerSecond paces search calls.
	RequestsPerSecond float64

	// Burst is the limiter bucket size.
	Burst int

	// FailurePolicy applies to rows whose search call fails.
	FailurePolicy FailurePolicy
}

// Interval returns the steady-state gap between calls.
func (p PipelineSettings) Interval() time.Duration {
	if p.RequestsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / p.RequestsPerSecond)
}

// AppSettings holds all application settings.
type AppSettings struct {
	Search   SearchSettings
	LLM      LLMSettings
	Sheets   SheetsSettings
	Pipeline PipelineSettings
}

// DefaultAppSettings returns one search per second through SerpAPI and Groq.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Provider:   SearchProviderSerpAPI,
			Country:    "in",
			NumResults: DefaultSearchResults,
		},
		LLM: LLMSettings{
			Provider:   AIProviderGroq,
			Model:      "llama-3.1-8b-instant",
			MaxRetries: 2,
		},
		Sheets: SheetsSettings{
			CredentialsFile: "credentials.json",
		},
		Pipeline: PipelineSettings{
			RequestsPerSecond: 1,
			Burst:             1,
			FailurePolicy:     FailureDrop,
		},
	}
}

// MissingSecrets lists the environment variables a run needs but lacks.
func (s AppSettings) MissingSecrets() []string {
	var missing []string
	if s.Search.Provider.RequiresAPIKey() && s.Search.APIKey == "" {
		missing = append(missing, "SERPAPI_API_KEY")
	}
	if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		missing = append(missing, s.LLM.Provider.APIKeyEnv())
	}
	return missing
}
