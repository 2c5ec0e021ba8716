package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeySearchProvider   = "search.provider"
	KeySearchCountry    = "search.country"
	KeySearchNumResults = "search.num_results"
	KeyLLMProvider      = "llm.provider"
	KeyLLMModel         = "llm.model"
	KeyLLMBaseURL       = "llm.base_url"
	KeyLLMMaxRetries    = "llm.max_retries"
	KeyPipelineRate     = "pipeline.requests_per_second"
	KeyPipelineBurst    = "pipeline.burst"
	KeyPipelinePolicy   = "pipeline.failure_policy"
	KeySheetsCreds      = "sheets.credentials_file"
)

// Environment secrets.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvSerpAPIKey       = "SERPAPI_API_KEY"
	EnvGoogleCredential = "GOOGLE_APPLICATION_CREDENTIALS"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

var knownKeys = map[string]keyKind{
	KeySearchProvider:   kindString,
	KeySearchCountry:    kindString,
	KeySearchNumResults: kindInt,
	KeyLLMProvider:      kindString,
	KeyLLMModel:         kindString,
	KeyLLMBaseURL:       kindString,
	KeyLLMMaxRetries:    kindInt,
	KeyPipelineRate:     kindFloat,
	KeyPipelineBurst:    kindInt,
	KeyPipelinePolicy:   kindString,
	KeySheetsCreds:      kindString,
}

// KnownKeys returns every settable key, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	secrets     driven.SecretSource
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, secrets driven.SecretSource) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		secrets:     secrets,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	llmProvider := domain.AIProvider(s.getString(KeyLLMProvider, defaults.LLM.Provider.String()))
	llmModel := s.configStore.GetString(KeyLLMModel)
	if llmModel == "" && llmProvider == defaults.LLM.Provider {
		llmModel = defaults.LLM.Model
	}

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			Provider:   domain.SearchProvider(s.getString(KeySearchProvider, defaults.Search.Provider.String())),
			APIKey:     s.secret(EnvSerpAPIKey),
			Country:    s.getString(KeySearchCountry, defaults.Search.Country),
			NumResults: s.getInt(KeySearchNumResults, defaults.Search.NumResults),
		},
		LLM: domain.LLMSettings{
			Provider:   llmProvider,
			Model:      llmModel,
			BaseURL:    s.configStore.GetString(KeyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.secret(llmProvider.APIKeyEnv()),
			MaxRetries: s.getInt(KeyLLMMaxRetries, defaults.LLM.MaxRetries),
		},
		Sheets: domain.SheetsSettings{
			CredentialsFile: s.getString(KeySheetsCreds, defaults.Sheets.CredentialsFile),
		},
		Pipeline: domain.PipelineSettings{
			RequestsPerSecond: s.getFloat(KeyPipelineRate, defaults.Pipeline.RequestsPerSecond),
			Burst:             s.getInt(KeyPipelineBurst, defaults.Pipeline.Burst),
			FailurePolicy:     domain.FailurePolicy(s.getString(KeyPipelinePolicy, defaults.Pipeline.FailurePolicy.String())),
		},
	}

	if path := s.secret(EnvGoogleCredential); path != "" {
		settings.Sheets.CredentialsFile = path
	}

	return settings, nil
}

// Set parses value according to key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	default:
		parsed = value
	}

	if err := validateValue(key, parsed); err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate fails with domain.ErrConfiguration for unusable settings or missing secrets.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	var problems []string

	if !settings.Search.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown search provider %q", settings.Search.Provider))
	}
	if !settings.LLM.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", settings.LLM.Provider))
	}
	if !settings.Pipeline.FailurePolicy.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown failure policy %q", settings.Pipeline.FailurePolicy))
	}
	if settings.Pipeline.RequestsPerSecond <= 0 {
		problems = append(problems, "pipeline.requests_per_second must be positive")
	}
	if settings.Search.NumResults <= 0 {
		problems = append(problems, "search.num_results must be positive")
	}
	for _, name := range settings.MissingSecrets() {
		problems = append(problems, "missing "+name)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func validateValue(key string, v any) error {
	switch key {
	case KeySearchProvider:
		if !domain.SearchProvider(v.(string)).IsValid() {
			return fmt.Errorf("%w: unknown search provider %q", domain.ErrInvalidInput, v)
		}
	case KeyLLMProvider:
		if !domain.AIProvider(v.(string)).IsValid() {
			return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, v)
		}
	case KeyPipelinePolicy:
		if !domain.FailurePolicy(v.(string)).IsValid() {
			return fmt.Errorf("%w: failure policy must be drop or na", domain.ErrInvalidInput)
		}
	case KeyPipelineRate:
		if v.(float64) <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case KeySearchNumResults, KeyPipelineBurst:
		if v.(int) <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case KeyLLMMaxRetries:
		if v.(int) < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// getString returns a string config value, falling back to defaultVal when unset.
func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) secret(name string) string {
	if s.secrets == nil || name == "" {
		return ""
	}
	v, _ := s.secrets.Lookup(name)
	return v
}
