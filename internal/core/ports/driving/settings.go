package driving

import "github.com/custodia-labs/infosynth/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then config file, then environment secrets.
	Get() (*domain.AppSettings, error)

	// Set persists one configuration key.
	Set(key, value string) error

	// Validate fails with domain.ErrConfiguration when a required secret is missing.
	Validate(settings *domain.AppSettings) error
}
