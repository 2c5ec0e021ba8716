// Package cli implements the infosynth command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=v1.2.3".
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Needs tells the runtime factory which adapters a command uses, so a CSV
// run never asks for Google credentials.
type Needs struct {
	// Sheets requires the Google Sheets gateway.
	Sheets bool
	// Pipeline requires the search provider and language model.
	Pipeline bool
}

// Runtime holds the services a command works with.
type Runtime struct {
	Sources   driving.SourceService
	Export    driving.ExportService
	Enricher  driving.Enricher
	Previewer driving.Previewer

	// Close releases provider clients. May be nil.
	Close func() error
}

func (r *Runtime) close() {
	if r == nil || r.Close == nil {
		return
	}
	if err := r.Close(); err != nil {
		logger.Warn("Failed to close providers: %v", err)
	}
}

// Checker tests provider connectivity for the check command.
type Checker interface {
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
	ValidateSearch(ctx context.Context, settings *domain.SearchSettings) error
}

// Wiring builds services on demand. Set by main before Execute.
type Wiring struct {
	// Settings builds the settings service for a configuration directory.
	// An empty directory means the default location.
	Settings func(configDir string) (driving.SettingsService, error)

	// Runtime builds the services for one command invocation.
	Runtime func(ctx context.Context, settings *domain.AppSettings, needs Needs) (*Runtime, error)

	// Checker tests provider connectivity.
	Checker Checker
}

var (
	wiring          Wiring
	settingsService driving.SettingsService
)

// SetWiring installs the service factories.
func SetWiring(w Wiring) {
	wiring = w
	settingsService = nil
}

var rootCmd = &cobra.Command{
	Use:   "infosynth",
	Short: "Enrich spreadsheet rows with web search and an LLM",
	Long: `InfoSynth reads a CSV, XLSX or Google Sheets tab, builds one web search
query per row from a template, and asks a language model to pull a short
answer out of the search results.

Results are saved as CSV (input_value,result) or written back to the sheet
as an "AI Results" column.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.infosynth)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getSettingsService builds the settings service once per process.
func getSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if wiring.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	svc, err := wiring.Settings(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = svc
	return svc, nil
}

// loadSettings returns the effective settings.
func loadSettings() (*domain.AppSettings, error) {
	svc, err := getSettingsService()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func buildRuntime(ctx context.Context, settings *domain.AppSettings, needs Needs) (*Runtime, error) {
	if wiring.Runtime == nil {
		return nil, errors.New("runtime not configured")
	}
	rt, err := wiring.Runtime(ctx, settings, needs)
	if err != nil {
		return nil, err
	}
	return rt, nil
}
