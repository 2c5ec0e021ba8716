package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/infosynth/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure search, LLM, Google Sheets and pacing options.

API keys are never stored in the config file; they are read from the
environment or a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Persist one configuration value. Run 'infosynth settings keys' for the list.

Examples:
  infosynth settings set llm.provider anthropic
  infosynth settings set pipeline.requests_per_second 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configurable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.KnownKeys() {
			cmd.Println(k)
		}
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Provider: %s\n", settings.Search.Provider)
	cmd.Printf("  Country: %s\n", settings.Search.Country)
	cmd.Printf("  Results per query: %d\n", settings.Search.NumResults)
	if settings.Search.Provider.RequiresAPIKey() {
		printKey(cmd, services.EnvSerpAPIKey, settings.Search.APIKey)
	}
	printStatus(cmd, settings.Search.IsConfigured())

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	cmd.Printf("  Max retries: %d\n", settings.LLM.MaxRetries)
	if settings.LLM.Provider.RequiresAPIKey() {
		printKey(cmd, settings.LLM.Provider.APIKeyEnv(), settings.LLM.APIKey)
	}
	printStatus(cmd, settings.LLM.IsConfigured())

	cmd.Println("[Google Sheets]")
	cmd.Printf("  Credentials file: %s\n", settings.Sheets.CredentialsFile)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Requests per second: %g\n", settings.Pipeline.RequestsPerSecond)
	cmd.Printf("  Burst: %d\n", settings.Pipeline.Burst)
	cmd.Printf("  Failure policy: %s\n", settings.Pipeline.FailurePolicy)
	cmd.Println()

	if missing := settings.MissingSecrets(); len(missing) > 0 {
		cmd.Printf("Missing keys: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := svc.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func printKey(cmd *cobra.Command, env, key string) {
	if key != "" {
		cmd.Printf("  API Key (%s): %s\n", env, maskAPIKey(key))
	} else {
		cmd.Printf("  API Key (%s): (not set)\n", env)
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
