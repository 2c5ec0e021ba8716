package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify API keys and provider connectivity",
	Long: `Checks that the required API keys are set, then makes one lightweight
call to the search provider and the language model.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	failed := false
	if err := settingsService.Validate(settings); err != nil {
		cmd.Printf("  ✗ keys: %v\n", err)
		failed = true
	} else {
		cmd.Println("  ✓ keys")
	}

	if wiring.Checker == nil {
		return errors.New("connectivity checker not configured")
	}

	ctx := cmd.Context()
	if settings.Search.IsConfigured() {
		if err := wiring.Checker.ValidateSearch(ctx, &settings.Search); err != nil {
			cmd.Printf("  ✗ search (%s): %v\n", settings.Search.Provider, err)
			failed = true
		} else {
			cmd.Printf("  ✓ search (%s)\n", settings.Search.Provider)
		}
	}

	if settings.LLM.IsConfigured() {
		if err := wiring.Checker.ValidateLLM(ctx, &settings.LLM); err != nil {
			cmd.Printf("  ✗ llm (%s %s): %v\n", settings.LLM.Provider, settings.LLM.Model, err)
			failed = true
		} else {
			cmd.Printf("  ✓ llm (%s %s)\n", settings.LLM.Provider, settings.LLM.Model)
		}
	}

	if failed {
		return errors.New("one or more checks failed")
	}
	return nil
}
