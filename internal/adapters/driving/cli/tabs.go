package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var tabsCmd = &cobra.Command{
	Use:   "tabs [spreadsheet-id-or-url]",
	Short: "List the tabs of a Google Sheet",
	Long: `Lists the tabs of a spreadsheet shared with the service account.
Pass one of them to --tab when running.`,
	Args: cobra.ExactArgs(1),
	RunE: runTabs,
}

func init() {
	rootCmd.AddCommand(tabsCmd)
}

func runTabs(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := buildRuntime(ctx, settings, Needs{Sheets: true})
	if err != nil {
		return err
	}
	defer rt.close()

	tabs, err := rt.Sources.ListTabs(ctx, parseSpreadsheetID(args[0]))
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}
	if len(tabs) == 0 {
		return errors.New("spreadsheet has no tabs")
	}

	cmd.Println("Tabs:")
	for i, tab := range tabs {
		cmd.Printf("  %d. %s\n", i+1, tab)
	}
	return nil
}
