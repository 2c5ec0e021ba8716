package cli

import (
	"github.com/spf13/cobra"
)

var (
	previewInput inputFlags
	previewLimit int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the input table and the queries a run would send",
	Long: `Loads the input, shows its first rows, and renders the query template for
them. No search or LLM calls are made.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewInput.register(previewCmd)
	previewCmd.Flags().IntVarP(&previewLimit, "limit", "n", previewRows, "number of rows to preview")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if err := previewInput.validate(); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := buildRuntime(ctx, settings, Needs{Sheets: previewInput.sheet != ""})
	if err != nil {
		return err
	}
	defer rt.close()

	t, err := previewInput.loadTable(ctx, rt.Sources)
	if err != nil {
		return err
	}
	req, err := previewInput.request(t)
	if err != nil {
		return err
	}

	printTableHead(cmd, t, previewLimit)
	queries, err := rt.Previewer.Preview(req, previewLimit)
	if err != nil {
		return err
	}
	printQueries(cmd, queries)
	return nil
}
