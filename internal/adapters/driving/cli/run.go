package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/infosynth/internal/adapters/driving/tui"
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/logger"
)

var (
	runInput         inputFlags
	runOut           string
	runWriteBack     bool
	runFailurePolicy string
	runYes           bool
	runPlain         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich every row of a table",
	Long: `Builds one query per row by replacing {column} in the template with the
row's value, searches the web, and extracts a short answer with the LLM.

Rows with a blank subject are recorded as NA without any calls. Rows whose
search fails are dropped by default; use --failure-policy na to keep them.

Press Ctrl+C to stop; rows finished so far are still saved.`,
	Example: `  infosynth run -f companies.csv -c company -q "headquarters of {company}"
  infosynth run -s 1AbC...xyz -t Leads -c company --write-back`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	runInput.register(runCmd)
	runCmd.Flags().StringVarP(&runOut, "out", "o", domain.DefaultResultsFile, "output file (.csv or .xlsx)")
	runCmd.Flags().BoolVar(&runWriteBack, "write-back", false, `append an "AI Results" column to the sheet tab`)
	runCmd.Flags().StringVar(&runFailurePolicy, "failure-policy", "",
		"rows whose search fails: drop or na (default from settings; na with --write-back)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the confirmation prompt")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "print progress lines instead of the progress bar")
	rootCmd.AddCommand(runCmd)
}

//nolint:gocognit // Linear command flow
func runEnrich(cmd *cobra.Command, _ []string) error {
	if err := runInput.validate(); err != nil {
		return err
	}
	if runWriteBack && runInput.sheet == "" {
		return errors.New("--write-back requires --sheet")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applyFailurePolicy(cmd, settings); err != nil {
		return err
	}
	if err := settingsService.Validate(settings); err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := buildRuntime(ctx, settings, Needs{Sheets: runInput.sheet != "", Pipeline: true})
	if err != nil {
		return err
	}
	defer rt.close()

	t, err := runInput.loadTable(ctx, rt.Sources)
	if err != nil {
		return err
	}
	req, err := runInput.request(t)
	if err != nil {
		return err
	}

	printTableHead(cmd, t, previewRows)
	queries, err := rt.Previewer.Preview(req, previewRows)
	if err != nil {
		return err
	}
	printQueries(cmd, queries)

	est, err := rt.Enricher.Estimate(req)
	if err != nil {
		return err
	}
	cmd.Printf("%d rows, %d queries (%s / %s), estimated time %s\n\n",
		est.Rows, est.Queries, settings.Search.Provider, settings.LLM.Provider, formatDuration(est.Duration))

	if !runYes && !confirm(cmd, "Proceed?") {
		cmd.Println("Aborted.")
		return nil
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := execute(runCtx, cmd, rt.Enricher, req, est.Rows)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printSummary(cmd, result)
	printResults(cmd, result, previewRows)

	return deliver(ctx, cmd, rt.Export, result)
}

// applyFailurePolicy overrides the configured policy from the flag.
// Write-back needs one result per row, so it defaults to na.
func applyFailurePolicy(cmd *cobra.Command, settings *domain.AppSettings) error {
	if cmd.Flags().Changed("failure-policy") {
		policy := domain.FailurePolicy(strings.ToLower(runFailurePolicy))
		if !policy.IsValid() {
			return fmt.Errorf("%w: failure policy must be %s or %s",
				domain.ErrInvalidInput, domain.FailureDrop, domain.FailureNA)
		}
		settings.Pipeline.FailurePolicy = policy
		return nil
	}
	if runWriteBack {
		logger.Debug("Write-back requested, using failure policy %s", domain.FailureNA)
		settings.Pipeline.FailurePolicy = domain.FailureNA
	}
	return nil
}

func execute(
	ctx context.Context, cmd *cobra.Command, enricher driving.Enricher, req driving.RunRequest, rows int,
) (*domain.RunResult, error) {
	if !runPlain && isTerminal(cmd.OutOrStdout()) && isTerminal(cmd.InOrStdin()) {
		return tui.RunWithProgress(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), rows,
			func(ctx context.Context, onProgress driving.ProgressFunc) (*domain.RunResult, error) {
				return enricher.Run(ctx, req, onProgress)
			})
	}

	return enricher.Run(ctx, req, func(p driving.Progress) {
		value := p.Value
		if value == "" {
			value = "(blank)"
		}
		if p.Err != nil {
			cmd.Printf("[%d/%d] %s: %v\n", p.Done, p.Total, value, p.Err)
			return
		}
		cmd.Printf("[%d/%d] %s\n", p.Done, p.Total, value)
	})
}

func deliver(ctx context.Context, cmd *cobra.Command, export driving.ExportService, result *domain.RunResult) error {
	if runWriteBack {
		err := export.WriteBack(ctx, runInput.spreadsheetID(), runInput.tab, result)
		if err == nil {
			cmd.Printf("Results written to the %q column of tab %q\n", domain.WriteBackHeader, runInput.tab)
			return nil
		}
		if !errors.Is(err, domain.ErrRowCountMismatch) {
			return err
		}
		// Keep the work rather than lose it.
		cmd.Printf("Cannot write back: %v\nSaving to %s instead.\n", err, runOut)
	}

	if err := export.SaveFile(runOut, result); err != nil {
		return err
	}
	cmd.Printf("Results saved to %s\n", runOut)
	return nil
}

func printSummary(cmd *cobra.Command, result *domain.RunResult) {
	cmd.Println()
	if result.Cancelled {
		cmd.Printf("Stopped after %d of %d rows.\n", result.Processed, result.Total)
	}
	cmd.Printf("Processed %d rows in %s: %d results, %d searches",
		result.Processed, formatDuration(result.Duration()), result.Results.Len(), result.Searches)
	if dropped := result.Dropped(); dropped > 0 {
		cmd.Printf(", %d dropped", dropped)
	}
	cmd.Println()

	if len(result.Warnings) > 0 {
		cmd.Printf("%d row(s) failed:\n", len(result.Warnings))
		for _, w := range result.Warnings {
			cmd.Printf("  %v\n", w)
		}
	}
	cmd.Println()
}

func printResults(cmd *cobra.Command, result *domain.RunResult, n int) {
	records := result.Results.Records()
	if len(records) == 0 {
		cmd.Println("No results.")
		return
	}
	if len(records) > n {
		records = records[:n]
	}
	cmd.Println("Results preview:")
	for _, r := range records {
		cmd.Printf("  %s -> %s\n", truncate(r.InputValue.String(), maxCellWidth), r.Result)
	}
	cmd.Println()
}

// confirm asks a yes/no question on the command's input. EOF counts as no.
func confirm(cmd *cobra.Command, question string) bool {
	cmd.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		cmd.Println()
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
