package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

func TestRunCmd_Flags(t *testing.T) {
	for _, name := range []string{"file", "sheet", "tab", "column", "template", "out", "write-back", "failure-policy", "yes", "plain"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, domain.DefaultResultsFile, runCmd.Flags().Lookup("out").DefValue)
}

func TestRunCmd_ValidatesFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"run", "-c", "company"}, "one of --file or --sheet"},
		{"both inputs", []string{"run", "-f", "a.csv", "-s", "id", "-t", "T", "-c", "company"}, "cannot be used together"},
		{"sheet without tab", []string{"run", "-s", "id", "-c", "company"}, "--tab is required"},
		{"no column", []string{"run", "-f", "a.csv"}, "--column is required"},
		{"write-back without sheet", []string{"run", "-f", "a.csv", "-c", "company", "--write-back"}, "--write-back requires --sheet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, cleanup := setupTestServices()
			defer cleanup()

			_, err := runCLI(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, env.needs)
		})
	}
}

func TestRunCmd_CSV(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCLI("run", "-f", "companies.csv", "-c", "company", "-q", "headquarters of {company}", "--yes")
	require.NoError(t, err)

	assert.Equal(t, "companies.csv", env.sources.file)
	assert.Equal(t, []Needs{{Pipeline: true}}, env.needs)
	assert.Equal(t, []string{"headquarters of Acme", "headquarters of Globex"}, env.search.queries)

	assert.Contains(t, out, "Data preview (3 of 3 rows)")
	assert.Contains(t, out, "1. headquarters of Acme")
	assert.Contains(t, out, "2. (blank, recorded as NA)")
	assert.Contains(t, out, "3 rows, 2 queries")
	assert.Contains(t, out, "[1/3] Acme")
	assert.Contains(t, out, "[2/3] (blank)")
	assert.Contains(t, out, "Acme -> answer for headquarters of Acme")
	assert.Contains(t, out, "Results saved to search_results.csv")

	require.NotNil(t, env.export.saved)
	assert.Equal(t, domain.DefaultResultsFile, env.export.savedPath)
	assert.Equal(t,
		[]string{"answer for headquarters of Acme", domain.ResultNA, "answer for headquarters of Globex"},
		env.export.saved.Results.Results())
}

func TestRunCmd_DefaultTemplate(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCLI("run", "-f", "companies.csv", "-c", "company", "-y", "-o", "out.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Tell me about Acme", "Tell me about Globex"}, env.search.queries)
	assert.Equal(t, "out.xlsx", env.export.savedPath)
}

func TestRunCmd_UnknownColumn(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCLI("run", "-f", "companies.csv", "-c", "name", "-y")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrColumnNotFound)
	assert.Contains(t, err.Error(), "company, city")
	assert.Empty(t, env.search.queries)
}

func TestRunCmd_SourceError(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.sources.err = fmt.Errorf("%w: no such file", domain.ErrSourceAccess)

	_, err := runCLI("run", "-f", "missing.csv", "-c", "company", "-y")
	assert.ErrorIs(t, err, domain.ErrSourceAccess)
}

func TestRunCmd_MissingKeys(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.settings.validateErr = fmt.Errorf("%w: SERPAPI_API_KEY is not set", domain.ErrConfiguration)

	_, err := runCLI("run", "-f", "companies.csv", "-c", "company", "-y")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, env.needs)
}

func TestRunCmd_DeclinedConfirmation(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("n\n"))
	out, err := runCLI("run", "-f", "companies.csv", "-c", "company")
	require.NoError(t, err)

	assert.Contains(t, out, "Proceed? [y/N]")
	assert.Contains(t, out, "Aborted.")
	assert.Empty(t, env.search.queries)
	assert.Nil(t, env.export.saved)
}

func TestRunCmd_AcceptedConfirmation(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("yes\n"))
	_, err := runCLI("run", "-f", "companies.csv", "-c", "company")
	require.NoError(t, err)
	assert.Len(t, env.search.queries, 2)
}

func TestRunCmd_FailurePolicy(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.search.fail = map[string]bool{"Tell me about Acme": true}

	out, err := runCLI("run", "-f", "companies.csv", "-c", "company", "-y", "--failure-policy", "na")
	require.NoError(t, err)

	assert.Equal(t, domain.FailureNA, env.usedSettings.Pipeline.FailurePolicy)
	assert.Equal(t, []string{domain.ResultNA, domain.ResultNA, "answer for Tell me about Globex"},
		env.export.saved.Results.Results())
	assert.Contains(t, out, "1 row(s) failed")
}

func TestRunCmd_DropPolicyByDefault(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.search.fail = map[string]bool{"Tell me about Acme": true}

	out, err := runCLI("run", "-f", "companies.csv", "-c", "company", "-y")
	require.NoError(t, err)

	assert.Equal(t, 2, env.export.saved.Results.Len())
	assert.Contains(t, out, "1 dropped")
}

func TestRunCmd_InvalidFailurePolicy(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCLI("run", "-f", "companies.csv", "-c", "company", "-y", "--failure-policy", "skip")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunCmd_WriteBack(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	url := "https://docs.google.com/spreadsheets/d/1AbC-xyz_9/edit#gid=0"
	out, err := runCLI("run", "-s", url, "-t", "Leads", "-c", "company", "-y", "--write-back")
	require.NoError(t, err)

	assert.Equal(t, []Needs{{Sheets: true, Pipeline: true}}, env.needs)
	assert.Equal(t, "1AbC-xyz_9", env.sources.sheetID)
	assert.Equal(t, "Leads", env.sources.tab)
	assert.Equal(t, domain.FailureNA, env.usedSettings.Pipeline.FailurePolicy)
	assert.Equal(t, "1AbC-xyz_9", env.export.writeBackID)
	assert.Equal(t, "Leads", env.export.writeBackTab)
	assert.Empty(t, env.export.savedPath)
	assert.Contains(t, out, `Results written to the "AI Results" column of tab "Leads"`)
}

func TestRunCmd_WriteBackMismatchFallsBackToFile(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.export.writeBackErr = fmt.Errorf("%w: %w", domain.ErrWriteBack, domain.ErrRowCountMismatch)

	out, err := runCLI("run", "-s", "sheet-id", "-t", "Leads", "-c", "company", "-y", "--write-back")
	require.NoError(t, err)

	assert.Contains(t, out, "Cannot write back")
	assert.Equal(t, domain.DefaultResultsFile, env.export.savedPath)
}

func TestRunCmd_WriteBackError(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.export.writeBackErr = fmt.Errorf("%w: %w", domain.ErrWriteBack, domain.ErrPermissionDenied)

	_, err := runCLI("run", "-s", "sheet-id", "-t", "Leads", "-c", "company", "-y", "--write-back")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Empty(t, env.export.savedPath)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetOut(new(strings.Builder))
			assert.Equal(t, tt.want, confirm(cmd, "Proceed?"))
		})
	}
}
