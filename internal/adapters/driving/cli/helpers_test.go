package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/core/services"
)

var errBoom = errors.New("boom")

type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	set         map[string]string
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Validate(*domain.AppSettings) error {
	return m.validateErr
}

type mockSources struct {
	table     *domain.InputTable
	tabs      []string
	err       error
	file      string
	sheet     string
	sheetID   string
	tab       string
	listedFor string
}

func (m *mockSources) LoadFile(path, sheet string) (*domain.InputTable, error) {
	m.file, m.sheet = path, sheet
	return m.table, m.err
}

func (m *mockSources) ListTabs(_ context.Context, spreadsheetID string) ([]string, error) {
	m.listedFor = spreadsheetID
	return m.tabs, m.err
}

func (m *mockSources) LoadTab(_ context.Context, spreadsheetID, tab string) (*domain.InputTable, error) {
	m.sheetID, m.tab = spreadsheetID, tab
	return m.table, m.err
}

type mockExport struct {
	savedPath    string
	saved        *domain.RunResult
	writeBackID  string
	writeBackTab string
	writeBackErr error
}

func (m *mockExport) SaveFile(path string, result *domain.RunResult) error {
	m.savedPath, m.saved = path, result
	return nil
}

func (m *mockExport) WriteBack(_ context.Context, spreadsheetID, tab string, result *domain.RunResult) error {
	m.writeBackID, m.writeBackTab = spreadsheetID, tab
	if m.writeBackErr != nil {
		return m.writeBackErr
	}
	m.saved = result
	return nil
}

// stubSearch returns a single entry per query.
type stubSearch struct {
	queries []string
	fail    map[string]bool
}

func (s *stubSearch) Search(_ context.Context, query string) ([]domain.SearchEntry, error) {
	s.queries = append(s.queries, query)
	if s.fail[query] {
		return nil, errBoom
	}
	return []domain.SearchEntry{{"title": query, "position": 1}}, nil
}

func (s *stubSearch) Name() string { return "stub" }

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, results []domain.SearchEntry, query string) (string, error) {
	return "answer for " + query, nil
}

type mockChecker struct {
	llmErr    error
	searchErr error
}

func (m *mockChecker) ValidateLLM(context.Context, *domain.LLMSettings) error {
	return m.llmErr
}

func (m *mockChecker) ValidateSearch(context.Context, *domain.SearchSettings) error {
	return m.searchErr
}

// testEnv is the wiring a test runs commands against.
type testEnv struct {
	settings *mockSettings
	sources  *mockSources
	export   *mockExport
	search   *stubSearch
	checker  *mockChecker

	needs        []Needs
	usedSettings *domain.AppSettings
}

// setupTestServices installs mocks around a real row pipeline and returns
// a cleanup that restores the package state.
func setupTestServices() (*testEnv, func()) {
	env := &testEnv{
		settings: &mockSettings{settings: testSettings()},
		sources:  &mockSources{table: companies()},
		export:   &mockExport{},
		search:   &stubSearch{},
		checker:  &mockChecker{},
	}

	SetWiring(Wiring{
		Settings: func(string) (driving.SettingsService, error) {
			return env.settings, nil
		},
		Runtime: func(_ context.Context, settings *domain.AppSettings, needs Needs) (*Runtime, error) {
			env.needs = append(env.needs, needs)
			env.usedSettings = settings
			pipeline := services.NewRowPipeline(env.search, stubExtractor{}, nil, settings.Pipeline)
			return &Runtime{
				Sources:   env.sources,
				Export:    env.export,
				Enricher:  pipeline,
				Previewer: pipeline,
			}, nil
		},
		Checker: env.checker,
	})

	return env, func() {
		SetWiring(Wiring{})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI runs the root command with args and returns its output.
func runCLI(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func testSettings() domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Search.APIKey = "serp-key-1234567890"
	s.LLM.APIKey = "gsk_abcdefghijklmnop"
	s.Pipeline.RequestsPerSecond = 0
	return s
}

func companies() *domain.InputTable {
	t, err := domain.NewInputTable([]string{"company", "city"}, [][]domain.Cell{
		{domain.TextCell("Acme"), domain.TextCell("Pune")},
		{domain.NullCell(), domain.TextCell("Delhi")},
		{domain.TextCell("Globex"), domain.TextCell("Mumbai")},
	})
	if err != nil {
		panic(err)
	}
	return t
}
