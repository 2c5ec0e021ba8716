package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// mockSearch implements driven.SearchProvider.
type mockSearch struct {
	queries []string
	fail    map[string]error
	results []domain.SearchEntry
}

func (m *mockSearch) Name() string { return "mock" }

func (m *mockSearch) Search(ctx context.Context, query string) ([]domain.SearchEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.queries = append(m.queries, query)
	if err, ok := m.fail[query]; ok {
		return nil, err
	}
	if m.results != nil {
		return m.results, nil
	}
	return []domain.SearchEntry{{"title": "Result for " + query, "snippet": "snippet"}}, nil
}

// mockExtractor implements driven.Extractor. It answers with the query's last word.
type mockExtractor struct {
	calls []string
	fail  map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, results []domain.SearchEntry, query string) (string, error) {
	m.calls = append(m.calls, query)
	if err, ok := m.fail[query]; ok {
		return "", err
	}
	if len(results) == 0 {
		return domain.ResultNotFound, nil
	}
	words := strings.Fields(query)
	return "answer:" + words[len(words)-1], nil
}

// mockLimiter implements driven.RateLimiter.
type mockLimiter struct {
	waits int
	err   error
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	m.waits++
	if m.err != nil {
		return m.err
	}
	return ctx.Err()
}

// mockSheets implements driven.SheetGateway.
type mockSheets struct {
	tabs      []string
	table     *domain.InputTable
	err       error
	appended  []string
	header    string
	appendErr error
}

func (m *mockSheets) ListTabs(_ context.Context, _ string) ([]string, error) {
	return m.tabs, m.err
}

func (m *mockSheets) ReadTab(_ context.Context, _, _ string) (*domain.InputTable, error) {
	return m.table, m.err
}

func (m *mockSheets) AppendColumn(_ context.Context, _, _, header string, values []string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.header = header
	m.appended = values
	return nil
}

// mockReader implements driven.TableReader.
type mockReader struct {
	table *domain.InputTable
	err   error
	path  string
}

func (m *mockReader) ReadFile(path, _ string) (*domain.InputTable, error) {
	m.path = path
	return m.table, m.err
}

// mockWriter implements driven.ResultsWriter.
type mockWriter struct {
	path    string
	written *domain.ResultsTable
	err     error
}

func (m *mockWriter) WriteFile(path string, results *domain.ResultsTable) error {
	m.path = path
	m.written = results
	return m.err
}

// mockConfigStore implements driven.ConfigStore in memory.
type mockConfigStore struct {
	data   map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.data[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "/tmp/config.toml" }

// mockSecrets implements driven.SecretSource.
type mockSecrets map[string]string

func (m mockSecrets) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok && v != ""
}

var errBoom = errors.New("boom")

// mustTable builds a single-column table; "<nil>" becomes a null cell.
func mustTable(column string, values ...string) *domain.InputTable {
	rows := make([][]domain.Cell, len(values))
	for i, v := range values {
		if v == "<nil>" {
			rows[i] = []domain.Cell{domain.NullCell()}
		} else {
			rows[i] = []domain.Cell{domain.TextCell(v)}
		}
	}
	t, err := domain.NewInputTable([]string{column}, rows)
	if err != nil {
		panic(fmt.Sprintf("mustTable: %v", err))
	}
	return t
}
