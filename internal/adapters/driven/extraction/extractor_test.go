package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
)

type fakeLLM struct {
	prompts []string
	opts    []driven.GenerateOptions
	answer  string
	err     error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string          { return "fake-model" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

type fakePrompts struct {
	prompt string
	err    error
}

func (f fakePrompts) Load(string) (string, error) { return f.prompt, f.err }
func (f fakePrompts) Reload()                     {}

var acmeResults = []domain.SearchEntry{
	{"title": "Acme Corp - Contact", "link": "https://acme.example/contact", "snippet": "Write to info@acme.example"},
}

func TestExtract_RendersPromptAndReturnsRawAnswer(t *testing.T) {
	llm := &fakeLLM{answer: "  info@acme.example\n"}
	e := New(llm, nil)

	got, err := e.Extract(context.Background(), acmeResults, "Contact email for Acme")

	require.NoError(t, err)
	assert.Equal(t, "  info@acme.example\n", got, "answer is not trimmed or validated")

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "search results for: Contact email for Acme")
	assert.Contains(t, prompt, `"snippet": "Write to info@acme.example"`)
	assert.Contains(t, prompt, `respond with "Not found"`)
	assert.Contains(t, prompt, "separate them with semicolons")
	assert.NotContains(t, prompt, PlaceholderQuery)
	assert.NotContains(t, prompt, PlaceholderResults)
	assert.Zero(t, llm.opts[0].Temperature)
}

func TestExtract_EmptyResultsStillAsksModel(t *testing.T) {
	llm := &fakeLLM{answer: "Not found"}
	e := New(llm, nil)

	got, err := e.Extract(context.Background(), nil, "Founder of Zzqxv")

	require.NoError(t, err)
	assert.Equal(t, "Not found", got)
	assert.Contains(t, llm.prompts[0], "Search Results:\n[]")
}

func TestExtract_WrapsProviderErrors(t *testing.T) {
	boom := errors.New("401 invalid key")
	e := New(&fakeLLM{err: boom}, nil)

	_, err := e.Extract(context.Background(), acmeResults, "q")

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fake-model")
}

func TestExtract_UsesStoredPrompt(t *testing.T) {
	llm := &fakeLLM{answer: "x"}
	e := New(llm, fakePrompts{prompt: "Q={query} R={search_results}"})

	_, err := e.Extract(context.Background(), []domain.SearchEntry{}, "who")

	require.NoError(t, err)
	assert.Equal(t, "Q=who R=[]", llm.prompts[0])
}

func TestExtract_FallsBackWhenPromptMissing(t *testing.T) {
	llm := &fakeLLM{answer: "x"}
	e := New(llm, fakePrompts{err: errors.New("not found")})

	_, err := e.Extract(context.Background(), nil, "who")

	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0], "Extract ONLY the specific information requested")
}
