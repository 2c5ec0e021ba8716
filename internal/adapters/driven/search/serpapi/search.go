// Package serpapi provides a web search adapter backed by SerpAPI's Google engine.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure Searcher implements the interface.
var _ driven.SearchProvider = (*Searcher)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://serpapi.com/search.json"
	DefaultCountry = "in"
	DefaultTimeout = 30 * time.Second
)

// Backoff receives the provider's retry hint when it rejects a request
// for exceeding its rate limit.
type Backoff interface {
	RecordRateLimitError(retryAfter time.Duration)
}

// Config holds configuration for the SerpAPI searcher.
type Config struct {
	// APIKey is the SerpAPI key (required).
	APIKey string

	// BaseURL is the search endpoint (default: https://serpapi.com/search.json).
	BaseURL string

	// Country is the gl parameter (default: in).
	Country string

	// NumResults is the num parameter (default: 5).
	NumResults int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Backoff is notified on 429 responses. Optional.
	Backoff Backoff
}

// Searcher queries SerpAPI and returns its organic results.
type Searcher struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	country    string
	numResults int
	backoff    Backoff
}

type searchResponse struct {
	OrganicResults []domain.SearchEntry `json:"organic_results"`
	Error          string               `json:"error,omitempty"`
}

// New creates a SerpAPI searcher.
func New(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: serpapi: API key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = domain.DefaultSearchResults
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Searcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		country:    cfg.Country,
		numResults: cfg.NumResults,
		backoff:    cfg.Backoff,
	}, nil
}

// Name returns the provider name.
func (s *Searcher) Name() string {
	return "serpapi"
}

// Search runs one Google search and returns up to NumResults organic results.
// A response without organic results yields an empty slice, not an error.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.SearchEntry, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("gl", s.country)
	params.Set("num", strconv.Itoa(s.numResults))
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrSearch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrSearch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrSearch, err)
	}

	var parsed searchResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		return nil, s.statusError(resp, parsed.Error, body)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrSearch, decodeErr)
	}
	// SerpAPI reports "no results" as an error string on a 200.
	if parsed.Error != "" && len(parsed.OrganicResults) == 0 {
		logger.Debug("serpapi: %s", parsed.Error)
	}

	results := parsed.OrganicResults
	if results == nil {
		results = []domain.SearchEntry{}
	}
	if len(results) > s.numResults {
		results = results[:s.numResults]
	}
	return results, nil
}

func (s *Searcher) statusError(resp *http.Response, message string, body []byte) error {
	if message == "" {
		message = string(body)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w: serpapi: %s", domain.ErrSearch, domain.ErrPermissionDenied, message)
	case http.StatusTooManyRequests:
		if s.backoff != nil {
			s.backoff.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
		}
		return fmt.Errorf("%w: %w: serpapi: %s", domain.ErrSearch, domain.ErrRateLimited, message)
	default:
		return fmt.Errorf("%w: serpapi (status %d): %s", domain.ErrSearch, resp.StatusCode, message)
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Ping checks the key against the account endpoint without spending a search.
func (s *Searcher) Ping(ctx context.Context) error {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("serpapi: parse base url: %w", err)
	}
	u.Path = "/account.json"
	u.RawQuery = url.Values{"api_key": {s.apiKey}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("serpapi: failed to create ping request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("serpapi: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return s.statusError(resp, "", body)
	}
	return nil
}
