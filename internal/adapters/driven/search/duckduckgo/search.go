// Package duckduckgo provides a keyless web search adapter that scrapes
// DuckDuckGo's HTML endpoint.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
)

// Ensure Searcher implements the interface.
var _ driven.SearchProvider = (*Searcher)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://html.duckduckgo.com/html/"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; infosynth/1.0)"
)

// Config holds configuration for the DuckDuckGo searcher.
type Config struct {
	// BaseURL is the HTML search endpoint.
	BaseURL string

	// Region is the kl parameter, e.g. "in-en". Empty means no region.
	Region string

	// NumResults caps the results returned (default: 5).
	NumResults int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Searcher scrapes result blocks from DuckDuckGo's HTML results page.
type Searcher struct {
	client     *http.Client
	baseURL    string
	region     string
	numResults int
}

// New creates a DuckDuckGo searcher.
func New(cfg Config) *Searcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
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
		region:     cfg.Region,
		numResults: cfg.NumResults,
	}
}

// RegionFor maps a two-letter country code to a DuckDuckGo region.
func RegionFor(country string) string {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return ""
	}
	return country + "-en"
}

// Name returns the provider name.
func (s *Searcher) Name() string {
	return "duckduckgo"
}

// Search runs one query and returns up to NumResults entries with
// title, link and snippet keys.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.SearchEntry, error) {
	form := url.Values{"q": {query}}
	if s.region != "" {
		form.Set("kl", s.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrSearch, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrSearch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusAccepted:
		// DuckDuckGo answers 202 with a challenge page when throttling.
		return nil, fmt.Errorf("%w: %w: duckduckgo (status %d)", domain.ErrSearch, domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: duckduckgo (status %d)", domain.ErrSearch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse results: %w", domain.ErrSearch, err)
	}

	return s.parse(doc), nil
}

func (s *Searcher) parse(doc *goquery.Document) []domain.SearchEntry {
	results := make([]domain.SearchEntry, 0, s.numResults)

	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}
		anchor := sel.Find("a.result__a").First()
		title := collapse(anchor.Text())
		href, _ := anchor.Attr("href")
		if title == "" || href == "" {
			return true
		}

		results = append(results, domain.SearchEntry{
			"position": len(results) + 1,
			"title":    title,
			"link":     resolveLink(href),
			"snippet":  collapse(sel.Find(".result__snippet").Text()),
		})
		return len(results) < s.numResults
	})

	return results
}

// resolveLink unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
