package domain

// DefaultSearchResults is the number of organic results requested per query.
const DefaultSearchResults = 5

// SearchEntry is one organic result exactly as the provider returned it.
// Common keys are "title", "link" and "snippet"; others are passed through untouched.
type SearchEntry map[string]any

// Title returns the entry title, or "" when absent.
func (e SearchEntry) Title() string { return e.str("title") }

// Link returns the entry URL, or "" when absent.
func (e SearchEntry) Link() string { return e.str("link") }

// Snippet returns the entry snippet, or "" when absent.
func (e SearchEntry) Snippet() string { return e.str("snippet") }

func (e SearchEntry) str(key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}
