package domain

import "strings"

// Placeholder returns the token bound to column inside a query template.
func Placeholder(column string) string {
	return "{" + column + "}"
}

// Fill replaces every occurrence of column's placeholder in template with value.
// A template without the placeholder is returned unchanged.
func Fill(template, column, value string) string {
	return strings.ReplaceAll(template, Placeholder(column), value)
}

// HasPlaceholder reports whether template references column.
func HasPlaceholder(template, column string) bool {
	return strings.Contains(template, Placeholder(column))
}

// DefaultTemplate is the template offered when the user supplies none.
func DefaultTemplate(column string) string {
	return "Tell me about " + Placeholder(column)
}
