// Package search holds web search provider adapters.
//
// Each subpackage implements driven.SearchProvider and returns result
// entries as loosely typed maps, in provider rank order.
package search
