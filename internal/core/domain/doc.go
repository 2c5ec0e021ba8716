// Package domain defines the core business entities for InfoSynth.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - InputTable: Tabular rows loaded from a file or a spreadsheet tab
//   - ResultRecord / ResultsTable: One extracted answer per processed row
//   - RunResult: The immutable outcome of one enrichment run
//   - SearchEntry: An organic search result as returned by a provider
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
