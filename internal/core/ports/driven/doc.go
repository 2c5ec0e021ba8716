// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SearchProvider: Runs a web search and returns organic results (SerpAPI, DuckDuckGo)
//   - Extractor: Turns search results into a short answer for a query
//   - LLMService: Language model completion used by the LLM-backed Extractor
//   - RateLimiter: Paces outbound search calls
//   - SheetGateway: Reads and appends to remote spreadsheet tabs
//   - TableReader / ResultsWriter: Local tabular files (CSV, XLSX)
//   - ConfigStore: Application configuration
//   - SecretSource: Environment-provided API keys
//
// # Optional Interfaces
//
//   - PromptStore: User-editable prompt overrides. Without it, embedded defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
