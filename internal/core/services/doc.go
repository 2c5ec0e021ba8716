// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The row pipeline is strictly sequential: one search and one extraction
// call in flight at a time, rows visited in input order.
package services
