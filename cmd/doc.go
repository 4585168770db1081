// Package cmd implements the command-line interface for rowan. It provides
// a hierarchical command structure for working with persisted ordered maps
// through snapshot files.
//
// The package is organized into several subpackages:
//
//   - om: Commands for ordered-map operations (set, get, range, perf, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See rowan -help for a list of all commands.
package cmd
