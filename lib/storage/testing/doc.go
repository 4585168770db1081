// Package testing provides a reusable conformance test and benchmark suite
// for storage.Store implementations. Every engine runs the same suite
// through RunStoreTests and RunStoreBenchmarks, which keeps behavior
// consistent across backends without duplicating test logic per engine.
package testing
