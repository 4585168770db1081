// Package cedar implements an in-memory byte-addressed store with sharded
// data. It provides a complete implementation of the storage.Store interface
// with a focus on read/write throughput and snapshot persistence.
//
// The package focuses on:
//   - Optimized concurrent access through sharding and lock-free data
//     structures
//   - Binary snapshot persistence (Save/Load) with a versioned file format
//   - Operation counters exported through VictoriaMetrics for monitoring
//
// Key Components:
//
//   - cedarImpl: The central store structure implementing storage.Store. It
//     manages shards and provides the public API for address-based
//     operations. Addresses are opaque byte sequences; the store never
//     interprets them beyond shard selection.
//
//   - Shard: A partition of the store that manages a subset of the address
//     space. Each shard contains its own concurrent map. Shards operate
//     independently to minimize contention. Addresses are distributed
//     across shards using a seeded FNV-1a hash; the hash is right-shifted
//     by 7 bits so higher-quality bits drive the distribution.
//
// The collection layers built on this engine (lookup maps, ordered maps)
// compute their own 32-byte digest addresses before calling into the store,
// so shard selection here operates on already well-distributed input.
//
// Note on concurrency: the ordered-map layers above this engine assume a
// single writer per collection instance. The engine itself is nevertheless
// safe for concurrent use because distinct collections share one store and
// may operate from different goroutines.
package cedar
