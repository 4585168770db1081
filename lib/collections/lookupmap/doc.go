// Package lookupmap provides an unordered, typed associative layer over a
// byte-addressed storage.Store.
//
// A LookupMap hashes each serialized key together with a per-collection
// namespace prefix to a fixed-width digest and uses that digest as the
// storage address of the value. This gives O(1) storage operations per call
// (exactly one read and/or one write) at the price of no ordering and no
// iteration - the map cannot enumerate its keys because the store only
// supports exact-address access.
//
// The package focuses on:
//   - Namespace isolation: collections sharing one store never interfere
//     as long as their namespaces differ
//   - Typed access through codec.Codec key and value serializers
//   - A pluggable Hasher (SHA-256 by default) producing 32-byte digests
//
// Hash collisions between distinct keys would silently alias one storage
// slot and are treated as a fatal invariant violation, not a recoverable
// error; with a 32-byte collision-resistant digest they do not occur in
// practice. A stored record that fails to decode surfaces as a
// storage.RetCCorruptedRecord error and is never skipped.
//
// Related Packages:
//
// The treemap package (github.com/rowan-kv/rowan/lib/collections/treemap)
// combines two lookup maps with a persisted balanced-tree index to add
// ordering, navigation queries and range iteration on top of this layer.
package lookupmap
