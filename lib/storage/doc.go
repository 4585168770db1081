// Package storage provides a standardized interface for byte-addressed
// key-value store implementations. It defines the Store interface that the
// collection types (lookup maps, ordered maps) are built on while
// abstracting engine implementation details.
//
// The package focuses on:
//   - A unified interface for address-based read/write/remove operations
//   - Feature discovery through capability flags
//   - Standardized persistence operations (Save/Load snapshots)
//   - Standardized metadata reporting
//
// Key Components:
//
//   - Store Interface: The core interface that all engine implementations
//     must satisfy. It provides methods for basic operations (Set, Get, Has,
//     Remove), persistence operations (Save, Load), and metadata retrieval
//     (GetInfo). Every operation addresses exactly one entry by an opaque
//     byte sequence; the store never needs to enumerate or order its keys.
//     Ordering is the job of the collection layers built on top.
//
//   - Feature Flags: The Feature type defines capability flags that
//     implementations can advertise through the SupportsFeature method.
//     This allows the collection layers to discover supported operations at
//     runtime and reject engines that cannot serve them.
//
//   - Error System: A structured error reporting mechanism using typed error
//     codes and descriptive messages. The RetCCorruptedRecord code is
//     reserved for persisted records that fail to decode; collections treat
//     it as fatal and never recover from it locally, because continuing with
//     a partially readable structure risks silent data loss.
//
//   - StoreFactory: A function type that abstracts the creation of Store
//     instances, providing dependency injection and flexible configuration
//     of storage backends.
//
// Related Packages:
//
// The engines/cedar package (github.com/rowan-kv/rowan/lib/storage/engines/cedar)
// provides an in-memory implementation of the Store interface using a
// sharded architecture with binary snapshot persistence.
//
// The collections packages (github.com/rowan-kv/rowan/lib/collections/...)
// build the associative and ordered map layers on top of this interface.
package storage
