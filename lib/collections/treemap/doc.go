// Package treemap implements a persisted ordered map on top of an
// unordered byte-addressed store: a self-balancing search-tree index (Tree)
// combined with a hashed value store (lookupmap.LookupMap) forming a
// TreeMap - a sorted dictionary whose storage medium is a per-address
// store where every read and write is a costed I/O operation.
//
// The package focuses on:
//   - Logarithmic-time insert/remove/lookup with every tree node persisted
//     individually; no in-memory working set survives across calls
//   - Correct AVL rebalancing across sparse mutations
//   - Lazy, bounded, double-ended iteration that never materializes the
//     full key set
//
// Key Components:
//
//   - Tree: the ordered index. An AVL tree whose every node is stored as a
//     separate entry in a LookupMap keyed by a monotonically issued 32-bit
//     node id (an arena-plus-index pattern - node linkage is expressed as
//     lookups by integer id because no in-memory pointer survives between
//     calls). The root id, the live node count and the id-allocation
//     counter are persisted in a header record under the tree's namespace,
//     so reconstructing a Tree over an existing namespace reattaches to the
//     prior state. After every mutation the balance factor of every node
//     is in {-1,0,1}, keeping the height within the AVL bound of
//     ~1.44*log2(n+1).
//
//   - TreeMap: the facade combining a Tree (ordering and navigation) with a
//     LookupMap (value payloads). Its joint invariant - index key set ==
//     value key set - is maintained by ordering mutations carefully:
//     inserts register the key in the index before writing the value,
//     removals confirm presence against the index before touching either
//     layer.
//
//   - Cursors: Keys, Iter, IterMut, Values and ValuesMut traverse a key
//     range lazily. Each forward step resolves the next key via a
//     navigation query (Min/Ceil/Higher depending on the bound kind) and
//     tightens the lower bound to exclude the yielded key; backward steps
//     mirror this against the upper bound. Cursors report exact remaining
//     counts and are fused: once drained (or failed) they never produce
//     again. Mutable cursors yield write-through Entry handles instead of
//     aliased references; the hashed addressing of the value store
//     guarantees one storage slot per key, so a handle can never write
//     into a foreign entry.
//
// Cost model: navigation and lookup are O(log n) storage reads; insert and
// remove add O(log n) storage writes in the worst case since every
// rotation rewrites up to 3 persisted nodes on the path back to the root.
//
// Error handling follows the storage package taxonomy: absent keys are
// empty results, while a missing or undecodable node or value record is a
// fatal RetCCorruptedRecord error that aborts the operation - a partially
// readable tree is never traversed further, because continuing risks
// silent data loss.
//
// Concurrency: a TreeMap instance assumes a single writer per call, in
// line with the run-to-completion execution model of the store's host.
// Distinct maps over distinct namespaces never interfere.
package treemap
