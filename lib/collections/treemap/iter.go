package treemap

import (
	"fmt"

	"github.com/rowan-kv/rowan/lib/collections/lookupmap"
	"github.com/rowan-kv/rowan/lib/storage"
)

// --------------------------------------------------------------------------
// Bounds
// --------------------------------------------------------------------------

type boundKind uint8

const (
	boundUnbounded boundKind = iota
	boundIncluded
	boundExcluded
)

// Bound delimits one end of a range query: Unbounded, Included(k) or
// Excluded(k).
type Bound[K any] struct {
	kind boundKind
	key  K
}

// Unbounded returns the open bound
func Unbounded[K any]() Bound[K] {
	return Bound[K]{kind: boundUnbounded}
}

// Included returns a bound that contains the given key
func Included[K any](key K) Bound[K] {
	return Bound[K]{kind: boundIncluded, key: key}
}

// Excluded returns a bound that stops just before the given key
func Excluded[K any](key K) Bound[K] {
	return Bound[K]{kind: boundExcluded, key: key}
}

// --------------------------------------------------------------------------
// Keys cursor
// --------------------------------------------------------------------------

// Keys is a lazy, double-ended cursor over the keys of a tree, restricted
// to a key range. It holds no materialized key set: every step resolves the
// next key through an O(log n) navigation query against the tree.
//
// Bounds are monotonic: the forward step tightens min to Excluded(last
// yielded key), the backward step tightens max symmetrically; they are
// never loosened. A forward and a backward cursor meeting in the middle
// therefore never double-yield or skip an element.
//
// Once a step finds no candidate the cursor is drained for good: length is
// forced to 0 and every further call short-circuits without touching the
// tree. A storage error during a step also drains the cursor and is
// reported through Err.
type Keys[K any] struct {
	tree   *Tree[K]
	length uint32
	min    Bound[K]
	max    Bound[K]
	err    error
}

func newKeys[K any](tree *Tree[K], min, max Bound[K], length uint32) *Keys[K] {
	return &Keys[K]{tree: tree, length: length, min: min, max: max}
}

// nextAsc resolves the smallest key satisfying the current lower bound
func (it *Keys[K]) nextAsc() (K, bool, error) {
	switch it.min.kind {
	case boundUnbounded:
		return it.tree.Min()
	case boundIncluded:
		return it.tree.Ceil(it.min.key)
	default:
		return it.tree.Higher(it.min.key)
	}
}

// nextDesc resolves the largest key satisfying the current upper bound
func (it *Keys[K]) nextDesc() (K, bool, error) {
	switch it.max.kind {
	case boundUnbounded:
		return it.tree.Max()
	case boundIncluded:
		return it.tree.Floor(it.max.key)
	default:
		return it.tree.Lower(it.max.key)
	}
}

// Next yields the next key in ascending order. It returns false once the
// cursor is exhausted; a drained cursor never resumes producing elements.
func (it *Keys[K]) Next() (K, bool) {
	var zero K
	if it.length == 0 {
		// short circuit once all elements have been iterated
		return zero, false
	}

	key, ok, err := it.nextAsc()
	if err != nil {
		it.err = err
		it.length = 0
		return zero, false
	}
	if !ok {
		// no more elements, set length to 0 to avoid duplicate lookups
		it.length = 0
		return zero, false
	}

	// tighten the minimum bound and decrease the remaining count
	it.min = Excluded(key)
	it.length--
	return key, true
}

// NextBack yields the next key in descending order, consuming the cursor
// from its upper end.
func (it *Keys[K]) NextBack() (K, bool) {
	var zero K
	if it.length == 0 {
		return zero, false
	}

	key, ok, err := it.nextDesc()
	if err != nil {
		it.err = err
		it.length = 0
		return zero, false
	}
	if !ok {
		it.length = 0
		return zero, false
	}

	// tighten the maximum bound and decrease the remaining count
	it.max = Excluded(key)
	it.length--
	return key, true
}

// Len returns the exact number of elements remaining.
func (it *Keys[K]) Len() int {
	return int(it.length)
}

// Err returns the first storage error encountered while stepping, if any.
// A cursor that stopped because of an error reports it here; normal
// exhaustion leaves Err nil.
func (it *Keys[K]) Err() error {
	return it.err
}

// --------------------------------------------------------------------------
// Key-value cursor
// --------------------------------------------------------------------------

// Iter is a lazy, double-ended cursor over key-value pairs in key order.
// It wraps a Keys cursor and performs one additional value lookup per
// yielded key.
type Iter[K any, V any] struct {
	keys   *Keys[K]
	values *lookupmap.LookupMap[K, V]
	err    error
}

func newIter[K any, V any](keys *Keys[K], values *lookupmap.LookupMap[K, V]) *Iter[K, V] {
	return &Iter[K, V]{keys: keys, values: values}
}

// lookup fetches the value for a key yielded by the underlying cursor.
// A key present in the index but absent from the value store is a broken
// joint invariant, not an empty result.
func (it *Iter[K, V]) lookup(key K) (V, bool) {
	value, loaded, err := it.values.Get(key)
	if err == nil && !loaded {
		err = storage.NewError(storage.RetCCorruptedRecord,
			fmt.Sprintf("treemap: no value stored for key %v present in index", key))
	}
	if err != nil {
		it.err = err
		it.keys.length = 0
		var zero V
		return zero, false
	}
	return value, true
}

// Next yields the next key-value pair in ascending key order.
func (it *Iter[K, V]) Next() (K, V, bool) {
	var zeroV V
	key, ok := it.keys.Next()
	if !ok {
		return key, zeroV, false
	}
	value, ok := it.lookup(key)
	return key, value, ok
}

// NextBack yields the next key-value pair in descending key order.
func (it *Iter[K, V]) NextBack() (K, V, bool) {
	var zeroV V
	key, ok := it.keys.NextBack()
	if !ok {
		return key, zeroV, false
	}
	value, ok := it.lookup(key)
	return key, value, ok
}

// Len returns the exact number of elements remaining.
func (it *Iter[K, V]) Len() int {
	return it.keys.Len()
}

// Err returns the first error encountered while stepping, if any.
func (it *Iter[K, V]) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.keys.Err()
}

// --------------------------------------------------------------------------
// Mutable key-value cursor
// --------------------------------------------------------------------------

// Entry is a short-lived write-through handle to one key-value pair yielded
// by a mutable cursor. The hashed addressing of the value store guarantees
// at most one storage slot per key, so a SetValue through the handle can
// never alias another entry.
type Entry[K any, V any] struct {
	key    K
	value  V
	values *lookupmap.LookupMap[K, V]
}

// Key returns the entry's key
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Value returns the entry's value as loaded when the cursor stepped
func (e *Entry[K, V]) Value() V {
	return e.value
}

// SetValue writes a new value for the entry's key through to the store.
func (e *Entry[K, V]) SetValue(value V) error {
	if err := e.values.Set(e.key, value); err != nil {
		return err
	}
	e.value = value
	return nil
}

// IterMut is the mutable variant of Iter: it yields Entry handles whose
// SetValue writes through to the value store while iteration proceeds.
type IterMut[K any, V any] struct {
	inner *Iter[K, V]
}

func newIterMut[K any, V any](keys *Keys[K], values *lookupmap.LookupMap[K, V]) *IterMut[K, V] {
	return &IterMut[K, V]{inner: newIter(keys, values)}
}

// Next yields a handle to the next entry in ascending key order.
func (it *IterMut[K, V]) Next() (*Entry[K, V], bool) {
	key, value, ok := it.inner.Next()
	if !ok {
		return nil, false
	}
	return &Entry[K, V]{key: key, value: value, values: it.inner.values}, true
}

// NextBack yields a handle to the next entry in descending key order.
func (it *IterMut[K, V]) NextBack() (*Entry[K, V], bool) {
	key, value, ok := it.inner.NextBack()
	if !ok {
		return nil, false
	}
	return &Entry[K, V]{key: key, value: value, values: it.inner.values}, true
}

// Len returns the exact number of elements remaining.
func (it *IterMut[K, V]) Len() int {
	return it.inner.Len()
}

// Err returns the first error encountered while stepping, if any.
func (it *IterMut[K, V]) Err() error {
	return it.inner.Err()
}

// --------------------------------------------------------------------------
// Value cursors
// --------------------------------------------------------------------------

// Values is a lazy, double-ended cursor over the values of a map, in order
// by key.
type Values[K any, V any] struct {
	inner *Iter[K, V]
}

// Next yields the next value in ascending key order.
func (it *Values[K, V]) Next() (V, bool) {
	_, value, ok := it.inner.Next()
	return value, ok
}

// NextBack yields the next value in descending key order.
func (it *Values[K, V]) NextBack() (V, bool) {
	_, value, ok := it.inner.NextBack()
	return value, ok
}

// Len returns the exact number of elements remaining.
func (it *Values[K, V]) Len() int {
	return it.inner.Len()
}

// Err returns the first error encountered while stepping, if any.
func (it *Values[K, V]) Err() error {
	return it.inner.Err()
}

// ValuesMut is the mutable variant of Values, yielding write-through Entry
// handles in key order.
type ValuesMut[K any, V any] struct {
	inner *IterMut[K, V]
}

// Next yields a handle to the next entry in ascending key order.
func (it *ValuesMut[K, V]) Next() (*Entry[K, V], bool) {
	return it.inner.Next()
}

// NextBack yields a handle to the next entry in descending key order.
func (it *ValuesMut[K, V]) NextBack() (*Entry[K, V], bool) {
	return it.inner.NextBack()
}

// Len returns the exact number of elements remaining.
func (it *ValuesMut[K, V]) Len() int {
	return it.inner.Len()
}

// Err returns the first error encountered while stepping, if any.
func (it *ValuesMut[K, V]) Err() error {
	return it.inner.Err()
}
