package treemap

import (
	"cmp"

	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/collections/lookupmap"
	"github.com/rowan-kv/rowan/lib/storage"
)

// TreeMap is a persisted sorted dictionary: a Tree index providing key
// ordering and navigation, combined with a LookupMap holding the value
// payloads. The two share one joint invariant - the set of keys in the
// index equals exactly the set of keys with a stored value - and every
// mutating operation maintains it.
//
// A TreeMap is identified by its namespace. Constructing a map over a
// namespace that already holds state reattaches to that state.
type TreeMap[K any, V any] struct {
	tree   *Tree[K]
	values *lookupmap.LookupMap[K, V]
}

// New creates (or reattaches to) a TreeMap over the given store and
// namespace, ordering keys with the provided compare function.
func New[K any, V any](store storage.Store, namespace []byte, compare CompareFunc[K], keyCodec codec.Codec[K], valCodec codec.Codec[V]) (*TreeMap[K, V], error) {
	ns := make([]byte, len(namespace))
	copy(ns, namespace)

	tree, err := NewTree(store, append(ns, []byte("\x00idx")...), compare, keyCodec)
	if err != nil {
		return nil, err
	}

	return &TreeMap[K, V]{
		tree:   tree,
		values: lookupmap.New(store, append(ns, []byte("\x00val")...), keyCodec, valCodec),
	}, nil
}

// NewOrdered creates a TreeMap for a key type with a native total order.
func NewOrdered[K cmp.Ordered, V any](store storage.Store, namespace []byte, keyCodec codec.Codec[K], valCodec codec.Codec[V]) (*TreeMap[K, V], error) {
	return New(store, namespace, cmp.Compare[K], keyCodec, valCodec)
}

// --------------------------------------------------------------------------
// Map operations
// --------------------------------------------------------------------------

// Insert stores a value for a key and returns the previous value, if any.
// A new key is registered in the index before its value is written, so a
// failed index insert leaves the joint invariant untouched. Inserting over
// an existing key skips the index entirely and only replaces the value.
func (m *TreeMap[K, V]) Insert(key K, value V) (V, bool, error) {
	var zero V

	if _, err := m.tree.Insert(key); err != nil {
		return zero, false, err
	}
	return m.values.Insert(key, value)
}

// Remove deletes a key and returns its value, if any. Presence is
// confirmed against the index first; an absent key is a no-op, not an
// error.
func (m *TreeMap[K, V]) Remove(key K) (V, bool, error) {
	var zero V

	present, err := m.tree.Contains(key)
	if err != nil {
		return zero, false, err
	}
	if !present {
		return zero, false, nil
	}

	value, _, err := m.values.Remove(key)
	if err != nil {
		return zero, false, err
	}
	if _, err := m.tree.Remove(key); err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Get returns the value stored for a key. Pure value-store delegation,
// independent of tree structure.
func (m *TreeMap[K, V]) Get(key K) (V, bool, error) {
	return m.values.Get(key)
}

// Contains reports whether a key is present.
func (m *TreeMap[K, V]) Contains(key K) (bool, error) {
	return m.values.Contains(key)
}

// Len returns the number of entries, O(1).
func (m *TreeMap[K, V]) Len() uint32 {
	return m.tree.Len()
}

// Clear removes every entry. Keys are collected through the index first,
// then each entry is removed from both layers.
func (m *TreeMap[K, V]) Clear() error {
	keys := make([]K, 0, m.tree.Len())
	it := m.Keys()
	for {
		key, ok := it.Next()
		if !ok {
			break
		}
		keys = append(keys, key)
	}
	if err := it.Err(); err != nil {
		return err
	}

	for _, key := range keys {
		if _, _, err := m.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Navigation queries (delegated to the index)
// --------------------------------------------------------------------------

// MinKey returns the smallest key in the map.
func (m *TreeMap[K, V]) MinKey() (K, bool, error) {
	return m.tree.Min()
}

// MaxKey returns the largest key in the map.
func (m *TreeMap[K, V]) MaxKey() (K, bool, error) {
	return m.tree.Max()
}

// FloorKey returns the largest key <= the given key.
func (m *TreeMap[K, V]) FloorKey(key K) (K, bool, error) {
	return m.tree.Floor(key)
}

// CeilKey returns the smallest key >= the given key.
func (m *TreeMap[K, V]) CeilKey(key K) (K, bool, error) {
	return m.tree.Ceil(key)
}

// LowerKey returns the largest key strictly < the given key.
func (m *TreeMap[K, V]) LowerKey(key K) (K, bool, error) {
	return m.tree.Lower(key)
}

// HigherKey returns the smallest key strictly > the given key.
func (m *TreeMap[K, V]) HigherKey(key K) (K, bool, error) {
	return m.tree.Higher(key)
}

// --------------------------------------------------------------------------
// Iteration
// --------------------------------------------------------------------------

// Keys returns a cursor over all keys in ascending order.
func (m *TreeMap[K, V]) Keys() *Keys[K] {
	return newKeys(m.tree, Unbounded[K](), Unbounded[K](), m.tree.Len())
}

// KeysRange returns a cursor over the keys within the given bounds.
// The cursor reports the exact number of keys in range through Len.
func (m *TreeMap[K, V]) KeysRange(min, max Bound[K]) (*Keys[K], error) {
	length, err := m.tree.countRange(min, max)
	if err != nil {
		return nil, err
	}
	return newKeys(m.tree, min, max, length), nil
}

// Iter returns a cursor over all key-value pairs in ascending key order.
func (m *TreeMap[K, V]) Iter() *Iter[K, V] {
	return newIter(m.Keys(), m.values)
}

// Range returns a cursor over the key-value pairs within the given bounds.
func (m *TreeMap[K, V]) Range(min, max Bound[K]) (*Iter[K, V], error) {
	keys, err := m.KeysRange(min, max)
	if err != nil {
		return nil, err
	}
	return newIter(keys, m.values), nil
}

// IterMut returns a mutable cursor over all entries in ascending key
// order; values can be rewritten through the yielded handles.
func (m *TreeMap[K, V]) IterMut() *IterMut[K, V] {
	return newIterMut(m.Keys(), m.values)
}

// RangeMut returns a mutable cursor over the entries within the given
// bounds.
func (m *TreeMap[K, V]) RangeMut(min, max Bound[K]) (*IterMut[K, V], error) {
	keys, err := m.KeysRange(min, max)
	if err != nil {
		return nil, err
	}
	return newIterMut(keys, m.values), nil
}

// Values returns a cursor over all values in ascending key order.
func (m *TreeMap[K, V]) Values() *Values[K, V] {
	return &Values[K, V]{inner: m.Iter()}
}

// ValuesMut returns a mutable cursor over all values in ascending key
// order.
func (m *TreeMap[K, V]) ValuesMut() *ValuesMut[K, V] {
	return &ValuesMut[K, V]{inner: m.IterMut()}
}
