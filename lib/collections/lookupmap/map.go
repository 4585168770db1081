package lookupmap

import (
	"crypto/sha256"
	"fmt"

	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/storage"
)

// DigestSize is the width of the storage addresses produced by the default
// hasher. Distinct keys hashing to the same address would silently alias one
// storage slot, so the digest must be collision resistant; 32 bytes of
// SHA-256 make collisions a non-issue in practice.
const DigestSize = 32

// Hasher maps a namespace and a serialized key to a fixed-width storage
// address. Implementations must be deterministic and collision resistant.
type Hasher func(namespace, key []byte) []byte

// defaultHasher addresses entries by sha256(namespace ++ key)
func defaultHasher(namespace, key []byte) []byte {
	h := sha256.New()
	h.Write(namespace)
	h.Write(key)
	return h.Sum(nil)
}

// --------------------------------------------------------------------------
// LookupMap
// --------------------------------------------------------------------------

// LookupMap is an unordered associative layer over a byte-addressed store.
// Keys are serialized, hashed together with a per-collection namespace to a
// fixed-width digest, and the digest addresses the backing store directly.
// Entry existence is determined purely by the digest address; the map never
// enumerates its key space.
//
// Every operation costs exactly one storage read and/or one storage write.
type LookupMap[K any, V any] struct {
	store     storage.Store
	namespace []byte
	hasher    Hasher
	keyCodec  codec.Codec[K]
	valCodec  codec.Codec[V]
}

// New creates a LookupMap over the given store. The namespace distinguishes
// this collection's entries from every other collection sharing the store;
// two maps with distinct namespaces never interfere.
func New[K any, V any](store storage.Store, namespace []byte, keyCodec codec.Codec[K], valCodec codec.Codec[V]) *LookupMap[K, V] {
	return NewWithHasher(store, namespace, defaultHasher, keyCodec, valCodec)
}

// NewWithHasher creates a LookupMap with a custom address hasher.
func NewWithHasher[K any, V any](store storage.Store, namespace []byte, hasher Hasher, keyCodec codec.Codec[K], valCodec codec.Codec[V]) *LookupMap[K, V] {
	ns := make([]byte, len(namespace))
	copy(ns, namespace)
	return &LookupMap[K, V]{
		store:     store,
		namespace: ns,
		hasher:    hasher,
		keyCodec:  keyCodec,
		valCodec:  valCodec,
	}
}

// addr computes the storage address for a key
func (m *LookupMap[K, V]) addr(key K) ([]byte, error) {
	keyBytes, err := m.keyCodec.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("lookupmap: marshal key: %w", err)
	}
	return m.hasher(m.namespace, keyBytes), nil
}

// decode deserializes a stored value. A decode failure is fatal: the record
// is unreadable and skipping it would hide data loss.
func (m *LookupMap[K, V]) decode(data []byte) (V, error) {
	value, err := m.valCodec.Unmarshal(data)
	if err != nil {
		var zero V
		return zero, storage.NewError(storage.RetCCorruptedRecord,
			fmt.Sprintf("lookupmap: undecodable record: %v", err))
	}
	return value, nil
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// Get returns the value stored for a key. The boolean return value
// indicates whether an entry was found; an absent key is not an error.
//
// Cost: one storage read.
func (m *LookupMap[K, V]) Get(key K) (V, bool, error) {
	var zero V

	addr, err := m.addr(key)
	if err != nil {
		return zero, false, err
	}

	data, loaded, err := m.store.Get(addr)
	if err != nil {
		return zero, false, err
	}
	if !loaded {
		return zero, false, nil
	}

	value, err := m.decode(data)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Contains reports whether an entry exists for the key.
//
// Cost: one storage read.
func (m *LookupMap[K, V]) Contains(key K) (bool, error) {
	addr, err := m.addr(key)
	if err != nil {
		return false, err
	}
	return m.store.Has(addr)
}

// Insert stores a value for a key and returns the previous value, if any.
//
// Cost: one storage read plus one storage write.
func (m *LookupMap[K, V]) Insert(key K, value V) (V, bool, error) {
	var zero V

	addr, err := m.addr(key)
	if err != nil {
		return zero, false, err
	}

	prevData, loaded, err := m.store.Get(addr)
	if err != nil {
		return zero, false, err
	}

	valData, err := m.valCodec.Marshal(value)
	if err != nil {
		return zero, false, fmt.Errorf("lookupmap: marshal value: %w", err)
	}
	if err := m.store.Set(addr, valData); err != nil {
		return zero, false, err
	}

	if !loaded {
		return zero, false, nil
	}
	prev, err := m.decode(prevData)
	if err != nil {
		return zero, false, err
	}
	return prev, true, nil
}

// Set stores a value for a key without reading back the previous value.
// This is the write path for callers that do not need the old value.
//
// Cost: one storage write.
func (m *LookupMap[K, V]) Set(key K, value V) error {
	addr, err := m.addr(key)
	if err != nil {
		return err
	}

	valData, err := m.valCodec.Marshal(value)
	if err != nil {
		return fmt.Errorf("lookupmap: marshal value: %w", err)
	}
	return m.store.Set(addr, valData)
}

// Remove deletes the entry for a key and returns the removed value, if any.
// Removing an absent key is a no-op.
//
// Cost: one storage write (combined remove-and-return).
func (m *LookupMap[K, V]) Remove(key K) (V, bool, error) {
	var zero V

	addr, err := m.addr(key)
	if err != nil {
		return zero, false, err
	}

	prevData, loaded, err := m.store.Remove(addr)
	if err != nil {
		return zero, false, err
	}
	if !loaded {
		return zero, false, nil
	}

	prev, err := m.decode(prevData)
	if err != nil {
		return zero, false, err
	}
	return prev, true, nil
}

// Delete removes the entry for a key without decoding the previous value.
//
// Cost: one storage write.
func (m *LookupMap[K, V]) Delete(key K) (bool, error) {
	addr, err := m.addr(key)
	if err != nil {
		return false, err
	}
	_, loaded, err := m.store.Remove(addr)
	return loaded, err
}
