package testing

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rowan-kv/rowan/lib/storage"
)

// StoreFactory is a function that creates a new instance of a Store implementation
type StoreFactory func() storage.Store

// RunStoreTests runs a comprehensive test suite for a Store implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ManyEntries", func(t *testing.T) {
			testManyEntries(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the store supports the specified feature.
// Skip the test if it is not supported.
func requireFeature(t testing.TB, store storage.Store, feature storage.Feature) {
	if !store.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, store storage.Store) {
	defer store.Close()

	requireFeature(t, store, storage.FeatureSet)
	requireFeature(t, store, storage.FeatureGet)

	testAddr := []byte("test-addr")
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if err := store.Set(testAddr, testValue1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists, err := store.Get(testAddr)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected address %s to exist after Set", testAddr)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	if err := store.Set(testAddr, testValue2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists, _ = store.Get(testAddr)
	if !exists {
		t.Errorf("Expected address %s to exist after Set", testAddr)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists, _ = store.Get([]byte("nonexistent-addr"))
	if exists {
		t.Errorf("Expected nonexistent address to return exists=false")
	}

	// Get must return a copy, not a reference to the stored value
	retrievedValue, _, _ := store.Get(testAddr)
	retrievedValue[0] = 'X'
	originalValue, _, _ := store.Get(testAddr)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testRemove(t *testing.T, store storage.Store) {
	defer store.Close()

	requireFeature(t, store, storage.FeatureSet)
	requireFeature(t, store, storage.FeatureGet)
	requireFeature(t, store, storage.FeatureRemove)

	testAddr := []byte("remove-test-addr")
	testValue := []byte("remove-test-value")

	if err := store.Set(testAddr, testValue); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	prev, loaded, err := store.Remove(testAddr)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !loaded {
		t.Errorf("Expected Remove to report a previous value")
	}
	if !bytes.Equal(prev, testValue) {
		t.Errorf("Expected previous value %s, got %s", testValue, prev)
	}

	_, exists, _ := store.Get(testAddr)
	if exists {
		t.Errorf("Expected address %s to not exist after Remove", testAddr)
	}

	// removing an absent address is a no-op
	_, loaded, err = store.Remove(testAddr)
	if err != nil {
		t.Fatalf("Remove of absent address failed: %v", err)
	}
	if loaded {
		t.Errorf("Expected Remove of absent address to report loaded=false")
	}
}

func testHas(t *testing.T, store storage.Store) {
	defer store.Close()

	requireFeature(t, store, storage.FeatureSet)
	requireFeature(t, store, storage.FeatureHas)

	testAddr := []byte("has-test-addr")

	loaded, err := store.Has(testAddr)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if loaded {
		t.Errorf("Expected Has to return false for unset address")
	}

	if err := store.Set(testAddr, []byte("some-value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	loaded, _ = store.Has(testAddr)
	if !loaded {
		t.Errorf("Expected Has to return true after Set")
	}
}

func testSaveLoad(t *testing.T, factory StoreFactory) {
	store := factory()
	defer store.Close()

	requireFeature(t, store, storage.FeatureSave)
	requireFeature(t, store, storage.FeatureLoad)

	numEntries := 100
	for i := 0; i < numEntries; i++ {
		addr := []byte(fmt.Sprintf("save-addr-%d", i))
		value := []byte(fmt.Sprintf("save-value-%d", i))
		if err := store.Set(addr, value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := store.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := factory()
	defer restored.Close()

	if err := restored.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		addr := []byte(fmt.Sprintf("save-addr-%d", i))
		want := []byte(fmt.Sprintf("save-value-%d", i))

		got, exists, err := restored.Get(addr)
		if err != nil {
			t.Fatalf("Get after Load failed: %v", err)
		}
		if !exists {
			t.Errorf("Expected address %s to exist after Load", addr)
			continue
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Expected value %s, got %s", want, got)
		}
	}

	// Loading garbage must fail
	if err := restored.Load(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Errorf("Expected Load of invalid data to fail")
	}
}

func testEdgeCases(t *testing.T, store storage.Store) {
	defer store.Close()

	requireFeature(t, store, storage.FeatureSet)
	requireFeature(t, store, storage.FeatureGet)

	// empty value
	addr := []byte("empty-value-addr")
	if err := store.Set(addr, []byte{}); err != nil {
		t.Fatalf("Set of empty value failed: %v", err)
	}
	value, exists, _ := store.Get(addr)
	if !exists {
		t.Errorf("Expected address with empty value to exist")
	}
	if len(value) != 0 {
		t.Errorf("Expected empty value, got %v", value)
	}

	// binary addresses (32-byte digests contain arbitrary bytes)
	binAddr := make([]byte, 32)
	for i := range binAddr {
		binAddr[i] = byte(i * 7)
	}
	if err := store.Set(binAddr, []byte("digest-addressed")); err != nil {
		t.Fatalf("Set of binary address failed: %v", err)
	}
	value, exists, _ = store.Get(binAddr)
	if !exists || !bytes.Equal(value, []byte("digest-addressed")) {
		t.Errorf("Expected binary address to round-trip, got %v (exists=%v)", value, exists)
	}

	// mutating the input slices after Set must not affect the stored value
	mutAddr := []byte("mutation-addr")
	mutValue := []byte("mutation-value")
	if err := store.Set(mutAddr, mutValue); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mutValue[0] = 'X'
	value, _, _ = store.Get(mutAddr)
	if !bytes.Equal(value, []byte("mutation-value")) {
		t.Errorf("Stored value was corrupted by caller-side mutation: %s", value)
	}
}

func testManyEntries(t *testing.T, store storage.Store) {
	defer store.Close()

	requireFeature(t, store, storage.FeatureSet)
	requireFeature(t, store, storage.FeatureGet)
	requireFeature(t, store, storage.FeatureRemove)

	numEntries := 10000

	for i := 0; i < numEntries; i++ {
		addr := []byte(fmt.Sprintf("many-addr-%d", i))
		value := []byte(fmt.Sprintf("many-value-%d", i))
		if err := store.Set(addr, value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	for i := 0; i < numEntries; i++ {
		addr := []byte(fmt.Sprintf("many-addr-%d", i))
		want := []byte(fmt.Sprintf("many-value-%d", i))
		got, exists, _ := store.Get(addr)
		if !exists {
			t.Fatalf("Address %s not found after Set", addr)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Expected value %s, got %s", want, got)
		}
	}

	// remove every second entry and verify the rest is untouched
	for i := 0; i < numEntries; i += 2 {
		addr := []byte(fmt.Sprintf("many-addr-%d", i))
		if _, loaded, _ := store.Remove(addr); !loaded {
			t.Fatalf("Expected address %s to be removable", addr)
		}
	}

	for i := 0; i < numEntries; i++ {
		addr := []byte(fmt.Sprintf("many-addr-%d", i))
		_, exists, _ := store.Get(addr)
		if i%2 == 0 && exists {
			t.Fatalf("Address %s should have been removed", addr)
		}
		if i%2 == 1 && !exists {
			t.Fatalf("Address %s should still exist", addr)
		}
	}
}
