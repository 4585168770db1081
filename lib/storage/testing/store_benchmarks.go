package testing

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rowan-kv/rowan/lib/storage"
)

// RunStoreBenchmarks runs all benchmarks for a Store implementation
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory())
	})

	b.Run("SetLargeValue", func(b *testing.B) {
		benchmarkSetLargeValue(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Remove", func(b *testing.B) {
		benchmarkRemove(b, factory())
	})

	b.Run("Has", func(b *testing.B) {
		benchmarkHas(b, factory())
	})

	b.Run("Has(not)", func(b *testing.B) {
		benchmarkHasNot(b, factory())
	})

	b.Run("SaveLoad", func(b *testing.B) {
		benchmarkSaveLoad(b, factory)
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Set operation
func benchmarkSet(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSet)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			addr := []byte(fmt.Sprintf("bench-addr-%d", counter))
			value := []byte(fmt.Sprintf("bench-value-%d", counter))
			_ = store.Set(addr, value)
			counter++
		}
	})
}

// Benchmark for Set operation with existing addresses
func benchmarkSetExisting(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSet)

	// Prepare data
	numAddrs := 1000
	addrs := make([][]byte, numAddrs)
	for i := 0; i < numAddrs; i++ {
		addrs[i] = []byte(fmt.Sprintf("existing-addr-%d", i))
		_ = store.Set(addrs[i], []byte("initial"))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_ = store.Set(addrs[counter%numAddrs], []byte("updated"))
			counter++
		}
	})
}

// Benchmark for Set operation with a large value
func benchmarkSetLargeValue(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSet)

	largeValue := make([]byte, 1024*1024) // 1 MB

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			addr := []byte(fmt.Sprintf("large-addr-%d", counter))
			_ = store.Set(addr, largeValue)
			counter++
		}
	})
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSet)
	requireFeature(b, store, storage.FeatureGet)

	numAddrs := 1000
	addrs := make([][]byte, numAddrs)
	for i := 0; i < numAddrs; i++ {
		addrs[i] = []byte(fmt.Sprintf("get-addr-%d", i))
		_ = store.Set(addrs[i], []byte(fmt.Sprintf("get-value-%d", i)))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = store.Get(addrs[counter%numAddrs])
			counter++
		}
	})
}

// Benchmark for Remove operation
func benchmarkRemove(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSet)
	requireFeature(b, store, storage.FeatureRemove)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			addr := []byte(fmt.Sprintf("remove-addr-%d", counter))
			_ = store.Set(addr, []byte("to-remove"))
			_, _, _ = store.Remove(addr)
			counter++
		}
	})
}

// Benchmark for Has operation on existing addresses
func benchmarkHas(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSet)
	requireFeature(b, store, storage.FeatureHas)

	numAddrs := 1000
	addrs := make([][]byte, numAddrs)
	for i := 0; i < numAddrs; i++ {
		addrs[i] = []byte(fmt.Sprintf("has-addr-%d", i))
		_ = store.Set(addrs[i], []byte("present"))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = store.Has(addrs[counter%numAddrs])
			counter++
		}
	})
}

// Benchmark for Has operation on absent addresses
func benchmarkHasNot(b *testing.B, store storage.Store) {
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureHas)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			addr := []byte(fmt.Sprintf("absent-addr-%d", counter))
			_, _ = store.Has(addr)
			counter++
		}
	})
}

// Benchmark for Save and Load operations
func benchmarkSaveLoad(b *testing.B, factory StoreFactory) {
	store := factory()
	b.Cleanup(func() {
		store.Close()
	})

	requireFeature(b, store, storage.FeatureSave)
	requireFeature(b, store, storage.FeatureLoad)

	numEntries := 10000
	for i := 0; i < numEntries; i++ {
		addr := []byte(fmt.Sprintf("snapshot-addr-%d", i))
		value := []byte(fmt.Sprintf("snapshot-value-%d", i))
		_ = store.Set(addr, value)
	}

	var buf bytes.Buffer
	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf.Reset()
			if err := store.Save(&buf); err != nil {
				b.Fatalf("Save failed: %v", err)
			}
		}
	})

	b.Run("Load", func(b *testing.B) {
		data := buf.Bytes()
		for i := 0; i < b.N; i++ {
			restored := factory()
			if err := restored.Load(bytes.NewReader(data)); err != nil {
				b.Fatalf("Load failed: %v", err)
			}
			restored.Close()
		}
	})
}
