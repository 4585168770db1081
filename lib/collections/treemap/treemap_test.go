package treemap

import (
	"fmt"
	"testing"

	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/storage"
	"github.com/rowan-kv/rowan/lib/storage/engines/cedar"
)

func newTestMap(t *testing.T, namespace string) *TreeMap[int64, string] {
	t.Helper()
	store := cedar.NewCedarStore(nil)
	t.Cleanup(func() { store.Close() })
	return newMapOn(t, store, namespace)
}

func newMapOn(t *testing.T, store storage.Store, namespace string) *TreeMap[int64, string] {
	t.Helper()
	m, err := NewOrdered[int64, string](store, []byte(namespace), codec.Int64(), codec.String())
	if err != nil {
		t.Fatalf("NewOrdered failed: %v", err)
	}
	return m
}

func mustPut(t *testing.T, m *TreeMap[int64, string], key int64, value string) {
	t.Helper()
	if _, _, err := m.Insert(key, value); err != nil {
		t.Fatalf("Insert(%d, %q) failed: %v", key, value, err)
	}
}

func TestTreeMapRoundTrip(t *testing.T) {
	m := newTestMap(t, "roundtrip")

	mustPut(t, m, 1, "one")
	mustPut(t, m, 2, "two")
	mustPut(t, m, 3, "three")

	for key, want := range map[int64]string{1: "one", 2: "two", 3: "three"} {
		got, loaded, err := m.Get(key)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", key, err)
		}
		if !loaded || got != want {
			t.Errorf("Get(%d) = (%q, %v), want (%q, true)", key, got, loaded, want)
		}
	}

	if _, loaded, err := m.Get(99); loaded || err != nil {
		t.Errorf("Get of absent key = (loaded=%v, err=%v)", loaded, err)
	}
	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}
}

func TestTreeMapInsertReplaces(t *testing.T) {
	m := newTestMap(t, "replace")

	mustPut(t, m, 7, "old")

	prev, loaded, err := m.Insert(7, "new")
	if err != nil {
		t.Fatalf("Insert over existing key failed: %v", err)
	}
	if !loaded || prev != "old" {
		t.Errorf("previous value = (%q, %v), want (%q, true)", prev, loaded, "old")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d after replacing insert, want 1", m.Len())
	}

	got, _, err := m.Get(7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "new" {
		t.Errorf("Get = %q, want %q", got, "new")
	}
}

func TestTreeMapRemove(t *testing.T) {
	m := newTestMap(t, "remove")

	mustPut(t, m, 5, "five")
	mustPut(t, m, 6, "six")

	value, removed, err := m.Remove(5)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed || value != "five" {
		t.Errorf("Remove(5) = (%q, %v), want (%q, true)", value, removed, "five")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}

	// removing again must be a silent no-op
	if _, removed, err := m.Remove(5); removed || err != nil {
		t.Errorf("second Remove(5) = (removed=%v, err=%v)", removed, err)
	}

	if present, _ := m.Contains(5); present {
		t.Errorf("Contains(5) reports true after removal")
	}
	if present, _ := m.Contains(6); !present {
		t.Errorf("Contains(6) reports false for a live key")
	}
}

// TestTreeMapJointInvariant checks that the index and the value store stay in
// sync across a mixed mutation sequence.
func TestTreeMapJointInvariant(t *testing.T) {
	m := newTestMap(t, "joint")

	live := map[int64]string{}
	for i := int64(0); i < 100; i++ {
		key := (i * 37) % 100
		value := fmt.Sprintf("v%d", key)
		mustPut(t, m, key, value)
		live[key] = value
	}
	for key := int64(0); key < 100; key += 3 {
		if _, _, err := m.Remove(key); err != nil {
			t.Fatalf("Remove(%d) failed: %v", key, err)
		}
		delete(live, key)
	}

	if int(m.Len()) != len(live) {
		t.Fatalf("Len = %d, want %d", m.Len(), len(live))
	}

	// every indexed key must resolve to a value and vice versa
	it := m.Iter()
	seen := 0
	for {
		key, value, ok := it.Next()
		if !ok {
			break
		}
		seen++
		if want := live[key]; value != want {
			t.Errorf("iterated (%d, %q), want value %q", key, value, want)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if seen != len(live) {
		t.Errorf("iterated %d entries, want %d", seen, len(live))
	}
}

func TestTreeMapClear(t *testing.T) {
	m := newTestMap(t, "clear")

	for key := int64(1); key <= 20; key++ {
		mustPut(t, m, key, "x")
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", m.Len())
	}
	if _, ok, _ := m.MinKey(); ok {
		t.Errorf("MinKey found a key after Clear")
	}

	// the map stays usable after clearing
	mustPut(t, m, 42, "again")
	if got, loaded, _ := m.Get(42); !loaded || got != "again" {
		t.Errorf("Get after Clear+Insert = (%q, %v)", got, loaded)
	}
}

func TestTreeMapNavigationDelegation(t *testing.T) {
	m := newTestMap(t, "mapnav")

	for _, key := range []int64{10, 20, 30} {
		mustPut(t, m, key, "v")
	}

	if key, ok, _ := m.MinKey(); !ok || key != 10 {
		t.Errorf("MinKey = (%d, %v), want (10, true)", key, ok)
	}
	if key, ok, _ := m.MaxKey(); !ok || key != 30 {
		t.Errorf("MaxKey = (%d, %v), want (30, true)", key, ok)
	}
	if key, ok, _ := m.FloorKey(25); !ok || key != 20 {
		t.Errorf("FloorKey(25) = (%d, %v), want (20, true)", key, ok)
	}
	if key, ok, _ := m.CeilKey(25); !ok || key != 30 {
		t.Errorf("CeilKey(25) = (%d, %v), want (30, true)", key, ok)
	}
	if key, ok, _ := m.LowerKey(20); !ok || key != 10 {
		t.Errorf("LowerKey(20) = (%d, %v), want (10, true)", key, ok)
	}
	if key, ok, _ := m.HigherKey(20); !ok || key != 30 {
		t.Errorf("HigherKey(20) = (%d, %v), want (30, true)", key, ok)
	}
}

func TestTreeMapReattach(t *testing.T) {
	store := cedar.NewCedarStore(nil)
	defer store.Close()

	m := newMapOn(t, store, "persist")
	for key := int64(1); key <= 10; key++ {
		mustPut(t, m, key, fmt.Sprintf("v%d", key))
	}

	revived := newMapOn(t, store, "persist")
	if revived.Len() != 10 {
		t.Fatalf("reattached Len = %d, want 10", revived.Len())
	}
	for key := int64(1); key <= 10; key++ {
		got, loaded, err := revived.Get(key)
		if err != nil {
			t.Fatalf("Get(%d) on reattached map failed: %v", key, err)
		}
		if !loaded || got != fmt.Sprintf("v%d", key) {
			t.Errorf("reattached Get(%d) = (%q, %v)", key, got, loaded)
		}
	}

	// maps over other namespaces must not see this state
	other := newMapOn(t, store, "elsewhere")
	if other.Len() != 0 {
		t.Errorf("foreign namespace sees %d entries", other.Len())
	}
}
