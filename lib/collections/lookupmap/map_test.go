package lookupmap

import (
	"testing"

	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/storage/engines/cedar"
)

func newTestMap(t *testing.T, namespace string) *LookupMap[string, string] {
	t.Helper()
	store := cedar.NewCedarStore(nil)
	t.Cleanup(func() { store.Close() })
	return New(store, []byte(namespace), codec.String(), codec.String())
}

func TestGetSetRemove(t *testing.T) {
	m := newTestMap(t, "t1")

	// absent key is not an error
	_, loaded, err := m.Get("missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded {
		t.Errorf("Expected missing key to return loaded=false")
	}

	if err := m.Set("alpha", "one"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, loaded, err := m.Get("alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded || value != "one" {
		t.Errorf("Expected (one, true), got (%s, %v)", value, loaded)
	}

	prev, replaced, err := m.Remove("alpha")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !replaced || prev != "one" {
		t.Errorf("Expected removed value one, got (%s, %v)", prev, replaced)
	}

	// removing an absent key is a no-op
	_, replaced, err = m.Remove("alpha")
	if err != nil {
		t.Fatalf("Remove of absent key failed: %v", err)
	}
	if replaced {
		t.Errorf("Expected Remove of absent key to report false")
	}
}

func TestInsertReturnsPrevious(t *testing.T) {
	m := newTestMap(t, "t2")

	prev, replaced, err := m.Insert("key", "v1")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if replaced {
		t.Errorf("Expected no previous value, got %s", prev)
	}

	prev, replaced, err = m.Insert("key", "v2")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !replaced || prev != "v1" {
		t.Errorf("Expected previous value v1, got (%s, %v)", prev, replaced)
	}

	value, _, _ := m.Get("key")
	if value != "v2" {
		t.Errorf("Expected v2, got %s", value)
	}
}

func TestContains(t *testing.T) {
	m := newTestMap(t, "t3")

	ok, err := m.Contains("key")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Errorf("Expected Contains to return false for unset key")
	}

	_ = m.Set("key", "value")

	ok, _ = m.Contains("key")
	if !ok {
		t.Errorf("Expected Contains to return true after Set")
	}
}

func TestNamespaceIsolation(t *testing.T) {
	store := cedar.NewCedarStore(nil)
	defer store.Close()

	m1 := New(store, []byte("ns-a"), codec.String(), codec.String())
	m2 := New(store, []byte("ns-b"), codec.String(), codec.String())

	_ = m1.Set("shared-key", "from-a")
	_ = m2.Set("shared-key", "from-b")

	v1, _, _ := m1.Get("shared-key")
	v2, _, _ := m2.Get("shared-key")

	if v1 != "from-a" || v2 != "from-b" {
		t.Errorf("Namespaces interfere: got (%s, %s)", v1, v2)
	}

	_, _, _ = m1.Remove("shared-key")
	if ok, _ := m2.Contains("shared-key"); !ok {
		t.Errorf("Remove in one namespace must not affect the other")
	}
}

func TestTypedValues(t *testing.T) {
	store := cedar.NewCedarStore(nil)
	defer store.Close()

	type balance struct {
		Amount uint64
		Unit   string
	}

	m := New(store, []byte("balances"), codec.String(), codec.JSON[balance]())

	if err := m.Set("alice", balance{Amount: 100, Unit: "coins"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, loaded, err := m.Get("alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded || got.Amount != 100 || got.Unit != "coins" {
		t.Errorf("Expected {100 coins}, got %+v (loaded=%v)", got, loaded)
	}
}

func TestReattachSameNamespace(t *testing.T) {
	store := cedar.NewCedarStore(nil)
	defer store.Close()

	m1 := New(store, []byte("persistent"), codec.String(), codec.String())
	_ = m1.Set("key", "value")

	// a second map over the same namespace sees the same state
	m2 := New(store, []byte("persistent"), codec.String(), codec.String())
	value, loaded, err := m2.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded || value != "value" {
		t.Errorf("Expected reattached map to see (value, true), got (%s, %v)", value, loaded)
	}
}
