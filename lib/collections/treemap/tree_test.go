package treemap

import (
	"math"
	"testing"

	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/storage"
	"github.com/rowan-kv/rowan/lib/storage/engines/cedar"
)

func newTestTree(t *testing.T, namespace string) *Tree[int64] {
	t.Helper()
	store := cedar.NewCedarStore(nil)
	t.Cleanup(func() { store.Close() })
	return newTreeOn(t, store, namespace)
}

func newTreeOn(t *testing.T, store storage.Store, namespace string) *Tree[int64] {
	t.Helper()
	tree, err := NewTree[int64](store, []byte(namespace), func(a, b int64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}, codec.Int64())
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	return tree
}

func mustInsert(t *testing.T, tree *Tree[int64], key int64) {
	t.Helper()
	added, err := tree.Insert(key)
	if err != nil {
		t.Fatalf("Insert(%d) failed: %v", key, err)
	}
	if !added {
		t.Fatalf("Insert(%d) reported key already present", key)
	}
}

// validateSubtree walks a subtree and checks the search-tree ordering, the
// stored height bookkeeping and the AVL balance factor of every node.
// It returns the verified height of the subtree.
func validateSubtree(t *testing.T, tree *Tree[int64], id uint32, lower, upper *int64) uint32 {
	t.Helper()
	if id == nilID {
		return 0
	}

	n, err := tree.getNode(id)
	if err != nil {
		t.Fatalf("getNode(%d) failed: %v", id, err)
	}

	if lower != nil && n.key <= *lower {
		t.Fatalf("node %d: key %d violates lower bound %d", id, n.key, *lower)
	}
	if upper != nil && n.key >= *upper {
		t.Fatalf("node %d: key %d violates upper bound %d", id, n.key, *upper)
	}

	lh := validateSubtree(t, tree, n.left, lower, &n.key)
	rh := validateSubtree(t, tree, n.right, &n.key, upper)

	if want := 1 + max(lh, rh); n.height != want {
		t.Fatalf("node %d: stored height %d, computed %d", id, n.height, want)
	}

	balance := int64(lh) - int64(rh)
	if balance < -1 || balance > 1 {
		t.Fatalf("node %d: balance factor %d outside {-1,0,1}", id, balance)
	}

	return n.height
}

func validateTree(t *testing.T, tree *Tree[int64]) {
	t.Helper()
	validateSubtree(t, tree, tree.hdr.root, nil, nil)
}

// collectAscending drains the tree through navigation queries only
func collectAscending(t *testing.T, tree *Tree[int64]) []int64 {
	t.Helper()
	var keys []int64

	key, ok, err := tree.Min()
	if err != nil {
		t.Fatalf("Min failed: %v", err)
	}
	for ok {
		keys = append(keys, key)
		key, ok, err = tree.Higher(key)
		if err != nil {
			t.Fatalf("Higher(%d) failed: %v", keys[len(keys)-1], err)
		}
	}
	return keys
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestOrderInvariant(t *testing.T) {
	tree := newTestTree(t, "order")

	// deterministic pseudo-random insertion order
	inserted := map[int64]bool{}
	seed := int64(12345)
	for i := 0; i < 200; i++ {
		seed = (seed*6364136223846793005 + 1442695040888963407) % (1 << 31)
		key := seed % 1000
		if key < 0 {
			key = -key
		}
		added, err := tree.Insert(key)
		if err != nil {
			t.Fatalf("Insert(%d) failed: %v", key, err)
		}
		if added == inserted[key] {
			t.Fatalf("Insert(%d): added=%v but present=%v", key, added, inserted[key])
		}
		inserted[key] = true
	}

	// remove a third of them again
	i := 0
	for key := range inserted {
		if i%3 == 0 {
			removed, err := tree.Remove(key)
			if err != nil {
				t.Fatalf("Remove(%d) failed: %v", key, err)
			}
			if !removed {
				t.Fatalf("Remove(%d) reported key absent", key)
			}
			delete(inserted, key)
		}
		i++
	}

	validateTree(t, tree)

	keys := collectAscending(t, tree)
	if uint32(len(keys)) != tree.Len() {
		t.Fatalf("traversal found %d keys, Len reports %d", len(keys), tree.Len())
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("traversal not strictly increasing: %d before %d", keys[i-1], keys[i])
		}
	}
	for _, key := range keys {
		if !inserted[key] {
			t.Fatalf("traversal yielded key %d that should be absent", key)
		}
	}
}

func TestBalanceInvariant(t *testing.T) {
	tree := newTestTree(t, "balance")

	// ascending insertion is the classic AVL worst case
	n := int64(100)
	for key := int64(1); key <= n; key++ {
		mustInsert(t, tree, key)
		validateTree(t, tree)
	}

	height, err := tree.Height()
	if err != nil {
		t.Fatalf("Height failed: %v", err)
	}
	bound := 1.44*math.Log2(float64(n)+1) + 1
	if float64(height) > bound {
		t.Errorf("height %d exceeds AVL bound %.2f for %d keys", height, bound, n)
	}
}

func TestRemovalRebalancing(t *testing.T) {
	tree := newTestTree(t, "removal")

	for key := int64(1); key <= 7; key++ {
		mustInsert(t, tree, key)
	}

	removed, err := tree.Remove(1)
	if err != nil {
		t.Fatalf("Remove(1) failed: %v", err)
	}
	if !removed {
		t.Fatalf("Remove(1) reported key absent")
	}

	validateTree(t, tree)

	if got := collectAscending(t, tree); len(got) != 6 || got[0] != 2 || got[5] != 7 {
		t.Errorf("unexpected keys after removal: %v", got)
	}
}

func TestNavigationQueries(t *testing.T) {
	tree := newTestTree(t, "nav")

	for _, key := range []int64{2, 4, 6} {
		mustInsert(t, tree, key)
	}

	checks := []struct {
		name  string
		query func(int64) (int64, bool, error)
		arg   int64
		want  int64
		found bool
	}{
		{"Floor(5)", tree.Floor, 5, 4, true},
		{"Ceil(5)", tree.Ceil, 5, 6, true},
		{"Lower(4)", tree.Lower, 4, 2, true},
		{"Higher(4)", tree.Higher, 4, 6, true},
		{"Floor(1)", tree.Floor, 1, 0, false},
		{"Ceil(7)", tree.Ceil, 7, 0, false},
		{"Lower(2)", tree.Lower, 2, 0, false},
		{"Higher(6)", tree.Higher, 6, 0, false},
		{"Floor(4)", tree.Floor, 4, 4, true},
		{"Ceil(4)", tree.Ceil, 4, 4, true},
	}

	for _, check := range checks {
		got, found, err := check.query(check.arg)
		if err != nil {
			t.Fatalf("%s failed: %v", check.name, err)
		}
		if found != check.found || (found && got != check.want) {
			t.Errorf("%s = (%d, %v), want (%d, %v)", check.name, got, found, check.want, check.found)
		}
	}

	if key, ok, _ := tree.Min(); !ok || key != 2 {
		t.Errorf("Min = (%d, %v), want (2, true)", key, ok)
	}
	if key, ok, _ := tree.Max(); !ok || key != 6 {
		t.Errorf("Max = (%d, %v), want (6, true)", key, ok)
	}
}

func TestEmptyTreeQueries(t *testing.T) {
	tree := newTestTree(t, "empty")

	if _, ok, err := tree.Min(); ok || err != nil {
		t.Errorf("Min on empty tree = (ok=%v, err=%v)", ok, err)
	}
	if _, ok, err := tree.Max(); ok || err != nil {
		t.Errorf("Max on empty tree = (ok=%v, err=%v)", ok, err)
	}
	if _, ok, err := tree.Floor(10); ok || err != nil {
		t.Errorf("Floor on empty tree = (ok=%v, err=%v)", ok, err)
	}
	if tree.Len() != 0 {
		t.Errorf("Len on empty tree = %d", tree.Len())
	}
}

func TestIdempotentRemoval(t *testing.T) {
	tree := newTestTree(t, "idem")

	for _, key := range []int64{10, 20, 30} {
		mustInsert(t, tree, key)
	}

	removed, err := tree.Remove(15)
	if err != nil {
		t.Fatalf("Remove of absent key failed: %v", err)
	}
	if removed {
		t.Errorf("Remove of absent key reported true")
	}
	if tree.Len() != 3 {
		t.Errorf("Len changed after no-op removal: %d", tree.Len())
	}

	validateTree(t, tree)

	if got := collectAscending(t, tree); len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Errorf("structure changed after no-op removal: %v", got)
	}
}

func TestDuplicateInsert(t *testing.T) {
	tree := newTestTree(t, "dup")

	mustInsert(t, tree, 42)

	added, err := tree.Insert(42)
	if err != nil {
		t.Fatalf("duplicate Insert failed: %v", err)
	}
	if added {
		t.Errorf("duplicate Insert reported a structural change")
	}
	if tree.Len() != 1 {
		t.Errorf("Len = %d after duplicate insert, want 1", tree.Len())
	}
}

func TestReattachReproducesState(t *testing.T) {
	store := cedar.NewCedarStore(nil)
	defer store.Close()

	tree := newTreeOn(t, store, "reattach")
	for key := int64(1); key <= 50; key++ {
		mustInsert(t, tree, key)
	}
	for key := int64(1); key <= 50; key += 5 {
		if _, err := tree.Remove(key); err != nil {
			t.Fatalf("Remove(%d) failed: %v", key, err)
		}
	}

	// a fresh instance over the same namespace must see the same state
	revived := newTreeOn(t, store, "reattach")
	if revived.hdr.root != tree.hdr.root || revived.hdr.count != tree.hdr.count {
		t.Fatalf("reattached header %+v differs from original %+v", revived.hdr, tree.hdr)
	}

	// the id counter must survive too - a reset counter would re-issue
	// ids of live nodes
	if revived.hdr.nextID != tree.hdr.nextID {
		t.Fatalf("id counter not persisted: %d != %d", revived.hdr.nextID, tree.hdr.nextID)
	}

	validateTree(t, revived)
	if got, want := collectAscending(t, revived), collectAscending(t, tree); len(got) != len(want) {
		t.Errorf("reattached tree yields %d keys, want %d", len(got), len(want))
	}

	mustInsert(t, revived, 1000)
	validateTree(t, revived)
}

func TestMissingNodeIsFatal(t *testing.T) {
	tree := newTestTree(t, "corrupt")

	for key := int64(1); key <= 10; key++ {
		mustInsert(t, tree, key)
	}

	// tear the root node record out from under the tree
	if _, err := tree.nodes.Delete(tree.hdr.root); err != nil {
		t.Fatalf("failed to delete node record: %v", err)
	}

	_, _, err := tree.Min()
	if err == nil {
		t.Fatalf("expected traversal over missing node to fail")
	}
	if !storage.IsCorrupt(err) {
		t.Errorf("expected corrupted-record error, got %v", err)
	}
}
