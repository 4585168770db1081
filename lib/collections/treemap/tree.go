package treemap

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/collections/lookupmap"
	"github.com/rowan-kv/rowan/lib/storage"
)

// CompareFunc defines the total order of keys in a Tree.
// It returns a negative number if a < b, zero if a == b and a positive
// number if a > b.
type CompareFunc[K any] func(a, b K) int

// --------------------------------------------------------------------------
// Persisted header
// --------------------------------------------------------------------------

// headerSize is the serialized size of the tree header:
// root (4) + count (4) + nextID (4)
const headerSize = 12

// header is the persisted root record of a tree: the current root id, the
// live node count and the id-allocation counter. The counter is monotonic
// and must survive reattachment - resetting it would re-issue live ids.
type header struct {
	root   uint32
	count  uint32
	nextID uint32
}

func (h header) marshal() []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint32(buf[0:4], h.root)
	binary.BigEndian.PutUint32(buf[4:8], h.count)
	binary.BigEndian.PutUint32(buf[8:12], h.nextID)
	return buf
}

func unmarshalHeader(data []byte) (header, error) {
	if len(data) != headerSize {
		return header{}, fmt.Errorf("treemap: header record has %d bytes, expected %d", len(data), headerSize)
	}
	return header{
		root:   binary.BigEndian.Uint32(data[0:4]),
		count:  binary.BigEndian.Uint32(data[4:8]),
		nextID: binary.BigEndian.Uint32(data[8:12]),
	}, nil
}

// --------------------------------------------------------------------------
// Tree
// --------------------------------------------------------------------------

// Tree is a persisted AVL index over keys of type K. Every node is stored
// as a separate entry in a LookupMap keyed by a monotonically issued node
// id; no node ever lives in memory across calls. All operations cost
// O(log n) storage reads, mutations additionally O(log n) storage writes.
//
// The Tree only orders keys. Value payloads live in a separate LookupMap
// managed by TreeMap.
type Tree[K any] struct {
	store      storage.Store
	nodes      *lookupmap.LookupMap[uint32, node[K]]
	cmp        CompareFunc[K]
	headerAddr []byte
	hdr        header
}

// NewTree creates a tree index over the given store and namespace, or
// reattaches to the state a previous instance left under the same
// namespace. Reattaching reproduces the same root and count.
func NewTree[K any](store storage.Store, namespace []byte, cmp CompareFunc[K], keyCodec codec.Codec[K]) (*Tree[K], error) {
	ns := make([]byte, len(namespace))
	copy(ns, namespace)

	// the header lives at a digest address derived from the namespace only
	hasher := sha256.New()
	hasher.Write(ns)
	hasher.Write([]byte("\x00header"))
	headerAddr := hasher.Sum(nil)

	t := &Tree[K]{
		store:      store,
		nodes:      lookupmap.New[uint32, node[K]](store, append(ns, []byte("\x00node")...), codec.Uint32(), nodeCodec[K]{keyCodec}),
		cmp:        cmp,
		headerAddr: headerAddr,
		hdr:        header{root: nilID, count: 0, nextID: 1},
	}

	data, loaded, err := store.Get(headerAddr)
	if err != nil {
		return nil, err
	}
	if loaded {
		hdr, err := unmarshalHeader(data)
		if err != nil {
			return nil, storage.NewError(storage.RetCCorruptedRecord, err.Error())
		}
		t.hdr = hdr
	}

	return t, nil
}

// writeHeader persists the cached header
func (t *Tree[K]) writeHeader() error {
	return t.store.Set(t.headerAddr, t.hdr.marshal())
}

// getNode loads a node by id. A missing or undecodable node breaks tree
// connectivity and surfaces as a fatal corrupted-record error.
func (t *Tree[K]) getNode(id uint32) (node[K], error) {
	n, loaded, err := t.nodes.Get(id)
	if err != nil {
		return n, err
	}
	if !loaded {
		return n, storage.NewError(storage.RetCCorruptedRecord,
			fmt.Sprintf("treemap: tree node %d referenced but not stored", id))
	}
	return n, nil
}

// putNode stores a node under its id
func (t *Tree[K]) putNode(id uint32, n node[K]) error {
	return t.nodes.Set(id, n)
}

// heightOf returns the stored height of a subtree, 0 for the nil subtree
func (t *Tree[K]) heightOf(id uint32) (uint32, error) {
	if id == nilID {
		return 0, nil
	}
	n, err := t.getNode(id)
	if err != nil {
		return 0, err
	}
	return n.height, nil
}

// Len returns the number of keys in the tree, O(1).
func (t *Tree[K]) Len() uint32 {
	return t.hdr.count
}

// Height returns the height of the tree, 0 if empty.
func (t *Tree[K]) Height() (uint32, error) {
	return t.heightOf(t.hdr.root)
}

// --------------------------------------------------------------------------
// Lookup and navigation
// --------------------------------------------------------------------------

// Contains reports whether a key is present in the index.
func (t *Tree[K]) Contains(key K) (bool, error) {
	id := t.hdr.root
	for id != nilID {
		n, err := t.getNode(id)
		if err != nil {
			return false, err
		}
		c := t.cmp(key, n.key)
		switch {
		case c == 0:
			return true, nil
		case c < 0:
			id = n.left
		default:
			id = n.right
		}
	}
	return false, nil
}

// Min returns the globally smallest key, or false if the tree is empty.
func (t *Tree[K]) Min() (K, bool, error) {
	var zero K
	if t.hdr.root == nilID {
		return zero, false, nil
	}
	key, err := t.minKeyAt(t.hdr.root)
	if err != nil {
		return zero, false, err
	}
	return key, true, nil
}

// Max returns the globally largest key, or false if the tree is empty.
func (t *Tree[K]) Max() (K, bool, error) {
	var zero K
	id := t.hdr.root
	if id == nilID {
		return zero, false, nil
	}
	for {
		n, err := t.getNode(id)
		if err != nil {
			return zero, false, err
		}
		if n.right == nilID {
			return n.key, true, nil
		}
		id = n.right
	}
}

// minKeyAt returns the smallest key in the subtree rooted at id
func (t *Tree[K]) minKeyAt(id uint32) (K, error) {
	var zero K
	for {
		n, err := t.getNode(id)
		if err != nil {
			return zero, err
		}
		if n.left == nilID {
			return n.key, nil
		}
		id = n.left
	}
}

// Floor returns the largest key <= the given key.
func (t *Tree[K]) Floor(key K) (K, bool, error) {
	return t.seek(key, true, true)
}

// Ceil returns the smallest key >= the given key.
func (t *Tree[K]) Ceil(key K) (K, bool, error) {
	return t.seek(key, false, true)
}

// Lower returns the largest key strictly < the given key.
func (t *Tree[K]) Lower(key K) (K, bool, error) {
	return t.seek(key, true, false)
}

// Higher returns the smallest key strictly > the given key.
func (t *Tree[K]) Higher(key K) (K, bool, error) {
	return t.seek(key, false, false)
}

// seek descends from the root keeping the best candidate seen so far.
// below selects the direction (largest key below vs. smallest key above),
// inclusive controls whether an exact match qualifies.
func (t *Tree[K]) seek(key K, below, inclusive bool) (K, bool, error) {
	var best K
	found := false

	id := t.hdr.root
	for id != nilID {
		n, err := t.getNode(id)
		if err != nil {
			var zero K
			return zero, false, err
		}

		c := t.cmp(n.key, key)
		if c == 0 && inclusive {
			return n.key, true, nil
		}

		if below {
			if c < 0 {
				best = n.key
				found = true
				id = n.right
			} else {
				id = n.left
			}
		} else {
			if c > 0 {
				best = n.key
				found = true
				id = n.left
			} else {
				id = n.right
			}
		}
	}
	return best, found, nil
}

// --------------------------------------------------------------------------
// Mutation
// --------------------------------------------------------------------------

// Insert adds a key to the index. It returns false without any structural
// change if the key is already present; duplicate keys are disallowed.
func (t *Tree[K]) Insert(key K) (bool, error) {
	newRoot, added, err := t.insertAt(t.hdr.root, key)
	if err != nil {
		return false, err
	}
	if !added {
		return false, nil
	}

	t.hdr.root = newRoot
	t.hdr.count++
	return true, t.writeHeader()
}

// insertAt inserts key into the subtree rooted at id and returns the id of
// the (possibly rotated) new subtree root.
func (t *Tree[K]) insertAt(id uint32, key K) (uint32, bool, error) {
	if id == nilID {
		newID := t.hdr.nextID
		t.hdr.nextID++
		return newID, true, t.putNode(newID, node[K]{key: key, height: 1})
	}

	n, err := t.getNode(id)
	if err != nil {
		return nilID, false, err
	}

	c := t.cmp(key, n.key)
	if c == 0 {
		// existing key, update is the map's responsibility
		return id, false, nil
	}

	var childID uint32
	var added bool
	if c < 0 {
		childID, added, err = t.insertAt(n.left, key)
		n.left = childID
	} else {
		childID, added, err = t.insertAt(n.right, key)
		n.right = childID
	}
	if err != nil {
		return nilID, false, err
	}
	if !added {
		return id, false, nil
	}

	newID, err := t.rebalanceAt(id, n)
	return newID, true, err
}

// Remove deletes a key from the index. Removing an absent key is a no-op
// and returns false.
func (t *Tree[K]) Remove(key K) (bool, error) {
	newRoot, removed, err := t.removeAt(t.hdr.root, key)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	t.hdr.root = newRoot
	t.hdr.count--
	return true, t.writeHeader()
}

// removeAt deletes key from the subtree rooted at id and returns the id of
// the new subtree root. A node with two children is not deleted itself:
// the in-order successor's key is substituted in and the successor node
// (which has at most one child) is deleted instead.
func (t *Tree[K]) removeAt(id uint32, key K) (uint32, bool, error) {
	if id == nilID {
		return nilID, false, nil
	}

	n, err := t.getNode(id)
	if err != nil {
		return nilID, false, err
	}

	c := t.cmp(key, n.key)
	var removed bool
	switch {
	case c < 0:
		n.left, removed, err = t.removeAt(n.left, key)
	case c > 0:
		n.right, removed, err = t.removeAt(n.right, key)
	default:
		if n.left == nilID || n.right == nilID {
			// at most one child, the node is unlinked and its slot freed
			child := n.left
			if child == nilID {
				child = n.right
			}
			if _, err := t.nodes.Delete(id); err != nil {
				return nilID, false, err
			}
			return child, true, nil
		}

		// two children: substitute the in-order successor's key, then
		// delete the successor from the right subtree
		succ, err := t.minKeyAt(n.right)
		if err != nil {
			return nilID, false, err
		}
		n.key = succ
		n.right, removed, err = t.removeAt(n.right, succ)
	}
	if err != nil {
		return nilID, false, err
	}
	if !removed {
		return id, false, nil
	}

	newID, err := t.rebalanceAt(id, n)
	return newID, true, err
}

// --------------------------------------------------------------------------
// Rebalancing
// --------------------------------------------------------------------------

// rebalanceAt recomputes the height of the node, performs the appropriate
// rotation if its balance factor left {-1,0,1}, writes every touched node
// and returns the id of the new subtree root.
func (t *Tree[K]) rebalanceAt(id uint32, n node[K]) (uint32, error) {
	lh, err := t.heightOf(n.left)
	if err != nil {
		return nilID, err
	}
	rh, err := t.heightOf(n.right)
	if err != nil {
		return nilID, err
	}
	n.height = 1 + max(lh, rh)

	balance := int64(lh) - int64(rh)
	switch {
	case balance > 1:
		// left-heavy: distinguish left-left from left-right
		l, err := t.getNode(n.left)
		if err != nil {
			return nilID, err
		}
		llh, err := t.heightOf(l.left)
		if err != nil {
			return nilID, err
		}
		lrh, err := t.heightOf(l.right)
		if err != nil {
			return nilID, err
		}
		if llh < lrh {
			// left-right: first rotate the left child left
			newLeft, err := t.rotateLeft(n.left, l)
			if err != nil {
				return nilID, err
			}
			n.left = newLeft
		}
		return t.rotateRight(id, n)

	case balance < -1:
		// right-heavy: distinguish right-right from right-left
		r, err := t.getNode(n.right)
		if err != nil {
			return nilID, err
		}
		rlh, err := t.heightOf(r.left)
		if err != nil {
			return nilID, err
		}
		rrh, err := t.heightOf(r.right)
		if err != nil {
			return nilID, err
		}
		if rrh < rlh {
			// right-left: first rotate the right child right
			newRight, err := t.rotateRight(n.right, r)
			if err != nil {
				return nilID, err
			}
			n.right = newRight
		}
		return t.rotateLeft(id, n)

	default:
		return id, t.putNode(id, n)
	}
}

// rotateRight lifts the left child above the node. Touches 2 persisted
// nodes; the caller has already loaded both.
func (t *Tree[K]) rotateRight(id uint32, n node[K]) (uint32, error) {
	leftID := n.left
	l, err := t.getNode(leftID)
	if err != nil {
		return nilID, err
	}

	n.left = l.right
	if err := t.reheight(&n); err != nil {
		return nilID, err
	}
	if err := t.putNode(id, n); err != nil {
		return nilID, err
	}

	l.right = id
	llh, err := t.heightOf(l.left)
	if err != nil {
		return nilID, err
	}
	l.height = 1 + max(llh, n.height)
	return leftID, t.putNode(leftID, l)
}

// rotateLeft lifts the right child above the node, mirror of rotateRight.
func (t *Tree[K]) rotateLeft(id uint32, n node[K]) (uint32, error) {
	rightID := n.right
	r, err := t.getNode(rightID)
	if err != nil {
		return nilID, err
	}

	n.right = r.left
	if err := t.reheight(&n); err != nil {
		return nilID, err
	}
	if err := t.putNode(id, n); err != nil {
		return nilID, err
	}

	r.left = id
	rrh, err := t.heightOf(r.right)
	if err != nil {
		return nilID, err
	}
	r.height = 1 + max(n.height, rrh)
	return rightID, t.putNode(rightID, r)
}

// reheight recomputes a node's height from its children
func (t *Tree[K]) reheight(n *node[K]) error {
	lh, err := t.heightOf(n.left)
	if err != nil {
		return err
	}
	rh, err := t.heightOf(n.right)
	if err != nil {
		return err
	}
	n.height = 1 + max(lh, rh)
	return nil
}

// --------------------------------------------------------------------------
// Range support
// --------------------------------------------------------------------------

// countRange returns the exact number of keys within the given bounds.
// Subtrees entirely outside the bounds are pruned, so the cost is
// O(k + log n) node reads for k keys in range.
func (t *Tree[K]) countRange(min, max Bound[K]) (uint32, error) {
	return t.countRangeAt(t.hdr.root, min, max)
}

func (t *Tree[K]) countRangeAt(id uint32, min, max Bound[K]) (uint32, error) {
	if id == nilID {
		return 0, nil
	}

	n, err := t.getNode(id)
	if err != nil {
		return 0, err
	}

	if t.belowMin(n.key, min) {
		return t.countRangeAt(n.right, min, max)
	}
	if t.aboveMax(n.key, max) {
		return t.countRangeAt(n.left, min, max)
	}

	left, err := t.countRangeAt(n.left, min, max)
	if err != nil {
		return 0, err
	}
	right, err := t.countRangeAt(n.right, min, max)
	if err != nil {
		return 0, err
	}
	return left + right + 1, nil
}

// belowMin reports whether key falls below the lower bound
func (t *Tree[K]) belowMin(key K, min Bound[K]) bool {
	switch min.kind {
	case boundIncluded:
		return t.cmp(key, min.key) < 0
	case boundExcluded:
		return t.cmp(key, min.key) <= 0
	default:
		return false
	}
}

// aboveMax reports whether key falls above the upper bound
func (t *Tree[K]) aboveMax(key K, max Bound[K]) bool {
	switch max.kind {
	case boundIncluded:
		return t.cmp(key, max.key) > 0
	case boundExcluded:
		return t.cmp(key, max.key) >= 0
	default:
		return false
	}
}
