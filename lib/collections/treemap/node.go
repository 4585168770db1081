package treemap

import (
	"encoding/binary"
	"fmt"

	"github.com/rowan-kv/rowan/lib/codec"
)

// nilID is the sentinel for "no node". Node ids are issued starting at 1.
const nilID uint32 = 0

// node is one tree vertex. The key is immutable for the lifetime of the
// node id except during successor substitution on removal; children are
// referenced by id only, never by pointer, because the tree has no
// persistent address space to point into.
type node[K any] struct {
	key    K
	left   uint32
	right  uint32
	height uint32 // height of the subtree rooted here, leaf = 1
}

// --------------------------------------------------------------------------
// Node serialization
// --------------------------------------------------------------------------

// nodeHeaderSize is the fixed part of a serialized node:
// left (4) + right (4) + height (4) + key length (4)
const nodeHeaderSize = 16

// nodeCodec serializes tree nodes as a fixed binary header followed by the
// raw key bytes. The raw key is kept deserializable so ordered re-traversal
// can recover it from the stored record.
type nodeCodec[K any] struct {
	keyCodec codec.Codec[K]
}

func (c nodeCodec[K]) Marshal(n node[K]) ([]byte, error) {
	keyBytes, err := c.keyCodec.Marshal(n.key)
	if err != nil {
		return nil, fmt.Errorf("treemap: marshal node key: %w", err)
	}

	buf := make([]byte, nodeHeaderSize+len(keyBytes))
	binary.BigEndian.PutUint32(buf[0:4], n.left)
	binary.BigEndian.PutUint32(buf[4:8], n.right)
	binary.BigEndian.PutUint32(buf[8:12], n.height)
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(keyBytes)))
	copy(buf[nodeHeaderSize:], keyBytes)
	return buf, nil
}

func (c nodeCodec[K]) Unmarshal(data []byte) (node[K], error) {
	var n node[K]

	if len(data) < nodeHeaderSize {
		return n, fmt.Errorf("treemap: node record too short: %d bytes", len(data))
	}
	n.left = binary.BigEndian.Uint32(data[0:4])
	n.right = binary.BigEndian.Uint32(data[4:8])
	n.height = binary.BigEndian.Uint32(data[8:12])

	keyLen := binary.BigEndian.Uint32(data[12:16])
	if uint32(len(data)-nodeHeaderSize) != keyLen {
		return n, fmt.Errorf("treemap: node record key length mismatch: header says %d, got %d",
			keyLen, len(data)-nodeHeaderSize)
	}

	key, err := c.keyCodec.Unmarshal(data[nodeHeaderSize:])
	if err != nil {
		return n, fmt.Errorf("treemap: unmarshal node key: %w", err)
	}
	n.key = key
	return n, nil
}
