package internal

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rowan-kv/rowan/lib/storage/util"
)

// --------------------------------------------------------------------------
// Shard Type (partition of the store)
// --------------------------------------------------------------------------

// Shard represents a partition of the store.
// Each shard has its own independent concurrent map.
type Shard struct {
	Data *xsync.MapOf[string, []byte] // Map of address -> value entries
}

// NewShard creates a new empty shard
func NewShard() *Shard {
	return &Shard{
		Data: xsync.NewMapOf[string, []byte](),
	}
}

// GetShard returns the appropriate shard for a given address
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard(addr []byte, seed uint64, shards []*Shard) *Shard {
	hash := util.HashBytes(addr, seed)
	// Shift right by 7 bits to use higher-quality bits for distribution
	shardPos := (hash >> 7) % uint64(len(shards))
	return shards[shardPos]
}
