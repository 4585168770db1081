package cedar

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/rowan-kv/rowan/lib/storage"
	"github.com/rowan-kv/rowan/lib/storage/engines/cedar/internal"
	"github.com/rowan-kv/rowan/lib/storage/util"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for store behavior and structure
const (
	magicNum     = "CEDARDB\x00" // File format identifier
	cedarVersion = 1             // Snapshot format version
)

// --------------------------------------------------------------------------
// Core Cedar store structure
// --------------------------------------------------------------------------

// cedarImpl implements an in-memory byte-addressed store with sharded data
type cedarImpl struct {
	numShards int               // Number of shards
	seed      uint64            // Seed for the shard-selection hash
	shards    []*internal.Shard // Array of shards

	// operation counters (exported via VictoriaMetrics)
	readsTotal   *metrics.Counter
	writesTotal  *metrics.Counter
	removesTotal *metrics.Counter
	hitsTotal    *metrics.Counter
	missesTotal  *metrics.Counter
}

// StoreOptions configures the cedarImpl behavior during initialization
type StoreOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default cedarImpl options
func DefaultOptions() *StoreOptions {
	return &StoreOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewCedarStore creates a new cedar store instance with the specified
// options (optional).
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func NewCedarStore(opts *StoreOptions) storage.Store {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	// Generate a seed for this cedarImpl instance
	seed := util.GenerateSeed()

	// Create shards
	shards := make([]*internal.Shard, opts.NumShards)
	for i := 0; i < opts.NumShards; i++ {
		shards[i] = internal.NewShard()
	}

	return &cedarImpl{
		numShards: opts.NumShards,
		seed:      seed,
		shards:    shards,

		readsTotal:   metrics.GetOrCreateCounter(`rowan_store_ops_total{engine="cedar",op="read"}`),
		writesTotal:  metrics.GetOrCreateCounter(`rowan_store_ops_total{engine="cedar",op="write"}`),
		removesTotal: metrics.GetOrCreateCounter(`rowan_store_ops_total{engine="cedar",op="remove"}`),
		hitsTotal:    metrics.GetOrCreateCounter(`rowan_store_lookups_total{engine="cedar",result="hit"}`),
		missesTotal:  metrics.GetOrCreateCounter(`rowan_store_lookups_total{engine="cedar",result="miss"}`),
	}
}

// --------------------------------------------------------------------------
// Core Store Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates the entry at the given address.
// If the address already holds a value, the old value is overwritten.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (cedar *cedarImpl) Set(addr []byte, value []byte) error {
	shard := internal.GetShard(addr, cedar.seed, cedar.shards)

	// Copy value to prevent memory corruption through caller-held slices
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	shard.Data.Store(string(addr), valueCopy)
	cedar.writesTotal.Inc()
	return nil
}

// Remove deletes the entry at the given address and returns the previous
// value (if any).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (cedar *cedarImpl) Remove(addr []byte) ([]byte, bool, error) {
	shard := internal.GetShard(addr, cedar.seed, cedar.shards)

	prev, loaded := shard.Data.LoadAndDelete(string(addr))
	cedar.removesTotal.Inc()
	if !loaded {
		return nil, false, nil
	}
	return prev, true, nil
}

// --------------------------------------------------------------------------
// Core Store Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves the value at an address.
// The returned value is a copy of the stored data and therefore safe to use
// and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (cedar *cedarImpl) Get(addr []byte) ([]byte, bool, error) {
	shard := internal.GetShard(addr, cedar.seed, cedar.shards)

	cedar.readsTotal.Inc()
	value, loaded := shard.Data.Load(string(addr))
	if !loaded {
		cedar.missesTotal.Inc()
		return nil, false, nil
	}
	cedar.hitsTotal.Inc()

	data := make([]byte, len(value))
	copy(data, value)
	return data, true, nil
}

// Has checks if an entry exists at the given address.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (cedar *cedarImpl) Has(addr []byte) (bool, error) {
	shard := internal.GetShard(addr, cedar.seed, cedar.shards)

	cedar.readsTotal.Inc()
	_, loaded := shard.Data.Load(string(addr))
	return loaded, nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the store to the writer.
// Concurrent reading is allowed during a Save operation; the snapshot is
// fuzzy with respect to concurrent writes.
func (cedar *cedarImpl) Save(w io.Writer) error {
	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	type entryToSave struct {
		addr  string
		value []byte
	}

	// Collect snapshots of all shards
	var entries []entryToSave
	for _, shard := range cedar.shards {
		shard.Data.Range(func(addr string, value []byte) bool {
			valueCopy := make([]byte, len(value))
			copy(valueCopy, value)
			entries = append(entries, entryToSave{addr, valueCopy})
			return true
		})
	}

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}

	// Write snapshot version
	if err := binary.Write(bw, binary.LittleEndian, uint8(cedarVersion)); err != nil {
		return err
	}

	// Write seed
	if err := binary.Write(bw, binary.LittleEndian, cedar.seed); err != nil {
		return err
	}

	// Write total entry count
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	// Write entries as length-prefixed address/value records
	for _, item := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(item.addr))); err != nil {
			return err
		}
		if _, err := bw.WriteString(item.addr); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(item.value))); err != nil {
			return err
		}
		if _, err := bw.Write(item.value); err != nil {
			return err
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// Load restores a store from the reader.
//
// Thread-safety: This function is not thread-safe and should not be called
// concurrently with any other operation.
func (cedar *cedarImpl) Load(r io.Reader) error {

	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != cedarVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, cedarVersion)
	}

	// Read seed
	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	// Recreate empty shards with the loaded seed
	shards := make([]*internal.Shard, cedar.numShards)
	for i := 0; i < cedar.numShards; i++ {
		shards[i] = internal.NewShard()
	}
	cedar.shards = shards
	cedar.seed = seed

	// Read entry count
	var entryCount uint64
	if err := binary.Read(br, binary.LittleEndian, &entryCount); err != nil {
		return err
	}

	// Read entries
	for i := uint64(0); i < entryCount; i++ {
		var addrLen uint32
		if err := binary.Read(br, binary.LittleEndian, &addrLen); err != nil {
			return err
		}
		addr := make([]byte, addrLen)
		if _, err := io.ReadFull(br, addr); err != nil {
			return err
		}

		var valueLen uint32
		if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
			return err
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return err
		}

		shard := internal.GetShard(addr, cedar.seed, cedar.shards)
		shard.Data.Store(string(addr), value)
	}

	return nil
}

// --------------------------------------------------------------------------
// Store Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the store
func (cedar *cedarImpl) GetInfo() storage.StoreInfo {

	// create a size histogram for the info
	histogram := util.NewSizeHistogram()
	samplesPerShard := 100
	wg := sync.WaitGroup{}
	wg.Add(len(cedar.shards))

	mu := sync.Mutex{}
	entryCount := 0
	shardSizes := make([]float64, len(cedar.shards))

	// concurrently collect samples from all shards
	for shardIndex, shard := range cedar.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			count := 0
			s.Data.Range(func(addr string, value []byte) bool {
				histogram.AddSample(len(value))

				// only sample a few entries per shard
				count++
				return count < samplesPerShard
			})

			mu.Lock()
			defer mu.Unlock()

			size := s.Data.Size()
			entryCount += size
			shardSizes[i] = float64(size)
		}(shardIndex, shard)
	}

	// wait for all shards to finish
	wg.Wait()

	// estimate per-entry size (addresses are typically 32-byte digests)
	entryOverhead := 32
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead

	// weighted estimate (60% median, 40% average)
	sizeBytes := (medianSize*60 + avgSize*40) / 100 * entryCount

	// Metadata for this specific store implementation
	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(cedar.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		Info:              "All values (including SizeBytes) are estimates and may vary depending on the store state.",
	}

	supportedFeatures := []storage.Feature{
		storage.FeatureGet, storage.FeatureSet,
		storage.FeatureRemove, storage.FeatureHas,
		storage.FeatureSave, storage.FeatureLoad,
	}

	return storage.StoreInfo{
		EntryCount:        entryCount,
		SizeBytes:         sizeBytes,
		StoreType:         storage.ImplCedar,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific Store feature
func (cedar *cedarImpl) SupportsFeature(feature storage.Feature) bool {
	supportedFeatures := storage.FeatureGet |
		storage.FeatureSet |
		storage.FeatureRemove |
		storage.FeatureHas |
		storage.FeatureSave |
		storage.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close releases the shard maps
func (cedar *cedarImpl) Close() error {
	return nil
}
