package cedar

import (
	"testing"

	"github.com/rowan-kv/rowan/lib/storage"
	storetesting "github.com/rowan-kv/rowan/lib/storage/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "CedarStore", func() storage.Store {
		return NewCedarStore(nil)
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "CedarStore", func() storage.Store {
		return NewCedarStore(nil)
	})
}
