package om

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rowan-kv/rowan/cmd/util"
	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/collections/treemap"
	"github.com/rowan-kv/rowan/lib/storage/engines/cedar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "In-process performance test for the ordered map",
		Long:    "Benchmarks insert, get, remove and iteration against a fresh in-memory store and reports ns/op plus latency percentiles.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeySpread = 1000
	perfSkip      = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert,get)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfKeySpread = viper.GetInt("keys")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfResult couples the throughput measurement with the latency
// distribution of one benchmark
type perfResult struct {
	bench testing.BenchmarkResult
	timer metrics.Timer
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance test for the ordered map")
	fmt.Println()
	fmt.Printf("Keys: %d\n", perfKeySpread)
	fmt.Println()
	fmt.Println("starting tests...")

	// the perf map runs on its own in-memory store, never on the snapshot
	perfStore := cedar.NewCedarStore(nil)
	defer perfStore.Close()

	perfMap, err := treemap.NewOrdered[string, string](perfStore, []byte("perf"), codec.String(), codec.String())
	if err != nil {
		return err
	}

	results := make(map[string]perfResult)

	insertTimer := metrics.NewTimer()
	insertResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("insert") {
			return
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			key := perfKey(i)
			insertTimer.Time(func() {
				if _, _, err := perfMap.Insert(key, "test"); err != nil {
					b.Fatalf("(insert) - error inserting key: %v", err)
				}
			})
		}
	})
	results["insert"] = perfResult{insertResult, insertTimer}
	printPerfResult("insert", results["insert"])

	// make sure the key spread is fully populated for the read tests
	for i := 0; i < perfKeySpread; i++ {
		if _, _, err := perfMap.Insert(perfKey(i), "test"); err != nil {
			return err
		}
	}

	getTimer := metrics.NewTimer()
	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			key := perfKey(i)
			getTimer.Time(func() {
				if _, _, err := perfMap.Get(key); err != nil {
					b.Fatalf("(get) - error getting key: %v", err)
				}
			})
		}
	})
	results["get"] = perfResult{getResult, getTimer}
	printPerfResult("get", results["get"])

	seekTimer := metrics.NewTimer()
	seekResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("seek") {
			return
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			key := perfKey(i)
			seekTimer.Time(func() {
				if _, _, err := perfMap.CeilKey(key); err != nil {
					b.Fatalf("(seek) - error seeking key: %v", err)
				}
			})
		}
	})
	results["seek"] = perfResult{seekResult, seekTimer}
	printPerfResult("seek", results["seek"])

	iterateTimer := metrics.NewTimer()
	iterateResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("iterate") {
			return
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			iterateTimer.Time(func() {
				it := perfMap.Keys()
				for {
					if _, ok := it.Next(); !ok {
						break
					}
				}
				if err := it.Err(); err != nil {
					b.Fatalf("(iterate) - error iterating: %v", err)
				}
			})
		}
	})
	results["iterate"] = perfResult{iterateResult, iterateTimer}
	printPerfResult("iterate", results["iterate"])

	removeTimer := metrics.NewTimer()
	removeResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("remove") {
			return
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			key := perfKey(i)
			removeTimer.Time(func() {
				if _, _, err := perfMap.Remove(key); err != nil {
					b.Fatalf("(remove) - error removing key: %v", err)
				}
			})
			// re-insert so every iteration removes a live key
			b.StopTimer()
			if _, _, err := perfMap.Insert(key, "test"); err != nil {
				b.Fatalf("(remove) - error re-inserting key: %v", err)
			}
			b.StartTimer()
		}
	})
	results["remove"] = perfResult{removeResult, removeTimer}
	printPerfResult("remove", results["remove"])

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// perfKey returns a test key by index (with wraparound over the key spread)
func perfKey(i int) string {
	return fmt.Sprintf("__perf-%08d", i%perfKeySpread)
}

// printPerfResult prints the result of a benchmark test in a formatted way
func printPerfResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result with the latency distribution
	fmt.Printf("%-12s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(result.timer.Percentile(0.50)),
		time.Duration(result.timer.Percentile(0.95)),
		time.Duration(result.timer.Percentile(0.99)),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"P50", "P95", "P99", "Codec", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.bench.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			time.Duration(result.timer.Percentile(0.50)).String(),
			time.Duration(result.timer.Percentile(0.95)).String(),
			time.Duration(result.timer.Percentile(0.99)).String(),
			viper.GetString("codec"),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
