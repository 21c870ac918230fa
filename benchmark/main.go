// Package main is a performance benchmark for the repodex CLI.
// It synthesizes entity catalogs of several sizes, runs each build multiple times,
// treats the first cached run as cold and averages the rest as warm,
// and writes the timings to CSV.
//
// Prerequisites:
// - repodex binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Scratch directory for generated catalogs and build output
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Catalog     string
	Entities    int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Sizes       []int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sizes:       []int{1_000, 10_000, 50_000},
	}

	if _, err := exec.LookPath("repodex"); err != nil {
		fmt.Printf("Prerequisites check failed: repodex binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// writeCatalog generates n entities, two thirds GitHub and one third Hugging Face,
// plus an activity file covering every repository.
func writeCatalog(dir string, n int) (entities, activity string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	rng := rand.New(rand.NewPCG(uint64(n), 42))
	words := []string{"vision", "speech", "llm", "tokenizer", "rag", "agent", "diffusion", "embedding", "pytorch", "benchmark"}

	entities = filepath.Join(dir, "entities.jsonl")
	f, err := os.Create(entities)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	signals := make(map[string]any)
	for i := range n {
		desc := words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))]
		if i%3 == 2 {
			err = enc.Encode(map[string]any{
				"source": "huggingface", "id": "org/model-" + strconv.Itoa(i), "name": "model-" + strconv.Itoa(i),
				"description": desc, "downloads": rng.IntN(1_000_000), "likes": rng.IntN(5_000),
			})
		} else {
			full := "org/repo-" + strconv.Itoa(i)
			err = enc.Encode(map[string]any{
				"source": "github", "id": strconv.Itoa(i), "name": "repo-" + strconv.Itoa(i), "full_name": full,
				"description": desc, "stars": rng.IntN(100_000), "forks": rng.IntN(10_000),
			})
			signals[full] = map[string]any{
				"pull_requests": map[string]any{"merged_60d": rng.IntN(50)},
				"issues":        map[string]any{"opened_60d": rng.IntN(40), "closed_60d": rng.IntN(40)},
			}
		}
		if err != nil {
			return "", "", err
		}
	}

	activity = filepath.Join(dir, "activity.json")
	data, err := json.Marshal(signals)
	if err != nil {
		return "", "", err
	}
	return entities, activity, os.WriteFile(activity, data, 0o644)
}

// runBenchmarks executes the build suite for every catalog size.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d catalogs, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Sizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, n := range config.Sizes {
		name := fmt.Sprintf("catalog-%d", n)
		dir := filepath.Join(config.WorkDir, name)
		entities, activity, err := writeCatalog(dir, n)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		results = append(results, runBenchmarkSuite(config, name, n, dir, entities, activity))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one catalog.
func runBenchmarkSuite(config BenchmarkConfig, name string, n int, dir, entities, activity string) BenchmarkResult {
	fmt.Printf("Benchmarking %s\n", name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, entities, activity, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs start from an empty health cache
	clearCmd := exec.Command("repodex", "cache", "clear")
	clearCmd.Dir = dir
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Catalog:     name,
		Entities:    n,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes repodex build multiple times with the given cache backend and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, dir, entities, activity, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"build", "--input", entities, "--activity", activity, "--cache-backend", cacheBackend, "--snapshot-backend", "none"}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("repodex", args...)
		cmd.Dir = dir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), "Build completed in") {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/repodex_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"catalog", "entities", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Catalog, strconv.Itoa(r.Entities), r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", r.Catalog, r.NoCacheTime, r.ColdTime, r.WarmTime)
	}
}
