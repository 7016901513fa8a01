// Package main provides a performance benchmarking tool for the CivicLens CLI.
// It measures how long the timeline commands take against a live dashboard backend,
// running each command several times without a response cache and then with the
// SQLite cache, treating the first cached run as cold and averaging the rest as warm.
// Results are written as CSV for documentation.
//
// Prerequisites:
// - civiclens binary installed and available in PATH
// - a dashboard backend reachable at the given URL
//
// Usage: go run benchmark/main.go [api-url] [event-id...]
//
//	api-url:  Base URL of the dashboard backend
//	event-id: Events to merge (defaults to 1 2 3)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Scenario    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	APIURL      string
	EventIDs    []string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
}

// scenario is one command line to time.
type scenario struct {
	name    string
	command string
	args    []string
	success string
}

func main() {
	// Parse command line arguments
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [api-url] [event-id...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		APIURL:      os.Args[1],
		EventIDs:    []string{"1", "2", "3"},
		Timeout:     2 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
	}
	if len(os.Args) > 2 {
		config.EventIDs = os.Args[2:]
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using civiclens cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("civiclens", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the civiclens binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("civiclens"); err != nil {
		return fmt.Errorf("civiclens binary not found in PATH")
	}
	return nil
}

// scenarios lists the command lines timed for the configured events.
func scenarios(config BenchmarkConfig) []scenario {
	first := config.EventIDs[0]
	return []scenario{
		{name: "merge " + strings.Join(config.EventIDs, ","), command: "merge", args: config.EventIDs, success: "Merged"},
		{name: "merge cumulative", command: "merge", args: append([]string{"--cumulative"}, config.EventIDs...), success: "Merged"},
		{name: "trend " + first, command: "trend", args: []string{first}, success: "Trend for"},
	}
}

// runBenchmarks executes all benchmark scenarios
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d events, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.EventIDs), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, sc := range scenarios(config) {
		results = append(results, runBenchmarkSuite(config, sc))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a scenario
func runBenchmarkSuite(config BenchmarkConfig, sc scenario) BenchmarkResult {
	fmt.Printf("Running %s\n", sc.name)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, sc, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Scenario:    sc.name,
		Command:     sc.command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a civiclens command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, sc scenario, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{sc.command,
		"--api-url", config.APIURL,
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprint(config.Workers),
	}
	args = append(args, sc.args...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("civiclens", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), sc.success) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
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
	filename := fmt.Sprintf("/tmp/civiclens_benchmark_%s.csv", timestamp)

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

	// Write header
	if err := writer.Write([]string{"scenario", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Scenario, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
