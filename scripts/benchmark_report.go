package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string // "avl" or "splay"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the base and other implementation for one operation and size.
type ComparisonResult struct {
	Operation   string
	Size        string
	BaseNs      float64
	OtherNs     float64
	Speedup     float64
	BaseMem     int64
	OtherMem    int64
	BaseAllocs  int64
	OtherAllocs int64
	BaseOnly    bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	baseImpl   = flag.String("base", "avl", "Implementation to measure speedup for")
	otherImpl  = flag.String("other", "splay", "Implementation to compare against")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	scanner := bufio.NewScanner(os.Stdin)
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		scanner = bufio.NewScanner(f)
	}

	results := parseBenchmarks(scanner)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results, *baseImpl, *otherImpl)
	report := generateMarkdownReport(comparisons, *baseImpl, *otherImpl)

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

// BenchmarkTable/avl/1000-8    1234    98765 ns/op    4096 B/op    8 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult
	for scanner.Scan() {
		line := scanner.Text()

		// go test -json wraps each line in an event
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		// Format: Benchmark<Operation>/<impl>/<size>-<procs>
		name := matches[1]
		parts := strings.Split(name, "/")
		if len(parts) < 3 {
			continue
		}

		r := BenchmarkResult{
			Name:      name,
			Operation: strings.TrimPrefix(parts[0], "Benchmark"),
			Impl:      parts[1],
			Size:      stripProcs(parts[len(parts)-1]),
		}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		results = append(results, r)
	}
	return results
}

func stripProcs(s string) string {
	if i := strings.LastIndex(s, "-"); i > 0 {
		return s[:i]
	}
	return s
}

func generateComparisons(results []BenchmarkResult, base, other string) []ComparisonResult {
	type key struct {
		operation string
		size      string
	}

	grouped := make(map[key]map[string]BenchmarkResult)
	for _, result := range results {
		k := key{result.Operation, result.Size}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][result.Impl] = result
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		b, hasBase := impls[base]
		if !hasBase {
			continue
		}
		c := ComparisonResult{
			Operation:  k.operation,
			Size:       k.size,
			BaseNs:     b.NsPerOp,
			BaseMem:    b.BytesPerOp,
			BaseAllocs: b.AllocsPerOp,
			BaseOnly:   true,
		}
		if o, ok := impls[other]; ok {
			c.OtherNs = o.NsPerOp
			c.OtherMem = o.BytesPerOp
			c.OtherAllocs = o.AllocsPerOp
			c.Speedup = o.NsPerOp / b.NsPerOp
			c.BaseOnly = false
		}
		comparisons = append(comparisons, c)
	}

	// Sizes are numeric element counts.
	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		si, _ := strconv.Atoi(comparisons[i].Size)
		sj, _ := strconv.Atoi(comparisons[j].Size)
		return si < sj
	})
	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, base, other string) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	baseFaster, otherFaster, comparable := 0, 0, 0
	totalSpeedup := 0.0
	for _, comp := range comparisons {
		if comp.BaseOnly {
			continue
		}
		comparable++
		totalSpeedup += comp.Speedup
		if comp.Speedup > 1.0 {
			baseFaster++
		} else if comp.Speedup < 1.0 {
			otherFaster++
		}
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	fmt.Fprintf(&sb, "- **Comparable**: %d\n", comparable)
	if comparable > 0 {
		fmt.Fprintf(&sb, "  - %s faster: %d\n", base, baseFaster)
		fmt.Fprintf(&sb, "  - %s faster: %d\n", other, otherFaster)
		fmt.Fprintf(&sb, "  - Average speedup: **%.2fx**\n", totalSpeedup/float64(comparable))
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	fmt.Fprintf(&sb, "| Operation | Size | %s (ns/op) | %s (ns/op) | Speedup | Memory (B/op) | Allocs |\n", base, other)
	sb.WriteString("|-----------|------|------|------|---------|---------------|--------|\n")

	for _, comp := range comparisons {
		if comp.BaseOnly {
			fmt.Fprintf(&sb, "| %s | %s | %s | *N/A* | *N/A* | %s | %s |\n",
				comp.Operation,
				comp.Size,
				formatNumber(comp.BaseNs),
				formatBytes(comp.BaseMem),
				formatNumber(float64(comp.BaseAllocs)),
			)
			continue
		}
		indicator := "✓"
		if comp.Speedup < 1.0 {
			indicator = "✗"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %.2fx %s | %s vs %s | %s vs %s |\n",
			comp.Operation,
			comp.Size,
			formatNumber(comp.BaseNs),
			formatNumber(comp.OtherNs),
			comp.Speedup,
			indicator,
			formatBytes(comp.BaseMem),
			formatBytes(comp.OtherMem),
			formatNumber(float64(comp.BaseAllocs)),
			formatNumber(float64(comp.OtherAllocs)),
		)
	}

	sb.WriteString("\n## Notes\n\n")
	fmt.Fprintf(&sb, "- **Speedup > 1.0**: %s is faster ✓\n", base)
	fmt.Fprintf(&sb, "- **Speedup < 1.0**: %s is faster ✗\n", other)
	sb.WriteString("- Run with `go test -bench BenchmarkTable -benchmem ./pkg/scenario`\n")
	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
