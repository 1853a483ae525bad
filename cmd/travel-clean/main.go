package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
)

func main() {
	var (
		input     = flag.String("input", "", "Exported travel CSV (required)")
		output    = flag.String("output", "", "Cleaned CSV (default: <input>_clean.csv)")
		threshold = flag.Float64("threshold", export.DefaultCleanThreshold, "Minimum confidence score to keep")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}
	out := *output
	if out == "" {
		out = defaultOutput(*input)
	}

	stats, err := cleanFile(*input, out, *threshold)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Read %d rows, kept %d, dropped %d -> %s\n", stats.Read, stats.Kept, stats.Dropped, out)
}

func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_clean.csv"
}

func cleanFile(input, output string, threshold float64) (export.CleanStats, error) {
	in, err := os.Open(input)
	if err != nil {
		return export.CleanStats{}, err
	}
	defer in.Close()

	f, err := os.Create(output)
	if err != nil {
		return export.CleanStats{}, err
	}
	stats, err := export.Clean(in, f, threshold)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(output)
		return stats, fmt.Errorf("clean %s: %w", input, err)
	}
	return stats, nil
}
