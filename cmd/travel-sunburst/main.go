package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
)

func main() {
	var (
		input  = flag.String("input", "", "Exported travel CSV (required)")
		output = flag.String("output", "", "Sunburst JSON (default: seasonal_sunburst.json next to the input)")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}
	out := *output
	if out == "" {
		out = defaultOutput(*input)
	}

	rows, counted, err := buildSunburst(*input, out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Read %d rows, %d with a season and place -> %s\n", rows, counted, out)
}

func defaultOutput(input string) string {
	return filepath.Join(filepath.Dir(input), export.DefaultSunburstFile)
}

func buildSunburst(input, output string) (rows, counted int, err error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	h := export.NewHierarchy()
	rows, err = h.AddCSV(in)
	if err != nil {
		return rows, 0, fmt.Errorf("read %s: %w", input, err)
	}

	f, err := os.Create(output)
	if err != nil {
		return rows, 0, err
	}
	err = export.WriteSunburst(f, h.Tree())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(output)
		return rows, 0, err
	}
	return rows, h.Counted(), nil
}
