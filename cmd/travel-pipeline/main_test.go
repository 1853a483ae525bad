package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/config"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store/sqlite"
)

func TestParseFlagsTracksExplicitFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-datasets", "dolly, ultrachat,", "-limit", "50", "-semantic"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !opts.set["datasets"] || !opts.set["limit"] || !opts.set["semantic"] {
		t.Errorf("set = %v", opts.set)
	}
	if opts.set["min-confidence"] {
		t.Error("min-confidence was not given")
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if len(cfg.Datasets) != 2 || cfg.Datasets[1] != "ultrachat" {
		t.Errorf("datasets = %v", cfg.Datasets)
	}
	if cfg.Limit != 50 || !cfg.UseSemantic || cfg.MinConfidence != config.DefaultMinConfidence {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	body := "min_confidence: 0.45\ndatasets: [vicuna]\noutput:\n  dir: from-file\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, _ := parseFlags([]string{"-config", path, "-out", "from-flag", "-prompt-only"})
	cfg, err := resolveConfig(opts)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.MinConfidence != 0.45 || cfg.Datasets[0] != "vicuna" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Output.Dir != "from-flag" || !cfg.Output.PromptOnly || cfg.Output.MinTextLength != 15 {
		t.Errorf("flag values not applied: %+v", cfg.Output)
	}
}

func TestResolveConfigRejectsBadConfidence(t *testing.T) {
	opts, _ := parseFlags([]string{"-min-confidence", "2"})
	if _, err := resolveConfig(opts); err == nil {
		t.Error("expected validation error")
	}
}

func TestRunOverJSONL(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.jsonl")
	lines := []string{
		`{"id":"a","text":"I'm planning a trip to Japan next summer. What are the best places to visit?"}`,
		`{"id":"b","text":"Is there a hotel close to the airport?"}`,
		`{"id":"c","text":"How do I learn Python programming?"}`,
		`not json`,
	}
	if err := os.WriteFile(input, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Datasets = []string{"jsonl:" + input}
	cfg.MinConfidence = 0.3
	cfg.Output.Dir = filepath.Join(dir, "data")
	cfg.Store.Path = filepath.Join(dir, "runs.db")

	var summary bytes.Buffer
	out, err := run(context.Background(), cfg, log.New(io.Discard, "", 0), &summary)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Written != 2 {
		t.Errorf("written = %d", out.Written)
	}
	if !strings.Contains(summary.String(), "Travel Records Found: 2") {
		t.Errorf("summary:\n%s", summary.String())
	}

	f, err := os.Open(cfg.CSVPath())
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 || rows[1][2] != "sample" {
		t.Errorf("rows = %v", rows)
	}

	st, err := sqlite.OpenSQLite(context.Background(), cfg.Store.Path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st.Close()
	runs, _ := st.ListRuns(context.Background(), 0)
	if len(runs) != 1 || runs[0].TravelRecords != 2 || runs[0].TotalRecords != 3 {
		t.Errorf("runs = %+v", runs)
	}
}
