package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/config"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/publish"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store/sqlite"
)

type options struct {
	configPath    string
	datasets      string
	limit         int
	minConfidence float64
	semantic      bool
	outDir        string
	dbPath        string
	promptOnly    bool
	list          bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("travel-pipeline", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	fs.StringVar(&opts.datasets, "datasets", "", "Comma separated datasets, e.g. dolly,ultrachat,jsonl:export.jsonl")
	fs.IntVar(&opts.limit, "limit", 0, "Maximum records to load (0 = no limit)")
	fs.Float64Var(&opts.minConfidence, "min-confidence", config.DefaultMinConfidence, "Travel acceptance threshold")
	fs.BoolVar(&opts.semantic, "semantic", false, "Blend embedding similarity for semantic datasets")
	fs.StringVar(&opts.outDir, "out", "", "Output data directory")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database for run history (optional)")
	fs.BoolVar(&opts.promptOnly, "prompt-only", false, "Export only the user prompt of each record")
	fs.BoolVar(&opts.list, "list", false, "List known datasets and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// resolveConfig loads the config file, if any, and lets explicit flags win.
func resolveConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	if opts.set["datasets"] {
		cfg.Datasets = splitList(opts.datasets)
	}
	if opts.set["limit"] {
		cfg.Limit = opts.limit
	}
	if opts.set["min-confidence"] {
		cfg.MinConfidence = opts.minConfidence
	}
	if opts.set["semantic"] {
		cfg.UseSemantic = opts.semantic
	}
	if opts.set["out"] {
		cfg.Output.Dir = opts.outDir
	}
	if opts.set["db"] {
		cfg.Store.Path = opts.dbPath
	}
	if opts.set["prompt-only"] {
		cfg.Output.PromptOnly = opts.promptOnly
		if opts.promptOnly && cfg.Output.MinTextLength == 0 {
			cfg.Output.MinTextLength = export.DefaultMinTextLength
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type engine struct {
	pipeline   *travelcorpus.Pipeline
	components *config.Components
}

// buildEngine wires the configured components, store and publishers.
func buildEngine(ctx context.Context, cfg *config.Config, logger *log.Logger) (*engine, func(), error) {
	loader := config.Loader{Config: cfg, Logger: logger}
	comp, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{comp.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Printf("close: %v", err)
			}
		}
	}

	var st store.Store
	if cfg.Store.Path != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		closers = append(closers, st.Close)
	}

	pub, err := publish.Open(ctx, cfg.Publish)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open publishers: %w", err)
	}
	closers = append(closers, pub.Close)

	p := travelcorpus.New(travelcorpus.Options{
		Keyword:          comp.Keyword,
		Hybrid:           comp.Hybrid,
		Categorizer:      comp.Categorizer,
		SemanticDatasets: cfg.SemanticDatasets,
		Store:            st,
		Publisher:        pub,
		Logger:           logger,
	})
	return &engine{pipeline: p, components: comp}, cleanup, nil
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, summary io.Writer) (*travelcorpus.Exported, error) {
	eng, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	logger.Printf("Starting travel data pipeline (limit %d, semantic %v)", cfg.Limit, eng.components.Hybrid.Hybrid())
	records := eng.components.Registry.Load(ctx, cfg.Datasets, cfg.Limit)
	res, err := eng.pipeline.Run(ctx, travelcorpus.RunInfo{
		Datasets:      cfg.Datasets,
		MinConfidence: cfg.MinConfidence,
		UseSemantic:   eng.components.Hybrid.Hybrid(),
	}, records)
	if err != nil && res == nil {
		return nil, err
	}
	if err != nil {
		// interrupted: export what was fully processed
		logger.Printf("Run interrupted: %v", err)
	}

	out, err := eng.pipeline.Export(context.WithoutCancel(ctx), res, travelcorpus.ExportOptions{
		Layout:       export.Layout{Root: cfg.Output.Dir},
		CSVFile:      cfg.Output.CSVFile,
		MetadataFile: cfg.Output.MetadataFile,
		SunburstFile: cfg.Output.SunburstFile,
		CSV: export.CSVOptions{
			PromptOnly:    cfg.Output.PromptOnly,
			MinTextLength: cfg.Output.MinTextLength,
		},
	})
	if out != nil {
		export.PrintSummary(summary, out.Metadata)
	}
	return out, err
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	logger := log.Default()

	if opts.list {
		comp, err := (&config.Loader{Logger: logger}).Load(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		for _, name := range comp.Registry.Names() {
			fmt.Println(name)
		}
		fmt.Println(`jsonl:<path>`)
		return
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		log.Fatal(err)
	}
	if len(cfg.Datasets) == 0 {
		log.Fatal("--datasets required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := run(ctx, cfg, logger, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
