package ingest

import (
	"context"
	"fmt"
	"iter"
	"log"
	"sort"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// JSONLPrefix selects a local file instead of a hosted dataset, as in
// "jsonl:data/raw/export.jsonl".
const JSONLPrefix = "jsonl:"

// Dataset describes a hosted dataset reachable through an alias.
type Dataset struct {
	Repo       string
	Config     string
	Split      string
	SourceName string
	Extract    Extractor
}

// BuiltinDatasets maps the supported aliases to their hosted datasets.
func BuiltinDatasets() map[string]Dataset {
	sharegpt := Dataset{
		Repo:       "anon8231489123/ShareGPT_Vicuna_unfiltered",
		SourceName: "sharegpt-vicuna-unfiltered",
		Extract:    ConversationExtractor,
	}
	return map[string]Dataset{
		"dolly": {
			Repo:       "databricks/databricks-dolly-15k",
			SourceName: "databricks-dolly-15k",
			Extract:    InstructionExtractor("category", "instruction"),
		},
		"ign": {
			Repo:       "ignmilton/ign_clean_instruct_dataset_500k",
			SourceName: "ign-clean-instruct-500k",
			Extract:    InstructionExtractor("", "instruction", "prompt"),
		},
		"ultrachat": {
			Repo:       "openbmb/UltraChat",
			SourceName: "ultrachat",
			Extract:    AlternatingExtractor("data"),
		},
		"vicuna":   sharegpt,
		"sharegpt": sharegpt,
	}
}

// Registry resolves dataset names to sources.
type Registry struct {
	datasets map[string]Dataset
	hf       HFOptions
	logger   *log.Logger
}

// NewRegistry returns a registry over BuiltinDatasets.
func NewRegistry(hf HFOptions, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{datasets: BuiltinDatasets(), hf: hf.withDefaults(), logger: logger}
}

// Register adds or replaces an alias.
func (r *Registry) Register(alias string, d Dataset) {
	r.datasets[strings.ToLower(alias)] = d
}

// Names lists the known aliases.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.datasets))
	for n := range r.datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves one name.
func (r *Registry) Lookup(name string) (Source, error) {
	name = strings.TrimSpace(name)
	if path, ok := strings.CutPrefix(name, JSONLPrefix); ok {
		if path == "" {
			return nil, fmt.Errorf("%w: %q has no path", internalerr.ErrUnknownDataset, name)
		}
		src := NewJSONLSource(path)
		src.Logger = r.logger
		return src, nil
	}
	d, ok := r.datasets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", internalerr.ErrUnknownDataset, name)
	}
	return NewHFSource(d.Repo, d.Config, d.Split, d.SourceName, d.Extract, r.hf), nil
}

// Load chains the named sources in order and stops after limit records
// (limit <= 0 means no limit). Unknown names and failing sources are logged
// and skipped so one bad dataset does not end the run.
func (r *Registry) Load(ctx context.Context, names []string, limit int) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		loaded := 0
		for _, name := range names {
			src, err := r.Lookup(name)
			if err != nil {
				r.logger.Printf("Warning: %v", err)
				continue
			}
			r.logger.Printf("Loading %s...", src.Name())
			for rec, err := range src.Records(ctx) {
				if err != nil {
					r.logger.Printf("Error loading %s: %v", name, err)
					break
				}
				if !yield(rec) {
					return
				}
				loaded++
				if limit > 0 && loaded >= limit {
					r.logger.Printf("Reached limit of %d records. Stopping load.", limit)
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}
}
