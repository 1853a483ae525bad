// Package travelcorpus curates travel-related records out of general
// instruction and conversation datasets: it scores relatedness, assigns a
// travel category and exports the result with run statistics.
package travelcorpus

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/categorize"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/filter"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/publish"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
)

// Pipeline runs records through filter and categorizer.
type Pipeline struct {
	keyword     *filter.Filter
	hybrid      *filter.Filter
	categorizer *categorize.Categorizer
	semantic    []string
	store       store.Store
	publisher   publish.Publisher
	logger      *log.Logger
}

// Options configures a Pipeline. Keyword and Categorizer are required.
// Hybrid defaults to Keyword; Store and Publisher are optional.
type Options struct {
	Keyword     *filter.Filter
	Hybrid      *filter.Filter
	Categorizer *categorize.Categorizer
	// SemanticDatasets are matched as lower-case substrings of a record's
	// source dataset to select the hybrid filter.
	SemanticDatasets []string
	Store            store.Store
	Publisher        publish.Publisher
	Logger           *log.Logger
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		keyword:     opts.Keyword,
		hybrid:      opts.Hybrid,
		categorizer: opts.Categorizer,
		store:       opts.Store,
		publisher:   opts.Publisher,
		logger:      opts.Logger,
	}
	if p.hybrid == nil {
		p.hybrid = p.keyword
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	for _, s := range opts.SemanticDatasets {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			p.semantic = append(p.semantic, s)
		}
	}
	return p
}

// FilterFor picks the filter for a source dataset.
func (p *Pipeline) FilterFor(source string) *filter.Filter {
	name := strings.ToLower(source)
	for _, s := range p.semantic {
		if strings.Contains(name, s) {
			return p.hybrid
		}
	}
	return p.keyword
}

// Process filters one record and categorizes it when it is travel related.
func (p *Pipeline) Process(ctx context.Context, rec record.Record) record.Record {
	rec = p.FilterFor(rec.SourceDataset).Apply(ctx, rec)
	if rec.IsTravel {
		rec = p.categorizer.Apply(rec)
	}
	return rec
}

// Result is the outcome of Run.
type Result struct {
	RunID string
	// Records holds the categorized travel records in input order.
	Records []record.Record
	Stats   RunStats
}

// RunInfo describes a run for the store.
type RunInfo struct {
	Datasets      []string
	MinConfidence float64
	UseSemantic   bool
}

// Run consumes records until the sequence ends or ctx is cancelled. On
// cancellation the partial result is returned with ctx's error; every
// record counted in it was fully processed.
func (p *Pipeline) Run(ctx context.Context, info RunInfo, records iter.Seq[record.Record]) (*Result, error) {
	res := &Result{Stats: NewRunStats()}
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, store.Run{
			Datasets:      info.Datasets,
			MinConfidence: info.MinConfidence,
			UseSemantic:   info.UseSemantic,
		})
		if err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
		res.RunID = run.ID
	} else {
		res.RunID = store.NewRunID()
	}
	p.logger.Printf("Run %s: starting over %v", res.RunID, info.Datasets)

	var runErr error
	for rec := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		f := p.FilterFor(rec.SourceDataset)
		rec = f.Apply(ctx, rec)
		res.Stats.ObserveFiltered(rec, f.Method())
		if !rec.IsTravel {
			continue
		}
		rec = p.categorizer.Apply(rec)
		res.Stats.ObserveCategorized(rec)
		res.Records = append(res.Records, rec)
		if p.store != nil {
			if err := p.store.SaveRecord(ctx, res.RunID, store.FromRecord(rec)); err != nil {
				runErr = fmt.Errorf("save record: %w", err)
				break
			}
		}
	}

	for _, name := range res.Stats.SourceNames() {
		p.logger.Print(res.Stats.SourceLine(name))
	}
	p.logger.Printf("Filtered %d/%d records as travel related", res.Stats.Filter.TravelRelated, res.Stats.Filter.Total)
	return res, runErr
}

// ExportOptions configures Export.
type ExportOptions struct {
	Layout       export.Layout
	CSVFile      string
	MetadataFile string
	// SunburstFile, when set, names the season/place/activity breakdown
	// written next to the metadata.
	SunburstFile string
	CSV          export.CSVOptions
}

// Exported reports what Export wrote.
type Exported struct {
	CSVPath      string
	MetadataPath string
	SunburstPath string
	Written      int
	Skipped      int
	Metadata     export.Metadata
}

// Export writes the travel table and the metadata document, finishes the
// stored run and hands both files to the publisher.
func (p *Pipeline) Export(ctx context.Context, res *Result, opts ExportOptions) (*Exported, error) {
	if err := opts.Layout.EnsureDirectories(); err != nil {
		return nil, err
	}
	out := &Exported{
		CSVPath:      filepath.Join(opts.Layout.TravelOnly(), opts.CSVFile),
		MetadataPath: filepath.Join(opts.Layout.Metadata(), opts.MetadataFile),
	}

	f, err := os.Create(out.CSVPath)
	if err != nil {
		return nil, err
	}
	out.Written, out.Skipped, err = export.WriteCSV(f, res.Records, opts.CSV)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", out.CSVPath, err)
	}
	p.logger.Printf("Exported %d records to %s", out.Written, out.CSVPath)
	if out.Skipped > 0 {
		p.logger.Printf("Skipped %d records (too short/empty)", out.Skipped)
	}

	out.Metadata = res.Stats.Metadata(res.RunID)
	out.Metadata.ExportedRecords = out.Written
	mf, err := os.Create(out.MetadataPath)
	if err != nil {
		return nil, err
	}
	err = export.WriteMetadata(mf, out.Metadata)
	if cerr := mf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", out.MetadataPath, err)
	}
	p.logger.Printf("Exported metadata to %s", out.MetadataPath)

	if opts.SunburstFile != "" {
		out.SunburstPath = filepath.Join(opts.Layout.Metadata(), opts.SunburstFile)
		if err := writeSunburst(out.SunburstPath, res.Records); err != nil {
			return nil, err
		}
		p.logger.Printf("Exported seasonal breakdown to %s", out.SunburstPath)
	}

	if p.store != nil {
		doc, err := json.Marshal(out.Metadata)
		if err != nil {
			return out, fmt.Errorf("encode metadata: %w", err)
		}
		err = p.store.FinishRun(ctx, store.Run{
			ID:            res.RunID,
			FinishedAt:    time.Now().UTC(),
			TotalRecords:  res.Stats.Filter.Total,
			TravelRecords: res.Stats.Filter.TravelRelated,
			MetadataJSON:  string(doc),
		})
		if err != nil {
			return out, fmt.Errorf("finish run: %w", err)
		}
	}

	if p.publisher != nil {
		if err := p.publisher.PublishRecords(ctx, res.RunID, res.Records); err != nil {
			return out, fmt.Errorf("publish records: %w", err)
		}
		files := []string{out.CSVPath, out.MetadataPath}
		if out.SunburstPath != "" {
			files = append(files, out.SunburstPath)
		}
		for _, path := range files {
			if err := p.publisher.PublishFile(ctx, res.RunID, path); err != nil {
				return out, fmt.Errorf("publish %s: %w", filepath.Base(path), err)
			}
		}
	}
	return out, nil
}

func writeSunburst(path string, records []record.Record) error {
	h := export.NewHierarchy()
	h.AddRecords(records)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = export.WriteSunburst(f, h.Tree())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
