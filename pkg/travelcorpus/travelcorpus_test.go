package travelcorpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/categorize"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/filter"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store/memstore"
)

var quiet = log.New(io.Discard, "", 0)

const (
	japan  = "I'm planning a trip to Japan next summer. What are the best places to visit?"
	python = "How do I learn Python programming?"
	hotel  = "Is there a hotel close to the airport?"
)

type fixedScorer struct{ score float64 }

func (s fixedScorer) Score(context.Context, string) float64 { return s.score }
func (s fixedScorer) Available() bool                       { return true }

func newPipeline(t *testing.T, minConf float64, opts Options) *Pipeline {
	t.Helper()
	opts.Keyword = filter.NewDefault(nil, filter.Options{MinConfidence: minConf, Logger: quiet})
	if opts.Hybrid == nil {
		opts.Hybrid = filter.NewDefault(fixedScorer{0.6}, filter.Options{MinConfidence: minConf, UseSemantic: true, Logger: quiet})
	}
	opts.Categorizer = categorize.NewDefault()
	opts.Logger = quiet
	return New(opts)
}

func rec(source string, n int, text string) record.Record {
	return record.Record{ID: fmt.Sprintf("%s:%d", source, n), Text: text, SourceDataset: source}
}

func TestProcessJapanTrip(t *testing.T) {
	p := newPipeline(t, 0.3, Options{})
	out := p.Process(context.Background(), rec("ultrachat", 1, japan))
	if !out.IsTravel {
		t.Fatalf("expected travel, got %+v", out.TravelMetadata)
	}
	if out.TravelCategoryID == 0 || out.TravelCategory == "" || out.CategoryDetails == nil {
		t.Errorf("travel record should be categorized: %+v", out)
	}

	out = p.Process(context.Background(), rec("ultrachat", 2, python))
	if out.IsTravel || out.TravelCategoryID != 0 {
		t.Errorf("python question should be rejected and left uncategorized: %+v", out)
	}
}

func TestFilterForMatchesSourceSubstring(t *testing.T) {
	p := newPipeline(t, 0.3, Options{SemanticDatasets: []string{" Dolly ", ""}})

	out := p.Process(context.Background(), rec("databricks-dolly-15k", 1, python))
	if out.TravelMetadata.FilterMethod != record.MethodHybrid {
		t.Fatalf("dolly should use the hybrid filter, got %q", out.TravelMetadata.FilterMethod)
	}
	// weak band: semantic 0.6 is trusted at 0.95
	if math.Abs(out.ConfidenceScore-0.57) > 1e-12 || !out.IsTravel {
		t.Errorf("hybrid score = %v travel=%v", out.ConfidenceScore, out.IsTravel)
	}

	out = p.Process(context.Background(), rec("ultrachat", 1, python))
	if out.TravelMetadata.FilterMethod != record.MethodKeyword || out.IsTravel {
		t.Errorf("ultrachat should use keyword filter: %+v", out.TravelMetadata)
	}
}

func TestRunExportStorePublish(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	pub := &recordingPublisher{}
	p := newPipeline(t, 0.3, Options{Store: st, Publisher: pub})

	records := []record.Record{
		rec("ultrachat", 1, japan),
		rec("ultrachat", 2, hotel),
		rec("ultrachat", 3, python),
		rec("ultrachat", 4, "short"),
	}
	res, err := p.Run(ctx, RunInfo{Datasets: []string{"ultrachat"}, MinConfidence: 0.3}, slices.Values(records))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("run id not assigned")
	}
	if res.Stats.Filter.Total != 4 || res.Stats.Filter.TravelRelated != 2 || len(res.Records) != 2 {
		t.Fatalf("stats = %+v, kept %d", res.Stats.Filter, len(res.Records))
	}
	if res.Records[0].ID != "ultrachat:1" || res.Records[1].ID != "ultrachat:2" {
		t.Errorf("input order lost: %s %s", res.Records[0].ID, res.Records[1].ID)
	}
	if sc := res.Stats.Sources["ultrachat"]; sc.Total != 4 || sc.TravelRelated != 2 || sc.Method != record.MethodKeyword {
		t.Errorf("source stats = %+v", sc)
	}
	if line := res.Stats.SourceLine("ultrachat"); line != "ultrachat: 2/4 records (50.00%) are travel-related [keyword]" {
		t.Errorf("source line = %q", line)
	}

	layout := export.Layout{Root: t.TempDir()}
	out, err := p.Export(ctx, res, ExportOptions{Layout: layout, CSVFile: "travel_data.csv", MetadataFile: "processing_metadata.json"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Written != 2 || out.Metadata.ExportedRecords != 2 {
		t.Errorf("written = %d", out.Written)
	}
	meta, err := export.ReadMetadata(out.MetadataPath)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta.RunID != res.RunID || meta.TotalRecordsLoaded != 4 || meta.TravelPercentage != 50 || meta.SourceDistribution["ultrachat"] != 2 {
		t.Errorf("metadata = %+v", meta)
	}
	if _, err := os.Stat(out.CSVPath); err != nil {
		t.Errorf("csv not written: %v", err)
	}

	run, err := st.GetRun(ctx, res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.TotalRecords != 4 || run.TravelRecords != 2 || run.FinishedAt.IsZero() || run.MetadataJSON == "" {
		t.Errorf("stored run = %+v", run)
	}
	var storedMeta export.Metadata
	if err := json.Unmarshal([]byte(run.MetadataJSON), &storedMeta); err != nil {
		t.Fatalf("stored metadata is not JSON: %v", err)
	}
	if storedMeta.RunID != res.RunID || storedMeta.ExportedRecords != 2 {
		t.Errorf("stored metadata = %+v", storedMeta)
	}
	stored, _ := st.ListRecords(ctx, res.RunID, 0)
	if len(stored) != 2 {
		t.Errorf("stored %d records", len(stored))
	}

	if pub.records != 2 || len(pub.files) != 2 {
		t.Errorf("publisher saw %d records, files %v", pub.records, pub.files)
	}
}

func TestRunEmpty(t *testing.T) {
	p := newPipeline(t, 0.3, Options{})
	res, err := p.Run(context.Background(), RunInfo{}, slices.Values([]record.Record(nil)))
	if err != nil {
		t.Fatalf("empty run should not fail: %v", err)
	}
	meta := res.Stats.Metadata(res.RunID)
	if meta.TotalRecordsLoaded != 0 || meta.TravelPercentage != 0 || meta.AverageConfidenceScore != 0 || meta.CategorizedRecords != 0 {
		t.Errorf("expected zero stats, got %+v", meta)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p := newPipeline(t, 0.3, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	seq := func(yield func(record.Record) bool) {
		for i := 0; i < 5; i++ {
			seen++
			if i == 2 {
				cancel()
			}
			if !yield(rec("ultrachat", i, japan)) {
				return
			}
		}
	}
	res, err := p.Run(ctx, RunInfo{}, seq)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Stats.Filter.Total != 2 || res.Stats.Category.Total != 2 {
		t.Errorf("only fully processed records should count: %+v", res.Stats.Filter)
	}
	if seen != 3 {
		t.Errorf("source should stop after cancellation, pulled %d", seen)
	}
}

func TestRunBatchOfTenCategorizesAll(t *testing.T) {
	texts := []string{
		"Which hotel room has the best breakfast?",
		"What is the cheapest flight to Lisbon?",
		"Best museums to visit in Vienna",
		"How much money should I budget for Iceland?",
		"Do I need a visa for Vietnam?",
		"Where can I try local street food in Bangkok?",
		"Is the metro in Paris safe at night?",
		"Recommend a hostel near the beach in Bali",
		"Ferry schedule from Athens to Santorini",
		"lorem ipsum dolor sit amet",
	}
	var records []record.Record
	for i, text := range texts {
		records = append(records, rec("dolly", i+1, text))
	}
	p := newPipeline(t, 0, Options{})
	res, err := p.Run(context.Background(), RunInfo{}, slices.Values(records))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum := 0
	for _, n := range res.Stats.Category.CategoryDistribution {
		sum += n
	}
	if sum != 10 || res.Stats.Category.Total != 10 {
		t.Errorf("distribution sums to %d over %d records", sum, res.Stats.Category.Total)
	}
	if last := res.Records[9]; last.TravelCategoryID != 4 || last.CategoryConfidence != 0.5 {
		t.Errorf("unmatched text should fall back to Trip Planning: %d %v", last.TravelCategoryID, last.CategoryConfidence)
	}
}

func TestRunStatsMergeMatchesSingleRun(t *testing.T) {
	records := []record.Record{
		rec("ultrachat", 1, japan),
		rec("dolly", 1, hotel),
		rec("ultrachat", 2, python),
		rec("dolly", 2, "Ferry schedule from Athens to Santorini"),
	}
	p := newPipeline(t, 0.3, Options{})
	whole, _ := p.Run(context.Background(), RunInfo{}, slices.Values(records))
	a, _ := p.Run(context.Background(), RunInfo{}, slices.Values(records[:2]))
	b, _ := p.Run(context.Background(), RunInfo{}, slices.Values(records[2:]))

	merged := NewRunStats()
	merged.Merge(b.Stats)
	merged.Merge(a.Stats)

	if merged.Filter.Total != whole.Stats.Filter.Total || merged.Filter.TravelRelated != whole.Stats.Filter.TravelRelated {
		t.Errorf("filter totals differ: %+v vs %+v", merged.Filter, whole.Stats.Filter)
	}
	if math.Abs(merged.Filter.AverageConfidence-whole.Stats.Filter.AverageConfidence) > 1e-12 {
		t.Errorf("average confidence %v vs %v", merged.Filter.AverageConfidence, whole.Stats.Filter.AverageConfidence)
	}
	for name, sc := range whole.Stats.Sources {
		if merged.Sources[name] != sc {
			t.Errorf("source %s: %+v vs %+v", name, merged.Sources[name], sc)
		}
	}
	for k, v := range whole.Stats.SourceDistribution {
		if merged.SourceDistribution[k] != v {
			t.Errorf("source distribution %s: %d vs %d", k, merged.SourceDistribution[k], v)
		}
	}
}

func TestExportWritesSunburst(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	p := newPipeline(t, 0, Options{Publisher: pub})
	records := []record.Record{
		rec("dolly", 1, "Summer hike in the hills above the lake"),
		rec("dolly", 2, "Relax on the beach this summer"),
		rec("dolly", 3, japan),
	}
	res, err := p.Run(ctx, RunInfo{}, slices.Values(records))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	layout := export.Layout{Root: t.TempDir()}
	out, err := p.Export(ctx, res, ExportOptions{
		Layout:       layout,
		CSVFile:      "travel_data.csv",
		MetadataFile: "processing_metadata.json",
		SunburstFile: export.DefaultSunburstFile,
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.SunburstPath != filepath.Join(layout.Metadata(), export.DefaultSunburstFile) {
		t.Errorf("sunburst path = %s", out.SunburstPath)
	}
	data, err := os.ReadFile(out.SunburstPath)
	if err != nil {
		t.Fatalf("sunburst not written: %v", err)
	}
	var tree struct {
		Name     string `json:"name"`
		Children []struct {
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"children"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatalf("sunburst is not JSON: %v", err)
	}
	if tree.Name != export.SunburstRoot || len(tree.Children) != 1 || tree.Children[0].Name != "Summer" || len(tree.Children[0].Children) != 2 {
		t.Errorf("sunburst = %s", data)
	}
	if len(pub.files) != 3 || pub.files[2] != out.SunburstPath {
		t.Errorf("published files = %v", pub.files)
	}
}

type recordingPublisher struct {
	records int
	files   []string
}

func (r *recordingPublisher) PublishRecords(_ context.Context, _ string, records []record.Record) error {
	r.records += len(records)
	return nil
}

func (r *recordingPublisher) PublishFile(_ context.Context, _ string, path string) error {
	r.files = append(r.files, path)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }
