package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store/sqlite"
)

type runSummary struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Datasets      []string  `json:"datasets"`
	MinConfidence float64   `json:"min_confidence"`
	UseSemantic   bool      `json:"use_semantic"`
	TotalRecords  int       `json:"total_records"`
	TravelRecords int       `json:"travel_records"`
}

type runReport struct {
	Run        runSummary     `json:"run"`
	Kept       int            `json:"kept"`
	Categories []categoryJSON `json:"categories"`
	TopRecords []recordJSON   `json:"top_records"`
}

type categoryJSON struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type recordJSON struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords,omitempty"`
}

func main() {
	var (
		dbPath  = flag.String("db", "", "Run database (required)")
		runID   = flag.String("run", "", "Report on one run (default: list runs)")
		minConf = flag.Float64("min-confidence", 0, "Only count records at or above this score")
		limit   = flag.Int("limit", 10, "Runs to list, or top records to show")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	var out any
	if *runID == "" {
		out, err = listRuns(ctx, st, *limit)
	} else {
		out, err = reportRun(ctx, st, *runID, *minConf, *limit)
	}
	if err != nil {
		log.Fatal(err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(data))
}

func summarize(r store.Run) runSummary {
	return runSummary{
		ID:            r.ID,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Datasets:      r.Datasets,
		MinConfidence: r.MinConfidence,
		UseSemantic:   r.UseSemantic,
		TotalRecords:  r.TotalRecords,
		TravelRecords: r.TravelRecords,
	}
}

func listRuns(ctx context.Context, st store.Store, limit int) ([]runSummary, error) {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, summarize(r))
	}
	return out, nil
}

func reportRun(ctx context.Context, st store.Store, id string, minConf float64, top int) (*runReport, error) {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := st.ListRecords(ctx, id, minConf)
	if err != nil {
		return nil, err
	}

	rep := &runReport{Run: summarize(run), Kept: len(records)}
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	for cat, n := range counts {
		rep.Categories = append(rep.Categories, categoryJSON{Category: cat, Count: n})
	}
	sort.Slice(rep.Categories, func(i, j int) bool {
		if rep.Categories[i].Count != rep.Categories[j].Count {
			return rep.Categories[i].Count > rep.Categories[j].Count
		}
		return rep.Categories[i].Category < rep.Categories[j].Category
	})

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ConfidenceScore > records[j].ConfidenceScore
	})
	if top > 0 && len(records) > top {
		records = records[:top]
	}
	for _, r := range records {
		rep.TopRecords = append(rep.TopRecords, recordJSON{
			ID:         r.RecordID,
			Text:       r.Text,
			Confidence: r.ConfidenceScore,
			Category:   r.Category,
			Keywords:   r.MatchedKeywords,
		})
	}
	return rep, nil
}
