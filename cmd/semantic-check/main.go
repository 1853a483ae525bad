package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/config"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/filter"
)

type testCase struct {
	Text     string
	Expected bool
	Label    string
}

// borderline sentences where keyword matching alone is known to struggle
var testCases = []testCase{
	{"I'm planning a trip to Japan next summer. What are the best places to visit?", true, "Clear travel intent"},
	{"What are the best places to spend your summer vacation?", true, "Borderline - weak keywords, strong semantic"},
	{"How do I prepare for my next adventure overseas?", true, "Borderline - adventure implies travel"},
	{"I want to explore a new country this year", true, "Borderline - explore + country"},
	{"What's the best packing strategy for a long journey?", true, "Borderline - journey context"},
	{"How do I learn Python programming?", false, "Non-travel - programming"},
	{"What's the best way to cook pasta?", false, "Non-travel - cooking"},
	{"Can you explain machine learning algorithms?", false, "Non-travel - ML"},
}

type report struct {
	Total                int
	KeywordCorrect       int
	HybridCorrect        int
	CasesWithSemantic    int
	SemanticImprovements int
}

func (r report) accuracy(correct int) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(correct) / float64(r.Total) * 100
}

func compare(ctx context.Context, w io.Writer, keyword, hybrid *filter.Filter, cases []testCase) report {
	r := report{Total: len(cases)}
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n%s\nTEST RESULTS\n%s\n", rule, rule)

	for i, tc := range cases {
		kwTravel, kwConf, _ := keyword.Classify(ctx, tc.Text)
		hyTravel, hyConf, hyMeta := hybrid.Classify(ctx, tc.Text)

		kwOK := kwTravel == tc.Expected
		hyOK := hyTravel == tc.Expected
		if kwOK {
			r.KeywordCorrect++
		}
		if hyOK {
			r.HybridCorrect++
		}
		if hyMeta.SemanticScore > 0 {
			r.CasesWithSemantic++
			if !kwTravel && hyTravel {
				r.SemanticImprovements++
			}
		}

		fmt.Fprintf(w, "\n[%d] %s\n", i+1, tc.Label)
		fmt.Fprintf(w, "    Text: %s\n", tc.Text)
		fmt.Fprintf(w, "    Expected: %v\n", tc.Expected)
		fmt.Fprintf(w, "    Keyword: %v (conf %.3f) %s\n", kwTravel, kwConf, mark(kwOK))
		fmt.Fprintf(w, "    Hybrid:  %v (conf %.3f, semantic %.3f) %s\n", hyTravel, hyConf, hyMeta.SemanticScore, mark(hyOK))
	}

	fmt.Fprintf(w, "\n%s\nSUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "Keyword-only accuracy: %d/%d (%.1f%%)\n", r.KeywordCorrect, r.Total, r.accuracy(r.KeywordCorrect))
	fmt.Fprintf(w, "Hybrid accuracy:       %d/%d (%.1f%%)\n", r.HybridCorrect, r.Total, r.accuracy(r.HybridCorrect))
	fmt.Fprintf(w, "Cases with semantic score: %d\n", r.CasesWithSemantic)
	fmt.Fprintf(w, "Semantic improvements: %d\n", r.SemanticImprovements)
	return r
}

func mark(ok bool) string {
	if ok {
		return "ok"
	}
	return "WRONG"
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config with an embedder section (optional)")
		provider   = flag.String("provider", "", "Embedding provider: ollama, openai or onnx")
		model      = flag.String("model", "", "Embedding model")
		minConf    = flag.Float64("min-confidence", 0.3, "Travel acceptance threshold")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	if *provider != "" {
		cfg.Embedder.Provider = *provider
	}
	if *model != "" {
		cfg.Embedder.Model = *model
	}
	cfg.MinConfidence = *minConf
	cfg.UseSemantic = true
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	comp, err := (&config.Loader{Config: cfg}).Load(ctx)
	if err != nil {
		log.Fatalf("load components: %v", err)
	}
	defer comp.Close()

	if !comp.Hybrid.Hybrid() {
		log.Printf("Warning: no embedding backend; hybrid results equal keyword results")
	}
	compare(ctx, os.Stdout, comp.Keyword, comp.Hybrid, testCases)
}
