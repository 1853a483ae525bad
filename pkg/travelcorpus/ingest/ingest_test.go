package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

var quiet = log.New(io.Discard, "", 0)

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  plain text  ", "plain text"},
		{"<p>Best <b>beaches</b> in Bali?</p>", "Best beaches in Bali?"},
		{"Q&amp;A about hostels", "Q&A about hostels"},
		{"if a < b then go", "if a < b then go"},
		{"ﬁrst class ticket", "first class ticket"},
		{"bad\x00bytes\x07 here\nnext\tline", "badbytes here\nnext\tline"},
		{"<script>alert(1)</script>hello world", "hello world"},
	}
	for _, tc := range cases {
		if got := Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInstructionExtractor(t *testing.T) {
	ex := InstructionExtractor("category", "instruction", "prompt")
	text, cat := ex(map[string]any{"instruction": "  ", "prompt": "Plan a trip", "category": "brainstorming"})
	if text != "Plan a trip" || cat != "brainstorming" {
		t.Errorf("got (%q, %q)", text, cat)
	}
	text, _ = ex(map[string]any{"response": "nothing here"})
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestConversationExtractorShapes(t *testing.T) {
	rows := map[string]map[string]any{
		"row list": {"conversations": []any{
			map[string]any{"from": "human", "value": "Where to stay in Rome?"},
			map[string]any{"from": "gpt", "value": "Try Trastevere."},
			map[string]any{"role": "user", "content": "And for food?"},
		}},
		"columnar": {"conversations": map[string]any{
			"from":  []any{"human", "gpt", "human"},
			"value": []any{"Where to stay in Rome?", "Try Trastevere.", "And for food?"},
		}},
		"json string": {"conversations": `[{"from":"human","value":"Where to stay in Rome?"},{"from":"gpt","value":"x"},{"speaker":"prompter","text":"And for food?"}]`},
	}
	want := "Where to stay in Rome?\nAnd for food?"
	for name, row := range rows {
		if got, _ := ConversationExtractor(row); got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}
}

func TestConversationExtractorFallbacks(t *testing.T) {
	if got, _ := ConversationExtractor(map[string]any{"conversations": []any{}, "text": "fallback text"}); got != "fallback text" {
		t.Errorf("text fallback: got %q", got)
	}
	if got, _ := ConversationExtractor(map[string]any{"instruction": "do this"}); got != "do this" {
		t.Errorf("instruction fallback: got %q", got)
	}
	if got, _ := ConversationExtractor(map[string]any{"conversations": "not json"}); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestAlternatingExtractor(t *testing.T) {
	ex := AlternatingExtractor("data")
	got, _ := ex(map[string]any{"data": []any{"How do I get to Kyoto?", "Take the shinkansen.", "How long is it?", "Two hours."}})
	if got != "How do I get to Kyoto?\nHow long is it?" {
		t.Errorf("got %q", got)
	}
}

type fakeHF struct {
	rows     []map[string]any
	requests int
	token    string
	fail     bool
}

func (f *fakeHF) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests++
	f.token = r.Header.Get("Authorization")
	if f.fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if r.URL.Path != "/rows" {
		http.NotFound(w, r)
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	length, _ := strconv.Atoi(r.URL.Query().Get("length"))
	type row struct {
		RowIdx int            `json:"row_idx"`
		Row    map[string]any `json:"row"`
	}
	page := struct {
		Rows         []row `json:"rows"`
		NumRowsTotal int   `json:"num_rows_total"`
	}{Rows: []row{}, NumRowsTotal: len(f.rows)}
	for i := offset; i < offset+length && i < len(f.rows); i++ {
		page.Rows = append(page.Rows, row{RowIdx: i, Row: f.rows[i]})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func dollyRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"instruction": fmt.Sprintf("Question number %d about hotels", i), "category": "open_qa"}
	}
	return rows
}

func TestHFSourcePages(t *testing.T) {
	rows := dollyRows(5)
	rows[2] = map[string]any{"instruction": "   "}
	fake := &fakeHF{rows: rows}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	src := NewHFSource("databricks/databricks-dolly-15k", "", "", "databricks-dolly-15k",
		InstructionExtractor("category", "instruction"),
		HFOptions{BaseURL: srv.URL, PageSize: 2, Token: "hf_test"})

	var got []record.Record
	for rec, err := range src.Records(context.Background()) {
		if err != nil {
			t.Fatalf("Records: %v", err)
		}
		got = append(got, rec)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records (one empty skipped), got %d", len(got))
	}
	if fake.requests != 3 {
		t.Errorf("expected 3 page requests, got %d", fake.requests)
	}
	if fake.token != "Bearer hf_test" {
		t.Errorf("auth header = %q", fake.token)
	}
	first := got[0]
	if first.ID != "databricks-dolly-15k:0" || first.SourceDataset != "databricks-dolly-15k" || first.SourceCategory != "open_qa" {
		t.Errorf("unexpected first record: %+v", first)
	}
}

func TestHFSourceStopsEarly(t *testing.T) {
	fake := &fakeHF{rows: dollyRows(10)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	src := NewHFSource("d", "", "", "d", InstructionExtractor("", "instruction"), HFOptions{BaseURL: srv.URL, PageSize: 2})
	n := 0
	for range src.Records(context.Background()) {
		n++
		if n == 3 {
			break
		}
	}
	if fake.requests != 2 {
		t.Errorf("expected pages to be fetched lazily, got %d requests", fake.requests)
	}
}

func TestHFSourceError(t *testing.T) {
	srv := httptest.NewServer(&fakeHF{fail: true})
	defer srv.Close()

	src := NewHFSource("d", "", "", "d", InstructionExtractor("", "instruction"), HFOptions{BaseURL: srv.URL})
	var gotErr error
	for _, err := range src.Records(context.Background()) {
		gotErr = err
	}
	if gotErr == nil || !strings.Contains(gotErr.Error(), "status 500") {
		t.Errorf("expected status error, got %v", gotErr)
	}
}

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJSONLSource(t *testing.T) {
	path := writeJSONL(t,
		`{"text": "Best time to visit Iceland?", "source_dataset": "custom"}`,
		`not json`,
		``,
		`{"conversations": [{"from": "human", "value": "Cheap flights to Oslo?"}]}`,
		`{"instruction": ""}`,
	)
	src := NewJSONLSource(path)
	src.Logger = quiet

	var got []record.Record
	for rec, err := range src.Records(context.Background()) {
		if err != nil {
			t.Fatalf("Records: %v", err)
		}
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0].SourceDataset != "custom" || got[1].SourceDataset != "export" {
		t.Errorf("source datasets = %q, %q", got[0].SourceDataset, got[1].SourceDataset)
	}
	if got[1].Text != "Cheap flights to Oslo?" || got[1].ID != "export:4" {
		t.Errorf("unexpected record: %+v", got[1])
	}
}

func TestJSONLSourceMissingFile(t *testing.T) {
	src := NewJSONLSource(filepath.Join(t.TempDir(), "missing.jsonl"))
	var gotErr error
	for _, err := range src.Records(context.Background()) {
		gotErr = err
	}
	if !errors.Is(gotErr, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", gotErr)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(HFOptions{}, quiet)
	for _, name := range []string{"dolly", "IGN", "ultrachat", "vicuna", "sharegpt"} {
		if _, err := reg.Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
	src, err := reg.Lookup("jsonl:/tmp/x.jsonl")
	if err != nil {
		t.Fatalf("jsonl lookup: %v", err)
	}
	if _, ok := src.(*JSONLSource); !ok {
		t.Errorf("expected JSONLSource, got %T", src)
	}
	if _, err := reg.Lookup("sharegpt_parquet"); !errors.Is(err, internalerr.ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
}

func TestRegistryLoadChainsWithLimit(t *testing.T) {
	fake := &fakeHF{rows: dollyRows(3)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	reg := NewRegistry(HFOptions{BaseURL: srv.URL}, quiet)
	path := writeJSONL(t,
		`{"text": "Local record one about ferries"}`,
		`{"text": "Local record two about trains"}`,
	)
	names := []string{"dolly", "nope", "jsonl:" + path}

	var all []record.Record
	for rec := range reg.Load(context.Background(), names, 0) {
		all = append(all, rec)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 records across sources, got %d", len(all))
	}
	if all[0].SourceDataset != "databricks-dolly-15k" || all[4].SourceDataset != "export" {
		t.Errorf("unexpected order: %q ... %q", all[0].SourceDataset, all[4].SourceDataset)
	}

	n := 0
	for range reg.Load(context.Background(), names, 2) {
		n++
	}
	if n != 2 {
		t.Errorf("limit 2 yielded %d records", n)
	}
}

func TestRegistryLoadSkipsFailingSource(t *testing.T) {
	srv := httptest.NewServer(&fakeHF{fail: true})
	defer srv.Close()

	reg := NewRegistry(HFOptions{BaseURL: srv.URL}, quiet)
	path := writeJSONL(t, `{"text": "Still loaded after failure"}`)
	n := 0
	for range reg.Load(context.Background(), []string{"dolly", "jsonl:" + path}, 0) {
		n++
	}
	if n != 1 {
		t.Errorf("expected the jsonl record after a failing source, got %d", n)
	}
}
