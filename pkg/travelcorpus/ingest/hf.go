package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// DefaultHFBaseURL is the public datasets-server endpoint.
const DefaultHFBaseURL = "https://datasets-server.huggingface.co"

// DefaultPageSize is the largest page the rows endpoint serves.
const DefaultPageSize = 100

// HFOptions configures access to the Hugging Face datasets server.
type HFOptions struct {
	BaseURL  string
	Token    string
	PageSize int
	Client   *http.Client
}

func (o HFOptions) withDefaults() HFOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultHFBaseURL
	}
	if o.PageSize <= 0 || o.PageSize > DefaultPageSize {
		o.PageSize = DefaultPageSize
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return o
}

// HFSource pages through one split of a hosted dataset.
type HFSource struct {
	Dataset string
	Config  string
	Split   string
	// SourceName is stamped on every record as its source dataset.
	SourceName string
	Extract    Extractor

	opts HFOptions
}

// NewHFSource creates a source for repo/config/split.
func NewHFSource(repo, config, split, sourceName string, extract Extractor, opts HFOptions) *HFSource {
	if config == "" {
		config = "default"
	}
	if split == "" {
		split = "train"
	}
	return &HFSource{
		Dataset:    repo,
		Config:     config,
		Split:      split,
		SourceName: sourceName,
		Extract:    extract,
		opts:       opts.withDefaults(),
	}
}

// Name implements Source.
func (s *HFSource) Name() string { return s.SourceName }

type rowsPage struct {
	Rows []struct {
		RowIdx int            `json:"row_idx"`
		Row    map[string]any `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Records fetches one page at a time; nothing beyond the current page is
// held in memory.
func (s *HFSource) Records(ctx context.Context) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		offset := 0
		for {
			page, err := s.fetch(ctx, offset)
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			if len(page.Rows) == 0 {
				return
			}
			for _, r := range page.Rows {
				id := fmt.Sprintf("%s:%d", s.SourceName, r.RowIdx)
				rec, ok := rowRecord(id, s.SourceName, r.Row, s.Extract)
				if !ok {
					continue
				}
				if !yield(rec, nil) {
					return
				}
			}
			offset += len(page.Rows)
			if page.NumRowsTotal > 0 && offset >= page.NumRowsTotal {
				return
			}
		}
	}
}

func (s *HFSource) fetch(ctx context.Context, offset int) (*rowsPage, error) {
	q := url.Values{}
	q.Set("dataset", s.Dataset)
	q.Set("config", s.Config)
	q.Set("split", s.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(s.opts.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"/rows?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s rows at %d: %w", s.Dataset, offset, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s rows at %d: status %d: %s", s.Dataset, offset, resp.StatusCode, body)
	}

	var page rowsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", s.Dataset, err)
	}
	return &page, nil
}
