package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	datasets TEXT,
	min_confidence REAL,
	use_semantic INTEGER DEFAULT 0,
	total_records INTEGER DEFAULT 0,
	travel_records INTEGER DEFAULT 0,
	metadata_json TEXT
);

CREATE TABLE IF NOT EXISTS records (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	record_id TEXT NOT NULL,
	text TEXT NOT NULL,
	source_dataset TEXT,
	confidence_score REAL,
	category_id INTEGER,
	category TEXT,
	category_confidence REAL,
	filter_method TEXT,
	matched_keywords TEXT,
	scoring_json TEXT,
	PRIMARY KEY(run_id, record_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_run_conf ON records(run_id, confidence_score);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	if r.ID == "" {
		r.ID = store.NewRunID()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	datasets, err := json.Marshal(r.Datasets)
	if err != nil {
		return r, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, started_at, datasets, min_confidence, use_semantic)
VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Format(time.RFC3339Nano), string(datasets), r.MinConfidence, boolToInt(r.UseSemantic))
	if err != nil {
		return r, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

func (s *sqliteStore) FinishRun(ctx context.Context, r store.Run) error {
	finished := r.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE runs SET finished_at = ?, total_records = ?, travel_records = ?, metadata_json = ?
WHERE id = ?`,
		finished.Format(time.RFC3339Nano), r.TotalRecords, r.TravelRecords, r.MetadataJSON, r.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, r.ID)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, datasets, min_confidence, use_semantic,
	total_records, travel_records, metadata_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r                  store.Run
		started            string
		finished, datasets sql.NullString
		metadata           sql.NullString
		semantic           int
	)
	if err := sc.Scan(&r.ID, &started, &finished, &datasets, &r.MinConfidence, &semantic,
		&r.TotalRecords, &r.TravelRecords, &metadata); err != nil {
		return r, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	if datasets.Valid && datasets.String != "" {
		_ = json.Unmarshal([]byte(datasets.String), &r.Datasets)
	}
	r.UseSemantic = semantic != 0
	r.MetadataJSON = metadata.String
	return r, nil
}

func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveRecord(ctx context.Context, runID string, rec store.StoredRecord) error {
	keywords, err := json.Marshal(rec.MatchedKeywords)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO records (run_id, seq, record_id, text, source_dataset, confidence_score,
	category_id, category, category_confidence, filter_method, matched_keywords, scoring_json)
VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE run_id = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, record_id) DO UPDATE SET
	text = excluded.text,
	source_dataset = excluded.source_dataset,
	confidence_score = excluded.confidence_score,
	category_id = excluded.category_id,
	category = excluded.category,
	category_confidence = excluded.category_confidence,
	filter_method = excluded.filter_method,
	matched_keywords = excluded.matched_keywords,
	scoring_json = excluded.scoring_json`,
		runID, runID, rec.RecordID, rec.Text, rec.SourceDataset, rec.ConfidenceScore,
		rec.CategoryID, rec.Category, rec.CategoryConfidence, rec.FilterMethod, string(keywords), rec.ScoringJSON)
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.RecordID, err)
	}
	return nil
}

func (s *sqliteStore) ListRecords(ctx context.Context, runID string, minConfidence float64) ([]store.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT record_id, text, source_dataset, confidence_score, category_id, category,
	category_confidence, filter_method, matched_keywords, scoring_json
FROM records WHERE run_id = ? AND confidence_score >= ? ORDER BY seq`, runID, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []store.StoredRecord
	for rows.Next() {
		var (
			rec                      store.StoredRecord
			source, category, method sql.NullString
			keywords, scoring        sql.NullString
		)
		if err := rows.Scan(&rec.RecordID, &rec.Text, &source, &rec.ConfidenceScore, &rec.CategoryID,
			&category, &rec.CategoryConfidence, &method, &keywords, &scoring); err != nil {
			return nil, err
		}
		rec.SourceDataset = source.String
		rec.Category = category.String
		rec.FilterMethod = method.String
		rec.ScoringJSON = scoring.String
		if keywords.Valid && keywords.String != "" && keywords.String != "null" {
			_ = json.Unmarshal([]byte(keywords.String), &rec.MatchedKeywords)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
