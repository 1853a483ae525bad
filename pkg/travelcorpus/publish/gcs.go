package publish

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// RecordsObject is the object name used for the JSON lines dump of a run.
const RecordsObject = "travel_records.jsonl"

// GCSConfig points at a bucket. Objects land under prefix/runID/.
type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// objectWriter opens a writer for an object; the object is committed on
// Close.
type objectWriter func(ctx context.Context, name string) io.WriteCloser

// GCSPublisher uploads run output to Cloud Storage.
type GCSPublisher struct {
	bucket string
	prefix string
	open   objectWriter
	close  func() error
}

// NewGCS connects to Cloud Storage using the credentials file when given
// and application default credentials otherwise.
func NewGCS(ctx context.Context, cfg GCSConfig) (*GCSPublisher, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	bucket := client.Bucket(cfg.Bucket)
	open := func(ctx context.Context, name string) io.WriteCloser {
		w := bucket.Object(name).NewWriter(ctx)
		if strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".json") {
			w.ContentType = "application/json"
		} else if strings.HasSuffix(name, ".csv") {
			w.ContentType = "text/csv"
		}
		return w
	}
	return newGCS(cfg, open, client.Close), nil
}

func newGCS(cfg GCSConfig, open objectWriter, closeFn func() error) *GCSPublisher {
	return &GCSPublisher{
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		open:   open,
		close:  closeFn,
	}
}

func (g *GCSPublisher) objectName(runID, base string) string {
	return path.Join(g.prefix, runID, base)
}

// PublishRecords writes the records as one JSON lines object.
func (g *GCSPublisher) PublishRecords(ctx context.Context, runID string, records []record.Record) error {
	name := g.objectName(runID, RecordsObject)
	w := g.open(ctx, name)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, rec := range records {
		if err := enc.Encode(NewMessage(runID, rec)); err != nil {
			w.Close()
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", g.bucket, name, err)
	}
	log.Printf("Uploaded %d records to gs://%s/%s", len(records), g.bucket, name)
	return nil
}

// PublishFile copies a local file next to the run's records.
func (g *GCSPublisher) PublishFile(ctx context.Context, runID, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	name := g.objectName(runID, filepath.Base(localPath))
	w := g.open(ctx, name)
	n, err := io.Copy(w, f)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", g.bucket, name, err)
	}
	log.Printf("Uploaded %d bytes to gs://%s/%s", n, g.bucket, name)
	return nil
}

func (g *GCSPublisher) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}
