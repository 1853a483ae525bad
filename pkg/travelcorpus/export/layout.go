package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout is the on-disk data directory of a run:
//
//	<root>/raw
//	<root>/processed
//	<root>/processed/travel_only   exported tables
//	<root>/metadata                run metadata
type Layout struct {
	Root string
}

// Raw holds source snapshots.
func (l Layout) Raw() string { return filepath.Join(l.Root, "raw") }

// Processed holds intermediate output.
func (l Layout) Processed() string { return filepath.Join(l.Root, "processed") }

// TravelOnly holds the exported travel tables.
func (l Layout) TravelOnly() string { return filepath.Join(l.Root, "processed", "travel_only") }

// Metadata holds run metadata documents.
func (l Layout) Metadata() string { return filepath.Join(l.Root, "metadata") }

// EnsureDirectories creates every directory of the layout.
func (l Layout) EnsureDirectories() error {
	for _, dir := range []string{l.Raw(), l.Processed(), l.TravelOnly(), l.Metadata()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
