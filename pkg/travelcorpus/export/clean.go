package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
)

// DefaultCleanThreshold is the confidence a shared row must reach.
const DefaultCleanThreshold = 0.45

// CleanStats reports the outcome of Clean.
type CleanStats struct {
	Read    int
	Kept    int
	Dropped int
}

// Clean copies an exported table keeping only rows with a confidence score
// of at least threshold and at least one matched keyword. Row ids are kept
// as written.
func Clean(r io.Reader, w io.Writer, threshold float64) (CleanStats, error) {
	var stats CleanStats
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}
	confIdx, kwIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "confidence_score":
			confIdx = i
		case "matched_keywords":
			kwIdx = i
		}
	}
	if confIdx < 0 || kwIdx < 0 {
		return stats, fmt.Errorf("%w: csv lacks confidence_score or matched_keywords", internalerr.ErrInvalidInput)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return stats, err
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read csv row %d: %w", stats.Read+1, err)
		}
		stats.Read++
		conf, err := strconv.ParseFloat(strings.TrimSpace(rec[confIdx]), 64)
		if err != nil || conf < threshold || strings.TrimSpace(rec[kwIdx]) == "" {
			stats.Dropped++
			continue
		}
		if err := cw.Write(rec); err != nil {
			return stats, err
		}
		stats.Kept++
	}
	cw.Flush()
	return stats, cw.Error()
}
