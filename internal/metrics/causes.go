package metrics

import (
	"sort"
	"time"
)

// CauseBucket represents the aggregated failure count for one cause.
type CauseBucket struct {
	Cause string
	Count int
}

// FlattenCauseBuckets converts a cause->count map into a sorted slice of
// CauseBucket rows. Rows are sorted by descending count, then by cause
// for stability.
func FlattenCauseBuckets(causes map[string]int) []CauseBucket {
	if len(causes) == 0 {
		return nil
	}
	rows := make([]CauseBucket, 0, len(causes))
	for cause, count := range causes {
		rows = append(rows, CauseBucket{Cause: cause, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Cause < rows[j].Cause
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// PhaseBucket represents the cumulative time spent in one campaign phase.
type PhaseBucket struct {
	Phase string
	Total time.Duration
}

// FlattenPhaseTotals converts a phase->duration map into a sorted slice
// of PhaseBucket rows. Rows are sorted by descending total, then by
// phase for stability.
func FlattenPhaseTotals(totals map[string]time.Duration) []PhaseBucket {
	if len(totals) == 0 {
		return nil
	}
	rows := make([]PhaseBucket, 0, len(totals))
	for phase, total := range totals {
		rows = append(rows, PhaseBucket{Phase: phase, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total == rows[j].Total {
			return rows[i].Phase < rows[j].Phase
		}
		return rows[i].Total > rows[j].Total
	})
	return rows
}
