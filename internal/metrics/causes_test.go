package metrics_test

import (
	"testing"
	"time"

	"github.com/torosent/monkeyfire/internal/metrics"
)

func TestFlattenCauseBuckets(t *testing.T) {
	rows := metrics.FlattenCauseBuckets(map[string]int{
		"Device command failed": 2,
		"crash or ANR":          7,
		"Filesystem error":      2,
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Cause != "crash or ANR" || rows[0].Count != 7 {
		t.Errorf("expected crash or ANR first, got %+v", rows[0])
	}
	// Ties break alphabetically.
	if rows[1].Cause != "Device command failed" {
		t.Errorf("expected Device command failed second, got %+v", rows[1])
	}
	if rows[2].Cause != "Filesystem error" {
		t.Errorf("expected Filesystem error last, got %+v", rows[2])
	}
}

func TestFlattenCauseBucketsEmpty(t *testing.T) {
	if rows := metrics.FlattenCauseBuckets(nil); rows != nil {
		t.Errorf("expected nil for empty input, got %v", rows)
	}
}

func TestFlattenPhaseTotals(t *testing.T) {
	rows := metrics.FlattenPhaseTotals(map[string]time.Duration{
		"boot":   3 * time.Minute,
		"stress": 2 * time.Hour,
		"charge": 3 * time.Minute,
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Phase != "stress" {
		t.Errorf("expected stress first, got %+v", rows[0])
	}
	if rows[1].Phase != "boot" || rows[2].Phase != "charge" {
		t.Errorf("expected boot then charge on tie, got %+v then %+v", rows[1], rows[2])
	}
}
