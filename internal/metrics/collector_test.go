package metrics_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/torosent/monkeyfire/internal/metrics"
)

func TestCollectorRunStats(t *testing.T) {
	c := metrics.NewCollector()

	// Record deterministic run durations.
	c.RecordRun(10*time.Minute, "")
	c.RecordRun(20*time.Minute, "")
	c.RecordRun(30*time.Minute, "crash or ANR")
	c.RecordRun(40*time.Minute, "")
	c.RecordRun(50*time.Minute, "crash or ANR")

	stats := c.Stats(0)

	if stats.Total != 5 {
		t.Errorf("expected total 5, got %d", stats.Total)
	}
	if stats.Clean != 3 {
		t.Errorf("expected clean 3, got %d", stats.Clean)
	}
	if stats.Failed != 2 {
		t.Errorf("expected failed 2, got %d", stats.Failed)
	}
	if stats.MinRun != 10*time.Minute {
		t.Errorf("expected min 10m, got %s", stats.MinRun)
	}
	if stats.MaxRun != 50*time.Minute {
		t.Errorf("expected max 50m, got %s", stats.MaxRun)
	}
	expectedMean := 30 * time.Minute
	if stats.MeanRun != expectedMean {
		t.Errorf("expected mean 30m, got %s", stats.MeanRun)
	}
	if stats.Causes["crash or ANR"] != 2 {
		t.Errorf("expected 2 crash-or-ANR failures, got %v", stats.Causes)
	}
}

func TestPercentileCalculations(t *testing.T) {
	c := metrics.NewCollector()

	// 100 samples: 1s, 2s, ..., 100s.
	for i := 1; i <= 100; i++ {
		c.RecordRun(time.Duration(i)*time.Second, "")
	}

	stats := c.Stats(0)

	// P50 should be around 50s or 51s (depends on interpolation).
	if stats.P50Run < 49*time.Second || stats.P50Run > 51*time.Second {
		t.Errorf("expected P50 ~50s, got %s", stats.P50Run)
	}
	if stats.P90Run < 89*time.Second || stats.P90Run > 91*time.Second {
		t.Errorf("expected P90 ~90s, got %s", stats.P90Run)
	}
	if stats.P99Run < 98*time.Second || stats.P99Run > 100*time.Second {
		t.Errorf("expected P99 ~99s, got %s", stats.P99Run)
	}
}

func TestRunsPerHour(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 6; i++ {
		c.RecordRun(time.Minute, "")
	}

	stats := c.Stats(30 * time.Minute)
	if stats.RunsPerHour < 11.9 || stats.RunsPerHour > 12.1 {
		t.Errorf("expected ~12 runs/hour, got %f", stats.RunsPerHour)
	}
}

func TestPhaseTotalsAccumulate(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordPhase("boot", 90*time.Second)
	c.RecordPhase("stress", 10*time.Minute)
	c.RecordPhase("boot", 30*time.Second)

	stats := c.Stats(0)
	if got := stats.PhaseMs["boot"]; got != 120_000 {
		t.Errorf("expected boot total 120000ms, got %f", got)
	}
	if got := stats.PhaseMs["stress"]; got != 600_000 {
		t.Errorf("expected stress total 600000ms, got %f", got)
	}
}

func TestJSONReportSchema(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordRun(15*time.Minute, "")
	c.RecordRun(25*time.Minute, "crash or ANR")
	c.RecordPhase("stress", 40*time.Minute)

	stats := c.Stats(time.Hour)

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("failed to marshal stats: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal stats: %v", err)
	}

	for _, key := range []string{
		"total", "clean", "failed", "runs_per_hour",
		"min_run_ms", "max_run_ms", "mean_run_ms",
		"p50_run_ms", "p90_run_ms", "p99_run_ms",
		"duration_ms", "failure_causes", "phase_ms",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected JSON key %q, got %v", key, decoded)
		}
	}
}

func TestCauseBreakdownCopies(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordRun(time.Minute, "crash or ANR")

	breakdown := c.CauseBreakdown()
	breakdown["crash or ANR"] = 99

	if got := c.CauseBreakdown()["crash or ANR"]; got != 1 {
		t.Errorf("expected breakdown to be a copy, collector now reports %d", got)
	}
}

func TestCollectorConcurrentRecording(t *testing.T) {
	c := metrics.NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cause := ""
				if j%10 == 0 {
					cause = "crash or ANR"
				}
				c.RecordRun(time.Duration(n+1)*time.Second, cause)
				c.RecordPhase("stress", time.Second)
			}
		}(i)
	}
	wg.Wait()

	stats := c.Stats(time.Minute)
	if stats.Total != 800 {
		t.Errorf("expected total 800, got %d", stats.Total)
	}
	if stats.Failed != 80 {
		t.Errorf("expected failed 80, got %d", stats.Failed)
	}
}
