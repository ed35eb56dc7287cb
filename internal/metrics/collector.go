package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records per-run metrics in a thread-safe manner.
type Collector struct {
	mu          sync.Mutex
	hist        *hdrhistogram.Histogram
	clean       int64
	failed      int64
	minRun      time.Duration
	maxRun      time.Duration
	sumRun      time.Duration
	causes      map[string]int64
	phaseTotals map[string]time.Duration
	start       time.Time
}

// Stats represents aggregated campaign statistics.
type Stats struct {
	Total       int64                    `json:"total"`
	Clean       int64                    `json:"clean"`
	Failed      int64                    `json:"failed"`
	MinRun      time.Duration            `json:"-"`
	MaxRun      time.Duration            `json:"-"`
	MeanRun     time.Duration            `json:"-"`
	P50Run      time.Duration            `json:"-"`
	P90Run      time.Duration            `json:"-"`
	P99Run      time.Duration            `json:"-"`
	Duration    time.Duration            `json:"-"`
	Phases      map[string]time.Duration `json:"-"`
	RunsPerHour float64                  `json:"runs_per_hour"`

	// JSON-friendly millisecond fields.
	MinRunMs   float64            `json:"min_run_ms"`
	MaxRunMs   float64            `json:"max_run_ms"`
	MeanRunMs  float64            `json:"mean_run_ms"`
	P50RunMs   float64            `json:"p50_run_ms"`
	P90RunMs   float64            `json:"p90_run_ms"`
	P99RunMs   float64            `json:"p99_run_ms"`
	DurationMs float64            `json:"duration_ms"`
	Causes     map[string]int     `json:"failure_causes,omitempty"`
	PhaseMs    map[string]float64 `json:"phase_ms,omitempty"`
}

func NewCollector() *Collector {
	// Track run durations from 1ms up to 24h with 3 significant figures.
	h := hdrhistogram.New(1, 86_400_000, 3)
	return &Collector{
		hist:        h,
		causes:      make(map[string]int64),
		phaseTotals: make(map[string]time.Duration),
		start:       time.Now(),
	}
}

// RecordRun records a single run's wall-clock duration and outcome. An
// empty cause marks the run clean; otherwise the run counts as failed
// under that cause.
func (c *Collector) RecordRun(duration time.Duration, cause string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if duration > 0 {
		ms := duration.Milliseconds()
		if ms < c.hist.LowestTrackableValue() {
			ms = c.hist.LowestTrackableValue()
		}
		if ms > c.hist.HighestTrackableValue() {
			ms = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(ms)
	}
	c.sumRun += duration

	if c.minRun == 0 || duration < c.minRun {
		c.minRun = duration
	}
	if duration > c.maxRun {
		c.maxRun = duration
	}

	if cause == "" {
		c.clean++
	} else {
		c.failed++
		c.causes[cause]++
	}
}

// RecordPhase accumulates time spent in a named campaign phase across
// all runs.
func (c *Collector) RecordPhase(phase string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phaseTotals[phase] += duration
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.clean + c.failed
	stats := Stats{
		Total:  total,
		Clean:  c.clean,
		Failed: c.failed,
		MinRun: c.minRun,
		MaxRun: c.maxRun,
	}

	if total > 0 {
		stats.MeanRun = time.Duration(int64(c.sumRun) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Run = time.Duration(c.hist.ValueAtQuantile(50)) * time.Millisecond
		stats.P90Run = time.Duration(c.hist.ValueAtQuantile(90)) * time.Millisecond
		stats.P99Run = time.Duration(c.hist.ValueAtQuantile(99)) * time.Millisecond
	}

	stats.MinRunMs = float64(stats.MinRun) / float64(time.Millisecond)
	stats.MaxRunMs = float64(stats.MaxRun) / float64(time.Millisecond)
	stats.MeanRunMs = float64(stats.MeanRun) / float64(time.Millisecond)
	stats.P50RunMs = float64(stats.P50Run) / float64(time.Millisecond)
	stats.P90RunMs = float64(stats.P90Run) / float64(time.Millisecond)
	stats.P99RunMs = float64(stats.P99Run) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.RunsPerHour = float64(total) / elapsed.Hours()
	}

	if len(c.causes) > 0 {
		stats.Causes = make(map[string]int, len(c.causes))
		for k, v := range c.causes {
			stats.Causes[k] = int(v)
		}
	}
	if len(c.phaseTotals) > 0 {
		stats.Phases = make(map[string]time.Duration, len(c.phaseTotals))
		stats.PhaseMs = make(map[string]float64, len(c.phaseTotals))
		for k, v := range c.phaseTotals {
			stats.Phases[k] = v
			stats.PhaseMs[k] = float64(v) / float64(time.Millisecond)
		}
	}

	return stats
}

// CauseBreakdown returns a map of failure causes to their counts.
func (c *Collector) CauseBreakdown() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]int)
	for k, v := range c.causes {
		result[k] = int(v)
	}
	return result
}
