// Package metrics provides metrics collection and aggregation for
// stress campaigns.
//
// The metrics package collects run durations, clean/failed counts, and
// per-phase timings while a campaign executes.
//
// # Collector
//
// The central [Collector] type aggregates metrics across runs:
//
//	collector := metrics.NewCollector()
//
//	// Record a finished run. An empty cause marks it clean.
//	collector.RecordRun(runDuration, "")
//	collector.RecordRun(runDuration, "crash or ANR")
//
//	// Accumulate time spent in a campaign phase.
//	collector.RecordPhase("stress", phaseDuration)
//
//	// Get aggregated statistics.
//	stats := collector.Stats(elapsed)
//
// # Statistics
//
// The [Stats] type provides campaign-level metrics including:
//   - Run counts (total, clean, failed)
//   - Run duration percentiles (P50, P90, P99)
//   - Runs per hour
//   - Failure-cause and per-phase breakdowns
//
// Durations are exposed twice: as [time.Duration] fields for display and
// as millisecond floats for JSON output.
//
// # Thread Safety
//
// The Collector guards its state with a mutex. It is safe to call
// RecordRun and Stats from different goroutines, which happens when a
// progress reporter or dashboard samples stats mid-campaign.
package metrics
