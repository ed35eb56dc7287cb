package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/torosent/monkeyfire/internal/metrics"
)

// PrintReport outputs a human-readable campaign summary.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Stress Campaign Results ---")
	fmt.Fprintf(w, "Total Runs:        %d\n", stats.Total)
	fmt.Fprintf(w, "Clean:             %d\n", stats.Clean)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failed)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Runs/hour:         %.2f\n", stats.RunsPerHour)
	fmt.Fprintln(w, "\nRun Duration:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinRun)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxRun)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanRun)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Run)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Run)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Run)

	if len(stats.Causes) > 0 {
		fmt.Fprintln(w, "\nFailure Causes:")
		for _, row := range metrics.FlattenCauseBuckets(stats.Causes) {
			fmt.Fprintf(w, "  %s: %d\n", row.Cause, row.Count)
		}
	}

	if len(stats.Phases) > 0 {
		fmt.Fprintln(w, "\nTime by Phase:")
		for _, row := range metrics.FlattenPhaseTotals(stats.Phases) {
			fmt.Fprintf(w, "  %s: %s\n", row.Phase, row.Total.Round(time.Second))
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, stats metrics.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
