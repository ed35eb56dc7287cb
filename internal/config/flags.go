package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "monkeyfire",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Device flags
	flags.String("adb", "adb", "Path to the adb binary")
	flags.StringP("serial", "s", "", "Device serial to target (default: the only attached device)")

	// Campaign flags
	flags.IntP("runs", "r", 1000, "Number of stress runs in the campaign")
	flags.IntP("events", "e", 125000, "Monkey events injected per run")
	flags.StringSliceP("package", "p", nil, "Target package (repeatable; default: stock system package set)")
	flags.String("packages-file", "", "Path to a JSON or YAML file listing target packages")
	flags.String("filter", "", "Failure class to hunt: 'crash' or 'anr' (unset aborts on both)")
	flags.String("match-description", "", "Only exercise activities whose description contains this substring")
	flags.Int64("seed", 0, "Monkey PRNG seed (0 lets the device choose)")
	flags.Duration("throttle", 0, "Delay between injected events (e.g. 500ms)")

	// Run gating flags
	flags.Int("min-battery", 20, "Battery percentage required before each run starts")
	flags.Duration("settle-delay", 30*time.Second, "Wait after boot before the run proceeds")

	// Artifact flags
	flags.StringP("out", "o", "", "Artifact output directory (default: monkeyfire-<timestamp>)")
	flags.StringSlice("logcat-filter", nil, "Logcat filterspec (repeatable, e.g. '*:W')")
	flags.String("report-cmd", "monkeyfire-report", "External command rendering the HTML failure report")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted campaign summary")
	flags.Bool("dashboard", false, "Show live terminal dashboard")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for span export (empty disables tracing)")
	flags.String("trace-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("trace-insecure", false, "Skip TLS for OTLP export")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of run spans to sample")
	flags.String("trace-service", "", "Service name reported on spans")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("adb") {
		val, err := fs.GetString("adb")
		if err != nil {
			return err
		}
		cfg.AdbPath = strings.TrimSpace(val)
	}
	if fs.Changed("serial") {
		val, err := fs.GetString("serial")
		if err != nil {
			return err
		}
		cfg.Serial = strings.TrimSpace(val)
	}
	if fs.Changed("runs") {
		val, err := fs.GetInt("runs")
		if err != nil {
			return err
		}
		cfg.Runs = val
	}
	if fs.Changed("events") {
		val, err := fs.GetInt("events")
		if err != nil {
			return err
		}
		cfg.Events = val
	}
	if fs.Changed("packages-file") {
		val, err := fs.GetString("packages-file")
		if err != nil {
			return err
		}
		cfg.PackagesFile = strings.TrimSpace(val)
	}
	if fs.Changed("filter") {
		val, err := fs.GetString("filter")
		if err != nil {
			return err
		}
		cfg.Filter = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("match-description") {
		val, err := fs.GetString("match-description")
		if err != nil {
			return err
		}
		cfg.MatchDescription = val
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = val
	}
	if fs.Changed("throttle") {
		val, err := fs.GetDuration("throttle")
		if err != nil {
			return err
		}
		cfg.Throttle = val
	}
	if fs.Changed("min-battery") {
		val, err := fs.GetInt("min-battery")
		if err != nil {
			return err
		}
		cfg.MinBattery = val
	}
	if fs.Changed("settle-delay") {
		val, err := fs.GetDuration("settle-delay")
		if err != nil {
			return err
		}
		cfg.SettleDelay = val
	}
	if fs.Changed("out") {
		val, err := fs.GetString("out")
		if err != nil {
			return err
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}
	if fs.Changed("report-cmd") {
		val, err := fs.GetString("report-cmd")
		if err != nil {
			return err
		}
		cfg.ReportCmd = strings.TrimSpace(val)
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}

	// Repeatable flags merge with file-sourced values rather than replace
	// them, so a config file package list can be extended on the CLI.
	pkgs, err := fs.GetStringSlice("package")
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		if trimmed := strings.TrimSpace(pkg); trimmed != "" {
			cfg.Packages = append(cfg.Packages, trimmed)
		}
	}

	filters, err := fs.GetStringSlice("logcat-filter")
	if err != nil {
		return err
	}
	for _, f := range filters {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			cfg.LogcatFilters = append(cfg.LogcatFilters, trimmed)
		}
	}

	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-service") {
		val, err := fs.GetString("trace-service")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}

	return nil
}
