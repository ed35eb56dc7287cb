package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultPackages is the stock system package set targeted when no
// explicit packages are configured.
var DefaultPackages = []string{
	"com.android.browser",
	"com.android.calculator2",
	"com.android.calendar",
	"com.android.camera2",
	"com.android.contacts",
	"com.android.deskclock",
	"com.android.dialer",
	"com.android.documentsui",
	"com.android.email",
	"com.android.gallery3d",
	"com.android.launcher3",
	"com.android.messaging",
	"com.android.music",
	"com.android.phone",
	"com.android.providers.downloads.ui",
	"com.android.quicksearchbox",
	"com.android.settings",
	"com.android.systemui",
	"com.android.vending",
}

const (
	filterCrash = "crash"
	filterANR   = "anr"
)

type Config struct {
	AdbPath          string        `mapstructure:"adb_path"`
	Serial           string        `mapstructure:"serial"`
	Runs             int           `mapstructure:"runs"`
	Events           int           `mapstructure:"events"`
	Packages         []string      `mapstructure:"packages"`
	PackagesFile     string        `mapstructure:"packages_file"`
	Filter           string        `mapstructure:"filter"`
	MatchDescription string        `mapstructure:"match_description"`
	OutputDir        string        `mapstructure:"output_dir"`
	MinBattery       int           `mapstructure:"min_battery"`
	SettleDelay      time.Duration `mapstructure:"settle_delay"`
	Seed             int64         `mapstructure:"seed"`
	Throttle         time.Duration `mapstructure:"throttle"`
	LogcatFilters    []string      `mapstructure:"logcat_filters"`
	ReportCmd        string        `mapstructure:"report_cmd"`
	JSONOutput       bool          `mapstructure:"json_output"`
	Dashboard        bool          `mapstructure:"dashboard"`
	ConfigFile       string        `mapstructure:"-"`
	Tracing          TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls OTLP span export. Export stays off until an
// endpoint is configured here or through the OTEL environment.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// Enabled reports whether span export is configured.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Runs < 1 {
		issues = append(issues, "runs must be >= 1")
	}
	if c.Events < 1 {
		issues = append(issues, "events must be >= 1")
	}
	switch c.Filter {
	case "", filterCrash, filterANR:
	default:
		issues = append(issues, fmt.Sprintf("filter must be %q or %q, got %q", filterCrash, filterANR, c.Filter))
	}
	if len(c.Packages) == 0 {
		issues = append(issues, "at least one target package is required")
	}
	for _, pkg := range c.Packages {
		if strings.TrimSpace(pkg) == "" {
			issues = append(issues, "package names cannot be blank")
			break
		}
	}
	if c.MinBattery < 0 || c.MinBattery > 100 {
		issues = append(issues, "min-battery must be between 0 and 100")
	}
	if c.SettleDelay < 0 {
		issues = append(issues, "settle-delay must be >= 0")
	}
	if c.Seed < 0 {
		issues = append(issues, "seed must be >= 0")
	}
	if c.Throttle < 0 {
		issues = append(issues, "throttle must be >= 0")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		issues = append(issues, "output directory is required")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if c.MinBattery >= 90 {
		fmt.Fprintf(os.Stderr, "WARNING: min-battery %d%% may keep the campaign waiting indefinitely if the device cannot charge that high under load.\n", c.MinBattery)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
