package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// A bare invocation would otherwise launch a full default campaign, so
	// require at least one argument or a config file.
	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		AdbPath:     "adb",
		Runs:        1000,
		Events:      125000,
		MinBattery:  20,
		SettleDelay: 30 * time.Second,
		ReportCmd:   "monkeyfire-report",
		ConfigFile:  configPath,
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Filter = strings.ToLower(strings.TrimSpace(cfg.Filter))
	cfg.AdbPath = strings.TrimSpace(cfg.AdbPath)
	if cfg.AdbPath == "" {
		cfg.AdbPath = "adb"
	}

	if cfg.PackagesFile != "" {
		fromFile, err := readPackagesFile(cfg.PackagesFile)
		if err != nil {
			return nil, err
		}
		cfg.Packages = append(cfg.Packages, fromFile...)
	}
	if len(cfg.Packages) == 0 {
		cfg.Packages = append([]string(nil), DefaultPackages...)
	}
	cfg.Packages = dedupe(cfg.Packages)

	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "monkeyfire-" + time.Now().Format("20060102-150405")
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "adb", "adb_path", "adb-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("adb_path: %w", err)
		}
		cfg.AdbPath = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "serial"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("serial: %w", err)
		}
		cfg.Serial = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "runs"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("runs: %w", err)
		}
		cfg.Runs = val
	}

	if raw, ok := lookupSetting(settings, "events"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("events: %w", err)
		}
		cfg.Events = val
	}

	if raw, ok := lookupSetting(settings, "packages"); ok {
		pkgs, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("packages: %w", err)
		}
		cfg.Packages = pkgs
	}

	if raw, ok := lookupSetting(settings, "packagesfile", "packages_file", "packages-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("packages_file: %w", err)
		}
		cfg.PackagesFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "filter"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		cfg.Filter = strings.ToLower(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "matchdescription", "match_description", "match-description"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("match_description: %w", err)
		}
		cfg.MatchDescription = val
	}

	if raw, ok := lookupSetting(settings, "outputdir", "output_dir", "output-dir", "out"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output_dir: %w", err)
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "minbattery", "min_battery", "min-battery"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("min_battery: %w", err)
		}
		cfg.MinBattery = val
	}

	if raw, ok := lookupSetting(settings, "settledelay", "settle_delay", "settle-delay"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("settle_delay: %w", err)
		}
		cfg.SettleDelay = dur
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = val
	}

	if raw, ok := lookupSetting(settings, "throttle"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("throttle: %w", err)
		}
		cfg.Throttle = dur
	}

	if raw, ok := lookupSetting(settings, "logcatfilters", "logcat_filters", "logcat-filters"); ok {
		filters, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("logcat_filters: %w", err)
		}
		cfg.LogcatFilters = filters
	}

	if raw, ok := lookupSetting(settings, "reportcmd", "report_cmd", "report-cmd"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("report_cmd: %w", err)
		}
		cfg.ReportCmd = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("json_output: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracing(value interface{}, defaults TracingConfig) (TracingConfig, error) {
	tracing := defaults
	if value == nil {
		return tracing, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	return tracing, nil
}

// dedupe drops repeated packages while preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
