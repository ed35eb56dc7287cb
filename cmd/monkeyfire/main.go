package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"

	"github.com/torosent/monkeyfire/internal/adb"
	"github.com/torosent/monkeyfire/internal/campaign"
	"github.com/torosent/monkeyfire/internal/config"
	"github.com/torosent/monkeyfire/internal/dashboard"
	"github.com/torosent/monkeyfire/internal/device"
	"github.com/torosent/monkeyfire/internal/ledger"
	"github.com/torosent/monkeyfire/internal/logcat"
	"github.com/torosent/monkeyfire/internal/metrics"
	"github.com/torosent/monkeyfire/internal/monkey"
	"github.com/torosent/monkeyfire/internal/output"
	"github.com/torosent/monkeyfire/internal/report"
	"github.com/torosent/monkeyfire/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One campaign per artifact directory. A second campaign pointed at
	// the same directory would interleave run indexes and clobber files.
	lock := flock.New(filepath.Join(cfg.OutputDir, ".campaign.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire campaign lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("output directory %s is in use by another campaign", cfg.OutputDir)
	}
	defer lock.Unlock()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(flushCtx); err != nil {
			fmt.Fprintf(os.Stderr, "monkeyfire: shutdown tracing: %v\n", err)
		}
	}()

	client := adb.New(cfg.AdbPath, cfg.Serial)
	collector := metrics.NewCollector()
	recorder := logcat.NewRecorder(client, cfg.LogcatFilters)

	var runner *campaign.Runner
	session := device.NewSession(client, device.Options{
		OnBattery: func(level int) { runner.ObserveBattery(level) },
	})

	led, err := ledger.Open(filepath.Join(cfg.OutputDir, "campaign.db"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := led.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "monkeyfire: close ledger: %v\n", cerr)
		}
	}()

	campaignID := ulid.Make().String()
	if err := led.CreateCampaign(&ledger.Campaign{
		ID:          campaignID,
		Serial:      cfg.Serial,
		RunsPlanned: cfg.Runs,
		Events:      cfg.Events,
		Filter:      cfg.Filter,
		StartedAt:   time.Now(),
	}); err != nil {
		return err
	}

	opts := campaign.Options{
		Device: session,
		StartCapture: func(ctx context.Context, path string) (campaign.CaptureHandle, error) {
			return recorder.Start(ctx, path)
		},
		Recorder:    &ledgerRecorder{store: led, campaignID: campaignID},
		Metrics:     collector,
		Tracer:      tracer.Tracer(),
		Runs:        cfg.Runs,
		OutputDir:   cfg.OutputDir,
		MinBattery:  cfg.MinBattery,
		SettleDelay: cfg.SettleDelay,
		Monkey: monkey.Options{
			Packages:         cfg.Packages,
			Events:           cfg.Events,
			Filter:           cfg.Filter,
			MatchDescription: cfg.MatchDescription,
			Seed:             cfg.Seed,
			Throttle:         cfg.Throttle.Milliseconds(),
		},
	}
	if cfg.ReportCmd != "" {
		opts.Renderer = report.NewTool(cfg.ReportCmd)
	}

	runner = campaign.New(opts)

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(runner.State, collector, dashboardConfig(cfg), cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(runner.State, collector, progressInterval, os.Stdout)
		progress.Start()
	}

	result, runErr := runner.Run(ctx)

	// Tear the live displays down before printing so the summary lands on
	// a restored terminal.
	if dash != nil {
		dash.Stop()
	}
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	stats := collector.Stats(result.Duration)
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, stats); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, stats)
	}

	if runErr != nil {
		return runErr
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d runs failed", result.Failed, len(result.Runs))
	}
	return nil
}

// ledgerRecorder adapts the SQLite ledger to the campaign's run recorder.
type ledgerRecorder struct {
	store      *ledger.Ledger
	campaignID string
}

func (lr *ledgerRecorder) RecordRun(res campaign.RunResult) error {
	run := &ledger.Run{
		CampaignID: lr.campaignID,
		Index:      res.Index,
		Status:     string(res.Status),
		Cause:      res.Cause,
		MonkeyLog:  res.Paths.MonkeyLog,
		DeviceLog:  res.Paths.DeviceLog,
		StartedAt:  res.StartedAt,
		DurationMs: res.Duration.Milliseconds(),
	}
	// Bugreport and report files only exist for failed runs.
	if res.Status == campaign.StatusFailed {
		run.Bugreport = res.Paths.Bugreport
		run.Report = res.Paths.Report
	}
	return lr.store.RecordRun(run)
}

func dashboardConfig(cfg *config.Config) dashboard.CampaignConfig {
	return dashboard.CampaignConfig{
		Serial:     cfg.Serial,
		Runs:       cfg.Runs,
		Events:     cfg.Events,
		Packages:   cfg.Packages,
		Filter:     cfg.Filter,
		Seed:       cfg.Seed,
		Throttle:   cfg.Throttle.Milliseconds(),
		MinBattery: cfg.MinBattery,
		OutputDir:  cfg.OutputDir,
		ConfigFile: cfg.ConfigFile,
	}
}
