package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/torosent/monkeyfire/internal/artifacts"
	"github.com/torosent/monkeyfire/internal/campaign"
	"github.com/torosent/monkeyfire/internal/config"
	"github.com/torosent/monkeyfire/internal/ledger"
)

func TestRunHelpRequested(t *testing.T) {
	if err := run([]string{"--help"}); err != nil {
		t.Errorf("run(--help) error = %v, want nil", err)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	err := run([]string{"--runs", "0"})
	if err == nil {
		t.Fatal("expected a validation error for zero runs")
	}
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want config.ValidationError", err)
	}
}

func TestRunRejectsDashboardWithJSON(t *testing.T) {
	err := run([]string{"--runs", "1", "--dashboard", "--json-output"})
	if err == nil {
		t.Fatal("expected dashboard and json-output to be rejected together")
	}
}

func TestLedgerRecorderPersistsFailedRun(t *testing.T) {
	led, err := ledger.Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer led.Close()

	camp := &ledger.Campaign{ID: "01JRECORDER0000000000000", RunsPlanned: 2, Events: 100, StartedAt: time.Now()}
	if err := led.CreateCampaign(camp); err != nil {
		t.Fatalf("CreateCampaign() error = %v", err)
	}

	rec := &ledgerRecorder{store: led, campaignID: camp.ID}
	paths := artifacts.PathsFor("out", 2, 1)
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	err = rec.RecordRun(campaign.RunResult{
		Index:     1,
		Status:    campaign.StatusFailed,
		Cause:     campaign.FailureCause,
		Paths:     paths,
		StartedAt: started,
		Duration:  9 * time.Minute,
	})
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := led.ListRuns(camp.ID)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	row := runs[0]
	if row.Status != ledger.StatusFailed {
		t.Errorf("status = %q, want %q", row.Status, ledger.StatusFailed)
	}
	if row.Cause != campaign.FailureCause {
		t.Errorf("cause = %q, want %q", row.Cause, campaign.FailureCause)
	}
	if row.Bugreport != paths.Bugreport || row.Report != paths.Report {
		t.Errorf("failure artifacts = %q, %q, want %q, %q", row.Bugreport, row.Report, paths.Bugreport, paths.Report)
	}
	if row.DurationMs != (9 * time.Minute).Milliseconds() {
		t.Errorf("duration = %dms, want %dms", row.DurationMs, (9 * time.Minute).Milliseconds())
	}
	if !row.StartedAt.Equal(started) {
		t.Errorf("started at %s, want %s", row.StartedAt, started)
	}
}

func TestLedgerRecorderOmitsFailureArtifactsForCleanRuns(t *testing.T) {
	led, err := ledger.Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer led.Close()

	camp := &ledger.Campaign{ID: "01JCLEANRUN0000000000000", RunsPlanned: 1, Events: 100, StartedAt: time.Now()}
	if err := led.CreateCampaign(camp); err != nil {
		t.Fatalf("CreateCampaign() error = %v", err)
	}

	rec := &ledgerRecorder{store: led, campaignID: camp.ID}
	err = rec.RecordRun(campaign.RunResult{
		Index:     0,
		Status:    campaign.StatusClean,
		Paths:     artifacts.PathsFor("out", 1, 0),
		StartedAt: time.Now(),
		Duration:  5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := led.ListRuns(camp.ID)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	if runs[0].Bugreport != "" || runs[0].Report != "" {
		t.Errorf("clean run stored failure artifacts: %q, %q", runs[0].Bugreport, runs[0].Report)
	}
}

func TestDashboardConfig(t *testing.T) {
	cfg := &config.Config{
		Serial:     "emulator-5554",
		Runs:       10,
		Events:     50000,
		Packages:   []string{"com.a", "com.b"},
		Filter:     "crash",
		Seed:       7,
		Throttle:   250 * time.Millisecond,
		MinBattery: 20,
		OutputDir:  "artifacts",
		ConfigFile: "campaign.yml",
	}

	got := dashboardConfig(cfg)
	if got.Serial != "emulator-5554" {
		t.Errorf("Serial = %q, want emulator-5554", got.Serial)
	}
	if got.Runs != 10 || got.Events != 50000 {
		t.Errorf("Runs/Events = %d/%d, want 10/50000", got.Runs, got.Events)
	}
	if len(got.Packages) != 2 {
		t.Errorf("len(Packages) = %d, want 2", len(got.Packages))
	}
	if got.Throttle != 250 {
		t.Errorf("Throttle = %dms, want 250ms", got.Throttle)
	}
	if got.Filter != "crash" || got.Seed != 7 {
		t.Errorf("Filter/Seed = %q/%d, want crash/7", got.Filter, got.Seed)
	}
	if got.ConfigFile != "campaign.yml" {
		t.Errorf("ConfigFile = %q, want campaign.yml", got.ConfigFile)
	}
}
