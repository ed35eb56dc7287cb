package dashboard

import (
	"strings"
	"testing"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

func TestFormatCauseListRows(t *testing.T) {
	rows := formatCauseListRows(map[string]int{
		"crash or ANR":          5,
		"Device command failed": 2,
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !strings.Contains(rows[0], "crash or ANR") {
		t.Fatalf("expected most frequent cause first, got %s", rows[0])
	}
	if !strings.Contains(rows[0], "5") {
		t.Fatalf("expected count in formatted row, got %s", rows[0])
	}
}

func TestFormatCauseListRowsEmpty(t *testing.T) {
	rows := formatCauseListRows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected placeholder row, got %d rows", len(rows))
	}
	if !strings.Contains(rows[0], "No failures") {
		t.Fatalf("expected no-failures placeholder, got %s", rows[0])
	}
}

func TestFormatPhaseListRows(t *testing.T) {
	rows := formatPhaseListRows(map[string]time.Duration{
		"boot":   3 * time.Minute,
		"stress": 25 * time.Minute,
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !strings.Contains(rows[0], "stress") {
		t.Fatalf("expected longest phase first, got %s", rows[0])
	}
	if !strings.Contains(rows[0], "25m0s") {
		t.Fatalf("expected rounded duration in row, got %s", rows[0])
	}
}

func TestUpdateBatteryGauge(t *testing.T) {
	d := &Dashboard{
		batteryGauge:   widgets.NewGauge(),
		campaignConfig: CampaignConfig{MinBattery: 20},
	}

	d.updateBatteryGauge(-1)
	if d.batteryGauge.Label != "awaiting first read" {
		t.Errorf("expected placeholder label before first read, got %q", d.batteryGauge.Label)
	}
	if d.batteryGauge.Percent != 0 {
		t.Errorf("expected 0 percent before first read, got %d", d.batteryGauge.Percent)
	}

	d.updateBatteryGauge(17)
	if d.batteryGauge.Label != "17%" {
		t.Errorf("expected 17%% label, got %q", d.batteryGauge.Label)
	}
	if d.batteryGauge.BarColor != ui.ColorRed {
		t.Error("expected red bar below the charge gate")
	}

	d.updateBatteryGauge(80)
	if d.batteryGauge.Percent != 80 {
		t.Errorf("expected 80 percent, got %d", d.batteryGauge.Percent)
	}
	if d.batteryGauge.BarColor != ui.ColorGreen {
		t.Error("expected green bar above the charge gate")
	}
}

func TestFormatCampaignParams(t *testing.T) {
	tests := []struct {
		name     string
		config   CampaignConfig
		contains []string
		excludes []string
	}{
		{
			name: "basic config",
			config: CampaignConfig{
				Packages:   []string{"com.example.app"},
				Events:     50000,
				MinBattery: 20,
			},
			contains: []string{"Packages: com.example.app", "Events: 50000", "Min battery: 20%"},
			excludes: []string{"Filter:", "Seed:"},
		},
		{
			name:     "all packages by default",
			config:   CampaignConfig{Events: 1000},
			contains: []string{"Packages: all"},
		},
		{
			name: "multiple packages joined",
			config: CampaignConfig{
				Packages: []string{"com.a", "com.b"},
			},
			contains: []string{"Packages: com.a,com.b"},
		},
		{
			name: "crash filter shown",
			config: CampaignConfig{
				Filter: "crash",
			},
			contains: []string{"Filter: crash"},
		},
		{
			name: "fixed seed shown",
			config: CampaignConfig{
				Seed: 12345,
			},
			contains: []string{"Seed: 12345"},
		},
		{
			name: "random seed not shown",
			config: CampaignConfig{
				Events: 1000,
			},
			excludes: []string{"Seed:"},
		},
		{
			name: "with throttle",
			config: CampaignConfig{
				Throttle: 250,
			},
			contains: []string{"Throttle: 250ms"},
		},
		{
			name: "with artifact dir",
			config: CampaignConfig{
				OutputDir: "artifacts",
			},
			contains: []string{"Artifacts: artifacts"},
		},
		{
			name: "with config file",
			config: CampaignConfig{
				ConfigFile: "campaign.yml",
			},
			contains: []string{"Config: campaign.yml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Dashboard{campaignConfig: tt.config}
			result := d.formatCampaignParams()

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected result to contain %q, got %q", s, result)
				}
			}

			for _, s := range tt.excludes {
				if strings.Contains(result, s) {
					t.Errorf("expected result NOT to contain %q, got %q", s, result)
				}
			}
		})
	}
}
