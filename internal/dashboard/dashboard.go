package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/torosent/monkeyfire/internal/campaign"
	"github.com/torosent/monkeyfire/internal/metrics"
)

// CampaignConfig holds campaign configuration parameters for display.
type CampaignConfig struct {
	Serial     string   // Target device serial (empty = default device)
	Runs       int      // Total runs planned
	Events     int      // Stress events per run
	Packages   []string // Package allow-list (empty = all packages)
	Filter     string   // Failure filter (crash, anr)
	Seed       int64    // Stress tool seed (0 = random)
	Throttle   int64    // Milliseconds between injected events
	MinBattery int      // Charge gate threshold
	OutputDir  string   // Artifact directory
	ConfigFile string   // Path to config file if used
}

// Dashboard renders a live terminal UI for campaign progress.
type Dashboard struct {
	state        func() campaign.State
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid            *ui.Grid
	durationSparkle *widgets.SparklineGroup
	durationPara    *widgets.Paragraph
	runsGauge       *widgets.Gauge
	batteryGauge    *widgets.Gauge
	causeList       *widgets.List
	phaseList       *widgets.List
	summaryPara     *widgets.Paragraph
	metricsPara     *widgets.Paragraph
	durationHistory []float64
	startTime       time.Time
	campaignTime    time.Duration
	campaignConfig  CampaignConfig
}

// New creates a new Dashboard.
func New(state func() campaign.State, collector *metrics.Collector, cfg CampaignConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		state:           state,
		collector:       collector,
		ctx:             ctx,
		cancel:          cancel,
		shutdownFunc:    shutdownFunc,
		durationHistory: make([]float64, 0, 100),
		startTime:       time.Now(),
		campaignConfig:  cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Run Duration Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Duration (min)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.durationSparkle = widgets.NewSparklineGroup(sparkline)
	d.durationSparkle.Title = "Run Duration Trend"
	d.durationSparkle.BorderStyle.Fg = ui.ColorCyan

	// Duration Metrics Paragraph
	d.durationPara = widgets.NewParagraph()
	d.durationPara.Title = "Run Duration Stats"
	d.durationPara.Text = "Min: 0s\nMean: 0s\nP50: 0s\nP90: 0s\nP99: 0s"
	d.durationPara.BorderStyle.Fg = ui.ColorCyan

	// Runs Gauge
	d.runsGauge = widgets.NewGauge()
	d.runsGauge.Title = "Campaign Progress"
	d.runsGauge.Percent = 0
	d.runsGauge.BarColor = ui.ColorBlue
	d.runsGauge.BorderStyle.Fg = ui.ColorCyan
	d.runsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Battery Gauge
	d.batteryGauge = widgets.NewGauge()
	d.batteryGauge.Title = "Battery"
	d.batteryGauge.Percent = 0
	d.batteryGauge.Label = "awaiting first read"
	d.batteryGauge.BarColor = ui.ColorGreen
	d.batteryGauge.BorderStyle.Fg = ui.ColorCyan
	d.batteryGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Failure Cause List
	d.causeList = widgets.NewList()
	d.causeList.Title = "Failure Causes"
	d.causeList.Rows = []string{"No failures"}
	d.causeList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.causeList.BorderStyle.Fg = ui.ColorCyan

	// Phase List
	d.phaseList = widgets.NewList()
	d.phaseList.Title = "Time by Phase"
	d.phaseList.Rows = []string{"Awaiting data"}
	d.phaseList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.phaseList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Campaign Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.18,
			ui.NewCol(0.5, d.runsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.26,
			ui.NewCol(0.65, d.durationSparkle),
			ui.NewCol(0.35, d.durationPara),
		),
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.batteryGauge),
		),
		ui.NewRow(0.28,
			ui.NewCol(0.5, d.causeList),
			ui.NewCol(0.5, d.phaseList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	d.campaignTime = time.Since(d.startTime)
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// GetFinalStats returns the final statistics after the dashboard has stopped.
func (d *Dashboard) GetFinalStats() metrics.Stats {
	return d.collector.Stats(d.campaignTime)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from campaign state and the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.state()
	elapsed := time.Since(d.startTime)
	stats := d.collector.Stats(elapsed)

	// Update duration history for sparkline
	if stats.Total > 0 && stats.MeanRun > 0 {
		minutes := stats.MeanRunMs / 60000.0
		d.durationHistory = append(d.durationHistory, minutes)
		if len(d.durationHistory) > 100 {
			d.durationHistory = d.durationHistory[1:]
		}
		d.durationSparkle.Sparklines[0].Data = d.durationHistory
		// Update sparkline title with current duration values
		d.durationSparkle.Title = fmt.Sprintf(
			"Run Duration Trend | Mean: %s | Min: %s | Max: %s",
			stats.MeanRun.Round(time.Second),
			stats.MinRun.Round(time.Second),
			stats.MaxRun.Round(time.Second),
		)
	}

	completed := st.Clean + st.Failed
	runsPercent := 0
	if st.Total > 0 {
		runsPercent = int((float64(completed) / float64(st.Total)) * 100)
	}
	if runsPercent > 100 {
		runsPercent = 100
	}
	d.runsGauge.Percent = runsPercent
	d.runsGauge.Label = fmt.Sprintf("%d/%d runs", completed, st.Total)

	d.updateBatteryGauge(st.Battery)

	cleanRate := 0.0
	if completed > 0 {
		cleanRate = (float64(st.Clean) / float64(completed)) * 100
	}

	device := d.campaignConfig.Serial
	if device == "" {
		device = "default"
	}

	// Build campaign parameters line
	params := d.formatCampaignParams()

	d.summaryPara.Text = fmt.Sprintf(
		"Device: %s\n%s\nElapsed: %s | Run: %d/%d | Phase: %s | Clean Rate: %.1f%%",
		device,
		params,
		elapsed.Round(time.Second),
		st.Run,
		st.Total,
		st.Phase,
		cleanRate,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Completed Runs:    %d\nClean:             %d\nFailed:            %d\nRuns/hour:         %.2f\nClean Rate:        %.1f%%\nMin Run:           %s\nMean Run:          %s\nP50/P90/P99:       %s / %s / %s",
		stats.Total,
		stats.Clean,
		stats.Failed,
		stats.RunsPerHour,
		cleanRate,
		stats.MinRun.Round(time.Second),
		stats.MeanRun.Round(time.Second),
		stats.P50Run.Round(time.Second),
		stats.P90Run.Round(time.Second),
		stats.P99Run.Round(time.Second),
	)

	d.durationPara.Text = fmt.Sprintf(
		"Min:  %s\nMean: %s\nP50:  %s\nP90:  %s\nP99:  %s",
		stats.MinRun.Round(time.Second),
		stats.MeanRun.Round(time.Second),
		stats.P50Run.Round(time.Second),
		stats.P90Run.Round(time.Second),
		stats.P99Run.Round(time.Second),
	)

	d.causeList.Rows = formatCauseListRows(stats.Causes)
	d.phaseList.Rows = formatPhaseListRows(stats.Phases)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func (d *Dashboard) updateBatteryGauge(level int) {
	if level < 0 {
		d.batteryGauge.Percent = 0
		d.batteryGauge.Label = "awaiting first read"
		return
	}
	percent := level
	if percent > 100 {
		percent = 100
	}
	d.batteryGauge.Percent = percent
	d.batteryGauge.Label = fmt.Sprintf("%d%%", level)
	if d.campaignConfig.MinBattery > 0 && level < d.campaignConfig.MinBattery {
		d.batteryGauge.BarColor = ui.ColorRed
	} else {
		d.batteryGauge.BarColor = ui.ColorGreen
	}
}

func formatCauseListRows(causes map[string]int) []string {
	rows := metrics.FlattenCauseBuckets(causes)
	if len(rows) == 0 {
		return []string{"[No failures](fg:green)"}
	}
	maxRows := len(rows)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		row := rows[i]
		formatted = append(formatted, fmt.Sprintf("[%s](fg:red) %d", row.Cause, row.Count))
	}
	return formatted
}

func formatPhaseListRows(phases map[string]time.Duration) []string {
	rows := metrics.FlattenPhaseTotals(phases)
	if len(rows) == 0 {
		return []string{"[Awaiting data](fg:green)"}
	}
	formatted := make([]string, 0, len(rows))
	for _, row := range rows {
		formatted = append(formatted, fmt.Sprintf("[%s](fg:cyan) %s", row.Phase, row.Total.Round(time.Second)))
	}
	return formatted
}

// formatCampaignParams formats the campaign configuration parameters for display.
func (d *Dashboard) formatCampaignParams() string {
	var parts []string

	// Packages
	if len(d.campaignConfig.Packages) > 0 {
		parts = append(parts, fmt.Sprintf("Packages: %s", strings.Join(d.campaignConfig.Packages, ",")))
	} else {
		parts = append(parts, "Packages: all")
	}

	// Events per run
	if d.campaignConfig.Events > 0 {
		parts = append(parts, fmt.Sprintf("Events: %d", d.campaignConfig.Events))
	}

	// Failure filter (only show if set)
	if d.campaignConfig.Filter != "" {
		parts = append(parts, fmt.Sprintf("Filter: %s", d.campaignConfig.Filter))
	}

	// Seed (only show if fixed)
	if d.campaignConfig.Seed > 0 {
		parts = append(parts, fmt.Sprintf("Seed: %d", d.campaignConfig.Seed))
	}

	// Throttle
	if d.campaignConfig.Throttle > 0 {
		parts = append(parts, fmt.Sprintf("Throttle: %dms", d.campaignConfig.Throttle))
	}

	// Charge gate
	if d.campaignConfig.MinBattery > 0 {
		parts = append(parts, fmt.Sprintf("Min battery: %d%%", d.campaignConfig.MinBattery))
	}

	// Artifact directory
	if d.campaignConfig.OutputDir != "" {
		parts = append(parts, fmt.Sprintf("Artifacts: %s", d.campaignConfig.OutputDir))
	}

	// Config file (only show if used)
	if d.campaignConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.campaignConfig.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
