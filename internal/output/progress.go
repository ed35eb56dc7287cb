package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/monkeyfire/internal/campaign"
	"github.com/torosent/monkeyfire/internal/metrics"
)

// ProgressReporter displays real-time campaign progress updates.
type ProgressReporter struct {
	state     func() campaign.State
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a progress reporter that samples campaign
// state at the given interval.
func NewProgressReporter(state func() campaign.State, collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		state:     state,
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, p.statusLine())
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) statusLine() string {
	st := p.state()
	line := fmt.Sprintf("\rRun %d/%d | Phase: %s | Clean: %d | Failed: %d",
		st.Run, st.Total, st.Phase, st.Clean, st.Failed)
	if st.Battery >= 0 {
		line += fmt.Sprintf(" | Battery: %d%%", st.Battery)
	}
	if p.collector != nil {
		stats := p.collector.Stats(time.Since(p.start))
		if stats.Total > 0 {
			line += fmt.Sprintf(" | Runs/hour: %.1f", stats.RunsPerHour)
		}
	}
	return line
}
