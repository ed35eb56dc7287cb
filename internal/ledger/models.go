package ledger

import "time"

// Campaign statuses recorded for runs.
const (
	StatusClean  = "clean"
	StatusFailed = "failed"
)

// Campaign is one orchestrator invocation.
type Campaign struct {
	ID          string
	Serial      string
	RunsPlanned int
	Events      int
	Filter      string
	StartedAt   time.Time
}

// Run is the outcome of a single stress run within a campaign.
type Run struct {
	ID         int64
	CampaignID string
	Index      int
	Status     string
	Cause      string
	MonkeyLog  string
	DeviceLog  string
	Bugreport  string
	Report     string
	StartedAt  time.Time
	DurationMs int64
}
