package campaign

// Phase identifies what the campaign is doing for the run in progress.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseBoot      Phase = "boot"
	PhaseCharge    Phase = "charge"
	PhaseStress    Phase = "stress"
	PhaseBugreport Phase = "bugreport"
	PhaseRender    Phase = "render"
)

// Status classifies a finished run.
type Status string

const (
	StatusClean  Status = "clean"
	StatusFailed Status = "failed"
)

// FailureCause is the cause recorded for runs where the stress tool
// aborted on a device failure.
const FailureCause = "crash or ANR"

// State is a point-in-time snapshot of campaign progress.
type State struct {
	Run       int // 1-based number of the run in progress
	Total     int
	Phase     Phase
	Clean     int
	Failed    int
	Battery   int    // last observed battery level, -1 before any reading
	LastCause string // cause of the most recent failure
}
