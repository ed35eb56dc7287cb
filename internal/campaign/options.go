package campaign

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/monkeyfire/internal/artifacts"
	"github.com/torosent/monkeyfire/internal/metrics"
	"github.com/torosent/monkeyfire/internal/monkey"
)

// Device abstracts the Android device under test.
type Device interface {
	Reboot(ctx context.Context) error
	WaitUntilBooted(ctx context.Context) error
	DismissKeyguard(ctx context.Context) error
	WaitForChargeAbove(ctx context.Context, threshold int) error
	ExecuteTo(ctx context.Context, w io.Writer, args ...string) error
	CollectBugreport(ctx context.Context, w io.Writer) error
}

// CaptureHandle is a running device log capture.
type CaptureHandle interface {
	Stop() error
}

// Renderer produces an HTML report from a failed run's artifacts.
type Renderer interface {
	Render(ctx context.Context, paths artifacts.RunPaths) error
}

// Recorder persists run outcomes. Recording failures are reported but
// never stop the campaign.
type Recorder interface {
	RecordRun(result RunResult) error
}

// Options configure the campaign Runner.
type Options struct {
	Device       Device                                                         // device under test (required)
	StartCapture func(ctx context.Context, path string) (CaptureHandle, error) // device log capture (required)
	Renderer     Renderer                                                       // HTML report rendering for failed runs
	Recorder     Recorder                                                       // optional run persistence
	Metrics      *metrics.Collector                                             // optional stats collection
	Tracer       trace.Tracer                                                   // optional span instrumentation

	Runs        int           // stress runs to execute
	OutputDir   string        // artifact directory, must already exist
	MinBattery  int           // charge floor the battery must exceed before each run
	SettleDelay time.Duration // pause after boot before the charge gate
	Monkey      monkey.Options

	ErrOut io.Writer // destination for non-fatal complaints
}

func (o *Options) normalize() {
	if o.Runs <= 0 {
		o.Runs = 1
	}
	if o.MinBattery < 0 {
		o.MinBattery = 0
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.ErrOut == nil {
		o.ErrOut = os.Stderr
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("monkeyfire")
	}
}
