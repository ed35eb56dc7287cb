package campaign

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/torosent/monkeyfire/internal/adb"
	"github.com/torosent/monkeyfire/internal/artifacts"
	"github.com/torosent/monkeyfire/internal/metrics"
	"github.com/torosent/monkeyfire/internal/monkey"
	"github.com/torosent/monkeyfire/internal/tracing"
)

// RunResult captures a single run's outcome.
type RunResult struct {
	Index     int
	Status    Status
	Cause     string
	Paths     artifacts.RunPaths
	StartedAt time.Time
	Duration  time.Duration
}

// Result captures the campaign summary.
type Result struct {
	Runs     []RunResult
	Clean    int
	Failed   int
	Duration time.Duration
}

// Runner executes stress runs one at a time against a single device.
type Runner struct {
	opt Options

	mu         sync.Mutex
	state      State
	phaseStart time.Time
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{
		opt:   opt,
		state: State{Phase: PhaseIdle, Total: opt.Runs, Battery: -1},
	}
}

// Run executes the configured number of runs. It stops early when ctx
// is canceled or a run hits an error other than the stress tool
// reporting a device failure.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var result Result

	for index := 0; index < r.opt.Runs; index++ {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		r.beginRun(index)

		runCtx, span := tracing.StartRunSpan(ctx, r.opt.Tracer, index)
		runRes, err := r.runOne(runCtx, index)
		tracing.EndSpan(span, err)

		if err != nil {
			r.recordAborted(runRes, err)
			result.Duration = time.Since(start)
			return result, fmt.Errorf("run %d: %w", index, err)
		}

		result.Runs = append(result.Runs, runRes)
		if runRes.Status == StatusFailed {
			result.Failed++
		} else {
			result.Clean++
		}
		r.recordOutcome(runRes)

		if r.opt.Metrics != nil {
			r.opt.Metrics.RecordRun(runRes.Duration, runRes.Cause)
		}
		if r.opt.Recorder != nil {
			if rerr := r.opt.Recorder.RecordRun(runRes); rerr != nil {
				fmt.Fprintf(r.opt.ErrOut, "monkeyfire: record run %d: %v\n", index, rerr)
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runOne(ctx context.Context, index int) (RunResult, error) {
	paths := artifacts.PathsFor(r.opt.OutputDir, r.opt.Runs, index)
	result := RunResult{Index: index, Paths: paths, Status: StatusClean, StartedAt: time.Now()}
	defer r.setPhase(PhaseIdle)

	if err := r.tracePhase(ctx, PhaseBoot, r.prepareDevice); err != nil {
		return result, err
	}
	if err := r.tracePhase(ctx, PhaseCharge, func(ctx context.Context) error {
		return r.opt.Device.WaitForChargeAbove(ctx, r.opt.MinBattery)
	}); err != nil {
		return result, err
	}

	status, cause, err := r.stress(ctx, paths)
	result.Duration = time.Since(result.StartedAt)
	if err != nil {
		return result, err
	}
	result.Status = status
	result.Cause = cause

	if status == StatusFailed && r.opt.Renderer != nil {
		r.setPhase(PhaseRender)
		if rerr := r.opt.Renderer.Render(ctx, paths); rerr != nil {
			fmt.Fprintf(r.opt.ErrOut, "monkeyfire: render report for run %d: %v\n", index, rerr)
		}
	}
	return result, nil
}

// prepareDevice reboots the device and brings it to a stressable state.
func (r *Runner) prepareDevice(ctx context.Context) error {
	if err := r.opt.Device.Reboot(ctx); err != nil {
		return err
	}
	if err := r.opt.Device.WaitUntilBooted(ctx); err != nil {
		return err
	}
	// Keyguard dismissal is best-effort: some images ship without a
	// keyguard and the stress tool does not need the screen unlocked.
	if err := r.opt.Device.DismissKeyguard(ctx); err != nil {
		fmt.Fprintf(r.opt.ErrOut, "monkeyfire: dismiss keyguard: %v\n", err)
	}
	if r.opt.SettleDelay > 0 {
		select {
		case <-time.After(r.opt.SettleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// stress drives the monkey tool with the device log capture running and
// classifies the outcome. Log capture and the stress log file are torn
// down before it returns, so artifacts are complete on disk.
func (r *Runner) stress(ctx context.Context, paths artifacts.RunPaths) (status Status, cause string, err error) {
	r.setPhase(PhaseStress)
	ctx, span := tracing.StartPhaseSpan(ctx, r.opt.Tracer, string(PhaseStress))
	defer func() { tracing.EndSpan(span, err) }()

	capture, err := r.opt.StartCapture(ctx, paths.DeviceLog)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if serr := capture.Stop(); serr != nil {
			fmt.Fprintf(r.opt.ErrOut, "monkeyfire: stop device log capture: %v\n", serr)
		}
	}()

	stressLog, err := os.Create(paths.MonkeyLog)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if cerr := stressLog.Close(); cerr != nil {
			fmt.Fprintf(r.opt.ErrOut, "monkeyfire: close stress log: %v\n", cerr)
		}
	}()

	err = r.opt.Device.ExecuteTo(ctx, stressLog, monkey.Args(r.opt.Monkey)...)
	if err == nil {
		return StatusClean, "", nil
	}

	var execErr *adb.ExecError
	if !errors.As(err, &execErr) {
		return "", "", err
	}
	err = nil

	// The stress tool aborted with adb still answering: the device hit a
	// crash or ANR. Grab a bugreport right away while the failure state
	// is fresh.
	r.setPhase(PhaseBugreport)
	if berr := r.collectBugreport(ctx, paths.Bugreport); berr != nil {
		fmt.Fprintf(r.opt.ErrOut, "monkeyfire: collect bugreport: %v\n", berr)
	}
	return StatusFailed, FailureCause, nil
}

func (r *Runner) collectBugreport(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = r.opt.Device.CollectBugreport(ctx, f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (r *Runner) tracePhase(ctx context.Context, phase Phase, fn func(context.Context) error) error {
	r.setPhase(phase)
	ctx, span := tracing.StartPhaseSpan(ctx, r.opt.Tracer, string(phase))
	err := fn(ctx)
	tracing.EndSpan(span, err)
	return err
}

func (r *Runner) setPhase(phase Phase) {
	now := time.Now()
	r.mu.Lock()
	prev := r.state.Phase
	elapsed := now.Sub(r.phaseStart)
	r.state.Phase = phase
	r.phaseStart = now
	r.mu.Unlock()

	if prev != PhaseIdle && r.opt.Metrics != nil {
		r.opt.Metrics.RecordPhase(string(prev), elapsed)
	}
}

func (r *Runner) beginRun(index int) {
	r.mu.Lock()
	r.state.Run = index + 1
	r.mu.Unlock()
}

func (r *Runner) recordOutcome(res RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Status == StatusFailed {
		r.state.Failed++
		r.state.LastCause = res.Cause
	} else {
		r.state.Clean++
	}
}

// recordAborted surfaces a campaign-fatal run in the stats. An
// interrupt is the operator's doing, not a device failure, so it is not
// counted.
func (r *Runner) recordAborted(res RunResult, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	cause := metrics.FriendlyErrorName(fmt.Sprintf("%T", err))
	r.mu.Lock()
	r.state.Failed++
	r.state.LastCause = cause
	r.mu.Unlock()
	if r.opt.Metrics != nil {
		r.opt.Metrics.RecordRun(time.Since(res.StartedAt), cause)
	}
}

// ObserveBattery records a battery reading for progress displays. Wire
// it to the device session's battery observer.
func (r *Runner) ObserveBattery(level int) {
	r.mu.Lock()
	r.state.Battery = level
	r.mu.Unlock()
}

// State returns a snapshot of campaign progress. It is safe to call
// concurrently with Run.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
