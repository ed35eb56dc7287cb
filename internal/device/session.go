// Package device layers run-gating primitives over the raw adb transport:
// reboot, boot readiness, charge gating, and battery inspection.
package device

import (
	"context"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// Controller is the command surface a session drives. *adb.Client
// satisfies it.
type Controller interface {
	Execute(ctx context.Context, args ...string) error
	ExecuteCapturing(ctx context.Context, args ...string) (string, error)
	ExecuteTo(ctx context.Context, w io.Writer, args ...string) error
	WaitReady(ctx context.Context) error
	GetProperty(ctx context.Context, name string) (string, error)
	Shell(ctx context.Context, args ...string) error
}

// Options configure session poll pacing.
type Options struct {
	BootPollInterval   time.Duration // default 2s
	ChargePollInterval time.Duration // default 1m
	OnBattery          func(level int) // observer for charge-gate readings
}

func (o *Options) normalize() {
	if o.BootPollInterval <= 0 {
		o.BootPollInterval = 2 * time.Second
	}
	if o.ChargePollInterval <= 0 {
		o.ChargePollInterval = time.Minute
	}
}

// Session serializes all command traffic to one device. Exactly one
// command is in flight at any time; callers must not share a session
// across goroutines.
type Session struct {
	ctrl Controller
	opts Options
}

func NewSession(ctrl Controller, opts Options) *Session {
	opts.normalize()
	return &Session{ctrl: ctrl, opts: opts}
}

// Reboot restarts the device. The call returns once the command is
// accepted, long before the device is usable again.
func (s *Session) Reboot(ctx context.Context) error {
	return s.ctrl.Execute(ctx, "reboot")
}

// WaitUntilBooted blocks until the device reports a completed boot: the
// transport sees the device, then the boot-completed property reads
// exactly "1". Polling is unbounded; cancellation is the only exit from
// a device that never finishes booting.
func (s *Session) WaitUntilBooted(ctx context.Context) error {
	if err := s.ctrl.WaitReady(ctx); err != nil {
		return err
	}
	limiter := rate.NewLimiter(rate.Every(s.opts.BootPollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		val, err := s.ctrl.GetProperty(ctx, "sys.boot_completed")
		if err != nil {
			return err
		}
		if val == "1" {
			return nil
		}
	}
}

// DismissKeyguard sends the menu key, which dismisses an unsecured
// keyguard so injected events reach the foreground app.
func (s *Session) DismissKeyguard(ctx context.Context) error {
	return s.ctrl.Shell(ctx, "input", "keyevent", "82")
}

// WaitForChargeAbove blocks until the battery level exceeds threshold.
// The first reading happens immediately; while at or below threshold the
// session re-reads once per charge interval, without bound. Read
// failures propagate.
func (s *Session) WaitForChargeAbove(ctx context.Context, threshold int) error {
	limiter := rate.NewLimiter(rate.Every(s.opts.ChargePollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		level, err := s.BatteryLevel(ctx)
		if err != nil {
			return err
		}
		if s.opts.OnBattery != nil {
			s.opts.OnBattery(level)
		}
		if level > threshold {
			return nil
		}
	}
}

// BatteryLevel reads the current charge percentage from the battery
// service dump.
func (s *Session) BatteryLevel(ctx context.Context) (int, error) {
	out, err := s.ctrl.ExecuteCapturing(ctx, "shell", "dumpsys", "battery")
	if err != nil {
		return 0, err
	}
	return ParseBatteryDump(out).Level()
}

// ExecuteTo issues a device command with output attached to w, through
// the session's serialized command channel.
func (s *Session) ExecuteTo(ctx context.Context, w io.Writer, args ...string) error {
	return s.ctrl.ExecuteTo(ctx, w, args...)
}

// CollectBugreport streams a full device state report into w.
func (s *Session) CollectBugreport(ctx context.Context, w io.Writer) error {
	return s.ctrl.ExecuteTo(ctx, w, "bugreport")
}
