// Package report invokes the external HTML report renderer for failed
// runs.
package report

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/torosent/monkeyfire/internal/artifacts"
)

// Tool renders an HTML report from a failed run's artifacts by running
// an external command.
type Tool struct {
	command string
}

// NewTool returns a Tool backed by the given renderer command.
func NewTool(command string) *Tool {
	return &Tool{command: command}
}

// Render produces paths.Report from the run's captured artifacts. The
// renderer is invoked as:
//
//	<command> <monkey-log> <device-log> <bugreport> <html-out>
func (t *Tool) Render(ctx context.Context, paths artifacts.RunPaths) error {
	args := []string{paths.MonkeyLog, paths.DeviceLog, paths.Bugreport, paths.Report}
	out, err := exec.CommandContext(ctx, t.command, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", t.command, err, msg)
		}
		return fmt.Errorf("%s: %w", t.command, err)
	}
	return nil
}
