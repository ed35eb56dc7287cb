package adb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Client invokes the adb binary against a single device.
type Client struct {
	path   string
	serial string
}

// New creates a Client for the adb binary at path. An empty path falls
// back to "adb" on PATH. A non-empty serial is passed as -s on every
// invocation; leave it empty to target the default device.
func New(path, serial string) *Client {
	if strings.TrimSpace(path) == "" {
		path = "adb"
	}
	return &Client{path: path, serial: serial}
}

// ExecError reports a device command that ran and exited non-zero.
type ExecError struct {
	Command  string
	ExitCode int
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("adb %s: exit status %d", e.Command, e.ExitCode)
}

// Execute runs an adb command to completion, discarding its output.
func (c *Client) Execute(ctx context.Context, args ...string) error {
	cmd := c.command(ctx, args)
	return c.classify(ctx, cmd.Run(), args)
}

// ExecuteCapturing runs an adb command to completion and returns its
// standard output.
func (c *Client) ExecuteCapturing(ctx context.Context, args ...string) (string, error) {
	cmd := c.command(ctx, args)
	out, err := cmd.Output()
	if err := c.classify(ctx, err, args); err != nil {
		return "", err
	}
	return string(out), nil
}

// ExecuteTo runs an adb command to completion with both output streams
// attached to w. Used for commands whose output is the artifact, such as
// the stress tool and bugreport.
func (c *Client) ExecuteTo(ctx context.Context, w io.Writer, args ...string) error {
	cmd := c.command(ctx, args)
	cmd.Stdout = w
	cmd.Stderr = w
	return c.classify(ctx, cmd.Run(), args)
}

// WaitReady blocks until adb reports the device present.
func (c *Client) WaitReady(ctx context.Context) error {
	return c.Execute(ctx, "wait-for-device")
}

// GetProperty reads a system property via getprop, trimmed of
// surrounding whitespace.
func (c *Client) GetProperty(ctx context.Context, name string) (string, error) {
	out, err := c.ExecuteCapturing(ctx, "shell", "getprop", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Shell runs a device shell command to completion.
func (c *Client) Shell(ctx context.Context, args ...string) error {
	return c.Execute(ctx, append([]string{"shell"}, args...)...)
}

func (c *Client) command(ctx context.Context, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, c.path, c.prefix(args)...)
}

// prefix inserts the device serial ahead of the logical arguments.
func (c *Client) prefix(args []string) []string {
	if c.serial == "" {
		return args
	}
	return append([]string{"-s", c.serial}, args...)
}

// classify maps a command outcome onto the package error taxonomy.
// Cancellation wins over exit status so a killed-by-context command is
// never mistaken for a device-side failure.
func (c *Client) classify(ctx context.Context, err error, args []string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExecError{Command: strings.Join(args, " "), ExitCode: exitErr.ExitCode()}
	}
	return fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
}
