package adb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Stream is a long-lived adb command whose lifetime is managed by the
// caller instead of a context. The process keeps running across run
// phases until Terminate or Kill is called.
type Stream struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// StartStream launches an adb command that runs until terminated, with
// both output streams attached to w.
func (c *Client) StartStream(w io.Writer, args ...string) (*Stream, error) {
	cmd := exec.Command(c.path, c.prefix(args)...)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	s := &Stream{cmd: cmd, done: make(chan struct{})}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

// Done is closed once the process has exited and its output is flushed.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Err reports how the process exited. Valid only after Done is closed.
func (s *Stream) Err() error { return s.waitErr }

// Terminate asks the process to exit. Signaling a process that already
// exited is not an error.
func (s *Stream) Terminate() error { return s.signal(syscall.SIGTERM) }

// Kill forcibly ends the process.
func (s *Stream) Kill() error { return s.signal(os.Kill) }

func (s *Stream) signal(sig os.Signal) error {
	if err := s.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
