// Package logcat records device logs to a file for the duration of a
// stress run.
package logcat

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/torosent/monkeyfire/internal/adb"
)

const defaultStopGrace = 5 * time.Second

// Recorder starts logcat captures against a single device.
type Recorder struct {
	client  *adb.Client
	filters []string

	// StopGrace is how long Stop waits for logcat to exit after being
	// asked before killing it.
	StopGrace time.Duration
}

// NewRecorder returns a Recorder that applies the given filter
// expressions to every capture. Filters use logcat's tag:priority
// syntax, for example "ActivityManager:I" or "*:E".
func NewRecorder(client *adb.Client, filters []string) *Recorder {
	return &Recorder{client: client, filters: filters, StopGrace: defaultStopGrace}
}

// Start clears the device log buffer and begins streaming logcat output
// into a newly created file at path. The returned capture runs until
// Stop is called, so log lines from the whole run are on disk even if
// the device dies mid-run.
func (r *Recorder) Start(ctx context.Context, path string) (*Capture, error) {
	if err := r.client.Execute(ctx, "logcat", "-c"); err != nil {
		return nil, fmt.Errorf("clear log buffer: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create device log: %w", err)
	}
	args := append([]string{"logcat"}, r.filters...)
	stream, err := r.client.StartStream(f, args...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Capture{stream: stream, file: f, grace: r.StopGrace}, nil
}

// Capture is a running logcat stream bound to an output file.
type Capture struct {
	stream *adb.Stream
	file   *os.File
	grace  time.Duration

	once    sync.Once
	stopErr error
}

// Stop ends the capture and closes the output file. The stream is asked
// to exit first and killed after a grace period if it lingers. Stop is
// safe to call more than once; later calls return the first result.
func (c *Capture) Stop() error {
	c.once.Do(func() { c.stopErr = c.stop() })
	return c.stopErr
}

func (c *Capture) stop() error {
	err := c.terminate()
	if cerr := c.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// terminate waits for the stream to exit but does not inspect its exit
// status. A signal-terminated logcat reports a non-zero status, and
// that is the normal way every capture ends.
func (c *Capture) terminate() error {
	if err := c.stream.Terminate(); err != nil {
		return err
	}
	select {
	case <-c.stream.Done():
		return nil
	case <-time.After(c.grace):
	}
	if err := c.stream.Kill(); err != nil {
		return err
	}
	<-c.stream.Done()
	return nil
}
