// Package campaign provides the core stress-campaign execution engine
// for monkeyfire.
//
// A campaign is a fixed number of stress runs executed sequentially
// against one Android device. Every run walks the same phases:
//
//  1. Reboot the device and wait for sys.boot_completed.
//  2. Dismiss the keyguard and let the system settle.
//  3. Hold until the battery charge clears the configured floor.
//  4. Start capturing the device log, then drive the platform monkey
//     tool until it finishes or aborts.
//  5. Classify the run. A monkey abort means the device hit a crash or
//     ANR: a bugreport is collected immediately and, after log capture
//     is torn down, an HTML report is rendered from the artifacts.
//
// # Basic Usage
//
// Create a runner with options and the device plumbing:
//
//	opts := campaign.Options{
//		Device:       session,
//		StartCapture: startCapture,
//		Renderer:     renderTool,
//		Runs:         1000,
//		OutputDir:    dir,
//		MinBattery:   20,
//		Monkey:       monkeyOpts,
//	}
//	r := campaign.New(opts)
//	result, err := r.Run(ctx)
//
// # Error Handling
//
// Only one kind of run-time trouble is survivable: the stress
// invocation failing with [adb.ExecError], which is the signal that the
// monkey tool aborted on a device failure. Any other error, such as a
// reboot that fails or an artifact file that cannot be created, aborts
// the campaign, because runs after it could not be trusted.
//
// # Progress
//
// [Runner.State] returns a consistent snapshot of the run in progress
// and may be polled from another goroutine while Run executes. Wire
// [Runner.ObserveBattery] to the device session to surface charge-gate
// readings in that snapshot.
package campaign
