// Package adb wraps the adb command-line binary as the transport to a
// device under test.
//
// All device interaction goes through a [Client], which shells out to adb
// and prefixes every invocation with the configured device serial. The
// package distinguishes two failure classes:
//
//   - [ExecError]: the command reached the device and exited non-zero.
//     Callers classify these with [errors.As] to decide whether a failure
//     is recoverable.
//   - Plain errors: the adb binary could not be started or the context
//     was canceled. These never indicate device-side behavior.
//
// # One-shot commands
//
// Use [Client.Execute] and its variants for commands that run to
// completion:
//
//	client := adb.New("adb", "emulator-5554")
//	if err := client.Execute(ctx, "reboot"); err != nil {
//		return err
//	}
//	value, err := client.GetProperty(ctx, "sys.boot_completed")
//
// # Long-lived commands
//
// Use [Client.StartStream] for commands that run until told to stop, such
// as logcat. The returned [Stream] owns the child process:
//
//	stream, err := client.StartStream(file, "logcat")
//	...
//	_ = stream.Terminate()
//	<-stream.Done()
package adb
