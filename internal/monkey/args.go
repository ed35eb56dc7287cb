// Package monkey builds the device-side stress tool invocation.
package monkey

import "strconv"

// Filter values select which failure class a campaign hunts for. The
// stress tool is told to ignore the other classes so runs only abort on
// the kind under investigation.
const (
	FilterNone  = ""
	FilterCrash = "crash"
	FilterANR   = "anr"
)

// Options describes one stress invocation.
type Options struct {
	Packages         []string
	Events           int
	Filter           string
	MatchDescription string
	Seed             int64
	Throttle         int64 // milliseconds between injected events
}

// Args assembles the adb argument list for a stress run. The event count
// is always the final argument.
func Args(opts Options) []string {
	args := []string{
		"shell", "monkey",
		"-c", "android.intent.category.LAUNCHER",
		"--ignore-security-exceptions",
		"--monitor-native-crashes",
		"-v",
	}
	for _, pkg := range opts.Packages {
		args = append(args, "-p", pkg)
	}
	switch opts.Filter {
	case FilterCrash:
		// Hunting crashes: let timeouts slide so only crashes abort.
		args = append(args, "--ignore-timeouts")
	case FilterANR:
		// Hunting ANRs: let crashes slide so only timeouts abort.
		args = append(args, "--ignore-crashes", "--ignore-native-crashes")
	}
	if opts.MatchDescription != "" {
		args = append(args, "--match-description", opts.MatchDescription)
	}
	if opts.Seed > 0 {
		args = append(args, "-s", strconv.FormatInt(opts.Seed, 10))
	}
	if opts.Throttle > 0 {
		args = append(args, "--throttle", strconv.FormatInt(opts.Throttle, 10))
	}
	return append(args, strconv.Itoa(opts.Events))
}
