package artifacts

import (
	"fmt"
	"path/filepath"
)

// RunPaths holds the artifact locations for a single campaign run.
// MonkeyLog and DeviceLog exist for every run; Bugreport and Report are
// only written for failed runs.
type RunPaths struct {
	MonkeyLog string `json:"monkey_log"`
	DeviceLog string `json:"device_log"`
	Bugreport string `json:"bugreport"`
	Report    string `json:"report"`
}

// PadWidth returns the zero-pad width for run indexes in a campaign of
// total runs: the digit count of the largest index. A single-run campaign
// still pads to one digit.
func PadWidth(total int) int {
	width := 1
	for n := total - 1; n >= 10; n /= 10 {
		width++
	}
	return width
}

// Stem returns the shared path prefix for one run's artifacts inside dir.
// Indexes are zero-based and padded so stems sort lexicographically in
// run order.
func Stem(dir string, total, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%0*d", PadWidth(total), index))
}

// PathsFor derives the four artifact paths for run index of a campaign
// with total runs.
func PathsFor(dir string, total, index int) RunPaths {
	stem := Stem(dir, total, index)
	return RunPaths{
		MonkeyLog: stem + "-monkey.txt",
		DeviceLog: stem + "-logcat.txt",
		Bugreport: stem + "-bugreport.txt",
		Report:    stem + ".html",
	}
}
