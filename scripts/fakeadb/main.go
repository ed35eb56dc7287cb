// fakeadb emulates the adb binary and an attached Android device so a
// full campaign can be rehearsed without hardware:
//
//	go build -o /tmp/fakeadb ./scripts/fakeadb
//	monkeyfire --adb /tmp/fakeadb --runs 3 --events 100 --settle-delay 2s
//
// Device state persists across invocations through a state directory,
// since adb is launched as a fresh process for every command. Behavior
// is tuned through the environment:
//
//	FAKEADB_STATE        state directory (default $TMPDIR/fakeadb)
//	FAKEADB_BOOT_DELAY   time from reboot until boot completes (default 3s)
//	FAKEADB_BATTERY      battery level after a reboot (default 100)
//	FAKEADB_CHARGE_RATE  percent gained per minute while waiting (default 50)
//	FAKEADB_MONKEY_EXIT  monkey exit code, non-zero fakes a crash (default 0)
//	FAKEADB_MONKEY_DELAY delay between injected event lines (default 0)
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

func main() {
	args := os.Args[1:]
	// The device serial is bookkeeping for the real adb; a fake device
	// answers to any serial.
	if len(args) >= 2 && args[0] == "-s" {
		args = args[2:]
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "fakeadb: no command")
		os.Exit(1)
	}

	d := &device{stateDir: stateDir()}
	if err := os.MkdirAll(d.stateDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fakeadb: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "wait-for-device":
		// The fake device is always attached.
	case "reboot":
		d.reboot()
	case "bugreport":
		d.bugreport()
	case "logcat":
		d.logcat(args[1:])
	case "shell":
		d.shell(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "fakeadb: unknown command %q\n", args[0])
		os.Exit(1)
	}
}

func stateDir() string {
	if dir := os.Getenv("FAKEADB_STATE"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "fakeadb")
}

type device struct {
	stateDir string
}

// reboot resets the boot clock and battery level.
func (d *device) reboot() {
	bootedAt := time.Now().Add(envDuration("FAKEADB_BOOT_DELAY", 3*time.Second))
	d.writeState("boot", strconv.FormatInt(bootedAt.UnixNano(), 10))
	d.writeState("battery", fmt.Sprintf("%d %d", envInt("FAKEADB_BATTERY", 100), time.Now().UnixNano()))
}

func (d *device) shell(args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "getprop":
		if len(args) > 1 && args[1] == "sys.boot_completed" && d.booted() {
			fmt.Println("1")
		} else {
			fmt.Println()
		}
	case "dumpsys":
		if len(args) > 1 && args[1] == "battery" {
			fmt.Printf("Current Battery Service state:\n  AC powered: true\n  level: %d\n  scale: 100\n", d.batteryLevel())
		}
	case "input":
		// Key injection always lands.
	case "monkey":
		d.monkey(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "fakeadb: unknown shell command %q\n", args[0])
		os.Exit(1)
	}
}

// booted reports whether the boot delay from the last reboot has
// elapsed. A device that was never rebooted counts as booted.
func (d *device) booted() bool {
	raw, err := d.readState("boot")
	if err != nil {
		return true
	}
	nanos, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return true
	}
	return time.Now().UnixNano() >= nanos
}

// batteryLevel reads the stored level and advances it by the charge
// rate for the time elapsed since it was stored.
func (d *device) batteryLevel() int {
	raw, err := d.readState("battery")
	if err != nil {
		return envInt("FAKEADB_BATTERY", 100)
	}
	var level int
	var storedAt int64
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d %d", &level, &storedAt); err != nil {
		return envInt("FAKEADB_BATTERY", 100)
	}
	minutes := time.Since(time.Unix(0, storedAt)).Minutes()
	level += int(minutes * float64(envInt("FAKEADB_CHARGE_RATE", 50)))
	if level > 100 {
		level = 100
	}
	return level
}

// monkey streams synthetic stress tool output. The final argument is
// the event count, matching the real invocation.
func (d *device) monkey(args []string) {
	count := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			count = n
		}
	}
	delay := envDuration("FAKEADB_MONKEY_DELAY", 0)

	fmt.Printf(":Monkey: seed=1337 count=%d\n", count)
	for i := 0; i < count; i++ {
		fmt.Printf(":Sending Touch (ACTION_DOWN): 0:(%d.0,%d.0)\n", 100+i%800, 200+i%1200)
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	if code := envInt("FAKEADB_MONKEY_EXIT", 0); code != 0 {
		fmt.Println("// CRASH: com.example.app (pid 4242)")
		fmt.Println("// Short Msg: java.lang.NullPointerException")
		fmt.Printf("** Monkey aborted due to error.\nEvents injected: %d\n", count/2)
		os.Exit(code)
	}
	fmt.Printf("Events injected: %d\n// Monkey finished\n", count)
}

// logcat clears the buffer for -c, otherwise streams log lines until
// terminated, the way the device-side logger behaves.
func (d *device) logcat(args []string) {
	if len(args) > 0 && args[0] == "-c" {
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, os.Interrupt)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fmt.Printf("08-25 10:00:%02d.000  1234  1234 I ActivityManager: fake device event %d\n", seq%60, seq)
			seq++
		}
	}
}

func (d *device) bugreport() {
	fmt.Println("========================================================")
	fmt.Println("== dumpstate: fake device")
	fmt.Println("========================================================")
	fmt.Printf("Build: fakeadb\nUptime: %s\nBattery: %d\n", time.Now().Format(time.RFC3339), d.batteryLevel())
	fmt.Println("------ SYSTEM LOG ------")
	fmt.Println("08-25 10:00:00.000  1234  1234 I ActivityManager: fake bugreport body")
}

func (d *device) writeState(name, value string) {
	if err := os.WriteFile(filepath.Join(d.stateDir, name), []byte(value), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "fakeadb: %v\n", err)
		os.Exit(1)
	}
}

func (d *device) readState(name string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(d.stateDir, name))
	return string(raw), err
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(name string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(name); raw != "" {
		if dur, err := time.ParseDuration(raw); err == nil {
			return dur
		}
	}
	return fallback
}
