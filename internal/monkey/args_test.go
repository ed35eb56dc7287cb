package monkey

import (
	"slices"
	"testing"
)

func baseOptions() Options {
	return Options{
		Packages: []string{"com.example.app"},
		Events:   1000,
	}
}

func TestArgsFixedFlags(t *testing.T) {
	args := Args(baseOptions())
	for _, want := range []string{
		"shell", "monkey",
		"android.intent.category.LAUNCHER",
		"--ignore-security-exceptions",
		"--monitor-native-crashes",
		"-v",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("Args() = %v, missing %q", args, want)
		}
	}
}

func TestArgsEventCountIsLast(t *testing.T) {
	args := Args(baseOptions())
	if got := args[len(args)-1]; got != "1000" {
		t.Errorf("final argument = %q, want %q", got, "1000")
	}
}

func TestArgsPackages(t *testing.T) {
	opts := baseOptions()
	opts.Packages = []string{"com.a", "com.b"}
	args := Args(opts)
	for _, pkg := range opts.Packages {
		i := slices.Index(args, pkg)
		if i < 1 {
			t.Fatalf("Args() = %v, missing package %q", args, pkg)
		}
		if args[i-1] != "-p" {
			t.Errorf("package %q not preceded by -p: %v", pkg, args)
		}
	}
}

func TestArgsFilterMatrix(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		include []string
		exclude []string
	}{
		{
			name:    "crash",
			filter:  FilterCrash,
			include: []string{"--ignore-timeouts"},
			exclude: []string{"--ignore-crashes", "--ignore-native-crashes"},
		},
		{
			name:    "anr",
			filter:  FilterANR,
			include: []string{"--ignore-crashes", "--ignore-native-crashes"},
			exclude: []string{"--ignore-timeouts"},
		},
		{
			name:    "none",
			filter:  FilterNone,
			exclude: []string{"--ignore-timeouts", "--ignore-crashes", "--ignore-native-crashes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			opts.Filter = tt.filter
			args := Args(opts)
			for _, flag := range tt.include {
				if !slices.Contains(args, flag) {
					t.Errorf("filter %q: Args() = %v, missing %q", tt.filter, args, flag)
				}
			}
			for _, flag := range tt.exclude {
				if slices.Contains(args, flag) {
					t.Errorf("filter %q: Args() = %v, must not contain %q", tt.filter, args, flag)
				}
			}
		})
	}
}

func TestArgsMatchDescription(t *testing.T) {
	opts := baseOptions()
	opts.MatchDescription = "flaky-activity"
	args := Args(opts)
	i := slices.Index(args, "--match-description")
	if i < 0 || i+1 >= len(args) {
		t.Fatalf("Args() = %v, missing --match-description value", args)
	}
	if args[i+1] != "flaky-activity" {
		t.Errorf("--match-description value = %q, want %q", args[i+1], "flaky-activity")
	}

	if slices.Contains(Args(baseOptions()), "--match-description") {
		t.Error("unset description filter still produced --match-description")
	}
}

func TestArgsSeedAndThrottle(t *testing.T) {
	opts := baseOptions()
	opts.Seed = 99
	opts.Throttle = 250
	args := Args(opts)
	if i := slices.Index(args, "-s"); i < 0 || args[i+1] != "99" {
		t.Errorf("Args() = %v, want -s 99", args)
	}
	if i := slices.Index(args, "--throttle"); i < 0 || args[i+1] != "250" {
		t.Errorf("Args() = %v, want --throttle 250", args)
	}

	plain := Args(baseOptions())
	if slices.Contains(plain, "-s") || slices.Contains(plain, "--throttle") {
		t.Errorf("zero seed/throttle still emitted flags: %v", plain)
	}
}
