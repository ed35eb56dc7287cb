package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BatteryDump holds the loosely typed key/value lines of a battery
// service dump.
type BatteryDump map[string]interface{}

// ParseBatteryDump reads "key: value" lines the way the battery service
// prints them: "true"/"false" become bool, digit runs become int, and
// anything else stays a string. Lines without a separator are skipped.
func ParseBatteryDump(out string) BatteryDump {
	dump := make(BatteryDump)
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		dump[key] = coerceValue(strings.TrimSpace(value))
	}
	return dump
}

func coerceValue(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

// Level returns the charge percentage. The dump must carry a numeric
// level entry.
func (d BatteryDump) Level() (int, error) {
	raw, ok := d["level"]
	if !ok {
		return 0, errors.New("battery dump has no level entry")
	}
	level, ok := raw.(int)
	if !ok {
		return 0, fmt.Errorf("battery level %v is not numeric", raw)
	}
	return level, nil
}
