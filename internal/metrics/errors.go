package metrics

import (
	"fmt"
	"strings"
	"unicode"
)

var friendlyAliases = map[string]string{
	"*adb.ExecError":                 "Device command failed",
	"adb.ExecError":                  "Device command failed",
	"*exec.ExitError":                "Subprocess exited abnormally",
	"exec.ExitError":                 "Subprocess exited abnormally",
	"*fs.PathError":                  "Filesystem error",
	"fs.PathError":                   "Filesystem error",
	"*context.deadlineExceededError": "Context deadline exceeded",
	"context.deadlineExceededError":  "Context deadline exceeded",
	"context.deadlineExceeded":       "Context deadline exceeded",
	"*context.deadlineExceeded":      "Context deadline exceeded",
}

// FriendlyErrorName returns a human-friendly label for a Go error type.
func FriendlyErrorName(typeName string) string {
	cleaned := strings.TrimSpace(typeName)
	if cleaned == "" {
		return "Unknown error"
	}

	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}

	cleaned = strings.TrimPrefix(cleaned, "*")
	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}
	if idx := strings.LastIndex(cleaned, "/"); idx != -1 {
		cleaned = cleaned[idx+1:]
	}

	pkg := ""
	name := cleaned
	if idx := strings.Index(name, "."); idx != -1 {
		pkg = name[:idx]
		name = name[idx+1:]
	}

	pretty := humanizeTypeName(name)
	if pretty == "" {
		pretty = name
	}

	lowerPkg := strings.ToLower(pkg)
	lowerPretty := strings.ToLower(pretty)

	switch {
	case lowerPkg == "context" && strings.Contains(lowerPretty, "deadline"):
		return "Context deadline exceeded"
	case lowerPkg == "adb" && strings.Contains(lowerPretty, "exec error"):
		return "Device command failed"
	case lowerPkg == "fs" && strings.Contains(lowerPretty, "path error"):
		return "Filesystem error"
	}

	if pkg != "" && pkg != "main" {
		return fmt.Sprintf("%s (%s)", pretty, pkg)
	}
	return pretty
}

// humanizeTypeName splits a CamelCase type name into spaced words,
// preserving initialisms.
func humanizeTypeName(name string) string {
	if name == "" {
		return ""
	}

	runes := []rune(name)
	boundary := func(i int) bool {
		prev, cur := runes[i-1], runes[i]
		if unicode.IsDigit(cur) && !unicode.IsDigit(prev) {
			return true
		}
		if !unicode.IsUpper(cur) {
			return false
		}
		if unicode.IsLower(prev) {
			return true
		}
		return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}

	var words []string
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && !boundary(i) {
			continue
		}
		word := string(runes[start:i])
		if isAllUpper(word) {
			words = append(words, word)
		} else {
			words = append(words, capitalize(word))
		}
		start = i
	}

	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
