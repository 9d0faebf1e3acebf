package utils

import "strings"

// ParseBoolFlag parses the loose true/false strings accepted on the command
// line ("1", "true", "yes", "y", "on" are true, anything else false).
func ParseBoolFlag(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// SplitArgs splits a whitespace-delimited argument string into argv form.
func SplitArgs(input string) []string {
	return strings.Fields(input)
}

// BaseName strips a parameter-signature suffix from a callable name, e.g.
// "require(bool,string)" -> "require".
func BaseName(name string) string {
	if i := strings.Index(name, "("); i >= 0 {
		return name[:i]
	}
	return name
}
