package formatter

import "regexp"

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape codes so text written to files stays plain.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
