// Package ui renders reports and progress for the terminal. Reports are
// boxed lipgloss layouts; the per-package debug loggers use the raw ANSI
// prefixes below so they stay readable when piped.
package ui

// ANSI prefixes for logger tags.
const (
	Reset     = "\033[0m"
	FgRed     = "\033[31m"
	FgGreen   = "\033[32m"
	FgYellow  = "\033[33m"
	FgMagenta = "\033[35m"
	FgCyan    = "\033[36m"
)

var colorEnabled = true

// Init turns the ANSI prefixes off when noColor is set (NO_COLOR, pipes, tests).
func Init(noColor bool) { colorEnabled = !noColor }

// Color wraps s in code and Reset, or returns s unchanged when color is off.
func Color(s, code string) string {
	if !colorEnabled {
		return s
	}
	return code + s + Reset
}
