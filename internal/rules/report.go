package rules

import (
	"fmt"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
)

// Summary counts warnings by severity.
type Summary struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Infos    int `json:"infos" yaml:"infos"`
}

// Summarize counts ws by severity.
func Summarize(ws []finding.Warning) Summary {
	var s Summary
	for _, w := range ws {
		switch w.Severity {
		case finding.SeverityError:
			s.Errors++
		case finding.SeverityWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// Passed reports whether there is nothing at or above warning severity.
// With strict=false only errors count.
func (s Summary) Passed(strict bool) bool {
	if strict {
		return s.Errors == 0 && s.Warnings == 0
	}
	return s.Errors == 0
}

// PrintReport writes the warnings to the configured logger writer.
// If no logger writer is configured, it produces no output.
func PrintReport(ws []finding.Warning) {
	if len(ws) == 0 {
		logf("✅ no warnings")
		return
	}
	for _, w := range ws {
		logf("  • %s", w)
	}
}

// FormatSummary returns a one-line summary, for command output.
func FormatSummary(s Summary, strict bool) string {
	status := "✅ PASSED"
	if !s.Passed(strict) {
		status = "❌ FAILED"
	}
	return fmt.Sprintf("Checks: %s | Errors: %d | Warnings: %d | Info: %d", status, s.Errors, s.Warnings, s.Infos)
}
