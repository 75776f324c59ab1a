package ui

import (
	"fmt"
	"io"
	"strings"
)

// CheckUI renders the outcome of the rule check
type CheckUI struct {
	writer io.Writer
	quiet  bool
}

// NewCheckUI creates a new UI handler for the check command
func NewCheckUI(w io.Writer, quiet bool) *CheckUI {
	return &CheckUI{writer: w, quiet: quiet}
}

// PrintReport renders the findings and the pass/fail verdict
func (c *CheckUI) PrintReport(r CheckReport) {
	if c.quiet {
		return
	}

	var out strings.Builder
	out.WriteString(Success.Bold(true).Render("Validation Checks"))
	out.WriteString("\n\n")
	out.WriteString(FormatKeyValue("Samples", fmt.Sprintf("%d", r.Samples)))
	out.WriteString("\n")
	out.WriteString(FormatKeyValue("Classes", fmt.Sprintf("%d", r.Classes)))
	out.WriteString("\n\n")

	if r.Passed {
		out.WriteString(GetCheckMark() + " " + Success.Bold(true).Render("PASSED"))
	} else {
		out.WriteString(GetCrossMark() + " " + Error.Bold(true).Render("FAILED"))
	}
	out.WriteString(Dim.Render(fmt.Sprintf("  errors %d · warnings %d · info %d", r.Errors, r.Warns, r.Infos)))
	if r.Strict {
		out.WriteString(Dim.Render(" (strict)"))
	}
	out.WriteString("\n\n")
	out.WriteString(renderWarnings(r.Warnings))

	box := SuccessBox
	if !r.Passed {
		box = ErrorBox
	}
	fmt.Fprintln(c.writer)
	fmt.Fprintln(c.writer, box.Render(out.String()))
}

// PrintSimpleReport prints a minimal text report
func (c *CheckUI) PrintSimpleReport(r CheckReport) {
	if r.Passed {
		fmt.Fprintf(c.writer, "%s Checks passed\n", GetCheckMark())
	} else {
		fmt.Fprintf(c.writer, "%s Checks failed\n", GetCrossMark())
	}
	fmt.Fprintf(c.writer, "Errors: %d, Warnings: %d, Info: %d\n", r.Errors, r.Warns, r.Infos)
	for _, w := range r.Warnings {
		fmt.Fprintf(c.writer, "  [%s] %s: %s\n", w.Severity, w.Subject, w.Message)
	}
}
