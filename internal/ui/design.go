package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DesignUI renders sample designs
type DesignUI struct {
	writer  io.Writer
	quiet   bool
	spinner *SimpleSpinner
}

// NewDesignUI creates a new UI handler for the design command
func NewDesignUI(w io.Writer, quiet bool) *DesignUI {
	return &DesignUI{writer: w, quiet: quiet}
}

// StartComputing shows a spinner while the design is computed.
func (d *DesignUI) StartComputing() {
	if d.quiet {
		return
	}
	d.spinner = NewSimpleSpinner(d.writer, "Computing sample design")
	d.spinner.Start()
}

// StopComputing replaces the spinner with the outcome.
func (d *DesignUI) StopComputing(err error) {
	if d.quiet || d.spinner == nil {
		return
	}
	if err != nil {
		d.spinner.Stop(false, err.Error())
		return
	}
	d.spinner.Stop(true, "Sample design computed")
}

// PrintReport renders the design summary and allocation table
func (d *DesignUI) PrintReport(r DesignReport) {
	if d.quiet {
		return
	}

	var out strings.Builder
	out.WriteString(Success.Bold(true).Render("Sample Design"))
	out.WriteString("\n\n")
	out.WriteString(FormatKeyValue("Scheme", r.Scheme))
	out.WriteString("\n")
	out.WriteString(FormatKeyValue("Confidence", fmt.Sprintf("%.1f%% (z = %.4f)", r.Confidence*100, r.Z)))
	out.WriteString("\n")
	out.WriteString(FormatKeyValue("Expected accuracy", formatPercent(r.ExpectedAccuracy)))
	out.WriteString("\n")
	out.WriteString(FormatKeyValue("Margin of error", fmt.Sprintf("±%.1f%%", r.Margin*100)))
	out.WriteString("\n")
	out.WriteString(FormatKeyValue("Required (Cochran)", fmt.Sprintf("%d %s", r.Required, Dim.Render(fmt.Sprintf("(n = %.2f)", r.Raw)))))
	out.WriteString("\n")
	if r.Corrected {
		out.WriteString(FormatKeyValue("Adjusted (FPC)", fmt.Sprintf("%d %s", r.Adjusted, Dim.Render(fmt.Sprintf("(population %d)", r.Population)))))
		out.WriteString("\n")
	}
	out.WriteString(FormatKeyValue("Allocated", fmt.Sprintf("%s %s", Highlight.Render(strconv.Itoa(r.Total)), Dim.Render(r.Policy))))
	out.WriteString("\n\n")

	headers := []string{"stratum", "pixels", "weight", "samples"}
	rows := make([][]string, len(r.Strata))
	for i, s := range r.Strata {
		rows[i] = []string{s.Label, strconv.Itoa(s.Pixels), fmt.Sprintf("%.4f", s.Weight), strconv.Itoa(s.Samples)}
	}
	out.WriteString(renderTable(headers, rows, nil))
	out.WriteString("\n\n")
	out.WriteString(renderWarnings(r.Warnings))

	if r.Output != "" {
		out.WriteString("\n\n")
		out.WriteString(FormatKeyValue("Wrote", r.Output))
	}

	fmt.Fprintln(d.writer)
	fmt.Fprintln(d.writer, Box.Render(out.String()))
}
