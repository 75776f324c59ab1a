package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// AssessUI provides a rich UI for the assess command
type AssessUI struct {
	writer    io.Writer
	quiet     bool
	steps     *stepList
	startTime time.Time
}

// NewAssessUI creates a new UI handler for the assess command
func NewAssessUI(w io.Writer, quiet bool) *AssessUI {
	return &AssessUI{
		writer:    w,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

// StartWorkflow shows one line per assessment step.
func (a *AssessUI) StartWorkflow(steps []string) {
	if a.quiet {
		return
	}
	a.startTime = time.Now()
	a.steps = newStepList(a.writer, steps)
	a.steps.start()
}

// StartStep marks step idx as running
func (a *AssessUI) StartStep(idx int) { a.mark(idx, stepRunning, "") }

// CompleteStep marks step idx as done
func (a *AssessUI) CompleteStep(idx int, details string) { a.mark(idx, stepDone, details) }

// SkipStep marks step idx as skipped
func (a *AssessUI) SkipStep(idx int, reason string) { a.mark(idx, stepSkipped, reason) }

// FailStep marks step idx as failed
func (a *AssessUI) FailStep(idx int, err string) { a.mark(idx, stepFailed, err) }

func (a *AssessUI) mark(idx int, state stepState, note string) {
	if a.quiet || a.steps == nil {
		return
	}
	a.steps.set(idx, state, note)
}

// FinishWorkflow stops the animation and leaves the final step states
func (a *AssessUI) FinishWorkflow() {
	if a.quiet || a.steps == nil {
		return
	}
	a.steps.finish()
	a.steps = nil
}

// PrintReport renders the full accuracy report
func (a *AssessUI) PrintReport(r AssessmentReport) {
	if a.quiet {
		return
	}

	var out strings.Builder

	out.WriteString(Success.Bold(true).Render("Accuracy Assessment Report"))
	out.WriteString("\n\n")
	out.WriteString(FormatKeyValue("Run", Dim.Render(r.RunID)))
	out.WriteString("\n")
	samples := strconv.Itoa(r.Samples)
	if r.Excluded > 0 {
		samples += Dim.Render(fmt.Sprintf(" (%d excluded as nodata)", r.Excluded))
	}
	out.WriteString(FormatKeyValue("Samples", samples))
	out.WriteString("\n")
	out.WriteString(FormatKeyValue("Classes", strconv.Itoa(len(r.Classes))))
	out.WriteString("\n\n")

	out.WriteString(SectionHeader.Render("Confusion Matrix"))
	out.WriteString(" ")
	out.WriteString(Dim.Render("(rows: map, columns: reference)"))
	out.WriteString("\n")
	out.WriteString(a.renderMatrix(r))
	out.WriteString("\n\n")

	out.WriteString(a.renderSummary(r))
	out.WriteString("\n\n")

	out.WriteString(SectionHeader.Render("Per-class Accuracy"))
	out.WriteString(" ")
	out.WriteString(Dim.Render(fmt.Sprintf("(%.1f%% Wilson intervals)", r.Confidence*100)))
	out.WriteString("\n")
	out.WriteString(a.renderClasses(r.PerClass))

	if len(r.Area) > 0 {
		out.WriteString("\n\n")
		out.WriteString(a.renderArea(r))
	}

	out.WriteString("\n\n")
	out.WriteString(renderWarnings(r.Warnings))

	if len(r.Outputs) > 0 {
		out.WriteString("\n\n")
		for i, path := range r.Outputs {
			if i > 0 {
				out.WriteString("\n")
			}
			out.WriteString(FormatKeyValue("Wrote", path))
		}
	}

	fmt.Fprintln(a.writer)
	fmt.Fprintln(a.writer, Box.Render(out.String()))
	fmt.Fprintln(a.writer, Dim.Render(fmt.Sprintf("Completed in %s", time.Since(a.startTime).Round(time.Millisecond))))
}

func (a *AssessUI) renderMatrix(r AssessmentReport) string {
	headers := append([]string{"map \\ ref"}, r.Classes...)
	headers = append(headers, "total")

	rows := make([][]string, 0, len(r.Matrix)+1)
	for i, counts := range r.Matrix {
		row := []string{r.Classes[i]}
		for _, n := range counts {
			row = append(row, strconv.Itoa(n))
		}
		row = append(row, strconv.Itoa(r.RowTotals[i]))
		rows = append(rows, row)
	}
	totals := []string{"total"}
	for _, n := range r.ColTotals {
		totals = append(totals, strconv.Itoa(n))
	}
	totals = append(totals, strconv.Itoa(r.Total))
	rows = append(rows, totals)

	n := len(r.Matrix)
	return renderTable(headers, rows, func(row, col int) bool {
		return row < n && col == row+1
	})
}

func (a *AssessUI) renderSummary(r AssessmentReport) string {
	var sb strings.Builder
	sb.WriteString(SectionHeader.Render("Summary"))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Overall accuracy", renderAccuracyBar(r.Overall.Value, 30)+" "+formatEstimate(r.Overall)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Quantity disagreement", formatPercent(r.Quantity)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Allocation disagreement", formatPercent(r.Allocation)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Cohen's kappa", formatKappa(r.Kappa)+" "+Dim.Render("(for comparison only)")))
	return sb.String()
}

func (a *AssessUI) renderClasses(rows []ClassRow) string {
	headers := []string{"class", "map n", "ref n", "producer's", "user's", "F1"}
	cells := make([][]string, len(rows))
	for i, c := range rows {
		cells[i] = []string{
			c.Label,
			strconv.Itoa(c.Predicted),
			strconv.Itoa(c.Reference),
			formatEstimate(c.Producers),
			formatEstimate(c.Users),
			formatEstimate(c.F1),
		}
	}
	return renderTable(headers, cells, nil)
}

func (a *AssessUI) renderArea(r AssessmentReport) string {
	var sb strings.Builder
	sb.WriteString(SectionHeader.Render("Area Estimates"))
	sb.WriteString(" ")
	sb.WriteString(Dim.Render(fmt.Sprintf("(total %.2f %s)", r.TotalArea, r.AreaUnit)))
	sb.WriteString("\n")

	headers := []string{"class", "mapped", "estimated", "interval", "user's", "producer's"}
	cells := make([][]string, len(r.Area))
	for i, c := range r.Area {
		cells[i] = []string{
			c.Label,
			fmt.Sprintf("%.2f", c.MappedArea),
			fmt.Sprintf("%.2f", c.Area),
			fmt.Sprintf("[%.2f, %.2f]", c.Lower, c.Upper),
			formatEstimate(c.Users),
			formatEstimate(c.Producers),
		}
	}
	sb.WriteString(renderTable(headers, cells, nil))
	if r.AreaOverall != nil {
		sb.WriteString("\n")
		sb.WriteString(FormatKeyValue("Area-weighted overall accuracy", formatEstimate(*r.AreaOverall)))
	}
	return sb.String()
}

// PrintSimpleReport prints a minimal plain-text report
func (a *AssessUI) PrintSimpleReport(r AssessmentReport) {
	fmt.Fprintf(a.writer, "Samples: %d (excluded %d)\n", r.Samples, r.Excluded)
	fmt.Fprintf(a.writer, "Overall accuracy: %s\n", formatEstimate(r.Overall))
	fmt.Fprintf(a.writer, "Quantity disagreement: %s, allocation disagreement: %s\n", formatPercent(r.Quantity), formatPercent(r.Allocation))
	fmt.Fprintf(a.writer, "Kappa: %s\n", formatKappa(r.Kappa))
	for _, c := range r.PerClass {
		fmt.Fprintf(a.writer, "  %s: PA %s, UA %s\n", c.Label, formatEstimate(c.Producers), formatEstimate(c.Users))
	}
	fmt.Fprintf(a.writer, "Warnings: %d\n", len(r.Warnings))
}
