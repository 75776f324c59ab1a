package ui

import (
	"fmt"
	"math"
	"strings"
)

// The view types below mirror the reports of the assessment, sampling and
// rules packages to avoid circular imports (those packages log through
// internal/logging, which depends on ui). The CLI converts reports into views.

// Estimate mirrors a metric estimate and its confidence interval.
type Estimate struct {
	Value   float64
	Lower   float64
	Upper   float64
	Defined bool
}

// WarningItem mirrors a reduced finding.
type WarningItem struct {
	Severity    string // "error", "warning" or "info"
	Subject     string
	Message     string
	Occurrences int
}

// ClassRow is one line of the per-class accuracy table.
type ClassRow struct {
	Label     string
	Predicted int
	Reference int
	Producers Estimate
	Users     Estimate
	F1        Estimate
}

// AreaRow is one line of the area estimation table.
type AreaRow struct {
	Label      string
	MappedArea float64
	Proportion float64
	Area       float64
	Lower      float64
	Upper      float64
	Users      Estimate
	Producers  Estimate
}

// AssessmentReport mirrors assessment.Report.
type AssessmentReport struct {
	RunID      string
	Samples    int
	Excluded   int
	Confidence float64

	Classes   []string
	Matrix    [][]int
	RowTotals []int
	ColTotals []int
	Total     int

	Overall    Estimate
	Kappa      Estimate
	Quantity   float64
	Allocation float64
	PerClass   []ClassRow

	AreaUnit    string
	TotalArea   float64
	AreaOverall *Estimate
	Area        []AreaRow

	Warnings []WarningItem
	Outputs  []string
}

// StratumRow is one line of a design allocation table.
type StratumRow struct {
	Label   string
	Pixels  int
	Weight  float64
	Samples int
}

// DesignReport mirrors sampling.Design.
type DesignReport struct {
	Scheme           string
	Confidence       float64
	ExpectedAccuracy float64
	Margin           float64
	Z                float64
	Raw              float64
	Required         int
	Corrected        bool
	Adjusted         int
	Population       int
	Policy           string
	Total            int
	Strata           []StratumRow
	Warnings         []WarningItem
	Output           string
}

// OutcomeRow is the generation outcome of one stratum.
type OutcomeRow struct {
	Label      string
	Requested  int
	Generated  int
	Candidates int
}

// SampleReport mirrors sampling.Sample.
type SampleReport struct {
	Points   int
	Strata   []OutcomeRow
	Warnings []WarningItem
	Output   string
}

// CheckReport is the outcome of the standalone rule check.
type CheckReport struct {
	Samples  int
	Classes  int
	Warnings []WarningItem
	Errors   int
	Warns    int
	Infos    int
	Strict   bool
	Passed   bool
}

// formatEstimate renders a proportion as a percentage with its interval, or
// "n/a" when undefined.
func formatEstimate(e Estimate) string {
	if !e.Defined || math.IsNaN(e.Value) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%% [%.1f, %.1f]", e.Value*100, e.Lower*100, e.Upper*100)
}

// formatKappa renders kappa on its own scale.
func formatKappa(e Estimate) string {
	if !e.Defined || math.IsNaN(e.Value) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f [%.4f, %.4f]", e.Value, e.Lower, e.Upper)
}

func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// renderWarnings writes the grouped warning section shared by every report.
func renderWarnings(items []WarningItem) string {
	if len(items) == 0 {
		return GetCheckMark() + " " + Dim.Render("no warnings")
	}

	var sb strings.Builder
	sb.WriteString(SectionHeader.Render(fmt.Sprintf("Warnings (%d)", len(items))))
	for _, w := range items {
		sb.WriteString("\n  ")
		sb.WriteString(severityMark(w.Severity))
		sb.WriteString(" ")
		sb.WriteString(Bold.Render(w.Subject))
		sb.WriteString(": ")
		msg := w.Message
		if w.Occurrences > 1 {
			msg += fmt.Sprintf(" (x%d)", w.Occurrences)
		}
		if w.Severity == "info" {
			sb.WriteString(Dim.Render(msg))
		} else {
			sb.WriteString(msg)
		}
	}
	return sb.String()
}

// renderAccuracyBar draws a bar for a proportion, colored by level.
func renderAccuracyBar(score float64, width int) string {
	if math.IsNaN(score) {
		return Muted.Render(strings.Repeat("░", width))
	}
	score = math.Max(0, math.Min(1, score))
	filled := int(score * float64(width))
	return accuracyStyle(score).Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}
