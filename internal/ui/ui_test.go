package ui

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestColorAppliesANSICodes(t *testing.T) {
	got := Color("hello", FgGreen)
	want := FgGreen + "hello" + Reset
	if got != want {
		t.Fatalf("Color() = %q, want %q", got, want)
	}
}

func TestColorWithEmptyString(t *testing.T) {
	got := Color("", FgRed)
	want := FgRed + "" + Reset
	if got != want {
		t.Fatalf("Color(\"\") = %q, want %q", got, want)
	}
}

func sampleAssessment() AssessmentReport {
	return AssessmentReport{
		RunID:      "3f2a",
		Samples:    155,
		Excluded:   2,
		Confidence: 0.95,
		Classes:    []string{"Forest", "Water"},
		Matrix:     [][]int{{70, 5}, {7, 73}},
		RowTotals:  []int{75, 80},
		ColTotals:  []int{77, 78},
		Total:      155,
		Overall:    Estimate{Value: 0.9226, Lower: 0.8712, Upper: 0.9561, Defined: true},
		Kappa:      Estimate{Value: math.NaN()},
		Quantity:   0.0071,
		Allocation: 0.0710,
		PerClass: []ClassRow{
			{Label: "Forest", Predicted: 75, Reference: 77,
				Producers: Estimate{Value: 0.9091, Lower: 0.8238, Upper: 0.9553, Defined: true},
				Users:     Estimate{Value: 0.9333, Lower: 0.8528, Upper: 0.9712, Defined: true},
				F1:        Estimate{Value: math.NaN()}},
		},
		Warnings: []WarningItem{
			{Severity: "info", Subject: "global", Message: "2 nodata pairs excluded", Occurrences: 1},
		},
	}
}

func TestAssessUI_PrintReport(t *testing.T) {
	tests := []struct {
		name   string
		report func() AssessmentReport
		quiet  bool
		want   []string
		absent []string
	}{
		{
			name:   "matrix and metrics",
			report: sampleAssessment,
			want: []string{
				"Accuracy Assessment Report",
				"Confusion Matrix",
				"(rows: map, columns: reference)",
				"Forest", "Water", "155",
				"92.3% [87.1, 95.6]",
				"(2 excluded as nodata)",
				"Per-class Accuracy",
				"(95.0% Wilson intervals)",
				"n/a",
				"2 nodata pairs excluded",
			},
			absent: []string{"Area Estimates"},
		},
		{
			name: "with area section",
			report: func() AssessmentReport {
				r := sampleAssessment()
				r.AreaUnit = "ha"
				r.TotalArea = 1000
				r.Area = []AreaRow{{Label: "Forest", MappedArea: 600, Area: 612.5, Lower: 580, Upper: 645}}
				r.AreaOverall = &Estimate{Value: 0.91, Lower: 0.88, Upper: 0.94, Defined: true}
				r.Outputs = []string{"out/report.json"}
				return r
			},
			want: []string{"Area Estimates", "(total 1000.00 ha)", "612.50", "[580.00, 645.00]", "91.0% [88.0, 94.0]", "out/report.json"},
		},
		{
			name:   "quiet mode produces no output",
			report: sampleAssessment,
			quiet:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ui := NewAssessUI(&buf, tt.quiet)
			ui.PrintReport(tt.report())

			output := buf.String()
			if tt.quiet {
				if output != "" {
					t.Errorf("Expected no output in quiet mode, got: %q", output)
				}
				return
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string %q.\nGot:\n%s", want, output)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(output, s) {
					t.Errorf("Output contains unexpected string %q", s)
				}
			}
		})
	}
}

func TestAssessUI_PrintSimpleReport(t *testing.T) {
	var buf bytes.Buffer
	NewAssessUI(&buf, false).PrintSimpleReport(sampleAssessment())

	output := buf.String()
	want := []string{
		"Samples: 155 (excluded 2)",
		"Overall accuracy: 92.3% [87.1, 95.6]",
		"Quantity disagreement: 0.7%, allocation disagreement: 7.1%",
		"Kappa: n/a",
		"Forest: PA 90.9% [82.4, 95.5], UA 93.3% [85.3, 97.1]",
		"Warnings: 1",
	}
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("Output missing expected string %q.\nGot:\n%s", w, output)
		}
	}
}

func TestAssessUI_QuietWorkflowIsNoop(t *testing.T) {
	var buf bytes.Buffer
	ui := NewAssessUI(&buf, true)
	ui.StartWorkflow([]string{"a", "b"})
	ui.StartStep(0)
	ui.CompleteStep(0, "done")
	ui.SkipStep(1, "no areas")
	ui.FinishWorkflow()
	if buf.Len() != 0 {
		t.Fatalf("quiet workflow wrote %q", buf.String())
	}
}

func TestFormatEstimate(t *testing.T) {
	tests := []struct {
		name string
		in   Estimate
		want string
	}{
		{"defined", Estimate{Value: 0.5, Lower: 0.25, Upper: 0.75, Defined: true}, "50.0% [25.0, 75.0]"},
		{"undefined", Estimate{Value: math.NaN(), Lower: 0, Upper: 1}, "n/a"},
		{"nan but flagged", Estimate{Value: math.NaN(), Defined: true}, "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEstimate(tt.in); got != tt.want {
				t.Fatalf("formatEstimate() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := formatKappa(Estimate{Value: 0.8839, Lower: 0.8, Upper: 0.95, Defined: true}); got != "0.8839 [0.8000, 0.9500]" {
		t.Fatalf("formatKappa() = %q", got)
	}
}

func TestRenderWarnings(t *testing.T) {
	if got := renderWarnings(nil); !strings.Contains(got, "no warnings") {
		t.Fatalf("empty warnings rendered %q", got)
	}

	got := renderWarnings([]WarningItem{
		{Severity: "error", Subject: "global", Message: "projected CRS required", Occurrences: 1},
		{Severity: "warning", Subject: "class 3", Message: "producer's accuracy undefined", Occurrences: 3},
	})
	for _, want := range []string{"Warnings (2)", "projected CRS required", "class 3", "producer's accuracy undefined (x3)"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderWarnings() missing %q.\nGot:\n%s", want, got)
		}
	}
}

func TestRenderAccuracyBar(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		width int
	}{
		{"full", 1.0, 10},
		{"half", 0.5, 10},
		{"empty", 0.0, 10},
		{"partial", 0.75, 20},
		{"undefined", math.NaN(), 10},
		{"out of range", 1.5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renderAccuracyBar(tt.score, tt.width)
			if n := strings.Count(result, "█") + strings.Count(result, "░"); n != tt.width {
				t.Errorf("bar has %d cells, want %d", n, tt.width)
			}
		})
	}
}

func TestDesignUI_PrintReport(t *testing.T) {
	report := DesignReport{
		Scheme:           "stratified_random",
		Confidence:       0.95,
		ExpectedAccuracy: 0.85,
		Margin:           0.05,
		Z:                1.959964,
		Raw:              195.9144,
		Required:         196,
		Corrected:        true,
		Adjusted:         193,
		Population:       10000,
		Policy:           "proportional",
		Total:            193,
		Strata: []StratumRow{
			{Label: "1", Pixels: 6000, Weight: 0.6, Samples: 116},
			{Label: "2", Pixels: 3000, Weight: 0.3, Samples: 58},
			{Label: "3", Pixels: 1000, Weight: 0.1, Samples: 19},
		},
		Warnings: []WarningItem{{Severity: "warning", Subject: "stratum 3", Message: "19 samples allocated, below the minimum of 25", Occurrences: 1}},
		Output:   "design.json",
	}

	var buf bytes.Buffer
	NewDesignUI(&buf, false).PrintReport(report)
	output := buf.String()
	for _, want := range []string{"Sample Design", "stratified_random", "(z = 1.9600)", "(n = 195.91)", "Adjusted (FPC)", "(population 10000)", "116", "0.6000", "below the minimum of 25", "design.json"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing expected string %q.\nGot:\n%s", want, output)
		}
	}

	buf.Reset()
	report.Corrected = false
	NewDesignUI(&buf, false).PrintReport(report)
	if strings.Contains(buf.String(), "Adjusted (FPC)") {
		t.Errorf("uncorrected design should not show the FPC line")
	}
}

func TestSampleUI_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	ui := NewSampleUI(&buf, false)
	ui.PrintReport(SampleReport{
		Points: 12,
		Strata: []OutcomeRow{
			{Label: "1", Requested: 10, Generated: 10, Candidates: 400},
			{Label: "2", Requested: 5, Generated: 2, Candidates: 2},
		},
		Output: "points.csv",
	})
	output := buf.String()
	for _, want := range []string{"Sample Points", "12", "400", "points.csv", "no warnings"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing expected string %q.\nGot:\n%s", want, output)
		}
	}
}

func TestSampleUI_QuietIsNoop(t *testing.T) {
	var buf bytes.Buffer
	ui := NewSampleUI(&buf, true)
	ui.StartStrata([]string{"1", "2"})
	ui.Progress(1, 2)
	ui.Finish(nil)
	ui.PrintReport(SampleReport{Points: 1})
	if buf.Len() != 0 {
		t.Fatalf("quiet sample UI wrote %q", buf.String())
	}
}

func TestCheckUI(t *testing.T) {
	report := CheckReport{
		Samples: 40,
		Classes: 3,
		Warnings: []WarningItem{
			{Severity: "warning", Subject: "global", Message: "only 40 reference samples (recommended minimum 50)", Occurrences: 1},
		},
		Warns:  1,
		Strict: true,
		Passed: false,
	}

	var buf bytes.Buffer
	ui := NewCheckUI(&buf, false)
	ui.PrintReport(report)
	for _, want := range []string{"Validation Checks", "FAILED", "(strict)", "recommended minimum 50"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Output missing expected string %q.\nGot:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	ui.PrintSimpleReport(report)
	want := "✗ Checks failed"
	if !strings.Contains(buf.String(), "Checks failed") || !strings.Contains(buf.String(), "Errors: 0, Warnings: 1, Info: 0") {
		t.Errorf("PrintSimpleReport() = %q, want it to contain %q", buf.String(), want)
	}
	if !strings.Contains(buf.String(), "[warning] global: only 40 reference samples") {
		t.Errorf("PrintSimpleReport() missing warning line: %q", buf.String())
	}
}

func TestStepListFinalRender(t *testing.T) {
	var buf bytes.Buffer
	l := newStepList(&buf, []string{"Build matrix", "Estimate area", "Check rules"})
	l.start()
	l.set(0, stepDone, "3 classes")
	l.set(1, stepSkipped, "no mapped areas")
	l.set(2, stepFailed, "cancelled")
	l.set(7, stepDone, "ignored")
	l.finish()

	output := buf.String()
	for _, want := range []string{"Build matrix", "→ 3 classes", "→ no mapped areas", "→ cancelled"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing expected string %q.\nGot:\n%s", want, output)
		}
	}
	if strings.Contains(output, "ignored") {
		t.Errorf("out-of-range step should be ignored")
	}
}

func TestSimpleSpinnerStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSimpleSpinner(&buf, "Computing")
	s.Start()
	s.Stop(true, "Sample design computed")
	s.Stop(false, "second stop is a no-op")

	if !strings.Contains(buf.String(), "Sample design computed") {
		t.Fatalf("spinner output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "second stop") {
		t.Fatalf("second Stop should not write")
	}
}

func TestGenerationModelUpdate(t *testing.T) {
	m := newGenerationModel("Generating sample points", []string{"Stratum 1", "Stratum 2"})

	next, _ := m.Update(stratumDoneMsg{done: 1})
	m = next.(generationModel)
	if m.done != 1 || m.finished {
		t.Fatalf("after one stratum: done=%d finished=%v", m.done, m.finished)
	}

	next, _ = m.Update(stratumDoneMsg{done: 9})
	m = next.(generationModel)
	if m.done != 2 {
		t.Fatalf("done should clamp to the stratum count, got %d", m.done)
	}

	next, cmd := m.Update(generationDoneMsg{})
	m = next.(generationModel)
	if !m.finished || m.err != nil || cmd == nil {
		t.Fatalf("expected finished model with quit command, got %+v", m)
	}
}

func TestRenderGenerationBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		filled             int
	}{
		{0, 4, 20, 0},
		{2, 4, 20, 10},
		{4, 4, 20, 20},
		{0, 0, 10, 0},
	}
	for _, tt := range tests {
		bar := renderGenerationBar(tt.done, tt.total, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderGenerationBar(%d, %d) filled %d cells, want %d", tt.done, tt.total, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("renderGenerationBar(%d, %d) has %d cells, want %d", tt.done, tt.total, got, tt.width)
		}
	}
}

func TestAccuracyTiers(t *testing.T) {
	tests := []struct {
		score float64
		want  accuracyTier
	}{
		{0.95, tierGood},
		{0.85, tierGood},
		{0.84, tierFair},
		{0.70, tierFair},
		{0.2, tierPoor},
	}
	for _, tt := range tests {
		if got := tierOf(tt.score); got != tt.want {
			t.Errorf("tierOf(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestSeverityMark(t *testing.T) {
	if severityMark("error") != GetCrossMark() || severityMark("warning") != GetWarnMark() || severityMark("info") != GetInfoMark() {
		t.Fatal("severityMark returned the wrong mark")
	}
}
