package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// SampleUI tracks point generation stratum by stratum
type SampleUI struct {
	writer    io.Writer
	quiet     bool
	tracker   *generationTracker
	startTime time.Time
}

// NewSampleUI creates a new UI handler for the sample command
func NewSampleUI(w io.Writer, quiet bool) *SampleUI {
	return &SampleUI{writer: w, quiet: quiet, startTime: time.Now()}
}

// StartStrata shows one progress step per stratum.
func (s *SampleUI) StartStrata(strata []string) {
	if s.quiet || len(strata) == 0 {
		return
	}
	s.startTime = time.Now()
	names := make([]string, len(strata))
	for i, name := range strata {
		names[i] = "Stratum " + name
	}
	s.tracker = startGenerationTracker("Generating sample points", names)
}

// Progress is called after each stratum finishes.
func (s *SampleUI) Progress(done, total int) {
	if s.quiet || s.tracker == nil {
		return
	}
	s.tracker.advance(done)
}

// Finish closes the progress display.
func (s *SampleUI) Finish(err error) {
	if s.quiet || s.tracker == nil {
		return
	}
	s.tracker.finish(err)
	s.tracker = nil
}

// PrintReport renders the generation outcome per stratum
func (s *SampleUI) PrintReport(r SampleReport) {
	if s.quiet {
		return
	}

	var out strings.Builder
	out.WriteString(Success.Bold(true).Render("Sample Points"))
	out.WriteString("\n\n")
	out.WriteString(FormatKeyValue("Points", Highlight.Render(strconv.Itoa(r.Points))))
	out.WriteString("\n\n")

	headers := []string{"stratum", "requested", "generated", "candidates"}
	rows := make([][]string, len(r.Strata))
	short := make(map[int]bool)
	for i, o := range r.Strata {
		rows[i] = []string{o.Label, strconv.Itoa(o.Requested), strconv.Itoa(o.Generated), strconv.Itoa(o.Candidates)}
		if o.Generated < o.Requested {
			short[i] = true
		}
	}
	out.WriteString(renderTable(headers, rows, func(row, col int) bool {
		return col == 2 && !short[row]
	}))
	out.WriteString("\n\n")
	out.WriteString(renderWarnings(r.Warnings))

	if r.Output != "" {
		out.WriteString("\n\n")
		out.WriteString(FormatKeyValue("Wrote", r.Output))
	}

	fmt.Fprintln(s.writer)
	fmt.Fprintln(s.writer, Box.Render(out.String()))
	fmt.Fprintln(s.writer, Dim.Render(fmt.Sprintf("Completed in %s", time.Since(s.startTime).Round(time.Millisecond))))
}
