package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// stratumDoneMsg reports that the first done strata are finished.
type stratumDoneMsg struct{ done int }

// generationDoneMsg ends the display.
type generationDoneMsg struct{ err error }

// generationModel shows point generation one stratum at a time. Strata are
// processed in order, so everything before done is finished and the stratum
// at done is running.
type generationModel struct {
	spinner  spinner.Model
	title    string
	strata   []string
	done     int
	finished bool
	err      error
}

func newGenerationModel(title string, strata []string) generationModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSecondary)
	return generationModel{spinner: s, title: title, strata: strata}
}

func (m generationModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m generationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stratumDoneMsg:
		m.done = min(max(msg.done, 0), len(m.strata))
	case generationDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m generationModel) View() tea.View {
	var b strings.Builder
	b.WriteString(Title.Render(m.title))
	b.WriteString("  ")
	b.WriteString(renderGenerationBar(m.done, len(m.strata), 20))
	b.WriteString(Dim.Render(fmt.Sprintf(" %d/%d strata", m.done, len(m.strata))))
	b.WriteString("\n")

	for i, name := range m.strata {
		var icon string
		style := Muted
		switch {
		case i < m.done:
			icon, style = GetCheckMark(), Success
		case m.err != nil && i == m.done:
			icon, style = GetCrossMark(), Error
		case !m.finished && i == m.done:
			icon, style = m.spinner.View(), Secondary
		default:
			icon = Muted.Render("○")
		}
		b.WriteString(icon + " " + style.Render(name) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + ErrorBox.Render(GetCrossMark()+" "+m.err.Error()))
	}
	return tea.NewView(b.String())
}

// renderGenerationBar draws done/total as a block bar.
func renderGenerationBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return Success.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

// generationTracker drives a generationModel from plain method calls, so
// the sampling code never touches bubbletea.
type generationTracker struct {
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

func startGenerationTracker(title string, strata []string) *generationTracker {
	t := &generationTracker{
		program: tea.NewProgram(newGenerationModel(title, strata), tea.WithoutSignalHandler()),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		_, _ = t.program.Run()
	}()
	return t
}

func (t *generationTracker) advance(done int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.program != nil {
		t.program.Send(stratumDoneMsg{done: done})
	}
}

// finish renders the final state and waits for the program to exit.
func (t *generationTracker) finish(err error) {
	t.mu.Lock()
	p := t.program
	t.program = nil
	t.mu.Unlock()
	if p == nil {
		return
	}
	p.Send(generationDoneMsg{err: err})
	select {
	case <-t.done:
	case <-time.After(time.Second):
		p.Quit()
	}
}
