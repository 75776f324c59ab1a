package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 80 * time.Millisecond

type stepState int

const (
	stepPending stepState = iota
	stepRunning
	stepDone
	stepFailed
	stepSkipped
)

type pipelineStep struct {
	name  string
	state stepState
	note  string
}

// stepList animates a fixed sequence of pipeline steps in place. The
// assessment steps are known up front, so the list never grows after start.
type stepList struct {
	mu     sync.Mutex
	writer io.Writer
	steps  []pipelineStep
	frame  int
	lines  int
	stop   chan struct{}
	exited chan struct{}
}

func newStepList(w io.Writer, names []string) *stepList {
	l := &stepList{writer: w, stop: make(chan struct{}), exited: make(chan struct{})}
	for _, n := range names {
		l.steps = append(l.steps, pipelineStep{name: n})
	}
	return l
}

func (l *stepList) start() {
	go func() {
		defer close(l.exited)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				l.mu.Lock()
				l.frame = (l.frame + 1) % len(spinnerFrames)
				l.redraw(false)
				l.mu.Unlock()
			}
		}
	}()
}

func (l *stepList) set(idx int, state stepState, note string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.steps) {
		return
	}
	l.steps[idx].state = state
	l.steps[idx].note = note
}

// finish stops the animation and leaves the final state on screen.
func (l *stepList) finish() {
	close(l.stop)
	<-l.exited
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redraw(true)
}

// redraw must be called with mu held.
func (l *stepList) redraw(final bool) {
	var b strings.Builder
	b.WriteString(strings.Repeat("\033[A\033[K", l.lines))
	for _, s := range l.steps {
		b.WriteString(l.stepLine(s, final))
		b.WriteString("\n")
	}
	l.lines = len(l.steps)
	fmt.Fprint(l.writer, b.String())
}

func (l *stepList) stepLine(s pipelineStep, final bool) string {
	icon, style := Muted.Render("○"), Muted
	switch s.state {
	case stepRunning:
		if !final {
			icon, style = Secondary.Render(spinnerFrames[l.frame]), Secondary
		}
	case stepDone:
		icon, style = GetCheckMark(), Success
	case stepFailed:
		icon, style = GetCrossMark(), Error
	case stepSkipped:
		icon, style = Warning.Render("⊘"), Warning
	}

	line := icon + " " + style.Render(s.name)
	if s.note == "" {
		return line
	}
	switch s.state {
	case stepDone:
		return line + " " + Dim.Render("→ "+s.note)
	case stepFailed:
		return line + " " + Error.Render("→ "+s.note)
	case stepSkipped:
		return line + " " + Warning.Render("→ "+s.note)
	}
	return line
}

// SimpleSpinner is a single-line spinner for short computations.
type SimpleSpinner struct {
	writer  io.Writer
	message string
	stop    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

// NewSimpleSpinner creates a spinner; call Start to animate it
func NewSimpleSpinner(w io.Writer, message string) *SimpleSpinner {
	return &SimpleSpinner{writer: w, message: message, stop: make(chan struct{}), exited: make(chan struct{})}
}

// Start animates the spinner until Stop is called.
func (s *SimpleSpinner) Start() {
	go func() {
		defer close(s.exited)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				fmt.Fprintf(s.writer, "\r\033[K%s %s", Secondary.Render(spinnerFrames[i%len(spinnerFrames)]), s.message)
			}
		}
	}()
}

// Stop replaces the spinner line with a check or cross and msg.
func (s *SimpleSpinner) Stop(ok bool, msg string) {
	s.once.Do(func() {
		close(s.stop)
		<-s.exited
		fmt.Fprint(s.writer, "\r\033[K")
		if ok {
			fmt.Fprintf(s.writer, "%s %s\n", GetCheckMark(), msg)
			return
		}
		fmt.Fprintf(s.writer, "%s %s\n", GetCrossMark(), Error.Render(msg))
	})
}
