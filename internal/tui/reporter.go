package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/snek/internal/tui/theme"
)

// Reporter prints task progress in color. Output is downsampled to what the
// terminal behind the writer supports, so it degrades to plain text when
// redirected.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	theme   *theme.Theme
	started map[string]time.Time
	now     func() time.Time
}

// NewReporter creates a Reporter writing to w, detecting its color profile
// from the environment.
func NewReporter(w io.Writer) *Reporter {
	return NewReporterWithProfile(w, colorprofile.Detect(w, os.Environ()))
}

// NewReporterWithProfile creates a Reporter that renders for profile p.
func NewReporterWithProfile(w io.Writer, p colorprofile.Profile) *Reporter {
	return &Reporter{
		out:     &colorprofile.Writer{Forward: w, Profile: p},
		theme:   theme.Current(),
		started: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Start implements taskrun.Reporter.
func (r *Reporter) Start(task string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started[task] = r.now()
	s := r.theme.S()
	fmt.Fprintf(r.out, "%s %s\n", s.Running.Render("▸"), s.Task.Render(task))
}

// Skip implements taskrun.Reporter.
func (r *Reporter) Skip(task string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.theme.S()
	fmt.Fprintf(r.out, "%s %s %s\n", s.Muted.Render("·"), s.Text.Render(task), s.Muted.Render("up to date"))
}

// Fail implements taskrun.Reporter.
func (r *Reporter) Fail(task string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.theme.S()

	line := fmt.Sprintf("%s %s", s.Failure.Render("✗"), s.Failure.Render(task+" failed"))
	if start, ok := r.started[task]; ok {
		line += " " + s.Muted.Render("after "+r.now().Sub(start).Round(time.Millisecond).String())
		delete(r.started, task)
	}
	fmt.Fprintln(r.out, line)

	if err != nil {
		msg := strings.TrimRight(err.Error(), "\n")
		fmt.Fprintln(r.out, s.ErrorOut.Render(msg))
	}
}

// Summary prints the closing line of a run.
func (r *Reporter) Summary(err error) {
	s := r.theme.S()
	if err != nil {
		fmt.Fprintln(r.out, s.Failure.Render("✗ failed"))
		return
	}
	fmt.Fprintln(r.out, s.Success.Render("✓ done"))
}
