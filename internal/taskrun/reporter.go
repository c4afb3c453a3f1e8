package taskrun

import (
	"fmt"
	"io"
)

// Reporter is told about every task the engine visits.
type Reporter interface {
	Start(task string)
	Skip(task string)
	Fail(task string, err error)
}

// PlainReporter prints doit style lines: ".  name" for a task that runs and
// "-- name" for one that is up to date.
type PlainReporter struct {
	Out io.Writer
}

// Start implements Reporter.
func (r *PlainReporter) Start(task string) {
	fmt.Fprintf(r.Out, ".  %s\n", task)
}

// Skip implements Reporter.
func (r *PlainReporter) Skip(task string) {
	fmt.Fprintf(r.Out, "-- %s\n", task)
}

// Fail implements Reporter.
func (r *PlainReporter) Fail(task string, err error) {
	fmt.Fprintf(r.Out, "TaskFailed - taskid:%s\n%v\n", task, err)
}

type nopReporter struct{}

func (nopReporter) Start(string)       {}
func (nopReporter) Skip(string)        {}
func (nopReporter) Fail(string, error) {}
