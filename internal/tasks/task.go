// Package tasks defines the task records run by snek and the task set of a
// generated Python project.
package tasks

import (
	"context"
	"io"
	"strings"
)

// Action is one step of a task: a shell command string or a Go function.
type Action struct {
	// Command is run through sh -c in the project directory.
	Command string

	// Name labels a function action in listings.
	Name string
	Fn   func(ctx context.Context, out io.Writer) error
}

// Cmd returns a shell command action.
func Cmd(command string) Action {
	return Action{Command: command}
}

// Func returns a function action.
func Func(name string, fn func(ctx context.Context, out io.Writer) error) Action {
	return Action{Name: name, Fn: fn}
}

// String returns the command, or the function name in parentheses.
func (a Action) String() string {
	if a.Command == "" {
		return "(" + a.Name + ")"
	}
	return a.Command
}

// Predicate decides whether a task's effects are already current.
type Predicate func(ctx context.Context) (bool, error)

// Task is a named unit of work.
type Task struct {
	Name string
	Doc  string

	Actions []Action

	// FileDeps are paths relative to the project directory; a change to any
	// of them makes the task stale.
	FileDeps []string

	// Targets must exist once the task has run.
	Targets []string

	// TaskDeps name tasks that run before this one.
	TaskDeps []string

	UpToDate []Predicate

	// Subtasks run after Actions, in order, addressed as "name:sub".
	Subtasks []*Task

	// Clean lists extra paths (globs allowed) removed by clean.
	Clean []string

	// Verbosity 2 streams command output live instead of only on failure.
	Verbosity int
}

// Private reports whether the task is hidden from listings.
func (t *Task) Private() bool {
	return strings.HasPrefix(t.Name, "_")
}

// Subtask returns the subtask named name, or nil.
func (t *Task) Subtask(name string) *Task {
	for _, s := range t.Subtasks {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SubtaskName derives a short name from a command string: the first word
// after wrapper when the command starts with it, otherwise the first word.
func SubtaskName(wrapper, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	prefix := strings.Fields(wrapper)
	if len(prefix) > 0 && len(fields) > len(prefix) && hasPrefix(fields, prefix) {
		return fields[len(prefix)]
	}
	return fields[0]
}

func hasPrefix(fields, prefix []string) bool {
	for i, p := range prefix {
		if fields[i] != p {
			return false
		}
	}
	return true
}

// Subtask builds a subtask running command after install. fileDeps may be
// nil, in which case the subtask always runs.
func Subtask(wrapper, command string, fileDeps []string) *Task {
	return &Task{
		Name:     SubtaskName(wrapper, command),
		Actions:  []Action{Cmd(command)},
		FileDeps: fileDeps,
		TaskDeps: []string{"install"},
	}
}
