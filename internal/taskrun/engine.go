// Package taskrun runs tasks from a tasks.Set in dependency order, skipping
// those whose file dependencies have not changed since their last success.
//
// The engine is sequential. Each task runs at most once per Run call, task
// dependencies run before the task, and a task's subtasks run after its own
// actions in declaration order.
package taskrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/snek/internal/fsops"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/shell"
	"github.com/mark3labs/snek/internal/tasks"
)

// ErrCycle is wrapped by errors for circular task dependencies.
var ErrCycle = errors.New("dependency cycle")

// TaskError names the task that failed.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Engine executes tasks of one project.
type Engine struct {
	// Dir is the project directory; commands run there and relative file
	// dependencies and targets are resolved against it.
	Dir      string
	Set      *tasks.Set
	Runner   shell.Runner
	Stamps   *Stamps
	Reporter Reporter

	// Out receives task output: live for tasks at verbosity 2, otherwise
	// only the captured output of a failing action.
	Out io.Writer

	// Verbosity raises every task to at least this level.
	Verbosity int
}

type run struct {
	done  map[string]bool
	stack []string
}

// Run executes the named tasks ("task" or "task:subtask") and everything
// they depend on. With no names the set's default tasks run. Run stops at
// the first failure.
func (e *Engine) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = e.Set.Default()
	}
	r := &run{done: make(map[string]bool)}
	for _, name := range names {
		if err := e.visitRef(ctx, r, name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) visitRef(ctx context.Context, r *run, ref string) error {
	t, sub, err := e.Set.Lookup(ref)
	if err != nil {
		return err
	}
	if sub != nil {
		return e.visit(ctx, r, t.Name+":"+sub.Name, sub, false)
	}
	return e.visit(ctx, r, t.Name, t, true)
}

func (e *Engine) visit(ctx context.Context, r *run, key string, t *tasks.Task, withSubtasks bool) error {
	if r.done[key] {
		return nil
	}
	for i, k := range r.stack {
		if k == key {
			path := append(append([]string(nil), r.stack[i:]...), key)
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.stack = append(r.stack, key)
	for _, dep := range t.TaskDeps {
		if err := e.visitRef(ctx, r, dep); err != nil {
			r.stack = r.stack[:len(r.stack)-1]
			return err
		}
	}

	if len(t.Actions) > 0 || len(t.Subtasks) == 0 {
		if err := e.execute(ctx, key, t); err != nil {
			r.stack = r.stack[:len(r.stack)-1]
			return err
		}
	}
	if withSubtasks {
		for _, sub := range t.Subtasks {
			if err := e.visit(ctx, r, key+":"+sub.Name, sub, false); err != nil {
				r.stack = r.stack[:len(r.stack)-1]
				return err
			}
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.done[key] = true
	return nil
}

func (e *Engine) reporter() Reporter {
	if e.Reporter == nil {
		return nopReporter{}
	}
	return e.Reporter
}

func (e *Engine) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}

func (e *Engine) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Dir, filepath.FromSlash(p))
}

func (e *Engine) paths(ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = e.path(p)
	}
	return out
}

// tracked reports whether the engine can ever consider t up to date.
func tracked(t *tasks.Task) bool {
	return len(t.FileDeps) > 0 || len(t.UpToDate) > 0
}

// UpToDate reports whether t, known as key, may be skipped.
func (e *Engine) UpToDate(ctx context.Context, key string, t *tasks.Task) (bool, error) {
	if !tracked(t) {
		return false, nil
	}
	for _, pred := range t.UpToDate {
		ok, err := pred(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, target := range t.Targets {
		if _, err := os.Stat(e.path(target)); err != nil {
			return false, nil
		}
	}
	if len(t.FileDeps) == 0 {
		return true, nil
	}
	if e.Stamps == nil {
		return false, nil
	}
	return e.Stamps.Fresh(key, e.paths(t.FileDeps))
}

func (e *Engine) execute(ctx context.Context, key string, t *tasks.Task) error {
	rep := e.reporter()

	fresh, err := e.UpToDate(ctx, key, t)
	if err != nil {
		err = &TaskError{Task: key, Err: err}
		rep.Fail(key, err)
		return err
	}
	if fresh {
		logger.Debug("task %s up to date", key)
		rep.Skip(key)
		return nil
	}

	rep.Start(key)
	if err := e.actions(ctx, t); err != nil {
		err = &TaskError{Task: key, Err: err}
		rep.Fail(key, err)
		return err
	}

	for _, target := range t.Targets {
		if _, err := os.Stat(e.path(target)); err != nil {
			err = &TaskError{Task: key, Err: fmt.Errorf("target %s was not created", target)}
			rep.Fail(key, err)
			return err
		}
	}

	if len(t.FileDeps) > 0 && e.Stamps != nil {
		if err := e.Stamps.Record(key, e.paths(t.FileDeps)); err != nil {
			return &TaskError{Task: key, Err: err}
		}
	}
	return nil
}

func (e *Engine) actions(ctx context.Context, t *tasks.Task) error {
	live := max(t.Verbosity, e.Verbosity) >= 2
	for _, a := range t.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if a.Fn != nil {
			err = e.function(ctx, a, live)
		} else {
			err = e.command(ctx, a.Command, live)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) function(ctx context.Context, a tasks.Action, live bool) error {
	if live {
		return a.Fn(ctx, e.out())
	}
	var buf bytes.Buffer
	if err := a.Fn(ctx, &buf); err != nil {
		e.out().Write(buf.Bytes())
		return err
	}
	return nil
}

func (e *Engine) command(ctx context.Context, command string, live bool) error {
	runner := e.Runner
	streamed := false
	if s, ok := runner.(shell.Streamer); ok && live {
		runner = s.WithEcho(e.out())
		streamed = true
	}

	logger.Debug("task action: %s", command)
	res, err := shell.Shell(ctx, runner, e.Dir, command)
	if !streamed && (live || err != nil || !res.OK()) {
		io.WriteString(e.out(), res.Stdout)
		io.WriteString(e.out(), res.Stderr)
	}
	_, err = shell.Check(res, err, "sh", "-c", command)
	return err
}

// Clean removes the targets and clean paths of the named tasks (all tasks
// when none are named), including their subtasks, and forgets their stamps
// so the next run executes them again.
func (e *Engine) Clean(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = e.Set.Names()
	}
	for _, ref := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, sub, err := e.Set.Lookup(ref)
		if err != nil {
			return err
		}
		if sub != nil {
			if err := e.clean(t.Name+":"+sub.Name, sub); err != nil {
				return err
			}
			continue
		}
		if err := e.clean(t.Name, t); err != nil {
			return err
		}
		for _, st := range t.Subtasks {
			if err := e.clean(t.Name+":"+st.Name, st); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) clean(key string, t *tasks.Task) error {
	paths := append(append([]string(nil), t.Targets...), t.Clean...)
	if len(paths) > 0 {
		logger.Debug("cleaning %s: %s", key, strings.Join(paths, " "))
		if err := fsops.CleanIn(e.Dir, paths...); err != nil {
			return &TaskError{Task: key, Err: err}
		}
	}
	if e.Stamps != nil {
		if err := e.Stamps.Forget(key); err != nil {
			return &TaskError{Task: key, Err: err}
		}
	}
	return nil
}
