package shell

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation seen by FakeRunner.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line returns the joined command line of the call.
func (c Call) Line() string {
	return CommandLine(c.Name, c.Args...)
}

// FakeRunner is a scripted Runner for tests. Responses are looked up by the
// exact command line ("git status --porcelain"); unscripted commands are
// passed to Handler when set and otherwise succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]Result
	errs      map[string]error
	calls     []Call

	// Handler answers commands that have no scripted response.
	Handler func(call Call) (Result, error)
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string][]Result),
		errs:      make(map[string]error),
	}
}

// On scripts the result for a command line. Scripting the same line more
// than once queues the results; the last one repeats once the queue drains.
func (f *FakeRunner) On(line string, res Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = append(f.responses[line], res)
	return f
}

// OnOutput scripts a successful command with the given stdout.
func (f *FakeRunner) OnOutput(line, stdout string) *FakeRunner {
	return f.On(line, Result{Stdout: stdout})
}

// OnExit scripts a command that exits with code and stderr.
func (f *FakeRunner) OnExit(line string, code int, stderr string) *FakeRunner {
	return f.On(line, Result{ExitCode: code, Stderr: stderr})
}

// OnError scripts a command that cannot be run at all.
func (f *FakeRunner) OnError(line string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[line] = err
	return f
}

// Run implements Runner.
func (f *FakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	line := call.Line()

	f.mu.Lock()
	f.calls = append(f.calls, call)
	if err, ok := f.errs[line]; ok {
		f.mu.Unlock()
		return Result{}, err
	}
	if queue, ok := f.responses[line]; ok && len(queue) > 0 {
		res := queue[0]
		if len(queue) > 1 {
			f.responses[line] = queue[1:]
		}
		f.mu.Unlock()
		return res, nil
	}
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if handler != nil {
		return handler(call)
	}
	return Result{}, nil
}

// Calls returns a copy of every call seen so far.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns the command lines of every call seen so far.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Ran reports whether any call's command line starts with prefix.
func (f *FakeRunner) Ran(prefix string) bool {
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
