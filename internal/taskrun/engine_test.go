package taskrun

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/snek/internal/shell"
	"github.com/mark3labs/snek/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) Start(task string)           { r.events = append(r.events, ".  "+task) }
func (r *recorder) Skip(task string)            { r.events = append(r.events, "-- "+task) }
func (r *recorder) Fail(task string, err error) { r.events = append(r.events, "!! "+task) }

type fixture struct {
	dir    string
	runner *shell.FakeRunner
	rep    *recorder
	out    *bytes.Buffer
	engine *Engine
}

func newFixture(t *testing.T, set *tasks.Set) *fixture {
	t.Helper()
	require.NoError(t, set.Validate())
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		runner: shell.NewFakeRunner(),
		rep:    &recorder{},
		out:    &bytes.Buffer{},
	}
	f.engine = &Engine{
		Dir:      dir,
		Set:      set,
		Runner:   f.runner,
		Stamps:   NewStamps(filepath.Join(dir, ".snek")),
		Reporter: f.rep,
		Out:      f.out,
	}
	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// commands returns the shell strings the engine ran.
func (f *fixture) commands() []string {
	var out []string
	for _, c := range f.runner.Calls() {
		out = append(out, c.Args[len(c.Args)-1])
	}
	return out
}

func pythonSet() *tasks.Set {
	return tasks.NewSet([]string{"check", "style"},
		&tasks.Task{Name: "_verchew", Actions: []tasks.Action{tasks.Cmd("python bin/verchew --exit-code")}},
		&tasks.Task{Name: "install", Actions: []tasks.Action{tasks.Cmd("poetry install")}, TaskDeps: []string{"_verchew"}},
		&tasks.Task{Name: "check", Subtasks: []*tasks.Task{
			tasks.Subtask("poetry run", "poetry run black --diff .", nil),
		}},
		&tasks.Task{Name: "style", Subtasks: []*tasks.Task{
			tasks.Subtask("poetry run", "poetry run flake8", nil),
			tasks.Subtask("poetry run", "poetry run pydocstyle", nil),
		}},
	)
}

func TestRun_DependencyOrder(t *testing.T) {
	f := newFixture(t, pythonSet())

	require.NoError(t, f.engine.Run(context.Background()))
	assert.Equal(t, []string{
		"python bin/verchew --exit-code",
		"poetry install",
		"poetry run black --diff .",
		"poetry run flake8",
		"poetry run pydocstyle",
	}, f.commands())
	assert.Equal(t, []string{
		".  _verchew",
		".  install",
		".  check:black",
		".  style:flake8",
		".  style:pydocstyle",
	}, f.rep.events)
	assert.Equal(t, f.dir, f.runner.Calls()[0].Dir)
	assert.Equal(t, "sh", f.runner.Calls()[0].Name)
}

func TestRun_Subtask(t *testing.T) {
	f := newFixture(t, pythonSet())

	require.NoError(t, f.engine.Run(context.Background(), "style:pydocstyle"))
	assert.Equal(t, []string{
		"python bin/verchew --exit-code",
		"poetry install",
		"poetry run pydocstyle",
	}, f.commands())

	err := f.engine.Run(context.Background(), "style:nope")
	assert.Error(t, err)
}

func TestRun_StyleViolationFails(t *testing.T) {
	f := newFixture(t, pythonSet())
	f.runner.On("sh -c poetry run flake8", shell.Result{
		ExitCode: 1,
		Stdout:   "foo/foo.py:3:4: E111 indentation is not a multiple of four\n",
	})

	err := f.engine.Run(context.Background(), "style")
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "style:flake8", taskErr.Task)
	var exitErr *shell.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode)

	assert.Contains(t, f.rep.events, "!! style:flake8")
	assert.False(t, f.runner.Ran("sh -c poetry run pydocstyle"), "the chain stops at the first failure")
}

func TestRun_StyleViolationOutput(t *testing.T) {
	f := newFixture(t, pythonSet())
	f.runner.On("sh -c poetry run pydocstyle", shell.Result{
		ExitCode: 1,
		Stdout:   "foo/foo.py:1 in public function `bar`:\n        D400: First line should end with a period\n",
	})

	err := f.engine.Run(context.Background(), "style")
	require.Error(t, err)
	assert.Contains(t, f.out.String(), "D400")
}

func TestRun_RealShellFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	set := tasks.NewSet(nil, &tasks.Task{Name: "install"}, &tasks.Task{Name: "style", Subtasks: []*tasks.Task{
		tasks.Subtask("", `echo "foo.py:2:3: E111 indentation is not a multiple of four"; exit 1`, nil),
	}})
	f := newFixture(t, set)
	f.engine.Runner = shell.NewExec(nil)

	err := f.engine.Run(context.Background(), "style")
	require.Error(t, err)
	var exit *shell.ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode)
	assert.Contains(t, f.out.String(), "E111")
}

func TestRun_FileDependencies(t *testing.T) {
	set := tasks.NewSet(nil, &tasks.Task{Name: "install"}, &tasks.Task{
		Name:     "style",
		Subtasks: []*tasks.Task{tasks.Subtask("", "flake8", []string{"foo.py"})},
	})
	f := newFixture(t, set)
	dep := f.write(t, "foo.py", "x = 1\n")

	require.NoError(t, f.engine.Run(context.Background(), "style"))
	require.NoError(t, f.engine.Run(context.Background(), "style"))
	assert.Equal(t, []string{".  install", ".  style:flake8", ".  install", "-- style:flake8"}, f.rep.events)
	assert.Len(t, f.runner.Calls(), 1)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(dep, future, future))
	require.NoError(t, f.engine.Run(context.Background(), "style"))
	assert.Len(t, f.runner.Calls(), 2, "a modified dependency makes the task stale")
}

func TestRun_ChangedDependencyList(t *testing.T) {
	task := &tasks.Task{Name: "test", Actions: []tasks.Action{tasks.Cmd("pytest")}, FileDeps: []string{"a.py"}}
	f := newFixture(t, tasks.NewSet(nil, task))
	f.write(t, "a.py", "")
	f.write(t, "b.py", "")

	require.NoError(t, f.engine.Run(context.Background(), "test"))
	task.FileDeps = []string{"a.py", "b.py"}
	require.NoError(t, f.engine.Run(context.Background(), "test"))
	assert.Len(t, f.runner.Calls(), 2)
}

func TestRun_MissingFileDependency(t *testing.T) {
	task := &tasks.Task{Name: "install", Actions: []tasks.Action{tasks.Cmd("poetry install")}, FileDeps: []string{"pyproject.toml"}}
	f := newFixture(t, tasks.NewSet(nil, task))
	f.write(t, "pyproject.toml", "")
	require.NoError(t, f.engine.Run(context.Background(), "install"))

	require.NoError(t, os.Remove(filepath.Join(f.dir, "pyproject.toml")))
	err := f.engine.Run(context.Background(), "install")
	assert.ErrorContains(t, err, "pyproject.toml")
}

func TestRun_FailureWritesNoStamp(t *testing.T) {
	task := &tasks.Task{Name: "test", Actions: []tasks.Action{tasks.Cmd("pytest")}, FileDeps: []string{"a.py"}}
	f := newFixture(t, tasks.NewSet(nil, task))
	f.write(t, "a.py", "")
	f.runner.OnExit("sh -c pytest", 1, "1 failed")

	assert.Error(t, f.engine.Run(context.Background(), "test"))
	assert.NoFileExists(t, f.engine.Stamps.Path("test"))
}

func TestRun_UpToDatePredicate(t *testing.T) {
	upToDate := false
	task := &tasks.Task{
		Name:    "merge",
		Actions: []tasks.Action{tasks.Cmd("git merge")},
		UpToDate: []tasks.Predicate{func(context.Context) (bool, error) {
			return upToDate, nil
		}},
	}
	f := newFixture(t, tasks.NewSet(nil, task))

	require.NoError(t, f.engine.Run(context.Background(), "merge"))
	upToDate = true
	require.NoError(t, f.engine.Run(context.Background(), "merge"))
	assert.Equal(t, []string{".  merge", "-- merge"}, f.rep.events)

	task.UpToDate = []tasks.Predicate{func(context.Context) (bool, error) {
		return false, errors.New("git broke")
	}}
	err := f.engine.Run(context.Background(), "merge")
	assert.ErrorContains(t, err, "git broke")
}

func TestRun_Targets(t *testing.T) {
	task := &tasks.Task{
		Name:     "build",
		Actions:  []tasks.Action{tasks.Cmd("poetry build")},
		FileDeps: []string{"pyproject.toml"},
		Targets:  []string{"dist"},
	}
	f := newFixture(t, tasks.NewSet(nil, task))
	f.write(t, "pyproject.toml", "")

	err := f.engine.Run(context.Background(), "build")
	assert.ErrorContains(t, err, "target dist was not created")

	f.runner.Handler = func(call shell.Call) (shell.Result, error) {
		return shell.Result{}, os.MkdirAll(filepath.Join(f.dir, "dist"), 0755)
	}
	require.NoError(t, f.engine.Run(context.Background(), "build"))
	require.NoError(t, f.engine.Run(context.Background(), "build"))
	assert.Equal(t, "-- build", f.rep.events[len(f.rep.events)-1])

	require.NoError(t, os.RemoveAll(filepath.Join(f.dir, "dist")))
	require.NoError(t, f.engine.Run(context.Background(), "build"))
	assert.Equal(t, ".  build", f.rep.events[len(f.rep.events)-1], "a missing target makes the task stale")
}

func TestRun_Cycle(t *testing.T) {
	set := tasks.NewSet(nil,
		&tasks.Task{Name: "a", TaskDeps: []string{"b"}},
		&tasks.Task{Name: "b", TaskDeps: []string{"c"}},
		&tasks.Task{Name: "c", TaskDeps: []string{"a"}},
	)
	f := newFixture(t, set)

	err := f.engine.Run(context.Background(), "a")
	require.ErrorIs(t, err, ErrCycle)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
	assert.Empty(t, f.runner.Calls())
}

func TestRun_FunctionActions(t *testing.T) {
	task := &tasks.Task{Name: "merge", Actions: []tasks.Action{
		tasks.Func("quiet", func(_ context.Context, out io.Writer) error {
			_, err := io.WriteString(out, "hidden\n")
			return err
		}),
		tasks.Func("loud", func(_ context.Context, out io.Writer) error {
			io.WriteString(out, "shown on failure\n")
			return errors.New("nope")
		}),
	}}
	f := newFixture(t, tasks.NewSet(nil, task))

	err := f.engine.Run(context.Background(), "merge")
	assert.ErrorContains(t, err, "task merge failed: nope")
	assert.Equal(t, "shown on failure\n", f.out.String())
}

func TestRun_Verbosity(t *testing.T) {
	task := &tasks.Task{Name: "release", Verbosity: 2, Actions: []tasks.Action{
		tasks.Cmd("bump"),
		tasks.Func("say", func(_ context.Context, out io.Writer) error {
			_, err := io.WriteString(out, "released\n")
			return err
		}),
	}}
	f := newFixture(t, tasks.NewSet(nil, task))
	f.runner.OnOutput("sh -c bump", "bumped\n")

	require.NoError(t, f.engine.Run(context.Background(), "release"))
	assert.Equal(t, "bumped\nreleased\n", f.out.String())
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, pythonSet())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.engine.Run(ctx, "style"), context.Canceled)
	assert.Empty(t, f.runner.Calls())
}

func TestClean(t *testing.T) {
	task := &tasks.Task{
		Name:     "coverage",
		Actions:  []tasks.Action{tasks.Cmd("pytest --cov-report=html")},
		FileDeps: []string{"a.py"},
		Targets:  []string{"htmlcov"},
		Clean:    []string{".coverage*"},
	}
	f := newFixture(t, tasks.NewSet(nil, task))
	f.write(t, "a.py", "")
	f.write(t, "htmlcov/index.html", "")
	f.write(t, ".coverage", "")
	f.write(t, ".coverage.host", "")

	require.NoError(t, f.engine.Run(context.Background(), "coverage"))
	assert.FileExists(t, f.engine.Stamps.Path("coverage"))

	require.NoError(t, f.engine.Clean(context.Background()))
	assert.NoDirExists(t, filepath.Join(f.dir, "htmlcov"))
	assert.NoFileExists(t, filepath.Join(f.dir, ".coverage"))
	assert.NoFileExists(t, filepath.Join(f.dir, ".coverage.host"))
	assert.NoFileExists(t, f.engine.Stamps.Path("coverage"))
	assert.FileExists(t, filepath.Join(f.dir, "a.py"))

	assert.Error(t, f.engine.Clean(context.Background(), "missing"))
}

func TestPlainReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &PlainReporter{Out: &buf}
	r.Start("style:flake8")
	r.Skip("install")
	r.Fail("test", errors.New("exit 1"))

	assert.Equal(t, ".  style:flake8\n-- install\nTaskFailed - taskid:test\nexit 1\n", buf.String())
}

func TestStamps(t *testing.T) {
	dir := t.TempDir()
	s := NewStamps(filepath.Join(dir, "state"))
	dep := filepath.Join(dir, "dep")
	require.NoError(t, os.WriteFile(dep, nil, 0644))

	assert.Equal(t, filepath.Join(dir, "state", "style__flake8.stamp"), s.Path("style:flake8"))

	fresh, err := s.Fresh("t", []string{dep})
	require.NoError(t, err)
	assert.False(t, fresh)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(dep, past, past))
	require.NoError(t, s.Record("t", []string{dep}))
	fresh, err = s.Fresh("t", []string{dep})
	require.NoError(t, err)
	assert.True(t, fresh)

	require.NoError(t, s.Forget("t"))
	require.NoError(t, s.Forget("t"))
	fresh, err = s.Fresh("t", []string{dep})
	require.NoError(t, err)
	assert.False(t, fresh)
}
