package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/snek/internal/browser"
	"github.com/mark3labs/snek/internal/config"
	"github.com/mark3labs/snek/internal/fsops"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/project"
	"github.com/mark3labs/snek/internal/workflow"
)

// DefaultTasks run when no task is named.
var DefaultTasks = []string{"check", "style", "test"}

// blackExclude keeps black away from environments, build output and
// unrendered template directories.
const blackExclude = `"(\.venv|\.git|\{|\.tox|build|dist)"`

// Docs generators.
const (
	MkDocs = "mkdocs"
	Sphinx = "sphinx"
)

// Options are per-invocation task parameters (doit's --param values).
type Options struct {
	// MergeBranch is the merge target; empty means the main branch.
	MergeBranch string
	// ReleasePart is major, minor or patch; empty means patch.
	ReleasePart string
	// MinCoverage overrides the configured threshold when positive.
	MinCoverage int
}

// Deps are the collaborators used by function actions.
type Deps struct {
	Merger   *workflow.Merger
	Releaser *workflow.Releaser
	Browser  browser.Opener
}

type builder struct {
	dir  string
	cfg  *config.Config
	opts Options
	deps Deps
	py   []string
	pkg  string
}

// New returns a fresh task set for the project in dir.
func New(dir string, cfg *config.Config, opts Options, deps Deps) (*Set, error) {
	py, err := PythonFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("listing python files: %w", err)
	}
	b := &builder{dir: dir, cfg: cfg, opts: opts, deps: deps, py: py}

	p, err := project.Load(dir)
	switch {
	case err == nil:
		b.pkg = p.Package()
	case errors.Is(err, project.ErrNoProject):
		logger.Debug("no pyproject.toml in %s", dir)
	default:
		return nil, err
	}

	set := NewSet(DefaultTasks,
		b.verchew(),
		b.install(),
		b.check(),
		b.format(),
		b.style(),
		b.test(),
		b.testAll(),
		b.coverage(),
		b.docs(),
		b.serveDocs(),
		b.merge(),
		b.release(),
		b.build(),
		b.publish(),
		b.clean(),
	)
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// run prefixes command with the configured wrapper.
func (b *builder) run(command string) string {
	if b.cfg.Wrapper == "" {
		return command
	}
	return b.cfg.Wrapper + " " + command
}

func (b *builder) subtasks(commands ...string) []*Task {
	out := make([]*Task, len(commands))
	for i, c := range commands {
		out[i] = Subtask(b.cfg.Wrapper, c, b.py)
	}
	return out
}

func (b *builder) verchew() *Task {
	return &Task{
		Name:     "_verchew",
		Doc:      "Check system dependencies.",
		FileDeps: []string{".verchew.ini"},
		Actions:  []Action{Cmd("python bin/verchew --exit-code")},
	}
}

func (b *builder) install() *Task {
	return &Task{
		Name:     "install",
		Doc:      "Install all dependencies in a virtual environment.",
		FileDeps: []string{"pyproject.toml"},
		Actions:  []Action{Cmd("poetry install")},
		TaskDeps: []string{"_verchew"},
	}
}

func (b *builder) black(extra string) string {
	cmd := fmt.Sprintf("black -l %d", b.cfg.LineLength)
	if extra != "" {
		cmd += " " + extra
	}
	return b.run(cmd + " --exclude " + blackExclude + " .")
}

func (b *builder) check() *Task {
	return &Task{
		Name:     "check",
		Doc:      "Check diff of code formatters.",
		Subtasks: b.subtasks(b.black("--diff"), b.run("isort --diff")),
	}
}

func (b *builder) format() *Task {
	return &Task{
		Name:     "format",
		Doc:      "Run code formatters.",
		Subtasks: b.subtasks(b.black(""), b.run("isort -y")),
	}
}

func (b *builder) style() *Task {
	return &Task{
		Name: "style",
		Doc:  "Check code styling.",
		Subtasks: b.subtasks(
			b.run("flake8"),
			b.run("pydocstyle"),
			b.run("isort --check-only -rc ."),
		),
	}
}

func (b *builder) minCoverage() int {
	if b.opts.MinCoverage > 0 {
		return b.opts.MinCoverage
	}
	return b.cfg.MinCoverage
}

func (b *builder) test() *Task {
	cmd := "pytest"
	if threshold := b.minCoverage(); threshold > 0 {
		cmd += " --cov"
		if b.pkg != "" {
			cmd += "=" + b.pkg
		}
		cmd += fmt.Sprintf(" --cov-fail-under=%d", threshold)
	}
	return &Task{
		Name:     "test",
		Doc:      "Run tests.",
		FileDeps: b.py,
		Actions:  []Action{Cmd(b.run(cmd))},
		TaskDeps: []string{"install"},
	}
}

func (b *builder) testAll() *Task {
	cmd := "tox"
	if len(b.cfg.PythonVersions) > 0 {
		cmd += " -e " + strings.Join(b.cfg.PythonVersions, ",")
	}
	return &Task{
		Name:     "test-all",
		Doc:      "Run tests against all supported Python versions.",
		Actions:  []Action{Cmd(b.run(cmd))},
		TaskDeps: []string{"install"},
		Clean:    []string{".tox"},
	}
}

func (b *builder) open(path string) Action {
	return Func("open "+path, func(ctx context.Context, out io.Writer) error {
		if b.deps.Browser == nil {
			fmt.Fprintf(out, "%s\n", filepath.Join(b.dir, path))
			return nil
		}
		return b.deps.Browser.Open(ctx, filepath.Join(b.dir, path))
	})
}

func (b *builder) coverage() *Task {
	cov := "--cov"
	if b.pkg != "" {
		cov += "=" + b.pkg
	}
	return &Task{
		Name: "coverage",
		Doc:  "Build and open the HTML coverage report.",
		Actions: []Action{
			Cmd(b.run("pytest " + cov + " --cov-report=html")),
			b.open("htmlcov/index.html"),
		},
		Targets:  []string{"htmlcov/index.html"},
		TaskDeps: []string{"install"},
		Clean:    []string{"htmlcov", ".coverage"},
	}
}

// DocsGenerator returns the configured generator, or detects it from the
// files present in dir. It returns "" when neither is in use.
func DocsGenerator(dir string, cfg *config.Config) string {
	if cfg.DocsGenerator != "" {
		return cfg.DocsGenerator
	}
	if exists(filepath.Join(dir, "mkdocs.yml")) {
		return MkDocs
	}
	if exists(filepath.Join(dir, "docs", "conf.py")) {
		return Sphinx
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// docsOutput returns the HTML directory the generator writes.
func docsOutput(generator string) string {
	if generator == Sphinx {
		return "docs/_build/html"
	}
	return "site"
}

func (b *builder) noDocs(context.Context, io.Writer) error {
	return errors.New("no documentation generator: add mkdocs.yml or docs/conf.py, or set docs_generator")
}

func (b *builder) docs() *Task {
	t := &Task{
		Name:     "docs",
		Doc:      "Build and open the HTML documentation.",
		TaskDeps: []string{"install"},
	}
	gen := DocsGenerator(b.dir, b.cfg)
	output := docsOutput(gen)
	switch gen {
	case MkDocs:
		t.Actions = append(t.Actions, Cmd(b.run("mkdocs build")))
	case Sphinx:
		t.Actions = append(t.Actions, Cmd(b.run("sphinx-build -b html docs "+output)))
	default:
		t.Actions = []Action{Func("docs", b.noDocs)}
		return t
	}
	t.Actions = append(t.Actions,
		Func("copy coverage report", func(ctx context.Context, out io.Writer) error {
			copied, err := fsops.CopyDir(filepath.Join(b.dir, "htmlcov"), filepath.Join(b.dir, output))
			if copied {
				logger.Debug("copied htmlcov into %s", output)
			}
			return err
		}),
		b.open(output+"/index.html"),
	)
	t.Targets = []string{output + "/index.html"}
	t.Clean = []string{output}
	return t
}

func (b *builder) serveDocs() *Task {
	t := &Task{
		Name:      "serve-docs",
		Doc:       "Serve the documentation and rebuild it on change.",
		TaskDeps:  []string{"install"},
		Verbosity: 2,
	}
	switch DocsGenerator(b.dir, b.cfg) {
	case MkDocs:
		t.Actions = []Action{Cmd(b.run("mkdocs serve"))}
	case Sphinx:
		t.Actions = []Action{Cmd(b.run("bin/serve-docs"))}
	default:
		t.Actions = []Action{Func("serve-docs", b.noDocs)}
	}
	return t
}

func (b *builder) mergeTarget() string {
	if b.opts.MergeBranch != "" {
		return b.opts.MergeBranch
	}
	return b.cfg.MainBranch
}

func (b *builder) merge() *Task {
	target := b.mergeTarget()
	t := &Task{
		Name:      "merge",
		Doc:       fmt.Sprintf("Merge the current branch into %s and push it.", target),
		Verbosity: 2,
		Actions: []Action{Func("merge", func(ctx context.Context, out io.Writer) error {
			if b.deps.Merger == nil {
				return errors.New("merge needs a git repository")
			}
			res, err := b.deps.Merger.Merge(ctx, target)
			if err != nil {
				return err
			}
			if res.Status == workflow.StatusUpToDate {
				fmt.Fprintf(out, "%s is up to date with %s\n", res.To, res.From)
			} else {
				fmt.Fprintf(out, "Merged %s into %s\n", res.From, res.To)
			}
			return nil
		})},
	}
	if b.deps.Merger != nil {
		t.UpToDate = []Predicate{func(ctx context.Context) (bool, error) {
			return b.deps.Merger.UpToDate(ctx, target)
		}}
	}
	return t
}

func (b *builder) release() *Task {
	part := b.opts.ReleasePart
	if part == "" {
		part = "patch"
	}
	return &Task{
		Name:      "release",
		Doc:       "Bump the version on the main branch, tag it and push.",
		Verbosity: 2,
		Actions: []Action{Func("release", func(ctx context.Context, out io.Writer) error {
			if b.deps.Releaser == nil {
				return errors.New("release needs a git repository")
			}
			res, err := b.deps.Releaser.WithOutput(out).Release(ctx, part)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Released %s (%d commits)\n", res.Tag, len(res.Commits))
			return nil
		})},
	}
}

func (b *builder) build() *Task {
	return &Task{
		Name:     "build",
		Doc:      "Build the source and wheel distributions.",
		FileDeps: append([]string{"pyproject.toml"}, b.py...),
		Actions:  []Action{Cmd("poetry build")},
		Targets:  []string{"dist"},
		TaskDeps: []string{"install"},
		Clean:    []string{"dist"},
	}
}

func (b *builder) publish() *Task {
	cmd := "poetry publish"
	if b.cfg.PackageIndex != "" {
		cmd += " --repository " + b.cfg.PackageIndex
	}
	return &Task{
		Name:      "publish",
		Doc:       "Upload the distributions to the package index.",
		Actions:   []Action{Cmd(cmd)},
		TaskDeps:  []string{"build"},
		Verbosity: 2,
	}
}

// cleanPaths are the build artifacts removed by the clean task.
var cleanPaths = []string{
	"build",
	"dist",
	"site",
	"docs/_build",
	"htmlcov",
	".coverage",
	".pytest_cache",
	"*.egg-info",
	"**/__pycache__",
	"**/*.pyc",
}

func (b *builder) clean() *Task {
	return &Task{
		Name: "clean",
		Doc:  "Remove build artifacts and caches.",
		Actions: []Action{Func("clean", func(ctx context.Context, out io.Writer) error {
			return fsops.CleanIn(b.dir, cleanPaths...)
		})},
	}
}
