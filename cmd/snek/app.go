package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/snek/internal/browser"
	"github.com/mark3labs/snek/internal/config"
	"github.com/mark3labs/snek/internal/git"
	"github.com/mark3labs/snek/internal/shell"
	"github.com/mark3labs/snek/internal/taskrun"
	"github.com/mark3labs/snek/internal/tasks"
	"github.com/mark3labs/snek/internal/tui"
	"github.com/mark3labs/snek/internal/workflow"
	"github.com/mattn/go-isatty"
)

// fder is satisfied by *os.File.
type fder interface {
	Fd() uintptr
}

func isTerminal(f fder) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// session holds the collaborators of one command invocation.
type session struct {
	dir    string
	cfg    *config.Config
	runner *shell.Exec
	repo   *git.Repo

	assumeY  bool
	noPrompt bool
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(rootFlags.dir)
	if err != nil {
		return nil, err
	}
	runner := shell.NewExec(nil)
	runner.Stdin = os.Stdin
	return &session{
		dir:    dir,
		cfg:    cfg,
		runner: runner,
		repo:   git.New(dir, runner),
	}, nil
}

// confirmer picks how release asks for confirmation.
func (s *session) confirmer() workflow.Confirmer {
	switch {
	case s.assumeY:
		return workflow.StaticConfirmer(true)
	case s.noPrompt:
		return workflow.StaticConfirmer(false)
	case interactive():
		return &tui.Confirmer{}
	default:
		return workflow.NewPromptConfirmer()
	}
}

func (s *session) reporter() taskrun.Reporter {
	if isTerminal(os.Stdout) {
		return tui.NewReporter(os.Stdout)
	}
	return &taskrun.PlainReporter{Out: os.Stdout}
}

func (s *session) releaser() *workflow.Releaser {
	return &workflow.Releaser{
		Repo:       s.repo,
		Bumper:     workflow.NewCommandBumper(s.runner, s.dir, s.cfg.BumpCommand),
		Confirmer:  s.confirmer(),
		MainBranch: s.cfg.MainBranch,
		Remote:     s.cfg.Remote,
	}
}

// engine builds the project's task set and an engine to run it.
func (s *session) engine(opts tasks.Options) (*taskrun.Engine, error) {
	set, err := tasks.New(s.dir, s.cfg, opts, tasks.Deps{
		Merger:   workflow.NewMerger(s.repo, s.cfg.Remote),
		Releaser: s.releaser(),
		Browser:  browser.New(s.runner),
	})
	if err != nil {
		return nil, err
	}
	verbosity := 0
	if rootFlags.verbose {
		verbosity = 2
	}
	return &taskrun.Engine{
		Dir:       s.dir,
		Set:       set,
		Runner:    s.runner,
		Stamps:    taskrun.NewStamps(filepath.Join(s.dir, s.cfg.StateDir)),
		Reporter:  s.reporter(),
		Out:       os.Stdout,
		Verbosity: verbosity,
	}, nil
}

// runTasks runs names in a fresh engine and prints the closing line.
func runTasks(ctx context.Context, opts tasks.Options, assumeYes bool, names ...string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	s.assumeY = assumeYes
	engine, err := s.engine(opts)
	if err != nil {
		return err
	}
	err = engine.Run(ctx, names...)
	if r, ok := engine.Reporter.(*tui.Reporter); ok {
		r.Summary(err)
	}
	return err
}
