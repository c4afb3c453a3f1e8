package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/snek/internal/git"
	"github.com/mark3labs/snek/internal/shell"
)

// fakeGit simulates just enough repository state for the workflows.
type fakeGit struct {
	current  string
	branches []string
	dirty    map[string]string
	tag      string
	commits  map[string][]string
	// same maps "a b" diff pairs to identical content.
	same map[string]bool
	// ancestors maps "a b" pairs where a is in the history of b.
	ancestors map[string]bool
	// fail makes the command line exit 1.
	fail map[string]bool

	runner *shell.FakeRunner
}

func newFakeGit(current string, branches ...string) *fakeGit {
	f := &fakeGit{
		current:   current,
		branches:  branches,
		dirty:     map[string]string{},
		commits:   map[string][]string{},
		same:      map[string]bool{},
		ancestors: map[string]bool{},
		fail:      map[string]bool{},
		runner:    shell.NewFakeRunner(),
	}
	f.runner.Handler = f.handle
	return f
}

func (f *fakeGit) repo() *git.Repo {
	return git.New("/repo", f.runner)
}

func (f *fakeGit) handle(call shell.Call) (shell.Result, error) {
	line := call.Line()
	if f.fail[line] {
		return shell.Result{ExitCode: 1, Stderr: "boom"}, nil
	}
	args := call.Args
	switch {
	case line == "git rev-parse --abbrev-ref HEAD":
		return shell.Result{Stdout: f.current + "\n"}, nil
	case args[0] == "branch":
		return shell.Result{Stdout: strings.Join(f.branches, "\n") + "\n"}, nil
	case args[0] == "status":
		return shell.Result{Stdout: f.dirty[f.current]}, nil
	case args[0] == "checkout":
		f.current = args[1]
	case args[0] == "describe":
		if f.tag == "" {
			return shell.Result{ExitCode: 128, Stderr: "fatal: No names found, cannot describe anything."}, nil
		}
		return shell.Result{Stdout: f.tag + "\n"}, nil
	case args[0] == "log":
		return shell.Result{Stdout: strings.Join(f.commits[f.current], "\n")}, nil
	case args[0] == "diff":
		if f.same[args[2]+" "+args[3]] {
			return shell.Result{}, nil
		}
		return shell.Result{ExitCode: 1}, nil
	case args[0] == "merge-base":
		if f.ancestors[args[2]+" "+args[3]] {
			return shell.Result{}, nil
		}
		return shell.Result{ExitCode: 1}, nil
	case args[0] == "merge":
		// After a merge the two branches carry the same content.
		f.same[f.current+" "+args[len(args)-1]] = true
	}
	return shell.Result{}, nil
}

// mutations returns the recorded git commands that change repository state.
func (f *fakeGit) mutations() []string {
	var out []string
	for _, line := range f.runner.Lines() {
		for _, prefix := range []string{"git checkout ", "git merge ", "git push ", "git tag "} {
			if strings.HasPrefix(line, prefix) {
				out = append(out, line)
			}
		}
	}
	return out
}

type bumpCall struct {
	part   string
	dryRun bool
}

type fakeBumper struct {
	calls []bumpCall
	git   *fakeGit
	err   error
}

func (b *fakeBumper) Bump(_ context.Context, part string, dryRun bool) (string, error) {
	b.calls = append(b.calls, bumpCall{part: part, dryRun: dryRun})
	if b.err != nil {
		return "", b.err
	}
	if dryRun {
		return "would bump " + part, nil
	}
	b.git.tag = "v1.1.0"
	b.git.commits[b.git.current] = nil
	return "", nil
}

func assertNoPush(t *testing.T, f *fakeGit) {
	t.Helper()
	if f.runner.Ran("git push") {
		t.Errorf("expected no push, got %v", f.mutations())
	}
}
