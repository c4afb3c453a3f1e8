// Package git wraps the git binary for the merge and release workflows.
//
// Queries never mutate the repository and are safe to call at any time;
// their results feed the guards that run before any checkout, merge or push.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/shell"
)

// Error describes a git invocation that failed.
type Error struct {
	Operation string
	Args      []string
	Output    string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Repo runs git in one working directory.
type Repo struct {
	dir    string
	runner shell.Runner
}

// New creates a Repo for dir.
func New(dir string, runner shell.Runner) *Repo {
	return &Repo{dir: dir, runner: runner}
}

// Dir returns the working directory the repo runs git in.
func (r *Repo) Dir() string {
	return r.dir
}

func (r *Repo) exec(ctx context.Context, args ...string) (shell.Result, error) {
	logger.Debug("git %s", strings.Join(args, " "))
	return r.runner.Run(ctx, r.dir, "git", args...)
}

// run executes git and fails on non-zero exit.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	res, err := r.exec(ctx, args...)
	if err != nil {
		return "", &Error{Operation: args[0], Args: args[1:], Err: err}
	}
	if !res.OK() {
		return "", &Error{
			Operation: args[0],
			Args:      args[1:],
			Output:    res.Stderr,
			Err:       fmt.Errorf("exit status %d", res.ExitCode),
		}
	}
	return res.Stdout, nil
}

// CurrentBranch returns the symbolic name of the checked-out branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Branches lists local branch names.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// HasBranch reports whether name is a local branch.
func (r *Repo) HasBranch(ctx context.Context, name string) (bool, error) {
	branches, err := r.Branches(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == name {
			return true, nil
		}
	}
	return false, nil
}

// UnstagedChanges returns the porcelain status of tracked files. An empty
// string means the working tree is clean; untracked files are ignored.
func (r *Repo) UnstagedChanges(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// LastTag returns the most recent tag reachable from HEAD, or "" when the
// repository has no tags yet.
func (r *Repo) LastTag(ctx context.Context) (string, error) {
	args := []string{"describe", "--tags", "--abbrev=0"}
	res, err := r.exec(ctx, args...)
	if err != nil {
		return "", &Error{Operation: "describe", Args: args[1:], Err: err}
	}
	if !res.OK() {
		if noTags(res.Stderr) {
			return "", nil
		}
		return "", &Error{
			Operation: "describe",
			Args:      args[1:],
			Output:    res.Stderr,
			Err:       fmt.Errorf("exit status %d", res.ExitCode),
		}
	}
	return strings.TrimSpace(res.Stdout), nil
}

func noTags(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "no names found") || strings.Contains(s, "no tags can describe")
}

// CommitsSince returns one line per commit between tag and HEAD. An empty
// tag lists the whole history.
func (r *Repo) CommitsSince(ctx context.Context, tag string) ([]string, error) {
	args := []string{"log", "--oneline"}
	if tag != "" {
		args = append(args, tag+"..HEAD")
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// IsAncestor reports whether commit a is reachable from b
// (git merge-base --is-ancestor).
func (r *Repo) IsAncestor(ctx context.Context, a, b string) (bool, error) {
	args := []string{"merge-base", "--is-ancestor", a, b}
	res, err := r.exec(ctx, args...)
	if err != nil {
		return false, &Error{Operation: "merge-base", Args: args[1:], Err: err}
	}
	switch res.ExitCode {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, &Error{
			Operation: "merge-base",
			Args:      args[1:],
			Output:    res.Stderr,
			Err:       fmt.Errorf("exit status %d", res.ExitCode),
		}
	}
}

// DiffEmpty reports whether the tracked content of two refs is identical.
func (r *Repo) DiffEmpty(ctx context.Context, a, b string) (bool, error) {
	args := []string{"diff", "--quiet", a, b}
	res, err := r.exec(ctx, args...)
	if err != nil {
		return false, &Error{Operation: "diff", Args: args[1:], Err: err}
	}
	switch res.ExitCode {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, &Error{
			Operation: "diff",
			Args:      args[1:],
			Output:    res.Stderr,
			Err:       fmt.Errorf("exit status %d", res.ExitCode),
		}
	}
}

// Checkout switches the working tree to branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "checkout", branch)
	return err
}

// MergeNoFF merges branch into the current branch, always recording a merge commit.
func (r *Repo) MergeNoFF(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "merge", "--no-ff", "--no-edit", branch)
	return err
}

// Push pushes branch to remote.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	_, err := r.run(ctx, "push", remote, branch)
	return err
}

// PushTags pushes all tags to remote.
func (r *Repo) PushTags(ctx context.Context, remote string) error {
	_, err := r.run(ctx, "push", remote, "--tags")
	return err
}

// Info is a one-shot summary of the repository state.
type Info struct {
	Branch  string
	Hash    string
	Dirty   bool
	LastTag string
}

// Info returns the current branch, short hash, dirtiness and last tag.
func (r *Repo) Info(ctx context.Context) (*Info, error) {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	hash, err := r.run(ctx, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		return nil, err
	}
	changes, err := r.UnstagedChanges(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := r.LastTag(ctx)
	if err != nil {
		return nil, err
	}
	return &Info{
		Branch:  branch,
		Hash:    strings.TrimSpace(hash),
		Dirty:   changes != "",
		LastTag: tag,
	}, nil
}

func lines(out string) []string {
	var result []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}
