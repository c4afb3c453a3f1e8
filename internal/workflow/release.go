package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/snek/internal/git"
	"github.com/mark3labs/snek/internal/logger"
)

// Parts are the version components a release may bump.
var Parts = []string{"major", "minor", "patch"}

// ValidPart reports whether part is one of Parts.
func ValidPart(part string) bool {
	for _, p := range Parts {
		if p == part {
			return true
		}
	}
	return false
}

// ReleaseResult describes a finished release run.
type ReleaseResult struct {
	Status  Status
	Part    string
	Tag     string
	Commits []string
}

// Releaser tags a new version on the main branch and merges it back into
// the branch the release was started from.
type Releaser struct {
	Repo       *git.Repo
	Bumper     Bumper
	Confirmer  Confirmer
	MainBranch string
	Remote     string

	// Out receives the pending commits and the dry-run preview.
	Out io.Writer
}

// WithOutput returns a copy of r that prints to w.
func (r *Releaser) WithOutput(w io.Writer) *Releaser {
	c := *r
	c.Out = w
	return &c
}

// Pending returns the last tag and the commits made since it on the
// checked-out branch. An empty tag means nothing has been released yet.
func (r *Releaser) Pending(ctx context.Context) (string, []string, error) {
	tag, err := r.Repo.LastTag(ctx)
	if err != nil {
		return "", nil, err
	}
	commits, err := r.Repo.CommitsSince(ctx, tag)
	if err != nil {
		return "", nil, err
	}
	return tag, commits, nil
}

// Release bumps part of the version on the main branch, pushes the branch
// and its tags, then merges main back into the original branch and pushes
// that too. Nothing is bumped or pushed unless there are unreleased commits
// and the Confirmer agrees.
func (r *Releaser) Release(ctx context.Context, part string) (result *ReleaseResult, err error) {
	if !ValidPart(part) {
		return nil, fail(ReasonInvalidPart, "invalid version part %q, expected one of %s", part, strings.Join(Parts, ", "))
	}

	original, err := r.Repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.requireClean(ctx, original); err != nil {
		return nil, err
	}

	if original != r.MainBranch {
		if err := r.Repo.Checkout(ctx, r.MainBranch); err != nil {
			return nil, err
		}
		defer func() {
			if rerr := r.restore(ctx, original); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}()
		if err := r.requireClean(ctx, r.MainBranch); err != nil {
			return nil, err
		}
	}

	tag, commits, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		if tag == "" {
			return nil, fail(ReasonNothingToRelease, "nothing to release: %s has no commits", r.MainBranch)
		}
		return nil, fail(ReasonNothingToRelease, "nothing to release: no commits since %s", tag)
	}
	result = &ReleaseResult{Part: part, Commits: commits}

	if tag == "" {
		r.printf("Unreleased commits:\n")
	} else {
		r.printf("Commits since %s:\n", tag)
	}
	for _, c := range commits {
		r.printf("  %s\n", c)
	}

	preview, err := r.Bumper.Bump(ctx, part, true)
	if err != nil {
		return nil, err
	}
	if preview != "" {
		r.printf("%s\n", preview)
	}

	if !r.confirm(fmt.Sprintf("Release a new %s version from %s?", part, r.MainBranch)) {
		result.Status = StatusDeclined
		return result, fail(ReasonDeclined, "release declined")
	}

	if _, err := r.Bumper.Bump(ctx, part, false); err != nil {
		return nil, err
	}
	if err := r.Repo.Push(ctx, r.Remote, r.MainBranch); err != nil {
		return nil, err
	}
	if err := r.Repo.PushTags(ctx, r.Remote); err != nil {
		return nil, err
	}
	if result.Tag, err = r.Repo.LastTag(ctx); err != nil {
		return nil, err
	}
	logger.Info("released %s", result.Tag)

	if original != r.MainBranch {
		if err := r.Repo.Checkout(ctx, original); err != nil {
			return nil, err
		}
		if err := r.Repo.MergeNoFF(ctx, r.MainBranch); err != nil {
			return nil, err
		}
		if err := r.Repo.Push(ctx, r.Remote, original); err != nil {
			return nil, err
		}
	}

	result.Status = StatusReleased
	return result, nil
}

func (r *Releaser) requireClean(ctx context.Context, branch string) error {
	changes, err := r.Repo.UnstagedChanges(ctx)
	if err != nil {
		return err
	}
	if changes != "" {
		return fail(ReasonDirtyTree, "branch %s has unstaged changes:\n%s", branch, changes)
	}
	return nil
}

// restore checks out original unless it is already checked out.
func (r *Releaser) restore(ctx context.Context, original string) error {
	current, err := r.Repo.CurrentBranch(ctx)
	if err == nil && current == original {
		return nil
	}
	if err := r.Repo.Checkout(ctx, original); err != nil {
		return fmt.Errorf("restoring branch %s: %w", original, err)
	}
	return nil
}

func (r *Releaser) confirm(question string) bool {
	if r.Confirmer == nil {
		return false
	}
	return r.Confirmer.Confirm(question)
}

func (r *Releaser) printf(format string, args ...any) {
	if r.Out != nil {
		fmt.Fprintf(r.Out, format, args...)
	}
}
