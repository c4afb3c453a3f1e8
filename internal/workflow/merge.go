package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/snek/internal/git"
	"github.com/mark3labs/snek/internal/logger"
)

// Status is the outcome of a workflow that did not fail.
type Status string

const (
	StatusMerged   Status = "merged"
	StatusUpToDate Status = "up-to-date"
	StatusReleased Status = "released"
	StatusDeclined Status = "declined"
)

// MergeResult describes a merge of From into To.
type MergeResult struct {
	Status Status
	From   string
	To     string
}

// Merger merges the checked-out branch into a target branch and pushes it.
type Merger struct {
	Repo   *git.Repo
	Remote string
}

// NewMerger creates a Merger pushing to remote.
func NewMerger(repo *git.Repo, remote string) *Merger {
	return &Merger{Repo: repo, Remote: remote}
}

// Merge merges the current branch into target with a merge commit, pushes
// target and checks the current branch out again. When target already has
// the same tracked content, or already contains the current branch's
// history, nothing is changed and the result is up to date.
func (m *Merger) Merge(ctx context.Context, target string) (result *MergeResult, err error) {
	original, err := m.Repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.guard(ctx, original, target); err != nil {
		return nil, err
	}

	result = &MergeResult{From: original, To: target}
	same, err := m.contains(ctx, target, original)
	if err != nil {
		return nil, err
	}
	if same {
		logger.Info("%s already contains %s", target, original)
		result.Status = StatusUpToDate
		return result, nil
	}

	if err := m.Repo.Checkout(ctx, target); err != nil {
		return nil, err
	}
	defer func() {
		if rerr := m.Repo.Checkout(ctx, original); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restoring branch %s: %w", original, rerr))
		}
	}()

	if err := m.Repo.MergeNoFF(ctx, original); err != nil {
		return nil, err
	}
	if err := m.Repo.Push(ctx, m.Remote, target); err != nil {
		return nil, err
	}

	logger.Info("merged %s into %s", original, target)
	result.Status = StatusMerged
	return result, nil
}

func (m *Merger) guard(ctx context.Context, original, target string) error {
	exists, err := m.Repo.HasBranch(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		return fail(ReasonUnknownBranch, "branch %q does not exist", target)
	}
	if target == original {
		return fail(ReasonSameBranch, "cannot merge %s into itself", target)
	}
	changes, err := m.Repo.UnstagedChanges(ctx)
	if err != nil {
		return err
	}
	if changes != "" {
		return fail(ReasonDirtyTree, "branch %s has unstaged changes:\n%s", original, changes)
	}
	return nil
}

// UpToDate reports whether target already has the tracked content or the
// history of the current branch. The merge task uses it as its freshness predicate.
func (m *Merger) UpToDate(ctx context.Context, target string) (bool, error) {
	current, err := m.Repo.CurrentBranch(ctx)
	if err != nil {
		return false, err
	}
	if current == target {
		return false, nil
	}
	exists, err := m.Repo.HasBranch(ctx, target)
	if err != nil || !exists {
		return false, err
	}
	return m.contains(ctx, target, current)
}

// contains reports whether merging branch into target would change nothing.
func (m *Merger) contains(ctx context.Context, target, branch string) (bool, error) {
	same, err := m.Repo.DiffEmpty(ctx, target, branch)
	if err != nil || same {
		return same, err
	}
	return m.Repo.IsAncestor(ctx, branch, target)
}
