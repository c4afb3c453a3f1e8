package bake

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/aymanbagabas/go-udiff"
)

// FileDiff is the unified diff of one generated file against an existing
// project.
type FileDiff struct {
	Path string
	// New is set when the existing project has no such file.
	New  bool
	Diff string
}

// Preview bakes opts into a temporary directory and compares every
// generated file with the same path under existing. Files that are equal
// are left out; files only present in existing are not reported. Hooks do
// not run.
func Preview(ctx context.Context, opts Options, existing string) ([]FileDiff, error) {
	tmp, err := os.MkdirTemp("", "snek-preview-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	opts.Output = tmp
	opts.Overwrite = false
	opts.SkipHooks = true
	res, err := Bake(ctx, opts)
	if err != nil {
		return nil, err
	}

	var diffs []FileDiff
	err = filepath.WalkDir(res.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(res.Dir, path)
		if err != nil {
			return err
		}
		generated, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		label := filepath.ToSlash(rel)
		current, err := os.ReadFile(filepath.Join(existing, rel))
		switch {
		case errors.Is(err, os.ErrNotExist):
			diffs = append(diffs, FileDiff{
				Path: label,
				New:  true,
				Diff: udiff.Unified("/dev/null", "b/"+label, "", string(generated)),
			})
		case err != nil:
			return err
		case string(current) != string(generated):
			diffs = append(diffs, FileDiff{
				Path: label,
				Diff: udiff.Unified("a/"+label, "b/"+label, string(current), string(generated)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs, nil
}
