// Package fsops holds the filesystem helpers used by task actions and by
// template pruning.
package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/magefile/mage/sh"
	"github.com/mark3labs/snek/internal/logger"
)

// HasWildcard reports whether path contains shell-style glob characters.
func HasWildcard(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// Clean removes every path given. Paths containing wildcards are expanded
// against the filesystem (** matches across directories). Directories are
// removed recursively and missing paths are skipped. Any other error aborts.
func Clean(paths ...string) error {
	for _, p := range paths {
		resolved := []string{p}
		if HasWildcard(p) {
			matches, err := doublestar.FilepathGlob(p)
			if err != nil {
				return fmt.Errorf("expanding %s: %w", p, err)
			}
			resolved = matches
		}

		for _, target := range resolved {
			if err := remove(target); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanIn removes paths relative to dir. Wildcards are expanded inside dir
// only, so glob characters in dir itself are taken literally. Absolute paths
// are handled as by Clean.
func CleanIn(dir string, paths ...string) error {
	if dir == "" {
		dir = "."
	}
	fsys := os.DirFS(dir)
	for _, p := range paths {
		if filepath.IsAbs(p) {
			if err := Clean(p); err != nil {
				return err
			}
			continue
		}
		rel := filepath.ToSlash(filepath.Clean(p))
		resolved := []string{rel}
		if HasWildcard(rel) {
			matches, err := doublestar.Glob(fsys, rel)
			if err != nil {
				return fmt.Errorf("expanding %s: %w", p, err)
			}
			resolved = matches
		}

		for _, target := range resolved {
			if err := remove(filepath.Join(dir, filepath.FromSlash(target))); err != nil {
				return err
			}
		}
	}
	return nil
}

func remove(target string) error {
	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspecting %s: %w", target, err)
	}

	if info.IsDir() {
		logger.Debug("Removing directory %s", target)
		if err := sh.Rm(target); err != nil {
			return fmt.Errorf("removing %s: %w", target, err)
		}
		return nil
	}

	logger.Debug("Removing file %s", target)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", target, err)
	}
	return nil
}

// CopyDir copies the directory src into targetParent, producing
// targetParent/basename(src). Nothing happens unless src and targetParent are
// both directories and the destination does not exist yet, so repeated calls
// are harmless. It reports whether a copy was made.
func CopyDir(src, targetParent string) (bool, error) {
	if !isDir(src) || !isDir(targetParent) {
		return false, nil
	}
	dest := filepath.Join(targetParent, filepath.Base(filepath.Clean(src)))
	if _, err := os.Lstat(dest); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("inspecting %s: %w", dest, err)
	}

	logger.Debug("Copying %s to %s", src, dest)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(out, info.Mode().Perm()|0700)
		}
		if err := sh.Copy(out, path); err != nil {
			return err
		}
		return os.Chmod(out, info.Mode().Perm())
	})
	if err != nil {
		return false, fmt.Errorf("copying %s to %s: %w", src, dest, err)
	}
	return true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
