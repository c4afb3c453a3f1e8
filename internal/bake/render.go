package bake

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/snek/internal/logger"
)

// ErrOutputExists is returned when the rendered project directory is
// already present and overwriting was not requested.
var ErrOutputExists = errors.New("output directory already exists")

// ProjectRoot returns the single top-level templated directory of fsys.
func ProjectRoot(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	var roots []string
	for _, e := range entries {
		if e.IsDir() && strings.Contains(e.Name(), "{{") {
			roots = append(roots, e.Name())
		}
	}
	if len(roots) != 1 {
		return "", fmt.Errorf("template must contain exactly one templated top-level directory, found %d", len(roots))
	}
	return roots[0], nil
}

type renderer struct {
	fsys  fs.FS
	def   *Definition
	ctx   Context
	funcs template.FuncMap
}

func (r *renderer) name(elem string) (string, error) {
	out, err := renderString(elem, elem, r.ctx, r.funcs)
	if err != nil {
		return "", fmt.Errorf("rendering name %q: %w", elem, err)
	}
	if out == "" || strings.ContainsAny(out, `/\`) || out == "." || out == ".." {
		return "", fmt.Errorf("name %q renders to invalid path element %q", elem, out)
	}
	return out, nil
}

// outPath renders every element of a slash separated template path.
func (r *renderer) outPath(p string) (string, error) {
	elems := strings.Split(p, "/")
	for i, e := range elems {
		out, err := r.name(e)
		if err != nil {
			return "", err
		}
		elems[i] = out
	}
	return path.Join(elems...), nil
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// render writes the project below output and returns its directory.
// created reports whether the directory did not exist before; it is set
// even when rendering fails partway so the caller can remove the remains.
func (r *renderer) render(output string, overwrite bool) (dest string, created bool, err error) {
	root, err := ProjectRoot(r.fsys)
	if err != nil {
		return "", false, err
	}
	rootName, err := r.name(root)
	if err != nil {
		return "", false, err
	}
	dest = filepath.Join(output, rootName)
	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return "", false, fmt.Errorf("%w: %s", ErrOutputExists, dest)
		}
		logger.Debug("overwriting files in %s", dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	} else {
		created = true
	}

	err = fs.WalkDir(r.fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel == "" {
			return os.MkdirAll(dest, 0755)
		}
		out, err := r.outPath(rel)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(out))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return r.file(p, out, target)
	})
	return dest, created, err
}

func (r *renderer) file(src, out, target string) error {
	data, err := fs.ReadFile(r.fsys, src)
	if err != nil {
		return err
	}
	if !matchAny(r.def.CopyWithoutRender, out) {
		body, err := renderString(out, string(data), r.ctx, r.funcs)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", out, err)
		}
		data = []byte(body)
	} else {
		logger.Debug("copying %s without rendering", out)
	}

	mode := os.FileMode(0644)
	if matchAny(r.def.Executable, out) {
		mode = 0755
	}
	if err := os.WriteFile(target, data, mode); err != nil {
		return err
	}
	// WriteFile keeps the mode of a file it overwrites.
	return os.Chmod(target, mode)
}
