package tasks

import (
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PythonPattern matches the sources that style, format and test depend on.
const PythonPattern = "**/*.py"

// skipDirs are never searched for Python sources.
var skipDirs = map[string]bool{
	".venv": true,
	".tox":  true,
	".git":  true,
	"build": true,
	"dist":  true,
}

// PythonFiles returns the Python files under dir as slash separated paths
// relative to dir. Unrendered template paths (containing "{") are skipped.
func PythonFiles(dir string) ([]string, error) {
	fsys := os.DirFS(dir)
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (skipDirs[d.Name()] || strings.Contains(d.Name(), "{")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.Contains(path, "{") {
			return nil
		}
		if ok, _ := doublestar.Match(PythonPattern, path); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
