package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestHasWildcard(t *testing.T) {
	assert.True(t, HasWildcard("dist/*.whl"))
	assert.True(t, HasWildcard("**/__pycache__"))
	assert.True(t, HasWildcard("file?.txt"))
	assert.True(t, HasWildcard("[ab].txt"))
	assert.False(t, HasWildcard("build"))
}

func TestClean(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build", "lib", "mod.py"), "x")
	writeFile(t, filepath.Join(root, ".coverage"), "x")
	writeFile(t, filepath.Join(root, "pkg", "__pycache__", "a.pyc"), "x")
	writeFile(t, filepath.Join(root, "pkg", "sub", "__pycache__", "b.pyc"), "x")
	writeFile(t, filepath.Join(root, "dist", "pkg-0.1.0.tar.gz"), "x")
	writeFile(t, filepath.Join(root, "dist", "keep.txt"), "x")
	writeFile(t, filepath.Join(root, "pkg", "mod.py"), "x")

	err := Clean(
		filepath.Join(root, "build"),
		filepath.Join(root, ".coverage"),
		filepath.Join(root, "**", "__pycache__"),
		filepath.Join(root, "dist", "*.tar.gz"),
		filepath.Join(root, "does-not-exist"),
		filepath.Join(root, "nothing-*"),
	)
	require.NoError(t, err)

	assert.False(t, exists(filepath.Join(root, "build")))
	assert.False(t, exists(filepath.Join(root, ".coverage")))
	assert.False(t, exists(filepath.Join(root, "pkg", "__pycache__")))
	assert.False(t, exists(filepath.Join(root, "pkg", "sub", "__pycache__")))
	assert.False(t, exists(filepath.Join(root, "dist", "pkg-0.1.0.tar.gz")))
	assert.True(t, exists(filepath.Join(root, "dist", "keep.txt")))
	assert.True(t, exists(filepath.Join(root, "pkg", "mod.py")))
}

func TestCleanIn(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj[1]")
	writeFile(t, filepath.Join(root, "pkg", "__pycache__", "a.pyc"), "x")
	writeFile(t, filepath.Join(root, "pkg", "mod.pyc"), "x")
	writeFile(t, filepath.Join(root, ".coverage"), "x")
	writeFile(t, filepath.Join(root, "pkg", "mod.py"), "x")

	require.NoError(t, CleanIn(root, "**/__pycache__", "**/*.pyc", ".coverage", "missing-*"))

	assert.False(t, exists(filepath.Join(root, "pkg", "__pycache__")))
	assert.False(t, exists(filepath.Join(root, "pkg", "mod.pyc")))
	assert.False(t, exists(filepath.Join(root, ".coverage")))
	assert.True(t, exists(filepath.Join(root, "pkg", "mod.py")))
}

func TestClean_NoArgs(t *testing.T) {
	assert.NoError(t, Clean())
}

func TestCopyDir(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "htmlcov")
	writeFile(t, filepath.Join(src, "index.html"), "<html></html>")
	writeFile(t, filepath.Join(src, "static", "style.css"), "body{}")
	require.NoError(t, os.Chmod(filepath.Join(src, "index.html"), 0600))

	parent := filepath.Join(root, "site")
	require.NoError(t, os.MkdirAll(parent, 0755))

	copied, err := CopyDir(src, parent)
	require.NoError(t, err)
	assert.True(t, copied)

	data, err := os.ReadFile(filepath.Join(parent, "htmlcov", "static", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))

	info, err := os.Stat(filepath.Join(parent, "htmlcov", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Second call is a no-op even if the source changed.
	writeFile(t, filepath.Join(src, "new.html"), "new")
	copied, err = CopyDir(src, parent)
	require.NoError(t, err)
	assert.False(t, copied)
	assert.False(t, exists(filepath.Join(parent, "htmlcov", "new.html")))
}

func TestCopyDir_NoOps(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, "x")
	dir := filepath.Join(root, "dir")
	require.NoError(t, os.MkdirAll(dir, 0755))

	tests := []struct {
		name   string
		src    string
		parent string
	}{
		{name: "source missing", src: filepath.Join(root, "missing"), parent: dir},
		{name: "source is a file", src: file, parent: dir},
		{name: "parent missing", src: dir, parent: filepath.Join(root, "nope")},
		{name: "parent is a file", src: dir, parent: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copied, err := CopyDir(tt.src, tt.parent)
			require.NoError(t, err)
			assert.False(t, copied)
		})
	}
}
