package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the global config at an empty temp dir and clears SNEK_ env vars.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	for _, key := range envKeys {
		t.Setenv("SNEK_"+strings.ToUpper(key), "")
		_ = os.Unsetenv("SNEK_" + strings.ToUpper(key))
	}
	return t.TempDir()
}

func TestGlobalPath(t *testing.T) {
	tests := []struct {
		name      string
		xdgConfig string
	}{
		{name: "with XDG_CONFIG_HOME set", xdgConfig: "/custom/config"},
		{name: "without XDG_CONFIG_HOME", xdgConfig: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)

			got := GlobalPath()
			if tt.xdgConfig != "" {
				assert.Equal(t, "/custom/config/snek/snek.yml", got)
				return
			}
			assert.True(t, filepath.IsAbs(got), "GlobalPath() should be absolute, got %v", got)
			assert.Equal(t, FileName, filepath.Base(got))
		})
	}
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, filepath.Join("some", "project", "snek.yml"), ProjectPath(filepath.Join("some", "project")))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.MainBranch)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "poetry run", cfg.Wrapper)
	assert.Equal(t, 79, cfg.LineLength)
	assert.Equal(t, 0, cfg.MinCoverage)
	assert.Equal(t, "poetry run bump2version", cfg.BumpCommand)
	assert.Equal(t, ".snek", cfg.StateDir)
	assert.Empty(t, cfg.DocsGenerator)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(GlobalPath()), 0755))
	require.NoError(t, os.WriteFile(GlobalPath(), []byte("main_branch: main\nline_length: 88\ndefault_context:\n  full_name: Jane Doe\n"), 0644))
	require.NoError(t, os.WriteFile(ProjectPath(dir), []byte("line_length: 100\nmin_coverage: 90\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.MainBranch, "global value survives when project does not set it")
	assert.Equal(t, 100, cfg.LineLength, "project overrides global")
	assert.Equal(t, 90, cfg.MinCoverage)
	assert.Equal(t, "Jane Doe", cfg.DefaultContext["full_name"])

	t.Setenv("SNEK_MIN_COVERAGE", "75")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.MinCoverage, "env overrides project")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "coverage above 100", content: "min_coverage: 120\n", wantErr: "min_coverage"},
		{name: "unknown docs generator", content: "docs_generator: hugo\n", wantErr: "docs_generator"},
		{name: "zero line length", content: "line_length: 0\n", wantErr: "line_length"},
		{name: "broken yaml", content: "main_branch: [\n", wantErr: "merging project config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			require.NoError(t, os.WriteFile(ProjectPath(dir), []byte(tt.content), 0644))

			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExists(t *testing.T) {
	dir := isolate(t)
	assert.False(t, Exists(dir))

	require.NoError(t, os.WriteFile(ProjectPath(dir), []byte("remote: upstream\n"), 0644))
	assert.True(t, Exists(dir))
}

func TestWriteProjectRoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg := Defaults()
	cfg.MainBranch = "main"
	cfg.MinCoverage = 85
	cfg.PythonVersions = []string{"py310", "py311"}

	require.NoError(t, WriteProject(dir, cfg))

	data, err := os.ReadFile(ProjectPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "main_branch: main")
	assert.Contains(t, string(data), "min_coverage: 85")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "main", loaded.MainBranch)
	assert.Equal(t, 85, loaded.MinCoverage)
	assert.Equal(t, []string{"py310", "py311"}, loaded.PythonVersions)
}

func TestWriteGlobal(t *testing.T) {
	isolate(t)

	cfg := Defaults()
	cfg.Remote = "upstream"
	require.NoError(t, WriteGlobal(cfg))

	data, err := os.ReadFile(GlobalPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "remote: upstream")
}
