package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Changelog\n\n- fix the thing\n", 80, false)
	assert.Contains(t, out, "Changelog")
	assert.Contains(t, out, "fix the thing")
	assert.NotContains(t, out, "\x1b[")
	assert.Equal(t, strings.TrimRight(out, " \n"), out, "no trailing padding or blank lines")
}

func TestHighlightDiff(t *testing.T) {
	diff := "--- a/README.md\n+++ b/README.md\n@@ -1 +1 @@\n-# Old\n+# New\n"

	assert.Equal(t, diff, HighlightDiff(diff, colorprofile.Ascii))
	assert.Equal(t, diff, HighlightDiff(diff, colorprofile.NoTTY))

	colored := HighlightDiff(diff, colorprofile.TrueColor)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "# New")
}

func TestStyleDiffLines(t *testing.T) {
	out := styleDiffLines("@@ -1 +1 @@\n-a\n+b\n c")
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, " c", lines[3])
	assert.Contains(t, lines[1], "-a")
}

func TestHighlightFile(t *testing.T) {
	src := "def main():\n    return 1\n"
	assert.Equal(t, src, HighlightFile(src, "main.py", colorprofile.Ascii))
	assert.Contains(t, HighlightFile(src, "main.py", colorprofile.ANSI256), "\x1b[")
}
