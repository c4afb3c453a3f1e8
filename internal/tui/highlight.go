package tui

import (
	"bytes"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/snek/internal/tui/theme"
)

// HighlightDiff colors a unified diff for a terminal with profile p. Ascii
// and NoTTY profiles get the diff back unchanged.
func HighlightDiff(diff string, p colorprofile.Profile) string {
	if plain(p) || diff == "" {
		return diff
	}
	if out, ok := highlight(diff, "diff", p); ok {
		return out
	}
	return styleDiffLines(diff)
}

// HighlightFile colors source according to the language implied by
// fileName, falling back to content analysis.
func HighlightFile(source, fileName string, p colorprofile.Profile) string {
	if plain(p) || source == "" {
		return source
	}
	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		return source
	}
	if out, ok := highlightWith(lexer, source, p); ok {
		return out
	}
	return source
}

func plain(p colorprofile.Profile) bool {
	return p == colorprofile.Ascii || p == colorprofile.NoTTY
}

func highlight(source, language string, p colorprofile.Profile) (string, bool) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}
	return highlightWith(lexer, source, p)
}

func highlightWith(lexer chroma.Lexer, source string, p colorprofile.Profile) (string, bool) {
	formatter := formatters.Get(formatterFor(p))
	if formatter == nil {
		return "", false
	}

	name := "monokai"
	if !theme.Current().IsDark {
		name = "monokailight"
	}
	style := styles.Get(name)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}

func formatterFor(p colorprofile.Profile) string {
	switch p {
	case colorprofile.TrueColor:
		return "terminal16m"
	case colorprofile.ANSI256:
		return "terminal256"
	default:
		return "terminal16"
	}
}

// styleDiffLines is the lipgloss rendition used when chroma has no diff
// lexer.
func styleDiffLines(diff string) string {
	s := theme.Current().S()
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = s.Title.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = s.DiffHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.DiffInsert.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.DiffDelete.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
