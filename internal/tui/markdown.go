package tui

import (
	"strings"

	"charm.land/glamour/v2"
	"github.com/mark3labs/snek/internal/tui/theme"
)

// maxMarkdownWidth caps word wrapping for readability.
const maxMarkdownWidth = 120

// RenderMarkdown renders markdown for the terminal. With color false the
// output carries no escape sequences. Rendering errors fall back to the
// source text.
func RenderMarkdown(content string, width int, color bool) string {
	if width <= 0 || width > maxMarkdownWidth {
		width = maxMarkdownWidth
	}

	style := "notty"
	if color {
		style = "light"
		if theme.Current().IsDark {
			style = "dark"
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	// glamour pads the last block with spaces and blank lines.
	return strings.TrimRight(rendered, " \n")
}
