package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles.
type Styles struct {
	Title    lipgloss.Style
	Task     lipgloss.Style
	Muted    lipgloss.Style
	Text     lipgloss.Style
	Running  lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Failure  lipgloss.Style
	ErrorOut lipgloss.Style

	// Confirmation dialog
	Dialog       lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	// Unified diff lines used when syntax highlighting is unavailable
	DiffInsert lipgloss.Style
	DiffDelete lipgloss.Style
	DiffHunk   lipgloss.Style
}
