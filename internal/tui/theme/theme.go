package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for terminal output.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Background hierarchy (dark→light)
	BgBase     string
	BgSurface0 string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Diff colors
	DiffInsert string
	DiffDelete string
	DiffHunk   string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	currentMu sync.RWMutex
	current   = NewCatppuccinMocha()
)

// Current returns the active theme.
func Current() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent replaces the active theme.
func SetCurrent(t *Theme) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = t
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return &Styles{
		Title:    fg(t.Primary).Bold(true),
		Task:     fg(t.FgBright).Bold(true),
		Muted:    fg(t.FgMuted),
		Text:     fg(t.FgBase),
		Running:  fg(t.Secondary),
		Success:  fg(t.Success),
		Warning:  fg(t.Warning),
		Failure:  fg(t.Error).Bold(true),
		ErrorOut: fg(t.FgSubtle).PaddingLeft(3),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Primary)).
			Padding(1, 3),
		Button: fg(t.FgBase).
			Background(lipgloss.Color(t.BgSurface0)).
			Padding(0, 2),
		ButtonActive: fg(t.BgBase).
			Background(lipgloss.Color(t.Primary)).
			Bold(true).
			Padding(0, 2),

		DiffInsert: fg(t.DiffInsert),
		DiffDelete: fg(t.DiffDelete),
		DiffHunk:   fg(t.DiffHunk),
	}
}
