package tui

import (
	"io"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/tui/theme"
)

type confirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
}

func defaultConfirmKeys() confirmKeys {
	return confirmKeys{
		Yes:    key.NewBinding(key.WithKeys("y", "Y")),
		No:     key.NewBinding(key.WithKeys("n", "N", "esc", "q", "ctrl+c")),
		Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab", "shift+tab")),
		Submit: key.NewBinding(key.WithKeys("enter", "space")),
	}
}

// ConfirmModel asks a yes/no question. No is focused initially so that an
// accidental enter declines.
type ConfirmModel struct {
	question string
	yes      bool
	answered bool
	result   bool
	width    int
	keys     confirmKeys
}

// NewConfirmModel creates a ConfirmModel for question.
func NewConfirmModel(question string) *ConfirmModel {
	return &ConfirmModel{question: question, keys: defaultConfirmKeys()}
}

// Init implements tea.Model.
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m.answer(true)
		case key.Matches(msg, m.keys.No):
			return m.answer(false)
		case key.Matches(msg, m.keys.Toggle):
			m.yes = !m.yes
		case key.Matches(msg, m.keys.Submit):
			return m.answer(m.yes)
		}
	}
	return m, nil
}

func (m *ConfirmModel) answer(yes bool) (tea.Model, tea.Cmd) {
	m.answered = true
	m.result = yes
	return m, tea.Quit
}

// Confirmed reports whether the question was answered with yes.
func (m *ConfirmModel) Confirmed() bool {
	return m.answered && m.result
}

// Render returns the dialog as a string.
func (m *ConfirmModel) Render() string {
	s := theme.Current().S()

	yes, no := s.Button, s.ButtonActive
	if m.yes {
		yes, no = s.ButtonActive, s.Button
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No"))

	if m.answered {
		answer := "no"
		if m.result {
			answer = "yes"
		}
		return s.Text.Render(m.question) + " " + s.Muted.Render(answer)
	}
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		s.Title.Render(m.question),
		"",
		buttons,
		"",
		s.Muted.Render("y/n to answer, ←/→ to switch, enter to select"),
	)
	return s.Dialog.Render(content)
}

// View implements tea.Model.
func (m *ConfirmModel) View() tea.View {
	var view tea.View

	content := m.Render()
	width := lipgloss.Width(content)
	if m.width > width {
		width = m.width
	}
	height := lipgloss.Height(content)

	canvas := uv.NewScreenBuffer(width, height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: width, Y: height},
	})
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// Confirmer asks questions with a ConfirmModel. It satisfies
// workflow.Confirmer.
type Confirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements workflow.Confirmer. A program error declines.
func (c *Confirmer) Confirm(question string) bool {
	m := NewConfirmModel(question)

	var opts []tea.ProgramOption
	if c.In != nil {
		opts = append(opts, tea.WithInput(c.In))
	}
	if c.Out != nil {
		opts = append(opts, tea.WithOutput(c.Out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		logger.Warn("confirmation prompt failed: %v", err)
		return false
	}
	if fm, ok := final.(*ConfirmModel); ok {
		return fm.Confirmed()
	}
	return false
}
