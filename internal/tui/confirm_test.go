package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m *ConfirmModel, msg tea.KeyPressMsg) tea.Cmd {
	t.Helper()
	updated, cmd := m.Update(msg)
	require.Same(t, m, updated)
	return cmd
}

func TestConfirmModel_Keys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyPressMsg
		want bool
	}{
		{name: "y", keys: []tea.KeyPressMsg{{Code: 'y', Text: "y"}}, want: true},
		{name: "n", keys: []tea.KeyPressMsg{{Code: 'n', Text: "n"}}, want: false},
		{name: "enter defaults to no", keys: []tea.KeyPressMsg{{Code: tea.KeyEnter}}, want: false},
		{name: "toggle then enter", keys: []tea.KeyPressMsg{{Code: tea.KeyRight}, {Code: tea.KeyEnter}}, want: true},
		{name: "toggle twice", keys: []tea.KeyPressMsg{{Code: tea.KeyTab}, {Code: tea.KeyTab}, {Code: tea.KeyEnter}}, want: false},
		{name: "escape", keys: []tea.KeyPressMsg{{Code: tea.KeyRight}, {Code: tea.KeyEscape}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmModel("Release?")
			var cmd tea.Cmd
			for _, k := range tt.keys {
				cmd = press(t, m, k)
			}
			require.NotNil(t, cmd, "the last key should quit")
			_, quit := cmd().(tea.QuitMsg)
			assert.True(t, quit)
			assert.Equal(t, tt.want, m.Confirmed())
		})
	}
}

func TestConfirmModel_IgnoresOtherKeys(t *testing.T) {
	m := NewConfirmModel("Release?")
	cmd := press(t, m, tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.Nil(t, cmd)
	assert.False(t, m.Confirmed())
}

func TestConfirmModel_Render(t *testing.T) {
	m := NewConfirmModel("Release a new patch version from main?")
	out := m.Render()
	assert.Contains(t, out, "Release a new patch version from main?")
	assert.Contains(t, out, "Yes")
	assert.Contains(t, out, "No")

	press(t, m, tea.KeyPressMsg{Code: 'y', Text: "y"})
	assert.Contains(t, m.Render(), "yes")
	assert.NotContains(t, m.Render(), "enter to select")
}
