package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/atelier/internal/tui/styles"
)

// ConfirmModal asks a yes/no question
type ConfirmModal struct {
	visible bool
	title   string
	detail  string
}

// Show displays the modal
func (m *ConfirmModal) Show(title, detail string) {
	m.visible = true
	m.title = title
	m.detail = detail
}

// Hide dismisses the modal
func (m *ConfirmModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// Update handles a key press. answered is true once the user chose, and
// yes carries the choice. The modal hides itself on an answer.
func (m *ConfirmModal) Update(msg tea.Msg) (answered, yes bool) {
	if !m.visible {
		return false, false
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, false
	}
	switch {
	case key.Matches(keyMsg, ConfirmKeys.Yes):
		m.Hide()
		return true, true
	case key.Matches(keyMsg, ConfirmKeys.No):
		m.Hide()
		return true, false
	}
	return false, false
}

// View renders the modal
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 40

	lines := []string{styles.ModalTitleStyle.Width(modalWidth).Render(m.title)}
	if m.detail != "" {
		lines = append(lines, styles.SubtitleStyle.Width(modalWidth).Render(m.detail))
	}
	lines = append(lines, "",
		styles.HelpKeyStyle.Render("y")+styles.HelpDescStyle.Render(" remove   ")+
			styles.HelpKeyStyle.Render("n")+styles.HelpDescStyle.Render(" keep"))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
