package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg routes key presses. ctrl+c always quits; the picker owns the
// keyboard while open; the linking view accepts nothing else.
func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if keyMsg.String() == "ctrl+c" {
		return m.teardown("ctrl+c")
	}
	if m.quitting || m.session.Phase().Linking() {
		return nil
	}
	if m.picker != nil {
		return m.handlePickerKey(keyMsg)
	}
	return m.handleFormKey(keyMsg)
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return m.form.next()
	case "shift+tab", "up":
		return m.form.prev()
	case "enter":
		if m.form.focus == fieldAttach {
			return m.openPicker()
		}
		return m.submit()
	case "ctrl+o":
		return m.openPicker()
	case "ctrl+x":
		m.form.detach()
		return nil
	}
	return m.form.update(msg)
}
