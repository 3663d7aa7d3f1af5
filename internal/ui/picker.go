package ui

import (
	"fmt"
	"path/filepath"

	"github.com/atomicstack/walink/internal/format/table"
	"github.com/atomicstack/walink/internal/logging/events"
	"github.com/atomicstack/walink/internal/picker"
	uistate "github.com/atomicstack/walink/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// pickerView is the attachment picker overlay for one directory.
type pickerView struct {
	dir     string
	level   *uistate.Level
	entries map[string]picker.Entry
}

type pickerLoadedMsg struct {
	dir     string
	focus   string // path to put the cursor on, if listed
	entries []picker.Entry
	err     error
}

func loadPickerDir(dir, focus string) tea.Cmd {
	return func() tea.Msg {
		entries, err := picker.List(dir)
		return pickerLoadedMsg{dir: dir, focus: focus, entries: entries, err: err}
	}
}

func (m *Model) openPicker() tea.Cmd {
	if m.picker != nil {
		return nil
	}
	dir := m.pickerDir
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m.picker = &pickerView{dir: dir, level: uistate.NewLevel(dir, dir, nil)}
	return loadPickerDir(dir, "")
}

func (m *Model) handlePickerLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(pickerLoadedMsg)
	if !ok || m.picker == nil {
		return nil
	}
	if loaded.err != nil {
		events.Picker.Cancel(events.PickerReasonError)
		m.closePicker()
		m.setError(loaded.err.Error())
		return nil
	}
	items := make([]uistate.Item, 0, len(loaded.entries)+1)
	entries := make(map[string]picker.Entry, len(loaded.entries))
	if _, ok := picker.Parent(loaded.dir); ok {
		items = append(items, uistate.Item{ID: uistate.ParentID, Label: uistate.ParentID, Dir: true})
	}
	for _, entry := range loaded.entries {
		label := entry.Name
		if entry.Dir {
			label += string(filepath.Separator)
		}
		items = append(items, uistate.Item{ID: entry.Path, Label: label, Dir: entry.Dir})
		entries[entry.Path] = entry
	}
	m.picker.dir = loaded.dir
	m.picker.entries = entries
	m.picker.level = uistate.NewLevel(loaded.dir, loaded.dir, items)
	if idx := m.picker.level.IndexOf(loaded.focus); idx >= 0 {
		m.picker.level.Cursor = idx
	}
	m.picker.level.EnsureCursorVisible(m.pickerRows())
	m.pickerDir = loaded.dir
	events.Picker.Open(loaded.dir, len(loaded.entries))
	return nil
}

func (m *Model) closePicker() {
	m.picker = nil
}

// handlePickerKey owns every key while the picker is open.
func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	p := m.picker
	lvl := p.level
	rows := m.pickerRows()
	switch msg.String() {
	case "esc":
		if lvl.ClearFilter() {
			lvl.EnsureCursorVisible(rows)
			return nil
		}
		m.finishPicker(picker.Cancelled())
		return nil
	case "up", "ctrl+p":
		lvl.MoveCursor(-1)
	case "down", "ctrl+n":
		lvl.MoveCursor(1)
	case "pgup":
		lvl.MoveCursorPage(-1, rows)
	case "pgdown":
		lvl.MoveCursorPage(1, rows)
	case "home":
		lvl.MoveCursorHome()
	case "end":
		lvl.MoveCursorEnd()
	case "enter":
		return m.choosePickerItem()
	case "backspace", "ctrl+h":
		if lvl.DeleteFilterRuneBackward() {
			events.Picker.Filter(p.dir, lvl.Filter)
		}
	case "ctrl+w":
		if lvl.DeleteFilterWordBackward() {
			events.Picker.Filter(p.dir, lvl.Filter)
		}
	case "ctrl+u":
		lvl.ClearFilter()
	default:
		if msg.Type == tea.KeyRunes && !msg.Alt || msg.Type == tea.KeySpace {
			text := string(msg.Runes)
			if msg.Type == tea.KeySpace {
				text = " "
			}
			if lvl.InsertFilterText(text) {
				events.Picker.Filter(p.dir, lvl.Filter)
			}
		}
	}
	lvl.EnsureCursorVisible(rows)
	return nil
}

func (m *Model) choosePickerItem() tea.Cmd {
	p := m.picker
	item, ok := p.level.Current()
	if !ok {
		return nil
	}
	if item.ID == uistate.ParentID {
		parent, ok := picker.Parent(p.dir)
		if !ok {
			return nil
		}
		return loadPickerDir(parent, p.dir)
	}
	if item.Dir {
		return loadPickerDir(item.ID, "")
	}
	m.finishPicker(picker.Selected(item.ID))
	return nil
}

// finishPicker closes the overlay and applies its single result.
func (m *Model) finishPicker(result picker.Result) {
	m.closePicker()
	if result.Cancelled {
		events.Picker.Cancel(events.PickerReasonEscape)
		return
	}
	events.Picker.Select(result.Path)
	m.form.attach(result.Path)
}

// pickerRows is the number of list rows that fit under the picker header.
func (m *Model) pickerRows() int {
	if m.height <= 0 {
		return 0
	}
	used := 3
	if m.showFooter {
		used += 2
	}
	if rows := m.height - used; rows > 0 {
		return rows
	}
	return 1
}

func (m *Model) pickerLines() []styledLine {
	p := m.picker
	lines := []styledLine{{text: "Attach a file: " + p.level.Title, style: styles.PickerTitle}}
	lvl := p.level
	filter := "Filter: " + lvl.Filter
	lines = append(lines, styledLine{text: filter, style: styles.PickerFilter})
	if len(lvl.Items) == 0 {
		msg := "(no files)"
		if lvl.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", lvl.Filter)
		}
		return append(lines, styledLine{text: msg, style: styles.PickerEmpty})
	}
	visible := lvl.Visible(m.pickerRows())
	rows := make([][]string, len(visible))
	for i, item := range visible {
		rows[i] = m.pickerColumns(item)
	}
	formatted := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight})
	for i, item := range visible {
		style := styles.PickerItem
		if item.Dir {
			style = styles.PickerDir
		}
		prefix := "  "
		if lvl.ViewportOffset+i == lvl.Cursor {
			prefix = "▌ "
			style = styles.PickerSelectedItem
		}
		lines = append(lines, styledLine{text: prefix + formatted[i], style: style})
	}
	return lines
}

func (m *Model) pickerColumns(item uistate.Item) []string {
	entry, ok := m.picker.entries[item.ID]
	if !ok || entry.Dir {
		return []string{item.Label, "dir", ""}
	}
	return []string{item.Label, entry.Kind.String(), humanize.Bytes(uint64(entry.Size))}
}
