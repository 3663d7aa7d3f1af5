package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	uistate "github.com/atomicstack/walink/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func pickerFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"photo.jpg":       "jpeg",
		"notes.txt":       "hello",
		"script.sh":       "#!/bin/sh",
		".hidden.png":     "png",
		"docs/report.pdf": "%PDF",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func pickerLabels(m *Model) []string {
	labels := make([]string, 0, len(m.picker.level.Items))
	for _, item := range m.picker.level.Items {
		labels = append(labels, item.Label)
	}
	return labels
}

func TestPickerListsAllowedEntries(t *testing.T) {
	dir := pickerFixture(t)
	h, _ := newReadyHarness(t, Options{PickerDir: dir})
	press(h, tea.KeyCtrlO)
	m := h.Model()
	if m.picker == nil {
		t.Fatalf("expected picker open")
	}
	got := strings.Join(pickerLabels(m), ",")
	want := uistate.ParentID + ",docs/,notes.txt,photo.jpg"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	view := h.View()
	for _, snippet := range []string{"Attach a file: " + dir, "docs/", "photo.jpg", "image", "4 B"} {
		if !strings.Contains(view, snippet) {
			t.Fatalf("expected %q in view, got:\n%s", snippet, view)
		}
	}
}

func TestPickerFilterAndSelect(t *testing.T) {
	dir := pickerFixture(t)
	h, eng := newReadyHarness(t, Options{PickerDir: dir})
	press(h, tea.KeyCtrlO)
	typeText(h, "photo")
	m := h.Model()
	if got := strings.Join(pickerLabels(m), ","); got != uistate.ParentID+",photo.jpg" {
		t.Fatalf("unexpected filtered items %q", got)
	}
	press(h, tea.KeyEnter)
	if m.picker != nil {
		t.Fatalf("expected picker closed after selection")
	}
	want := filepath.Join(dir, "photo.jpg")
	if m.form.attachment != want {
		t.Fatalf("expected attachment %q, got %q", want, m.form.attachment)
	}
	if m.form.contact.Value() != "" {
		t.Fatalf("filter text must not leak into the form, got %q", m.form.contact.Value())
	}
	if calls := eng.Calls(); len(calls) != 0 {
		t.Fatalf("picking a file must not touch the backend, got %#v", calls)
	}
}

func TestPickerDescendAndCancel(t *testing.T) {
	dir := pickerFixture(t)
	h, _ := newReadyHarness(t, Options{PickerDir: dir})
	press(h, tea.KeyCtrlO)
	typeText(h, "docs")
	press(h, tea.KeyEnter)
	m := h.Model()
	if m.picker == nil || m.picker.dir != filepath.Join(dir, "docs") {
		t.Fatalf("expected picker in docs")
	}
	if got := strings.Join(pickerLabels(m), ","); got != uistate.ParentID+",report.pdf" {
		t.Fatalf("unexpected docs items %q", got)
	}

	press(h, tea.KeyHome)
	press(h, tea.KeyEnter)
	if m.picker.dir != dir {
		t.Fatalf("expected parent dir %q, got %q", dir, m.picker.dir)
	}
	if item, ok := m.picker.level.Current(); !ok || item.ID != filepath.Join(dir, "docs") {
		t.Fatalf("expected cursor back on docs, got %+v", item)
	}

	typeText(h, "zzz")
	press(h, tea.KeyEsc)
	if m.picker == nil || m.picker.level.Filter != "" {
		t.Fatalf("expected first esc to clear the filter")
	}
	press(h, tea.KeyEsc)
	if m.picker != nil || m.form.attachment != "" {
		t.Fatalf("expected picker cancelled without attachment")
	}
	if m.pickerDir != dir {
		t.Fatalf("expected picker to remember %q, got %q", dir, m.pickerDir)
	}
}

func TestEnterOnAttachFieldOpensPicker(t *testing.T) {
	dir := pickerFixture(t)
	h, eng := newReadyHarness(t, Options{PickerDir: dir})
	press(h, tea.KeyTab)
	press(h, tea.KeyTab)
	press(h, tea.KeyEnter)
	if h.Model().picker == nil {
		t.Fatalf("expected picker open")
	}
	if calls := eng.Calls(); len(calls) != 0 {
		t.Fatalf("expected no send, got %#v", calls)
	}
}

func TestPickerLoadErrorClosesPicker(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	h, _ := newReadyHarness(t, Options{PickerDir: missing})
	press(h, tea.KeyCtrlO)
	m := h.Model()
	if m.picker != nil {
		t.Fatalf("expected picker closed on load error")
	}
	if !strings.Contains(m.errMsg, "missing") {
		t.Fatalf("expected load error, got %q", m.errMsg)
	}
}

func TestPickerRowsFollowHeight(t *testing.T) {
	h, _ := newTestHarness(t, Options{Height: 12, ShowFooter: true})
	if rows := h.Model().pickerRows(); rows != 7 {
		t.Fatalf("expected 7 rows, got %d", rows)
	}
	h, _ = newTestHarness(t, Options{Height: 2})
	if rows := h.Model().pickerRows(); rows != 1 {
		t.Fatalf("expected at least one row, got %d", rows)
	}
}
