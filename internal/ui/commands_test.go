package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/walink/internal/dispatch"
	"github.com/atomicstack/walink/internal/media"
	"github.com/atomicstack/walink/internal/state"
	tea "github.com/charmbracelet/bubbletea"
)

func typeText(h *Harness, text string) {
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(h *Harness, key tea.KeyType) {
	h.Send(tea.KeyMsg{Type: key})
}

func fillForm(h *Harness, contact, body string) {
	typeText(h, contact)
	press(h, tea.KeyTab)
	typeText(h, body)
}

func TestSendTextMessage(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	fillForm(h, "+1 555 0100", "hello there")
	press(h, tea.KeyEnter)

	calls := eng.SendCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one send, got %#v", calls)
	}
	if calls[0].Name != "send-text" || calls[0].Contact != "+1 555 0100" || calls[0].Body != "hello there" {
		t.Fatalf("unexpected send call %#v", calls[0])
	}
	if readyCalls := eng.CallsNamed("is-ready"); len(readyCalls) != 1 {
		t.Fatalf("expected a fresh readiness query before sending, got %d", len(readyCalls))
	}
	m := h.Model()
	if m.infoMsg != messageSentNotice || m.errMsg != "" {
		t.Fatalf("expected sent notice, got info=%q err=%q", m.infoMsg, m.errMsg)
	}
	if m.form.body.Value() != "" || m.form.contact.Value() != "+1 555 0100" {
		t.Fatalf("expected body cleared and contact kept, got %q/%q", m.form.contact.Value(), m.form.body.Value())
	}
	if m.busy {
		t.Fatalf("expected busy flag cleared")
	}
	h.Advance(defaultNoticeTTL)
	if m.infoMsg != "" {
		t.Fatalf("expected notice to expire, got %q", m.infoMsg)
	}
}

func TestSendMediaMessage(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	fillForm(h, "447700900123", "look")
	h.Model().form.attach("/tmp/holiday.jpg")
	press(h, tea.KeyEnter)

	calls := eng.SendCalls()
	if len(calls) != 1 || calls[0].Name != "send-media" {
		t.Fatalf("expected one media send, got %#v", calls)
	}
	req := calls[0].Media
	if req.Path != "/tmp/holiday.jpg" || req.Kind != media.Image || req.Body != "look" {
		t.Fatalf("unexpected media request %#v", req)
	}
	m := h.Model()
	if m.infoMsg != mediaSentNotice {
		t.Fatalf("expected media notice, got %q", m.infoMsg)
	}
	if m.form.attachment != "" || m.form.body.Value() != "" {
		t.Fatalf("expected attachment and body cleared")
	}
}

func TestAttachmentAloneIsEnough(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	typeText(h, "447700900123")
	h.Model().form.attach("/tmp/report.pdf")
	press(h, tea.KeyEnter)
	calls := eng.SendCalls()
	if len(calls) != 1 || calls[0].Media.Kind != media.Document {
		t.Fatalf("expected document send, got %#v", calls)
	}
}

func TestValidationErrorsSkipBackend(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		body    string
		want    error
	}{
		{name: "empty contact", body: "hi", want: dispatch.ErrEmptyContact},
		{name: "blank contact", contact: "   ", body: "hi", want: dispatch.ErrEmptyContact},
		{name: "empty content", contact: "447700900123", want: dispatch.ErrEmptyContent},
		{name: "blank body", contact: "447700900123", body: "   ", want: dispatch.ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, eng := newReadyHarness(t, Options{})
			fillForm(h, tt.contact, tt.body)
			press(h, tea.KeyEnter)
			if calls := eng.Calls(); len(calls) != 0 {
				t.Fatalf("expected no backend calls, got %#v", calls)
			}
			if got := h.Model().errMsg; got != tt.want.Error() {
				t.Fatalf("expected %q, got %q", tt.want.Error(), got)
			}
			if !strings.Contains(h.View(), tt.want.Error()) {
				t.Fatalf("expected error in view, got:\n%s", h.View())
			}
		})
	}
}

func TestSendWhenNotReadyKeepsForm(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	eng.SetReady(false, nil)
	fillForm(h, "447700900123", "draft")
	press(h, tea.KeyEnter)
	if calls := eng.SendCalls(); len(calls) != 0 {
		t.Fatalf("expected no send, got %#v", calls)
	}
	m := h.Model()
	if m.errMsg != dispatch.ErrNotReady.Error() {
		t.Fatalf("expected not-ready error, got %q", m.errMsg)
	}
	if m.form.body.Value() != "draft" {
		t.Fatalf("expected form preserved, got %q", m.form.body.Value())
	}
	if phase := m.Session().Phase(); phase != state.PhaseReady {
		t.Fatalf("dispatch must not change phase, got %s", phase)
	}
}

func TestBackendErrorShownVerbatim(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	eng.SetSendError(errors.New("server returned 479"))
	fillForm(h, "447700900123", "hello")
	press(h, tea.KeyEnter)
	m := h.Model()
	if m.errMsg != "server returned 479" {
		t.Fatalf("expected backend text, got %q", m.errMsg)
	}
	if m.busy || m.form.body.Value() != "hello" {
		t.Fatalf("expected idle form with body kept")
	}

	eng.SetSendError(nil)
	press(h, tea.KeyEnter)
	if m.errMsg != "" || m.infoMsg != messageSentNotice {
		t.Fatalf("expected retry to succeed, got err=%q info=%q", m.errMsg, m.infoMsg)
	}
	if calls := eng.SendCalls(); len(calls) != 2 {
		t.Fatalf("expected two sends, got %d", len(calls))
	}
}

func TestSubmitIgnoredWhileBusy(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	fillForm(h, "447700900123", "once")
	m := h.Model()
	first := m.submit()
	if first == nil || !m.busy {
		t.Fatalf("expected a send command and busy flag")
	}
	if second := m.submit(); second != nil {
		t.Fatalf("expected second submit to be ignored")
	}
	press(h, tea.KeyEnter)
	if view := h.View(); !strings.Contains(view, sendingLabel) {
		t.Fatalf("expected busy button, got:\n%s", view)
	}
	h.processCmd(first)
	if calls := eng.SendCalls(); len(calls) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(calls))
	}
	if m.busy {
		t.Fatalf("expected busy cleared after result")
	}
}

func TestEditsDuringSendSurvive(t *testing.T) {
	h, eng := newReadyHarness(t, Options{})
	fillForm(h, "447700900123", "first")
	m := h.Model()
	cmd := m.submit()
	if cmd == nil {
		t.Fatalf("expected a send command")
	}
	typeText(h, " second draft")
	m.form.attach("/tmp/next.pdf")

	h.processCmd(cmd)
	if calls := eng.SendCalls(); len(calls) != 1 {
		t.Fatalf("expected one send, got %d", len(calls))
	}
	if got := m.form.body.Value(); got != "first second draft" {
		t.Fatalf("expected draft body kept, got %q", got)
	}
	if m.form.attachment != "/tmp/next.pdf" {
		t.Fatalf("expected new attachment kept, got %q", m.form.attachment)
	}
	if m.infoMsg != messageSentNotice {
		t.Fatalf("expected sent notice, got %q", m.infoMsg)
	}
}

func TestNewerNoticeOutlivesOlderTimer(t *testing.T) {
	h, _ := newReadyHarness(t, Options{})
	fillForm(h, "447700900123", "one")
	press(h, tea.KeyEnter)
	h.Advance(2 * time.Second)

	typeText(h, "two")
	press(h, tea.KeyEnter)
	m := h.Model()
	h.Advance(time.Second)
	if m.infoMsg != messageSentNotice {
		t.Fatalf("expected newer notice to survive the older timer")
	}
	h.Advance(2 * time.Second)
	if m.infoMsg != "" {
		t.Fatalf("expected notice cleared, got %q", m.infoMsg)
	}
}

func TestErrorClearsNotice(t *testing.T) {
	h, _ := newReadyHarness(t, Options{})
	fillForm(h, "447700900123", "one")
	press(h, tea.KeyEnter)
	press(h, tea.KeyEnter)
	m := h.Model()
	if m.errMsg != dispatch.ErrEmptyContent.Error() || m.infoMsg != "" {
		t.Fatalf("expected error to replace notice, got err=%q info=%q", m.errMsg, m.infoMsg)
	}
}

func TestFocusCycling(t *testing.T) {
	h, _ := newReadyHarness(t, Options{})
	m := h.Model()
	want := []field{fieldBody, fieldAttach, fieldSend, fieldContact}
	for i, f := range want {
		press(h, tea.KeyTab)
		if m.form.focus != f {
			t.Fatalf("tab %d: expected focus %d, got %d", i, f, m.form.focus)
		}
	}
	press(h, tea.KeyShiftTab)
	if m.form.focus != fieldSend {
		t.Fatalf("expected shift+tab to wrap to send, got %d", m.form.focus)
	}
}

func TestDetachClearsAttachment(t *testing.T) {
	h, _ := newReadyHarness(t, Options{})
	m := h.Model()
	m.form.attach("/tmp/clip.mp4")
	if view := h.View(); !strings.Contains(view, "clip.mp4 (video)") {
		t.Fatalf("expected attachment shown, got:\n%s", view)
	}
	press(h, tea.KeyCtrlX)
	if m.form.attachment != "" {
		t.Fatalf("expected attachment cleared")
	}
	if view := h.View(); !strings.Contains(view, noAttachment) {
		t.Fatalf("expected empty attachment row, got:\n%s", view)
	}
}
