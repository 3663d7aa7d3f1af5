package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/state"
	"github.com/atomicstack/walink/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

const settle = 2 * time.Second

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "walink-ui")
	if err != nil {
		panic(err)
	}
	logging.Configure(filepath.Join(dir, "walink.log"))
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func fakeQR(code string) string {
	return "QR[" + code + "]"
}

func newTestHarness(t *testing.T, opts Options) (*Harness, *testutil.FakeEngine) {
	t.Helper()
	eng := testutil.NewFakeEngine()
	if opts.RenderQR == nil {
		opts.RenderQR = fakeQR
	}
	if opts.Policy == (state.Policy{}) {
		opts.Policy = state.DefaultPolicy()
	}
	h := NewHarness(NewModel(eng, nil, opts))
	return h, eng
}

func qrEvent(code string) backendEventMsg {
	return backendEventMsg{event: engine.Event{Name: engine.EventQRCode, Code: code}}
}

func authEvent() backendEventMsg {
	return backendEventMsg{event: engine.Event{Name: engine.EventAuthSuccess}}
}

// newReadyHarness walks the model through linking into PhaseReady and lets
// the connected notice expire.
func newReadyHarness(t *testing.T, opts Options) (*Harness, *testutil.FakeEngine) {
	t.Helper()
	h, eng := newTestHarness(t, opts)
	h.Init()
	h.Send(qrEvent("code-1"))
	h.Send(authEvent())
	eng.SetReady(true, nil)
	h.Advance(settle)
	if phase := h.Model().Session().Phase(); phase != state.PhaseReady {
		t.Fatalf("expected ready phase, got %s", phase)
	}
	h.Advance(defaultNoticeTTL)
	eng.ResetCalls()
	return h, eng
}

func TestLinkingFlowReachesReady(t *testing.T) {
	h, eng := newTestHarness(t, Options{})
	h.Init()
	if calls := eng.CallsNamed("initialize"); len(calls) != 1 {
		t.Fatalf("expected one initialize call, got %d", len(calls))
	}
	if view := h.View(); !strings.Contains(view, waitingText) {
		t.Fatalf("expected waiting indicator, got:\n%s", view)
	}

	h.Send(qrEvent("code-1"))
	if view := h.View(); !strings.Contains(view, "QR[code-1]") {
		t.Fatalf("expected first code rendered, got:\n%s", view)
	}
	h.Send(qrEvent("code-2"))
	view := h.View()
	if !strings.Contains(view, "QR[code-2]") || strings.Contains(view, "QR[code-1]") {
		t.Fatalf("expected only the latest code, got:\n%s", view)
	}

	h.Send(authEvent())
	session := h.Model().Session()
	if session.Phase() != state.PhaseAuthenticating {
		t.Fatalf("expected authenticating, got %s", session.Phase())
	}
	if view := h.View(); !strings.Contains(view, connectingText) || strings.Contains(view, "QR[") {
		t.Fatalf("expected connecting view without qr, got:\n%s", view)
	}

	eng.SetReady(true, nil)
	h.Advance(settle - time.Millisecond)
	if calls := eng.CallsNamed("is-ready"); len(calls) != 0 {
		t.Fatalf("expected no readiness query before the settle delay, got %d", len(calls))
	}
	h.Advance(time.Millisecond)
	if calls := eng.CallsNamed("is-ready"); len(calls) != 1 {
		t.Fatalf("expected one readiness query, got %d", len(calls))
	}
	if session.Phase() != state.PhaseReady || !session.Ready() {
		t.Fatalf("expected ready session, got %+v", session.Snapshot())
	}
	if view := h.View(); !strings.Contains(view, connectedNotice) || !strings.Contains(view, "Contact") {
		t.Fatalf("expected messaging view with notice, got:\n%s", view)
	}
	h.Advance(defaultNoticeTTL)
	if view := h.View(); strings.Contains(view, connectedNotice) {
		t.Fatalf("expected notice to expire, got:\n%s", view)
	}
}

func TestQRCodeAfterAuthIsIgnored(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	h.Init()
	h.Send(qrEvent("code-1"))
	h.Send(authEvent())
	h.Send(qrEvent("late"))
	session := h.Model().Session()
	if session.Phase() != state.PhaseAuthenticating {
		t.Fatalf("expected phase to stay authenticating, got %s", session.Phase())
	}
	if strings.Contains(h.View(), "QR[late]") {
		t.Fatalf("late code must not be rendered")
	}
}

func TestAuthBeforeQRCode(t *testing.T) {
	h, eng := newTestHarness(t, Options{})
	h.Init()
	h.Send(authEvent())
	if phase := h.Model().Session().Phase(); phase != state.PhaseAuthenticating {
		t.Fatalf("expected authenticating, got %s", phase)
	}
	eng.SetReady(true, nil)
	h.Advance(settle)
	if phase := h.Model().Session().Phase(); phase != state.PhaseReady {
		t.Fatalf("expected ready, got %s", phase)
	}
}

func TestDuplicateAuthSchedulesOneCheck(t *testing.T) {
	h, eng := newTestHarness(t, Options{})
	h.Init()
	h.Send(authEvent())
	h.Send(authEvent())
	if n := h.PendingTimers(); n != 1 {
		t.Fatalf("expected a single pending check, got %d", n)
	}
	eng.SetReady(true, nil)
	h.Advance(settle)
	if calls := eng.CallsNamed("is-ready"); len(calls) != 1 {
		t.Fatalf("expected one readiness query, got %d", len(calls))
	}
	h.Send(authEvent())
	if phase := h.Model().Session().Phase(); phase != state.PhaseReady {
		t.Fatalf("auth in ready must not regress, got %s", phase)
	}
}

func TestReadinessRetriesUntilReady(t *testing.T) {
	h, eng := newTestHarness(t, Options{})
	h.Init()
	h.Send(authEvent())
	h.Advance(settle)
	session := h.Model().Session()
	if session.Phase() != state.PhaseAuthenticating {
		t.Fatalf("expected to stay authenticating, got %s", session.Phase())
	}
	view := h.View()
	if !strings.Contains(view, connectingText) {
		t.Fatalf("expected connecting view, got:\n%s", view)
	}
	if session.Err() != "" {
		t.Fatalf("not-ready answer must not surface an error, got %q", session.Err())
	}
	if n := h.PendingTimers(); n != 1 {
		t.Fatalf("expected a retry to be scheduled, got %d timers", n)
	}

	eng.SetReady(false, errors.New("socket closed"))
	h.Advance(settle)
	if session.Phase() != state.PhaseAuthenticating {
		t.Fatalf("query error counts as not ready, got %s", session.Phase())
	}

	eng.SetReady(true, nil)
	h.Advance(settle)
	if session.Phase() != state.PhaseReady {
		t.Fatalf("expected ready after retry, got %s", session.Phase())
	}
	if calls := eng.CallsNamed("is-ready"); len(calls) != 3 {
		t.Fatalf("expected three readiness queries, got %d", len(calls))
	}
}

func TestReadinessRetriesExhausted(t *testing.T) {
	policy := state.Policy{SettleDelay: settle, RetryInterval: time.Second, MaxRetries: 1}
	h, eng := newTestHarness(t, Options{Policy: policy})
	h.Init()
	h.Send(authEvent())
	h.Advance(settle)
	h.Advance(time.Second)
	if calls := eng.CallsNamed("is-ready"); len(calls) != 2 {
		t.Fatalf("expected two readiness queries, got %d", len(calls))
	}
	if n := h.PendingTimers(); n != 0 {
		t.Fatalf("expected no further checks, got %d", n)
	}
	if phase := h.Model().Session().Phase(); phase != state.PhaseAuthenticating {
		t.Fatalf("expected authenticating, got %s", phase)
	}
}

func TestStaleReadinessResultIgnored(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	h.Init()
	h.Send(authEvent())
	h.Send(readinessResultMsg{token: 42, ready: true})
	if phase := h.Model().Session().Phase(); phase != state.PhaseAuthenticating {
		t.Fatalf("stale result must be ignored, got %s", phase)
	}
	h.Send(readinessDueMsg{token: 42})
	if n := h.PendingTimers(); n != 1 {
		t.Fatalf("expected original check still pending, got %d", n)
	}
}

func TestSubscribeFailureShownAndNoInit(t *testing.T) {
	h, eng := newTestHarness(t, Options{SetupErr: errors.New("boom")})
	h.Init()
	if calls := eng.CallsNamed("initialize"); len(calls) != 0 {
		t.Fatalf("expected no initialize call, got %d", len(calls))
	}
	view := h.View()
	if !strings.Contains(view, "Failed to listen for WhatsApp events: boom") {
		t.Fatalf("expected setup error, got:\n%s", view)
	}
	if strings.Contains(view, waitingText) {
		t.Fatalf("expected no waiting indicator after setup failure")
	}
}

func TestInitFailureIsPersistentUntilQRCode(t *testing.T) {
	h, eng := newTestHarness(t, Options{})
	eng.SetInitError(errors.New("store locked"))
	h.Init()
	want := "Failed to initialize WhatsApp: store locked"
	if view := h.View(); !strings.Contains(view, want) {
		t.Fatalf("expected %q, got:\n%s", want, view)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if view := h.View(); !strings.Contains(view, want) {
		t.Fatalf("expected error to persist, got:\n%s", view)
	}
	h.Send(qrEvent("code-1"))
	view := h.View()
	if strings.Contains(view, want) || !strings.Contains(view, "QR[code-1]") {
		t.Fatalf("expected qr code to replace the error, got:\n%s", view)
	}
}

func TestKeysIgnoredWhileLinking(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	h.Init()
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("12345")})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlO})
	m := h.Model()
	if m.form.contact.Value() != "" {
		t.Fatalf("expected no input while linking, got %q", m.form.contact.Value())
	}
	if m.picker != nil {
		t.Fatalf("expected picker to stay closed while linking")
	}
}

func TestCtrlCTearsDown(t *testing.T) {
	h, eng := newTestHarness(t, Options{})
	h.Init()
	h.Send(authEvent())
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !h.Quit() {
		t.Fatalf("expected quit")
	}
	if !h.Model().Session().Closed() {
		t.Fatalf("expected session closed")
	}
	eng.SetReady(true, nil)
	h.Advance(settle)
	if calls := eng.CallsNamed("is-ready"); len(calls) != 0 {
		t.Fatalf("expected no readiness query after teardown, got %d", len(calls))
	}
	if view := h.View(); view != "" {
		t.Fatalf("expected empty view after quit, got %q", view)
	}
}

func TestWindowSizeRespectsFixedDimensions(t *testing.T) {
	h, _ := newTestHarness(t, Options{Width: 60})
	h.Send(tea.WindowSizeMsg{Width: 120, Height: 30})
	m := h.Model()
	if m.width != 60 || m.height != 30 {
		t.Fatalf("expected 60x30, got %dx%d", m.width, m.height)
	}
}
