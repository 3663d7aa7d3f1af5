package ui

import (
	"context"

	"github.com/atomicstack/walink/internal/backend"
	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/state"
	"github.com/atomicstack/walink/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

const connectedNotice = "WhatsApp connected successfully!"

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event engine.Event
}

type backendDoneMsg struct{}

type initResultMsg struct {
	err error
}

type readinessDueMsg struct {
	token uint64
}

type readinessResultMsg struct {
	token uint64
	ready bool
	err   error
}

// startInit issues initialize-session once per process.
func (m *Model) startInit() tea.Cmd {
	if !m.session.BeginInit() {
		return nil
	}
	eng := m.engine
	return m.bus.Execute(command.Request{
		Label: "initialize",
		Run: func(ctx context.Context) tea.Msg {
			return initResultMsg{err: eng.Initialize(ctx)}
		},
	})
}

func (m *Model) handleInitResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(initResultMsg)
	if !ok {
		return nil
	}
	if res.err != nil {
		logging.Error(res.err)
		m.session.InitFailed(res.err)
		return nil
	}
	m.session.InitSucceeded()
	return nil
}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil && !m.quitting {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt engine.Event) tea.Cmd {
	switch evt.Name {
	case engine.EventQRCode:
		m.session.ApplyQRCode(evt.Code)
	case engine.EventAuthSuccess:
		if check, ok := m.session.ApplyAuthSuccess(); ok {
			return m.scheduleCheck(check)
		}
	}
	return nil
}

func (m *Model) scheduleCheck(check state.Check) tea.Cmd {
	return m.after.After(check.Delay, readinessDueMsg{token: check.Token})
}

func (m *Model) handleReadinessDueMsg(msg tea.Msg) tea.Cmd {
	due, ok := msg.(readinessDueMsg)
	if !ok || m.quitting || due.token != m.session.Pending() {
		return nil
	}
	eng := m.engine
	token := due.token
	return m.bus.Execute(command.Request{
		Label: "is-ready",
		Run: func(ctx context.Context) tea.Msg {
			ready, err := eng.IsReady(ctx)
			return readinessResultMsg{token: token, ready: ready, err: err}
		},
	})
}

func (m *Model) handleReadinessResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(readinessResultMsg)
	if !ok {
		return nil
	}
	outcome := m.session.ApplyReadiness(res.token, res.ready, res.err)
	switch {
	case outcome.Ready:
		m.errMsg = ""
		return m.setInfo(connectedNotice)
	case outcome.Retry:
		return m.scheduleCheck(outcome.Next)
	}
	return nil
}
