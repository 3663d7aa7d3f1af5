package ui

import (
	"context"
	"time"

	"github.com/atomicstack/walink/internal/dispatch"
	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/logging/events"
	"github.com/atomicstack/walink/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	messageSentNotice = "Message sent successfully!"
	mediaSentNotice   = "Media sent successfully!"
)

// scheduler produces delayed messages. The program uses tea.Tick; tests
// substitute a manual clock.
type scheduler interface {
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

type tickScheduler struct{}

func (tickScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

type sendResultMsg struct {
	sent    dispatch.Message
	receipt dispatch.Receipt
	err     error
}

type noticeExpiredMsg struct {
	seq uint64
}

// submit validates the form and, when it passes, issues one send command.
// Only one send runs at a time.
func (m *Model) submit() tea.Cmd {
	if m.busy {
		return nil
	}
	msg := m.form.message()
	if err := dispatch.Validate(msg); err != nil {
		events.Dispatch.Rejected(err.Error())
		m.setError(err.Error())
		return nil
	}
	m.busy = true
	sender := m.sender
	return m.bus.Execute(command.Request{
		Label: "send",
		Run: func(ctx context.Context) tea.Msg {
			receipt, err := sender.Send(ctx, msg)
			return sendResultMsg{sent: msg, receipt: receipt, err: err}
		},
	})
}

func (m *Model) handleSendResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(sendResultMsg)
	if !ok {
		return nil
	}
	m.busy = false
	if res.err != nil {
		if !dispatch.IsValidation(res.err) {
			logging.Error(res.err)
		}
		m.setError(res.err.Error())
		return nil
	}
	m.errMsg = ""
	m.form.clearSent(res.sent)
	if res.receipt.Media {
		return m.setInfo(mediaSentNotice)
	}
	return m.setInfo(messageSentNotice)
}

func (m *Model) setError(message string) {
	m.errMsg = message
	m.infoMsg = ""
}

// setInfo shows a success notice and schedules its expiry. A newer notice
// replaces the old one and outlives its timer.
func (m *Model) setInfo(message string) tea.Cmd {
	m.infoSeq++
	m.infoMsg = message
	return m.after.After(m.noticeTTL, noticeExpiredMsg{seq: m.infoSeq})
}

func (m *Model) handleNoticeExpiredMsg(msg tea.Msg) tea.Cmd {
	expired, ok := msg.(noticeExpiredMsg)
	if !ok || expired.seq != m.infoSeq {
		return nil
	}
	m.infoMsg = ""
	return nil
}
