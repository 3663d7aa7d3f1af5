package ui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Harness drives the UI model synchronously for integration tests. Commands
// run inline, batches are expanded, and delayed messages wait on a manual
// clock until Advance moves it forward.
type Harness struct {
	model *Model
	clock *manualScheduler
	quit  bool
}

// NewHarness wraps model. Animations are switched off so that no command
// blocks on a real timer.
func NewHarness(model *Model) *Harness {
	clock := &manualScheduler{}
	model.after = clock
	model.animate = false
	model.form.staticCursor()
	return &Harness{model: model, clock: clock}
}

// Init runs the model's Init command chain.
func (h *Harness) Init() {
	h.processCmd(h.model.Init())
}

// Send routes a message through the model and executes any returned commands.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(cmd)
}

// Advance moves the manual clock forward by d and delivers every delayed
// message that fell due, earliest first.
func (h *Harness) Advance(d time.Duration) {
	h.clock.now += d
	for {
		msg, ok := h.clock.next()
		if !ok {
			return
		}
		h.Send(msg)
	}
}

// PendingTimers reports how many delayed messages have not fired yet.
func (h *Harness) PendingTimers() int {
	return len(h.clock.pending)
}

// Quit reports whether the model asked the program to exit.
func (h *Harness) Quit() bool {
	return h.quit
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			h.quit = true
		default:
			mdl, follow := h.model.Update(msg)
			if updated, ok := mdl.(*Model); ok {
				h.model = updated
			}
			queue = append(queue, follow)
		}
	}
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}

type timer struct {
	at  time.Duration
	seq int
	msg tea.Msg
}

// manualScheduler records delayed messages instead of sleeping.
type manualScheduler struct {
	now     time.Duration
	seq     int
	pending []timer
}

func (s *manualScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	s.seq++
	s.pending = append(s.pending, timer{at: s.now + d, seq: s.seq, msg: msg})
	return nil
}

func (s *manualScheduler) next() (tea.Msg, bool) {
	if len(s.pending) == 0 {
		return nil, false
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].at != s.pending[j].at {
			return s.pending[i].at < s.pending[j].at
		}
		return s.pending[i].seq < s.pending[j].seq
	})
	first := s.pending[0]
	if first.at > s.now {
		return nil, false
	}
	s.pending = s.pending[1:]
	return first.msg, true
}
