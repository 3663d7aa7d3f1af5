package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/walink/internal/backend"
	"github.com/atomicstack/walink/internal/dispatch"
	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging/events"
	"github.com/atomicstack/walink/internal/state"
	"github.com/atomicstack/walink/internal/theme"
	"github.com/atomicstack/walink/internal/ui/command"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model. Zero values fall back to the defaults.
type Options struct {
	Width      int
	Height     int
	ShowFooter bool
	Policy     state.Policy
	NoticeTTL  time.Duration
	PickerDir  string
	// SetupErr is a failure that happened before the program started, such
	// as the event subscriptions. The session is never initialized.
	SetupErr error
	// RenderQR turns a linking code into terminal glyphs.
	RenderQR func(code string) string
}

const defaultNoticeTTL = 3000 * time.Millisecond

// Model implements the Bubble Tea model for walink.
type Model struct {
	session *state.Coordinator
	engine  engine.Commander
	sender  *dispatch.Sender
	backend *backend.Watcher
	bus     *command.Bus
	after   scheduler

	setupErr error
	renderQR func(string) string

	form    *form
	picker  *pickerView
	spinner spinner.Model
	animate bool

	busy       bool
	errMsg     string
	infoMsg    string
	infoSeq    uint64
	noticeTTL  time.Duration
	pickerDir  string
	quitting   bool
	showFooter bool

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool

	handlers map[reflect.Type]msgHandler
}

// NewModel wires the coordinator, dispatcher and command bus around eng.
// watcher may be nil when events are injected directly, as tests do.
func NewModel(eng engine.Commander, watcher *backend.Watcher, opts Options) *Model {
	ttl := opts.NoticeTTL
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	render := opts.RenderQR
	if render == nil {
		render = renderQRCode
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if styles.Waiting != nil {
		sp.Style = *styles.Waiting
	}
	m := &Model{
		session:    state.NewCoordinator(opts.Policy),
		engine:     eng,
		sender:     dispatch.NewSender(eng),
		backend:    watcher,
		bus:        command.New(),
		after:      tickScheduler{},
		setupErr:   opts.SetupErr,
		renderQR:   render,
		form:       newForm(),
		spinner:    sp,
		animate:    true,
		noticeTTL:  ttl,
		pickerDir:  opts.PickerDir,
		showFooter: opts.ShowFooter,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.session.Observe(m.handleTransition)
	m.registerHandlers()
	return m
}

// Session exposes the coordinator for read access.
func (m *Model) Session() *state.Coordinator {
	return m.session
}

// Init starts initialization and the backend event pump.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.setupErr != nil {
		m.session.SubscribeFailed(m.setupErr)
	} else if cmd := m.startInit(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if m.animate {
		cmds = append(cmds, m.spinner.Tick)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	if m.picker == nil && !m.session.Phase().Linking() {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):         m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):  m.handleWindowSizeMsg,
		reflect.TypeOf(spinner.TickMsg{}):    m.handleSpinnerTickMsg,
		reflect.TypeOf(initResultMsg{}):      m.handleInitResultMsg,
		reflect.TypeOf(backendEventMsg{}):    m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):     m.handleBackendDoneMsg,
		reflect.TypeOf(readinessDueMsg{}):    m.handleReadinessDueMsg,
		reflect.TypeOf(readinessResultMsg{}): m.handleReadinessResultMsg,
		reflect.TypeOf(sendResultMsg{}):      m.handleSendResultMsg,
		reflect.TypeOf(noticeExpiredMsg{}):   m.handleNoticeExpiredMsg,
		reflect.TypeOf(pickerLoadedMsg{}):    m.handlePickerLoadedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.form.setWidth(m.width)
	if m.picker != nil {
		m.picker.level.EnsureCursorVisible(m.pickerRows())
	}
	return nil
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !m.animate || m.quitting {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)
	return cmd
}

// handleTransition reacts to coordinator phase changes.
func (m *Model) handleTransition(tr state.Transition) {
	if tr.To == state.PhaseReady {
		m.form.focusField(fieldContact)
	}
}

// teardown cancels pending work before the program exits.
func (m *Model) teardown(reason string) tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	m.quitting = true
	m.session.Close()
	m.bus.Close()
	if m.backend != nil {
		m.backend.Stop()
	}
	events.App.Stop(reason)
	return tea.Quit
}
