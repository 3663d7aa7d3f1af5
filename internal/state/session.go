package state

import (
	"time"

	"github.com/atomicstack/walink/internal/logging/events"
)

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Phase       Phase
	QRPayload   string
	Ready       bool
	Err         string
	SetupFailed bool
	Initialized bool
	Rotations   int
}

// Check is a deferred readiness query. The owner runs it after Delay and
// reports back with the same Token.
type Check struct {
	Token   uint64
	Attempt int
	Delay   time.Duration
}

// Outcome describes what a readiness answer did to the session.
type Outcome struct {
	Stale     bool
	Ready     bool
	Retry     bool
	Next      Check
	Exhausted bool
}

// Transition is delivered to observers whenever the phase changes.
type Transition struct {
	From   Phase
	To     Phase
	Reason string
}

// Observer receives phase transitions.
type Observer func(Transition)

// Coordinator owns the session state machine. It is not safe for concurrent
// use; the UI event loop is its only caller.
type Coordinator struct {
	policy Policy

	phase       Phase
	qr          string
	rotations   int
	ready       bool
	initialized bool
	initPending bool
	errMsg      string
	setupFailed bool

	pending   uint64
	nextToken uint64
	attempt   int
	closed    bool

	observers map[int]Observer
	nextObs   int
}

// NewCoordinator returns a coordinator in PhaseUninitialized.
func NewCoordinator(policy Policy) *Coordinator {
	return &Coordinator{
		policy:    policy.normalized(),
		observers: make(map[int]Observer),
	}
}

func (c *Coordinator) Phase() Phase       { return c.phase }
func (c *Coordinator) QRPayload() string  { return c.qr }
func (c *Coordinator) Ready() bool        { return c.ready }
func (c *Coordinator) Err() string        { return c.errMsg }
func (c *Coordinator) SetupFailed() bool  { return c.setupFailed }
func (c *Coordinator) InitPending() bool  { return c.initPending }
func (c *Coordinator) Closed() bool       { return c.closed }
func (c *Coordinator) Connecting() bool   { return c.phase == PhaseAuthenticating }
func (c *Coordinator) CheckPending() bool { return c.pending != 0 }

// Pending returns the token of the outstanding readiness check, or zero.
func (c *Coordinator) Pending() uint64 { return c.pending }

// Snapshot copies the current state.
func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		Phase:       c.phase,
		QRPayload:   c.qr,
		Ready:       c.ready,
		Err:         c.errMsg,
		SetupFailed: c.setupFailed,
		Initialized: c.initialized,
		Rotations:   c.rotations,
	}
}

// Observe registers fn for phase transitions and returns its cancel func.
func (c *Coordinator) Observe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

// BeginInit moves the session into PhaseInitializing. It returns false when
// initialization was already started, so the caller never connects twice.
func (c *Coordinator) BeginInit() bool {
	if c.closed || c.phase != PhaseUninitialized || c.setupFailed {
		return false
	}
	c.initPending = true
	c.transition(PhaseInitializing, "initialize")
	return true
}

// InitSucceeded records that the initialize command resolved.
func (c *Coordinator) InitSucceeded() {
	c.initPending = false
	c.initialized = true
}

// InitFailed records a failed initialize command. The phase is left as is
// and nothing retries.
func (c *Coordinator) InitFailed(err error) {
	c.initPending = false
	c.fail(StageInitialize, err)
}

// SubscribeFailed records that the event subscriptions could not be set up.
func (c *Coordinator) SubscribeFailed(err error) {
	c.fail(StageSubscribe, err)
}

func (c *Coordinator) fail(stage string, err error) {
	if err == nil {
		return
	}
	setupErr := &SetupError{Stage: stage, Err: err}
	c.setupFailed = true
	c.errMsg = setupErr.Error()
	events.Session.SetupFailed(stage, err)
}

// ApplyQRCode adopts the latest linking code. Codes arriving once the
// session has moved past AwaitingScan are ignored.
func (c *Coordinator) ApplyQRCode(code string) bool {
	if c.closed {
		return false
	}
	if c.phase > PhaseAwaitingScan {
		events.Session.QRIgnored(c.phase.String())
		return false
	}
	c.qr = code
	c.rotations++
	c.errMsg = ""
	c.setupFailed = false
	events.Session.QRCode(len(code), c.rotations)
	if c.phase < PhaseAwaitingScan {
		c.transition(PhaseAwaitingScan, "qr-code")
	}
	return true
}

// ApplyAuthSuccess moves the session to PhaseAuthenticating and returns the
// readiness check to schedule. The boolean is false when the event changes
// nothing: the session is already ready or a check is already pending.
func (c *Coordinator) ApplyAuthSuccess() (Check, bool) {
	if c.closed {
		return Check{}, false
	}
	if c.phase == PhaseReady || (c.phase == PhaseAuthenticating && c.pending != 0) {
		events.Session.AuthIgnored(c.phase.String())
		return Check{}, false
	}
	c.qr = ""
	c.errMsg = ""
	c.setupFailed = false
	c.attempt = 0
	if c.phase != PhaseAuthenticating {
		c.transition(PhaseAuthenticating, "auth-success")
	}
	return c.schedule(c.policy.SettleDelay), true
}

// ApplyReadiness folds the answer of a readiness query into the session. A
// query error counts as not ready.
func (c *Coordinator) ApplyReadiness(token uint64, ready bool, err error) Outcome {
	if c.closed || c.pending == 0 || token != c.pending {
		events.Session.ReadinessStale(token)
		return Outcome{Stale: true}
	}
	c.pending = 0
	events.Session.Readiness(token, ready, err)
	if err == nil && ready {
		c.ready = true
		c.transition(PhaseReady, "readiness confirmed")
		return Outcome{Ready: true}
	}
	c.ready = false
	if c.attempt-1 < c.policy.MaxRetries {
		return Outcome{Retry: true, Next: c.schedule(c.policy.RetryInterval)}
	}
	return Outcome{Exhausted: true}
}

// Close cancels any pending readiness check. Later answers are dropped.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.pending = 0
	events.Session.Closed()
}

func (c *Coordinator) schedule(delay time.Duration) Check {
	c.nextToken++
	c.pending = c.nextToken
	c.attempt++
	check := Check{Token: c.pending, Attempt: c.attempt, Delay: delay}
	events.Session.ReadinessScheduled(check.Token, check.Attempt, delay)
	return check
}

func (c *Coordinator) transition(to Phase, reason string) {
	from := c.phase
	if from == to {
		return
	}
	c.phase = to
	events.Session.Phase(from.String(), to.String(), reason)
	tr := Transition{From: from, To: to, Reason: reason}
	for _, fn := range c.observers {
		fn(tr)
	}
}
