// Package sim is a scripted engine for demos and tests. It rotates linking
// codes, pairs on its own after a few rotations and then accepts sends
// without touching the network.
package sim

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging/events"
	"github.com/google/uuid"
)

const (
	DefaultQRInterval = 5 * time.Second
	DefaultPairAfter  = 3
	DefaultReadyAfter = 1500 * time.Millisecond
)

// Options tunes the script. PairAfter of zero never pairs automatically;
// call Pair instead.
type Options struct {
	QRInterval time.Duration
	PairAfter  int
	ReadyAfter time.Duration
}

// DefaultOptions returns the demo script timings.
func DefaultOptions() Options {
	return Options{
		QRInterval: DefaultQRInterval,
		PairAfter:  DefaultPairAfter,
		ReadyAfter: DefaultReadyAfter,
	}
}

// Sent records one accepted message.
type Sent struct {
	ID      string
	Contact string
	Body    string
	Path    string
	Kind    string
}

// Engine implements engine.Engine against a local script.
type Engine struct {
	*engine.Emitter

	opts Options

	mu          sync.Mutex
	initialized bool
	paired      bool
	ready       bool
	closed      bool
	sent        []Sent
	pair        chan struct{}
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New returns an idle simulated engine.
func New(opts Options) *Engine {
	if opts.QRInterval <= 0 {
		opts.QRInterval = DefaultQRInterval
	}
	if opts.ReadyAfter < 0 {
		opts.ReadyAfter = 0
	}
	return &Engine{
		Emitter: engine.NewEmitter(),
		opts:    opts,
		pair:    make(chan struct{}, 1),
	}
}

// Initialize starts the linking script. A second call fails.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.ErrClosed
	}
	if e.initialized {
		return engine.ErrAlreadyInitialized
	}
	e.initialized = true
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(runCtx)
	return nil
}

// Pair completes linking as if the code had been scanned.
func (e *Engine) Pair() {
	select {
	case e.pair <- struct{}{}:
	default:
	}
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.QRInterval)
	defer ticker.Stop()

	rotations := 0
	emitCode := func() {
		rotations++
		e.Emit(engine.Event{Name: engine.EventQRCode, Code: linkCode(rotations)})
	}
	emitCode()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.pair:
		case <-ticker.C:
			if e.opts.PairAfter <= 0 || rotations < e.opts.PairAfter {
				emitCode()
				continue
			}
		}
		ticker.Stop()
		e.connect(ctx)
		return
	}
}

// connect mirrors a real pairing: auth-success on pair, then again once
// the connection is up.
func (e *Engine) connect(ctx context.Context) {
	e.mu.Lock()
	e.paired = true
	e.mu.Unlock()
	e.Emit(engine.Event{Name: engine.EventAuthSuccess})

	timer := time.NewTimer(e.opts.ReadyAfter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	e.mu.Lock()
	e.ready = true
	e.mu.Unlock()
	events.Engine.Log("sim", "INFO", "connected")
	e.Emit(engine.Event{Name: engine.EventAuthSuccess})
}

func linkCode(rotation int) string {
	return fmt.Sprintf("2@walink-demo-%d,%s", rotation, uuid.NewString())
}

func (e *Engine) IsReady(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready, nil
}

// Paired reports whether the simulated device has been linked.
func (e *Engine) Paired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paired
}

func (e *Engine) checkSend(contact string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return "", engine.ErrNotInitialized
	}
	if !e.ready {
		return "", engine.ErrNotReady
	}
	return engine.ValidateContact(contact)
}

func (e *Engine) SendText(ctx context.Context, contact, body string) (string, error) {
	clean, err := e.checkSend(contact)
	if err != nil {
		return "", err
	}
	return e.record(Sent{Contact: clean, Body: body, Kind: "text"}), nil
}

func (e *Engine) SendMedia(ctx context.Context, req engine.MediaRequest) (string, error) {
	clean, err := e.checkSend(req.Contact)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(req.Path); err != nil {
		return "", fmt.Errorf("Failed to read file: %w", err)
	}
	return e.record(Sent{Contact: clean, Body: req.Body, Path: req.Path, Kind: req.Kind.String()}), nil
}

func (e *Engine) record(msg Sent) string {
	msg.ID = uuid.NewString()
	e.mu.Lock()
	e.sent = append(e.sent, msg)
	e.mu.Unlock()
	return msg.ID
}

// Sent returns the accepted messages in order.
func (e *Engine) Sent() []Sent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Sent(nil), e.sent...)
}

// Close stops the script and drops all subscriptions.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
	e.Emitter.Close()
	return nil
}

var _ engine.Engine = (*Engine)(nil)
