// Package testutil provides a scriptable engine for exercising the
// coordinator, subscription manager, dispatcher and UI without a network.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomicstack/walink/internal/engine"
)

// Call records one command invocation against FakeEngine.
type Call struct {
	Name    string
	Contact string
	Body    string
	Media   engine.MediaRequest
}

// FakeEngine implements engine.Engine with canned results.
type FakeEngine struct {
	*engine.Emitter

	mu           sync.Mutex
	calls        []Call
	initErr      error
	ready        bool
	readyErr     error
	sendErr      error
	nextID       int
	subscribeErr map[engine.EventName]error
	closed       bool
}

// NewFakeEngine returns a fake that reports not-ready until SetReady.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Emitter:      engine.NewEmitter(),
		subscribeErr: make(map[engine.EventName]error),
	}
}

func (f *FakeEngine) SetInitError(err error) {
	f.mu.Lock()
	f.initErr = err
	f.mu.Unlock()
}

func (f *FakeEngine) SetReady(ready bool, err error) {
	f.mu.Lock()
	f.ready = ready
	f.readyErr = err
	f.mu.Unlock()
}

func (f *FakeEngine) SetSendError(err error) {
	f.mu.Lock()
	f.sendErr = err
	f.mu.Unlock()
}

// FailSubscribe makes Subscribe(name) return err.
func (f *FakeEngine) FailSubscribe(name engine.EventName, err error) {
	f.mu.Lock()
	f.subscribeErr[name] = err
	f.mu.Unlock()
}

func (f *FakeEngine) Subscribe(name engine.EventName, handler engine.Handler) (engine.Subscription, error) {
	f.mu.Lock()
	err := f.subscribeErr[name]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Emitter.Subscribe(name, handler)
}

func (f *FakeEngine) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: "initialize"})
	return f.initErr
}

func (f *FakeEngine) IsReady(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: "is-ready"})
	return f.ready, f.readyErr
}

func (f *FakeEngine) SendText(ctx context.Context, contact, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: "send-text", Contact: contact, Body: body})
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextID++
	return fmt.Sprintf("MSG-%d", f.nextID), nil
}

func (f *FakeEngine) SendMedia(ctx context.Context, req engine.MediaRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: "send-media", Contact: req.Contact, Body: req.Body, Media: req})
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextID++
	return fmt.Sprintf("MSG-%d", f.nextID), nil
}

func (f *FakeEngine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.Emitter.Close()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeEngine) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Calls returns a copy of the recorded command log.
func (f *FakeEngine) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsNamed returns recorded calls matching name.
func (f *FakeEngine) CallsNamed(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// SendCalls returns the send-text and send-media invocations in order.
func (f *FakeEngine) SendCalls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Name == "send-text" || c.Name == "send-media" {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the command log.
func (f *FakeEngine) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

var _ engine.Engine = (*FakeEngine)(nil)
