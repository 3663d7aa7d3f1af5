package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/walink/internal/logging/events"
)

// Emitter fans events out to subscribed handlers. Engines embed it to
// satisfy Subscriber.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[EventName][]*subscription
	closed   bool
}

type subscription struct {
	name    EventName
	handler Handler
	owner   *Emitter
	once    sync.Once
}

func (s *subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.owner.remove(s)
		events.Engine.Unsubscribe(string(s.name))
	})
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[EventName][]*subscription)}
}

// Subscribe registers handler for name.
func (e *Emitter) Subscribe(name EventName, handler Handler) (Subscription, error) {
	if !Known(name) {
		return nil, fmt.Errorf("subscribe %q: %w", name, ErrUnknownEvent)
	}
	if handler == nil {
		return nil, fmt.Errorf("subscribe %q: nil handler", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("subscribe %q: %w", name, ErrClosed)
	}
	if e.handlers == nil {
		e.handlers = make(map[EventName][]*subscription)
	}
	sub := &subscription{name: name, handler: handler, owner: e}
	e.handlers[name] = append(e.handlers[name], sub)
	events.Engine.Subscribe(string(name))
	return sub, nil
}

// Emit delivers evt to every current handler for its name, in
// registration order, on the caller's goroutine.
func (e *Emitter) Emit(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	e.mu.RLock()
	subs := append([]*subscription(nil), e.handlers[evt.Name]...)
	e.mu.RUnlock()
	events.Engine.Emit(string(evt.Name))
	for _, sub := range subs {
		sub.handler(evt)
	}
}

// Subscribers returns the number of live handlers for name.
func (e *Emitter) Subscribers(name EventName) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[name])
}

// Close drops every handler and rejects later subscriptions.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.handlers = make(map[EventName][]*subscription)
}

func (e *Emitter) remove(target *subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subs := e.handlers[target.name]
	for i, sub := range subs {
		if sub == target {
			e.handlers[target.name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
