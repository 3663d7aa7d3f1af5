// Package backend owns the event subscriptions that feed the session
// coordinator.
package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomicstack/walink/internal/engine"
)

// Streams lists the events the watcher subscribes to, in subscription order.
var Streams = []engine.EventName{engine.EventQRCode, engine.EventAuthSuccess}

const eventBuffer = 16

// Watcher subscribes to backend push events and republishes them on a
// single channel consumed by the UI event loop.
type Watcher struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	subs    []engine.Subscription

	events   chan engine.Event
	inflight sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher registers for every stream before returning so no event
// emitted after this call can be missed. A subscription failure releases
// whatever was registered and is returned as is.
func NewWatcher(sub engine.Subscriber) (*Watcher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan engine.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	for _, name := range Streams {
		handle, err := sub.Subscribe(name, w.deliver)
		if err != nil {
			w.Stop()
			return nil, fmt.Errorf("subscribe %s: %w", name, err)
		}
		w.adopt(handle)
	}
	return w, nil
}

// Events returns the channel of backend events. It is closed after Stop once
// every in-flight delivery has returned.
func (w *Watcher) Events() <-chan engine.Event {
	return w.events
}

// Stop releases every subscription exactly once. Safe to call repeatedly and
// from any goroutine.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		subs := w.subs
		w.subs = nil
		w.mu.Unlock()

		w.cancel()
		for _, s := range subs {
			s.Cancel()
		}
		go func() {
			w.inflight.Wait()
			close(w.events)
			close(w.done)
		}()
	})
}

// Wait blocks until Stop has drained deliveries and closed the channel.
func (w *Watcher) Wait() {
	<-w.done
}

// Active returns the number of subscriptions currently held.
func (w *Watcher) Active() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// Adopt takes ownership of a handle that was obtained asynchronously. When
// the watcher has already stopped the handle is cancelled immediately.
func (w *Watcher) Adopt(handle engine.Subscription) {
	w.adopt(handle)
}

func (w *Watcher) adopt(handle engine.Subscription) {
	if handle == nil {
		return
	}
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		handle.Cancel()
		return
	}
	w.subs = append(w.subs, handle)
	w.mu.Unlock()
}

func (w *Watcher) deliver(evt engine.Event) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	select {
	case <-w.ctx.Done():
	case w.events <- evt:
	}
}
