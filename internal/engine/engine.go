// Package engine defines the contracts between walink and the messaging
// protocol engine: named commands with typed results, and push events
// delivered to subscribed handlers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/walink/internal/media"
)

// EventName identifies a push notification stream.
type EventName string

const (
	EventQRCode      EventName = "qr-code"
	EventAuthSuccess EventName = "auth-success"
)

var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotInitialized     = errors.New("WhatsApp not initialized")
	ErrUnknownEvent       = errors.New("unknown event")
	ErrClosed             = errors.New("engine closed")
	ErrNotReady           = errors.New("WhatsApp is not ready yet. Please wait for connection to complete.")
	ErrInvalidContact     = errors.New("invalid contact number")
)

// Event is a single backend notification. Code is set for qr-code events.
type Event struct {
	Name EventName
	Code string
	At   time.Time
}

// Handler receives events for one subscription.
type Handler func(Event)

// Subscription releases a handler registration. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// Subscriber registers handlers for push events.
type Subscriber interface {
	Subscribe(name EventName, handler Handler) (Subscription, error)
}

// MediaRequest carries the inputs of the send-media command.
type MediaRequest struct {
	Contact string
	Body    string
	Path    string
	Kind    media.Kind
}

// Commander issues request/response commands against the backend.
type Commander interface {
	Initialize(ctx context.Context) error
	IsReady(ctx context.Context) (bool, error)
	SendText(ctx context.Context, contact, body string) (string, error)
	SendMedia(ctx context.Context, req MediaRequest) (string, error)
}

// Engine is the full protocol-engine surface used by the app.
type Engine interface {
	Commander
	Subscriber
	Close() error
}

// Known reports whether name is an event the engines emit.
func Known(name EventName) bool {
	switch name {
	case EventQRCode, EventAuthSuccess:
		return true
	}
	return false
}

// CleanContact strips the separators people type into phone numbers: plus
// signs, spaces and dashes.
func CleanContact(contact string) string {
	return strings.NewReplacer("+", "", " ", "", "-", "").Replace(strings.TrimSpace(contact))
}

// ValidateContact returns the cleaned contact, or ErrInvalidContact when
// nothing but digits is left to address.
func ValidateContact(contact string) (string, error) {
	clean := CleanContact(contact)
	if clean == "" {
		return "", ErrInvalidContact
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidContact, contact)
		}
	}
	return clean, nil
}
