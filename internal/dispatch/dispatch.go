// Package dispatch validates outbound messages and hands them to the
// backend as exactly one send command.
package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging/events"
	"github.com/atomicstack/walink/internal/media"
)

var (
	ErrEmptyContact = errors.New("Please enter a contact number")
	ErrEmptyContent = errors.New("Please enter a message or attach a file")
	ErrNotReady     = engine.ErrNotReady
)

// BackendError is a failed send command. Message is the backend's text,
// shown to the operator unchanged.
type BackendError struct {
	Message string
	Err     error
}

func (e *BackendError) Error() string { return e.Message }

func (e *BackendError) Unwrap() error { return e.Err }

// Message is one outbound message built from the form.
type Message struct {
	Contact    string
	Body       string
	Attachment string
}

// HasAttachment reports whether a file is attached.
func (m Message) HasAttachment() bool {
	return strings.TrimSpace(m.Attachment) != ""
}

// Receipt describes a delivered message.
type Receipt struct {
	MessageID string
	Media     bool
	Kind      media.Kind
}

// Backend is the slice of the engine the sender needs.
type Backend interface {
	IsReady(ctx context.Context) (bool, error)
	SendText(ctx context.Context, contact, body string) (string, error)
	SendMedia(ctx context.Context, req engine.MediaRequest) (string, error)
}

// Validate checks the form fields without touching the backend.
func Validate(msg Message) error {
	if strings.TrimSpace(msg.Contact) == "" {
		return ErrEmptyContact
	}
	if strings.TrimSpace(msg.Body) == "" && !msg.HasAttachment() {
		return ErrEmptyContent
	}
	return nil
}

// IsValidation reports whether err was produced by Validate.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyContact) || errors.Is(err, ErrEmptyContent)
}

// Sender issues send commands after validation and a fresh readiness query.
type Sender struct {
	backend Backend
}

func NewSender(backend Backend) *Sender {
	return &Sender{backend: backend}
}

// Send validates msg, confirms the session is ready and issues one command.
// The body is sent as typed; only the contact is trimmed.
func (s *Sender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := Validate(msg); err != nil {
		events.Dispatch.Rejected(err.Error())
		return Receipt{}, err
	}
	contact := strings.TrimSpace(msg.Contact)

	ready, err := s.backend.IsReady(ctx)
	if err != nil || !ready {
		events.Dispatch.NotReady(contact)
		return Receipt{}, ErrNotReady
	}

	var (
		receipt Receipt
		id      string
	)
	if msg.HasAttachment() {
		kind := media.Classify(msg.Attachment)
		receipt.Media = true
		receipt.Kind = kind
		events.Dispatch.Submit(contact, kind.String(), len(msg.Body))
		id, err = s.backend.SendMedia(ctx, engine.MediaRequest{
			Contact: contact,
			Body:    msg.Body,
			Path:    msg.Attachment,
			Kind:    kind,
		})
	} else {
		events.Dispatch.Submit(contact, "text", len(msg.Body))
		id, err = s.backend.SendText(ctx, contact, msg.Body)
	}
	if err != nil {
		events.Dispatch.Failed(contact, err)
		return Receipt{}, &BackendError{Message: err.Error(), Err: err}
	}
	receipt.MessageID = id
	events.Dispatch.Sent(contact, id)
	return receipt, nil
}
