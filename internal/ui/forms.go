package ui

import (
	"path/filepath"

	"github.com/atomicstack/walink/internal/dispatch"
	"github.com/atomicstack/walink/internal/media"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field int

const (
	fieldContact field = iota
	fieldBody
	fieldAttach
	fieldSend
	fieldCount
)

// form holds the compose fields of the messaging view.
type form struct {
	contact    textinput.Model
	body       textinput.Model
	attachment string
	focus      field
}

func newForm() *form {
	contact := textinput.New()
	contact.Placeholder = "+1 555 0100"
	contact.Prompt = ""
	contact.CharLimit = 32

	body := textinput.New()
	body.Placeholder = "Type a message"
	body.Prompt = ""
	body.CharLimit = 4096

	for _, in := range []*textinput.Model{&contact, &body} {
		if styles.FocusedField != nil {
			in.TextStyle = *styles.FocusedField
		}
		if styles.Placeholder != nil {
			in.PlaceholderStyle = *styles.Placeholder
		}
	}
	f := &form{contact: contact, body: body}
	f.focusField(fieldContact)
	return f
}

// message builds the outbound message from the current field values.
func (f *form) message() dispatch.Message {
	return dispatch.Message{
		Contact:    f.contact.Value(),
		Body:       f.body.Value(),
		Attachment: f.attachment,
	}
}

// clearSent resets body and attachment after a successful send. Fields
// edited while the send was in flight no longer match sent and are kept.
// The contact is kept for follow-up messages.
func (f *form) clearSent(sent dispatch.Message) {
	if f.body.Value() == sent.Body {
		f.body.SetValue("")
	}
	if f.attachment == sent.Attachment {
		f.attachment = ""
	}
	if f.focus == fieldAttach || f.focus == fieldSend {
		f.focusField(fieldBody)
	}
}

func (f *form) attach(path string) {
	f.attachment = path
}

func (f *form) detach() bool {
	if f.attachment == "" {
		return false
	}
	f.attachment = ""
	return true
}

func (f *form) attachmentLabel() string {
	if f.attachment == "" {
		return ""
	}
	return filepath.Base(f.attachment) + " (" + media.Classify(f.attachment).String() + ")"
}

func (f *form) focusField(target field) tea.Cmd {
	f.focus = (target%fieldCount + fieldCount) % fieldCount
	f.contact.Blur()
	f.body.Blur()
	switch f.focus {
	case fieldContact:
		return f.contact.Focus()
	case fieldBody:
		return f.body.Focus()
	}
	return nil
}

func (f *form) next() tea.Cmd { return f.focusField(f.focus + 1) }

func (f *form) prev() tea.Cmd { return f.focusField(f.focus - 1) }

// update forwards msg to the focused text input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldContact:
		f.contact, cmd = f.contact.Update(msg)
	case fieldBody:
		f.body, cmd = f.body.Update(msg)
	}
	return cmd
}

func (f *form) setWidth(width int) {
	w := width - 12
	if w < 10 {
		w = 0
	}
	f.contact.Width = w
	f.body.Width = w
}

// staticCursor stops the blinking cursors.
func (f *form) staticCursor() {
	f.contact.Cursor.SetMode(cursor.CursorStatic)
	f.body.Cursor.SetMode(cursor.CursorStatic)
}
