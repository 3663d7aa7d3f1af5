package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomicstack/walink/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Request encapsulates one backend command invocation.
type Request struct {
	ID    string
	Label string
	Run   func(ctx context.Context) tea.Msg
}

// Bus runs backend commands as Bubble Tea commands. Every command shares
// the bus context, which Close cancels at teardown.
type Bus struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// New initialises a command bus instance.
func New() *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{ctx: ctx, cancel: cancel}
}

// Execute wraps req into a Bubble Tea command while emitting trace logs.
// A request without an ID is assigned a fresh one.
func (b *Bus) Execute(req Request) tea.Cmd {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Run == nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		msg := req.Run(b.ctx)
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}

// Close cancels the shared context. It is safe to call more than once.
func (b *Bus) Close() {
	b.once.Do(b.cancel)
}
