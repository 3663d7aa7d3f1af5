package state

import "fmt"

const (
	StageInitialize = "initialize"
	StageSubscribe  = "subscribe"
)

// SetupError reports that the session could not be started. It is fatal
// until the process restarts.
type SetupError struct {
	Stage string
	Err   error
}

func (e *SetupError) Error() string {
	switch e.Stage {
	case StageSubscribe:
		return fmt.Sprintf("Failed to listen for WhatsApp events: %v", e.Err)
	default:
		return fmt.Sprintf("Failed to initialize WhatsApp: %v", e.Err)
	}
}

func (e *SetupError) Unwrap() error { return e.Err }
