package state

// Phase is the lifecycle stage of the linked session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseAwaitingScan
	PhaseAuthenticating
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseAwaitingScan:
		return "awaiting-scan"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Linking reports whether the phase belongs to the linking view.
func (p Phase) Linking() bool {
	return p < PhaseReady
}
