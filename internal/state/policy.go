package state

import "time"

const (
	DefaultSettleDelay   = 2000 * time.Millisecond
	DefaultRetryInterval = 2000 * time.Millisecond
	DefaultMaxRetries    = 5
)

// Policy controls when readiness is queried after an auth-success event.
// The first query runs SettleDelay after the event; while the backend keeps
// answering false, up to MaxRetries further queries follow at RetryInterval.
// MaxRetries of zero performs a single query and then waits for another
// auth-success event.
type Policy struct {
	SettleDelay   time.Duration
	RetryInterval time.Duration
	MaxRetries    int
}

// DefaultPolicy returns the stock readiness policy.
func DefaultPolicy() Policy {
	return Policy{
		SettleDelay:   DefaultSettleDelay,
		RetryInterval: DefaultRetryInterval,
		MaxRetries:    DefaultMaxRetries,
	}
}

func (p Policy) normalized() Policy {
	if p.SettleDelay < 0 {
		p.SettleDelay = 0
	}
	if p.RetryInterval <= 0 {
		p.RetryInterval = p.SettleDelay
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	return p
}
