package events

import (
	"time"

	"github.com/atomicstack/walink/internal/logging"
)

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Phase(from, to, reason string) {
	logging.Trace("session.phase", map[string]interface{}{"from": from, "to": to, "reason": reason})
}

func (SessionTracer) QRCode(length int, rotation int) {
	logging.Trace("session.qr", map[string]interface{}{"length": length, "rotation": rotation})
}

func (SessionTracer) QRIgnored(phase string) {
	logging.Trace("session.qr.ignored", map[string]interface{}{"phase": phase})
}

func (SessionTracer) AuthIgnored(phase string) {
	logging.Trace("session.auth.ignored", map[string]interface{}{"phase": phase})
}

func (SessionTracer) ReadinessScheduled(token uint64, attempt int, delay time.Duration) {
	logging.Trace("session.readiness.scheduled", map[string]interface{}{
		"token":   token,
		"attempt": attempt,
		"delayMs": delay.Milliseconds(),
	})
}

func (SessionTracer) Readiness(token uint64, ready bool, err error) {
	payload := map[string]interface{}{"token": token, "ready": ready}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("session.readiness", payload)
}

func (SessionTracer) ReadinessStale(token uint64) {
	logging.Trace("session.readiness.stale", map[string]interface{}{"token": token})
}

func (SessionTracer) SetupFailed(stage string, err error) {
	if err == nil {
		return
	}
	logging.Trace("session.setup.failed", map[string]interface{}{"stage": stage, "error": err.Error()})
}

func (SessionTracer) Closed() {
	logging.Trace("session.closed", nil)
}
