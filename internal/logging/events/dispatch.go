package events

import "github.com/atomicstack/walink/internal/logging"

type DispatchTracer struct{}

var Dispatch = DispatchTracer{}

func (DispatchTracer) Rejected(reason string) {
	logging.Trace("dispatch.rejected", map[string]interface{}{"reason": reason})
}

func (DispatchTracer) NotReady(contact string) {
	logging.Trace("dispatch.not-ready", map[string]interface{}{"contact": contact})
}

func (DispatchTracer) Submit(contact, kind string, bodyLen int) {
	logging.Trace("dispatch.submit", map[string]interface{}{"contact": contact, "kind": kind, "bodyLen": bodyLen})
}

func (DispatchTracer) Sent(contact, id string) {
	logging.Trace("dispatch.sent", map[string]interface{}{"contact": contact, "id": id})
}

func (DispatchTracer) Failed(contact string, err error) {
	if err == nil {
		return
	}
	logging.Trace("dispatch.failed", map[string]interface{}{"contact": contact, "error": err.Error()})
}
