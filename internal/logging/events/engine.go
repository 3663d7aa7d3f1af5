package events

import "github.com/atomicstack/walink/internal/logging"

type EngineTracer struct{}

var Engine = EngineTracer{}

func (EngineTracer) Emit(name string) {
	logging.Trace("engine.emit", map[string]interface{}{"event": name})
}

func (EngineTracer) Subscribe(name string) {
	logging.Trace("engine.subscribe", map[string]interface{}{"event": name})
}

func (EngineTracer) Unsubscribe(name string) {
	logging.Trace("engine.unsubscribe", map[string]interface{}{"event": name})
}

// Log forwards protocol-library log lines when tracing is on.
func (EngineTracer) Log(module, level, message string) {
	logging.Trace("engine.log", map[string]interface{}{"module": module, "level": level, "msg": message})
}
