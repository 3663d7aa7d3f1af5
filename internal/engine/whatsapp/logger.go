package whatsapp

import (
	"fmt"

	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/logging/events"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// logger routes whatsmeow's log lines into the walink log: errors always,
// everything else only as trace entries.
type logger struct {
	module string
}

func newLogger(module string) logger {
	return logger{module: module}
}

func (l logger) Errorf(msg string, args ...interface{}) {
	logging.Errorf("%s: %s", l.module, fmt.Sprintf(msg, args...))
	events.Engine.Log(l.module, "ERROR", fmt.Sprintf(msg, args...))
}

func (l logger) Warnf(msg string, args ...interface{}) {
	events.Engine.Log(l.module, "WARN", fmt.Sprintf(msg, args...))
}

func (l logger) Infof(msg string, args ...interface{}) {
	events.Engine.Log(l.module, "INFO", fmt.Sprintf(msg, args...))
}

func (l logger) Debugf(msg string, args ...interface{}) {
	if !logging.TraceEnabled() {
		return
	}
	events.Engine.Log(l.module, "DEBUG", fmt.Sprintf(msg, args...))
}

func (l logger) Sub(module string) waLog.Logger {
	return logger{module: l.module + "/" + module}
}
