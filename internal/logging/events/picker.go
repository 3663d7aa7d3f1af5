package events

import "github.com/atomicstack/walink/internal/logging"

type PickerTracer struct{}

type pickerReason string

const (
	PickerReasonEscape pickerReason = "escape"
	PickerReasonError  pickerReason = "error"
)

var Picker = PickerTracer{}

func (PickerTracer) Open(dir string, entries int) {
	logging.Trace("picker.open", map[string]interface{}{"dir": dir, "entries": entries})
}

func (PickerTracer) Select(path string) {
	logging.Trace("picker.select", map[string]interface{}{"path": path})
}

func (PickerTracer) Cancel(reason pickerReason) {
	logging.Trace("picker.cancel", map[string]interface{}{"reason": string(reason)})
}

func (PickerTracer) Filter(dir, filter string) {
	logging.Trace("picker.filter", map[string]interface{}{"dir": dir, "filter": filter})
}
