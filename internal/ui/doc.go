// Package ui contains the Bubble Tea program that links a WhatsApp account
// and sends messages through it. Model focuses on message orchestration while
// dedicated files own input, rendering, the attachment picker and backend
// plumbing.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg
//     type is routed through a typed handler registry; anything unhandled
//     goes to the focused form field once the session is ready.
//   - Key presses (input.go) quit, drive the picker, or edit the compose
//     form. The linking view ignores everything but ctrl+c.
//
// State ownership:
//   - The session phase lives in internal/state.Coordinator. The model never
//     writes phase itself; it feeds the coordinator events and command
//     results and renders whatever phase comes back. The view is picked by
//     phase alone.
//   - The picker reuses internal/ui/state.Level for filtering and viewport
//     handling.
//
// Backend interactions:
//   - A backend.Watcher queues engine events; a re-arming command waits on
//     it and hands each event to applyBackendEvent.
//   - Every engine command runs through internal/ui/command.Bus and comes
//     back as a typed result message. The settle delay before a readiness
//     check and notice expiry are delayed messages carrying a token, so a
//     stale timer is recognised and dropped.
package ui
