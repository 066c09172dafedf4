// Package ui contains the Bubble Tea program that renders the enhanced selects
// of a page in the terminal and forwards key presses to them.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function (key presses, window sizes, snapshots, action results).
//   - Key presses never touch the document directly. They become actions on a
//     Controller, queued and executed one at a time through the command bus so
//     the document sees them in the order they were typed.
//
// State ownership:
//   - Widget state lives in internal/ui/state.Field. The filter text is edited
//     locally for instant feedback; suggestions, selections and focus always
//     come from the latest snapshot.
//
// Backend interactions:
//   - An EventSource (normally a backend.Watcher) streams snapshots of the
//     document. Update waits for those events and hands them to applySnapshot,
//     which reconciles the fields with what the document now shows.
package ui
