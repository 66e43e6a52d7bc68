// Package monitor implements the dashboard's presentation loop.
//
// The TUI is a Bubble Tea program with two duties sharing a state.Store:
//
//   - Input: key presses move the host cursor, pick a metric kind, or quit.
//     Quit cancels the process-wide context so samplers stop too.
//   - Render: a fixed tick re-reads a store snapshot and paints it. Rendering
//     never writes to the store.
//
// The layout is a header with the host name and position, a selector with
// the four metric kinds, the selected metric's summary (or "NO DATA"), the
// host's most recent error, and a help line. With no hosts the body is the
// literal text "NO SERVERS DATA".
//
// Plain mode skips the alternate screen and prints every host's summaries on
// each tick, for pipes and dumb terminals.
//
// # Keyboard Shortcuts
//
//	n, →, Tab          - Next host (wraps)
//	l, p, ←, Shift+Tab - Previous host (wraps)
//	1-4                - MEM, CPU, DISK, NET
//	q, Esc, Ctrl+C     - Quit
package monitor
