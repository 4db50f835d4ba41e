// Package monitor implements the statdash terminal dashboard.
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: the snapshot store, the client-local view state (sort key,
//     direction, pins), poll bookkeeping and layout
//   - Update: keys, timer ticks and poll results
//   - View: the header, system summary boxes and the process tables
//
// # Message Flow
//
// Two timers run independently:
//
//  1. pollTickMsg fires every refresh interval while auto-refresh is on.
//     Each tick carries the generation it was armed in; toggling
//     auto-refresh bumps the generation so stale ticks are dropped.
//  2. clockTickMsg fires every second and is always re-armed, so the
//     header clock keeps moving when polls fail or are paused.
//
// Timer ticks and the r key share requestPoll. Under the serialize policy a
// request is dropped while another is in flight; under overlap every
// request runs and responses are applied in arrival order.
//
// A snapshotMsg with an error keeps the previous snapshot and view state
// and shows the error in the header. A successful one replaces the whole
// snapshot and re-renders through proctable.Render.
//
// # Keyboard Shortcuts
//
//	←/→         - Focus previous/next sortable column
//	s, Enter    - Sort by the focused column (again to flip direction)
//	1-9, 0      - Sort by the nth sortable column
//	↑/↓, j/k    - Select a process
//	Space, p    - Pin or unpin the selected process
//	r           - Refresh now
//	a           - Toggle auto-refresh (saved between runs)
//	e           - Export the process table to CSV
//	?           - Toggle help
//	q, Ctrl+C   - Quit
package monitor
