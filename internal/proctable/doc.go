// Package proctable holds the process-table state engine behind the dashboard.
//
// Everything here is a pure function of its inputs so it can be tested
// without a terminal:
//
//	Store      - latest snapshot, replaced wholesale on each poll
//	ViewState  - sort key, direction and pinned pids; survives polls
//	Sort       - stable ordering by one column
//	Partition  - split the ordered rows into pinned and unpinned tables
//	Render     - fixed column projection with formatted cells
//
// A render cycle is always Sort -> Partition -> format, so the pinned table
// follows the active sort order rather than the order pins were added.
package proctable
