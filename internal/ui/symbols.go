package ui

// Unicode symbols used across the dashboard and CLI output.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolPinned  = "●"
	SymbolPending = "○"
	SymbolPaused  = "‖"
	SymbolAsc     = "▲"
	SymbolDesc    = "▼"
	SymbolCursor  = "›"
)
