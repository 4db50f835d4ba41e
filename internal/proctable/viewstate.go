package proctable

// ViewState is the client-local table state. Polls never touch it; only
// user actions produce a new ViewState.
type ViewState struct {
	SortKey   SortKey
	Ascending bool
	Pins      PinSet
}

// DefaultViewState sorts by CPU, highest first, with nothing pinned.
func DefaultViewState() ViewState {
	return ViewState{
		SortKey:   KeyCPU,
		Ascending: false,
	}
}

// ToggleSort applies a header click. Clicking the active column flips the
// direction; clicking another column activates it ascending, with no memory
// of the direction it had last time.
func (v ViewState) ToggleSort(key SortKey) ViewState {
	if v.SortKey == key {
		v.Ascending = !v.Ascending
		return v
	}
	v.SortKey = key
	v.Ascending = true
	return v
}

// TogglePin pins or unpins pid.
func (v ViewState) TogglePin(pid int32) ViewState {
	v.Pins = v.Pins.Toggle(pid)
	return v
}

// ClearPins unpins everything, including pids that are no longer running.
func (v ViewState) ClearPins() ViewState {
	v.Pins = PinSet{}
	return v
}

// Direction returns "asc" or "desc".
func (v ViewState) Direction() string {
	if v.Ascending {
		return "asc"
	}
	return "desc"
}
