package proctable

// PinSet is an insertion-ordered set of pids. The zero value is empty.
// Methods never mutate the receiver; Toggle returns a new set.
type PinSet struct {
	pids []int32
}

// NewPinSet builds a set from pids, dropping duplicates and keeping first occurrences.
func NewPinSet(pids ...int32) PinSet {
	var s PinSet
	for _, pid := range pids {
		if !s.Contains(pid) {
			s.pids = append(s.pids, pid)
		}
	}
	return s
}

// Contains reports whether pid is pinned.
func (s PinSet) Contains(pid int32) bool {
	for _, p := range s.pids {
		if p == pid {
			return true
		}
	}
	return false
}

// Toggle removes pid if present, otherwise appends it.
func (s PinSet) Toggle(pid int32) PinSet {
	if s.Contains(pid) {
		var out []int32
		for _, p := range s.pids {
			if p != pid {
				out = append(out, p)
			}
		}
		return PinSet{pids: out}
	}

	out := make([]int32, len(s.pids), len(s.pids)+1)
	copy(out, s.pids)
	return PinSet{pids: append(out, pid)}
}

// Len returns the number of pinned pids.
func (s PinSet) Len() int {
	return len(s.pids)
}

// PIDs returns a copy of the pinned pids in insertion order.
func (s PinSet) PIDs() []int32 {
	if len(s.pids) == 0 {
		return nil
	}
	out := make([]int32, len(s.pids))
	copy(out, s.pids)
	return out
}

// Equal reports whether both sets have the same members. Order is ignored:
// re-pinning a pid moves it to the end without changing membership.
func (s PinSet) Equal(other PinSet) bool {
	if len(s.pids) != len(other.pids) {
		return false
	}
	for _, p := range s.pids {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// lookup returns a membership map for bulk tests.
func (s PinSet) lookup() map[int32]struct{} {
	m := make(map[int32]struct{}, len(s.pids))
	for _, p := range s.pids {
		m[p] = struct{}{}
	}
	return m
}
