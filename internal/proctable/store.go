package proctable

import (
	"time"

	"github.com/rileyhilliard/statdash/internal/stats"
)

// Store holds the latest snapshot. A new snapshot replaces the previous one
// entirely; there is no reconciliation between polls.
type Store struct {
	snapshot  *stats.Snapshot
	updatedAt time.Time
	polls     int
}

// Replace swaps in s as the current snapshot. A nil s is ignored so a failed
// poll can never blank out the last good data.
func (st *Store) Replace(s *stats.Snapshot, at time.Time) {
	if s == nil {
		return
	}
	st.snapshot = s
	st.updatedAt = at
	st.polls++
}

// Snapshot returns the current snapshot, or nil before the first poll.
func (st *Store) Snapshot() *stats.Snapshot {
	return st.snapshot
}

// Records returns a copy of the current snapshot's process rows.
func (st *Store) Records() []stats.ProcessRecord {
	if st.snapshot == nil {
		return nil
	}
	out := make([]stats.ProcessRecord, len(st.snapshot.Processes))
	copy(out, st.snapshot.Processes)
	return out
}

// UpdatedAt is when the current snapshot was stored.
func (st *Store) UpdatedAt() time.Time {
	return st.updatedAt
}

// Loaded reports whether any snapshot has been stored.
func (st *Store) Loaded() bool {
	return st.snapshot != nil
}

// Polls counts successful replacements.
func (st *Store) Polls() int {
	return st.polls
}
