package proctable

import "github.com/rileyhilliard/statdash/internal/stats"

// Partition splits ordered into rows whose pid is pinned and the rest.
// Both results keep the input order and together hold every input row once.
func Partition(ordered []stats.ProcessRecord, pins PinSet) (pinned, unpinned []stats.ProcessRecord) {
	pinnedSet := pins.lookup()

	for _, rec := range ordered {
		if _, ok := pinnedSet[rec.PID]; ok {
			pinned = append(pinned, rec)
		} else {
			unpinned = append(unpinned, rec)
		}
	}
	return pinned, unpinned
}
