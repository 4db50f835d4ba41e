package proctable

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/statdash/internal/stats"
)

// Sort returns a stably ordered copy of records by key. records is not modified.
//
// Descending order swaps the comparator operands instead of reversing the
// result, so equal rows keep their input order in both directions. Polls
// re-sort every cycle and a tie that flips would make rows jump.
func Sort(records []stats.ProcessRecord, key SortKey, ascending bool) []stats.ProcessRecord {
	out := make([]stats.ProcessRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return compare(&out[i], &out[j], key) < 0
		}
		return compare(&out[j], &out[i], key) < 0
	})
	return out
}

// compare orders a and b by key ascending and returns -1, 0 or 1.
func compare(a, b *stats.ProcessRecord, key SortKey) int {
	switch key {
	case KeyName:
		return compareText(a.Name, b.Name)
	case KeyUsername:
		return compareText(a.Username, b.Username)
	case KeyStatus:
		return compareText(a.Status, b.Status)
	case KeyCPU:
		return compareFloat(a.CPU, b.CPU)
	case KeyMemory:
		return compareFloat(a.Memory, b.Memory)
	case KeyCPUTime:
		return compareFloat(a.CPUTime, b.CPUTime)
	case KeyVirt:
		return compareUint(a.Virt, b.Virt)
	case KeyRes:
		return compareUint(a.Res, b.Res)
	case KeyPID:
		return compareInt(int64(a.PID), int64(b.PID))
	case KeyThreads:
		return compareInt(int64(a.Threads), int64(b.Threads))
	case KeyNice:
		return compareInt(int64(a.Nice), int64(b.Nice))
	default:
		return 0
	}
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
