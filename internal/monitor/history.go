package monitor

import (
	"sync"

	"github.com/rileyhilliard/statdash/internal/stats"
)

// DefaultHistorySize is the number of samples kept per series, two minutes
// at the default 2s poll interval.
const DefaultHistorySize = 60

// History keeps recent CPU and memory percentages for sparklines.
type History struct {
	mu   sync.RWMutex
	size int
	cpu  *ringBuffer
	mem  *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history with the given capacity per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		cpu:  newRingBuffer(size),
		mem:  newRingBuffer(size),
	}
}

// Push records one snapshot. nil is ignored.
func (h *History) Push(s *stats.Snapshot) {
	if s == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.cpu.push(s.CPUUsage)
	h.mem.push(s.MemUsedPercent)
}

// CPU returns up to count of the most recent CPU samples, oldest first.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.getLast(count)
}

// Memory returns up to count of the most recent memory samples, oldest first.
func (h *History) Memory(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mem.getLast(count)
}

// Count returns the number of stored samples.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
