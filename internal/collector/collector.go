// Package collector builds stats.Snapshots from the local machine.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/stats"
)

const (
	DefaultCacheTTL     = 2 * time.Second
	DefaultMaxProcesses = 20
)

// Options tunes a Collector. Zero values fall back to the defaults.
type Options struct {
	// CacheTTL is how long a collected snapshot is reused. Negative disables caching.
	CacheTTL time.Duration

	// MaxProcesses keeps only the top N processes by CPU. Negative keeps all.
	MaxProcesses int

	Logger logger.Logger
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.MaxProcesses == 0 {
		o.MaxProcesses = DefaultMaxProcesses
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type netSample struct {
	counters map[string]NetCounter
	at       time.Time
}

// Collector gathers system metrics and caches the result for CacheTTL.
// It is safe for concurrent use; concurrent callers inside one TTL window
// share a single collection.
type Collector struct {
	probe Probe
	opts  Options

	mu       sync.Mutex
	cached   *stats.Snapshot
	cachedAt time.Time
	prevNet  *netSample
}

// New returns a Collector reading from the local OS.
func New(opts Options) *Collector {
	return NewWithProbe(SystemProbe{}, opts)
}

// NewWithProbe returns a Collector reading from p.
func NewWithProbe(p Probe, opts Options) *Collector {
	return &Collector{
		probe: p,
		opts:  opts.withDefaults(),
	}
}

// Collect returns a snapshot no older than CacheTTL. The returned snapshot is
// shared with other callers and must not be modified.
//
// CPU, memory or process listing failures fail the whole collection. Every
// other section is optional and is left empty when it can't be read.
func (c *Collector) Collect(ctx context.Context) (*stats.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	if c.cached != nil && c.opts.CacheTTL > 0 && now.Sub(c.cachedAt) < c.opts.CacheTTL {
		return c.cached, nil
	}

	snap, err := c.collect(ctx, now)
	if err != nil {
		return nil, err
	}

	c.cached = snap
	c.cachedAt = now
	return snap, nil
}

func (c *Collector) collect(ctx context.Context, now time.Time) (*stats.Snapshot, error) {
	log := c.opts.Logger
	snap := &stats.Snapshot{Timestamp: now.UTC()}

	total, perCore, err := c.probe.CPUPercent(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't read CPU usage", "")
	}
	snap.CPUUsage = total
	snap.PerCoreUsage = perCore

	memory, err := c.probe.Memory(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't read memory usage", "")
	}
	snap.MemTotal = memory.Total
	snap.MemUsed = memory.Used
	snap.MemUsedPercent = memory.UsedPercent

	procs, err := c.probe.Processes(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't list processes",
			"Run with enough privileges to read /proc")
	}
	snap.Processes = c.topProcesses(procs)

	if info, err := c.probe.CPUInfo(ctx); err != nil {
		log.Debug("cpu info unavailable: %v", err)
	} else {
		snap.CPUInfo = info
	}

	if osInfo, uptime, err := c.probe.Host(ctx); err != nil {
		log.Debug("host info unavailable: %v", err)
	} else {
		snap.OS = osInfo
		snap.Uptime = uptime
	}

	if fs, err := c.probe.Filesystems(ctx); err != nil {
		log.Debug("filesystems unavailable: %v", err)
	} else {
		snap.Filesystems = fs
	}

	if read, write, err := c.probe.DiskIO(ctx); err != nil {
		log.Debug("disk io unavailable: %v", err)
	} else {
		snap.DiskReadBytes = read
		snap.DiskWriteBytes = write
	}

	if counters, err := c.probe.NetCounters(ctx); err != nil {
		log.Debug("network counters unavailable: %v", err)
	} else {
		snap.Network = c.networkRates(counters, now)
	}

	log.Debug("collected %d processes (cpu %.1f%%, mem %.1f%%)", len(snap.Processes), snap.CPUUsage, snap.MemUsedPercent)
	return snap, nil
}

// topProcesses keeps the MaxProcesses busiest processes, highest CPU first.
func (c *Collector) topProcesses(procs []stats.ProcessRecord) []stats.ProcessRecord {
	ordered := proctable.Sort(procs, proctable.KeyCPU, false)
	if c.opts.MaxProcesses > 0 && len(ordered) > c.opts.MaxProcesses {
		ordered = ordered[:c.opts.MaxProcesses]
	}
	return ordered
}

// networkRates turns cumulative counters into per-second rates against the
// previous sample. The first sample, and interfaces with no previous counter,
// report zero.
func (c *Collector) networkRates(counters []NetCounter, now time.Time) []stats.NetworkInterface {
	prev := c.prevNet
	next := &netSample{counters: make(map[string]NetCounter, len(counters)), at: now}

	var elapsed float64
	if prev != nil {
		elapsed = now.Sub(prev.at).Seconds()
	}

	out := make([]stats.NetworkInterface, 0, len(counters))
	for _, cur := range counters {
		next.counters[cur.Name] = cur

		var rx, tx float64
		if prev != nil && elapsed > 0 {
			if old, ok := prev.counters[cur.Name]; ok {
				rx = rate(old.BytesRecv, cur.BytesRecv, elapsed)
				tx = rate(old.BytesSent, cur.BytesSent, elapsed)
			}
		}

		rxSpeed, rxUnit := ScaleRate(rx)
		txSpeed, txUnit := ScaleRate(tx)
		out = append(out, stats.NetworkInterface{
			Name:      cur.Name,
			RxSpeed:   rxSpeed,
			RxUnit:    rxUnit,
			TxSpeed:   txSpeed,
			TxUnit:    txUnit,
			BytesSent: cur.BytesSent,
			BytesRecv: cur.BytesRecv,
		})
	}

	c.prevNet = next
	return out
}

// rate handles counter resets by reporting zero.
func rate(old, cur uint64, seconds float64) float64 {
	if cur < old {
		return 0
	}
	return float64(cur-old) / seconds
}

var rateUnits = []string{"B/s", "KB/s", "MB/s", "GB/s"}

// ScaleRate picks the largest unit that keeps the value at or above 1.
func ScaleRate(bytesPerSec float64) (float64, string) {
	v := bytesPerSec
	i := 0
	for v >= 1024 && i < len(rateUnits)-1 {
		v /= 1024
		i++
	}
	return v, rateUnits[i]
}
