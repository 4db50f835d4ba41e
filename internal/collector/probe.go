package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/rileyhilliard/statdash/internal/stats"
)

// NetCounter is a cumulative byte counter for one interface.
type NetCounter struct {
	Name      string
	BytesSent uint64
	BytesRecv uint64
}

// MemoryUsage is a virtual memory reading.
type MemoryUsage struct {
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// Probe reads raw values from the operating system.
type Probe interface {
	CPUPercent(ctx context.Context) (total float64, perCore []float64, err error)
	CPUInfo(ctx context.Context) ([]stats.CPUInfo, error)
	Memory(ctx context.Context) (MemoryUsage, error)
	Host(ctx context.Context) (info stats.OSInfo, uptime uint64, err error)
	Filesystems(ctx context.Context) ([]stats.Filesystem, error)
	DiskIO(ctx context.Context) (read, write uint64, err error)
	NetCounters(ctx context.Context) ([]NetCounter, error)
	Processes(ctx context.Context) ([]stats.ProcessRecord, error)
}

// SystemProbe implements Probe with gopsutil.
type SystemProbe struct{}

// CPUPercent reports usage since the previous call. gopsutil primes its
// baseline at package init, so the first call is usable too.
func (SystemProbe) CPUPercent(ctx context.Context) (float64, []float64, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, nil, err
	}
	var t float64
	if len(total) > 0 {
		t = total[0]
	}

	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		perCore = nil
	}
	return t, perCore, nil
}

func (SystemProbe) CPUInfo(ctx context.Context) ([]stats.CPUInfo, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, nil
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores == 0 {
		cores = len(infos)
	}

	first := infos[0]
	return []stats.CPUInfo{{
		Model:        first.ModelName,
		Cores:        int32(cores),
		MaxFrequency: fmt.Sprintf("%.2f GHz", first.Mhz/1000),
	}}, nil
}

func (SystemProbe) Memory(ctx context.Context) (MemoryUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryUsage{}, err
	}
	return MemoryUsage{Total: vm.Total, Used: vm.Used, UsedPercent: vm.UsedPercent}, nil
}

func (SystemProbe) Host(ctx context.Context) (stats.OSInfo, uint64, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return stats.OSInfo{}, 0, err
	}
	distro := info.Platform
	if info.PlatformVersion != "" {
		distro += " " + info.PlatformVersion
	}
	return stats.OSInfo{
		Distro:       distro,
		Name:         info.OS,
		Architecture: info.KernelArch,
	}, info.Uptime, nil
}

func (SystemProbe) Filesystems(ctx context.Context) ([]stats.Filesystem, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	var out []stats.Filesystem
	seen := make(map[string]bool)
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		out = append(out, stats.Filesystem{
			Mountpoint: p.Mountpoint,
			Used:       usage.Used,
			Total:      usage.Total,
			UsedPerc:   usage.UsedPercent,
		})
	}
	return out, nil
}

func (SystemProbe) DiskIO(ctx context.Context) (uint64, uint64, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	var read, write uint64
	for _, c := range counters {
		read += c.ReadBytes
		write += c.WriteBytes
	}
	return read, write, nil
}

func (SystemProbe) NetCounters(ctx context.Context) ([]NetCounter, error) {
	counters, err := gopsnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]NetCounter, 0, len(counters))
	for _, c := range counters {
		out = append(out, NetCounter{Name: c.Name, BytesSent: c.BytesSent, BytesRecv: c.BytesRecv})
	}
	return out, nil
}

// Processes lists every process it can read. Processes that exit mid-scan or
// deny access to their name are skipped; other unreadable fields stay zero.
func (SystemProbe) Processes(ctx context.Context) ([]stats.ProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]stats.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}

		rec := stats.ProcessRecord{PID: p.Pid, Name: name}
		rec.Username, _ = p.UsernameWithContext(ctx)
		rec.CPU, _ = p.CPUPercentWithContext(ctx)
		if memPct, err := p.MemoryPercentWithContext(ctx); err == nil {
			rec.Memory = float64(memPct)
		}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			rec.Virt = mi.VMS
			rec.Res = mi.RSS
		}
		if times, err := p.TimesWithContext(ctx); err == nil && times != nil {
			rec.CPUTime = times.User + times.System
		}
		rec.Threads, _ = p.NumThreadsWithContext(ctx)
		rec.Nice, _ = p.NiceWithContext(ctx)
		if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
			rec.Status = statusCode(status[0])
		}

		out = append(out, rec)
	}
	return out, nil
}

// statusCode shortens gopsutil's status names to the ps(1) letters.
func statusCode(status string) string {
	switch status {
	case process.Running:
		return "R"
	case process.Sleep:
		return "S"
	case process.Blocked:
		return "D"
	case process.Idle:
		return "I"
	case process.Stop:
		return "T"
	case process.Zombie:
		return "Z"
	case process.Wait:
		return "W"
	case process.Lock:
		return "L"
	case "":
		return "?"
	default:
		return status
	}
}
