// Package stats defines the JSON document served at /stats and shared by
// the collector, the HTTP source and the dashboard.
package stats

import "time"

// ProcessRecord is one row of the process table.
type ProcessRecord struct {
	PID      int32   `json:"pid"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	CPU      float64 `json:"cpu"`
	Memory   float64 `json:"memory"`
	Virt     uint64  `json:"virt"`
	Res      uint64  `json:"res"`
	CPUTime  float64 `json:"cpu_time"`
	Threads  int32   `json:"threads"`
	Nice     int32   `json:"nice"`
	Status   string  `json:"status"`
}

// CPUInfo describes one CPU package.
type CPUInfo struct {
	Model        string `json:"model"`
	Cores        int32  `json:"cores"`
	MaxFrequency string `json:"maxFrequency"`
}

// OSInfo describes the host operating system.
type OSInfo struct {
	Distro       string `json:"distro"`
	Name         string `json:"name"`
	Architecture string `json:"architecture"`
}

// NetworkInterface carries per-interface throughput already scaled to a unit.
type NetworkInterface struct {
	Name    string  `json:"name"`
	RxSpeed float64 `json:"rx_speed"`
	RxUnit  string  `json:"rx_unit"`
	TxSpeed float64 `json:"tx_speed"`
	TxUnit  string  `json:"tx_unit"`

	// Raw counters, used by the CSV metrics log.
	BytesSent uint64 `json:"bytes_sent,omitempty"`
	BytesRecv uint64 `json:"bytes_recv,omitempty"`
}

// Filesystem is one mounted filesystem's usage.
type Filesystem struct {
	Mountpoint string  `json:"mountpoint"`
	Used       uint64  `json:"used"`
	Total      uint64  `json:"total"`
	UsedPerc   float64 `json:"used_perc"`
}

// Snapshot is one point-in-time payload. Optional sections are nil when the
// source did not report them.
type Snapshot struct {
	Timestamp      time.Time          `json:"timestamp"`
	CPUUsage       float64            `json:"cpu_usage"`
	CPUInfo        []CPUInfo          `json:"cpu_info"`
	MemTotal       uint64             `json:"mem_total"`
	MemUsed        uint64             `json:"mem_used"`
	MemUsedPercent float64            `json:"mem_used_percent"`
	OS             OSInfo             `json:"os"`
	Uptime         uint64             `json:"uptime"`
	Processes      []ProcessRecord    `json:"processes"`
	PerCoreUsage   []float64          `json:"cpu_per_core_usage,omitempty"`
	Network        []NetworkInterface `json:"network,omitempty"`
	Filesystems    []Filesystem       `json:"filesystems,omitempty"`

	// Cumulative disk counters since boot.
	DiskReadBytes  uint64 `json:"disk_read_bytes,omitempty"`
	DiskWriteBytes uint64 `json:"disk_write_bytes,omitempty"`
}

// PrimaryCPU returns the first CPU entry, or a zero value when none was reported.
func (s *Snapshot) PrimaryCPU() CPUInfo {
	if s == nil || len(s.CPUInfo) == 0 {
		return CPUInfo{}
	}
	return s.CPUInfo[0]
}

// NetTotals sums raw byte counters across interfaces.
func (s *Snapshot) NetTotals() (sent, recv uint64) {
	if s == nil {
		return 0, 0
	}
	for _, iface := range s.Network {
		sent += iface.BytesSent
		recv += iface.BytesRecv
	}
	return sent, recv
}
