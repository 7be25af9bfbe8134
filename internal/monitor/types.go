package monitor

import (
	"strings"
	"time"
)

// CoreReading is one CPU core's instantaneous usage as reported by a Provider.
type CoreReading struct {
	Name  string
	Usage float64
}

// InterfaceReading is one network interface's byte counters for the last tick.
type InterfaceReading struct {
	Name    string
	RxBytes uint64
	TxBytes uint64
}

// GPUReading is one record of GPU provider output.
type GPUReading struct {
	Index       int
	Name        string
	Usage       float64
	MemUsedMB   float64
	MemTotalMB  float64
	TempCelsius int
}

// MemoryStats contains RAM and swap totals in bytes.
type MemoryStats struct {
	Total     uint64 `json:"total" yaml:"total"`
	Used      uint64 `json:"used" yaml:"used"`
	Free      uint64 `json:"free" yaml:"free"`
	SwapTotal uint64 `json:"swap_total" yaml:"swap_total"`
	SwapUsed  uint64 `json:"swap_used" yaml:"swap_used"`
	SwapFree  uint64 `json:"swap_free" yaml:"swap_free"`
}

// UsedPercent returns RAM usage as a percentage, or 0 when Total is unknown.
func (m MemoryStats) UsedPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Used) / float64(m.Total) * 100
}

// SwapPercent returns swap usage as a percentage, or 0 without swap.
func (m MemoryStats) SwapPercent() float64 {
	if m.SwapTotal == 0 {
		return 0
	}
	return float64(m.SwapUsed) / float64(m.SwapTotal) * 100
}

// ProcessInfo is one row of the process table.
type ProcessInfo struct {
	PID    uint32  `json:"pid" yaml:"pid"`
	Name   string  `json:"name" yaml:"name"`
	CPU    float64 `json:"cpu" yaml:"cpu"`
	Memory uint64  `json:"memory" yaml:"memory"`
	Status string  `json:"status" yaml:"status"`
}

// Sample is everything collected in one tick, before it is applied to State.
// GPUs is nil when the GPU source is unavailable.
type Sample struct {
	Time       time.Time
	Cores      []CoreReading
	Memory     MemoryStats
	Interfaces []InterfaceReading
	Processes  []ProcessInfo
	GPUs       []GPUReading
}

// SortColumn identifies the process table column used for ordering.
type SortColumn int

const (
	SortPID SortColumn = iota
	SortName
	SortCPU
	SortMemory
)

// ParseSortColumn maps pid, name, cpu, mem and memory (any case) to a column.
// Anything else sorts by CPU.
func ParseSortColumn(s string) SortColumn {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pid":
		return SortPID
	case "name":
		return SortName
	case "mem", "memory":
		return SortMemory
	default:
		return SortCPU
	}
}

// String returns the column's display name.
func (c SortColumn) String() string {
	switch c {
	case SortPID:
		return "pid"
	case SortName:
		return "name"
	case SortMemory:
		return "memory"
	default:
		return "cpu"
	}
}
