// Package source implements the metric providers the dashboard reads from:
// the local OS through gopsutil, and NVIDIA GPUs through nvidia-smi.
package source

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/rileyhilliard/nexmon/internal/logger"
	"github.com/rileyhilliard/nexmon/internal/monitor"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// Hostname returns the machine's host name, or "" when it can't be read.
func Hostname(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return ""
	}
	return info.Hostname
}

// System reads local host metrics with gopsutil. Refresh takes the reading;
// the accessors return it. Not safe for concurrent use.
type System struct {
	log logger.Logger

	cores      []monitor.CoreReading
	memory     monitor.MemoryStats
	interfaces []monitor.InterfaceReading
	processes  []monitor.ProcessInfo

	// Cumulative counters from the previous refresh, for per-tick deltas.
	lastNet map[string]netCounters
	// Process handles are kept across ticks so CPU percent is measured
	// against the previous refresh instead of process lifetime.
	procs map[int32]*process.Process
}

type netCounters struct {
	rx, tx uint64
}

// NewSystem creates a gopsutil backed provider.
func NewSystem(log logger.Logger) *System {
	if log == nil {
		log = logger.Noop()
	}
	return &System{
		log:     log,
		lastNet: make(map[string]netCounters),
		procs:   make(map[int32]*process.Process),
	}
}

// Refresh reads every counter. Any failure of a required source fails the
// whole refresh.
func (s *System) Refresh(ctx context.Context) error {
	percents, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return errors.Wrap(err, "Couldn't read CPU times")
	}
	s.cores = coreReadings(percents)

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return errors.Wrap(err, "Couldn't read memory info")
	}
	stats := monitor.MemoryStats{
		Total: vm.Total,
		Used:  vm.Used,
		Free:  vm.Free,
	}
	// Hosts without swap can fail here; that isn't fatal.
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		stats.SwapTotal = sw.Total
		stats.SwapUsed = sw.Used
		stats.SwapFree = sw.Free
	} else {
		s.log.Debug("swap unavailable: %v", err)
	}
	s.memory = stats

	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return errors.Wrap(err, "Couldn't read network counters")
	}
	s.interfaces = s.netDeltas(counters)

	procs, err := s.readProcesses(ctx)
	if err != nil {
		return err
	}
	s.processes = procs

	return nil
}

// Cores returns per-core usage from the last refresh.
func (s *System) Cores(ctx context.Context) ([]monitor.CoreReading, error) {
	return s.cores, nil
}

// Memory returns memory totals from the last refresh.
func (s *System) Memory(ctx context.Context) (monitor.MemoryStats, error) {
	return s.memory, nil
}

// Interfaces returns bytes received and sent per interface since the previous refresh.
func (s *System) Interfaces(ctx context.Context) ([]monitor.InterfaceReading, error) {
	return s.interfaces, nil
}

// Processes returns the process list from the last refresh.
func (s *System) Processes(ctx context.Context) ([]monitor.ProcessInfo, error) {
	return s.processes, nil
}

func coreReadings(percents []float64) []monitor.CoreReading {
	cores := make([]monitor.CoreReading, len(percents))
	for i, p := range percents {
		cores[i] = monitor.CoreReading{Name: fmt.Sprintf("cpu%d", i), Usage: p}
	}
	return cores
}

// netDeltas converts cumulative counters to per-refresh deltas. The first
// sighting of an interface and any counter reset report 0.
func (s *System) netDeltas(counters []net.IOCountersStat) []monitor.InterfaceReading {
	readings := make([]monitor.InterfaceReading, 0, len(counters))
	next := make(map[string]netCounters, len(counters))

	for _, c := range counters {
		cur := netCounters{rx: c.BytesRecv, tx: c.BytesSent}
		next[c.Name] = cur

		r := monitor.InterfaceReading{Name: c.Name}
		if prev, ok := s.lastNet[c.Name]; ok {
			r.RxBytes = counterDelta(prev.rx, cur.rx)
			r.TxBytes = counterDelta(prev.tx, cur.tx)
		}
		readings = append(readings, r)
	}

	s.lastNet = next
	return readings
}

func counterDelta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func (s *System) readProcesses(ctx context.Context) ([]monitor.ProcessInfo, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Couldn't list processes")
	}

	next := make(map[int32]*process.Process, len(pids))
	infos := make([]monitor.ProcessInfo, 0, len(pids))

	for _, pid := range pids {
		p, ok := s.procs[pid]
		if !ok {
			p, err = process.NewProcessWithContext(ctx, pid)
			if err != nil {
				// Exited between listing and opening.
				continue
			}
		}

		info, ok := processInfo(ctx, p)
		if !ok {
			continue
		}
		next[pid] = p
		infos = append(infos, info)
	}

	s.procs = next
	return infos, nil
}

// processInfo reads one process. Returns false if it vanished mid-read.
func processInfo(ctx context.Context, p *process.Process) (monitor.ProcessInfo, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return monitor.ProcessInfo{}, false
	}

	info := monitor.ProcessInfo{
		PID:  uint32(p.Pid),
		Name: name,
	}

	if pct, err := p.PercentWithContext(ctx, 0); err == nil {
		info.CPU = pct
	}
	if m, err := p.MemoryInfoWithContext(ctx); err == nil && m != nil {
		info.Memory = m.RSS
	}
	if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
		info.Status = st[0]
	}

	return info, true
}
