package monitor

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/rileyhilliard/nexmon/internal/logger"
)

// Engine turns provider readings into State updates. Collect does the I/O and
// may run off the UI goroutine; Apply only mutates State and must run on the
// goroutine that owns it.
type Engine struct {
	provider Provider
	gpu      GPUProvider
	log      logger.Logger
	now      func() time.Time
}

// NewEngine creates an engine. gpu may be nil, in which case the GPU panel is
// always unavailable.
func NewEngine(provider Provider, gpu GPUProvider, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Noop()
	}
	return &Engine{
		provider: provider,
		gpu:      gpu,
		log:      log,
		now:      time.Now,
	}
}

// Collect refreshes the provider and reads one Sample. Provider failures are
// returned; GPU failures only leave Sample.GPUs nil.
func (e *Engine) Collect(ctx context.Context) (*Sample, error) {
	if err := e.provider.Refresh(ctx); err != nil {
		e.log.Warn("provider refresh failed: %v", err)
		return nil, errors.WrapWithCode(err, errors.ErrProvider,
			"Couldn't refresh system counters",
			"Check that the process can read system statistics")
	}

	sample := &Sample{Time: e.now()}

	var err error
	if sample.Cores, err = e.provider.Cores(ctx); err != nil {
		return nil, errors.Wrap(err, "Couldn't read CPU usage")
	}
	if sample.Memory, err = e.provider.Memory(ctx); err != nil {
		return nil, errors.Wrap(err, "Couldn't read memory usage")
	}
	if sample.Interfaces, err = e.provider.Interfaces(ctx); err != nil {
		return nil, errors.Wrap(err, "Couldn't read network counters")
	}
	if sample.Processes, err = e.provider.Processes(ctx); err != nil {
		return nil, errors.Wrap(err, "Couldn't list processes")
	}

	sample.GPUs = e.queryGPU(ctx)
	return sample, nil
}

func (e *Engine) queryGPU(ctx context.Context) []GPUReading {
	if e.gpu == nil {
		return nil
	}
	readings, err := e.gpu.Query(ctx)
	if err != nil {
		e.log.Debug("gpu unavailable: %s", errors.OneLine(err))
		return nil
	}
	if len(readings) == 0 {
		return nil
	}
	return readings
}

// Apply folds a sample into the state.
func (e *Engine) Apply(s *State, sample *Sample) {
	if sample == nil {
		return
	}

	e.applyCores(s, sample.Cores)
	e.applyMemory(s, sample.Memory)
	e.applyInterfaces(s, sample.Interfaces)
	e.applyGPUs(s, sample.GPUs)

	s.rawProcesses = sample.Processes
	s.Rebuild()

	s.LastUpdate = sample.Time
	s.Ticks++
	s.LastError = nil
}

// Refresh collects and applies one sample. On failure the state keeps its
// previous data and records the error in LastError.
func (e *Engine) Refresh(ctx context.Context, s *State) error {
	sample, err := e.Collect(ctx)
	if err != nil {
		s.LastError = err
		return err
	}
	e.Apply(s, sample)
	return nil
}

func (e *Engine) applyCores(s *State, readings []CoreReading) {
	var total float64
	for _, r := range readings {
		core := s.core(r.Name)
		core.Usage = r.Usage
		core.History.Push(percentSample(r.Usage))
		total += r.Usage
	}

	if len(readings) == 0 {
		s.OverallCPU = 0
		return
	}
	s.OverallCPU = total / float64(len(readings))
}

// core returns the history for name, creating it on first sight.
func (s *State) core(name string) *CoreHistory {
	if i, ok := s.coreIndex[name]; ok {
		return s.Cores[i]
	}
	c := &CoreHistory{Name: name, History: NewRingBuffer(s.Options.HistorySize)}
	s.coreIndex[name] = len(s.Cores)
	s.Cores = append(s.Cores, c)
	return c
}

func (e *Engine) applyMemory(s *State, mem MemoryStats) {
	s.Memory = mem
	s.MemHistory.Push(percentSample(mem.UsedPercent()))
}

func (e *Engine) applyInterfaces(s *State, readings []InterfaceReading) {
	seen := make(map[string]bool, len(readings))

	for _, r := range readings {
		if !s.Options.ShowLoopback && IsLoopback(r.Name) {
			continue
		}
		seen[r.Name] = true

		iface := s.findInterface(r.Name)
		if iface == nil {
			s.Interfaces = append(s.Interfaces, &InterfaceHistory{
				Name:      r.Name,
				RxBytes:   r.RxBytes,
				TxBytes:   r.TxBytes,
				RxHistory: NewRingBuffer(s.Options.HistorySize),
				TxHistory: NewRingBuffer(s.Options.HistorySize),
			})
			e.log.Debug("tracking interface %s", r.Name)
			continue
		}

		iface.RxBytes = r.RxBytes
		iface.TxBytes = r.TxBytes
		iface.RxHistory.Push(r.RxBytes)
		iface.TxHistory.Push(r.TxBytes)
		iface.Missed = 0
	}

	kept := s.Interfaces[:0]
	for _, iface := range s.Interfaces {
		if !seen[iface.Name] {
			iface.Missed++
			if s.Options.PruneAfter > 0 && iface.Missed >= s.Options.PruneAfter {
				e.log.Debug("dropping interface %s after %d missed ticks", iface.Name, iface.Missed)
				continue
			}
		}
		kept = append(kept, iface)
	}
	for i := len(kept); i < len(s.Interfaces); i++ {
		s.Interfaces[i] = nil
	}
	s.Interfaces = kept
}

// Linear scan; hosts have few interfaces.
func (s *State) findInterface(name string) *InterfaceHistory {
	for _, iface := range s.Interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

type gpuKey struct {
	index int
	name  string
}

func (e *Engine) applyGPUs(s *State, readings []GPUReading) {
	if len(readings) == 0 {
		if s.GPUs.Available {
			s.gpuKept = s.GPUs.GPUs
		}
		s.GPUs = GPUSet{}
		return
	}

	previous := s.GPUs.GPUs
	if !s.GPUs.Available {
		previous = s.gpuKept
	}
	known := make(map[gpuKey]*GPUHistory, len(previous))
	for _, g := range previous {
		known[gpuKey{g.Index, g.Name}] = g
	}

	gpus := make([]*GPUHistory, 0, len(readings))
	for _, r := range readings {
		key := gpuKey{r.Index, r.Name}
		g, ok := known[key]
		if !ok {
			g = &GPUHistory{Index: r.Index, Name: r.Name, History: NewRingBuffer(s.Options.HistorySize)}
			e.log.Debug("tracking gpu %d (%s)", r.Index, r.Name)
		}
		// A duplicate key in one reading gets its own history.
		delete(known, key)

		g.Usage = r.Usage
		g.MemUsedMB = r.MemUsedMB
		g.MemTotalMB = r.MemTotalMB
		g.TempCelsius = r.TempCelsius
		g.History.Push(percentSample(r.Usage))
		gpus = append(gpus, g)
	}

	s.GPUs = GPUSet{Available: true, GPUs: gpus}
	s.gpuKept = nil
}

// IsLoopback reports whether an interface name denotes loopback.
func IsLoopback(name string) bool {
	return strings.HasPrefix(name, "lo")
}

// ClampPercent limits v to [0, 100]. NaN becomes 0.
func ClampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func percentSample(v float64) uint64 {
	return uint64(math.Round(ClampPercent(v)))
}
