package monitor

import (
	"context"
	"errors"
)

// ErrGPUUnavailable is returned by a GPUProvider when there is nothing to
// report: no command, a failed run, or no valid records.
var ErrGPUUnavailable = errors.New("gpu unavailable")

// Provider is the OS metric source. Refresh takes a new reading of every
// counter; the other methods report from that reading.
type Provider interface {
	Refresh(ctx context.Context) error
	Cores(ctx context.Context) ([]CoreReading, error)
	Memory(ctx context.Context) (MemoryStats, error)
	Interfaces(ctx context.Context) ([]InterfaceReading, error)
	Processes(ctx context.Context) ([]ProcessInfo, error)
}

// GPUProvider is the optional GPU source. Any error means "unavailable".
type GPUProvider interface {
	Query(ctx context.Context) ([]GPUReading, error)
}
