package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/rileyhilliard/nexmon/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubProvider struct {
	refreshErr error
	refreshes  int
}

func (p *stubProvider) Refresh(ctx context.Context) error {
	p.refreshes++
	return p.refreshErr
}

func (p *stubProvider) Cores(ctx context.Context) ([]monitor.CoreReading, error) {
	return []monitor.CoreReading{{Name: "cpu0", Usage: 20}, {Name: "cpu1", Usage: 40}}, nil
}

func (p *stubProvider) Memory(ctx context.Context) (monitor.MemoryStats, error) {
	return monitor.MemoryStats{Total: 1000, Used: 250, Free: 750}, nil
}

func (p *stubProvider) Interfaces(ctx context.Context) ([]monitor.InterfaceReading, error) {
	return []monitor.InterfaceReading{{Name: "eth0", RxBytes: 500, TxBytes: 100}, {Name: "lo", RxBytes: 9}}, nil
}

func (p *stubProvider) Processes(ctx context.Context) ([]monitor.ProcessInfo, error) {
	return []monitor.ProcessInfo{
		{PID: 1, Name: "init", CPU: 0.5, Memory: 100},
		{PID: 2, Name: "nexmon", CPU: 12, Memory: 200},
	}, nil
}

type stubGPU struct {
	readings []monitor.GPUReading
}

func (g *stubGPU) Query(ctx context.Context) ([]monitor.GPUReading, error) {
	if len(g.readings) == 0 {
		return nil, monitor.ErrGPUUnavailable
	}
	return g.readings, nil
}

func newSnapshotFixture(p *stubProvider, gpu monitor.GPUProvider) (*monitor.Engine, *monitor.State) {
	engine := monitor.NewEngine(p, gpu, nil)
	state := monitor.NewState(monitor.Options{
		Interval:     time.Millisecond,
		MaxProcesses: 10,
		Sort:         monitor.SortCPU,
	})
	return engine, state
}

func TestSnapshotCommand_YAML(t *testing.T) {
	p := &stubProvider{}
	engine, state := newSnapshotFixture(p, nil)

	var buf bytes.Buffer
	require.NoError(t, snapshotCommand(context.Background(), &buf, engine, state, 2, "yaml"))
	assert.Equal(t, 2, p.refreshes)

	var r Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &r))
	assert.Equal(t, uint64(2), r.Ticks)
	assert.InDelta(t, 30.0, r.CPU.Overall, 0.001)
	require.Len(t, r.CPU.Cores, 2)
	assert.Equal(t, "cpu0", r.CPU.Cores[0].Name)
	require.Len(t, r.Interfaces, 1, "loopback hidden")
	assert.Equal(t, "eth0", r.Interfaces[0].Name)
	assert.False(t, r.GPU.Available)
	assert.Equal(t, "cpu", r.Sort)
	require.Len(t, r.Processes, 2)
	assert.Equal(t, "nexmon", r.Processes[0].Name)
	assert.Equal(t, uint64(250), r.Memory.Used)
}

func TestSnapshotCommand_JSON(t *testing.T) {
	gpu := &stubGPU{readings: []monitor.GPUReading{{Index: 0, Name: "A100", Usage: 120, MemTotalMB: 40960, TempCelsius: 55}}}
	engine, state := newSnapshotFixture(&stubProvider{}, gpu)

	var buf bytes.Buffer
	require.NoError(t, snapshotCommand(context.Background(), &buf, engine, state, 1, "json"))

	var env struct {
		Success bool   `json:"success"`
		Data    Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.True(t, env.Data.GPU.Available)
	require.Len(t, env.Data.GPU.Devices, 1)
	assert.Equal(t, "A100", env.Data.GPU.Devices[0].Name)
	assert.Equal(t, 100.0, env.Data.GPU.Devices[0].Usage, "usage clamped")
	assert.Contains(t, buf.String(), `"rx_bytes_per_sec"`)
}

func TestSnapshotCommand_ProviderFailure(t *testing.T) {
	p := &stubProvider{refreshErr: stderrors.New("proc not mounted")}
	engine, state := newSnapshotFixture(p, nil)

	var buf bytes.Buffer
	err := snapshotCommand(context.Background(), &buf, engine, state, 2, "json")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProvider))
	assert.Equal(t, 1, p.refreshes, "stops at the first failure")

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeProviderFailed, env.Error.Code)
	assert.Contains(t, env.Error.Cause, "proc not mounted")
}

func TestSnapshotCommand_InvalidArgs(t *testing.T) {
	engine, state := newSnapshotFixture(&stubProvider{}, nil)

	err := snapshotCommand(context.Background(), &bytes.Buffer{}, engine, state, 1, "xml")
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	err = snapshotCommand(context.Background(), &bytes.Buffer{}, engine, state, 0, "yaml")
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSnapshotCommand_Cancelled(t *testing.T) {
	p := &stubProvider{}
	engine, state := newSnapshotFixture(p, nil)
	state.Options.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := snapshotCommand(ctx, &buf, engine, state, 3, "yaml")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.refreshes)
	assert.Empty(t, buf.String())
}

func TestNewReport_SkipsMissingInterfaces(t *testing.T) {
	state := monitor.NewState(monitor.Options{Interval: 2 * time.Second, MaxProcesses: 5})
	state.Interfaces = []*monitor.InterfaceHistory{
		{Name: "eth0", RxBytes: 2000, TxBytes: 1000},
		{Name: "wlan0", Missed: 2},
	}

	r := NewReport(state)
	require.Len(t, r.Interfaces, 1)
	assert.Equal(t, 1000.0, r.Interfaces[0].RxBytesPerSec)
	assert.Equal(t, 500.0, r.Interfaces[0].TxBytesPerSec)
	assert.Empty(t, r.CPU.Cores)
	assert.NotNil(t, r.Processes)
}

func TestSnapshotCommand_RegisteredFlags(t *testing.T) {
	f := snapshotCmd.Flags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "yaml", f.DefValue)

	s := snapshotCmd.Flags().Lookup("samples")
	require.NotNil(t, s)
	assert.Equal(t, "2", s.DefValue)
	assert.True(t, strings.HasPrefix(snapshotCmd.Use, "snapshot"))
}
