package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 500, cfg.IntervalMS)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval())
	assert.False(t, cfg.ShowLoopback)
	assert.Equal(t, 100, cfg.MaxProcesses)
	assert.Equal(t, "cpu", cfg.Sort)
	assert.Equal(t, 0, cfg.PruneAfter)
	assert.False(t, cfg.NoColor)

	assert.True(t, cfg.GPU.Enabled)
	assert.Equal(t, "nvidia-smi", cfg.GPU.Command)
	assert.Equal(t, 2*time.Second, cfg.GPU.Timeout)

	assert.Equal(t, 70, cfg.Thresholds.Warning)
	assert.Equal(t, 90, cfg.Thresholds.Critical)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
interval: 1000
show_loopback: true
max_processes: 25
sort: Memory
prune_after: 5
gpu:
  enabled: false
  command: /opt/nvidia/bin/nvidia-smi
  timeout: 750ms
thresholds:
  warning: 60
  critical: 80
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(NewViper(), configPath)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.IntervalMS)
	assert.True(t, cfg.ShowLoopback)
	assert.Equal(t, 25, cfg.MaxProcesses)
	assert.Equal(t, "memory", cfg.Sort, "sort is normalized to lower case")
	assert.Equal(t, 5, cfg.PruneAfter)
	assert.False(t, cfg.GPU.Enabled)
	assert.Equal(t, "/opt/nvidia/bin/nvidia-smi", cfg.GPU.Command)
	assert.Equal(t, 750*time.Millisecond, cfg.GPU.Timeout)
	assert.Equal(t, 60, cfg.Thresholds.Warning)
	assert.Equal(t, 80, cfg.Thresholds.Critical)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("max_processes: 10\n"), 0644))

	cfg, err := Load(NewViper(), configPath)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MaxProcesses)
	assert.Equal(t, DefaultIntervalMS, cfg.IntervalMS)
	assert.Equal(t, DefaultSort, cfg.Sort)
	assert.True(t, cfg.GPU.Enabled)
	assert.Equal(t, DefaultGPUTimeout, cfg.GPU.Timeout)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("interval: [unclosed\n"), 0644))

	_, err := Load(NewViper(), configPath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_GlobalFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, GlobalConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte("sort: pid\n"), 0644))

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "pid", cfg.Sort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("interval: 1000\ngpu:\n  command: from-file\n"), 0644))

	t.Setenv("NEXMON_INTERVAL", "250")
	t.Setenv("NEXMON_GPU_COMMAND", "from-env")

	cfg, err := Load(NewViper(), configPath)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.IntervalMS)
	assert.Equal(t, "from-env", cfg.GPU.Command)
}

func TestLoad_SetOverridesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NEXMON_MAX_PROCESSES", "50")

	v := NewViper()
	// Flags bound with BindPFlag behave like Set when changed.
	v.Set("max_processes", 7)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxProcesses)
}

func TestPath(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		assert.Equal(t, filepath.Join("/tmp/xdg", "nexmon", "config.yaml"), Path())
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", home)
		assert.Equal(t, filepath.Join(home, ".config", "nexmon", "config.yaml"), Path())
	})
}
