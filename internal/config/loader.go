package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to environment overrides, e.g. NEXMON_INTERVAL.
	EnvPrefix = "NEXMON"
	// GlobalConfigDir is the directory under the user config dir.
	GlobalConfigDir = "nexmon"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
)

// Default values, shared with the CLI flag definitions.
const (
	DefaultIntervalMS   = 500
	DefaultMaxProcesses = 100
	DefaultSort         = "cpu"
	DefaultGPUCommand   = "nvidia-smi"
	DefaultGPUTimeout   = 2 * time.Second
	DefaultWarning      = 70
	DefaultCritical     = 90
)

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		IntervalMS:   DefaultIntervalMS,
		MaxProcesses: DefaultMaxProcesses,
		Sort:         DefaultSort,
		GPU: GPUConfig{
			Enabled: true,
			Command: DefaultGPUCommand,
			Timeout: DefaultGPUTimeout,
		},
		Thresholds: ThresholdsConfig{
			Warning:  DefaultWarning,
			Critical: DefaultCritical,
		},
	}
}

// NewViper returns a viper instance with defaults registered and NEXMON_*
// environment overrides enabled. Callers bind their flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so env overrides and Unmarshal see them.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("interval", def.IntervalMS)
	v.SetDefault("show_loopback", def.ShowLoopback)
	v.SetDefault("max_processes", def.MaxProcesses)
	v.SetDefault("sort", def.Sort)
	v.SetDefault("prune_after", def.PruneAfter)
	v.SetDefault("no_color", def.NoColor)
	v.SetDefault("gpu.enabled", def.GPU.Enabled)
	v.SetDefault("gpu.command", def.GPU.Command)
	v.SetDefault("gpu.timeout", def.GPU.Timeout.String())
	v.SetDefault("thresholds.warning", def.Thresholds.Warning)
	v.SetDefault("thresholds.critical", def.Thresholds.Critical)
}

// Path returns $XDG_CONFIG_HOME/nexmon/config.yaml, falling back to
// ~/.config/nexmon/config.yaml. Returns "" if no home directory is known.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, GlobalConfigDir, GlobalConfigFile)
}

// Find resolves which config file to read. An explicit path must exist; the
// global path is optional. Returns "" when there is nothing to read.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	global := Path()
	if global == "" {
		return "", nil
	}
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}
	return "", nil
}

// Load reads the config file (if any) into v and decodes the merged result.
// Flags bound to v before the call take precedence over file and env values.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your flags and NEXMON_* variables"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	cfg.Sort = strings.ToLower(strings.TrimSpace(cfg.Sort))
	return cfg, nil
}
