package config

import "time"

// Config holds every user-tunable setting for the dashboard. Values come from
// defaults, then the config file, then NEXMON_* environment variables, then
// command-line flags, each layer overriding the previous one.
type Config struct {
	// IntervalMS is the refresh interval in milliseconds.
	IntervalMS int `yaml:"interval" mapstructure:"interval"`

	// ShowLoopback includes loopback interfaces (lo, lo0) in the network panel.
	ShowLoopback bool `yaml:"show_loopback" mapstructure:"show_loopback"`

	// MaxProcesses caps the number of rows in the process table.
	MaxProcesses int `yaml:"max_processes" mapstructure:"max_processes"`

	// Sort is the initial sort column: pid, name, cpu, mem or memory.
	Sort string `yaml:"sort" mapstructure:"sort"`

	// PruneAfter removes a network interface after it has been missing for
	// this many consecutive ticks. 0 keeps interfaces forever.
	PruneAfter int `yaml:"prune_after" mapstructure:"prune_after"`

	// NoColor disables ANSI colors.
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`

	GPU        GPUConfig        `yaml:"gpu" mapstructure:"gpu"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// GPUConfig controls the optional GPU source.
type GPUConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Command is the nvidia-smi compatible binary to run.
	Command string `yaml:"command" mapstructure:"command"`

	// Timeout bounds a single GPU query.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ThresholdsConfig holds the percentage thresholds used for color hints.
type ThresholdsConfig struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

// Interval returns the refresh interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}
