package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:   "minimum interval",
			modify: func(c *Config) { c.IntervalMS = 50 },
		},
		{
			name:        "interval too short",
			modify:      func(c *Config) { c.IntervalMS = 10 },
			wantErr:     true,
			errContains: "too short",
		},
		{
			name:        "zero processes",
			modify:      func(c *Config) { c.MaxProcesses = 0 },
			wantErr:     true,
			errContains: "max_processes",
		},
		{
			name: "sort aliases",
			modify: func(c *Config) {
				c.Sort = "MEM"
			},
		},
		{
			name:        "unknown sort",
			modify:      func(c *Config) { c.Sort = "threads" },
			wantErr:     true,
			errContains: "Unknown sort column 'threads'",
		},
		{
			name:        "negative prune",
			modify:      func(c *Config) { c.PruneAfter = -1 },
			wantErr:     true,
			errContains: "prune_after",
		},
		{
			name:        "zero gpu timeout",
			modify:      func(c *Config) { c.GPU.Timeout = 0 },
			wantErr:     true,
			errContains: "timeout",
		},
		{
			name: "gpu timeout ignored when gpu disabled",
			modify: func(c *Config) {
				c.GPU.Enabled = false
				c.GPU.Timeout = 0
				c.GPU.Command = ""
			},
		},
		{
			name:        "empty gpu command",
			modify:      func(c *Config) { c.GPU.Command = "  " },
			wantErr:     true,
			errContains: "GPU command",
		},
		{
			name: "inverted thresholds",
			modify: func(c *Config) {
				c.Thresholds.Warning = 95
				c.Thresholds.Critical = 90
			},
			wantErr:     true,
			errContains: "thresholds",
		},
		{
			name:   "custom gpu timeout",
			modify: func(c *Config) { c.GPU.Timeout = 500 * time.Millisecond },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
