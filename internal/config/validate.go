package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
)

// MinInterval is the shortest refresh interval accepted.
const MinInterval = 50 * time.Millisecond

// SortKeys are the accepted values for the sort setting.
var SortKeys = []string{"pid", "name", "cpu", "mem", "memory"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Interval() < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval %dms is too short", cfg.IntervalMS),
			fmt.Sprintf("Use an interval of at least %dms", MinInterval.Milliseconds()))
	}

	if cfg.MaxProcesses < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("max_processes must be at least 1 (got %d)", cfg.MaxProcesses),
			"Pass --processes with a positive number")
	}

	if !isSortKey(cfg.Sort) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown sort column '%s'", cfg.Sort),
			"Valid columns: "+strings.Join(SortKeys, ", "))
	}

	if cfg.PruneAfter < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("prune_after can't be negative (got %d)", cfg.PruneAfter),
			"Use 0 to keep interfaces forever")
	}

	if cfg.GPU.Enabled {
		if strings.TrimSpace(cfg.GPU.Command) == "" {
			return errors.New(errors.ErrConfig,
				"GPU command is empty",
				"Set gpu.command (default nvidia-smi) or pass --no-gpu")
		}
		if cfg.GPU.Timeout <= 0 {
			return errors.New(errors.ErrConfig,
				"GPU timeout must be positive",
				"Use a duration like 2s")
		}
	}

	t := cfg.Thresholds
	if t.Warning < 0 || t.Critical > 100 || t.Warning >= t.Critical {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid thresholds (warning %d, critical %d)", t.Warning, t.Critical),
			"Use 0 <= warning < critical <= 100")
	}

	return nil
}

func isSortKey(s string) bool {
	s = strings.ToLower(s)
	for _, k := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}
