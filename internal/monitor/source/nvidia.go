package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/rileyhilliard/nexmon/internal/logger"
	"github.com/rileyhilliard/nexmon/internal/monitor"
	"github.com/rileyhilliard/nexmon/internal/monitor/parsers"
)

// DefaultGPUTimeout bounds a single nvidia-smi run when none is configured.
const DefaultGPUTimeout = 2 * time.Second

// NvidiaSMI queries GPUs by running nvidia-smi.
type NvidiaSMI struct {
	Command string
	Timeout time.Duration
	log     logger.Logger
}

// NewNvidiaSMI creates a GPU provider running command (default "nvidia-smi")
// with each run bounded by timeout.
func NewNvidiaSMI(command string, timeout time.Duration, log logger.Logger) *NvidiaSMI {
	if command == "" {
		command = "nvidia-smi"
	}
	if timeout <= 0 {
		timeout = DefaultGPUTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &NvidiaSMI{Command: command, Timeout: timeout, log: log}
}

// Query runs the command and parses its output. Every failure wraps
// monitor.ErrGPUUnavailable.
func (n *NvidiaSMI) Query(ctx context.Context) ([]monitor.GPUReading, error) {
	ctx, cancel := context.WithTimeout(ctx, n.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, n.Command, parsers.NvidiaSMIQueryArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't wait on pipes held open by orphaned children after a kill.
	cmd.WaitDelay = 500 * time.Millisecond

	start := time.Now()
	err := cmd.Run()
	n.log.Debug("%s finished in %s", n.Command, time.Since(start).Round(time.Millisecond))

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, unavailable(ctx.Err(), "GPU query timed out after "+n.Timeout.String())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = strings.TrimSpace(stdout.String())
			}
			return nil, unavailable(
				fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), detail),
				n.Command+" failed")
		}
		return nil, unavailable(err, "Couldn't run "+n.Command)
	}

	readings := parsers.ParseNvidiaSMI(stdout.String())
	if len(readings) == 0 {
		return nil, unavailable(fmt.Errorf("no valid records"), n.Command+" reported no GPUs")
	}
	return readings, nil
}

func unavailable(cause error, message string) error {
	return errors.WrapWithCode(
		fmt.Errorf("%w: %w", monitor.ErrGPUUnavailable, cause),
		errors.ErrGPU, message,
		"Install the NVIDIA driver tools or run with --no-gpu")
}
