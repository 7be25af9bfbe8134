package cli

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/nexmon/internal/config"
	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/rileyhilliard/nexmon/internal/logger"
	"github.com/rileyhilliard/nexmon/internal/monitor"
	"github.com/rileyhilliard/nexmon/internal/monitor/source"
	"golang.org/x/term"
)

// DebugLogFile receives log output while the dashboard owns the terminal.
const DebugLogFile = "nexmon-debug.log"

// dashboardCommand runs the interactive dashboard until the user quits.
func dashboardCommand(ctx context.Context, cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'nexmon snapshot' to print metrics when piping or redirecting output.")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	applyColorMode(cfg)

	// The alt screen owns stdout, so log output goes to a file or nowhere.
	if logger.DebugEnabled() {
		f, err := tea.LogToFile(DebugLogFile, "nexmon")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open the debug log", "Unset NEXMON_DEBUG or run from a writable directory.")
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	engine, state := newEngine(cfg, logger.NewEnvLogger("nexmon"))

	// A provider that fails on the first refresh is not going to recover.
	if err := engine.Refresh(ctx, state); err != nil {
		return err
	}

	opts := modelOptions(cfg)
	opts.Host = source.Hostname(ctx)
	model := monitor.NewModel(engine, state, opts)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"The dashboard stopped unexpectedly", "Try a larger terminal, or run with --no-color.")
	}
	return nil
}

// newEngine wires the OS and GPU sources from cfg into an engine and a fresh
// state.
func newEngine(cfg *config.Config, log logger.Logger) (*monitor.Engine, *monitor.State) {
	var gpu monitor.GPUProvider
	if cfg.GPU.Enabled {
		gpu = source.NewNvidiaSMI(cfg.GPU.Command, cfg.GPU.Timeout, log)
	}

	engine := monitor.NewEngine(source.NewSystem(log), gpu, log)
	state := monitor.NewState(stateOptions(cfg))
	return engine, state
}

func stateOptions(cfg *config.Config) monitor.Options {
	return monitor.Options{
		Interval:     cfg.Interval(),
		ShowLoopback: cfg.ShowLoopback,
		MaxProcesses: cfg.MaxProcesses,
		Sort:         monitor.ParseSortColumn(cfg.Sort),
		PruneAfter:   cfg.PruneAfter,
		HistorySize:  monitor.DefaultHistorySize,
	}
}

// collectMargin is the time one collection gets on top of the GPU query for
// the OS counters and process list.
const collectMargin = 3 * time.Second

// modelOptions derives the dashboard model settings from cfg. The collection
// deadline always outlasts the GPU timeout so nvidia-smi is cut by its own
// limit, not the outer one.
func modelOptions(cfg *config.Config) monitor.ModelOptions {
	timeout := monitor.DefaultCollectTimeout
	if cfg.GPU.Enabled && cfg.GPU.Timeout+collectMargin > timeout {
		timeout = cfg.GPU.Timeout + collectMargin
	}
	return monitor.ModelOptions{
		Thresholds: monitor.Thresholds{
			Warning:  cfg.Thresholds.Warning,
			Critical: cfg.Thresholds.Critical,
		},
		CollectTimeout: timeout,
		Version:        formatVersion(version),
	}
}

// applyColorMode drops to plain ASCII output when colors are disabled.
func applyColorMode(cfg *config.Config) {
	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
