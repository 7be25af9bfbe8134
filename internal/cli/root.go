package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/nexmon/internal/config"
	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Global flags
var (
	cfgFile string
	noGPU   bool
)

// rootCmd runs the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "nexmon",
	Short: "Live terminal dashboard for CPU, memory, network, GPU and processes",
	Long: `nexmon samples the local machine every interval and draws a live
dashboard: per-core CPU with sparklines, memory and swap, per-interface
network rates, NVIDIA GPUs (when nvidia-smi is available) and a sortable,
filterable process table.

Settings come from flags, NEXMON_* environment variables and
~/.config/nexmon/config.yaml, in that order of precedence.

Examples:
  nexmon
  nexmon --interval 1000 --sort mem
  nexmon --no-gpu --processes 30
  nexmon snapshot --format json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return dashboardCommand(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/nexmon/config.yaml)")
	addDashboardFlags(rootCmd.PersistentFlags())
}

// addDashboardFlags registers the flags that map onto config keys.
func addDashboardFlags(fs *pflag.FlagSet) {
	fs.IntP("interval", "i", config.DefaultIntervalMS, "refresh interval in milliseconds")
	fs.Bool("show-loopback", false, "include loopback interfaces in the network panel")
	fs.IntP("processes", "p", config.DefaultMaxProcesses, "maximum rows in the process table")
	fs.StringP("sort", "s", config.DefaultSort, "initial sort column: pid, name, cpu, mem")
	fs.BoolVar(&noGPU, "no-gpu", false, "skip the GPU panel's nvidia-smi query")
	fs.String("gpu-command", config.DefaultGPUCommand, "nvidia-smi compatible command")
	fs.Duration("gpu-timeout", config.DefaultGPUTimeout, "timeout for one GPU query (e.g. 2s)")
	fs.Int("prune-after", 0, "drop interfaces missing for this many ticks (0 = never)")
	fs.Bool("no-color", false, "disable colors (also honors NO_COLOR)")
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"interval":      "interval",
	"show-loopback": "show_loopback",
	"processes":     "max_processes",
	"sort":          "sort",
	"gpu-command":   "gpu.command",
	"gpu-timeout":   "gpu.timeout",
	"prune-after":   "prune_after",
	"no-color":      "no_color",
}

// bindFlags binds the persistent flags to v. Unchanged flags fall through to
// env, file and defaults.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't bind --%s", name), "")
		}
	}
	// --no-gpu inverts gpu.enabled, so it is applied as an override.
	if f := flags.Lookup("no-gpu"); f != nil && f.Changed && noGPU {
		v.Set("gpu.enabled", false)
	}
	return nil
}

// loadConfig resolves flags, env and the config file into a validated Config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError renders structured errors as-is and adds a hint for cobra's
// unknown command and flag errors.
func formatError(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Error()
	}
	if isUnknownCommandError(err) {
		msg := err.Error()
		if name := extractUnknownCommand(err); name != "" {
			msg = fmt.Sprintf("Unknown command %q", name)
		}
		return errors.New(errors.ErrConfig, msg, "Run 'nexmon --help' to see available commands and flags.").Error()
	}
	return errors.Wrap(err, "nexmon failed").Error()
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "nexmon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
