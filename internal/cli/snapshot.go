package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/rileyhilliard/nexmon/internal/logger"
	"github.com/rileyhilliard/nexmon/internal/monitor"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Snapshot flags
var (
	snapshotFormat  string
	snapshotSamples int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one round of metrics and exit",
	Long: `Collect metrics without the interactive dashboard and print them as
YAML or JSON. CPU and network figures are deltas, so at least two samples
are taken, one interval apart.

Examples:
  nexmon snapshot
  nexmon snapshot --format json --processes 10
  nexmon snapshot --samples 5 --interval 1000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		engine, state := newEngine(cfg, logger.NewEnvLogger("nexmon"))
		return snapshotCommand(ctx, cmd.OutOrStdout(), engine, state, snapshotSamples, snapshotFormat)
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", "yaml", "output format: yaml or json")
	snapshotCmd.Flags().IntVar(&snapshotSamples, "samples", 2, "number of refreshes before printing")
	_ = snapshotCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(snapshotCmd)
}

// Report is the serialized form of a State.
type Report struct {
	Time       time.Time             `json:"time" yaml:"time"`
	Ticks      uint64                `json:"ticks" yaml:"ticks"`
	CPU        CPUReport             `json:"cpu" yaml:"cpu"`
	Memory     monitor.MemoryStats   `json:"memory" yaml:"memory"`
	Interfaces []InterfaceReport     `json:"interfaces" yaml:"interfaces"`
	GPU        GPUReport             `json:"gpu" yaml:"gpu"`
	Sort       string                `json:"sort" yaml:"sort"`
	Ascending  bool                  `json:"ascending" yaml:"ascending"`
	Processes  []monitor.ProcessInfo `json:"processes" yaml:"processes"`
}

type CPUReport struct {
	Overall float64      `json:"overall" yaml:"overall"`
	Cores   []CoreReport `json:"cores" yaml:"cores"`
}

type CoreReport struct {
	Name  string  `json:"name" yaml:"name"`
	Usage float64 `json:"usage" yaml:"usage"`
}

type InterfaceReport struct {
	Name          string  `json:"name" yaml:"name"`
	RxBytesPerSec float64 `json:"rx_bytes_per_sec" yaml:"rx_bytes_per_sec"`
	TxBytesPerSec float64 `json:"tx_bytes_per_sec" yaml:"tx_bytes_per_sec"`
}

type GPUReport struct {
	Available bool        `json:"available" yaml:"available"`
	Devices   []GPUDevice `json:"devices,omitempty" yaml:"devices,omitempty"`
}

type GPUDevice struct {
	Index       int     `json:"index" yaml:"index"`
	Name        string  `json:"name" yaml:"name"`
	Usage       float64 `json:"usage" yaml:"usage"`
	MemUsedMB   float64 `json:"mem_used_mb" yaml:"mem_used_mb"`
	MemTotalMB  float64 `json:"mem_total_mb" yaml:"mem_total_mb"`
	TempCelsius int     `json:"temp_celsius" yaml:"temp_celsius"`
}

// snapshotCommand refreshes state samples times, interval apart, and writes
// the result to w.
func snapshotCommand(ctx context.Context, w io.Writer, engine *monitor.Engine, state *monitor.State, samples int, format string) error {
	if format != "yaml" && format != "json" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown format %q", format),
			"Use --format yaml or --format json.")
	}
	if samples < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--samples must be at least 1, got %d", samples),
			"Use 2 or more for meaningful CPU and network figures.")
	}

	for i := 0; i < samples; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(state.Options.Interval):
			}
		}
		if err := engine.Refresh(ctx, state); err != nil {
			if format == "json" {
				_ = WriteJSONFromError(w, err)
			}
			return err
		}
	}

	report := NewReport(state)
	if format == "json" {
		return WriteJSONSuccess(w, report)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Couldn't encode the snapshot", "")
	}
	return enc.Close()
}

// NewReport flattens the current state into a Report.
func NewReport(s *monitor.State) Report {
	r := Report{
		Time:       s.LastUpdate,
		Ticks:      s.Ticks,
		Memory:     s.Memory,
		Sort:       s.SortBy.String(),
		Ascending:  s.Ascending,
		Processes:  s.Processes,
		Interfaces: []InterfaceReport{},
		CPU: CPUReport{
			Overall: monitor.ClampPercent(s.OverallCPU),
			Cores:   make([]CoreReport, 0, len(s.Cores)),
		},
		GPU: GPUReport{Available: s.GPUs.Available},
	}

	for _, c := range s.Cores {
		r.CPU.Cores = append(r.CPU.Cores, CoreReport{Name: c.Name, Usage: monitor.ClampPercent(c.Usage)})
	}

	secs := s.Options.Interval.Seconds()
	for _, iface := range s.Interfaces {
		if iface.Missed > 0 {
			continue
		}
		r.Interfaces = append(r.Interfaces, InterfaceReport{
			Name:          iface.Name,
			RxBytesPerSec: monitor.PerSecond(iface.RxBytes, secs),
			TxBytesPerSec: monitor.PerSecond(iface.TxBytes, secs),
		})
	}

	for _, g := range s.GPUs.GPUs {
		r.GPU.Devices = append(r.GPU.Devices, GPUDevice{
			Index:       g.Index,
			Name:        g.Name,
			Usage:       monitor.ClampPercent(g.Usage),
			MemUsedMB:   g.MemUsedMB,
			MemTotalMB:  g.MemTotalMB,
			TempCelsius: g.TempCelsius,
		})
	}
	return r
}
