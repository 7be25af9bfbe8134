package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/nexmon/internal/errors"
)

const (
	defaultWidth = 100
	// Panels sit side by side from this width up.
	sideBySideWidth = 100
	gaugeWidth      = 12
	minTableRows    = 3
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderPanels(width)...)

	footer := m.renderFooter(width)
	used := 0
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	used += lipgloss.Height(footer)

	sections = append(sections, m.renderProcessTable(width, m.tableRows(used)))
	sections = append(sections, footer)

	return strings.Join(sections, "\n")
}

// renderHeader renders the title line and, after a failed tick, the error.
func (m Model) renderHeader(width int) string {
	s := m.state

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(m.titleText())

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | cpu %5.1f%% | %d cores | tick %d | updated %s",
			ClampPercent(s.OverallCPU), len(s.Cores), s.Ticks, formatSince(s.LastUpdate)))

	header := HeaderStyle.Width(width).Render(title + stats)
	if s.LastError != nil {
		header += "\n" + ErrorStyle.Render(" ! "+errors.OneLine(s.LastError))
	}
	return header
}

// titleText is "nexmon", plus the version and host when known.
func (m Model) titleText() string {
	title := "nexmon"
	if m.version != "" {
		title += " " + m.version
	}
	if m.host != "" {
		title += " | host: " + m.host
	}
	return title
}

// renderPanels lays the four metric panels out in two rows, or stacks them
// on narrow terminals.
func (m Model) renderPanels(width int) []string {
	if width < sideBySideWidth {
		return []string{
			m.renderCPUPanel(width),
			m.renderMemoryPanel(width),
			m.renderNetworkPanel(width),
			m.renderGPUPanel(width),
		}
	}

	left := width / 2
	right := width - left
	return []string{
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderCPUPanel(left), m.renderMemoryPanel(right)),
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderNetworkPanel(left), m.renderGPUPanel(right)),
	}
}

func (m Model) renderCPUPanel(width int) string {
	s := m.state
	inner := width - 4
	t := m.thresholds

	overall := ClampPercent(s.OverallCPU)
	lines := []string{
		LabelStyle.Render(fmt.Sprintf("%-6s", "all")) + Gauge(gaugeWidth, overall, t) +
			t.Style(overall).Render(fmt.Sprintf(" %5.1f%%", overall)),
	}

	sparkWidth := inner - 6 - gaugeWidth - 8
	for _, c := range s.Cores {
		usage := ClampPercent(c.Usage)
		line := LabelStyle.Render(fmt.Sprintf("%-6s", truncate(c.Name, 6))) +
			Gauge(gaugeWidth, usage, t) +
			ValueStyle.Render(fmt.Sprintf(" %5.1f%% ", usage))
		if sparkWidth > 0 {
			line += PercentSparkline(c.History, sparkWidth, t)
		}
		lines = append(lines, line)
	}
	if len(s.Cores) == 0 {
		lines = append(lines, MutedStyle.Render("No CPU data yet"))
	}

	return Panel("CPU", fmt.Sprintf("%.1f%%", overall), lines, width)
}

func (m Model) renderMemoryPanel(width int) string {
	s := m.state
	mem := s.Memory
	inner := width - 4
	t := m.thresholds

	ram := ClampPercent(mem.UsedPercent())
	swap := ClampPercent(mem.SwapPercent())

	lines := []string{
		LabelStyle.Render(fmt.Sprintf("%-6s", "RAM")) + Gauge(gaugeWidth, ram, t) +
			ValueStyle.Render(fmt.Sprintf(" %5.1f%% %s / %s", ram, humanize.IBytes(mem.Used), humanize.IBytes(mem.Total))),
	}
	if mem.SwapTotal > 0 {
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("%-6s", "Swap"))+Gauge(gaugeWidth, swap, t)+
			ValueStyle.Render(fmt.Sprintf(" %5.1f%% %s / %s", swap, humanize.IBytes(mem.SwapUsed), humanize.IBytes(mem.SwapTotal))))
	} else {
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("%-6s", "Swap"))+MutedStyle.Render("none"))
	}
	lines = append(lines, LabelStyle.Render(fmt.Sprintf("%-6s", "free"))+ValueStyle.Render(humanize.IBytes(mem.Free)))
	if inner-6 > 0 {
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("%-6s", "hist"))+PercentSparkline(s.MemHistory, inner-6, t))
	}

	return Panel("Memory", fmt.Sprintf("%.1f%%", ram), lines, width)
}

func (m Model) renderNetworkPanel(width int) string {
	s := m.state
	inner := width - 4
	secs := s.Options.Interval.Seconds()

	var lines []string
	var totalRx, totalTx float64
	for _, iface := range s.Interfaces {
		rx := PerSecond(iface.RxBytes, secs)
		tx := PerSecond(iface.TxBytes, secs)
		totalRx += rx
		totalTx += tx

		rxText := fmt.Sprintf("↓ %11s ", FormatRate(rx))
		txText := fmt.Sprintf("↑ %11s ", FormatRate(tx))
		sparkWidth := inner - 10 - lipgloss.Width(rxText)

		name := fmt.Sprintf("%-10s", truncate(iface.Name, 9))
		if iface.Missed > 0 {
			name = MutedStyle.Render(name)
		} else {
			name = LabelStyle.Render(name)
		}

		rxLine := name + lipgloss.NewStyle().Foreground(ColorRx).Render(rxText)
		txLine := strings.Repeat(" ", 10) + lipgloss.NewStyle().Foreground(ColorTx).Render(txText)
		if sparkWidth > 0 {
			rxLine += RateSparkline(iface.RxHistory, sparkWidth, ColorRx)
			txLine += RateSparkline(iface.TxHistory, sparkWidth, ColorTx)
		}
		lines = append(lines, rxLine, txLine)
	}
	if len(s.Interfaces) == 0 {
		lines = append(lines, MutedStyle.Render("No interfaces"))
	}

	value := fmt.Sprintf("↓ %s ↑ %s", FormatRate(totalRx), FormatRate(totalTx))
	return Panel("Network", value, lines, width)
}

func (m Model) renderGPUPanel(width int) string {
	s := m.state
	inner := width - 4
	t := m.thresholds

	if !s.GPUs.Available {
		return Panel("GPU", "n/a", []string{MutedStyle.Render("No GPU detected")}, width)
	}

	var lines []string
	var total float64
	for _, g := range s.GPUs.GPUs {
		usage := ClampPercent(g.Usage)
		total += usage

		lines = append(lines, LabelStyle.Render(fmt.Sprintf("#%d ", g.Index))+ValueStyle.Render(truncate(g.Name, inner-4)))

		memPct := 0.0
		if g.MemTotalMB > 0 {
			memPct = g.MemUsedMB / g.MemTotalMB * 100
		}
		stats := fmt.Sprintf(" %5.1f%% %s/%s %d°C ", usage, formatMB(g.MemUsedMB), formatMB(g.MemTotalMB), g.TempCelsius)
		line := "   " + Gauge(gaugeWidth, usage, t) + t.Style(memPct).Render(stats)
		if sw := inner - lipgloss.Width(line); sw > 0 {
			line += PercentSparkline(g.History, sw, t)
		}
		lines = append(lines, line)
	}

	avg := total / float64(len(s.GPUs.GPUs))
	return Panel("GPU", fmt.Sprintf("%.1f%%", avg), lines, width)
}

// Process table column widths; NAME takes the rest.
const (
	colPID    = 8
	colCPU    = 8
	colMem    = 11
	colStatus = 10
)

// renderProcessTable renders at most rows process rows, scrolled so the
// selection stays visible.
func (m Model) renderProcessTable(width, rows int) string {
	s := m.state
	inner := width - 4
	nameWidth := inner - colPID - colCPU - colMem - colStatus
	if nameWidth < 8 {
		nameWidth = 8
	}

	header := fmt.Sprintf("%-*s%-*s%*s%*s  %-*s",
		colPID, m.columnTitle("PID", SortPID),
		nameWidth, m.columnTitle("NAME", SortName),
		colCPU, m.columnTitle("CPU%", SortCPU),
		colMem, m.columnTitle("MEM", SortMemory),
		colStatus-2, "STATUS")
	lines := []string{TableHeaderStyle.Render(header)}

	start := 0
	if s.Selected >= rows {
		start = s.Selected - rows + 1
	}
	end := start + rows
	if end > len(s.Processes) {
		end = len(s.Processes)
	}

	for i := start; i < end; i++ {
		p := s.Processes[i]
		row := fmt.Sprintf("%-*d%-*s%*.1f%*s  %-*s",
			colPID, p.PID,
			nameWidth, truncate(p.Name, nameWidth-1),
			colCPU, p.CPU,
			colMem, humanize.IBytes(p.Memory),
			colStatus-2, truncate(p.Status, colStatus-2))
		row = truncate(row, inner)
		if i == s.Selected {
			row = SelectedRowStyle.Width(inner).Render(row)
		} else {
			row = ValueStyle.Render(row)
		}
		lines = append(lines, row)
	}

	if len(s.Processes) == 0 {
		msg := "No processes"
		if s.Query != "" {
			msg = fmt.Sprintf("No processes match %q", s.Query)
		}
		lines = append(lines, MutedStyle.Render(msg))
	}

	value := fmt.Sprintf("%d shown", len(s.Processes))
	if s.Query != "" {
		value = fmt.Sprintf("filter %q | %s", s.Query, value)
	}
	return Panel("Processes", value, lines, width)
}

// columnTitle marks the active sort column with a direction arrow.
func (m Model) columnTitle(title string, col SortColumn) string {
	if m.state.SortBy != col {
		return title
	}
	if m.state.Ascending {
		return title + "▲"
	}
	return title + "▼"
}

// tableRows returns how many process rows fit beside the other sections.
func (m Model) tableRows(used int) int {
	if m.height <= 0 {
		return m.state.Options.MaxProcesses
	}
	// Panel borders plus the column header.
	rows := m.height - used - 3
	if rows < minTableRows {
		rows = minTableRows
	}
	return rows
}

// renderFooter renders the search bar while searching, otherwise key help.
func (m Model) renderFooter(width int) string {
	if m.state.Searching {
		return SearchStyle.Render(m.search.View()) + "\n" + FooterStyle.Render(m.help.View(searchKeys(m.keys)))
	}
	return FooterStyle.Width(width).Render(m.help.View(m.keys))
}

// FormatRate formats a bytes-per-second rate as a human-readable string.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

// PerSecond converts a per-tick byte delta into a rate over secs.
func PerSecond(bytes uint64, secs float64) float64 {
	if secs <= 0 {
		return float64(bytes)
	}
	return float64(bytes) / secs
}

func formatMB(mb float64) string {
	if mb <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(mb * 1024 * 1024))
}

func formatSince(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int(time.Since(t).Seconds())
	switch secs {
	case 0:
		return "just now"
	case 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
