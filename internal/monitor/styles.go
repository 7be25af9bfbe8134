package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
	ColorRx     = lipgloss.Color("#00FFFF")
	ColorTx     = lipgloss.Color("#BF40FF")
)

// Thresholds are the percentages at which metrics turn amber and red.
type Thresholds struct {
	Warning  int
	Critical int
}

// DefaultThresholds match the config defaults.
var DefaultThresholds = Thresholds{Warning: 70, Critical: 90}

// Color returns the severity color for a percentage.
func (t Thresholds) Color(percent float64) lipgloss.Color {
	switch {
	case percent >= float64(t.Critical):
		return ColorCritical
	case percent >= float64(t.Warning):
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// Style returns a foreground style in the severity color for a percentage.
func (t Thresholds) Style(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(percent))
}

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorDarkBg).
				Background(ColorAccent).
				Bold(true)

	SearchStyle = lipgloss.NewStyle().
			Foreground(ColorGraph).
			Bold(true)
)

// Gauge renders a horizontal bar for a percentage, clamped to [0, 100] and
// colored by the thresholds.
func Gauge(width int, percent float64, t Thresholds) string {
	if width < 1 {
		width = 1
	}
	percent = ClampPercent(percent)

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return t.Style(percent).Render(bar)
}

// SectionHeader renders a panel's top border with the title on the left and
// value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// "╭─ " + title + " "
	leftWidth := 3 + lipgloss.Width(title) + 1
	// " " + value + " ╮"
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders a panel's bottom border.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders one bordered content line, padded or truncated
// to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	innerWidth := width - 4

	if lipgloss.Width(content) > innerWidth {
		content = lipgloss.NewStyle().MaxWidth(innerWidth).Render(content)
	}

	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

// Panel renders a bordered panel with the given content lines.
func Panel(title, value string, lines []string, width int) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, SectionHeader(title, value, width))
	for _, l := range lines {
		out = append(out, SectionContentLine(l, width))
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}
