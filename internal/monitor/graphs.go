package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a single-row graph of data using block characters.
// Values are scaled against ceiling; a ceiling of 0 scales against the
// largest value in data, which suits unbounded series like byte rates.
func Sparkline(data []uint64, width int, ceiling uint64) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	values := make([]float64, len(data))
	var peak float64
	for i, v := range data {
		values[i] = float64(v)
		if values[i] > peak {
			peak = values[i]
		}
	}

	maxVal := float64(ceiling)
	if ceiling == 0 {
		maxVal = peak
	}

	var b strings.Builder
	top := len(sparklineBlocks) - 1
	for _, v := range resampleData(values, width) {
		idx := 0
		if maxVal > 0 {
			idx = clampInt(int(v/maxVal*float64(top)+0.5), top)
		}
		b.WriteRune(sparklineBlocks[idx])
	}
	return b.String()
}

// PercentSparkline renders a 0-100 series colored by its newest value.
func PercentSparkline(h *RingBuffer, width int, t Thresholds) string {
	if h == nil {
		return ""
	}
	return t.Style(float64(h.Last())).Render(Sparkline(h.Tail(width), width, 100))
}

// RateSparkline renders an autoscaled series in a fixed color.
func RateSparkline(h *RingBuffer, width int, color lipgloss.Color) string {
	if h == nil {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(Sparkline(h.Tail(width), width, 0))
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	// Downsampling: use max within each bucket to preserve peaks
	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	// Upsampling: linear interpolation
	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
