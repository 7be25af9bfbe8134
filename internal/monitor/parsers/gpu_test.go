package parsers

import (
	"testing"

	"github.com/rileyhilliard/nexmon/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNvidiaSMI(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []monitor.GPUReading
	}{
		{
			name:   "single gpu",
			output: "0, NVIDIA GeForce RTX 3080, 45, 2048, 10240, 65",
			want: []monitor.GPUReading{
				{Index: 0, Name: "NVIDIA GeForce RTX 3080", Usage: 45, MemUsedMB: 2048, MemTotalMB: 10240, TempCelsius: 65},
			},
		},
		{
			name:   "multiple gpus",
			output: "0, NVIDIA A100, 98, 32768, 40960, 78\n1, NVIDIA A100, 3, 512, 40960, 41\n",
			want: []monitor.GPUReading{
				{Index: 0, Name: "NVIDIA A100", Usage: 98, MemUsedMB: 32768, MemTotalMB: 40960, TempCelsius: 78},
				{Index: 1, Name: "NVIDIA A100", Usage: 3, MemUsedMB: 512, MemTotalMB: 40960, TempCelsius: 41},
			},
		},
		{
			name:   "not available fields default to zero",
			output: "0, NVIDIA Tesla T4, [N/A], 1024, 16384, [N/A]",
			want: []monitor.GPUReading{
				{Index: 0, Name: "NVIDIA Tesla T4", Usage: 0, MemUsedMB: 1024, MemTotalMB: 16384, TempCelsius: 0},
			},
		},
		{
			name:   "whitespace around values",
			output: "  2 ,  NVIDIA GeForce RTX 3070 ,  35  ,  4096  ,  8192  ,  58  ",
			want: []monitor.GPUReading{
				{Index: 2, Name: "NVIDIA GeForce RTX 3070", Usage: 35, MemUsedMB: 4096, MemTotalMB: 8192, TempCelsius: 58},
			},
		},
		{
			name:   "wrong field counts skipped",
			output: "0, GPU A, 10, 1, 2\n1, GPU B, 20, 1, 2, 30\n2, GPU C, 30, 1, 2, 40, 250\n",
			want: []monitor.GPUReading{
				{Index: 1, Name: "GPU B", Usage: 20, MemUsedMB: 1, MemTotalMB: 2, TempCelsius: 30},
			},
		},
		{
			name:   "windows line endings",
			output: "0, GPU, 12.5, 100, 200, 50\r\n",
			want: []monitor.GPUReading{
				{Index: 0, Name: "GPU", Usage: 12.5, MemUsedMB: 100, MemTotalMB: 200, TempCelsius: 50},
			},
		},
		{
			name:   "error text",
			output: "NVIDIA-SMI has failed because it couldn't communicate with the NVIDIA driver.",
			want:   []monitor.GPUReading{},
		},
		{
			name:   "empty",
			output: "",
			want:   []monitor.GPUReading{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNvidiaSMI(tt.output)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNvidiaSMI_OutOfRangeKept(t *testing.T) {
	// Clamping happens at display time, not while parsing.
	got := ParseNvidiaSMI("0, GPU, 130, 1, 2, 50")
	require.Len(t, got, 1)
	assert.Equal(t, 130.0, got[0].Usage)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 0.0, parseFloat("[N/A]"))
	assert.Equal(t, 1.5, parseFloat("1.5"))
	assert.Equal(t, 0, parseInt("-4"))
	assert.Equal(t, 0, parseInt("65.5"))
	assert.Equal(t, 65, parseInt("65"))
}
