package parsers

import (
	"strconv"
	"strings"

	"github.com/rileyhilliard/nexmon/internal/monitor"
)

// NvidiaSMIQueryArgs are the arguments that make nvidia-smi print one CSV
// record per GPU in the field order ParseNvidiaSMI expects.
var NvidiaSMIQueryArgs = []string{
	"--query-gpu=index,name,utilization.gpu,memory.used,memory.total,temperature.gpu",
	"--format=csv,noheader,nounits",
}

// nvidiaSMIFields is the number of fields in a valid record.
const nvidiaSMIFields = 6

// ParseNvidiaSMI parses GPU readings from nvidia-smi CSV output.
// Each line is: index, name, utilization %, memory used MiB, memory total MiB, temperature C
// Example: "0, NVIDIA GeForce RTX 3080, 45, 2048, 10240, 65"
//
// Lines with a different field count are skipped. Numeric fields that don't
// parse (e.g. "[N/A]") are 0. Returns an empty slice when nothing is valid.
func ParseNvidiaSMI(output string) []monitor.GPUReading {
	readings := []monitor.GPUReading{}

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != nvidiaSMIFields {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		readings = append(readings, monitor.GPUReading{
			Index:       parseInt(fields[0]),
			Name:        fields[1],
			Usage:       parseFloat(fields[2]),
			MemUsedMB:   parseFloat(fields[3]),
			MemTotalMB:  parseFloat(fields[4]),
			TempCelsius: parseInt(fields[5]),
		})
	}

	return readings
}

// parseFloat returns 0 for anything that isn't a number.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt returns 0 for anything that isn't a non-negative integer.
func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
