package monitor

import (
	"sort"
	"strings"
)

// BuildSnapshot filters, sorts and truncates a raw process list into the rows
// shown this tick. raw is not modified.
//
// Rows are sorted ascending and the whole slice is reversed for descending
// order, so flipping direction yields the exact reverse. Equal keys do not
// keep their relative order across a flip.
func BuildSnapshot(raw []ProcessInfo, query string, col SortColumn, ascending bool, max int) []ProcessInfo {
	if max <= 0 {
		return []ProcessInfo{}
	}

	out := make([]ProcessInfo, 0, len(raw))
	if query == "" {
		out = append(out, raw...)
	} else {
		q := strings.ToLower(query)
		for _, p := range raw {
			if strings.Contains(strings.ToLower(p.Name), q) {
				out = append(out, p)
			}
		}
	}

	less := lessFunc(col)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })

	if !ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	if len(out) > max {
		out = out[:max]
	}
	return out
}

func lessFunc(col SortColumn) func(a, b ProcessInfo) bool {
	switch col {
	case SortPID:
		return func(a, b ProcessInfo) bool { return a.PID < b.PID }
	case SortName:
		return func(a, b ProcessInfo) bool { return a.Name < b.Name }
	case SortMemory:
		return func(a, b ProcessInfo) bool { return a.Memory < b.Memory }
	default:
		// NaN compares false both ways, so it sorts as equal to anything.
		return func(a, b ProcessInfo) bool { return a.CPU < b.CPU }
	}
}
