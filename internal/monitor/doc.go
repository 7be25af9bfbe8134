// Package monitor implements nexmon's live dashboard for local host metrics.
//
// The dashboard shows CPU, memory, network and GPU usage with rolling
// sparkline histories, plus a sortable, filterable process table.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: wraps the State and the Engine
//   - Update: processes keystrokes, ticks and collected samples
//   - View: renders the State; it never mutates it
//
// # Key Components
//
//	State       - All dashboard data: histories, process snapshot, sort, filter, selection
//	Engine      - Collects a Sample from the providers and applies it to State
//	RingBuffer  - Fixed-size sample window behind every sparkline
//	Provider    - OS metric source (see the source package for gopsutil)
//	GPUProvider - Optional GPU source; any failure means "unavailable"
//
// # Message Flow
//
//  1. tickMsg fires at the configured interval (default 500ms)
//  2. collectCmd runs Engine.Collect off the UI goroutine, unless one is in flight
//  3. sampleMsg arrives and Update calls Engine.Apply on the State
//  4. View re-renders
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	j/k, ↑/↓    - Move selection
//	Home/End    - First / last process
//	p n c m     - Sort by PID, name, CPU, memory
//	r           - Reverse sort direction
//	/           - Filter by name (enter keeps, esc clears)
//	?           - Toggle help overlay
package monitor
