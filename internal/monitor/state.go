package monitor

import "time"

// Options are the State settings fixed at startup.
type Options struct {
	Interval     time.Duration
	ShowLoopback bool
	MaxProcesses int
	Sort         SortColumn
	// PruneAfter drops an interface missing for this many consecutive ticks.
	// 0 keeps it forever.
	PruneAfter  int
	HistorySize int
}

// CoreHistory tracks one CPU core. Name never changes after creation.
type CoreHistory struct {
	Name    string
	Usage   float64
	History *RingBuffer
}

// InterfaceHistory tracks one network interface.
type InterfaceHistory struct {
	Name      string
	RxBytes   uint64
	TxBytes   uint64
	RxHistory *RingBuffer
	TxHistory *RingBuffer
	// Missed counts consecutive ticks this interface was absent.
	Missed int
}

// GPUHistory tracks one GPU, keyed by index and name.
type GPUHistory struct {
	Index       int
	Name        string
	Usage       float64
	MemUsedMB   float64
	MemTotalMB  float64
	TempCelsius int
	History     *RingBuffer
}

// GPUSet is the GPU panel state. Available is false when the GPU source
// reported nothing, which is not the same as a GPU at 0%.
type GPUSet struct {
	Available bool
	GPUs      []*GPUHistory
}

// State is the dashboard's single mutable state. It is owned by one
// goroutine: the engine writes it in Apply and input handlers adjust sort,
// search and selection.
type State struct {
	Options Options

	Cores      []*CoreHistory
	coreIndex  map[string]int
	OverallCPU float64

	Memory     MemoryStats
	MemHistory *RingBuffer

	Interfaces []*InterfaceHistory

	GPUs GPUSet
	// gpuKept holds GPU histories while the source is unavailable, so a
	// transient failure does not discard them.
	gpuKept []*GPUHistory

	// rawProcesses is the last unfiltered list, kept so sort and search
	// changes can rebuild the snapshot without a new sample.
	rawProcesses []ProcessInfo
	Processes    []ProcessInfo
	SortBy       SortColumn
	Ascending    bool
	Searching    bool
	Query        string
	Selected     int

	LastUpdate time.Time
	Ticks      uint64
	LastError  error
}

// NewState creates the initial state, sorted descending by opts.Sort.
func NewState(opts Options) *State {
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	return &State{
		Options:    opts,
		coreIndex:  make(map[string]int),
		MemHistory: NewRingBuffer(opts.HistorySize),
		Processes:  []ProcessInfo{},
		SortBy:     opts.Sort,
	}
}

// SetSort changes the sort column and rebuilds the snapshot.
func (s *State) SetSort(col SortColumn) {
	s.SortBy = col
	s.Rebuild()
}

// ToggleDirection flips between ascending and descending and rebuilds the snapshot.
func (s *State) ToggleDirection() {
	s.Ascending = !s.Ascending
	s.Rebuild()
}

// SetQuery replaces the search filter and rebuilds the snapshot.
func (s *State) SetQuery(q string) {
	s.Query = q
	s.Rebuild()
}

// Rebuild recomputes Processes from the last raw list and clamps the selection.
func (s *State) Rebuild() {
	s.Processes = BuildSnapshot(s.rawProcesses, s.Query, s.SortBy, s.Ascending, s.Options.MaxProcesses)
	s.ClampSelection()
}

// SelectedProcess returns the selected row, if any.
func (s *State) SelectedProcess() (ProcessInfo, bool) {
	if len(s.Processes) == 0 {
		return ProcessInfo{}, false
	}
	return s.Processes[s.Selected], true
}

// SelectNext moves the selection down one row.
func (s *State) SelectNext() {
	if len(s.Processes) == 0 {
		return
	}
	if s.Selected < len(s.Processes)-1 {
		s.Selected++
	}
}

// SelectPrevious moves the selection up one row.
func (s *State) SelectPrevious() {
	if len(s.Processes) == 0 {
		return
	}
	if s.Selected > 0 {
		s.Selected--
	}
}

// SelectFirst jumps to the first row.
func (s *State) SelectFirst() {
	s.Selected = 0
}

// SelectLast jumps to the last row.
func (s *State) SelectLast() {
	if len(s.Processes) == 0 {
		s.Selected = 0
		return
	}
	s.Selected = len(s.Processes) - 1
}

// ClampSelection keeps Selected inside [0, len(Processes)), or 0 when empty.
func (s *State) ClampSelection() {
	switch {
	case len(s.Processes) == 0, s.Selected < 0:
		s.Selected = 0
	case s.Selected >= len(s.Processes):
		s.Selected = len(s.Processes) - 1
	}
}
