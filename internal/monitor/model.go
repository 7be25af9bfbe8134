package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultCollectTimeout bounds one collection when ModelOptions leaves it unset.
const DefaultCollectTimeout = 5 * time.Second

// ModelOptions configure the dashboard model.
type ModelOptions struct {
	Thresholds Thresholds
	// CollectTimeout bounds one full collection, GPU query included.
	CollectTimeout time.Duration
	// Version and Host are shown in the header when set.
	Version string
	Host    string
}

// Model is the Bubble Tea model for the dashboard. It owns the State: only
// Update and the key handlers touch it.
type Model struct {
	state  *State
	engine *Engine

	keys   KeyMap
	help   help.Model
	search textinput.Model

	thresholds     Thresholds
	collectTimeout time.Duration
	version        string
	host           string

	width    int
	height   int
	showHelp bool
	quitting bool

	// collecting is set while a collectCmd is in flight so ticks never
	// overlap collections.
	collecting bool
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// sampleMsg carries the result of one collection.
type sampleMsg struct {
	sample *Sample
	err    error
}

// NewModel creates the dashboard model around an engine and its state.
func NewModel(engine *Engine, state *State, opts ModelOptions) Model {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds
	}
	if opts.CollectTimeout <= 0 {
		opts.CollectTimeout = DefaultCollectTimeout
	}

	h := help.New()
	h.ShortSeparator = " | "

	m := Model{
		state:          state,
		engine:         engine,
		keys:           DefaultKeyMap(),
		help:           h,
		search:         newSearchInput(),
		thresholds:     opts.Thresholds,
		collectTimeout: opts.CollectTimeout,
		version:        opts.Version,
		host:           opts.Host,
	}
	// Init collects right away when there is no sample yet.
	m.collecting = state.Ticks == 0
	return m
}

// State returns the dashboard state.
func (m Model) State() *State {
	return m.state
}

// Init starts the tick timer and collects immediately unless the state
// already holds a sample.
func (m Model) Init() tea.Cmd {
	if !m.collecting {
		return m.tickCmd()
	}
	return tea.Batch(m.tickCmd(), m.collectCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = msg.Width - 4

	case tickMsg:
		if m.collecting {
			return m, m.tickCmd()
		}
		m.collecting = true
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case sampleMsg:
		m.collecting = false
		if msg.err != nil {
			m.state.LastError = msg.err
			return m, nil
		}
		m.engine.Apply(m.state, msg.sample)

	default:
		// Cursor blink and other input messages.
		if m.state.Searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.state.Options.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd reads one sample off the UI goroutine. It captures only the
// engine so the state is never touched outside Update.
func (m Model) collectCmd() tea.Cmd {
	engine := m.engine
	timeout := m.collectTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		sample, err := engine.Collect(ctx)
		return sampleMsg{sample: sample, err: err}
	}
}
