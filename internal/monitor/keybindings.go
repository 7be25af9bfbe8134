package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the dashboard's key bindings.
type KeyMap struct {
	Quit       key.Binding
	Next       key.Binding
	Previous   key.Binding
	First      key.Binding
	Last       key.Binding
	SortPID    key.Binding
	SortName   key.Binding
	SortCPU    key.Binding
	SortMemory key.Binding
	Reverse    key.Binding
	Search     key.Binding
	Help       key.Binding
	Close      key.Binding

	// Search mode
	Accept key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Previous: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		First: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last"),
		),
		SortPID: key.NewBinding(
			key.WithKeys("p", "P"),
			key.WithHelp("p", "sort pid"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "sort name"),
		),
		SortCPU: key.NewBinding(
			key.WithKeys("c", "C"),
			key.WithHelp("c", "sort cpu"),
		),
		SortMemory: key.NewBinding(
			key.WithKeys("m", "M"),
			key.WithHelp("m", "sort mem"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r", "R"),
			key.WithHelp("r", "reverse"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply filter"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
	}
}

// ShortHelp implements help.KeyMap for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Next, k.Previous, k.SortCPU, k.SortMemory, k.Reverse, k.Search, k.Help}
}

// FullHelp implements help.KeyMap for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.First, k.Last},
		{k.SortPID, k.SortName, k.SortCPU, k.SortMemory, k.Reverse},
		{k.Search, k.Accept, k.Cancel},
		{k.Help, k.Close, k.Quit},
	}
}

// searchKeys are shown in the footer while editing the filter.
type searchKeys KeyMap

func (k searchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Cancel}
}

func (k searchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// HandleKeyMsg processes keyboard input and returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return true, tea.Quit
	}

	if m.state.Searching {
		return true, m.handleSearchKey(msg)
	}

	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key.Matches(msg, m.keys.Close) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.state.SelectNext()
	case key.Matches(msg, m.keys.Previous):
		m.state.SelectPrevious()
	case key.Matches(msg, m.keys.First):
		m.state.SelectFirst()
	case key.Matches(msg, m.keys.Last):
		m.state.SelectLast()

	case key.Matches(msg, m.keys.SortPID):
		m.state.SetSort(SortPID)
	case key.Matches(msg, m.keys.SortName):
		m.state.SetSort(SortName)
	case key.Matches(msg, m.keys.SortCPU):
		m.state.SetSort(SortCPU)
	case key.Matches(msg, m.keys.SortMemory):
		m.state.SetSort(SortMemory)
	case key.Matches(msg, m.keys.Reverse):
		m.state.ToggleDirection()

	case key.Matches(msg, m.keys.Search):
		m.state.Searching = true
		m.search.SetValue(m.state.Query)
		m.search.CursorEnd()
		return true, m.search.Focus()

	default:
		return false, nil
	}

	return true, nil
}

// handleSearchKey edits the filter. Enter keeps it, esc clears it, anything
// else goes to the text input and re-filters as you type.
func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.state.Searching = false
		m.search.Blur()
		return nil

	case key.Matches(msg, m.keys.Cancel):
		m.state.Searching = false
		m.search.Blur()
		m.search.Reset()
		m.state.SetQuery("")
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.state.Query {
		m.state.SetQuery(v)
	}
	return cmd
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter by name"
	ti.CharLimit = 64
	return ti
}
