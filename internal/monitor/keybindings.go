package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap lists every dashboard binding. It satisfies help.KeyMap.
type KeyMap struct {
	Quit        key.Binding
	Refresh     key.Binding
	AutoRefresh key.Binding
	FocusLeft   key.Binding
	FocusRight  key.Binding
	SortFocused key.Binding
	SortByIndex key.Binding
	Up          key.Binding
	Down        key.Binding
	First       key.Binding
	Last        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Pin         key.Binding
	UnpinAll    key.Binding
	Export      key.Binding
	Help        key.Binding
	Close       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),
		AutoRefresh: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle auto-refresh"),
		),
		FocusLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "focus previous column"),
		),
		FocusRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "focus next column"),
		),
		SortFocused: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s/enter", "sort by focused column"),
		),
		SortByIndex: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-9,0", "sort by column number"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "select previous process"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "select next process"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first process"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last process"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Pin: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "pin or unpin process"),
		),
		UnpinAll: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "unpin all"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export table to CSV"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close help"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.AutoRefresh, k.SortFocused, k.Pin, k.Export, k.Help}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.First, k.Last, k.PageUp, k.PageDown},
		{k.FocusLeft, k.FocusRight, k.SortFocused, k.SortByIndex, k.Pin, k.UnpinAll},
		{k.Refresh, k.AutoRefresh, k.Export, k.Help, k.Close, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input. It returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Close):
			m.showHelp = false
			return true, nil
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return true, tea.Quit
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return true, m.requestPoll()

	case key.Matches(msg, m.keys.AutoRefresh):
		return true, m.toggleAutoRefresh()

	case key.Matches(msg, m.keys.FocusLeft):
		m.moveFocus(-1)
		return true, nil

	case key.Matches(msg, m.keys.FocusRight):
		m.moveFocus(1)
		return true, nil

	case key.Matches(msg, m.keys.SortFocused):
		m.sortBy(m.FocusedKey())
		return true, nil

	case key.Matches(msg, m.keys.SortByIndex):
		m.sortByNumber(msg.String())
		return true, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return true, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return true, nil

	case key.Matches(msg, m.keys.First):
		m.selectIndex(0)
		return true, nil

	case key.Matches(msg, m.keys.Last):
		m.selectIndex(len(m.view.Rows()) - 1)
		return true, nil

	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-m.viewport.Height / 2)
		return true, nil

	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(m.viewport.Height / 2)
		return true, nil

	case key.Matches(msg, m.keys.Pin):
		m.togglePinSelected()
		return true, nil

	case key.Matches(msg, m.keys.UnpinAll):
		m.clearPins()
		return true, nil

	case key.Matches(msg, m.keys.Export):
		return true, m.exportCmd()
	}

	return false, nil
}
