package monitor

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard key bindings. It implements help.KeyMap.
type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Kind key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("n", "right", "tab"),
		key.WithHelp("n/→", "next host"),
	),
	Prev: key.NewBinding(
		key.WithKeys("l", "p", "left", "shift+tab"),
		key.WithHelp("l/←", "prev host"),
	),
	Kind: key.NewBinding(
		key.WithKeys("1", "2", "3", "4"),
		key.WithHelp("1-4", "metric"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the help line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Kind, k.Quit}
}

// FullHelp returns the bindings grouped for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Kind, k.Quit}}
}

// kindIndex maps a digit key to a zero-based kind index.
func kindIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '4' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
