package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Next      key.Binding
	LevelUp   key.Binding
	LevelDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next"),
		),
		LevelUp: key.NewBinding(
			key.WithKeys("]", "+"),
			key.WithHelp("]", "level up"),
		),
		LevelDown: key.NewBinding(
			key.WithKeys("[", "-"),
			key.WithHelp("[", "level down"),
		),
	}
}

func (k keyMap) typingHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k keyMap) resultsHelp() []key.Binding {
	return []key.Binding{k.Next, k.LevelUp, k.LevelDown, k.Quit}
}
