// Package input converts terminal key events into session key events.
package input

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/eiannone/keyboard"

	"github.com/verte-zerg/keyladder/internal/session"
)

// FromTea converts a Bubble Tea key message. Pasted text yields one event per rune;
// navigation and editing keys yield none.
func FromTea(msg tea.KeyMsg) []session.KeyEvent {
	switch msg.Type {
	case tea.KeyRunes:
		evs := make([]session.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			evs = append(evs, session.KeyEvent{Key: string(r), Alt: msg.Alt})
		}
		return evs
	case tea.KeySpace:
		return []session.KeyEvent{{Key: "Space", Alt: msg.Alt}}
	case tea.KeyEnter:
		return []session.KeyEvent{{Key: "Enter", Alt: msg.Alt}}
	case tea.KeyTab:
		return []session.KeyEvent{{Key: "Tab"}}
	case tea.KeyShiftTab:
		return []session.KeyEvent{{Key: "Tab", Shift: true}}
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		// Terminals sending ^H for Backspace land in the Ctrl range below.
		return nil
	}
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		letter := 'a' + rune(msg.Type-tea.KeyCtrlA)
		return []session.KeyEvent{{Key: string(letter), Ctrl: true, Alt: msg.Alt}}
	}
	return nil
}

// FromKeyboard converts a key read with github.com/eiannone/keyboard. Backspace and
// Delete are not typing keys and report false.
func FromKeyboard(ch rune, key keyboard.Key) (session.KeyEvent, bool) {
	if ch != 0 {
		return session.KeyEvent{Key: string(ch)}, true
	}
	switch key {
	case keyboard.KeySpace:
		return session.KeyEvent{Key: "Space"}, true
	case keyboard.KeyEnter:
		return session.KeyEvent{Key: "Enter"}, true
	case keyboard.KeyTab:
		return session.KeyEvent{Key: "Tab"}, true
	case keyboard.KeyBackspace, keyboard.KeyBackspace2, keyboard.KeyDelete:
		// KeyBackspace shares its code with KeyCtrlH.
		return session.KeyEvent{}, false
	}
	if key >= keyboard.KeyCtrlA && key <= keyboard.KeyCtrlZ {
		letter := 'a' + rune(key-keyboard.KeyCtrlA)
		return session.KeyEvent{Key: string(letter), Ctrl: true}, true
	}
	return session.KeyEvent{}, false
}
