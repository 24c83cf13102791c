package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/worktrees/internal/session"
)

var namedKeys = map[tea.KeyType]session.Key{
	tea.KeyEnter:     session.KeyEnter,
	tea.KeyEsc:       session.KeyEsc,
	tea.KeyBackspace: session.KeyBackspace,
	tea.KeyTab:       session.KeyTab,
	tea.KeyUp:        session.KeyUp,
	tea.KeyDown:      session.KeyDown,
	tea.KeyLeft:      session.KeyLeft,
	tea.KeyRight:     session.KeyRight,
	tea.KeyPgUp:      session.KeyPgUp,
	tea.KeyPgDown:    session.KeyPgDown,
	tea.KeyHome:      session.KeyHome,
	tea.KeyEnd:       session.KeyEnd,
	tea.KeyCtrlU:     session.KeyCtrlU,
	tea.KeyCtrlC:     session.KeyCtrlC,
}

// keyEvents converts a key message into session events. Pasted text arrives
// as one message and becomes one event per rune.
func keyEvents(msg tea.KeyMsg) []session.Event {
	switch msg.Type {
	case tea.KeyRunes:
		events := make([]session.Event, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			events = append(events, session.Char(r))
		}
		return events
	case tea.KeySpace:
		return []session.Event{session.Char(' ')}
	}
	if k, ok := namedKeys[msg.Type]; ok {
		return []session.Event{session.Press(k)}
	}
	return nil
}

// mouseEvent converts presses and wheel movements; motion and releases are
// dropped.
func mouseEvent(msg tea.MouseMsg) (session.MouseEvent, bool) {
	ev := session.MouseEvent{X: msg.X, Y: msg.Y}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Action = session.MouseWheelUp
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Action = session.MouseWheelDown
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		ev.Action = session.MouseClick
	case msg.Action == tea.MouseActionPress:
		ev.Action = session.MouseOther
	default:
		return session.MouseEvent{}, false
	}
	return ev, true
}
