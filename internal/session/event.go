package session

import (
	"context"
	"time"
	"unicode"
)

// Event is a terminal input event. The set is closed.
type Event interface {
	event()
}

// Key names non-printable keys; KeyRune carries a character.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPgUp
	KeyPgDown
	KeyHome
	KeyEnd
	KeyCtrlU
	KeyCtrlC
)

// KeyEvent is a key press.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// Char returns the key event for a printable character.
func Char(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

// Press returns the key event for a named key.
func Press(k Key) KeyEvent {
	return KeyEvent{Key: k}
}

// Folded returns the lower-cased rune, or 0 for named keys.
func (k KeyEvent) Folded() rune {
	if k.Key != KeyRune {
		return 0
	}
	return unicode.ToLower(k.Rune)
}

// MouseAction is the kind of mouse event.
type MouseAction int

const (
	MouseOther MouseAction = iota
	MouseClick
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is a mouse press or wheel movement at cell X, Y.
type MouseEvent struct {
	Action MouseAction
	X, Y   int
}

// ResizeEvent reports a new terminal size.
type ResizeEvent struct {
	Width, Height int
}

func (KeyEvent) event()    {}
func (MouseEvent) event()  {}
func (ResizeEvent) event() {}

// EventSource yields input for the headless Loop.Run. Poll waits at most
// timeout and returns ok=false when nothing arrived.
type EventSource interface {
	Poll(ctx context.Context, timeout time.Duration) (ev Event, ok bool, err error)
}

// DrawFunc paints the display state. It must not mutate display.
type DrawFunc func(display State, tick uint64)
