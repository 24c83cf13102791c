package session

import (
	"context"
	"errors"
	"time"

	"github.com/chmouel/worktrees/internal/models"
)

// Timing constants of the loop.
const (
	PollInterval       = 100 * time.Millisecond
	OpCompleteDelay    = 800 * time.Millisecond
	SetupCompleteDelay = 1200 * time.Millisecond
)

// DefaultHistoryLimit is used when Env.HistoryLimit is not set.
const DefaultHistoryLimit = 50

// Env is what interpreters may use besides the state they act on.
type Env struct {
	Ctx          context.Context
	Backend      Backend
	Bridge       *Bridge
	Now          func() time.Time
	Layout       Layout
	Editors      []models.EditorOption
	HistoryLimit int

	// Launch starts command with dir as its argument without waiting.
	Launch func(command, dir string) error
	// OpenFolder shows dir in the file manager.
	OpenFolder func(dir string) error
	// Copy puts text on the clipboard.
	Copy func(text string) error
}

var errUnavailable = errors.New("not available in this session")

func (e *Env) ctx() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) historyLimit() int {
	if e.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return e.HistoryLimit
}

// timed shows inner for d, then becomes target.
func (e *Env) timed(inner, target State, d time.Duration) *Timed {
	return &Timed{Inner: inner, Target: target, Start: e.now(), Duration: d}
}

// completed shows label for OpCompleteDelay, then returns to prev.
func (e *Env) completed(label string, prev State) *Timed {
	return e.timed(&Completed{Label: label, Prev: prev}, prev, OpCompleteDelay)
}

// fail wraps err into an Error returning to prev.
func fail(err error, prev State) *Error {
	return &Error{Message: err.Error(), Prev: prev}
}

// markFull asks a listing to reload everything once it is live again.
func markFull(s State) State {
	if l, ok := s.(*Listing); ok {
		l.Refresh = RefreshFull
	}
	return s
}
