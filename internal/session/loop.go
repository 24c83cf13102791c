package session

import (
	"context"
	"fmt"

	log "github.com/chmouel/worktrees/internal/log"
	"github.com/chmouel/worktrees/internal/models"
)

// Loop owns the live state. Only the goroutine calling its methods changes
// state; workers and the watcher talk to it through channels.
type Loop struct {
	env    *Env
	state  State
	events <-chan models.RepositoryEvent
	tick   uint64
	// rescan remembers watcher signals received while no listing was live.
	rescan bool
}

// NewLoop returns a loop starting in initial. events may be nil.
func NewLoop(env *Env, initial State, events <-chan models.RepositoryEvent) *Loop {
	l := &Loop{env: env, events: events}
	l.install(initial)
	return l
}

// State returns the live state.
func (l *Loop) State() State {
	return l.state
}

// Env returns the environment interpreters run with.
func (l *Loop) Env() *Env {
	return l.env
}

// Exited reports whether the session has ended, and the path it ended with.
func (l *Loop) Exited() (string, bool) {
	ex, ok := l.state.(*Exiting)
	if !ok {
		return "", false
	}
	return ex.Path, true
}

// install makes next the live state. A listing that was never loaded, or
// that missed watcher signals while boxed, reloads everything.
func (l *Loop) install(next State) {
	if next == nil {
		return
	}
	if l.state != nil && l.state != next {
		log.Printf("session: %s -> %s", l.state.Name(), next.Name())
	}
	l.state = next
	if lst, ok := next.(*Listing); ok && (!lst.Loaded || l.rescan) {
		lst.Refresh = RefreshFull
		l.rescan = false
	}
}

// Tick drains pending signals and results, resolves an elapsed Timed state
// and performs a pending listing refresh. It never blocks.
func (l *Loop) Tick() {
	l.drainWatcher()
	l.drainResults()
	if t, ok := l.state.(*Timed); ok && t.Elapsed(l.env.now()) {
		l.install(markFull(t.Target))
	}
	if lst, ok := l.state.(*Listing); ok && lst.Refresh != RefreshNone {
		l.refresh(lst)
	}
}

func (l *Loop) drainWatcher() {
	for l.events != nil {
		select {
		case ev, ok := <-l.events:
			if !ok {
				log.Printf("session: watcher closed")
				l.events = nil
				return
			}
			log.Printf("session: repository event %T", ev)
			if lst, live := l.state.(*Listing); live {
				lst.Refresh = RefreshFull
			} else {
				l.rescan = true
			}
		default:
			return
		}
	}
}

func (l *Loop) drainResults() {
	if l.env.Bridge == nil {
		return
	}
	results := l.env.Bridge.Results()
	for {
		select {
		case res := <-results:
			l.install(Apply(res, l.env, l.state))
		default:
			return
		}
	}
}

// refresh reloads the listing and its dashboard from the backend.
func (l *Loop) refresh(lst *Listing) {
	kind := lst.Refresh
	lst.Refresh = RefreshNone
	ctx := l.env.ctx()

	if kind == RefreshFull {
		selected := ""
		if wt, ok := lst.Selected(); ok {
			selected = wt.Path
		}
		worktrees, err := l.env.Backend.ListWorktrees(ctx)
		lst.Loaded = true
		if err != nil {
			log.Printf("session: listing worktrees: %v", err)
			lst.Dashboard.Err = err.Error()
			return
		}
		lst.Worktrees = worktrees
		lst.applyFilter()
		for i, idx := range lst.Visible {
			if worktrees[idx].Path == selected {
				lst.Cursor = i
				break
			}
		}
	}
	l.refreshDashboard(ctx, lst)
}

func (l *Loop) refreshDashboard(ctx context.Context, lst *Listing) {
	d := &lst.Dashboard
	d.Err = ""
	wt, ok := lst.Selected()
	if !ok || wt.IsBare {
		d.Path, d.Status, d.History = "", nil, nil
		return
	}
	if d.Path != wt.Path {
		d.Status, d.History = nil, nil
		d.Path = wt.Path
	}
	switch d.Tab {
	case TabStatus:
		st, err := l.env.Backend.Status(ctx, wt.Path)
		if err != nil {
			d.Err = err.Error()
			return
		}
		d.Status = &st
	case TabLog:
		commits, err := l.env.Backend.History(ctx, wt.Path, l.env.historyLimit())
		if err != nil {
			d.Err = err.Error()
			return
		}
		d.History = commits
	}
}

// Draw paints the display state and advances the animation tick.
func (l *Loop) Draw(draw DrawFunc) {
	if draw != nil {
		draw(Display(l.state), l.tick)
	}
	l.tick++
}

// Dispatch interprets one input event against the live state.
func (l *Loop) Dispatch(ev Event) {
	switch e := ev.(type) {
	case ResizeEvent:
		l.env.Layout = NewLayout(e.Width, e.Height)
		return
	case KeyEvent:
		if e.Key == KeyCtrlC {
			l.install(&Exiting{})
			return
		}
	}
	l.install(Interpret(ev, l.env, l.state))
}

// Run is the headless driver: it polls src itself and runs until the session
// exits, returning its path. Interactive sessions are driven by the tui
// package, which calls Tick, Draw and Dispatch from the Bubble Tea update
// loop in the same order.
func (l *Loop) Run(ctx context.Context, src EventSource, draw DrawFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		l.Tick()
		if path, done := l.Exited(); done {
			return path, nil
		}
		l.Draw(draw)
		ev, ok, err := src.Poll(ctx, PollInterval)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		if !ok {
			continue
		}
		l.Dispatch(ev)
		if path, done := l.Exited(); done {
			return path, nil
		}
	}
}
