package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/worktrees/internal/models"
)

func TestNewLoopLoadsListing(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	env, _ := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)

	lst := l.State().(*Listing)
	assert.Equal(t, RefreshFull, lst.Refresh)
	l.Tick()
	assert.True(t, lst.Loaded)
	assert.Len(t, lst.Worktrees, 3)
	assert.Equal(t, []int{0, 1, 2}, lst.Visible)
	assert.Equal(t, 1, backend.called("list"))

	l.Tick()
	assert.Equal(t, 1, backend.called("list"), "nothing pending")
}

func TestLoopRefreshKeepsSelection(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	env, _ := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()
	lst := l.State().(*Listing)
	lst.Cursor = 2

	backend.mu.Lock()
	backend.worktrees = []models.Worktree{
		{Path: "/hub/.bare", IsBare: true},
		{Path: "/hub/alpha", Branch: "alpha"},
		{Path: "/hub/main", Branch: "main"},
		{Path: "/hub/dev", Branch: "dev"},
	}
	backend.mu.Unlock()

	l.Dispatch(Char('r'))
	l.Tick()
	wt, ok := lst.Selected()
	require.True(t, ok)
	assert.Equal(t, "/hub/dev", wt.Path)
}

func TestLoopDashboardTabs(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.status = models.Status{Staged: []models.StatusFile{{Filename: "a", Code: "A "}}}
	backend.commits = []models.Commit{{Hash: "abc", Message: "init"}}
	env, _ := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()
	lst := l.State().(*Listing)

	l.Dispatch(Char('2'))
	l.Tick()
	assert.Nil(t, lst.Dashboard.Status, "the bare hub has no status")
	assert.Zero(t, backend.called("status"))

	l.Dispatch(Char('j'))
	l.Tick()
	require.NotNil(t, lst.Dashboard.Status)
	assert.Equal(t, "/hub/main", lst.Dashboard.Path)
	assert.Equal(t, 1, backend.called("status"))

	l.Dispatch(Char('3'))
	l.Tick()
	assert.Equal(t, backend.commits, lst.Dashboard.History)

	backend.failOn["history"] = errBoom
	l.Dispatch(Char('j'))
	l.Tick()
	assert.Equal(t, "boom", lst.Dashboard.Err)
	assert.Nil(t, lst.Dashboard.History, "stale data of the previous worktree is dropped")
}

func TestLoopListFailureStaysOnListing(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.failOn["list"] = errBoom
	env, _ := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()
	l.Tick()

	lst, ok := l.State().(*Listing)
	require.True(t, ok)
	assert.Equal(t, "boom", lst.Dashboard.Err)
	assert.Equal(t, 1, backend.called("list"))
}

func TestLoopTimedResolves(t *testing.T) {
	t.Parallel()
	env, clock := newTestEnv(t, newFakeBackend())
	target := loadedListing(env, "/hub/main")
	l := NewLoop(env, env.completed("Done", target), nil)

	l.Tick()
	require.IsType(t, &Timed{}, l.State())
	var drawn State
	l.Draw(func(display State, _ uint64) { drawn = display })
	assert.IsType(t, &Completed{}, drawn, "the inner state is drawn")

	clock.Advance(OpCompleteDelay - time.Millisecond)
	l.Tick()
	require.IsType(t, &Timed{}, l.State())

	clock.Advance(time.Millisecond)
	l.Tick()
	assert.Same(t, target, l.State())
	assert.Equal(t, RefreshNone, target.Refresh, "refreshed during the same tick")
}

func TestLoopTimedSkip(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t, newFakeBackend())
	target := loadedListing(env, "/hub/main")
	l := NewLoop(env, env.completed("Done", target), nil)

	l.Dispatch(Char('x'))
	require.IsType(t, &Timed{}, l.State())
	l.Dispatch(Press(KeyEnter))
	assert.Same(t, target, l.State())
}

func TestLoopDrawTickIncreases(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t, newFakeBackend())
	l := NewLoop(env, &Welcome{}, nil)
	var ticks []uint64
	for range 3 {
		l.Draw(func(_ State, tick uint64) { ticks = append(ticks, tick) })
	}
	assert.Equal(t, []uint64{0, 1, 2}, ticks)
}

func TestLoopWatcherSignals(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	env, _ := newTestEnv(t, backend)
	events := make(chan models.RepositoryEvent, 1)
	l := NewLoop(env, &Listing{}, events)
	l.Tick()
	lst := l.State().(*Listing)
	require.Equal(t, 1, backend.called("list"))

	events <- models.RescanRequired{}
	l.Tick()
	assert.Equal(t, 2, backend.called("list"))

	// a signal while a modal is live is kept for the boxed listing
	l.Dispatch(Char('?'))
	events <- models.RescanRequired{}
	l.Tick()
	assert.Equal(t, RefreshNone, lst.Refresh, "the boxed listing is not touched")
	l.Dispatch(Press(KeyEsc))
	assert.Same(t, lst, l.State())
	l.Tick()
	assert.Equal(t, 3, backend.called("list"))
}

func TestLoopFetchAfterWatcherClosed(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	env, _ := newTestEnv(t, backend)
	events := make(chan models.RepositoryEvent, 1)
	l := NewLoop(env, &Listing{}, events)
	l.Tick()
	lst := l.State().(*Listing)
	lst.Cursor = 2

	l.Dispatch(Char('f'))
	fetching, ok := l.State().(*Fetching)
	require.True(t, ok)
	assert.Equal(t, "dev", fetching.Branch)
	close(events)

	env.Bridge.Wait()
	l.Tick()
	assert.Same(t, lst, l.State())
	assert.Equal(t, 1, backend.called("fetch"))
	assert.Equal(t, 2, backend.called("list"), "fetch success reloads the listing")

	// a closed watcher is drained once and then ignored
	l.Tick()
	assert.Same(t, lst, l.State())
}

func TestLoopCancelledFetchIsDiscarded(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.block = make(chan struct{})
	env, _ := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()
	lst := l.State().(*Listing)

	l.Dispatch(Char('f'))
	require.IsType(t, &Fetching{}, l.State())
	l.Dispatch(Press(KeyEsc))
	require.Same(t, lst, l.State())

	close(backend.block)
	env.Bridge.Wait()
	l.Tick()
	assert.Same(t, lst, l.State(), "the late result no longer applies")
}

func TestLoopRepeatedFetchIgnoresEarlierDispatch(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.block = make(chan struct{})
	env, _ := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()
	lst := l.State().(*Listing)

	l.Dispatch(Char('f'))
	first := l.State().(*Fetching)
	l.Dispatch(Press(KeyEsc))
	l.Dispatch(Char('f'))
	second, ok := l.State().(*Fetching)
	require.True(t, ok)
	require.NotSame(t, first, second)
	assert.Greater(t, second.Seq, first.Seq)

	// the first fetch finishing does not complete the second one
	l.install(Apply(FetchCompleted{Seq: first.Seq, Branch: first.Branch}, env, l.State()))
	assert.Same(t, second, l.State())

	close(backend.block)
	env.Bridge.Wait()
	l.Tick()
	assert.Same(t, lst, l.State())
}

func TestLoopResizeUpdatesLayout(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t, newFakeBackend())
	l := NewLoop(env, &Welcome{}, nil)
	l.Dispatch(ResizeEvent{Width: 50, Height: 10})
	assert.Equal(t, NewLayout(50, 10), env.Layout)
	assert.IsType(t, &Welcome{}, l.State())
}

func TestLoopCtrlCExits(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t, newFakeBackend())
	l := NewLoop(env, &Help{Prev: &Listing{}}, nil)
	l.Dispatch(Press(KeyCtrlC))
	path, done := l.Exited()
	assert.True(t, done)
	assert.Empty(t, path)
}

func TestRunReturnsSelectedPath(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t, newFakeBackend())
	l := NewLoop(env, &Listing{SelectionMode: true}, nil)
	src := &scriptedSource{events: []Event{Char('j'), Char('j'), Press(KeyEnter)}}
	draws := 0

	path, err := l.Run(context.Background(), src, func(State, uint64) { draws++ })
	require.NoError(t, err)
	assert.Equal(t, "/hub/dev", path)
	assert.Equal(t, 3, draws)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t, newFakeBackend())
	l := NewLoop(env, &Welcome{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Run(ctx, &scriptedSource{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSetupFlowThroughLoop(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	env, clock := newTestEnv(t, backend)
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()

	l.Dispatch(Char('u'))
	require.IsType(t, &SettingUpDefaults{}, l.State())
	label, busy := BusyLabel(l.State())
	assert.True(t, busy)
	assert.NotEmpty(t, label)

	env.Bridge.Wait()
	l.Tick()
	timed, ok := l.State().(*Timed)
	require.True(t, ok)
	assert.IsType(t, &SetupComplete{}, Display(timed))

	clock.Advance(SetupCompleteDelay)
	l.Tick()
	lst, ok := l.State().(*Listing)
	require.True(t, ok)
	assert.True(t, lst.Loaded)
	assert.Equal(t, 1, backend.called("setup"))
}
