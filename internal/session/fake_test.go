package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chmouel/worktrees/internal/models"
)

// fakeBackend records calls and serves canned data.
type fakeBackend struct {
	mu sync.Mutex

	worktrees []models.Worktree
	status    models.Status
	diff      string
	commits   []models.Commit
	branches  []string
	stashes   []models.Stash
	editor    string
	apiKey    string
	message   string
	removed   []string

	// err fails every call when set; failOn fails only the named calls.
	err    error
	failOn map[string]error
	// block makes Fetch wait until closed.
	block chan struct{}
	// panicOn panics inside the named call.
	panicOn string

	calls []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		worktrees: []models.Worktree{
			{Path: "/hub/.bare", IsBare: true},
			{Path: "/hub/main", Branch: "main", Commit: "abc1234"},
			{Path: "/hub/dev", Branch: "dev", Commit: "def5678"},
		},
		branches: []string{"dev", "feature", "main"},
		failOn:   map[string]error{},
	}
}

func (f *fakeBackend) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.panicOn == name {
		panic(name + " exploded")
	}
	if err, ok := f.failOn[name]; ok {
		return err
	}
	return f.err
}

func (f *fakeBackend) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) ListWorktrees(context.Context) ([]models.Worktree, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Worktree(nil), f.worktrees...), nil
}

func (f *fakeBackend) AddNewWorktree(_ context.Context, name, branch, _ string) error {
	if err := f.record("add"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.worktrees = append(f.worktrees, models.Worktree{Path: "/hub/" + name, Branch: branch})
	return nil
}

func (f *fakeBackend) RemoveWorktree(_ context.Context, name string, _ bool) error {
	if err := f.record("remove"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.worktrees[:0]
	for _, wt := range f.worktrees {
		if wt.Name() != name {
			kept = append(kept, wt)
		}
	}
	f.worktrees = kept
	return nil
}

func (f *fakeBackend) SyncConfigs(context.Context, string) error { return f.record("sync") }

func (f *fakeBackend) Clean(context.Context, bool, bool) ([]string, error) {
	if err := f.record("clean"); err != nil {
		return nil, err
	}
	return f.removed, nil
}

func (f *fakeBackend) SetupDefaults(context.Context) error { return f.record("setup") }

func (f *fakeBackend) ProjectRoot(context.Context) (string, error) {
	if err := f.record("root"); err != nil {
		return "", err
	}
	return "/hub", nil
}

func (f *fakeBackend) DetectFlavor(context.Context) models.Flavor { return models.FlavorStandard }

func (f *fakeBackend) Fetch(ctx context.Context, _ string) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.record("fetch")
}

func (f *fakeBackend) Pull(context.Context, string) error { return f.record("pull") }
func (f *fakeBackend) Push(context.Context, string) error { return f.record("push") }

func (f *fakeBackend) Status(context.Context, string) (models.Status, error) {
	if err := f.record("status"); err != nil {
		return models.Status{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeBackend) Diff(context.Context, string) (string, error) {
	if err := f.record("diff"); err != nil {
		return "", err
	}
	return f.diff, nil
}

func (f *fakeBackend) StageFile(_ context.Context, _, file string) error {
	if err := f.record("stage"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var rest []models.StatusFile
	for _, sf := range f.status.Unstaged {
		if sf.Filename == file {
			f.status.Staged = append(f.status.Staged, models.StatusFile{Filename: file, Code: "M "})
			continue
		}
		rest = append(rest, sf)
	}
	f.status.Unstaged = rest
	return nil
}

func (f *fakeBackend) UnstageFile(context.Context, string, string) error { return f.record("unstage") }
func (f *fakeBackend) StageAll(context.Context, string) error            { return f.record("stage-all") }
func (f *fakeBackend) UnstageAll(context.Context, string) error          { return f.record("unstage-all") }

func (f *fakeBackend) Commit(_ context.Context, _, msg string) error {
	if err := f.record("commit"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.status = models.Status{}
	return nil
}

func (f *fakeBackend) History(context.Context, string, int) ([]models.Commit, error) {
	if err := f.record("history"); err != nil {
		return nil, err
	}
	return f.commits, nil
}

func (f *fakeBackend) Branches(context.Context) ([]string, error) {
	if err := f.record("branches"); err != nil {
		return nil, err
	}
	return f.branches, nil
}

func (f *fakeBackend) SwitchBranch(context.Context, string, string) error {
	return f.record("switch")
}

func (f *fakeBackend) MainBranch(context.Context) string { return "main" }

func (f *fakeBackend) Rebase(context.Context, string, string) error { return f.record("rebase") }

func (f *fakeBackend) ConflictDiff(context.Context, string) (string, error) {
	if err := f.record("conflict-diff"); err != nil {
		return "", err
	}
	return "<<<<<<< ours", nil
}

func (f *fakeBackend) Stashes(context.Context, string) ([]models.Stash, error) {
	if err := f.record("stashes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Stash(nil), f.stashes...), nil
}

func (f *fakeBackend) dropStash(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.stashes[:0]
	for _, s := range f.stashes {
		if s.Index != index {
			kept = append(kept, s)
		}
	}
	f.stashes = kept
}

func (f *fakeBackend) ApplyStash(context.Context, string, int) error { return f.record("stash-apply") }

func (f *fakeBackend) PopStash(_ context.Context, _ string, index int) error {
	if err := f.record("stash-pop"); err != nil {
		return err
	}
	f.dropStash(index)
	return nil
}

func (f *fakeBackend) DropStash(_ context.Context, _ string, index int) error {
	if err := f.record("stash-drop"); err != nil {
		return err
	}
	f.dropStash(index)
	return nil
}

func (f *fakeBackend) SaveStash(_ context.Context, _, msg string) error {
	if err := f.record("stash-save"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stashes = append([]models.Stash{{Index: 0, Message: msg}}, f.stashes...)
	return nil
}

func (f *fakeBackend) APIKey() (string, error) { return f.apiKey, f.record("api-key") }

func (f *fakeBackend) SetAPIKey(key string) error {
	if err := f.record("set-api-key"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = key
	return nil
}

func (f *fakeBackend) GenerateCommitMessage(context.Context, string, string) (string, error) {
	if err := f.record("ai-commit"); err != nil {
		return "", err
	}
	return "  feat(core): add things\n", nil
}

func (f *fakeBackend) ExplainConflict(context.Context, string) (string, error) {
	if err := f.record("ai-explain"); err != nil {
		return "", err
	}
	return "both sides edited the same line", nil
}

func (f *fakeBackend) PreferredEditor() (string, error) {
	if err := f.record("editor"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editor, nil
}

func (f *fakeBackend) SetPreferredEditor(cmd string) error {
	if err := f.record("set-editor"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editor = cmd
	return nil
}

var errBoom = errors.New("boom")

// fakeClock is a settable clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// scriptedSource replays events, then reports nothing.
type scriptedSource struct {
	events []Event
}

func (s *scriptedSource) Poll(ctx context.Context, _ time.Duration) (Event, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if len(s.events) == 0 {
		return nil, false, nil
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true, nil
}

// newTestEnv returns an env over backend with a bridge closed at cleanup.
func newTestEnv(t interface {
	Cleanup(func())
}, backend *fakeBackend,
) (*Env, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	bridge := NewBridge(context.Background(), backend)
	t.Cleanup(bridge.Close)
	env := &Env{
		Ctx:     context.Background(),
		Backend: backend,
		Bridge:  bridge,
		Now:     clock.Now,
		Layout:  NewLayout(120, 40),
		Editors: []models.EditorOption{{Name: "VS Code", Command: "code"}, {Name: "Zed", Command: "zed"}},
	}
	return env, clock
}

// waitResult blocks until the bridge delivered one result.
func waitResult(env *Env) Result {
	select {
	case res := <-env.Bridge.Results():
		return res
	case <-time.After(5 * time.Second):
		return nil
	}
}

// loadedListing returns a listing loaded from backend with the cursor on path.
func loadedListing(env *Env, path string) *Listing {
	l := NewLoop(env, &Listing{}, nil)
	l.Tick()
	lst := l.State().(*Listing)
	for i, idx := range lst.Visible {
		if lst.Worktrees[idx].Path == path {
			lst.Cursor = i
		}
	}
	lst.Refresh = RefreshNone
	return lst
}
