package cli

import (
	"context"
	"sync"

	"github.com/chmouel/worktrees/internal/git"
	"github.com/chmouel/worktrees/internal/models"
)

// fakeBackend records calls and serves canned data. Calls may arrive from
// bridge workers, hence the mutex.
type fakeBackend struct {
	mu sync.Mutex

	root      string
	main      string
	worktrees []models.Worktree
	status    map[string]models.Status
	stashes   []models.Stash
	apiKey    string
	setup     []git.SetupResult
	cleaned   []string
	hub       string
	migrated  string
	explain   string
	conflict  string
	repoKind  models.RepoKind

	failOn map[string]error
	calls  []string
	args   map[string][]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		root: "/hub",
		main: "main",
		worktrees: []models.Worktree{
			{Path: "/hub/.bare", IsBare: true},
			{Path: "/hub/main", Branch: "main", Commit: "abc1234"},
			{Path: "/hub/dev", Branch: "dev", Commit: "def5678"},
			{Path: "/hub/feature-login", Branch: "feature/login", Commit: "0a1b2c3"},
		},
		status: map[string]models.Status{},
		failOn: map[string]error{},
		args:   map[string][]any{},
	}
}

func (f *fakeBackend) record(name string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.args[name] = args
	return f.failOn[name]
}

func (f *fakeBackend) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeBackend) argsOf(name string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[name]
}

func (f *fakeBackend) ListWorktrees(context.Context) ([]models.Worktree, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return f.worktrees, nil
}

func (f *fakeBackend) AddNewWorktree(_ context.Context, name, branch, base string) error {
	return f.record("add-new", name, branch, base)
}

func (f *fakeBackend) AddWorktree(_ context.Context, name, branch string) error {
	return f.record("add", name, branch)
}

func (f *fakeBackend) RemoveWorktree(_ context.Context, name string, force bool) error {
	return f.record("remove", name, force)
}

func (f *fakeBackend) SyncConfigs(_ context.Context, path string) error {
	f.mu.Lock()
	err := f.failOn["sync:"+path]
	f.mu.Unlock()
	if rerr := f.record("sync", path); rerr != nil {
		return rerr
	}
	return err
}

func (f *fakeBackend) Clean(_ context.Context, dryRun, artifacts bool) ([]string, error) {
	if err := f.record("clean", dryRun, artifacts); err != nil {
		return nil, err
	}
	return f.cleaned, nil
}

func (f *fakeBackend) SetupDefaults(context.Context) error {
	return f.record("setup-defaults")
}

func (f *fakeBackend) SetupDefaultWorktrees(context.Context) ([]git.SetupResult, error) {
	if err := f.record("setup"); err != nil {
		return nil, err
	}
	return f.setup, nil
}

func (f *fakeBackend) ProjectRoot(context.Context) (string, error) {
	if err := f.record("root"); err != nil {
		return "", err
	}
	return f.root, nil
}

func (f *fakeBackend) DetectFlavor(context.Context) models.Flavor {
	return models.FlavorStandard
}

func (f *fakeBackend) Fetch(_ context.Context, path string) error {
	return f.record("fetch", path)
}

func (f *fakeBackend) Pull(_ context.Context, path string) error {
	return f.record("pull", path)
}

func (f *fakeBackend) Push(_ context.Context, path string) error {
	return f.record("push", path)
}

func (f *fakeBackend) Status(_ context.Context, path string) (models.Status, error) {
	if err := f.record("status", path); err != nil {
		return models.Status{}, err
	}
	return f.status[path], nil
}

func (f *fakeBackend) Diff(_ context.Context, path string) (string, error) {
	return "", f.record("diff", path)
}

func (f *fakeBackend) StageFile(_ context.Context, path, file string) error {
	return f.record("stage", path, file)
}

func (f *fakeBackend) UnstageFile(_ context.Context, path, file string) error {
	return f.record("unstage", path, file)
}

func (f *fakeBackend) StageAll(_ context.Context, path string) error {
	return f.record("stage-all", path)
}

func (f *fakeBackend) UnstageAll(_ context.Context, path string) error {
	return f.record("unstage-all", path)
}

func (f *fakeBackend) Commit(_ context.Context, path, message string) error {
	return f.record("commit", path, message)
}

func (f *fakeBackend) History(_ context.Context, path string, _ int) ([]models.Commit, error) {
	return nil, f.record("history", path)
}

func (f *fakeBackend) Branches(context.Context) ([]string, error) {
	return nil, f.record("branches")
}

func (f *fakeBackend) SwitchBranch(_ context.Context, path, branch string) error {
	return f.record("switch-branch", path, branch)
}

func (f *fakeBackend) MainBranch(context.Context) string {
	return f.main
}

func (f *fakeBackend) Rebase(_ context.Context, path, upstream string) error {
	return f.record("rebase", path, upstream)
}

func (f *fakeBackend) ConflictDiff(_ context.Context, path string) (string, error) {
	if err := f.record("conflict-diff", path); err != nil {
		return "", err
	}
	return f.conflict, nil
}

func (f *fakeBackend) Stashes(_ context.Context, path string) ([]models.Stash, error) {
	if err := f.record("stashes", path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stashes, nil
}

func (f *fakeBackend) ApplyStash(_ context.Context, path string, index int) error {
	return f.record("apply-stash", path, index)
}

func (f *fakeBackend) PopStash(_ context.Context, path string, index int) error {
	return f.record("pop-stash", path, index)
}

func (f *fakeBackend) DropStash(_ context.Context, path string, index int) error {
	if err := f.record("drop-stash", path, index); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < len(f.stashes) {
		f.stashes = append(f.stashes[:index], f.stashes[index+1:]...)
	}
	return nil
}

func (f *fakeBackend) SaveStash(_ context.Context, path, message string) error {
	if err := f.record("save-stash", path, message); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stashes = append([]models.Stash{{Message: message}}, f.stashes...)
	return nil
}

func (f *fakeBackend) APIKey() (string, error) {
	if err := f.record("api-key"); err != nil {
		return "", err
	}
	return f.apiKey, nil
}

func (f *fakeBackend) SetAPIKey(key string) error {
	if err := f.record("set-api-key", key); err != nil {
		return err
	}
	f.apiKey = key
	return nil
}

func (f *fakeBackend) GenerateCommitMessage(context.Context, string, string) (string, error) {
	return "", f.record("commit-message")
}

func (f *fakeBackend) ExplainConflict(_ context.Context, diff string) (string, error) {
	if err := f.record("explain", diff); err != nil {
		return "", err
	}
	return f.explain, nil
}

func (f *fakeBackend) PreferredEditor() (string, error) {
	return "", f.record("editor")
}

func (f *fakeBackend) SetPreferredEditor(command string) error {
	return f.record("set-editor", command)
}

func (f *fakeBackend) InitHub(_ context.Context, dir, url string) error {
	return f.record("init", dir, url)
}

func (f *fakeBackend) Convert(_ context.Context, hubName, branch string) (string, error) {
	if err := f.record("convert", hubName, branch); err != nil {
		return "", err
	}
	return f.hub, nil
}

func (f *fakeBackend) Migrate(_ context.Context, force, dryRun bool) (string, error) {
	if err := f.record("migrate", force, dryRun); err != nil {
		return "", err
	}
	return f.migrated, nil
}

func (f *fakeBackend) CheckRepo(_ context.Context, dir string) models.RepoKind {
	_ = f.record("check-repo", dir)
	return f.repoKind
}

var _ Backend = (*fakeBackend)(nil)
