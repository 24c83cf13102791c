package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/worktrees/internal/config"
	"github.com/chmouel/worktrees/internal/models"
)

// requireGit skips the test when git is not installed.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// gitCmd runs git in dir and fails the test on error.
func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newOrigin creates a standard repository with one commit on main.
func newOrigin(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "origin")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	gitCmd(t, dir, "config", "user.name", "Test")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	writeFile(t, filepath.Join(dir, "README.md"), "hello\n")
	gitCmd(t, dir, "add", "README.md")
	gitCmd(t, dir, "commit", "-q", "-m", "init")
	return dir
}

// newHub clones a fresh origin into a bare hub and returns its directory.
func newHub(t *testing.T) string {
	t.Helper()
	origin := newOrigin(t)
	hub := filepath.Join(t.TempDir(), "project")
	svc := newTestService(t, t.TempDir())
	require.NoError(t, svc.InitHub(context.Background(), hub, origin))
	gitCmd(t, hub, "config", "user.name", "Test")
	gitCmd(t, hub, "config", "user.email", "test@example.com")
	return hub
}

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	return NewService(Options{Dir: dir, Store: config.NewStore(t.TempDir())})
}

func TestNewService(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	service := newTestService(t, dir)

	assert.Equal(t, dir, service.Dir())
	assert.Equal(t, config.DefaultSyncManifest, service.manifest)
	assert.Equal(t, config.DefaultArtifactDirs(), service.artifactDirs)

	expectedSlots := runtime.NumCPU() * 2
	if expectedSlots < 4 {
		expectedSlots = 4
	}
	if expectedSlots > 32 {
		expectedSlots = 32
	}
	assert.Equal(t, expectedSlots, service.Limit())

	count := 0
	for range expectedSlots {
		select {
		case <-service.semaphore:
			count++
		default:
		}
	}
	assert.Equal(t, expectedSlots, count)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()
	err := &Error{Args: []string{"push"}, Code: 1, Stderr: "rejected"}
	assert.Equal(t, "git push: rejected", err.Error())
	err = &Error{Args: []string{"pull"}, Code: 128}
	assert.Equal(t, "git pull: exit 128", err.Error())
}

func TestRunGit(t *testing.T) {
	requireGit(t)
	t.Parallel()
	service := newTestService(t, t.TempDir())
	ctx := context.Background()

	t.Run("version", func(t *testing.T) {
		out, err := service.RunGit(ctx, "", "--version")
		require.NoError(t, err)
		assert.Contains(t, out, "git version")
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		_, err := service.RunGit(ctx, "", "rev-parse", "--verify", "refs/heads/nope")
		require.Error(t, err)
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.NotZero(t, gerr.Code)
	})
}

func TestHubLifecycle(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	hub := newHub(t)
	svc := newTestService(t, hub)

	root, err := svc.ProjectRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, canonical(hub), canonical(root))
	assert.Equal(t, "main", svc.MainBranch(ctx))

	results, err := svc.SetupDefaultWorktrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SetupResult{
		{Name: "main", Status: SetupReady},
		{Name: "dev", Status: SetupReady, CreatedFrom: "main"},
	}, results)

	again, err := svc.SetupDefaultWorktrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, SetupSkipped, again[0].Status, "main already exists")

	wts, err := svc.ListWorktrees(ctx)
	require.NoError(t, err)
	require.Len(t, wts, 3)
	assert.True(t, wts[0].IsBare)
	assert.Equal(t, "main", wts[1].Branch)
	assert.Equal(t, "dev", wts[2].Branch)
	assert.Len(t, wts[1].Commit, 7)
	assert.Positive(t, wts[1].SizeBytes)
	assert.False(t, wts[1].Dirty())

	branches, err := svc.Branches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "main"}, branches)

	require.NoError(t, svc.RemoveWorktree(ctx, "dev", false))
	wts, err = svc.ListWorktrees(ctx)
	require.NoError(t, err)
	assert.Len(t, wts, 2)

	stale, err := svc.Clean(ctx, true, false)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestAddWorktreeMissingBranch(t *testing.T) {
	requireGit(t)
	t.Parallel()
	svc := newTestService(t, newHub(t))
	err := svc.AddWorktree(context.Background(), "ghost", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add worktree ghost")
}

func TestChangesAndHistory(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	hub := newHub(t)
	svc := newTestService(t, hub)
	require.NoError(t, svc.AddWorktree(ctx, "main", "main"))
	wt := filepath.Join(hub, "main")

	writeFile(t, filepath.Join(wt, "README.md"), "changed\n")
	writeFile(t, filepath.Join(wt, "new.txt"), "new\n")

	st, err := svc.Status(ctx, wt)
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
	require.Len(t, st.Unstaged, 1)
	assert.Equal(t, " M", st.Unstaged[0].Code)
	require.Len(t, st.Untracked, 1)
	assert.Equal(t, "new.txt", st.Untracked[0].Filename)

	diff, err := svc.Diff(ctx, wt)
	require.NoError(t, err)
	assert.Contains(t, diff, "+changed")

	require.NoError(t, svc.StageFile(ctx, wt, "new.txt"))
	st, err = svc.Status(ctx, wt)
	require.NoError(t, err)
	require.Len(t, st.Staged, 1)
	assert.Equal(t, "A ", st.Staged[0].Code)

	diff, err = svc.Diff(ctx, wt)
	require.NoError(t, err)
	assert.Contains(t, diff, "+new", "staged changes win")
	assert.NotContains(t, diff, "+changed")

	require.NoError(t, svc.UnstageFile(ctx, wt, "new.txt"))
	require.NoError(t, svc.StageAll(ctx, wt))
	st, err = svc.Status(ctx, wt)
	require.NoError(t, err)
	assert.Len(t, st.Staged, 2)
	require.NoError(t, svc.UnstageAll(ctx, wt))
	require.NoError(t, svc.StageAll(ctx, wt))

	require.Error(t, svc.Commit(ctx, wt, "  "))
	require.NoError(t, svc.Commit(ctx, wt, "feat: second"))

	commits, err := svc.History(ctx, wt, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "feat: second", commits[0].Message)
	assert.Equal(t, "Test", commits[0].Author)
	assert.Equal(t, "*", commits[0].Graph)
	assert.Equal(t, "init", commits[1].Message)

	gitCmd(t, wt, "branch", "--set-upstream-to=origin/main")
	wts, err := svc.ListWorktrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, wts[1].Ahead)
	assert.Zero(t, wts[1].Behind)
}

func TestStashRoundTrip(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	hub := newHub(t)
	svc := newTestService(t, hub)
	require.NoError(t, svc.AddWorktree(ctx, "main", "main"))
	wt := filepath.Join(hub, "main")

	writeFile(t, filepath.Join(wt, "README.md"), "wip\n")
	require.NoError(t, svc.SaveStash(ctx, wt, "half done"))

	stashes, err := svc.Stashes(ctx, wt)
	require.NoError(t, err)
	require.Len(t, stashes, 1)
	assert.Equal(t, 0, stashes[0].Index)
	assert.Equal(t, "main", stashes[0].Branch)
	assert.Equal(t, "half done", stashes[0].Message)

	st, err := svc.Status(ctx, wt)
	require.NoError(t, err)
	assert.Zero(t, st.Len())

	require.NoError(t, svc.ApplyStash(ctx, wt, 0))
	st, err = svc.Status(ctx, wt)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, svc.DropStash(ctx, wt, 0))
	stashes, err = svc.Stashes(ctx, wt)
	require.NoError(t, err)
	assert.Empty(t, stashes)

	require.Error(t, svc.PopStash(ctx, wt, 0), "nothing left to pop")
}

func TestRebaseConflict(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	hub := newHub(t)
	svc := newTestService(t, hub)
	require.NoError(t, svc.AddWorktree(ctx, "main", "main"))
	require.NoError(t, svc.AddNewWorktree(ctx, "topic", "topic", "main"))
	mainWt, topic := filepath.Join(hub, "main"), filepath.Join(hub, "topic")

	writeFile(t, filepath.Join(mainWt, "README.md"), "from main\n")
	require.NoError(t, svc.StageAll(ctx, mainWt))
	require.NoError(t, svc.Commit(ctx, mainWt, "main edit"))
	writeFile(t, filepath.Join(topic, "README.md"), "from topic\n")
	require.NoError(t, svc.StageAll(ctx, topic))
	require.NoError(t, svc.Commit(ctx, topic, "topic edit"))

	require.Error(t, svc.Rebase(ctx, topic, "main"))
	diff, err := svc.ConflictDiff(ctx, topic)
	require.NoError(t, err)
	assert.Contains(t, diff, "README.md")
	gitCmd(t, topic, "rebase", "--abort")

	require.NoError(t, svc.SwitchBranch(ctx, topic, "topic"))
}

func TestCheckRepo(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t, t.TempDir())

	hub := newHub(t)
	assert.Equal(t, models.RepoBareHub, svc.CheckRepo(ctx, hub))
	assert.Equal(t, models.RepoStandard, svc.CheckRepo(ctx, newOrigin(t)))
	assert.Equal(t, models.RepoNone, svc.CheckRepo(ctx, t.TempDir()))

	require.NoError(t, newTestService(t, hub).AddWorktree(ctx, "main", "main"))
	assert.Equal(t, models.RepoBareHub, svc.CheckRepo(ctx, filepath.Join(hub, "main")))
}

func TestInitHubFresh(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "fresh")
	svc := newTestService(t, t.TempDir())

	require.NoError(t, svc.InitHub(ctx, dir, ""))
	data, err := os.ReadFile(filepath.Join(dir, ".git"))
	require.NoError(t, err)
	assert.Equal(t, "gitdir: ./.bare\n", string(data))
	assert.Equal(t, "refs/heads/main", gitCmd(t, filepath.Join(dir, ".bare"), "symbolic-ref", "HEAD"))

	err = svc.InitHub(ctx, dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConvert(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	origin := newOrigin(t)
	svc := newTestService(t, origin)

	hub, err := svc.Convert(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(origin), "origin-hub"), hub)
	assert.FileExists(t, filepath.Join(hub, "main", "README.md"))
	assert.DirExists(t, filepath.Join(hub, ".bare"))
	assert.NoDirExists(t, filepath.Join(origin, ".git"))

	_, err = svc.Convert(ctx, "", "main")
	require.Error(t, err, "the checkout has no .git any more")
}

func TestMigrate(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	repo := newOrigin(t)
	svc := newTestService(t, repo)
	writeFile(t, filepath.Join(repo, "README.md"), "dirty\n")

	_, err := svc.Migrate(ctx, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	target, err := svc.Migrate(ctx, true, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "main"), target)
	assert.NoDirExists(t, target, "dry run changes nothing")

	target, err = svc.Migrate(ctx, true, false)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(repo, ".bare"))
	data, err := os.ReadFile(filepath.Join(target, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "dirty\n", string(data))

	st, err := svc.Status(ctx, target)
	require.NoError(t, err)
	require.Len(t, st.Unstaged, 1, "local changes survive")
	assert.Equal(t, "README.md", st.Unstaged[0].Filename)

	hubSvc := newTestService(t, repo)
	wts, err := hubSvc.ListWorktrees(ctx)
	require.NoError(t, err)
	require.Len(t, wts, 2)
	assert.Equal(t, "main", wts[1].Branch)
}

func TestMigrateTargetExists(t *testing.T) {
	requireGit(t)
	t.Parallel()
	repo := newOrigin(t)
	require.NoError(t, os.Mkdir(filepath.Join(repo, "main"), 0o755))
	_, err := newTestService(t, repo).Migrate(context.Background(), true, false)
	require.ErrorIs(t, err, ErrTargetExists)
}
