package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/worktrees/internal/models"
)

func TestSyncConfigsManifest(t *testing.T) {
	t.Parallel()
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(src, ".worktrees.sync"), `# files shared by every worktree
copy .env
symlink shared
copy shared
copy missing.txt
teleport .env
`)
	writeFile(t, filepath.Join(src, ".env"), "TOKEN=1\n")
	writeFile(t, filepath.Join(src, "shared", "data.json"), "{}")
	writeFile(t, filepath.Join(dest, "shared", "stale"), "old")

	svc := newTestService(t, src)
	require.NoError(t, svc.SyncConfigs(context.Background(), dest))

	data, err := os.ReadFile(filepath.Join(dest, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "TOKEN=1\n", string(data))

	link, err := os.Readlink(filepath.Join(dest, "shared"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(src, "shared"), link)
	assert.NoFileExists(t, filepath.Join(dest, "shared", "stale"), "the old directory was replaced, not merged")

	assert.NoFileExists(t, filepath.Join(dest, "missing.txt"))
}

func TestSyncConfigsWithoutManifest(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()
	svc := newTestService(t, t.TempDir())
	require.NoError(t, svc.SyncConfigs(context.Background(), dest))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSyncConfigsMissingWorktree(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, t.TempDir())
	require.Error(t, svc.SyncConfigs(context.Background(), filepath.Join(t.TempDir(), "gone")))
}

func TestSyncConfigsGradle(t *testing.T) {
	t.Parallel()
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(src, "build.gradle.kts"), "")
	writeFile(t, filepath.Join(src, "local.properties"), "sdk.dir=/opt/android\n")
	writeFile(t, filepath.Join(src, "gradle.properties"), "org.gradle.jvmargs=-Xmx2g\n")

	svc := newTestService(t, src)
	assert.Equal(t, models.FlavorKMPAndroid, svc.DetectFlavor(context.Background()))
	require.NoError(t, svc.SyncConfigs(context.Background(), dest))
	require.NoError(t, svc.SyncConfigs(context.Background(), dest))

	data, err := os.ReadFile(filepath.Join(dest, "local.properties"))
	require.NoError(t, err)
	assert.Equal(t, "sdk.dir=/opt/android\n", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "gradle.properties"))
	require.NoError(t, err)
	assert.Equal(t, "org.gradle.jvmargs=-Xmx2g\n"+gradleCachingBlock, string(data), "added once")
}

func TestDetectFlavorStandard(t *testing.T) {
	t.Parallel()
	assert.Equal(t, models.FlavorStandard, detectFlavor(t.TempDir()))
}

func TestDirSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "12345")
	writeFile(t, filepath.Join(dir, "sub", "b"), "123")
	assert.Equal(t, int64(8), dirSize(dir))
	assert.Zero(t, dirSize(filepath.Join(dir, "missing")))
}

func TestCleanArtifacts(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	hub := newHub(t)
	svc := newTestService(t, hub)
	require.NoError(t, svc.AddWorktree(ctx, "main", "main"))
	require.NoError(t, svc.AddNewWorktree(ctx, "dev", "dev", "main"))
	writeFile(t, filepath.Join(hub, "main", "node_modules", "x.js"), "x")
	writeFile(t, filepath.Join(hub, "dev", "build", "out.o"), "x")

	// running from main keeps its artifacts
	fromMain := newTestService(t, filepath.Join(hub, "main"))
	dry, err := fromMain.Clean(ctx, true, true)
	require.NoError(t, err)
	require.Len(t, dry, 1)
	assert.Contains(t, dry[0], "[dry-run] build artifact: ")
	assert.DirExists(t, filepath.Join(hub, "dev", "build"))

	done, err := fromMain.Clean(ctx, false, true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Contains(t, done[0], "cleaned: ")
	assert.NoDirExists(t, filepath.Join(hub, "dev", "build"))
	assert.DirExists(t, filepath.Join(hub, "main", "node_modules"))
}

func TestCleanStale(t *testing.T) {
	requireGit(t)
	t.Parallel()
	ctx := context.Background()
	hub := newHub(t)
	svc := newTestService(t, hub)
	require.NoError(t, svc.AddNewWorktree(ctx, "gone", "gone", "main"))
	require.NoError(t, os.RemoveAll(filepath.Join(hub, "gone")))

	stale, err := svc.Clean(ctx, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, stale)
	assert.DirExists(t, filepath.Join(hub, ".bare", "worktrees", "gone"))

	stale, err = svc.Clean(ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, stale)
	assert.NoDirExists(t, filepath.Join(hub, ".bare", "worktrees", "gone"))
}

func TestCleanOutsideHub(t *testing.T) {
	requireGit(t)
	t.Parallel()
	_, err := newTestService(t, newOrigin(t)).Clean(context.Background(), true, false)
	require.ErrorIs(t, err, ErrNotHub)
}
