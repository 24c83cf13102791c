package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/utils"
)

const gitdirRedirect = "gitdir: ./.bare\n"

// CheckRepo reports what kind of repository dir belongs to.
func (s *Service) CheckRepo(ctx context.Context, dir string) models.RepoKind {
	if info, err := os.Stat(filepath.Join(dir, ".bare")); err == nil && info.IsDir() {
		return models.RepoBareHub
	}
	if common, err := s.RunGit(ctx, dir, "rev-parse", "--path-format=absolute", "--git-common-dir"); err == nil &&
		strings.HasSuffix(filepath.Clean(common), ".bare") {
		return models.RepoBareHub
	}
	if inside, err := s.RunGit(ctx, dir, "rev-parse", "--is-inside-work-tree"); err == nil && inside == "true" {
		return models.RepoStandard
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return models.RepoStandard
	}
	return models.RepoNone
}

// InitHub creates a bare hub in dir, which must not exist. With url the
// repository is cloned and origin is set up to fetch every branch; without it
// an empty repository on `main` is created.
func (s *Service) InitHub(ctx context.Context, dir, url string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	if url != "" {
		if _, err := s.RunGit(ctx, dir, "clone", "--bare", "--", url, ".bare"); err != nil {
			return fmt.Errorf("clone %s: %w", url, err)
		}
	} else {
		if _, err := s.RunGit(ctx, dir, "init", "--bare", ".bare"); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if _, err := s.RunGit(ctx, filepath.Join(dir, ".bare"), "symbolic-ref", "HEAD", "refs/heads/main"); err != nil {
			return fmt.Errorf("set HEAD to main: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, ".git"), []byte(gitdirRedirect), 0o644); err != nil {
		return fmt.Errorf("write .git redirection: %w", err)
	}

	if url != "" {
		if _, err := s.RunGit(ctx, dir, "config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"); err != nil {
			return fmt.Errorf("configure origin: %w", err)
		}
		if _, err := s.RunGit(ctx, dir, "fetch", "origin"); err != nil {
			return fmt.Errorf("fetch origin: %w", err)
		}
	}
	return nil
}

// Convert moves the standard checkout in the service directory into a new
// sibling hub (`<name>-hub` unless hubName is set) and checks branch (the
// current branch when empty) out as its first worktree.
func (s *Service) Convert(ctx context.Context, hubName, branch string) (string, error) {
	gitDir := filepath.Join(s.dir, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return "", errors.New("not a standard git repository (missing .git directory); run this from the root of a standard repository")
	}

	if branch == "" {
		current, err := s.RunGit(ctx, "", "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return "", fmt.Errorf("current branch: %w", err)
		}
		branch = current
	}
	if hubName == "" {
		hubName = filepath.Base(s.dir) + "-hub"
	}
	hub := filepath.Join(filepath.Dir(s.dir), hubName)
	if _, err := os.Stat(hub); err == nil {
		return "", fmt.Errorf("target hub directory %q already exists; choose a different name or remove it", hub)
	}

	if err := os.MkdirAll(hub, 0o755); err != nil {
		return "", fmt.Errorf("create hub: %w", err)
	}
	bare := filepath.Join(hub, ".bare")
	if err := os.Rename(gitDir, bare); err != nil {
		return "", fmt.Errorf("move .git to .bare: %w", err)
	}
	if _, err := s.RunGit(ctx, bare, "config", "--bool", "core.bare", "true"); err != nil {
		return "", fmt.Errorf("set core.bare: %w", err)
	}
	if err := os.WriteFile(filepath.Join(hub, ".git"), []byte(gitdirRedirect), 0o644); err != nil {
		return "", fmt.Errorf("write .git redirection: %w", err)
	}
	if _, err := s.RunGit(ctx, hub, "worktree", "add", "--", filepath.Join(hub, utils.DirName(branch)), branch); err != nil {
		return "", fmt.Errorf("add initial worktree %q: %w", branch, err)
	}
	return hub, nil
}

// ErrTargetExists is returned by Migrate when the worktree directory is taken.
var ErrTargetExists = errors.New("already exists")

// Migrate turns the standard checkout in the service directory into a hub in
// place: `.git` becomes `.bare` and the checked out files move into a worktree
// named after the current branch. Local changes are kept. Without force a
// dirty checkout is refused. It returns the new worktree path.
func (s *Service) Migrate(ctx context.Context, force, dryRun bool) (string, error) {
	gitDir := filepath.Join(s.dir, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return "", errors.New("not a standard git repository (missing .git directory); run this from the root of a standard repository")
	}
	branch, err := s.RunGit(ctx, "", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if branch == "HEAD" {
		return "", errors.New("cannot migrate a detached HEAD; check out a branch first")
	}
	target := filepath.Join(s.dir, utils.DirName(branch))
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("worktree directory %q %w", target, ErrTargetExists)
	}
	if !force {
		st, err := s.Status(ctx, s.dir)
		if err != nil {
			return "", err
		}
		if st.Len() > 0 {
			return "", errors.New("the repository has uncommitted changes; commit or stash them first, or use --force")
		}
	}
	if dryRun {
		return target, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", err
	}
	bare := filepath.Join(s.dir, ".bare")
	if err := os.Rename(gitDir, bare); err != nil {
		return "", fmt.Errorf("move .git to .bare: %w", err)
	}
	if _, err := s.RunGit(ctx, bare, "config", "--bool", "core.bare", "true"); err != nil {
		return "", fmt.Errorf("set core.bare: %w", err)
	}
	if err := os.WriteFile(gitDir, []byte(gitdirRedirect), 0o644); err != nil {
		return "", fmt.Errorf("write .git redirection: %w", err)
	}
	if _, err := s.RunGit(ctx, s.dir, "worktree", "add", "--no-checkout", "--", target, branch); err != nil {
		return "", fmt.Errorf("add worktree %q: %w", branch, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" || name == ".bare" {
			continue
		}
		if err := os.Rename(filepath.Join(s.dir, name), filepath.Join(target, name)); err != nil {
			return "", fmt.Errorf("move %s into the worktree: %w", name, err)
		}
	}
	// the index of a --no-checkout worktree is empty
	if _, err := s.RunGit(ctx, target, "reset", "-q", "--mixed"); err != nil {
		return "", fmt.Errorf("rebuild index: %w", err)
	}

	s.mu.Lock()
	s.commonDir = ""
	s.mu.Unlock()
	return target, nil
}
