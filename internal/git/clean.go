package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotHub is returned by operations that only make sense in a bare hub.
var ErrNotHub = errors.New("not in a bare repository project; run this command from the project root containing .bare/")

// Clean prunes stale worktree metadata, or with artifacts removes build
// directories from every worktree except the current one. It returns what
// was (or with dryRun, would be) removed.
func (s *Service) Clean(ctx context.Context, dryRun, artifacts bool) ([]string, error) {
	root, err := s.ProjectRoot(ctx)
	if err != nil {
		return nil, err
	}
	bare := filepath.Join(root, ".bare")
	if info, err := os.Stat(bare); err != nil || !info.IsDir() {
		return nil, ErrNotHub
	}
	if artifacts {
		return s.cleanArtifacts(ctx, dryRun)
	}
	return s.cleanStale(ctx, bare, dryRun)
}

func (s *Service) cleanArtifacts(ctx context.Context, dryRun bool) ([]string, error) {
	wts, err := s.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}
	current := canonical(s.dir)

	var cleaned []string
	for _, wt := range wts {
		if wt.IsBare {
			continue
		}
		if canonical(wt.Path) == current {
			s.debugf("clean: skipping current worktree %s", wt.Path)
			continue
		}
		for _, name := range s.artifactDirs {
			target := filepath.Join(wt.Path, name)
			if info, err := os.Stat(target); err != nil || !info.IsDir() {
				continue
			}
			if dryRun {
				cleaned = append(cleaned, "[dry-run] build artifact: "+target)
				continue
			}
			if err := os.RemoveAll(target); err != nil {
				s.debugf("clean: remove %s: %v", target, err)
				continue
			}
			cleaned = append(cleaned, "cleaned: "+target)
		}
	}
	return cleaned, nil
}

// cleanStale finds entries of .bare/worktrees whose directory is gone or
// that git no longer lists, and prunes them.
func (s *Service) cleanStale(ctx context.Context, bare string, dryRun bool) ([]string, error) {
	admin := filepath.Join(bare, "worktrees")
	entries, err := os.ReadDir(admin)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", admin, err)
	}

	valid := map[string]bool{}
	if wts, err := s.ListWorktrees(ctx); err == nil {
		for _, wt := range wts {
			valid[canonical(wt.Path)] = true
		}
	}

	var stale []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if s.isStale(filepath.Join(admin, entry.Name()), valid) {
			stale = append(stale, entry.Name())
		}
	}

	if !dryRun && len(stale) > 0 {
		if _, err := s.RunGit(ctx, "", "worktree", "prune", "-v"); err != nil {
			return nil, fmt.Errorf("prune stale worktrees: %w", err)
		}
	}
	return stale, nil
}

func (s *Service) isStale(entry string, valid map[string]bool) bool {
	data, err := os.ReadFile(filepath.Join(entry, "gitdir"))
	if err != nil {
		s.debugf("clean: %s has no readable gitdir: %v", entry, err)
		return true
	}
	path := strings.TrimSuffix(strings.TrimSpace(string(data)), "/.git")
	if _, err := os.Stat(path); err != nil {
		s.debugf("clean: %s points to missing %s", entry, path)
		return true
	}
	if !valid[canonical(path)] {
		s.debugf("clean: %s is not listed by git", path)
		return true
	}
	return false
}

func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
