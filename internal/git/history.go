package git

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
)

const fieldSep = "\x1f"

// History returns up to limit commits of HEAD, with graph connector rows.
func (s *Service) History(ctx context.Context, path string, limit int) ([]models.Commit, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := s.runGitRaw(ctx, path, "log", "--graph", "-n", strconv.Itoa(limit),
		"--date=short", "--pretty=format:"+fieldSep+"%h"+fieldSep+"%an"+fieldSep+"%ad"+fieldSep+"%s")
	if err != nil {
		var gerr *Error
		if errors.As(err, &gerr) && strings.Contains(gerr.Stderr, "does not have any commits") {
			return nil, nil
		}
		return nil, fmt.Errorf("history: %w", err)
	}
	return parseHistory(raw), nil
}

// parseHistory reads `git log --graph` output where the fields of a commit
// follow the graph prefix. Lines without fields are connector rows.
func parseHistory(raw string) []models.Commit {
	var commits []models.Commit
	for line := range strings.SplitSeq(strings.TrimRight(raw, "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, fieldSep, 5)
		if len(parts) < 5 {
			commits = append(commits, models.Commit{Graph: strings.TrimRight(line, " ")})
			continue
		}
		commits = append(commits, models.Commit{
			Graph:   strings.TrimRight(parts[0], " "),
			Hash:    parts[1],
			Author:  parts[2],
			Date:    parts[3],
			Message: parts[4],
		})
	}
	return commits
}

// Branches lists local branches followed by origin branches that have no
// local counterpart, sorted.
func (s *Service) Branches(ctx context.Context) ([]string, error) {
	raw, err := s.RunGit(ctx, "", "branch", "-a", "--format=%(refname)")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return parseBranches(raw), nil
}

func parseBranches(raw string) []string {
	seen := map[string]bool{}
	var branches []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		branches = append(branches, name)
	}

	lines := strings.Split(raw, "\n")
	for _, line := range lines {
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "refs/heads/"); ok {
			add(name)
		}
	}
	for _, line := range lines {
		name, ok := strings.CutPrefix(strings.TrimSpace(line), "refs/remotes/")
		if !ok || name == "origin/HEAD" || strings.HasSuffix(name, "/HEAD") {
			continue
		}
		if short, ok := strings.CutPrefix(name, "origin/"); ok {
			name = short
		}
		add(name)
	}
	slices.Sort(branches)
	return branches
}

// SwitchBranch checks branch out in the worktree at path.
func (s *Service) SwitchBranch(ctx context.Context, path, branch string) error {
	if _, err := s.RunGit(ctx, path, "checkout", branch); err != nil {
		return fmt.Errorf("switch to %s: %w", branch, err)
	}
	return nil
}

// Rebase rebases the worktree at path onto upstream. A conflicting rebase is
// left in progress for the user to resolve.
func (s *Service) Rebase(ctx context.Context, path, upstream string) error {
	if _, err := s.RunGit(ctx, path, "rebase", upstream); err != nil {
		return fmt.Errorf("rebase onto %s: %w", upstream, err)
	}
	return nil
}

// ConflictDiff returns the diff of the unmerged paths of the worktree at path.
func (s *Service) ConflictDiff(ctx context.Context, path string) (string, error) {
	out, err := s.runGitRaw(ctx, path, "diff", "--diff-filter=U")
	if err != nil {
		return "", fmt.Errorf("conflict diff: %w", err)
	}
	return out, nil
}
