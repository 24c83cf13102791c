package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
)

// Status groups the porcelain status of the worktree at path.
func (s *Service) Status(ctx context.Context, path string) (models.Status, error) {
	raw, err := s.runGitRaw(ctx, path, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		return models.Status{}, fmt.Errorf("status: %w", err)
	}
	return parseStatus(raw), nil
}

// parseStatus splits `git status --porcelain` output into sections. An entry
// changed both in the index and the work tree appears in both.
func parseStatus(raw string) models.Status {
	var st models.Status
	for line := range strings.SplitSeq(raw, "\n") {
		if len(line) < 4 {
			continue
		}
		x, y := line[0], line[1]
		file := line[3:]
		if _, to, ok := strings.Cut(file, " -> "); ok {
			file = to
		}
		file = strings.Trim(file, `"`)

		if x == '?' && y == '?' {
			st.Untracked = append(st.Untracked, models.StatusFile{Filename: file, Code: "??"})
			continue
		}
		if x == '!' {
			continue
		}
		if x != ' ' {
			st.Staged = append(st.Staged, models.StatusFile{Filename: file, Code: string(x) + " "})
		}
		if y != ' ' {
			st.Unstaged = append(st.Unstaged, models.StatusFile{Filename: file, Code: " " + string(y)})
		}
	}
	return st
}

// Diff returns the staged diff, or the work tree diff when nothing is staged.
func (s *Service) Diff(ctx context.Context, path string) (string, error) {
	out, err := s.runGitRaw(ctx, path, "diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("diff: %w", err)
	}
	if strings.TrimSpace(out) != "" {
		return out, nil
	}
	out, err = s.runGitRaw(ctx, path, "diff")
	if err != nil {
		return "", fmt.Errorf("diff: %w", err)
	}
	return out, nil
}

// StageFile adds one file to the index.
func (s *Service) StageFile(ctx context.Context, path, file string) error {
	if _, err := s.RunGit(ctx, path, "add", "--", file); err != nil {
		return fmt.Errorf("stage %s: %w", file, err)
	}
	return nil
}

// UnstageFile removes one file from the index.
func (s *Service) UnstageFile(ctx context.Context, path, file string) error {
	if _, err := s.RunGit(ctx, path, "reset", "-q", "HEAD", "--", file); err != nil {
		return fmt.Errorf("unstage %s: %w", file, err)
	}
	return nil
}

// StageAll stages every change, untracked files included.
func (s *Service) StageAll(ctx context.Context, path string) error {
	if _, err := s.RunGit(ctx, path, "add", "-A"); err != nil {
		return fmt.Errorf("stage all: %w", err)
	}
	return nil
}

// UnstageAll empties the index back to HEAD.
func (s *Service) UnstageAll(ctx context.Context, path string) error {
	if _, err := s.RunGit(ctx, path, "restore", "--staged", "."); err != nil {
		return fmt.Errorf("unstage all: %w", err)
	}
	return nil
}

// Commit records the index with message.
func (s *Service) Commit(ctx context.Context, path, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message cannot be empty")
	}
	if _, err := s.RunGit(ctx, path, "commit", "-m", message); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
