package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
)

// Stashes lists the stash entries visible from the worktree at path.
func (s *Service) Stashes(ctx context.Context, path string) ([]models.Stash, error) {
	raw, err := s.RunGit(ctx, path, "stash", "list", "--format=%gd"+fieldSep+"%gs")
	if err != nil {
		return nil, fmt.Errorf("list stashes: %w", err)
	}
	return parseStashes(raw), nil
}

// parseStashes reads "stash@{N}<sep>WIP on branch: subject" lines.
func parseStashes(raw string) []models.Stash {
	var stashes []models.Stash
	for line := range strings.SplitSeq(raw, "\n") {
		ref, subject, ok := strings.Cut(line, fieldSep)
		if !ok {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(ref, "stash@{"), "}"))
		if err != nil {
			continue
		}
		st := models.Stash{Index: index, Message: subject}
		head, rest, found := strings.Cut(subject, ": ")
		if found {
			for _, prefix := range []string{"WIP on ", "On "} {
				if branch, ok := strings.CutPrefix(head, prefix); ok {
					st.Branch = branch
					st.Message = rest
					break
				}
			}
		}
		stashes = append(stashes, st)
	}
	return stashes
}

func stashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}

// ApplyStash applies a stash entry and keeps it.
func (s *Service) ApplyStash(ctx context.Context, path string, index int) error {
	if _, err := s.RunGit(ctx, path, "stash", "apply", stashRef(index)); err != nil {
		return fmt.Errorf("apply %s: %w", stashRef(index), err)
	}
	return nil
}

// PopStash applies a stash entry and drops it.
func (s *Service) PopStash(ctx context.Context, path string, index int) error {
	if _, err := s.RunGit(ctx, path, "stash", "pop", stashRef(index)); err != nil {
		return fmt.Errorf("pop %s: %w", stashRef(index), err)
	}
	return nil
}

// DropStash deletes a stash entry.
func (s *Service) DropStash(ctx context.Context, path string, index int) error {
	if _, err := s.RunGit(ctx, path, "stash", "drop", stashRef(index)); err != nil {
		return fmt.Errorf("drop %s: %w", stashRef(index), err)
	}
	return nil
}

// SaveStash stashes every change of the worktree, untracked files included.
func (s *Service) SaveStash(ctx context.Context, path, message string) error {
	args := []string{"stash", "push", "--include-untracked"}
	if message = strings.TrimSpace(message); message != "" {
		args = append(args, "-m", message)
	}
	if _, err := s.RunGit(ctx, path, args...); err != nil {
		return fmt.Errorf("stash: %w", err)
	}
	return nil
}
