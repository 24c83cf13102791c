package git

import (
	"context"
	"fmt"
)

// Fetch fetches every remote and prunes deleted branches.
func (s *Service) Fetch(ctx context.Context, path string) error {
	if _, err := s.RunGit(ctx, path, "fetch", "--all", "--prune"); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

// Pull pulls the upstream of the worktree at path.
func (s *Service) Pull(ctx context.Context, path string) error {
	if _, err := s.RunGit(ctx, path, "pull"); err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

// Push pushes the worktree at path to its upstream.
func (s *Service) Push(ctx context.Context, path string) error {
	if _, err := s.RunGit(ctx, path, "push"); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}
