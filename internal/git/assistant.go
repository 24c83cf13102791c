package git

import (
	"context"
	"strings"

	"github.com/chmouel/worktrees/internal/ai"
	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/watch"
)

// APIKey returns the Gemini key from the environment, else the stored one.
func (s *Service) APIKey() (string, error) {
	if s.envKey != "" {
		return s.envKey, nil
	}
	return s.store.APIKey()
}

// SetAPIKey stores the Gemini key.
func (s *Service) SetAPIKey(key string) error {
	return s.store.SetAPIKey(key)
}

func (s *Service) requireKey() (string, error) {
	key, err := s.APIKey()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", ai.ErrNoAPIKey
	}
	return key, nil
}

// GenerateCommitMessage drafts a commit message for diff.
func (s *Service) GenerateCommitMessage(ctx context.Context, diff, branch string) (string, error) {
	key, err := s.requireKey()
	if err != nil {
		return "", err
	}
	return s.ai.CommitMessage(ctx, key, diff, branch)
}

// ExplainConflict explains a conflicting rebase from its diff.
func (s *Service) ExplainConflict(ctx context.Context, diff string) (string, error) {
	key, err := s.requireKey()
	if err != nil {
		return "", err
	}
	return s.ai.ExplainConflict(ctx, key, diff)
}

// PreferredEditor returns the saved editor command, or "".
func (s *Service) PreferredEditor() (string, error) {
	return s.store.PreferredEditor()
}

// SetPreferredEditor saves the editor command.
func (s *Service) SetPreferredEditor(command string) error {
	return s.store.SetPreferredEditor(command)
}

// Watch reports changes to the hub metadata until ctx is done. Build
// artifact directories never trigger a signal.
func (s *Service) Watch(ctx context.Context) (<-chan models.RepositoryEvent, error) {
	common, err := s.CommonDir(ctx)
	if err != nil {
		return nil, err
	}
	return watch.New(common, s.artifactDirs...).Start(ctx), nil
}
