package session

import (
	"context"

	"github.com/chmouel/worktrees/internal/models"
)

// Worktrees manages the worktrees of a hub.
type Worktrees interface {
	ListWorktrees(ctx context.Context) ([]models.Worktree, error)
	// AddNewWorktree creates branch from base in a worktree directory called name.
	AddNewWorktree(ctx context.Context, name, branch, base string) error
	// RemoveWorktree removes a worktree given by directory name or path.
	RemoveWorktree(ctx context.Context, name string, force bool) error
	SyncConfigs(ctx context.Context, path string) error
	Clean(ctx context.Context, dryRun, artifacts bool) ([]string, error)
	SetupDefaults(ctx context.Context) error
	ProjectRoot(ctx context.Context) (string, error)
	DetectFlavor(ctx context.Context) models.Flavor
}

// Remote talks to the remotes of a worktree.
type Remote interface {
	Fetch(ctx context.Context, path string) error
	Pull(ctx context.Context, path string) error
	Push(ctx context.Context, path string) error
}

// Changes inspects and stages local changes.
type Changes interface {
	Status(ctx context.Context, path string) (models.Status, error)
	Diff(ctx context.Context, path string) (string, error)
	StageFile(ctx context.Context, path, file string) error
	UnstageFile(ctx context.Context, path, file string) error
	StageAll(ctx context.Context, path string) error
	UnstageAll(ctx context.Context, path string) error
	Commit(ctx context.Context, path, message string) error
}

// History reads commits and branches.
type History interface {
	History(ctx context.Context, path string, limit int) ([]models.Commit, error)
	Branches(ctx context.Context) ([]string, error)
	SwitchBranch(ctx context.Context, path, branch string) error
	MainBranch(ctx context.Context) string
	Rebase(ctx context.Context, path, upstream string) error
	ConflictDiff(ctx context.Context, path string) (string, error)
}

// Stashes manages the stash of a worktree.
type Stashes interface {
	Stashes(ctx context.Context, path string) ([]models.Stash, error)
	ApplyStash(ctx context.Context, path string, index int) error
	PopStash(ctx context.Context, path string, index int) error
	DropStash(ctx context.Context, path string, index int) error
	SaveStash(ctx context.Context, path, message string) error
}

// Assistant drafts text with an AI model.
type Assistant interface {
	APIKey() (string, error)
	SetAPIKey(key string) error
	GenerateCommitMessage(ctx context.Context, diff, branch string) (string, error)
	ExplainConflict(ctx context.Context, diff string) (string, error)
}

// Preferences persists user choices.
type Preferences interface {
	PreferredEditor() (string, error)
	SetPreferredEditor(command string) error
}

// Backend is everything the session needs from version control. Every call
// may block for an unbounded time; implementations must be safe for
// concurrent use by bridge workers.
type Backend interface {
	Worktrees
	Remote
	Changes
	History
	Stashes
	Assistant
	Preferences
}
