// Package intent describes the one-shot commands the command line can run.
package intent

// Intent is an immutable request executed by the reducer. The set is closed.
type Intent interface {
	// Name is the subcommand that produces the intent.
	Name() string
	intent()
}

// Initialize creates a bare hub, cloning URL when set.
type Initialize struct {
	URL  string
	Name string
}

// AddWorktree adds a worktree named Name on Branch (Name when empty).
type AddWorktree struct {
	Name   string
	Branch string
}

// RemoveWorktree removes the worktree named Name.
type RemoveWorktree struct {
	Name  string
	Force bool
}

// ListWorktrees prints the worktrees of the hub.
type ListWorktrees struct{}

// SetupDefaults creates the canonical main and dev worktrees.
type SetupDefaults struct{}

// RunCommand runs Command inside a throwaway worktree.
type RunCommand struct {
	Name    string
	Branch  string
	Command []string
}

// SyncConfigurations syncs manifest files into one worktree, or all when Name is empty.
type SyncConfigurations struct {
	Name string
}

// Push pushes the worktree named Name.
type Push struct {
	Name string
}

// Pull pulls the worktree named Name.
type Pull struct {
	Name string
}

// Config sets the AI API key, or shows whether one is stored.
type Config struct {
	Key  string
	Show bool
}

// CleanWorktrees prunes stale metadata or removes build artifacts.
type CleanWorktrees struct {
	DryRun    bool
	Artifacts bool
}

// Convert turns a standard checkout into a sibling bare hub.
type Convert struct {
	Name   string
	Branch string
}

// Migrate turns a standard checkout into a bare hub in place.
type Migrate struct {
	Force  bool
	DryRun bool
}

// SwitchWorktree resolves a worktree by name and prints its path.
type SwitchWorktree struct {
	Name string
	Copy bool
}

// CheckoutWorktree checks Branch out in the worktree named Name.
type CheckoutWorktree struct {
	Name   string
	Branch string
}

// Teleport moves uncommitted changes to the worktree named Target.
type Teleport struct {
	Target string
}

// Open prints a Warp launch configuration for the hub.
type Open struct{}

// Rebase rebases the current worktree onto Upstream (main when empty).
type Rebase struct {
	Upstream string
	// Path selects the worktree; empty means the current directory.
	Path string
}

func (Initialize) Name() string         { return "init" }
func (AddWorktree) Name() string        { return "add" }
func (RemoveWorktree) Name() string     { return "remove" }
func (ListWorktrees) Name() string      { return "list" }
func (SetupDefaults) Name() string      { return "setup" }
func (RunCommand) Name() string         { return "run" }
func (SyncConfigurations) Name() string { return "sync" }
func (Push) Name() string               { return "push" }
func (Pull) Name() string               { return "pull" }
func (Config) Name() string             { return "config" }
func (CleanWorktrees) Name() string     { return "clean" }
func (Convert) Name() string            { return "convert" }
func (Migrate) Name() string            { return "migrate" }
func (SwitchWorktree) Name() string     { return "switch" }
func (CheckoutWorktree) Name() string   { return "checkout" }
func (Teleport) Name() string           { return "teleport" }
func (Open) Name() string               { return "open" }
func (Rebase) Name() string             { return "rebase" }

func (Initialize) intent()         {}
func (AddWorktree) intent()        {}
func (RemoveWorktree) intent()     {}
func (ListWorktrees) intent()      {}
func (SetupDefaults) intent()      {}
func (RunCommand) intent()         {}
func (SyncConfigurations) intent() {}
func (Push) intent()               {}
func (Pull) intent()               {}
func (Config) intent()             {}
func (CleanWorktrees) intent()     {}
func (Convert) intent()            {}
func (Migrate) intent()            {}
func (SwitchWorktree) intent()     {}
func (CheckoutWorktree) intent()   {}
func (Teleport) intent()           {}
func (Open) intent()               {}
func (Rebase) intent()             {}
