package session

import "github.com/chmouel/worktrees/internal/models"

// Result is the outcome of one bridge task. The set is closed. Seq is the
// sequence number the bridge handed out when the task was dispatched.
type Result interface {
	Failure() error
	result()
}

// BranchPurpose says why branches were loaded.
type BranchPurpose int

const (
	// ForSwitch feeds the branch switcher.
	ForSwitch BranchPurpose = iota
	// ForBaseRef feeds the new worktree base picker.
	ForBaseRef
)

// FetchCompleted is the outcome of Bridge.Fetch.
type FetchCompleted struct {
	Seq    uint64
	Branch string
	Err    error
}

// PullCompleted is the outcome of Bridge.Pull.
type PullCompleted struct {
	Seq    uint64
	Branch string
	Err    error
}

// PushCompleted is the outcome of Bridge.Push.
type PushCompleted struct {
	Seq    uint64
	Branch string
	Err    error
}

// SyncCompleted is the outcome of Bridge.Sync.
type SyncCompleted struct {
	Seq    uint64
	Branch string
	Err    error
}

// StatusFetched is the outcome of Bridge.LoadStatus.
type StatusFetched struct {
	Seq    uint64
	Path   string
	Status models.Status
	Err    error
}

// HistoryFetched is the outcome of Bridge.LoadHistory.
type HistoryFetched struct {
	Seq     uint64
	Path    string
	Commits []models.Commit
	Err     error
}

// BranchesFetched is the outcome of Bridge.LoadBranches.
type BranchesFetched struct {
	Seq      uint64
	Purpose  BranchPurpose
	Path     string
	Branches []string
	Err      error
}

// CleanCompleted is the outcome of Bridge.Clean.
type CleanCompleted struct {
	Seq     uint64
	Removed []string
	Err     error
}

// CommitMessageGenerated is the outcome of Bridge.GenerateCommitMessage.
type CommitMessageGenerated struct {
	Seq     uint64
	Path    string
	Message string
	Err     error
}

// RebaseCompleted is the outcome of Bridge.Rebase. Explanation is set on
// conflicts when the assistant could explain them.
type RebaseCompleted struct {
	Seq         uint64
	Path        string
	Upstream    string
	Explanation string
	Err         error
}

// SetupCompleted is the outcome of Bridge.SetupDefaults.
type SetupCompleted struct {
	Err error
}

func (r FetchCompleted) Failure() error         { return r.Err }
func (r PullCompleted) Failure() error          { return r.Err }
func (r PushCompleted) Failure() error          { return r.Err }
func (r SyncCompleted) Failure() error          { return r.Err }
func (r StatusFetched) Failure() error          { return r.Err }
func (r HistoryFetched) Failure() error         { return r.Err }
func (r BranchesFetched) Failure() error        { return r.Err }
func (r CleanCompleted) Failure() error         { return r.Err }
func (r CommitMessageGenerated) Failure() error { return r.Err }
func (r RebaseCompleted) Failure() error        { return r.Err }
func (r SetupCompleted) Failure() error         { return r.Err }

func (FetchCompleted) result()         {}
func (PullCompleted) result()          {}
func (PushCompleted) result()          {}
func (SyncCompleted) result()          {}
func (StatusFetched) result()          {}
func (HistoryFetched) result()         {}
func (BranchesFetched) result()        {}
func (CleanCompleted) result()         {}
func (CommitMessageGenerated) result() {}
func (RebaseCompleted) result()        {}
func (SetupCompleted) result()         {}
