// Package session implements the interactive worktree session: the closed set
// of screens, the per-screen event interpreters, the async task bridge and the
// loop that owns the single live state.
package session

import (
	"time"

	"github.com/chmouel/worktrees/internal/intent"
	"github.com/chmouel/worktrees/internal/models"
)

// State is one screen of the session. The set of implementations is closed.
type State interface {
	Name() string
	sealed()
}

// RefreshKind is the pending refresh of a Listing.
type RefreshKind int

const (
	// RefreshNone means the listing is current.
	RefreshNone RefreshKind = iota
	// RefreshDashboard reloads the side panel for the selected worktree.
	RefreshDashboard
	// RefreshFull reloads the worktree collection and the side panel.
	RefreshFull
)

// DashboardTab is the active tab of the listing side panel.
type DashboardTab int

const (
	// TabInfo shows worktree details.
	TabInfo DashboardTab = iota
	// TabStatus shows the file status of the selected worktree.
	TabStatus
	// TabLog shows recent commits of the selected worktree.
	TabLog
)

// DashboardTabs lists the tabs in display order.
var DashboardTabs = []DashboardTab{TabInfo, TabStatus, TabLog}

func (t DashboardTab) String() string {
	switch t {
	case TabStatus:
		return "Status"
	case TabLog:
		return "Log"
	default:
		return "Info"
	}
}

// Dashboard caches side panel data for the selected worktree.
type Dashboard struct {
	Tab     DashboardTab
	Path    string // worktree the cached data belongs to
	Status  *models.Status
	History []models.Commit
	Err     string
}

// Welcome is shown when the working directory is not a bare hub.
type Welcome struct {
	Kind models.RepoKind
}

// SettingUpDefaults is shown while the main and dev worktrees are created.
type SettingUpDefaults struct{}

// SetupComplete confirms that default worktrees exist.
type SetupComplete struct{}

// Exiting ends the session. Path is printed for shell integration when set.
type Exiting struct {
	Path string
}

// Listing is the primary screen.
type Listing struct {
	Worktrees     []models.Worktree
	Visible       []int // indices into Worktrees after filtering, in display order
	Cursor        int   // index into Visible
	Loaded        bool
	Refresh       RefreshKind
	Dashboard     Dashboard
	Filter        string
	Filtering     bool
	SelectionMode bool // Enter picks a path for the caller instead of opening it
}

// Selected returns the worktree under the cursor.
func (l *Listing) Selected() (models.Worktree, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Visible) {
		return models.Worktree{}, false
	}
	idx := l.Visible[l.Cursor]
	if idx < 0 || idx >= len(l.Worktrees) {
		return models.Worktree{}, false
	}
	return l.Worktrees[idx], true
}

// ViewingStatus is the staging view of one worktree.
type ViewingStatus struct {
	Path     string
	Branch   string
	Status   models.Status
	Cursor   int
	Diff     string
	ShowDiff bool
	Prev     State
}

// ViewingHistory lists recent commits of one worktree.
type ViewingHistory struct {
	Path    string
	Branch  string
	Commits []models.Commit
	Cursor  int
	Prev    State
}

// SwitchingBranch picks a branch to check out in a worktree.
type SwitchingBranch struct {
	Path     string
	Branches []string
	Cursor   int
	Prev     State
}

// PickingBaseRef picks the base of a new worktree.
type PickingBaseRef struct {
	Branches []string
	Cursor   int
	Prev     State
}

// CommitOption is an entry of the commit menu.
type CommitOption int

const (
	// CommitManual asks for a message.
	CommitManual CommitOption = iota
	// CommitAI drafts a message from the diff.
	CommitAI
	// CommitSetKey stores the AI API key.
	CommitSetKey
)

// CommitOptions lists the commit menu in display order.
var CommitOptions = []CommitOption{CommitManual, CommitAI, CommitSetKey}

func (o CommitOption) String() string {
	switch o {
	case CommitAI:
		return "Generate message with AI"
	case CommitSetKey:
		return "Set Gemini API key"
	default:
		return "Write message"
	}
}

// Committing is the commit menu.
type Committing struct {
	Path   string
	Branch string
	Cursor int
	Prev   State
}

// PromptKind says what a prompt's input is used for.
type PromptKind int

const (
	// PromptNameNewWorktree names a worktree created from BaseRef.
	PromptNameNewWorktree PromptKind = iota
	// PromptCommitMessage commits staged changes.
	PromptCommitMessage
	// PromptStashMessage stashes changes with a message.
	PromptStashMessage
	// PromptAPIKey stores the AI API key.
	PromptAPIKey
)

func (k PromptKind) String() string {
	switch k {
	case PromptCommitMessage:
		return "Commit message"
	case PromptStashMessage:
		return "Stash message"
	case PromptAPIKey:
		return "Gemini API key"
	default:
		return "New worktree name"
	}
}

// Prompting is a single-line text input.
type Prompting struct {
	Kind    PromptKind
	BaseRef string
	Path    string
	Input   string
	Prev    State
}

// ViewingStashes lists the stashes of one worktree.
type ViewingStashes struct {
	Path    string
	Branch  string
	Stashes []models.Stash
	Cursor  int
	Prev    State
}

// Confirming asks before running Action.
type Confirming struct {
	Title   string
	Message string
	Action  intent.Intent
	Prev    State
}

// SelectingEditor picks the editor a worktree is opened with.
type SelectingEditor struct {
	Path    string
	Branch  string
	Options []models.EditorOption
	Cursor  int
	Prev    State
}

// Help lists key bindings.
type Help struct {
	Prev State
}

// Fetching waits for `git fetch`. Busy states only accept the result whose
// Seq matches the dispatch that created them.
type Fetching struct {
	Label  string
	Branch string
	Seq    uint64
	Prev   State
}

// Pulling waits for `git pull`.
type Pulling struct {
	Label  string
	Branch string
	Seq    uint64
	Prev   State
}

// Pushing waits for `git push`.
type Pushing struct {
	Label  string
	Branch string
	Seq    uint64
	Prev   State
}

// Syncing waits for configuration files to be synced.
type Syncing struct {
	Label  string
	Branch string
	Seq    uint64
	Prev   State
}

// OpeningEditor is shown briefly after an editor was launched.
type OpeningEditor struct {
	Label  string
	Editor string
	Prev   State
}

// LoadTask identifies what a Loading state waits for.
type LoadTask int

const (
	// TaskStatus loads the staging view.
	TaskStatus LoadTask = iota
	// TaskHistory loads the commit log.
	TaskHistory
	// TaskBranches loads branches to switch to.
	TaskBranches
	// TaskBaseRefs loads branches to base a new worktree on.
	TaskBaseRefs
	// TaskClean removes stale worktrees or build artifacts.
	TaskClean
	// TaskCommitMessage drafts a commit message.
	TaskCommitMessage
	// TaskRebase rebases a worktree.
	TaskRebase
	// TaskSetup creates the default worktrees.
	TaskSetup
)

// Loading waits for a bridge task.
type Loading struct {
	Task   LoadTask
	Label  string
	Path   string
	Branch string
	Seq    uint64
	Prev   State
}

// Completed reports a finished operation; it is the inner state of a Timed.
type Completed struct {
	Label string
	Prev  State
}

// Timed displays Inner until Duration has elapsed since Start, then becomes Target.
type Timed struct {
	Inner    State
	Target   State
	Start    time.Time
	Duration time.Duration
}

// Elapsed reports whether the deadline has passed at now.
func (t *Timed) Elapsed(now time.Time) bool {
	return now.Sub(t.Start) >= t.Duration
}

// Error reports a failure and returns to Prev when dismissed.
type Error struct {
	Message string
	Prev    State
}

func (*Welcome) Name() string           { return "welcome" }
func (*SettingUpDefaults) Name() string { return "setting-up-defaults" }
func (*SetupComplete) Name() string     { return "setup-complete" }
func (*Exiting) Name() string           { return "exiting" }
func (*Listing) Name() string           { return "listing" }
func (*ViewingStatus) Name() string     { return "viewing-status" }
func (*ViewingHistory) Name() string    { return "viewing-history" }
func (*SwitchingBranch) Name() string   { return "switching-branch" }
func (*PickingBaseRef) Name() string    { return "picking-base-ref" }
func (*Committing) Name() string        { return "committing" }
func (*Prompting) Name() string         { return "prompting" }
func (*ViewingStashes) Name() string    { return "viewing-stashes" }
func (*Confirming) Name() string        { return "confirming" }
func (*SelectingEditor) Name() string   { return "selecting-editor" }
func (*Help) Name() string              { return "help" }
func (*Fetching) Name() string          { return "fetching" }
func (*Pulling) Name() string           { return "pulling" }
func (*Pushing) Name() string           { return "pushing" }
func (*Syncing) Name() string           { return "syncing" }
func (*OpeningEditor) Name() string     { return "opening-editor" }
func (*Loading) Name() string           { return "loading" }
func (*Completed) Name() string         { return "completed" }
func (*Timed) Name() string             { return "timed" }
func (*Error) Name() string             { return "error" }

func (*Welcome) sealed()           {}
func (*SettingUpDefaults) sealed() {}
func (*SetupComplete) sealed()     {}
func (*Exiting) sealed()           {}
func (*Listing) sealed()           {}
func (*ViewingStatus) sealed()     {}
func (*ViewingHistory) sealed()    {}
func (*SwitchingBranch) sealed()   {}
func (*PickingBaseRef) sealed()    {}
func (*Committing) sealed()        {}
func (*Prompting) sealed()         {}
func (*ViewingStashes) sealed()    {}
func (*Confirming) sealed()        {}
func (*SelectingEditor) sealed()   {}
func (*Help) sealed()              {}
func (*Fetching) sealed()          {}
func (*Pulling) sealed()           {}
func (*Pushing) sealed()           {}
func (*Syncing) sealed()           {}
func (*OpeningEditor) sealed()     {}
func (*Loading) sealed()           {}
func (*Completed) sealed()         {}
func (*Timed) sealed()             {}
func (*Error) sealed()             {}

// Previous returns the boxed predecessor of s, or nil for states without one.
func Previous(s State) State {
	switch st := s.(type) {
	case *ViewingStatus:
		return st.Prev
	case *ViewingHistory:
		return st.Prev
	case *SwitchingBranch:
		return st.Prev
	case *PickingBaseRef:
		return st.Prev
	case *Committing:
		return st.Prev
	case *Prompting:
		return st.Prev
	case *ViewingStashes:
		return st.Prev
	case *Confirming:
		return st.Prev
	case *SelectingEditor:
		return st.Prev
	case *Help:
		return st.Prev
	case *Fetching:
		return st.Prev
	case *Pulling:
		return st.Prev
	case *Pushing:
		return st.Prev
	case *Syncing:
		return st.Prev
	case *OpeningEditor:
		return st.Prev
	case *Loading:
		return st.Prev
	case *Completed:
		return st.Prev
	case *Error:
		return st.Prev
	case *Timed:
		return st.Target
	}
	return nil
}

// Display returns the state a renderer should draw for s.
func Display(s State) State {
	for {
		t, ok := s.(*Timed)
		if !ok {
			return s
		}
		s = t.Inner
	}
}

// BusyLabel returns the in-flight label of a busy state.
func BusyLabel(s State) (string, bool) {
	switch st := s.(type) {
	case *Fetching:
		return st.Label, true
	case *Pulling:
		return st.Label, true
	case *Pushing:
		return st.Label, true
	case *Syncing:
		return st.Label, true
	case *OpeningEditor:
		return st.Label, true
	case *Loading:
		return st.Label, true
	case *SettingUpDefaults:
		return "Setting up main and dev worktrees", true
	}
	return "", false
}
