package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/chmouel/worktrees/internal/session"
)

func bind(help, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(help), key.WithHelp(help, desc))
}

// Bindings shared by several screens.
var (
	keyNavigate = bind("j/k", "Navigate")
	keySelect   = bind("enter", "Select")
	keyBack     = bind("esc", "Back")
	keyQuit     = bind("q", "Quit")
	keyHelp     = bind("?", "Help")
	keyCancel   = bind("esc", "Cancel")
)

type listingKeys struct {
	Navigate, Open, Filter, Tabs, Refresh, Add, Status, Log, Branch,
	Remove, ForceRemove, Pull, Push, Sync, Stashes, Rebase, Fetch,
	Copy, Editor, PickEditor, Folder, Prune, Artifacts, Setup, Help, Quit key.Binding
}

func newListingKeys() listingKeys {
	return listingKeys{
		Navigate:    keyNavigate,
		Open:        bind("enter", "Open"),
		Filter:      bind("/", "Filter"),
		Tabs:        bind("1-3", "Tab"),
		Refresh:     bind("r", "Refresh"),
		Add:         bind("a", "Add"),
		Status:      bind("v", "Status"),
		Log:         bind("l", "Log"),
		Branch:      bind("b", "Branch"),
		Remove:      bind("d", "Remove"),
		ForceRemove: bind("D", "Force remove"),
		Pull:        bind("p", "Pull"),
		Push:        bind("P", "Push"),
		Sync:        bind("s", "Sync config"),
		Stashes:     bind("S", "Stashes"),
		Rebase:      bind("R", "Rebase"),
		Fetch:       bind("f", "Fetch"),
		Copy:        bind("y", "Copy path"),
		Editor:      bind("e", "Editor"),
		PickEditor:  bind("E", "Choose editor"),
		Folder:      bind("o", "Open folder"),
		Prune:       bind("c", "Prune"),
		Artifacts:   bind("C", "Clean artifacts"),
		Setup:       bind("u", "Setup main/dev"),
		Help:        keyHelp,
		Quit:        keyQuit,
	}
}

// forSelection disables the bindings that need a checked-out worktree.
func (k listingKeys) forSelection(bare bool) listingKeys {
	for _, b := range []*key.Binding{
		&k.Status, &k.Log, &k.Branch, &k.Remove, &k.ForceRemove,
		&k.Pull, &k.Push, &k.Sync, &k.Stashes, &k.Rebase,
	} {
		b.SetEnabled(!bare)
	}
	return k
}

func (k listingKeys) short() []key.Binding {
	return []key.Binding{k.Open, k.Add, k.Status, k.Log, k.Remove, k.Pull, k.Push, k.Filter, k.Quit, k.Help}
}

// full groups every listing binding for the help screen.
func (k listingKeys) full() [][]key.Binding {
	return [][]key.Binding{
		{k.Navigate, k.Open, k.Filter, k.Tabs, k.Refresh, k.Help, k.Quit},
		{k.Add, k.Remove, k.ForceRemove, k.Branch, k.Setup, k.Prune, k.Artifacts},
		{k.Status, k.Log, k.Stashes, k.Fetch, k.Pull, k.Push, k.Rebase},
		{k.Sync, k.Copy, k.Editor, k.PickEditor, k.Folder},
	}
}

var statusKeys = []key.Binding{
	keyNavigate,
	bind("space", "Stage/unstage"),
	bind("a", "Stage all"),
	bind("u", "Unstage all"),
	bind("d", "Diff"),
	bind("c", "Commit"),
	bind("s", "Stash"),
	bind("r", "Refresh"),
	keyBack,
}

var stashKeys = []key.Binding{
	keyNavigate,
	bind("a", "Apply"),
	bind("p", "Pop"),
	bind("d", "Drop"),
	bind("n", "New stash"),
	keyBack,
}

var pickKeys = []key.Binding{keyNavigate, keySelect, keyBack}

// hints returns the footer bindings of a screen.
func hints(s session.State) []key.Binding {
	switch st := s.(type) {
	case *session.Listing:
		if st.Filtering {
			return []key.Binding{bind("enter", "Apply"), bind("esc", "Clear"), bind("ctrl+u", "Erase")}
		}
		keys := newListingKeys()
		if st.SelectionMode {
			keys.Open = keySelect
		}
		if wt, ok := st.Selected(); ok {
			keys = keys.forSelection(wt.IsBare)
		}
		return keys.short()
	case *session.ViewingStatus:
		return statusKeys
	case *session.ViewingStashes:
		return stashKeys
	case *session.ViewingHistory:
		return []key.Binding{keyNavigate, keyBack}
	case *session.SwitchingBranch, *session.PickingBaseRef, *session.SelectingEditor:
		return pickKeys
	case *session.Committing:
		return []key.Binding{bind("1-3", "Choose"), keyNavigate, keySelect, keyBack}
	case *session.Prompting:
		return []key.Binding{bind("enter", "Submit"), bind("ctrl+u", "Erase"), keyCancel}
	case *session.Confirming:
		return []key.Binding{bind("y", "Confirm"), bind("n", "Cancel")}
	case *session.Help, *session.Error, *session.Completed, *session.SetupComplete:
		return []key.Binding{bind("enter", "Dismiss")}
	case *session.Welcome:
		return []key.Binding{keyQuit}
	}
	if _, busy := session.BusyLabel(s); busy {
		if _, setup := s.(*session.SettingUpDefaults); setup {
			return nil
		}
		return []key.Binding{keyCancel}
	}
	return nil
}
