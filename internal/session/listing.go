package session

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chmouel/worktrees/internal/intent"
	"github.com/chmouel/worktrees/internal/models"
)

// caseSensitive holds the listing keys whose capital is a different command.
const caseSensitive = "dpcrse"

// listingRune folds r unless its capital is a distinct command.
func listingRune(r rune) rune {
	lower := unicode.ToLower(r)
	if strings.ContainsRune(caseSensitive, lower) {
		return r
	}
	return lower
}

func onListing(ev Event, env *Env, l *Listing) State {
	switch e := ev.(type) {
	case KeyEvent:
		if l.Filtering {
			return onListingFilter(e, l)
		}
		return onListingKey(e, env, l)
	case MouseEvent:
		return onListingMouse(e, env, l)
	}
	return nil
}

func (l *Listing) move(delta int) {
	l.Cursor = Move(l.Cursor, len(l.Visible), delta)
	l.Refresh = max(l.Refresh, RefreshDashboard)
}

func (l *Listing) setTab(tab DashboardTab) {
	if l.Dashboard.Tab == tab {
		return
	}
	l.Dashboard.Tab = tab
	l.Refresh = max(l.Refresh, RefreshDashboard)
}

func onListingFilter(k KeyEvent, l *Listing) State {
	changed := false
	switch k.Key {
	case KeyEsc:
		l.Filter = ""
		l.Filtering = false
		changed = true
	case KeyEnter:
		l.Filtering = false
	case KeyCtrlU:
		l.Filter = ""
		changed = true
	case KeyBackspace:
		if l.Filter != "" {
			_, size := utf8.DecodeLastRuneInString(l.Filter)
			l.Filter = l.Filter[:len(l.Filter)-size]
			changed = true
		}
	case KeyDown:
		l.move(1)
	case KeyUp:
		l.move(-1)
	case KeyRune:
		l.Filter += string(k.Rune)
		changed = true
	}
	if changed {
		l.Cursor = 0
		l.applyFilter()
		l.Refresh = max(l.Refresh, RefreshDashboard)
	}
	return nil
}

func onListingKey(k KeyEvent, env *Env, l *Listing) State {
	if d, ok := moveKey(k); ok {
		l.move(d)
		return nil
	}
	switch k.Key {
	case KeyEsc:
		return &Exiting{}
	case KeyEnter:
		return selectWorktree(env, l)
	case KeyTab:
		l.setTab(DashboardTabs[Move(int(l.Dashboard.Tab), len(DashboardTabs), 1)])
		return nil
	case KeyPgDown, KeyEnd:
		if n := len(l.Visible); n > 0 {
			l.Cursor = n - 1
			l.Refresh = max(l.Refresh, RefreshDashboard)
		}
		return nil
	case KeyPgUp, KeyHome:
		l.Cursor = 0
		l.Refresh = max(l.Refresh, RefreshDashboard)
		return nil
	case KeyRune:
	default:
		return nil
	}

	switch r := listingRune(k.Rune); r {
	case 'q':
		return &Exiting{}
	case '?':
		return &Help{Prev: l}
	case '/':
		l.Filtering = true
		return nil
	case '1', '2', '3':
		l.setTab(DashboardTabs[r-'1'])
		return nil
	case 'r':
		l.Refresh = RefreshFull
		return nil
	case 'c':
		return &Confirming{
			Title:   "Prune stale worktrees",
			Message: "Remove metadata of worktrees whose directories are gone?",
			Action:  intent.CleanWorktrees{},
			Prev:    l,
		}
	case 'C':
		return &Confirming{
			Title:   "Clean build artifacts",
			Message: "Delete build artifact directories in every other worktree?",
			Action:  intent.CleanWorktrees{Artifacts: true},
			Prev:    l,
		}
	case 'a':
		seq := env.Bridge.LoadBranches(ForBaseRef, "")
		return &Loading{Task: TaskBaseRefs, Label: "Loading branches", Seq: seq, Prev: l}
	case 'o':
		return openHubFolder(env, l)
	case 'u':
		env.Bridge.SetupDefaults()
		return &SettingUpDefaults{}
	}

	wt, ok := l.Selected()
	if !ok {
		return nil
	}
	switch listingRune(k.Rune) {
	case 'y':
		path, err := worktreeDir(env, wt)
		if err != nil {
			return fail(err, l)
		}
		if env.Copy == nil {
			return fail(fmt.Errorf("copy path: %w", errUnavailable), l)
		}
		if err := env.Copy(path); err != nil {
			return fail(fmt.Errorf("copy path: %w", err), l)
		}
		return env.completed("Copied "+path, l)
	case 'e':
		return openPreferredEditor(env, l, wt)
	case 'E':
		return selectEditor(env, l, wt)
	case 'f':
		seq := env.Bridge.Fetch(wt.Path, wt.Branch)
		return &Fetching{Label: "Fetching all remotes", Branch: wt.Branch, Seq: seq, Prev: l}
	}

	if wt.IsBare {
		return nil
	}
	switch listingRune(k.Rune) {
	case 'v':
		seq := env.Bridge.LoadStatus(wt.Path)
		return &Loading{Task: TaskStatus, Label: "Loading status of " + wt.Branch, Path: wt.Path, Branch: wt.Branch, Seq: seq, Prev: l}
	case 'l':
		seq := env.Bridge.LoadHistory(wt.Path, env.historyLimit())
		return &Loading{Task: TaskHistory, Label: "Loading history of " + wt.Branch, Path: wt.Path, Branch: wt.Branch, Seq: seq, Prev: l}
	case 'b':
		seq := env.Bridge.LoadBranches(ForSwitch, wt.Path)
		return &Loading{Task: TaskBranches, Label: "Loading branches", Path: wt.Path, Branch: wt.Branch, Seq: seq, Prev: l}
	case 'd', 'D':
		force := k.Rune == 'D'
		title := "Remove worktree"
		if force {
			title = "Force remove worktree"
		}
		return &Confirming{
			Title:   title,
			Message: fmt.Sprintf("Remove worktree %q (%s)?", wt.Name(), wt.Branch),
			Action:  intent.RemoveWorktree{Name: wt.Name(), Force: force},
			Prev:    l,
		}
	case 'p':
		seq := env.Bridge.Pull(wt.Path, wt.Branch)
		return &Pulling{Label: "Pulling " + wt.Branch, Branch: wt.Branch, Seq: seq, Prev: l}
	case 'P':
		seq := env.Bridge.Push(wt.Path, wt.Branch)
		return &Pushing{Label: "Pushing " + wt.Branch, Branch: wt.Branch, Seq: seq, Prev: l}
	case 's':
		seq := env.Bridge.Sync(wt.Path, wt.Branch)
		return &Syncing{Label: "Syncing configuration into " + wt.Branch, Branch: wt.Branch, Seq: seq, Prev: l}
	case 'S':
		stashes, err := env.Backend.Stashes(env.ctx(), wt.Path)
		if err != nil {
			return fail(err, l)
		}
		return &ViewingStashes{Path: wt.Path, Branch: wt.Branch, Stashes: stashes, Prev: l}
	case 'R':
		upstream := env.Backend.MainBranch(env.ctx())
		if upstream == wt.Branch {
			return fail(fmt.Errorf("%s is already the main branch", wt.Branch), l)
		}
		return &Confirming{
			Title:   "Rebase",
			Message: fmt.Sprintf("Rebase %s onto %s?", wt.Branch, upstream),
			Action:  intent.Rebase{Upstream: upstream, Path: wt.Path},
			Prev:    l,
		}
	}
	return nil
}

func onListingMouse(m MouseEvent, env *Env, l *Listing) State {
	if d, ok := wheelDelta(m); ok {
		l.move(d)
		return nil
	}
	if m.Action != MouseClick {
		return nil
	}
	if tab, ok := env.Layout.TabAt(m.X, m.Y); ok {
		l.setTab(tab)
		return nil
	}
	if idx, ok := RowAt(env.Layout.ListRows(), m.X, m.Y, l.Cursor, len(l.Visible)); ok {
		if idx != l.Cursor {
			l.Cursor = idx
			l.Refresh = max(l.Refresh, RefreshDashboard)
		}
	}
	return nil
}

// worktreeDir is the directory a worktree is opened in; the bare hub opens
// the project root.
func worktreeDir(env *Env, wt models.Worktree) (string, error) {
	if !wt.IsBare {
		return wt.Path, nil
	}
	return env.Backend.ProjectRoot(env.ctx())
}

// selectWorktree ends a selection session with the worktree's directory and
// opens it in the preferred editor otherwise.
func selectWorktree(env *Env, l *Listing) State {
	wt, ok := l.Selected()
	if !ok {
		return nil
	}
	if !l.SelectionMode {
		return openPreferredEditor(env, l, wt)
	}
	path, err := worktreeDir(env, wt)
	if err != nil {
		return fail(err, l)
	}
	return &Exiting{Path: path}
}

func openHubFolder(env *Env, l *Listing) State {
	root, err := env.Backend.ProjectRoot(env.ctx())
	if err != nil {
		return fail(err, l)
	}
	if env.OpenFolder == nil {
		return fail(fmt.Errorf("open folder: %w", errUnavailable), l)
	}
	if err := env.OpenFolder(root); err != nil {
		return fail(fmt.Errorf("open %s: %w", root, err), l)
	}
	return env.completed("Opened "+root, l)
}

func openPreferredEditor(env *Env, l *Listing, wt models.Worktree) State {
	command, err := env.Backend.PreferredEditor()
	if err != nil {
		return fail(err, l)
	}
	if command == "" {
		return selectEditor(env, l, wt)
	}
	dir, err := worktreeDir(env, wt)
	if err != nil {
		return fail(err, l)
	}
	return launchEditor(env, l, l, command, command, dir)
}

func selectEditor(env *Env, l *Listing, wt models.Worktree) State {
	dir, err := worktreeDir(env, wt)
	if err != nil {
		return fail(err, l)
	}
	options := env.Editors
	cursor := 0
	if preferred, err := env.Backend.PreferredEditor(); err == nil {
		for i, opt := range options {
			if opt.Command == preferred {
				cursor = i
			}
		}
	}
	return &SelectingEditor{Path: dir, Branch: wt.Branch, Options: options, Cursor: cursor, Prev: l}
}

// launchEditor starts the editor and shows OpeningEditor for OpCompleteDelay
// before returning to back. Failures wrap from.
func launchEditor(env *Env, from, back State, name, command, dir string) State {
	if env.Launch == nil {
		return fail(fmt.Errorf("launch %s: %w", name, errUnavailable), from)
	}
	if err := env.Launch(command, dir); err != nil {
		return fail(fmt.Errorf("launch %s: %w", name, err), from)
	}
	inner := &OpeningEditor{Label: "Opening " + dir + " in " + name, Editor: name, Prev: back}
	return env.timed(inner, back, OpCompleteDelay)
}
