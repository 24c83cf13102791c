package session

import (
	"fmt"

	log "github.com/chmouel/worktrees/internal/log"
)

// Apply merges a bridge result into the live state s. It returns nil when the
// result no longer applies and is discarded.
func Apply(res Result, env *Env, s State) State {
	switch r := res.(type) {
	case FetchCompleted:
		if st, ok := s.(*Fetching); ok && st.Branch == r.Branch && st.Seq == r.Seq {
			if r.Err != nil {
				return fail(r.Err, st.Prev)
			}
			return markFull(st.Prev)
		}
	case PullCompleted:
		if st, ok := s.(*Pulling); ok && st.Branch == r.Branch && st.Seq == r.Seq {
			return finish(env, r.Err, "Pulled "+r.Branch, st.Prev)
		}
	case PushCompleted:
		if st, ok := s.(*Pushing); ok && st.Branch == r.Branch && st.Seq == r.Seq {
			return finish(env, r.Err, "Pushed "+r.Branch, st.Prev)
		}
	case SyncCompleted:
		if st, ok := s.(*Syncing); ok && st.Branch == r.Branch && st.Seq == r.Seq {
			return finish(env, r.Err, "Synced configuration into "+r.Branch, st.Prev)
		}
	case StatusFetched:
		if ld, ok := loading(s, TaskStatus, r.Path, r.Seq); ok {
			if r.Err != nil {
				return fail(r.Err, ld.Prev)
			}
			return &ViewingStatus{Path: r.Path, Branch: ld.Branch, Status: r.Status, Prev: ld.Prev}
		}
	case HistoryFetched:
		if ld, ok := loading(s, TaskHistory, r.Path, r.Seq); ok {
			if r.Err != nil {
				return fail(r.Err, ld.Prev)
			}
			return &ViewingHistory{
				Path:    r.Path,
				Branch:  ld.Branch,
				Commits: r.Commits,
				Cursor:  firstCommit(r.Commits),
				Prev:    ld.Prev,
			}
		}
	case BranchesFetched:
		return applyBranches(r, s)
	case CleanCompleted:
		if ld, ok := loading(s, TaskClean, "", r.Seq); ok {
			if r.Err != nil {
				return fail(r.Err, ld.Prev)
			}
			label := fmt.Sprintf("Removed %d item(s)", len(r.Removed))
			if len(r.Removed) == 0 {
				label = "Nothing to clean"
			}
			prev := markFull(ld.Prev)
			return env.timed(&Completed{Label: label, Prev: prev}, prev, SetupCompleteDelay)
		}
	case CommitMessageGenerated:
		if ld, ok := loading(s, TaskCommitMessage, r.Path, r.Seq); ok {
			if r.Err != nil {
				return fail(r.Err, ld.Prev)
			}
			return &Prompting{Kind: PromptCommitMessage, Path: r.Path, Input: r.Message, Prev: ld.Prev}
		}
	case RebaseCompleted:
		if ld, ok := loading(s, TaskRebase, r.Path, r.Seq); ok {
			if r.Err != nil {
				msg := r.Err.Error()
				if r.Explanation != "" {
					msg += "\n\n" + r.Explanation
				}
				return &Error{Message: msg, Prev: markFull(ld.Prev)}
			}
			return env.completed("Rebased onto "+r.Upstream, markFull(ld.Prev))
		}
	case SetupCompleted:
		if _, ok := s.(*SettingUpDefaults); ok {
			if r.Err != nil {
				return fail(r.Err, &Listing{})
			}
			return env.timed(&SetupComplete{}, &Listing{}, SetupCompleteDelay)
		}
	default:
		panic(fmt.Sprintf("session: no handler for result %T", res))
	}
	log.Printf("session: discarding %T, live state is %s", res, s.Name())
	return nil
}

// finish is the common outcome of pull, push and sync.
func finish(env *Env, err error, label string, prev State) State {
	if err != nil {
		return fail(err, prev)
	}
	return env.completed(label, markFull(prev))
}

// loading returns s when it is a Loading waiting for dispatch seq of task on
// path.
func loading(s State, task LoadTask, path string, seq uint64) (*Loading, bool) {
	ld, ok := s.(*Loading)
	if !ok || ld.Task != task || ld.Path != path || ld.Seq != seq {
		return nil, false
	}
	return ld, true
}

func applyBranches(r BranchesFetched, s State) State {
	task := TaskBranches
	if r.Purpose == ForBaseRef {
		task = TaskBaseRefs
	}
	ld, ok := loading(s, task, r.Path, r.Seq)
	if !ok {
		log.Printf("session: discarding branches, live state is %s", s.Name())
		return nil
	}
	if r.Err != nil {
		return fail(r.Err, ld.Prev)
	}
	if r.Purpose == ForBaseRef {
		return &PickingBaseRef{Branches: r.Branches, Prev: ld.Prev}
	}
	cursor := 0
	for i, b := range r.Branches {
		if b == ld.Branch {
			cursor = i
		}
	}
	return &SwitchingBranch{Path: r.Path, Branches: r.Branches, Cursor: cursor, Prev: ld.Prev}
}
