package session

import (
	"github.com/chmouel/worktrees/internal/models"
)

func onStatus(ev Event, env *Env, s *ViewingStatus) State {
	switch e := ev.(type) {
	case MouseEvent:
		if d, ok := wheelDelta(e); ok {
			s.Cursor = Move(s.Cursor, s.Status.Len(), d)
			return nil
		}
		if e.Action == MouseClick {
			if idx, ok := RowAt(env.Layout.StatusRows(s.ShowDiff), e.X, e.Y, s.Cursor, s.Status.Len()); ok {
				s.Cursor = idx
				if s.ShowDiff {
					return s.loadDiff(env)
				}
			}
		}
		return nil
	case KeyEvent:
		if d, ok := moveKey(e); ok {
			s.Cursor = Move(s.Cursor, s.Status.Len(), d)
			return nil
		}
		switch e.Key {
		case KeyEsc:
			return s.Prev
		case KeyRune:
		default:
			return nil
		}
		switch e.Folded() {
		case 'q':
			return s.Prev
		case ' ':
			return s.toggleSelected(env)
		case 'a':
			if err := env.Backend.StageAll(env.ctx(), s.Path); err != nil {
				return fail(err, s)
			}
			return s.reload(env)
		case 'u':
			if err := env.Backend.UnstageAll(env.ctx(), s.Path); err != nil {
				return fail(err, s)
			}
			return s.reload(env)
		case 'd':
			s.ShowDiff = !s.ShowDiff
			if !s.ShowDiff {
				s.Diff = ""
				return nil
			}
			return s.loadDiff(env)
		case 'r':
			return s.reload(env)
		case 'c':
			return &Committing{Path: s.Path, Branch: s.Branch, Prev: s}
		case 's':
			stashes, err := env.Backend.Stashes(env.ctx(), s.Path)
			if err != nil {
				return fail(err, s)
			}
			return &ViewingStashes{Path: s.Path, Branch: s.Branch, Stashes: stashes, Prev: s}
		}
	}
	return nil
}

// toggleSelected stages an unstaged or untracked file, and unstages a staged one.
func (s *ViewingStatus) toggleSelected(env *Env) State {
	file, section, ok := s.Status.At(s.Cursor)
	if !ok {
		return nil
	}
	var err error
	if section == models.SectionStaged {
		err = env.Backend.UnstageFile(env.ctx(), s.Path, file.Filename)
	} else {
		err = env.Backend.StageFile(env.ctx(), s.Path, file.Filename)
	}
	if err != nil {
		return fail(err, s)
	}
	return s.reload(env)
}

// reload refreshes the file list in place.
func (s *ViewingStatus) reload(env *Env) State {
	st, err := env.Backend.Status(env.ctx(), s.Path)
	if err != nil {
		return fail(err, s)
	}
	s.Status = st
	s.Cursor = clamp(s.Cursor, st.Len())
	if s.ShowDiff {
		return s.loadDiff(env)
	}
	return nil
}

func (s *ViewingStatus) loadDiff(env *Env) State {
	diff, err := env.Backend.Diff(env.ctx(), s.Path)
	if err != nil {
		s.ShowDiff = false
		return fail(err, s)
	}
	s.Diff = diff
	return nil
}
