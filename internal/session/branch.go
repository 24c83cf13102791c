package session

func onSwitchingBranch(ev Event, env *Env, s *SwitchingBranch) State {
	idx, act, back := pickList(ev, env, s.Cursor, len(s.Branches))
	s.Cursor = idx
	switch {
	case back:
		return s.Prev
	case !act:
		return nil
	}
	branch := s.Branches[s.Cursor]
	if err := env.Backend.SwitchBranch(env.ctx(), s.Path, branch); err != nil {
		return fail(err, s)
	}
	return markFull(s.Prev)
}

func onPickingBaseRef(ev Event, env *Env, s *PickingBaseRef) State {
	idx, act, back := pickList(ev, env, s.Cursor, len(s.Branches))
	s.Cursor = idx
	switch {
	case back:
		return s.Prev
	case !act:
		return nil
	}
	return &Prompting{Kind: PromptNameNewWorktree, BaseRef: s.Branches[s.Cursor], Prev: s}
}

// pickList handles the keys and mouse events shared by single-choice lists.
// It returns the new cursor, whether the selection was activated and whether
// the list was dismissed.
func pickList(ev Event, env *Env, cursor, n int) (idx int, activate, back bool) {
	switch e := ev.(type) {
	case MouseEvent:
		if d, ok := wheelDelta(e); ok {
			return Move(cursor, n, d), false, false
		}
		if e.Action == MouseClick {
			if i, ok := RowAt(env.Layout.BodyRows(), e.X, e.Y, cursor, n); ok {
				return i, false, false
			}
		}
	case KeyEvent:
		if d, ok := moveKey(e); ok {
			return Move(cursor, n, d), false, false
		}
		switch {
		case e.Key == KeyEsc, e.Folded() == 'q':
			return cursor, false, true
		case e.Key == KeyEnter:
			return cursor, n > 0, false
		}
	}
	return cursor, false, false
}
