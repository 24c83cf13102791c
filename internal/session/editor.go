package session

func onSelectingEditor(ev Event, env *Env, s *SelectingEditor) State {
	idx, act, back := pickList(ev, env, s.Cursor, len(s.Options))
	s.Cursor = idx
	switch {
	case back:
		return s.Prev
	case !act:
		return nil
	}
	opt := s.Options[s.Cursor]
	if err := env.Backend.SetPreferredEditor(opt.Command); err != nil {
		return fail(err, s)
	}
	return launchEditor(env, s, s.Prev, opt.Name, opt.Command, s.Path)
}
