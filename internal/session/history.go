package session

func onHistory(ev Event, env *Env, s *ViewingHistory) State {
	switch e := ev.(type) {
	case MouseEvent:
		if d, ok := wheelDelta(e); ok {
			s.Cursor = MoveCommits(s.Commits, s.Cursor, d)
			return nil
		}
		if e.Action == MouseClick {
			idx, ok := RowAt(env.Layout.BodyRows(), e.X, e.Y, s.Cursor, len(s.Commits))
			if ok && !s.Commits[idx].IsConnector() {
				s.Cursor = idx
			}
		}
	case KeyEvent:
		if d, ok := moveKey(e); ok {
			s.Cursor = MoveCommits(s.Commits, s.Cursor, d)
			return nil
		}
		if e.Key == KeyEsc || e.Folded() == 'q' {
			return s.Prev
		}
	}
	return nil
}
