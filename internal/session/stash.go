package session

import "context"

func onStashes(ev Event, env *Env, s *ViewingStashes) State {
	if k, ok := ev.(KeyEvent); ok && k.Key == KeyRune {
		switch k.Folded() {
		case 'a':
			return s.act(env, env.Backend.ApplyStash)
		case 'p':
			return s.act(env, env.Backend.PopStash)
		case 'd':
			return s.act(env, env.Backend.DropStash)
		case 'n':
			return &Prompting{Kind: PromptStashMessage, Path: s.Path, Prev: s}
		}
	}
	idx, _, back := pickList(ev, env, s.Cursor, len(s.Stashes))
	s.Cursor = idx
	if back {
		return s.Prev
	}
	return nil
}

// act runs a stash operation on the selected entry and reloads the list.
func (s *ViewingStashes) act(env *Env, op func(ctx context.Context, path string, index int) error) State {
	if s.Cursor < 0 || s.Cursor >= len(s.Stashes) {
		return nil
	}
	if err := op(env.ctx(), s.Path, s.Stashes[s.Cursor].Index); err != nil {
		return fail(err, s)
	}
	stashes, err := env.Backend.Stashes(env.ctx(), s.Path)
	if err != nil {
		return fail(err, s)
	}
	s.Stashes = stashes
	s.Cursor = clamp(s.Cursor, len(stashes))
	return nil
}
