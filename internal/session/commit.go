package session

import (
	"strings"
	"unicode/utf8"
)

func onCommitting(ev Event, env *Env, s *Committing) State {
	n := len(CommitOptions)
	if k, ok := ev.(KeyEvent); ok && k.Key == KeyRune && k.Rune >= '1' && int(k.Rune-'1') < n {
		s.Cursor = int(k.Rune - '1')
		return s.choose(env)
	}
	idx, act, back := pickList(ev, env, s.Cursor, n)
	s.Cursor = idx
	switch {
	case back:
		return s.Prev
	case act:
		return s.choose(env)
	}
	return nil
}

func (s *Committing) choose(env *Env) State {
	switch CommitOptions[s.Cursor] {
	case CommitAI:
		diff, err := env.Backend.Diff(env.ctx(), s.Path)
		if err != nil {
			return fail(err, s)
		}
		if strings.TrimSpace(diff) == "" {
			return fail(ErrNoChanges, s)
		}
		seq := env.Bridge.GenerateCommitMessage(s.Path, s.Branch, diff)
		return &Loading{Task: TaskCommitMessage, Label: "Drafting commit message", Path: s.Path, Branch: s.Branch, Seq: seq, Prev: s}
	case CommitSetKey:
		return &Prompting{Kind: PromptAPIKey, Path: s.Path, Prev: s}
	default:
		return &Prompting{Kind: PromptCommitMessage, Path: s.Path, Prev: s}
	}
}

func onPrompting(ev Event, env *Env, p *Prompting) State {
	k, ok := ev.(KeyEvent)
	if !ok {
		return nil
	}
	switch k.Key {
	case KeyEsc:
		return p.Prev
	case KeyBackspace:
		if p.Input != "" {
			_, size := utf8.DecodeLastRuneInString(p.Input)
			p.Input = p.Input[:len(p.Input)-size]
		}
	case KeyCtrlU:
		p.Input = ""
	case KeyRune:
		p.Input += string(k.Rune)
	case KeyEnter:
		input := strings.TrimSpace(p.Input)
		if input == "" {
			return nil
		}
		return p.submit(env, input)
	}
	return nil
}

func (p *Prompting) submit(env *Env, input string) State {
	switch p.Kind {
	case PromptNameNewWorktree:
		if err := env.Backend.AddNewWorktree(env.ctx(), input, input, p.BaseRef); err != nil {
			return fail(err, p)
		}
		back := p.Prev
		if picker, ok := back.(*PickingBaseRef); ok {
			back = picker.Prev
		}
		return markFull(back)
	case PromptCommitMessage:
		if err := env.Backend.Commit(env.ctx(), p.Path, input); err != nil {
			return fail(err, p)
		}
		back := p.Prev
		if menu, ok := back.(*Committing); ok {
			back = menu.Prev
		}
		if vs, ok := back.(*ViewingStatus); ok {
			st, err := env.Backend.Status(env.ctx(), vs.Path)
			if err != nil {
				return fail(err, vs)
			}
			fresh := *vs
			fresh.Status = st
			fresh.Cursor = 0
			fresh.ShowDiff = false
			fresh.Diff = ""
			back = &fresh
		}
		return env.completed("Committed", back)
	case PromptStashMessage:
		if err := env.Backend.SaveStash(env.ctx(), p.Path, input); err != nil {
			return fail(err, p)
		}
		back := p.Prev
		if vs, ok := back.(*ViewingStashes); ok {
			stashes, err := env.Backend.Stashes(env.ctx(), vs.Path)
			if err != nil {
				return fail(err, vs)
			}
			fresh := *vs
			fresh.Stashes = stashes
			fresh.Cursor = 0
			back = &fresh
		}
		return env.completed("Stashed changes", back)
	case PromptAPIKey:
		if err := env.Backend.SetAPIKey(input); err != nil {
			return fail(err, p)
		}
		return env.completed("API key saved", p.Prev)
	}
	return nil
}
