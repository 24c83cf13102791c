package session

import "fmt"

// Interpret maps ev onto the live state s. It returns nil when the state is
// unchanged; interpreters may still have updated s's own payload.
func Interpret(ev Event, env *Env, s State) State {
	switch st := s.(type) {
	case *Listing:
		return onListing(ev, env, st)
	case *ViewingStatus:
		return onStatus(ev, env, st)
	case *ViewingHistory:
		return onHistory(ev, env, st)
	case *SwitchingBranch:
		return onSwitchingBranch(ev, env, st)
	case *PickingBaseRef:
		return onPickingBaseRef(ev, env, st)
	case *Committing:
		return onCommitting(ev, env, st)
	case *Prompting:
		return onPrompting(ev, env, st)
	case *ViewingStashes:
		return onStashes(ev, env, st)
	case *Confirming:
		return onConfirming(ev, env, st)
	case *SelectingEditor:
		return onSelectingEditor(ev, env, st)
	case *Help:
		return dismiss(ev, st.Prev)
	case *Error:
		return dismiss(ev, st.Prev)
	case *Completed:
		return dismiss(ev, st.Prev)
	case *Timed:
		return dismiss(ev, st.Target)
	case *Fetching, *Pulling, *Pushing, *Syncing, *OpeningEditor, *Loading:
		return cancelBusy(ev, Previous(st))
	case *Welcome, *SettingUpDefaults, *SetupComplete:
		return onLeaf(ev)
	case *Exiting:
		return nil
	}
	panic(fmt.Sprintf("session: no interpreter for %T", s))
}

// dismiss returns prev on q, Esc or Enter.
func dismiss(ev Event, prev State) State {
	k, ok := ev.(KeyEvent)
	if !ok {
		return nil
	}
	if k.Key == KeyEsc || k.Key == KeyEnter || k.Folded() == 'q' {
		return prev
	}
	return nil
}

// cancelBusy stops waiting on Esc; the late result is discarded by the loop.
func cancelBusy(ev Event, prev State) State {
	if k, ok := ev.(KeyEvent); ok && k.Key == KeyEsc {
		return prev
	}
	return nil
}

func onLeaf(ev Event) State {
	k, ok := ev.(KeyEvent)
	if !ok {
		return nil
	}
	if k.Key == KeyEsc || k.Key == KeyCtrlC || k.Folded() == 'q' {
		return &Exiting{}
	}
	return nil
}
