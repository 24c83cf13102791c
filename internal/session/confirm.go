package session

import (
	"fmt"

	"github.com/chmouel/worktrees/internal/intent"
)

func onConfirming(ev Event, env *Env, c *Confirming) State {
	k, ok := ev.(KeyEvent)
	if !ok {
		return nil
	}
	switch {
	case k.Key == KeyEnter, k.Folded() == 'y':
		return c.execute(env)
	case k.Key == KeyEsc, k.Folded() == 'n', k.Folded() == 'q':
		return c.Prev
	}
	return nil
}

// execute runs the confirmed action. Fast actions run inline and return to
// the predecessor; slow ones go through the bridge.
func (c *Confirming) execute(env *Env) State {
	switch a := c.Action.(type) {
	case intent.RemoveWorktree:
		if err := env.Backend.RemoveWorktree(env.ctx(), a.Name, a.Force); err != nil {
			return fail(err, c.Prev)
		}
		return markFull(c.Prev)
	case intent.CleanWorktrees:
		seq := env.Bridge.Clean(a.DryRun, a.Artifacts)
		label := "Pruning stale worktrees"
		if a.Artifacts {
			label = "Removing build artifacts"
		}
		return &Loading{Task: TaskClean, Label: label, Seq: seq, Prev: c.Prev}
	case intent.Rebase:
		seq := env.Bridge.Rebase(a.Path, a.Upstream)
		return &Loading{Task: TaskRebase, Label: "Rebasing onto " + a.Upstream, Path: a.Path, Seq: seq, Prev: c.Prev}
	}
	return fail(fmt.Errorf("%s cannot run from the session", c.Action.Name()), c.Prev)
}
