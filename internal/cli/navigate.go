package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chmouel/worktrees/internal/intent"
	"github.com/chmouel/worktrees/internal/models"
)

// MatchWorktree finds the non-bare worktree best matching needle, ignoring
// case: exact branch, then exact directory name, then branch substring, then
// path substring.
func MatchWorktree(worktrees []models.Worktree, needle string) (models.Worktree, bool) {
	candidates := nonBare(worktrees)
	needle = strings.ToLower(needle)
	rules := []func(models.Worktree) bool{
		func(wt models.Worktree) bool { return strings.ToLower(wt.Branch) == needle },
		func(wt models.Worktree) bool { return strings.ToLower(filepath.Base(wt.Path)) == needle },
		func(wt models.Worktree) bool { return strings.Contains(strings.ToLower(wt.Branch), needle) },
		func(wt models.Worktree) bool { return strings.Contains(strings.ToLower(wt.Path), needle) },
	}
	for _, rule := range rules {
		for _, wt := range candidates {
			if rule(wt) {
				return wt, true
			}
		}
	}
	return models.Worktree{}, false
}

func (r *Reducer) switchWorktree(ctx context.Context, in intent.SwitchWorktree) error {
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return err
	}
	wt, ok := MatchWorktree(worktrees, in.Name)
	if !ok {
		return failf("No worktree found matching '%s'. Run 'worktrees list' to see available worktrees.", in.Name)
	}
	if in.Copy {
		if err := r.opts.Copy(wt.Path); err != nil {
			return failf("Failed to copy path to clipboard: %v", err)
		}
	}
	if r.out.json {
		return r.out.emit(map[string]any{
			"status": "success",
			"path":   wt.Path,
			"branch": wt.Branch,
			"copied": in.Copy,
		})
	}
	// printed even when quiet: shell wrappers cd into it
	r.out.println(wt.Path)
	return nil
}

func (r *Reducer) checkout(ctx context.Context, in intent.CheckoutWorktree) error {
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return err
	}
	needle := strings.ToLower(in.Name)
	idx := slices.IndexFunc(nonBare(worktrees), func(wt models.Worktree) bool {
		return strings.ToLower(wt.Branch) == needle || strings.ToLower(filepath.Base(wt.Path)) == needle
	})
	if idx < 0 {
		return failf("Worktree '%s' not found.", in.Name)
	}
	target := nonBare(worktrees)[idx]
	if err := r.backend.SwitchBranch(ctx, target.Path, in.Branch); err != nil {
		return err
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "intent": in.Name, "branch": in.Branch})
	}
	if !r.out.quiet {
		r.out.println(fmt.Sprintf("%s Worktree '%s' switched to branch '%s'.", r.out.success.Render("✔"), in.Name, in.Branch))
	}
	return nil
}

// sameDir compares two paths after resolving symlinks.
func sameDir(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

func (r *Reducer) teleport(ctx context.Context, in intent.Teleport) error {
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return err
	}
	cwd, err := r.workDir()
	if err != nil {
		return err
	}

	var source models.Worktree
	found := false
	for _, wt := range nonBare(worktrees) {
		if sameDir(wt.Path, cwd) {
			source, found = wt, true
			break
		}
	}
	if !found {
		return failf("Not currently in a managed worktree. Teleport must be run from a worktree directory.")
	}
	target, ok := MatchWorktree(worktrees, in.Target)
	if !ok {
		return failf("Target worktree '%s' not found.", in.Target)
	}
	if source.Path == target.Path {
		return failf("Already in target worktree '%s'.", target.Branch)
	}

	st, err := r.backend.Status(ctx, source.Path)
	if err != nil {
		return err
	}
	if st.Len() == 0 {
		if r.out.json {
			return r.out.emit(map[string]any{"status": "success", "from": source.Branch, "to": target.Branch, "moved": false})
		}
		if !r.out.quiet {
			r.out.println(r.out.accent.Render("ℹ") + " Current worktree is clean. Nothing to teleport.")
		}
		return nil
	}

	r.out.step("Teleporting changes from '%s' to '%s'...", r.out.bold.Render(label(source)), r.out.bold.Render(label(target)))
	if err := r.backend.SaveStash(ctx, source.Path, "Teleport to "+target.Branch); err != nil {
		return err
	}
	stashes, err := r.backend.Stashes(ctx, source.Path)
	if err != nil {
		return err
	}
	if len(stashes) == 0 {
		return failf("Failed to create stash for teleport.")
	}
	// the stash list is shared by every worktree of the hub
	if err := r.backend.ApplyStash(ctx, target.Path, 0); err != nil {
		return failf("Failed to apply changes to target '%s': %v. Changes preserved in stash@{0}.", target.Branch, err)
	}
	if err := r.backend.DropStash(ctx, source.Path, 0); err != nil {
		return err
	}

	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "from": source.Branch, "to": target.Branch, "moved": true})
	}
	r.out.done("Teleport complete!")
	return nil
}
