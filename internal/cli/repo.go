package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/chmouel/worktrees/internal/git"
	"github.com/chmouel/worktrees/internal/intent"
	"github.com/chmouel/worktrees/internal/session"
)

func (r *Reducer) convert(ctx context.Context, in intent.Convert) error {
	r.out.step("Converting standard repository to Bare Hub structure...")
	hub, err := r.backend.Convert(ctx, in.Name, in.Branch)
	if err != nil {
		return failf("Conversion failed: %v", err)
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "hub_path": hub})
	}
	r.out.done("Conversion complete!")
	r.out.step("New hub created at: %s", r.out.bold.Render(hub))
	r.out.tip("You can now move into the new hub and start working:")
	if r.out.human() {
		r.out.println("   cd " + hub)
	}
	return nil
}

func (r *Reducer) migrate(ctx context.Context, in intent.Migrate) error {
	r.out.step("Migrating repository to Bare Hub structure (in-place)...")
	target, err := r.backend.Migrate(ctx, in.Force, in.DryRun)
	if err != nil {
		failure := failf("Migration failed: %v", err)
		if errors.Is(err, git.ErrTargetExists) {
			failure.Payload = map[string]any{"hint": "move the existing directory away and run the migration again"}
		}
		return failure
	}
	if in.DryRun {
		if r.out.json {
			return r.out.emit(map[string]any{"status": "success", "dry_run": true, "would_create": target})
		}
		r.out.done("Dry run complete. Migration would create worktree at: %s", target)
		return nil
	}
	if r.out.json {
		return r.out.emit(map[string]any{
			"status":  "success",
			"path":    target,
			"message": "Repository migrated to Bare Hub structure.",
		})
	}
	r.out.done("Migration complete! You are now in a Bare Hub.")
	if r.out.human() {
		r.out.println("   New main worktree: " + r.out.bold.Render(target))
		r.out.println("   To start working, cd into the new worktree.")
	}
	return nil
}

func (r *Reducer) rebase(ctx context.Context, in intent.Rebase) error {
	upstream := in.Upstream
	if upstream == "" {
		upstream = r.backend.MainBranch(ctx)
	}
	path := in.Path
	if path == "" {
		cwd, err := r.workDir()
		if err != nil {
			return err
		}
		path = cwd
	}

	r.out.step("Rebasing current worktree onto '%s'...", r.out.bold.Render(upstream))
	res, err := r.await(ctx, func(b *session.Bridge) { b.Rebase(path, upstream) })
	if err != nil {
		return err
	}
	done, _ := res.(session.RebaseCompleted)
	if done.Err == nil {
		if r.out.json {
			return r.out.emit(map[string]any{"status": "success", "upstream": upstream})
		}
		r.out.done("Rebase complete.")
		return nil
	}

	failure := failf("Rebase failed: %v", done.Err)
	if done.Explanation != "" {
		failure.Payload = map[string]any{"explanation": done.Explanation}
		if !r.out.json {
			r.out.step("Analyzing conflicts with Gemini AI...")
			r.out.println("\n" + r.out.warn.Render("AI Conflict Explanation:"))
			r.out.println(done.Explanation + "\n")
		}
	}
	return failure
}

func (r *Reducer) open(ctx context.Context) error {
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return err
	}
	root, err := r.backend.ProjectRoot(ctx)
	if err != nil {
		return err
	}
	project := filepath.Base(root)
	if project == "" || project == "." || project == string(filepath.Separator) {
		project = "project"
	}
	config, err := warpLaunchConfig(project, nonBare(worktrees))
	if err != nil {
		return err
	}
	if config == "" {
		return failf("No worktrees to open. Run 'worktrees setup' first.")
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "config": config})
	}
	r.out.println("\n" + r.out.accent.Render("Generated Warp Launch Configuration:"))
	r.out.println("---")
	r.out.println(strings.TrimRight(config, "\n"))
	r.out.println("---")
	if !r.out.quiet {
		r.out.println("\n" + r.out.warn.Render("To use this configuration:"))
		r.out.println("1. Save the above content to a file, e.g., `warp-launch.yaml`.")
		r.out.println("2. Use `warp-cli launch-config warp-launch.yaml` if you have Warp CLI installed.")
		r.out.println("3. Or copy/paste into Warp's Launch Configuration editor.")
	}
	return nil
}
