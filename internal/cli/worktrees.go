package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/chmouel/worktrees/internal/git"
	"github.com/chmouel/worktrees/internal/intent"
	log "github.com/chmouel/worktrees/internal/log"
	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/session"
	"github.com/chmouel/worktrees/internal/utils"
)

// projectName picks the hub directory name: the explicit name, else the last
// element of the URL without its extension, else "project".
func projectName(url, name string) string {
	if name != "" {
		return name
	}
	if url = strings.TrimRight(url, "/"); url != "" {
		base := path.Base(url)
		if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" && stem != "." {
			return stem
		}
	}
	return "project"
}

func (r *Reducer) initialize(ctx context.Context, in intent.Initialize) error {
	name := projectName(in.URL, in.Name)
	cwd, err := r.workDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(cwd, name)
	r.out.step("Initializing bare repository %s", r.out.bold.Render(name))

	if err := r.backend.InitHub(ctx, dir, in.URL); err != nil {
		return failf("Failed to initialize repository: %v", err)
	}
	if in.URL == "" && r.opts.Open != nil {
		// a fresh project gets its first worktree right away
		if err := r.opts.Open(dir).AddNewWorktree(ctx, "main", "main", "HEAD"); err != nil {
			log.Printf("cli: create default main worktree: %v", err)
		}
	}

	if r.out.json {
		return r.out.emit(map[string]any{
			"status":  "success",
			"project": name,
			"path":    name + "/.bare",
		})
	}
	if r.out.human() {
		r.out.println("\n" + r.out.success.Render("✔ Bare repository established"))
		r.out.println("   " + r.out.muted.Render("├─ Location:") + " " + name + "/.bare")
		r.out.println("   " + r.out.muted.Render("└─ Next:    ") + " " + r.out.accent.Render("cd "+name+" && worktrees setup"))
	}
	return nil
}

func (r *Reducer) add(ctx context.Context, in intent.AddWorktree) error {
	branch := in.Branch
	if branch == "" {
		branch = in.Name
	}
	r.out.step("Adding worktree %s (branch: %s)", r.out.bold.Render(in.Name), branch)
	if err := r.backend.AddWorktree(ctx, in.Name, branch); err != nil {
		return err
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "intent": in.Name, "branch": branch})
	}
	r.out.done("Worktree active at ./%s", in.Name)
	return nil
}

func (r *Reducer) remove(ctx context.Context, in intent.RemoveWorktree) error {
	r.out.step("Removing worktree %s", r.out.bold.Render(in.Name))
	if err := r.backend.RemoveWorktree(ctx, in.Name, in.Force); err != nil {
		return err
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "intent": in.Name})
	}
	r.out.done("Worktree removed.")
	return nil
}

func (r *Reducer) list(ctx context.Context) error {
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return err
	}
	if r.out.json {
		if worktrees == nil {
			worktrees = []models.Worktree{}
		}
		return r.out.emit(worktrees)
	}
	r.out.banner()
	if len(worktrees) == 0 {
		r.out.println("No worktrees yet. Run 'worktrees init' to create a hub.")
	}
	r.out.table(worktrees)
	if !r.out.quiet {
		r.out.println("\n" + r.out.muted.Render("Tip: Run with 'worktrees list' (no args) for interactive TUI"))
	}
	return nil
}

func (r *Reducer) setup(ctx context.Context) error {
	r.out.step("Setting up default worktrees (main, dev)")
	results, err := r.backend.SetupDefaultWorktrees(ctx)
	if err != nil {
		return err
	}
	if r.out.json {
		return r.out.emit(results)
	}
	labels := map[string]string{"main": "Main: ", "dev": "Dev:  "}
	for _, res := range results {
		label, ok := labels[res.Name]
		if !ok {
			label = res.Name + ": "
		}
		state := r.out.muted.Render("SKIPPED")
		if res.Status == git.SetupReady {
			text := "READY"
			if res.CreatedFrom != "" {
				text = fmt.Sprintf("READY (Created from %s)", res.CreatedFrom)
			}
			state = r.out.success.Render(text)
		}
		r.out.println("   " + label + state)
	}
	r.out.done("Setup complete.")
	return nil
}

func (r *Reducer) runCommand(ctx context.Context, in intent.RunCommand) error {
	if len(in.Command) == 0 {
		return failf("No command given.")
	}
	name := in.Name
	if name == "" {
		name = utils.TempWorktreeName()
	}
	branch := in.Branch
	if branch == "" {
		branch = name
	}

	r.out.step("Creating temporary worktree '%s' tracking '%s'...", name, branch)
	if err := r.backend.AddWorktree(ctx, name, branch); err != nil {
		return failf("Failed to create temporary worktree: %v", err)
	}
	root, err := r.backend.ProjectRoot(ctx)
	if err != nil {
		_ = r.backend.RemoveWorktree(ctx, name, true)
		return err
	}

	r.out.step("Executing command: %s", r.out.bold.Render(shellescape.QuoteCommand(in.Command)))
	code, runErr := r.opts.Exec(ctx, filepath.Join(root, name), in.Command)

	r.out.step("Cleaning up...")
	if err := r.backend.RemoveWorktree(ctx, name, true); err != nil {
		log.Printf("cli: remove temporary worktree %s: %v", name, err)
	}

	if runErr != nil {
		return runErr
	}
	if code != 0 {
		return &Failure{
			Message: fmt.Sprintf("Command failed with exit code %d", code),
			Payload: map[string]any{"exit_code": code},
		}
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "exit_code": code})
	}
	r.out.done("Done.")
	return nil
}

// label names a worktree in messages.
func label(wt models.Worktree) string {
	if wt.Branch != "" {
		return wt.Branch
	}
	return wt.Name()
}

// findByBranchOrPath returns the worktrees whose branch is name or whose path
// ends with it.
func findByBranchOrPath(worktrees []models.Worktree, name string) []models.Worktree {
	var found []models.Worktree
	for _, wt := range worktrees {
		if wt.Branch == name || strings.HasSuffix(wt.Path, name) {
			found = append(found, wt)
		}
	}
	return found
}

func nonBare(worktrees []models.Worktree) []models.Worktree {
	var out []models.Worktree
	for _, wt := range worktrees {
		if !wt.IsBare {
			out = append(out, wt)
		}
	}
	return out
}

func (r *Reducer) sync(ctx context.Context, in intent.SyncConfigurations) error {
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return err
	}
	targets := nonBare(worktrees)
	if in.Name != "" {
		targets = findByBranchOrPath(worktrees, in.Name)
	}
	if len(targets) == 0 {
		return failf("No matching worktrees found to synchronize.")
	}

	bridge := session.NewBridge(ctx, r.backend)
	defer bridge.Close()
	// results are keyed by path; detached worktrees share an empty branch
	for _, wt := range targets {
		bridge.Sync(wt.Path, wt.Path)
	}
	outcomes := make(map[string]error, len(targets))
	for range targets {
		select {
		case res := <-bridge.Results():
			if done, ok := res.(session.SyncCompleted); ok {
				outcomes[done.Branch] = done.Err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	type synced struct {
		Branch string `json:"branch"`
		Path   string `json:"path"`
		Error  string `json:"error,omitempty"`
	}
	report := make([]synced, 0, len(targets))
	for _, wt := range targets {
		err := outcomes[wt.Path]
		entry := synced{Branch: wt.Branch, Path: wt.Path}
		r.out.step("Synchronizing configuration for: %s", r.out.bold.Render(label(wt)))
		if err != nil {
			entry.Error = err.Error()
			r.out.problem("Error: %v", err)
		} else if r.out.human() {
			r.out.println("   " + r.out.success.Render("✔") + " Synchronization complete.")
		}
		report = append(report, entry)
	}
	return r.out.emit(map[string]any{"status": "success", "worktrees": report})
}

// remoteTarget resolves the worktree a push or pull applies to.
func (r *Reducer) remoteTarget(ctx context.Context, verb, name string) (models.Worktree, error) {
	if name == "" {
		return models.Worktree{}, failf("Please specify a worktree to %s (e.g. 'worktrees %s main').", verb, verb)
	}
	worktrees, err := r.backend.ListWorktrees(ctx)
	if err != nil {
		return models.Worktree{}, err
	}
	found := findByBranchOrPath(worktrees, name)
	if len(found) == 0 {
		return models.Worktree{}, failf("Worktree not found.")
	}
	return found[0], nil
}

func (r *Reducer) push(ctx context.Context, in intent.Push) error {
	wt, err := r.remoteTarget(ctx, "push", in.Name)
	if err != nil {
		return err
	}
	r.out.step("Pushing worktree: %s", r.out.bold.Render(label(wt)))
	res, err := r.await(ctx, func(b *session.Bridge) { b.Push(wt.Path, wt.Branch) })
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return failf("Push failed: %v", err)
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "branch": wt.Branch})
	}
	r.out.done("Push complete.")
	return nil
}

func (r *Reducer) pull(ctx context.Context, in intent.Pull) error {
	wt, err := r.remoteTarget(ctx, "pull", in.Name)
	if err != nil {
		return err
	}
	r.out.step("Pulling worktree: %s", r.out.bold.Render(label(wt)))
	res, err := r.await(ctx, func(b *session.Bridge) { b.Pull(wt.Path, wt.Branch) })
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return failf("Pull failed: %v", err)
	}
	if r.out.json {
		return r.out.emit(map[string]any{"status": "success", "branch": wt.Branch})
	}
	r.out.done("Pull complete.")
	return nil
}

func (r *Reducer) config(in intent.Config) error {
	switch {
	case in.Key != "":
		if err := r.backend.SetAPIKey(in.Key); err != nil {
			return failf("Failed to set API key: %v", err)
		}
		if r.out.json {
			return r.out.emit(map[string]any{"status": "success", "action": "set_key"})
		}
		r.out.done("Gemini API key set successfully.")
	case in.Show:
		key, err := r.backend.APIKey()
		if err != nil {
			return failf("Failed to get API key: %v", err)
		}
		if r.out.json {
			var value any
			if key != "" {
				value = key
			}
			return r.out.emit(map[string]any{"status": "success", "key": value})
		}
		if key == "" {
			r.out.println(r.out.warn.Render("⚠") + " No API key found.")
			return nil
		}
		r.out.println(r.out.accent.Render("➜") + " Current API key: " + key)
	default:
		return failf("Nothing to do: pass --key to store an API key or --show to display it.")
	}
	return nil
}

func (r *Reducer) clean(ctx context.Context, in intent.CleanWorktrees) error {
	switch {
	case in.Artifacts && in.DryRun:
		r.out.step("Scanning for build artifacts in inactive worktrees (dry-run)...")
	case in.Artifacts:
		r.out.step("Cleaning build artifacts from inactive worktrees...")
	case in.DryRun:
		r.out.step("Scanning for stale worktrees (dry-run)...")
	default:
		r.out.step("Cleaning stale worktrees...")
	}

	res, err := r.await(ctx, func(b *session.Bridge) { b.Clean(in.DryRun, in.Artifacts) })
	if err != nil {
		return err
	}
	done, _ := res.(session.CleanCompleted)
	if done.Err != nil {
		return failf("Failed to clean worktrees: %v", done.Err)
	}
	stale := done.Removed
	if stale == nil {
		stale = []string{}
	}
	if r.out.json {
		return r.out.emit(map[string]any{
			"status":          "success",
			"dry_run":         in.DryRun,
			"stale_count":     len(stale),
			"stale_worktrees": stale,
		})
	}
	if len(stale) == 0 {
		r.out.done("No stale worktrees found.")
		return nil
	}
	if in.DryRun {
		r.out.println(fmt.Sprintf("\n%s Found %d stale worktree(s) that would be removed:", r.out.warn.Render("⚠"), len(stale)))
	} else {
		r.out.println(fmt.Sprintf("\n%s Removed %d stale worktree(s):", r.out.success.Render("✔"), len(stale)))
	}
	for _, entry := range stale {
		r.out.println("   • " + r.out.muted.Render(entry))
	}
	if in.DryRun {
		r.out.tip("Run without --dry-run to actually remove these worktrees.")
	}
	return nil
}
