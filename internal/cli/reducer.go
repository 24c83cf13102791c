// Package cli executes one-shot intents from the command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/atotto/clipboard"

	"github.com/chmouel/worktrees/internal/git"
	"github.com/chmouel/worktrees/internal/intent"
	log "github.com/chmouel/worktrees/internal/log"
	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/session"
	"github.com/chmouel/worktrees/internal/theme"
)

// Backend is the version control surface the reducer drives. It is the
// session backend plus the hub lifecycle operations only the command line
// needs.
type Backend interface {
	session.Backend
	AddWorktree(ctx context.Context, name, branch string) error
	SetupDefaultWorktrees(ctx context.Context) ([]git.SetupResult, error)
	InitHub(ctx context.Context, dir, url string) error
	Convert(ctx context.Context, hubName, branch string) (string, error)
	Migrate(ctx context.Context, force, dryRun bool) (string, error)
	CheckRepo(ctx context.Context, dir string) models.RepoKind
}

var _ Backend = (*git.Service)(nil)

// Options controls how intents are executed and reported.
type Options struct {
	JSON   bool
	Quiet  bool
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the working directory; empty means os.Getwd.
	Dir   string
	Theme *theme.Theme

	// Open returns a backend rooted at dir. Used to create the first
	// worktree of a freshly initialized hub.
	Open func(dir string) Backend
	// Copy puts text on the clipboard.
	Copy func(text string) error
	// Exec runs argv in dir attached to the terminal and returns its exit code.
	Exec func(ctx context.Context, dir string, argv []string) (int, error)
}

// Failure is the single error type returned by Run. Payload carries extra
// fields reported in JSON mode.
type Failure struct {
	Message string
	Payload map[string]any
}

func (f *Failure) Error() string {
	return f.Message
}

func failf(format string, args ...any) *Failure {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// Reducer runs intents against a backend. It keeps no state between runs.
type Reducer struct {
	backend Backend
	opts    Options
	out     *printer
}

// New returns a reducer with defaults filled in.
func New(backend Backend, opts Options) *Reducer {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Theme == nil {
		opts.Theme = theme.Dracula()
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Exec == nil {
		opts.Exec = execCommand
	}
	return &Reducer{backend: backend, opts: opts, out: newPrinter(opts)}
}

// Run executes in to completion. Every error returned is a *Failure.
func (r *Reducer) Run(ctx context.Context, in intent.Intent) error {
	log.Printf("cli: run %s", in.Name())
	err := r.dispatch(ctx, in)
	if err == nil {
		return nil
	}
	log.Printf("cli: %s failed: %v", in.Name(), err)
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	return &Failure{Message: err.Error()}
}

func (r *Reducer) dispatch(ctx context.Context, in intent.Intent) error {
	switch in := in.(type) {
	case intent.Initialize:
		return r.initialize(ctx, in)
	case intent.AddWorktree:
		return r.add(ctx, in)
	case intent.RemoveWorktree:
		return r.remove(ctx, in)
	case intent.ListWorktrees:
		return r.list(ctx)
	case intent.SetupDefaults:
		return r.setup(ctx)
	case intent.RunCommand:
		return r.runCommand(ctx, in)
	case intent.SyncConfigurations:
		return r.sync(ctx, in)
	case intent.Push:
		return r.push(ctx, in)
	case intent.Pull:
		return r.pull(ctx, in)
	case intent.Config:
		return r.config(in)
	case intent.CleanWorktrees:
		return r.clean(ctx, in)
	case intent.Convert:
		return r.convert(ctx, in)
	case intent.Migrate:
		return r.migrate(ctx, in)
	case intent.SwitchWorktree:
		return r.switchWorktree(ctx, in)
	case intent.CheckoutWorktree:
		return r.checkout(ctx, in)
	case intent.Teleport:
		return r.teleport(ctx, in)
	case intent.Open:
		return r.open(ctx)
	case intent.Rebase:
		return r.rebase(ctx, in)
	default:
		panic(fmt.Sprintf("cli: unhandled intent %T", in))
	}
}

func (r *Reducer) workDir() (string, error) {
	if r.opts.Dir != "" {
		return r.opts.Dir, nil
	}
	return os.Getwd()
}

// await runs one bridge task and waits for its result.
func (r *Reducer) await(ctx context.Context, start func(*session.Bridge)) (session.Result, error) {
	bridge := session.NewBridge(ctx, r.backend)
	defer bridge.Close()
	start(bridge)
	select {
	case res := <-bridge.Results():
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func execCommand(ctx context.Context, dir string, argv []string) (int, error) {
	// #nosec G204 -- the user asked to run this command
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to spawn command: %w", err)
	}
	return 0, nil
}
