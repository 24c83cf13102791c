package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/atotto/clipboard"
	urfavecli "github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/chmouel/worktrees/internal/buildinfo"
	"github.com/chmouel/worktrees/internal/cli"
	"github.com/chmouel/worktrees/internal/config"
	"github.com/chmouel/worktrees/internal/git"
	"github.com/chmouel/worktrees/internal/intent"
	log "github.com/chmouel/worktrees/internal/log"
	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/multiplexer"
	"github.com/chmouel/worktrees/internal/session"
	"github.com/chmouel/worktrees/internal/theme"
	"github.com/chmouel/worktrees/internal/tui"
)

// sessionBackend is what an interactive session needs from the git layer.
type sessionBackend interface {
	session.Backend
	Dir() string
	CheckRepo(ctx context.Context, dir string) models.RepoKind
	Watch(ctx context.Context) (<-chan models.RepositoryEvent, error)
}

var _ sessionBackend = (*git.Service)(nil)

// App is one run of the command line.
type App struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	// isTerminal reports whether an interactive session can be drawn.
	isTerminal func() bool
	copy       func(string) error

	execute     func(ctx context.Context, st *settings, in intent.Intent) error
	openSession func(st *settings) sessionBackend
	interactive func(ctx context.Context, loop *session.Loop, opts tui.Options) (string, error)

	args []string
	st   *settings
}

// New returns an App attached to the process terminal.
func New(stdout, stderr io.Writer) *App {
	a := &App{
		stdout: stdout,
		stderr: stderr,
		getenv: os.Getenv,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		copy:        clipboard.WriteAll,
		openSession: func(st *settings) sessionBackend { return newGitService(st, "") },
		interactive: tui.Run,
	}
	a.execute = a.executeIntent
	return a
}

// Run parses args, runs the command they name and returns the exit code.
// Failures are reported on stderr, as JSON when --json was given.
func (a *App) Run(ctx context.Context, args []string) int {
	a.args = args
	err := a.command().Run(ctx, args)
	if err != nil {
		cli.Report(a.stderr, err, a.jsonMode())
	}
	if cerr := log.Close(); cerr != nil {
		_, _ = fmt.Fprintf(a.stderr, "Error closing debug log: %v\n", cerr)
	}
	if err != nil {
		return 1
	}
	return 0
}

func (a *App) jsonMode() bool {
	if a.st != nil {
		return a.st.json
	}
	return slices.Contains(a.args, "--json")
}

func (a *App) command() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "worktrees",
		Usage:                 "Manage git worktrees in a bare repository hub",
		Version:               buildinfo.Describe(),
		EnableShellCompletion: true,
		Writer:                a.stdout,
		ErrWriter:             a.stderr,
		Flags:                 globalFlags(),
		Commands:              a.subcommands(),
		Action:                a.rootAction,
		ShellComplete:         a.completeRoot,
		ExitErrHandler:        func(context.Context, *urfavecli.Command, error) {},
	}
}

// settings loads the configuration once per run.
func (a *App) settings(cmd *urfavecli.Command) (*settings, error) {
	if a.st != nil {
		return a.st, nil
	}
	st, err := loadSettings(cmd, a.stderr, a.getenv)
	if err != nil {
		return nil, err
	}
	a.st = st
	return st, nil
}

// rootAction opens the interactive session, or lists the worktrees when
// there is no terminal to draw it on.
func (a *App) rootAction(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("unknown command %q, run 'worktrees --help' for usage", cmd.Args().First())
	}
	st, err := a.settings(cmd)
	if err != nil {
		return err
	}
	if !a.isTerminal() {
		return a.execute(ctx, st, intent.ListWorktrees{})
	}
	path, err := a.runSession(ctx, st, &session.Listing{})
	if err != nil {
		return err
	}
	return a.finishSelection(cmd, path, false)
}

// runIntent loads the settings and hands in to the reducer.
func (a *App) runIntent(ctx context.Context, cmd *urfavecli.Command, in intent.Intent) error {
	st, err := a.settings(cmd)
	if err != nil {
		return err
	}
	return a.execute(ctx, st, in)
}

func (a *App) executeIntent(ctx context.Context, st *settings, in intent.Intent) error {
	r := cli.New(newGitService(st, ""), cli.Options{
		JSON:   st.json,
		Quiet:  st.quiet,
		Stdout: a.stdout,
		Stderr: a.stderr,
		Theme:  theme.GetTheme(st.cfg.Theme),
		Open: func(dir string) cli.Backend {
			return newGitService(st, dir)
		},
		Copy: a.copy,
	})
	return r.Run(ctx, in)
}

// runSession drives an interactive session and returns the path it ended
// with. Outside a bare hub the session starts on the welcome screen.
func (a *App) runSession(ctx context.Context, st *settings, initial session.State) (string, error) {
	backend := a.openSession(st)
	kind := backend.CheckRepo(ctx, backend.Dir())
	if kind != models.RepoBareHub {
		initial = &session.Welcome{Kind: kind}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var events <-chan models.RepositoryEvent
	title := ""
	if kind == models.RepoBareHub {
		if st.cfg.AutoRefresh {
			ch, err := backend.Watch(ctx)
			if err != nil {
				log.Printf("bootstrap: repository watcher disabled: %v", err)
			} else {
				events = ch
			}
		}
		if root, err := backend.ProjectRoot(ctx); err == nil {
			title = filepath.Base(root)
		}
	}

	bridge := session.NewBridge(ctx, backend)
	defer func() {
		// stop in-flight git calls before waiting for their workers
		cancel()
		bridge.Close()
	}()

	launcher := multiplexer.New(st.cfg.FileManager)
	env := &session.Env{
		Ctx:          ctx,
		Backend:      backend,
		Bridge:       bridge,
		Editors:      st.cfg.Editors,
		HistoryLimit: st.cfg.HistoryLimit,
		Launch:       launcher.Launch,
		OpenFolder:   launcher.OpenFolder,
		Copy:         a.copy,
	}
	loop := session.NewLoop(env, initial, events)
	return a.interactive(ctx, loop, tui.Options{Theme: theme.GetTheme(st.cfg.Theme), Title: title})
}

// finishSelection hands the selected path to the shell: into the
// --output-selection file when set, on stdout otherwise.
func (a *App) finishSelection(cmd *urfavecli.Command, path string, copyPath bool) error {
	if copyPath && path != "" {
		if err := a.copy(path); err != nil {
			return fmt.Errorf("failed to copy path to clipboard: %w", err)
		}
	}
	if output := cmd.String("output-selection"); output != "" {
		return writeOutputSelection(output, path)
	}
	if path != "" {
		_, _ = fmt.Fprintln(a.stdout, path)
	}
	return nil
}

// writeOutputSelection writes path to the output file, creating parent
// directories. An empty path truncates the file.
func writeOutputSelection(output, path string) error {
	expanded, err := config.ExpandPath(output)
	if err != nil {
		return fmt.Errorf("error expanding output-selection: %w", err)
	}
	const defaultDirPerms = 0o750
	if err := os.MkdirAll(filepath.Dir(expanded), defaultDirPerms); err != nil {
		return fmt.Errorf("error creating output-selection dir: %w", err)
	}
	data := ""
	if path != "" {
		data = path + "\n"
	}
	const defaultFilePerms = 0o600
	if err := os.WriteFile(expanded, []byte(data), defaultFilePerms); err != nil {
		return fmt.Errorf("error writing output-selection: %w", err)
	}
	return nil
}
