package bootstrap

import (
	"context"
	"fmt"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/worktrees/internal/intent"
	"github.com/chmouel/worktrees/internal/session"
)

func (a *App) subcommands() []*urfavecli.Command {
	return []*urfavecli.Command{
		a.initCommand(),
		a.addCommand(),
		a.removeCommand(),
		a.listCommand(),
		a.setupCommand(),
		a.runCommand(),
		a.syncCommand(),
		a.pushCommand(),
		a.pullCommand(),
		a.configCommand(),
		a.cleanCommand(),
		a.convertCommand(),
		a.migrateCommand(),
		a.switchCommand(),
		a.checkoutCommand(),
		a.teleportCommand(),
		a.openCommand(),
		a.rebaseCommand(),
	}
}

// requireArgs fails when fewer than n positional arguments were given.
func requireArgs(cmd *urfavecli.Command, n int) error {
	if cmd.Args().Len() < n {
		return fmt.Errorf("missing argument, usage: worktrees %s %s", cmd.Name, cmd.ArgsUsage)
	}
	return nil
}

func (a *App) initCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "init",
		Usage:     "Initialize a new bare hub, cloning a remote when a URL is given",
		ArgsUsage: "[url]",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Directory name for the project (defaults to the repository name)",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Initialize{
				URL:  cmd.Args().First(),
				Name: cmd.String("name"),
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) addCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "add",
		Usage:     "Add a worktree for a feature, tracking a branch",
		ArgsUsage: "<name> [branch]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return a.runIntent(ctx, cmd, intent.AddWorktree{
				Name:   cmd.Args().Get(0),
				Branch: cmd.Args().Get(1),
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) removeCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Remove a worktree and its directory",
		ArgsUsage: "<name>",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Remove even with uncommitted changes",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return a.runIntent(ctx, cmd, intent.RemoveWorktree{
				Name:  cmd.Args().First(),
				Force: cmd.Bool("force"),
			})
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) listCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List worktrees and their status",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.ListWorktrees{})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) setupCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "setup",
		Usage: "Create the canonical main and dev worktrees",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.SetupDefaults{})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) runCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "run",
		Usage:     "Run a command in a temporary worktree, removed afterwards",
		ArgsUsage: "<name> [--] <command> [args...]",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   "Branch to track (defaults to the name)",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			args := cmd.Args().Slice()
			return a.runIntent(ctx, cmd, intent.RunCommand{
				Name:    args[0],
				Branch:  cmd.String("branch"),
				Command: args[1:],
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) syncCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "sync",
		Usage:     "Copy configuration files into one worktree, or all when no name is given",
		ArgsUsage: "[name]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.SyncConfigurations{Name: cmd.Args().First()})
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) pushCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "push",
		Usage:     "Push a worktree's branch (defaults to the current worktree)",
		ArgsUsage: "[name]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Push{Name: cmd.Args().First()})
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) pullCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "pull",
		Usage:     "Pull a worktree's branch (defaults to the current worktree)",
		ArgsUsage: "[name]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Pull{Name: cmd.Args().First()})
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) configCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "config",
		Usage: "Manage the stored AI API key",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:  "key",
				Usage: "Store the Gemini API key",
			},
			&urfavecli.BoolFlag{
				Name:  "show",
				Usage: "Show the stored Gemini API key",
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:      "set-key",
				Usage:     "Store the Gemini API key",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					return a.runIntent(ctx, cmd, intent.Config{Key: cmd.Args().First()})
				},
			},
			{
				Name:  "get-key",
				Usage: "Show the stored Gemini API key",
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					return a.runIntent(ctx, cmd, intent.Config{Show: true})
				},
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Config{
				Key:  cmd.String("key"),
				Show: cmd.Bool("show"),
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) cleanCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "clean",
		Usage: "Prune stale worktree metadata, or remove build artifacts from inactive worktrees",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be removed without removing anything",
			},
			&urfavecli.BoolFlag{
				Name:  "artifacts",
				Usage: "Remove build artifacts (node_modules, target, build...) from inactive worktrees",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.CleanWorktrees{
				DryRun:    cmd.Bool("dry-run"),
				Artifacts: cmd.Bool("artifacts"),
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) convertCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "convert",
		Usage: "Convert a standard checkout into a sibling bare hub",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Name of the hub directory (defaults to <project>-hub)",
			},
			&urfavecli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   "Main branch (defaults to the current branch)",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Convert{
				Name:   cmd.String("name"),
				Branch: cmd.String("branch"),
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) migrateCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "migrate",
		Usage: "Turn a standard checkout into a bare hub in place",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Migrate even with uncommitted changes",
			},
			&urfavecli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would happen without changing anything",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Migrate{
				Force:  cmd.Bool("force"),
				DryRun: cmd.Bool("dry-run"),
			})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) switchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "switch",
		Aliases:   []string{"sw"},
		Usage:     "Print a worktree's path for shell integration; pick one interactively without a name",
		ArgsUsage: "[name]",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "copy",
				Aliases: []string{"c"},
				Usage:   "Copy the path to the clipboard",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			name := cmd.Args().First()
			if name != "" {
				return a.runIntent(ctx, cmd, intent.SwitchWorktree{Name: name, Copy: cmd.Bool("copy")})
			}
			if !a.isTerminal() {
				return fmt.Errorf("missing argument, usage: worktrees switch %s", cmd.ArgsUsage)
			}
			st, err := a.settings(cmd)
			if err != nil {
				return err
			}
			path, err := a.runSession(ctx, st, &session.Listing{SelectionMode: true})
			if err != nil {
				return err
			}
			return a.finishSelection(cmd, path, cmd.Bool("copy"))
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) checkoutCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "checkout",
		Aliases:   []string{"co"},
		Usage:     "Check a different branch out in a worktree",
		ArgsUsage: "<name> <branch>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			return a.runIntent(ctx, cmd, intent.CheckoutWorktree{
				Name:   cmd.Args().Get(0),
				Branch: cmd.Args().Get(1),
			})
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) teleportCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "teleport",
		Usage:     "Move uncommitted changes from the current worktree to another",
		ArgsUsage: "<target>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return a.runIntent(ctx, cmd, intent.Teleport{Target: cmd.Args().First()})
		},
		ShellComplete: a.completeWorktrees,
	}
}

func (a *App) openCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "open",
		Usage: "Print a Warp launch configuration with a pane per worktree",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Open{})
		},
		ShellComplete: a.completeFlags,
	}
}

func (a *App) rebaseCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "rebase",
		Usage:     "Rebase the current worktree onto an upstream branch (defaults to main)",
		ArgsUsage: "[upstream]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.runIntent(ctx, cmd, intent.Rebase{Upstream: cmd.Args().First()})
		},
		ShellComplete: a.completeWorktrees,
	}
}
