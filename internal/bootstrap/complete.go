package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/worktrees/internal/completion"
)

// previousWord is the word before the one being completed. The completion
// scripts append --generate-shell-completion after it.
func previousWord(args []string) string {
	if len(args) < 2 {
		return ""
	}
	return args[len(args)-2]
}

// completeFlagValue prints the values of a global flag awaiting its value.
func completeFlagValue(w io.Writer, prev string) bool {
	if !strings.HasPrefix(prev, "-") {
		return false
	}
	f, ok := completion.Lookup(prev)
	if !ok || !f.HasValue {
		return false
	}
	for _, v := range f.Values {
		_, _ = fmt.Fprintln(w, v)
	}
	return true
}

// completeRoot prints the subcommands and the global flags.
func (a *App) completeRoot(_ context.Context, cmd *urfavecli.Command) {
	prev := previousWord(a.args)
	if completeFlagValue(a.stdout, prev) {
		return
	}
	if strings.HasPrefix(prev, "-") {
		a.printFlags(cmd.Flags, prev)
		return
	}
	for _, sub := range cmd.Commands {
		if sub.Hidden {
			continue
		}
		_, _ = fmt.Fprintf(a.stdout, "%s:%s\n", sub.Name, sub.Usage)
	}
	for _, f := range completion.GetFlags() {
		_, _ = fmt.Fprintf(a.stdout, "--%s:%s\n", f.Name, f.Description)
	}
}

// completeFlags prints the flags of a subcommand.
func (a *App) completeFlags(_ context.Context, cmd *urfavecli.Command) {
	prev := previousWord(a.args)
	if completeFlagValue(a.stdout, prev) {
		return
	}
	if strings.HasPrefix(prev, "-") {
		a.printFlags(cmd.Flags, prev)
		return
	}
	a.printFlags(cmd.Flags, "")
}

// completeWorktrees prints the worktree names of the hub, then the flags.
func (a *App) completeWorktrees(ctx context.Context, cmd *urfavecli.Command) {
	prev := previousWord(a.args)
	if completeFlagValue(a.stdout, prev) {
		return
	}
	if strings.HasPrefix(prev, "-") {
		a.printFlags(cmd.Flags, prev)
		return
	}
	if st, err := a.settings(cmd); err == nil {
		if worktrees, err := a.openSession(st).ListWorktrees(ctx); err == nil {
			for _, name := range completion.WorktreeNames(worktrees) {
				_, _ = fmt.Fprintln(a.stdout, name)
			}
		}
	}
	a.printFlags(cmd.Flags, "")
}

// printFlags prints the visible flags starting with prefix in completion
// format.
func (a *App) printFlags(flags []urfavecli.Flag, prefix string) {
	var names []string
	usage := map[string]string{}
	for _, flag := range flags {
		if bf, ok := flag.(*urfavecli.BoolFlag); ok && bf.Hidden {
			continue
		}
		if sf, ok := flag.(*urfavecli.StringFlag); ok && sf.Hidden {
			continue
		}
		name := flag.Names()[0]
		flagPrefix := "--"
		if len(name) == 1 {
			flagPrefix = "-"
		}
		full := flagPrefix + name
		names = append(names, full)
		if df, ok := flag.(urfavecli.DocGenerationFlag); ok {
			usage[full] = df.GetUsage()
		}
	}
	for _, full := range completion.Filter(names, prefix) {
		if u := usage[full]; u != "" {
			_, _ = fmt.Fprintf(a.stdout, "%s:%s\n", full, u)
			continue
		}
		_, _ = fmt.Fprintln(a.stdout, full)
	}
}
