// Package main is the entry point for the worktrees application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chmouel/worktrees/internal/bootstrap"
	"github.com/chmouel/worktrees/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.New(os.Stdout, os.Stderr).Run(ctx, os.Args)
	stop()
	os.Exit(code)
}
