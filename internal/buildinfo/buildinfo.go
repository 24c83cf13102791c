// Package buildinfo holds the build metadata of the worktrees binary. The
// linker injects it into package main, which forwards it with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Set stores the linker-injected metadata.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

func Version() string { return version }
func Commit() string  { return commit }
func Date() string    { return date }
func BuiltBy() string { return builtBy }

// Enrich fills the commit from the VCS stamp and the builder from the Go
// version when the linker left them unset.
func Enrich() {
	if commit != "none" && builtBy != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if commit == "none" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
		}
	}
	if builtBy == "unknown" {
		builtBy = info.GoVersion
	}
}

// Describe is the version line shown by --version.
func Describe() string {
	short := commit
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("%s (commit %s, built %s by %s)", version, short, date, builtBy)
}
