// Package completion describes the values the command line can complete.
package completion

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/theme"
)

// FlagInfo contains metadata about a global flag for completion output.
type FlagInfo struct {
	Name        string   // Flag name without dashes
	Short       string   // Single-letter alias, if any
	Description string   // Human-readable description
	HasValue    bool     // true for string flags, false for bool flags
	ValueHint   string   // Hint for value type (e.g., "PATH", "NAME")
	Values      []string // Enumerated values for completion (e.g., theme names)
}

// GetFlags returns metadata for the global flags.
func GetFlags() []FlagInfo {
	return []FlagInfo{
		{
			Name:        "json",
			Description: "Output in JSON format for machine readability",
		},
		{
			Name:        "quiet",
			Short:       "q",
			Description: "Suppress all informational output",
		},
		{
			Name:        "debug-log",
			Description: "Path to debug log file",
			HasValue:    true,
			ValueHint:   "PATH",
		},
		{
			Name:        "config-file",
			Description: "Path to configuration file",
			HasValue:    true,
			ValueHint:   "FILE",
		},
		{
			Name:        "config",
			Short:       "C",
			Description: "Override config values (repeatable): --config=wt.key=value",
			HasValue:    true,
			ValueHint:   "KEY=VALUE",
		},
		{
			Name:        "theme",
			Short:       "t",
			Description: "Override the UI theme",
			HasValue:    true,
			ValueHint:   "NAME",
			Values:      theme.AvailableThemes(),
		},
		{
			Name:        "output-selection",
			Description: "Write the selected worktree path to a file",
			HasValue:    true,
			ValueHint:   "FILE",
		},
	}
}

// Lookup returns the flag named name, long or short.
func Lookup(name string) (FlagInfo, bool) {
	name = strings.TrimLeft(name, "-")
	for _, f := range GetFlags() {
		if f.Name == name || (f.Short != "" && f.Short == name) {
			return f, true
		}
	}
	return FlagInfo{}, false
}

// WorktreeNames returns the names a worktree can be addressed by: its
// directory name and its branch. The bare hub entry is skipped.
func WorktreeNames(worktrees []models.Worktree) []string {
	var names []string
	for _, wt := range worktrees {
		if wt.IsBare {
			continue
		}
		names = append(names, filepath.Base(wt.Path))
		if wt.Branch != "" {
			names = append(names, wt.Branch)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Filter keeps the values starting with prefix, in order.
func Filter(values []string, prefix string) []string {
	if prefix == "" {
		return values
	}
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
