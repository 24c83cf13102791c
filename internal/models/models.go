// Package models defines the data objects shared across worktrees packages.
package models

import "path/filepath"

// Worktree summarizes one entry of `git worktree list`.
type Worktree struct {
	Path       string `json:"path"`
	Commit     string `json:"commit"` // short hash
	Branch     string `json:"branch"`
	IsBare     bool   `json:"is_bare"`
	IsDetached bool   `json:"is_detached"`
	Staged     int    `json:"staged"`
	Modified   int    `json:"modified"`
	Untracked  int    `json:"untracked"`
	Ahead      int    `json:"ahead"`
	Behind     int    `json:"behind"`
	SizeBytes  int64  `json:"size_bytes"`
}

// Dirty reports whether the worktree has any local changes.
func (w Worktree) Dirty() bool {
	return w.Staged+w.Modified+w.Untracked > 0
}

// Name returns the worktree directory name, or the branch for the bare hub.
func (w Worktree) Name() string {
	if w.IsBare {
		return "(bare hub)"
	}
	return filepath.Base(w.Path)
}

// Commit is a single entry from `git log`.
type Commit struct {
	Hash    string `json:"hash"` // empty for graph connector rows
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
	Graph   string `json:"graph"`
}

// IsConnector reports whether the row only carries graph glyphs.
func (c Commit) IsConnector() bool {
	return c.Hash == ""
}

// Stash is one `git stash list` entry.
type Stash struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
	Branch  string `json:"branch"`
}

// Flavor identifies project types that need extra files synced into new worktrees.
type Flavor int

const (
	// FlavorStandard needs no special handling.
	FlavorStandard Flavor = iota
	// FlavorKMPAndroid is a Gradle/Android/KMP project.
	FlavorKMPAndroid
)

func (f Flavor) String() string {
	if f == FlavorKMPAndroid {
		return "kmp-android"
	}
	return "standard"
}

// RepoKind describes what kind of repository a directory belongs to.
type RepoKind int

const (
	// RepoNone means no git repository was found.
	RepoNone RepoKind = iota
	// RepoStandard is a regular checkout with a .git directory.
	RepoStandard
	// RepoBareHub is a bare hub or a worktree belonging to one.
	RepoBareHub
)

// EditorOption is an editor the user can open a worktree with.
type EditorOption struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}
