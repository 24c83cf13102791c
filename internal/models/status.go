package models

import (
	"strconv"
	"strings"
)

// StatusFile represents a file entry from git status.
type StatusFile struct {
	Filename string `json:"filename"`
	Code     string `json:"code"` // two-letter porcelain code, e.g. "M ", " M", "??"
}

// Status groups the changes of a worktree the way the staging view shows them.
type Status struct {
	Staged    []StatusFile `json:"staged"`
	Unstaged  []StatusFile `json:"unstaged"`
	Untracked []StatusFile `json:"untracked"`
}

// Len returns the total number of entries.
func (s Status) Len() int {
	return len(s.Staged) + len(s.Unstaged) + len(s.Untracked)
}

// Section names where an index of the flattened list lives.
type Section int

const (
	// SectionStaged holds index changes.
	SectionStaged Section = iota
	// SectionUnstaged holds work-tree changes of tracked files.
	SectionUnstaged
	// SectionUntracked holds new files.
	SectionUntracked
)

// At resolves a flattened index (staged, then unstaged, then untracked).
func (s Status) At(i int) (StatusFile, Section, bool) {
	if i < 0 {
		return StatusFile{}, 0, false
	}
	if i < len(s.Staged) {
		return s.Staged[i], SectionStaged, true
	}
	i -= len(s.Staged)
	if i < len(s.Unstaged) {
		return s.Unstaged[i], SectionUnstaged, true
	}
	i -= len(s.Unstaged)
	if i < len(s.Untracked) {
		return s.Untracked[i], SectionUntracked, true
	}
	return StatusFile{}, 0, false
}

// Summary renders the short "+2 ~1 ?3" form, or "clean".
func (s Status) Summary() string {
	return SummaryOf(len(s.Staged), len(s.Unstaged), len(s.Untracked))
}

// SummaryOf renders change counters in the list's compact form.
func SummaryOf(staged, modified, untracked int) string {
	parts := make([]string, 0, 3)
	if staged > 0 {
		parts = append(parts, "+"+strconv.Itoa(staged))
	}
	if modified > 0 {
		parts = append(parts, "~"+strconv.Itoa(modified))
	}
	if untracked > 0 {
		parts = append(parts, "?"+strconv.Itoa(untracked))
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, " ")
}
