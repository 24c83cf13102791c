package session

import (
	"strings"

	"github.com/chmouel/worktrees/internal/models"
	"github.com/sahilm/fuzzy"
)

// worktreeSource adapts a worktree slice to fuzzy.Source, matching branch and path.
type worktreeSource []models.Worktree

func (s worktreeSource) String(i int) string {
	return strings.ToLower(s[i].Branch + " " + s[i].Path)
}

func (s worktreeSource) Len() int { return len(s) }

// FilterWorktrees returns the indices of worktrees matching query, best match
// first. An empty query keeps every worktree in its original order.
func FilterWorktrees(worktrees []models.Worktree, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]int, len(worktrees))
		for i := range all {
			all[i] = i
		}
		return all
	}
	matches := fuzzy.FindFrom(strings.ToLower(query), worktreeSource(worktrees))
	visible := make([]int, 0, len(matches))
	for _, m := range matches {
		visible = append(visible, m.Index)
	}
	return visible
}

// applyFilter recomputes Visible and keeps the cursor in range.
func (l *Listing) applyFilter() {
	l.Visible = FilterWorktrees(l.Worktrees, l.Filter)
	l.Cursor = clamp(l.Cursor, len(l.Visible))
}
