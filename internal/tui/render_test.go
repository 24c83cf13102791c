package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/worktrees/internal/intent"
	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/session"
	"github.com/chmouel/worktrees/internal/theme"
)

func testRenderer() *renderer {
	return newRenderer(theme.Dracula(), "demo")
}

func sampleListing() *session.Listing {
	return &session.Listing{
		Worktrees: []models.Worktree{
			{Path: "/hub/.bare", IsBare: true},
			{Path: "/hub/main", Branch: "main", Commit: "abc1234"},
			{Path: "/hub/dev", Branch: "dev", Commit: "def5678", Modified: 2, Ahead: 1},
		},
		Visible: []int{0, 1, 2},
		Cursor:  2,
		Loaded:  true,
	}
}

func sampleStatus() *session.ViewingStatus {
	return &session.ViewingStatus{
		Path:   "/hub/dev",
		Branch: "dev",
		Status: models.Status{
			Staged:   []models.StatusFile{{Filename: "main.go", Code: "M "}},
			Unstaged: []models.StatusFile{{Filename: "README.md", Code: " M"}},
		},
		ShowDiff: true,
		Diff:     "+added line\n-removed line\n",
	}
}

// column returns the display column where substr starts in line, or -1.
func column(line, substr string) int {
	idx := strings.Index(line, substr)
	if idx < 0 {
		return -1
	}
	return runewidth.StringWidth(line[:idx])
}

func frameLines(t *testing.T, s session.State, l session.Layout, tick uint64) []string {
	t.Helper()
	out := testRenderer().render(s, l, tick)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, l.Height)
	return lines
}

func TestRenderFillsLayout(t *testing.T) {
	t.Parallel()
	states := map[string]session.State{
		"listing":  sampleListing(),
		"status":   sampleStatus(),
		"help":     &session.Help{},
		"error":    &session.Error{Message: "worktree is locked"},
		"loading":  &session.Loading{Label: "Loading branches"},
		"welcome":  &session.Welcome{Kind: models.RepoStandard},
		"stashes":  &session.ViewingStashes{Branch: "dev"},
		"branches": &session.SwitchingBranch{Path: "/hub/dev", Branches: []string{"main", "dev"}},
	}
	for _, size := range [][2]int{{100, 24}, {60, 16}} {
		l := session.NewLayout(size[0], size[1])
		for name, s := range states {
			lines := frameLines(t, s, l, 0)
			for i, line := range lines {
				assert.Equal(t, l.Width, lipgloss.Width(line), "%s %dx%d line %d", name, l.Width, l.Height, i)
			}
		}
	}
}

func TestRenderEmptyLayout(t *testing.T) {
	t.Parallel()
	assert.Empty(t, testRenderer().render(sampleListing(), session.NewLayout(0, 0), 0))
}

func TestRenderTabsMatchHitTesting(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(100, 24)
	lst := sampleListing()
	lst.Dashboard.Tab = session.TabLog
	lines := frameLines(t, lst, l, 0)
	row := lines[l.TabRow()]
	for _, span := range l.Tabs() {
		col := column(row, strings.TrimSpace(span.Label))
		assert.Equal(t, span.X0+1, col, span.Label)
		tab, ok := l.TabAt(col, l.TabRow())
		require.True(t, ok)
		assert.Equal(t, span.Tab, tab)
	}
}

func TestRenderListRowsMatchHitTesting(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(100, 24)
	lst := sampleListing()
	lines := frameLines(t, lst, l, 0)
	rows := l.ListRows()

	assert.Contains(t, lines[rows.Y-1], "Branch")
	assert.Contains(t, lines[rows.Y], "(bare hub)")
	assert.Contains(t, lines[rows.Y+1], "main")
	assert.Contains(t, lines[rows.Y+2], "dev")
	assert.Contains(t, lines[rows.Y+2], "~2")
	assert.Contains(t, lines[rows.Y+2], "↑1")

	idx, ok := session.RowAt(rows, rows.X+3, rows.Y+1, lst.Cursor, len(lst.Visible))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestRenderListingStates(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(100, 24)

	out := testRenderer().render(&session.Listing{}, l, 0)
	assert.Contains(t, out, "Loading worktrees…")

	out = testRenderer().render(&session.Listing{Loaded: true}, l, 0)
	assert.Contains(t, out, "No worktrees yet. Press a to add one.")

	lst := sampleListing()
	lst.Filter, lst.Visible, lst.Cursor = "zzz", nil, 0
	out = testRenderer().render(lst, l, 0)
	assert.Contains(t, out, `No worktrees match "zzz".`)
	assert.Contains(t, out, "0 of 3 worktrees")

	lst.Filtering = true
	out = testRenderer().render(lst, l, 0)
	assert.Contains(t, out, "Filter  zzz█")
}

func TestRenderDashboardTabs(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(100, 24)

	lst := sampleListing()
	out := testRenderer().render(lst, l, 0)
	assert.Contains(t, out, "/hub/dev")
	assert.Contains(t, out, "def5678")

	status := models.Status{Untracked: []models.StatusFile{{Filename: "notes.txt", Code: "??"}}}
	lst.Dashboard = session.Dashboard{Tab: session.TabStatus, Path: "/hub/dev", Status: &status}
	out = testRenderer().render(lst, l, 0)
	assert.Contains(t, out, "Untracked (1)")
	assert.Contains(t, out, "notes.txt")

	lst.Dashboard = session.Dashboard{Tab: session.TabLog, Path: "/hub/dev", History: []models.Commit{
		{Hash: "def5678", Author: "Ada", Date: "2 days ago", Message: "add parser", Graph: "*"},
	}}
	out = testRenderer().render(lst, l, 0)
	assert.Contains(t, out, "def5678 add parser  Ada, 2 days ago")

	lst.Dashboard.Err = "git log failed"
	out = testRenderer().render(lst, l, 0)
	assert.Contains(t, out, "git log failed")
}

func TestRenderStatusDiffSplit(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(100, 24)
	st := sampleStatus()
	lines := frameLines(t, st, l, 0)
	files := l.StatusRows(true)

	assert.Contains(t, lines[files.Y-1], "Status of dev")
	assert.Contains(t, lines[files.Y], "main.go")
	assert.Contains(t, lines[files.Y+1], "README.md")
	assert.Equal(t, l.DiffPane().X, column(lines[files.Y], "+added line"))
	assert.Equal(t, l.DiffPane().X, column(lines[files.Y+1], "-removed line"))

	idx, ok := session.RowAt(files, column(lines[files.Y+1], "README.md"), files.Y+1, st.Cursor, st.Status.Len())
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	st.ShowDiff = false
	out := testRenderer().render(st, l, 0)
	assert.NotContains(t, out, "+added line")
}

func TestRenderModals(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(100, 24)
	r := testRenderer()

	out := r.render(&session.Confirming{Title: "Remove worktree", Message: `Remove worktree "dev" (dev)?`, Action: intent.RemoveWorktree{Name: "dev"}}, l, 0)
	assert.Contains(t, out, "Remove worktree")
	assert.Contains(t, out, `"dev"`)

	out = r.render(&session.Prompting{Kind: session.PromptAPIKey, Input: "secret"}, l, 0)
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "••••••")

	out = r.render(&session.Prompting{Kind: session.PromptNameNewWorktree, BaseRef: "main", Input: "feature"}, l, 0)
	assert.Contains(t, out, "New worktree name  from main")
	assert.Contains(t, out, "> feature█")

	out = r.render(&session.Pulling{Label: "Pulling dev"}, l, 3)
	assert.Contains(t, out, spinner.MiniDot.Frames[3]+" Pulling dev…")
	assert.Contains(t, out, "esc to stop waiting")

	out = r.render(&session.SettingUpDefaults{}, l, 0)
	assert.NotContains(t, out, "esc to stop waiting")

	out = r.render(&session.Help{}, l, 0)
	assert.Contains(t, out, "Key bindings")
	assert.Contains(t, out, "Clean artifacts")

	out = r.render(&session.Completed{Label: "Copied /hub/dev"}, l, 0)
	assert.Contains(t, out, "✔ Copied /hub/dev")

	out = r.render(&session.Exiting{}, l, 0)
	assert.NotContains(t, out, "Key bindings")
}

func TestFooterHidesWorktreeKeysOnHub(t *testing.T) {
	t.Parallel()
	l := session.NewLayout(140, 24)
	lst := sampleListing()

	lines := frameLines(t, lst, l, 0)
	assert.Contains(t, lines[l.Footer.Y], "Status")

	lst.Cursor = 0
	lines = frameLines(t, lst, l, 0)
	assert.NotContains(t, lines[l.Footer.Y], "Status")
	assert.Contains(t, lines[l.Footer.Y], "Add")
}

func TestFormatSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KiB", formatSize(1536))
	assert.Equal(t, "5.0 MiB", formatSize(5*1024*1024))
}
