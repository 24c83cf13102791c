package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmouel/worktrees/internal/models"
)

func TestMoveWraps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		cursor, n, delta int
		want             int
	}{
		{name: "down", cursor: 0, n: 3, delta: 1, want: 1},
		{name: "down wraps to top", cursor: 2, n: 3, delta: 1, want: 0},
		{name: "up wraps to bottom", cursor: 0, n: 3, delta: -1, want: 2},
		{name: "single item", cursor: 0, n: 1, delta: 1, want: 0},
		{name: "empty keeps cursor", cursor: 0, n: 0, delta: 1, want: 0},
		{name: "empty keeps cursor up", cursor: 0, n: 0, delta: -1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Move(tt.cursor, tt.n, tt.delta))
		})
	}
}

func TestMoveRoundTrip(t *testing.T) {
	t.Parallel()
	for n := 1; n <= 5; n++ {
		for c := range n {
			assert.Equal(t, c, Move(Move(c, n, 1), n, -1), "n=%d c=%d", n, c)
			cur := c
			for range n {
				cur = Move(cur, n, 1)
			}
			assert.Equal(t, c, cur, "a full cycle returns to the start")
		}
	}
}

func TestMoveCommitsSkipsConnectors(t *testing.T) {
	t.Parallel()
	commits := []models.Commit{
		{Hash: "a1", Graph: "* "},
		{Graph: "|\\"},
		{Graph: "| |"},
		{Hash: "b2", Graph: "| * "},
	}
	assert.Equal(t, 3, MoveCommits(commits, 0, 1))
	assert.Equal(t, 0, MoveCommits(commits, 3, 1), "wraps past the end")
	assert.Equal(t, 0, MoveCommits(commits, 3, -1))
	assert.Equal(t, 0, firstCommit(commits))
	assert.Equal(t, 2, firstCommit([]models.Commit{{}, {}, {Hash: "c3"}}))
}

func TestMoveCommitsOnlyConnectors(t *testing.T) {
	t.Parallel()
	commits := []models.Commit{{Graph: "|"}, {Graph: "|\\"}}
	assert.Equal(t, 1, MoveCommits(commits, 1, 1))
	assert.Equal(t, 0, MoveCommits(nil, 0, 1))
}

func TestClamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, clamp(5, 0))
	assert.Equal(t, 2, clamp(5, 3))
	assert.Equal(t, 0, clamp(-1, 3))
	assert.Equal(t, 1, clamp(1, 3))
}
