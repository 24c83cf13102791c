package session

import "github.com/chmouel/worktrees/internal/models"

// Move advances cursor by delta over n items, wrapping at both ends.
// It is a no-op on an empty collection.
func Move(cursor, n, delta int) int {
	if n <= 0 {
		return cursor
	}
	next := (cursor + delta) % n
	if next < 0 {
		next += n
	}
	return next
}

// MoveCommits moves like Move but skips graph connector rows. It gives up
// after one full cycle and keeps the cursor where it was.
func MoveCommits(commits []models.Commit, cursor, delta int) int {
	n := len(commits)
	if n == 0 {
		return cursor
	}
	next := cursor
	for range n {
		next = Move(next, n, delta)
		if !commits[next].IsConnector() {
			return next
		}
	}
	return cursor
}

// clamp keeps cursor inside [0, n).
func clamp(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// firstCommit returns the first non-connector row, or 0.
func firstCommit(commits []models.Commit) int {
	for i, c := range commits {
		if !c.IsConnector() {
			return i
		}
	}
	return 0
}

// moveKey returns the cursor delta for navigation keys shared by list screens.
func moveKey(k KeyEvent) (int, bool) {
	switch k.Key {
	case KeyDown:
		return 1, true
	case KeyUp:
		return -1, true
	case KeyRune:
		switch k.Folded() {
		case 'j':
			return 1, true
		case 'k':
			return -1, true
		}
	}
	return 0, false
}

// wheelDelta returns the cursor delta of a wheel event.
func wheelDelta(m MouseEvent) (int, bool) {
	switch m.Action {
	case MouseWheelDown:
		return 1, true
	case MouseWheelUp:
		return -1, true
	}
	return 0, false
}
