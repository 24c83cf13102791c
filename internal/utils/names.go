// Package utils holds naming helpers shared by the command line and the
// git backend.
package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var adjectives = []string{
	"amber", "brisk", "quiet", "dusty", "eager", "frosty", "gentle", "hollow",
	"lucky", "mellow", "nimble", "rapid", "rusty", "sunny", "tidy", "wild",
}

var trees = []string{
	"alder", "aspen", "birch", "cedar", "cypress", "elm", "fir", "hazel",
	"juniper", "larch", "maple", "oak", "pine", "rowan", "spruce", "willow",
}

// TempWorktreeName returns a name for a throwaway worktree, like
// "run-brisk-cedar".
func TempWorktreeName() string {
	return "run-" + pick(adjectives) + "-" + pick(trees)
}

// DirName maps a branch to the directory its worktree lives in below the
// hub. Path separators become dashes so every worktree is a direct child.
func DirName(branch string) string {
	name := strings.Trim(strings.ReplaceAll(branch, "/", "-"), "-")
	if name == "" || name == "." || name == ".." {
		return "worktree"
	}
	return name
}

func pick(words []string) string {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return words[0]
	}
	return words[idx.Int64()]
}
