package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/chmouel/worktrees/internal/log"
)

// ResultBuffer is the capacity of the shared result channel.
const ResultBuffer = 64

// Bridge runs slow backend calls on worker goroutines. Each dispatched task
// sends exactly one Result on a channel drained by the loop. Tasks cannot be
// cancelled one by one; the loop discards results that no longer apply.
// Every typed helper returns the sequence number carried by its result.
type Bridge struct {
	ctx     context.Context
	backend Backend
	results chan Result
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	seq     atomic.Uint64
}

// NewBridge returns a bridge calling backend with ctx.
func NewBridge(ctx context.Context, backend Backend) *Bridge {
	return &Bridge{
		ctx:     ctx,
		backend: backend,
		results: make(chan Result, ResultBuffer),
		done:    make(chan struct{}),
	}
}

// Results is the channel the loop drains.
func (b *Bridge) Results() <-chan Result {
	return b.results
}

// Dispatch runs op on a new goroutine. fail builds the result reported when
// op panics.
func (b *Bridge) Dispatch(name string, op func(ctx context.Context) Result, fail func(error) Result) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		res := b.run(name, op, fail)
		select {
		case b.results <- res:
		case <-b.done:
			log.Printf("bridge: dropping %s result after close", name)
		}
	}()
}

func (b *Bridge) run(name string, op func(ctx context.Context) Result, fail func(error) Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bridge: %s panicked: %v", name, r)
			res = fail(fmt.Errorf("%s failed unexpectedly: %v", name, r))
		}
	}()
	log.Printf("bridge: start %s", name)
	res = op(b.ctx)
	if err := res.Failure(); err != nil {
		log.Printf("bridge: %s failed: %v", name, err)
	}
	return res
}

// Wait blocks until every dispatched task has delivered its result or was
// dropped by Close.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) next() uint64 {
	return b.seq.Add(1)
}

// Close stops delivering results and waits for workers still running. Cancel
// the bridge context first or Close waits for slow network calls.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()
}

// Fetch runs `git fetch` for the worktree at path.
func (b *Bridge) Fetch(path, branch string) uint64 {
	seq := b.next()
	b.Dispatch("fetch", func(ctx context.Context) Result {
		return FetchCompleted{Seq: seq, Branch: branch, Err: b.backend.Fetch(ctx, path)}
	}, func(err error) Result { return FetchCompleted{Seq: seq, Branch: branch, Err: err} })
	return seq
}

// Pull runs `git pull` for the worktree at path.
func (b *Bridge) Pull(path, branch string) uint64 {
	seq := b.next()
	b.Dispatch("pull", func(ctx context.Context) Result {
		return PullCompleted{Seq: seq, Branch: branch, Err: b.backend.Pull(ctx, path)}
	}, func(err error) Result { return PullCompleted{Seq: seq, Branch: branch, Err: err} })
	return seq
}

// Push runs `git push` for the worktree at path.
func (b *Bridge) Push(path, branch string) uint64 {
	seq := b.next()
	b.Dispatch("push", func(ctx context.Context) Result {
		return PushCompleted{Seq: seq, Branch: branch, Err: b.backend.Push(ctx, path)}
	}, func(err error) Result { return PushCompleted{Seq: seq, Branch: branch, Err: err} })
	return seq
}

// Sync syncs configuration files into the worktree at path.
func (b *Bridge) Sync(path, branch string) uint64 {
	seq := b.next()
	b.Dispatch("sync", func(ctx context.Context) Result {
		return SyncCompleted{Seq: seq, Branch: branch, Err: b.backend.SyncConfigs(ctx, path)}
	}, func(err error) Result { return SyncCompleted{Seq: seq, Branch: branch, Err: err} })
	return seq
}

// LoadStatus reads the file status of the worktree at path.
func (b *Bridge) LoadStatus(path string) uint64 {
	seq := b.next()
	b.Dispatch("status", func(ctx context.Context) Result {
		st, err := b.backend.Status(ctx, path)
		return StatusFetched{Seq: seq, Path: path, Status: st, Err: err}
	}, func(err error) Result { return StatusFetched{Seq: seq, Path: path, Err: err} })
	return seq
}

// LoadHistory reads up to limit commits of the worktree at path.
func (b *Bridge) LoadHistory(path string, limit int) uint64 {
	seq := b.next()
	b.Dispatch("history", func(ctx context.Context) Result {
		commits, err := b.backend.History(ctx, path, limit)
		return HistoryFetched{Seq: seq, Path: path, Commits: commits, Err: err}
	}, func(err error) Result { return HistoryFetched{Seq: seq, Path: path, Err: err} })
	return seq
}

// LoadBranches lists local and remote branches.
func (b *Bridge) LoadBranches(purpose BranchPurpose, path string) uint64 {
	seq := b.next()
	b.Dispatch("branches", func(ctx context.Context) Result {
		branches, err := b.backend.Branches(ctx)
		return BranchesFetched{Seq: seq, Purpose: purpose, Path: path, Branches: branches, Err: err}
	}, func(err error) Result { return BranchesFetched{Seq: seq, Purpose: purpose, Path: path, Err: err} })
	return seq
}

// Clean prunes stale worktrees, or removes build artifacts.
func (b *Bridge) Clean(dryRun, artifacts bool) uint64 {
	seq := b.next()
	b.Dispatch("clean", func(ctx context.Context) Result {
		removed, err := b.backend.Clean(ctx, dryRun, artifacts)
		return CleanCompleted{Seq: seq, Removed: removed, Err: err}
	}, func(err error) Result { return CleanCompleted{Seq: seq, Err: err} })
	return seq
}

// GenerateCommitMessage drafts a commit message for diff.
func (b *Bridge) GenerateCommitMessage(path, branch, diff string) uint64 {
	seq := b.next()
	b.Dispatch("commit-message", func(ctx context.Context) Result {
		msg, err := b.backend.GenerateCommitMessage(ctx, diff, branch)
		return CommitMessageGenerated{Seq: seq, Path: path, Message: strings.TrimSpace(msg), Err: err}
	}, func(err error) Result { return CommitMessageGenerated{Seq: seq, Path: path, Err: err} })
	return seq
}

// Rebase rebases the worktree at path onto upstream. On failure it asks the
// assistant to explain the conflict, best effort.
func (b *Bridge) Rebase(path, upstream string) uint64 {
	seq := b.next()
	b.Dispatch("rebase", func(ctx context.Context) Result {
		err := b.backend.Rebase(ctx, path, upstream)
		if err == nil {
			return RebaseCompleted{Seq: seq, Path: path, Upstream: upstream}
		}
		res := RebaseCompleted{Seq: seq, Path: path, Upstream: upstream, Err: err}
		diff, derr := b.backend.ConflictDiff(ctx, path)
		if derr != nil || strings.TrimSpace(diff) == "" {
			return res
		}
		explanation, xerr := b.backend.ExplainConflict(ctx, diff)
		if xerr != nil {
			log.Printf("bridge: conflict explanation unavailable: %v", xerr)
			return res
		}
		res.Explanation = strings.TrimSpace(explanation)
		return res
	}, func(err error) Result { return RebaseCompleted{Seq: seq, Path: path, Upstream: upstream, Err: err} })
	return seq
}

// SetupDefaults creates the main and dev worktrees.
func (b *Bridge) SetupDefaults() {
	b.Dispatch("setup", func(ctx context.Context) Result {
		return SetupCompleted{Err: b.backend.SetupDefaults(ctx)}
	}, func(err error) Result { return SetupCompleted{Err: err} })
}

// ErrNoChanges is reported when there is nothing to commit.
var ErrNoChanges = errors.New("No changes detected.") //nolint:staticcheck // shown verbatim to the user
