// Package git wraps the git commands behind the worktrees hub.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/chmouel/worktrees/internal/ai"
	"github.com/chmouel/worktrees/internal/config"
	log "github.com/chmouel/worktrees/internal/log"
)

// LookupPath is used to find executables in PATH. Tests replace it to avoid
// depending on system binaries.
var LookupPath = exec.LookPath

// Error is a failed git invocation.
type Error struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *Error) Error() string {
	command := "git " + strings.Join(e.Args, " ")
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit %d", command, e.Code)
	}
	return fmt.Sprintf("%s: %s", command, e.Stderr)
}

// Options configure a Service.
type Options struct {
	// Dir is where commands run; empty means the process working directory.
	Dir          string
	SyncManifest string
	ArtifactDirs []string
	Store        *config.Store
	AI           *ai.Client
	// APIKey comes from the environment and wins over the stored key.
	APIKey string
}

// Service runs git for one hub. It is safe for concurrent use.
type Service struct {
	dir          string
	manifest     string
	artifactDirs []string
	store        *config.Store
	ai           *ai.Client
	envKey       string
	semaphore    chan struct{}

	mu        sync.Mutex
	commonDir string

	mainOnce   sync.Once
	mainBranch string
}

// NewService constructs a Service and sets up concurrency limits.
func NewService(opts Options) *Service {
	limit := runtime.NumCPU() * 2
	if limit < 4 {
		limit = 4
	}
	if limit > 32 {
		limit = 32
	}

	// the channel starts full; acquire takes a token, release returns it
	semaphore := make(chan struct{}, limit)
	for range limit {
		semaphore <- struct{}{}
	}

	dir := opts.Dir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	manifest := opts.SyncManifest
	if manifest == "" {
		manifest = config.DefaultSyncManifest
	}
	artifacts := opts.ArtifactDirs
	if len(artifacts) == 0 {
		artifacts = config.DefaultArtifactDirs()
	}
	client := opts.AI
	if client == nil {
		client = ai.NewClient()
	}
	store := opts.Store
	if store == nil {
		store = config.NewStore("")
	}

	return &Service{
		dir:          dir,
		manifest:     manifest,
		artifactDirs: artifacts,
		store:        store,
		ai:           client,
		envKey:       strings.TrimSpace(opts.APIKey),
		semaphore:    semaphore,
	}
}

// Dir returns the directory commands run from.
func (s *Service) Dir() string {
	return s.dir
}

// Limit returns the maximum number of concurrent git commands.
func (s *Service) Limit() int {
	return cap(s.semaphore)
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

func (s *Service) acquireSemaphore() {
	<-s.semaphore
}

func (s *Service) releaseSemaphore() {
	s.semaphore <- struct{}{}
}

// RunGit runs git with args in cwd (the service directory when empty) and
// returns its stdout with surrounding whitespace removed.
func (s *Service) RunGit(ctx context.Context, cwd string, args ...string) (string, error) {
	out, err := s.runGitRaw(ctx, cwd, args...)
	return strings.TrimSpace(out), err
}

// runGitRaw is RunGit without trimming, for output where leading spaces matter.
func (s *Service) runGitRaw(ctx context.Context, cwd string, args ...string) (string, error) {
	if cwd == "" {
		cwd = s.dir
	}
	command := strings.Join(args, " ")
	s.debugf("run: git %s (cwd=%s)", command, cwd)

	if _, err := LookupPath("git"); err != nil {
		s.debugf("error: command not found: git")
		return "", fmt.Errorf("git is not installed or not in PATH: %w", err)
	}

	// #nosec G204 -- arguments come from internal logic and are not shell interpolated
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = cwd
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")

	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			gerr := &Error{Args: args, Code: exitError.ExitCode(), Stderr: strings.TrimSpace(string(exitError.Stderr))}
			s.debugf("error: %v", gerr)
			return string(output), gerr
		}
		s.debugf("error: git %s: %v", command, err)
		return "", fmt.Errorf("git %s: %w", command, err)
	}
	s.debugf("ok: git %s", command)
	return string(output), nil
}
