package git

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chmouel/worktrees/internal/models"
)

// CommonDir returns the absolute git common directory (`.bare` in a hub).
func (s *Service) CommonDir(ctx context.Context) (string, error) {
	s.mu.Lock()
	cached := s.commonDir
	s.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	out, err := s.RunGit(ctx, "", "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("git did not report a common directory for %s", s.dir)
	}
	s.mu.Lock()
	s.commonDir = out
	s.mu.Unlock()
	return out, nil
}

// ProjectRoot returns the hub directory: the parent of the common directory.
func (s *Service) ProjectRoot(ctx context.Context) (string, error) {
	common, err := s.CommonDir(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Dir(common), nil
}

// MainBranch returns the default branch of origin, or "main".
func (s *Service) MainBranch(ctx context.Context) string {
	s.mainOnce.Do(func() {
		s.mainBranch = "main"
		out, err := s.RunGit(ctx, "", "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
		if err != nil || out == "" {
			return
		}
		if _, branch, ok := strings.Cut(out, "/"); ok && branch != "" {
			s.mainBranch = branch
		}
	})
	return s.mainBranch
}

// ListWorktrees lists every worktree of the hub with its change counters and size.
func (s *Service) ListWorktrees(ctx context.Context) ([]models.Worktree, error) {
	raw, err := s.RunGit(ctx, "", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}
	wts := parseWorktrees(raw)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Limit())
	for i := range wts {
		wt := &wts[i]
		g.Go(func() error {
			wt.SizeBytes = dirSize(wt.Path)
			if wt.IsBare {
				return nil
			}
			statusRaw, err := s.RunGit(gctx, wt.Path, "status", "--porcelain=v2", "--branch")
			if err != nil {
				// a worktree whose directory vanished still lists
				s.debugf("status of %s: %v", wt.Path, err)
				return nil
			}
			applyStatusV2(wt, statusRaw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return wts, nil
}

// parseWorktrees reads `git worktree list --porcelain` output.
func parseWorktrees(raw string) []models.Worktree {
	var wts []models.Worktree
	for block := range strings.SplitSeq(strings.TrimSpace(raw), "\n\n") {
		var wt models.Worktree
		for line := range strings.SplitSeq(block, "\n") {
			key, value, _ := strings.Cut(strings.TrimSpace(line), " ")
			switch key {
			case "worktree":
				wt.Path = value
			case "HEAD":
				wt.Commit = value[:min(7, len(value))]
			case "branch":
				wt.Branch = strings.TrimPrefix(value, "refs/heads/")
			case "bare":
				wt.IsBare = true
			case "detached":
				wt.IsDetached = true
			}
		}
		if wt.Path != "" {
			wts = append(wts, wt)
		}
	}
	return wts
}

// applyStatusV2 fills counters from `git status --porcelain=v2 --branch`.
func applyStatusV2(wt *models.Worktree, raw string) {
	for line := range strings.SplitSeq(raw, "\n") {
		switch {
		case strings.HasPrefix(line, "# branch.ab "):
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				wt.Ahead, _ = strconv.Atoi(strings.TrimPrefix(parts[2], "+"))
				wt.Behind, _ = strconv.Atoi(strings.TrimPrefix(parts[3], "-"))
			}
		case strings.HasPrefix(line, "? "):
			wt.Untracked++
		case strings.HasPrefix(line, "u "):
			wt.Modified++
		case strings.HasPrefix(line, "1 "), strings.HasPrefix(line, "2 "):
			parts := strings.Fields(line)
			if len(parts) < 2 || len(parts[1]) < 2 {
				continue
			}
			xy := parts[1]
			if xy[0] != '.' {
				wt.Staged++
			}
			if xy[1] != '.' {
				wt.Modified++
			}
		}
	}
}

// worktreePath resolves a worktree given by directory name or path.
func (s *Service) worktreePath(ctx context.Context, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	root, err := s.ProjectRoot(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// AddWorktree checks out an existing branch into a new worktree directory.
func (s *Service) AddWorktree(ctx context.Context, name, branch string) error {
	abs, err := s.worktreePath(ctx, name)
	if err != nil {
		return err
	}
	if branch == "" {
		branch = name
	}
	if _, err := s.RunGit(ctx, "", "worktree", "add", "--", abs, branch); err != nil {
		return fmt.Errorf("add worktree %s: %w", name, err)
	}
	s.handleContextFiles(ctx, abs)
	return nil
}

// AddNewWorktree creates branch from base in a new worktree directory. A hub
// without commits gets an orphan branch instead.
func (s *Service) AddNewWorktree(ctx context.Context, name, branch, base string) error {
	abs, err := s.worktreePath(ctx, name)
	if err != nil {
		return err
	}
	if base == "" {
		base = "HEAD"
	}
	_, err = s.RunGit(ctx, "", "worktree", "add", "-b", branch, "--", abs, base)
	if err != nil && base == "HEAD" {
		s.debugf("no commit to branch from, creating orphan %s", branch)
		_, err = s.RunGit(ctx, "", "worktree", "add", "--orphan", "-b", branch, abs)
	}
	if err != nil {
		return fmt.Errorf("create worktree %s from %s: %w", name, base, err)
	}
	s.handleContextFiles(ctx, abs)
	return nil
}

// RemoveWorktree removes a worktree given by directory name or path.
func (s *Service) RemoveWorktree(ctx context.Context, name string, force bool) error {
	abs, err := s.worktreePath(ctx, name)
	if err != nil {
		return err
	}
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, "--", abs)
	if _, err := s.RunGit(ctx, "", args...); err != nil {
		return fmt.Errorf("remove worktree %s: %w", name, err)
	}
	return nil
}

// Setup outcomes of SetupDefaultWorktrees.
const (
	SetupReady   = "ready"
	SetupSkipped = "skipped"
)

// SetupResult is the outcome for one canonical worktree.
type SetupResult struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	CreatedFrom string `json:"created_from,omitempty"`
}

// SetupDefaultWorktrees makes sure `main` and `dev` worktrees exist. `dev`
// is branched from `main` when the branch does not exist yet.
func (s *Service) SetupDefaultWorktrees(ctx context.Context) ([]SetupResult, error) {
	if _, err := s.ProjectRoot(ctx); err != nil {
		return nil, err
	}

	primary := SetupResult{Name: "main", Status: SetupReady}
	if err := s.AddWorktree(ctx, "main", "main"); err != nil {
		s.debugf("setup main: %v", err)
		primary.Status = SetupSkipped
	}

	dev := SetupResult{Name: "dev", Status: SetupReady}
	if err := s.AddWorktree(ctx, "dev", "dev"); err != nil {
		s.debugf("setup dev from existing branch: %v", err)
		if err := s.AddNewWorktree(ctx, "dev", "dev", "main"); err != nil {
			s.debugf("setup dev from main: %v", err)
			dev.Status = SetupSkipped
		} else {
			dev.CreatedFrom = "main"
		}
	}
	return []SetupResult{primary, dev}, nil
}

// SetupDefaults is SetupDefaultWorktrees without the per-worktree report.
func (s *Service) SetupDefaults(ctx context.Context) error {
	_, err := s.SetupDefaultWorktrees(ctx)
	return err
}

var flavorIndicators = []string{
	"build.gradle",
	"build.gradle.kts",
	"settings.gradle",
	"settings.gradle.kts",
	"local.properties",
}

// detectFlavor looks for Gradle/Android marker files directly in dir.
func detectFlavor(dir string) models.Flavor {
	for _, name := range flavorIndicators {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return models.FlavorKMPAndroid
		}
	}
	return models.FlavorStandard
}

// DetectFlavor reports the project flavor of the service directory.
func (s *Service) DetectFlavor(_ context.Context) models.Flavor {
	return detectFlavor(s.dir)
}

// dirSize sums the sizes of the regular files below path.
func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
