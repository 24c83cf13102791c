package git

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
)

const gradleCachingBlock = "\n# Optimized for Worktrees\norg.gradle.caching=true\n"

// SyncConfigs copies or links the files listed in the sync manifest into the
// worktree at path. Sources are relative to the service directory.
func (s *Service) SyncConfigs(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("worktree %s: %w", path, err)
	}
	if err := s.syncManifest(path); err != nil {
		return err
	}
	if detectFlavor(s.dir) == models.FlavorKMPAndroid {
		return s.syncGradleFiles(path)
	}
	return nil
}

// handleContextFiles runs after a worktree is created; failures only log.
func (s *Service) handleContextFiles(ctx context.Context, path string) {
	if err := s.SyncConfigs(ctx, path); err != nil {
		s.debugf("sync into %s: %v", path, err)
	}
}

// manifestEntry is one "action source" line of the sync manifest.
type manifestEntry struct {
	Action string
	Source string
}

// parseManifest reads manifest lines, skipping blanks, comments and lines
// without a source.
func parseManifest(r io.Reader) ([]manifestEntry, error) {
	var entries []manifestEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, manifestEntry{Action: fields[0], Source: fields[1]})
	}
	return entries, scanner.Err()
}

func (s *Service) syncManifest(path string) error {
	manifest := s.manifest
	if !filepath.IsAbs(manifest) {
		manifest = filepath.Join(s.dir, manifest)
	}
	f, err := os.Open(manifest)
	if errors.Is(err, os.ErrNotExist) {
		s.debugf("sync: no manifest at %s", manifest)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sync manifest: %w", err)
	}
	defer f.Close()

	entries, err := parseManifest(f)
	if err != nil {
		return fmt.Errorf("read sync manifest: %w", err)
	}

	for _, e := range entries {
		source := filepath.Join(s.dir, e.Source)
		dest := filepath.Join(path, e.Source)
		info, err := os.Stat(source)
		if err != nil {
			s.debugf("sync: source %s does not exist, skipping", source)
			continue
		}
		switch e.Action {
		case "symlink":
			if err := os.RemoveAll(dest); err != nil {
				return fmt.Errorf("replace %s: %w", dest, err)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("symlink %s: %w", e.Source, err)
			}
			if err := os.Symlink(source, dest); err != nil {
				return fmt.Errorf("symlink %s: %w", e.Source, err)
			}
		case "copy":
			if info.IsDir() {
				s.debugf("sync: %s is a directory, copy handles files only", source)
				continue
			}
			if err := copyFile(source, dest, info.Mode().Perm()); err != nil {
				return fmt.Errorf("copy %s: %w", e.Source, err)
			}
		default:
			s.debugf("sync: unknown action %q for %s", e.Action, e.Source)
		}
	}
	return nil
}

// syncGradleFiles brings local.properties and gradle.properties along and
// turns the Gradle build cache on.
func (s *Service) syncGradleFiles(path string) error {
	for _, name := range []string{"local.properties", "gradle.properties"} {
		source := filepath.Join(s.dir, name)
		info, err := os.Stat(source)
		if err != nil || info.IsDir() {
			continue
		}
		if err := copyFile(source, filepath.Join(path, name), info.Mode().Perm()); err != nil {
			return fmt.Errorf("copy %s: %w", name, err)
		}
	}
	return ensureGradleCaching(filepath.Join(path, "gradle.properties"))
}

func ensureGradleCaching(path string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if strings.Contains(string(data), "org.gradle.caching") {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(gradleCachingBlock); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func copyFile(source, dest string, perm os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
