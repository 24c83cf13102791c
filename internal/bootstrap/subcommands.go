package bootstrap

import (
	"fmt"
	"io"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/worktrees/internal/ai"
	"github.com/chmouel/worktrees/internal/config"
	"github.com/chmouel/worktrees/internal/git"
	log "github.com/chmouel/worktrees/internal/log"
)

// settings is what the global flags resolve to for one invocation.
type settings struct {
	cfg    *config.AppConfig
	json   bool
	quiet  bool
	apiKey string
}

// loadSettings loads the configuration and applies the global flags on top.
// A broken config file is reported and replaced by the defaults.
func loadSettings(cmd *urfavecli.Command, stderr io.Writer, getenv func(string) string) (*settings, error) {
	cfg, err := config.LoadConfig(cmd.String("config-file"))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if err := applyThemeConfig(cfg, cmd.String("theme")); err != nil {
		return nil, err
	}
	if overrides := cmd.StringSlice("config"); len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	setupDebugLog(cmd.String("debug-log"), cfg.DebugLog, stderr)

	return &settings{
		cfg:    cfg,
		json:   cmd.Bool("json"),
		quiet:  cmd.Bool("quiet"),
		apiKey: getenv("GEMINI_API_KEY"),
	}, nil
}

// setupDebugLog points the debug log at the flag path, then the configured
// path; with neither the buffered lines are discarded.
func setupDebugLog(flagPath, configPath string, stderr io.Writer) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		_ = log.SetFile("")
		return
	}
	if expanded, err := config.ExpandPath(path); err == nil {
		path = expanded
	}
	if err := log.SetFile(path); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", path, err)
	}
}

// applyThemeConfig applies the theme named on the command line.
func applyThemeConfig(cfg *config.AppConfig, themeName string) error {
	if themeName == "" {
		return nil
	}
	normalized := config.NormalizeThemeName(themeName)
	if normalized == "" {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	cfg.Theme = normalized
	return nil
}

// newGitService creates the git backend rooted at dir, or the working
// directory when dir is empty.
func newGitService(st *settings, dir string) *git.Service {
	return git.NewService(git.Options{
		Dir:          dir,
		SyncManifest: st.cfg.SyncManifest,
		ArtifactDirs: st.cfg.ArtifactDirs,
		Store:        config.NewStore(config.Dir()),
		AI:           ai.NewClient(),
		APIKey:       st.apiKey,
	})
}
