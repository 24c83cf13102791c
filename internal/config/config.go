// Package config loads worktrees settings from YAML, git config and CLI overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/theme"
	"gopkg.in/yaml.v3"
)

const (
	appDirName = "worktrees"

	// DefaultSyncManifest lists files copied or linked into new worktrees.
	DefaultSyncManifest = ".worktrees.sync"
	// DefaultHistoryLimit is the number of commits shown in the log view.
	DefaultHistoryLimit = 50
)

// AppConfig holds the merged settings.
type AppConfig struct {
	Theme        string
	DebugLog     string
	AutoRefresh  bool // watch the repository and refresh the list on change
	HistoryLimit int
	Editors      []models.EditorOption
	ArtifactDirs []string
	SyncManifest string
	FileManager  string // command used by "open hub folder"; empty picks the platform default
}

// DefaultEditors is the editor menu offered when none is configured.
func DefaultEditors() []models.EditorOption {
	return []models.EditorOption{
		{Name: "VS Code", Command: "code"},
		{Name: "Cursor", Command: "cursor"},
		{Name: "Zed", Command: "zed"},
		{Name: "Android Studio", Command: "studio"},
		{Name: "IntelliJ IDEA", Command: "idea"},
		{Name: "Vim", Command: "vim"},
		{Name: "Neovim", Command: "nvim"},
		{Name: "Antigravity", Command: "antigravity"},
	}
}

// DefaultArtifactDirs are removed by `clean --artifacts` and ignored by the watcher.
func DefaultArtifactDirs() []string {
	return []string{"node_modules", "target", "build", "dist", ".gradle", "bin", "obj"}
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Theme:        theme.DraculaName,
		AutoRefresh:  true,
		HistoryLimit: DefaultHistoryLimit,
		Editors:      DefaultEditors(),
		ArtifactDirs: DefaultArtifactDirs(),
		SyncManifest: DefaultSyncManifest,
	}
}

// normalizeCommandList converts a scalar or list value to trimmed strings.
func normalizeCommandList(value any) []string {
	if value == nil {
		return []string{}
	}

	switch v := value.(type) {
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return []string{}
		}
		return []string{text}
	case []any:
		items := []string{}
		for _, item := range v {
			if item == nil {
				continue
			}
			text := strings.TrimSpace(fmt.Sprintf("%v", item))
			if text != "" {
				items = append(items, text)
			}
		}
		return items
	}
	return []string{}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// parseEditors accepts either a list of {name, command} maps or "Name=command" strings.
func parseEditors(value any) []models.EditorOption {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case string:
		items = []any{v}
	default:
		return nil
	}
	var editors []models.EditorOption
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			name, _ := v["name"].(string)
			command, _ := v["command"].(string)
			command = strings.TrimSpace(command)
			if command == "" {
				continue
			}
			if strings.TrimSpace(name) == "" {
				name = command
			}
			editors = append(editors, models.EditorOption{Name: strings.TrimSpace(name), Command: command})
		case string:
			name, command, found := strings.Cut(v, "=")
			if !found {
				command = name
			}
			command = strings.TrimSpace(command)
			if command == "" {
				continue
			}
			editors = append(editors, models.EditorOption{Name: strings.TrimSpace(name), Command: command})
		}
	}
	return editors
}

func stringValue(data map[string]any, key string) (string, bool) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", false
	}
	text := strings.TrimSpace(fmt.Sprintf("%v", raw))
	return text, text != ""
}

// apply overlays the keys present in data onto cfg.
func (c *AppConfig) apply(data map[string]any) {
	if v, ok := stringValue(data, "theme"); ok {
		if normalized := NormalizeThemeName(v); normalized != "" {
			c.Theme = normalized
		}
	}
	if v, ok := stringValue(data, "debug_log"); ok {
		c.DebugLog = v
	}
	if _, ok := data["auto_refresh"]; ok {
		c.AutoRefresh = coerceBool(data["auto_refresh"], c.AutoRefresh)
	}
	if _, ok := data["history_limit"]; ok {
		if n := coerceInt(data["history_limit"], c.HistoryLimit); n > 0 {
			c.HistoryLimit = n
		}
	}
	if editors := parseEditors(data["editors"]); len(editors) > 0 {
		c.Editors = editors
	}
	if _, ok := data["artifact_dirs"]; ok {
		if dirs := normalizeCommandList(data["artifact_dirs"]); len(dirs) > 0 {
			c.ArtifactDirs = dirs
		}
	}
	if v, ok := stringValue(data, "sync_manifest"); ok {
		c.SyncManifest = v
	}
	if v, ok := stringValue(data, "file_manager"); ok {
		c.FileManager = v
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

// Dir returns the directory holding the config file and stored preferences.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName)
}

// LoadConfig reads the YAML config, then layers global and local git config
// (`wt.*` keys) on top. A custom path must live inside the config directory.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := filepath.Clean(Dir())

	var paths []string
	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	cfg := DefaultConfig()
	for _, path := range paths {
		// #nosec G304 -- path is constrained to the config directory
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
		cfg = parseConfig(yamlData)
		break
	}

	if global, err := loadGitConfig(true, ""); err == nil {
		cfg.apply(global)
	}
	if repo := determineRepoPath(); repo != "" {
		if local, err := loadGitConfig(false, repo); err == nil {
			cfg.apply(local)
		}
	}
	return cfg, nil
}

// ApplyCLIOverrides applies repeatable `wt.key=value` overrides.
func (c *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	c.apply(data)
	return nil
}

// NormalizeThemeName returns the canonical theme name or "" if unknown.
func NormalizeThemeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range theme.AvailableThemes() {
		if known == name {
			return known
		}
	}
	return ""
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
