package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const gitConfigPrefix = "wt."

// gitConfigMock allows tests to fake `git config` output.
var gitConfigMock func(args []string, repoPath string) (string, error)

func runGitConfig(args []string, repoPath string) (string, error) {
	if gitConfigMock != nil {
		return gitConfigMock(args, repoPath)
	}

	cmd := exec.Command("git", args...)
	if repoPath != "" {
		cmd.Dir = repoPath
	}
	output, err := cmd.Output()
	if err != nil {
		// exit 1 means no matching key
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// parseGitConfigOutput turns "wt.key value" lines into a multi-value map.
func parseGitConfigOutput(output string) map[string][]string {
	values := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		key, value, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		key = strings.TrimPrefix(key, gitConfigPrefix)
		values[key] = append(values[key], value)
	}
	return values
}

// toConfigMap shapes multi-values the way YAML would: lists become []any.
func toConfigMap(values map[string][]string) map[string]any {
	result := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			result[key] = vals[0]
		default:
			items := make([]any, len(vals))
			for i, v := range vals {
				items[i] = v
			}
			result[key] = items
		}
	}
	return result
}

func loadGitConfig(globalOnly bool, repoPath string) (map[string]any, error) {
	args := []string{"config", "--get-regexp", `^wt\.`}
	if globalOnly {
		args = append(args, "--global")
	} else {
		args = append(args, "--local")
	}

	output, err := runGitConfig(args, repoPath)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return map[string]any{}, nil
	}
	return toConfigMap(parseGitConfigOutput(output)), nil
}

func determineRepoPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = wd
	if cmd.Run() != nil {
		return ""
	}
	return wd
}

// parseCLIConfigOverrides parses `wt.key=value` entries; repeated keys become lists.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	values := make(map[string][]string)
	for _, override := range overrides {
		fullKey, value, found := strings.Cut(override, "=")
		if !found {
			return nil, fmt.Errorf("invalid config override: %q, expected format: wt.key=value", override)
		}
		if !strings.HasPrefix(fullKey, gitConfigPrefix) {
			return nil, fmt.Errorf("config override key must start with %q: %q", gitConfigPrefix, fullKey)
		}
		key := strings.TrimPrefix(fullKey, gitConfigPrefix)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}
		values[key] = append(values[key], value)
	}
	return toConfigMap(values), nil
}
