package cli

import (
	"gopkg.in/yaml.v3"

	"github.com/chmouel/worktrees/internal/models"
)

// Warp launch configuration, see https://docs.warp.dev/terminal/sessions/launch-configurations
type warpConfig struct {
	Name    string       `yaml:"name"`
	Windows []warpWindow `yaml:"windows"`
}

type warpWindow struct {
	Tabs []warpTab `yaml:"tabs"`
}

type warpTab struct {
	Title  string     `yaml:"title,omitempty"`
	Layout warpLayout `yaml:"layout"`
}

type warpLayout struct {
	Grid  warpGrid   `yaml:"grid"`
	Panes []warpPane `yaml:"panes"`
}

type warpGrid struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
}

type warpPane struct {
	Cwd      string   `yaml:"cwd"`
	Commands []string `yaml:"commands,omitempty"`
}

// warpLaunchConfig lays worktrees out as one pane each, two per row. It
// returns "" when there is nothing to open.
func warpLaunchConfig(project string, worktrees []models.Worktree) (string, error) {
	if len(worktrees) == 0 {
		return "", nil
	}
	columns := 1
	if len(worktrees) > 1 {
		columns = 2
	}
	rows := (len(worktrees) + columns - 1) / columns

	panes := make([]warpPane, 0, len(worktrees))
	for _, wt := range worktrees {
		panes = append(panes, warpPane{Cwd: wt.Path})
	}
	cfg := warpConfig{
		Name: project,
		Windows: []warpWindow{{
			Tabs: []warpTab{{
				Title:  "Worktrees",
				Layout: warpLayout{Grid: warpGrid{Rows: rows, Columns: columns}, Panes: panes},
			}},
		}},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
