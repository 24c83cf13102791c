// Package multiplexer starts editors and file managers for a worktree,
// routing terminal editors through tmux or zellij when the session runs
// inside one.
package multiplexer

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"al.essio.dev/pkg/shellescape"

	log "github.com/chmouel/worktrees/internal/log"
)

// Kind is the terminal multiplexer the process runs under.
type Kind int

const (
	None Kind = iota
	Tmux
	Zellij
)

func (k Kind) String() string {
	switch k {
	case Tmux:
		return "tmux"
	case Zellij:
		return "zellij"
	default:
		return "none"
	}
}

// ErrNeedsTerminal is returned when a terminal editor is launched with no
// multiplexer to give it a window.
var ErrNeedsTerminal = errors.New("terminal editors need tmux or zellij to open beside the session")

var terminalEditors = map[string]bool{
	"vi":    true,
	"vim":   true,
	"nvim":  true,
	"nano":  true,
	"micro": true,
	"hx":    true,
	"helix": true,
	"kak":   true,
}

// Detect reports the multiplexer from the environment. tmux wins when both
// are set.
func Detect(getenv func(string) string) Kind {
	switch {
	case getenv("TMUX") != "":
		return Tmux
	case getenv("ZELLIJ") != "":
		return Zellij
	default:
		return None
	}
}

// IsTerminalEditor reports whether command runs inside the terminal.
func IsTerminalEditor(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	name := filepath.Base(fields[0])
	if name == "emacs" {
		for _, f := range fields[1:] {
			if f == "-nw" || f == "--no-window-system" {
				return true
			}
		}
	}
	return terminalEditors[name]
}

// Launcher starts external programs without waiting for them.
type Launcher struct {
	// FileManager overrides the platform folder opener.
	FileManager string
	Getenv      func(string) string
	GOOS        string
	// Start runs argv in dir and returns once it has been spawned.
	Start func(dir string, argv []string) error
}

// New returns a launcher for the current process.
func New(fileManager string) *Launcher {
	return &Launcher{
		FileManager: fileManager,
		Getenv:      os.Getenv,
		GOOS:        runtime.GOOS,
		Start:       spawn,
	}
}

// Launch opens dir with the editor command. Terminal editors get a new
// multiplexer window or pane rooted at dir.
func (l *Launcher) Launch(command, dir string) error {
	argv, err := l.EditorArgv(command, dir)
	if err != nil {
		return err
	}
	log.Printf("multiplexer: launch %s", shellescape.QuoteCommand(argv))
	return l.Start(dir, argv)
}

// EditorArgv returns the process to start for command on dir.
func (l *Launcher) EditorArgv(command, dir string) ([]string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no editor command configured")
	}
	editor := append(fields, dir)
	if !IsTerminalEditor(command) {
		return editor, nil
	}
	switch Detect(l.Getenv) {
	case Tmux:
		return []string{"tmux", "new-window", "-c", dir, "-n", filepath.Base(dir), shellescape.QuoteCommand(editor)}, nil
	case Zellij:
		return append([]string{"zellij", "run", "--cwd", dir, "--name", filepath.Base(dir), "--"}, editor...), nil
	default:
		return nil, fmt.Errorf("%s: %w", fields[0], ErrNeedsTerminal)
	}
}

// OpenFolder shows dir in the file manager.
func (l *Launcher) OpenFolder(dir string) error {
	argv := l.FolderArgv(dir)
	log.Printf("multiplexer: open folder %s", shellescape.QuoteCommand(argv))
	return l.Start(dir, argv)
}

// FolderArgv returns the process that opens dir in the file manager.
func (l *Launcher) FolderArgv(dir string) []string {
	if fields := strings.Fields(l.FileManager); len(fields) > 0 {
		return append(fields, dir)
	}
	switch l.GOOS {
	case "darwin":
		return []string{"open", dir}
	case "windows":
		return []string{"explorer", dir}
	default:
		return []string{"xdg-open", dir}
	}
}

func spawn(dir string, argv []string) error {
	// #nosec G204 -- argv is the editor or file manager the user configured
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("multiplexer: %s exited: %v", argv[0], err)
		}
	}()
	return nil
}
