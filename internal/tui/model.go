// Package tui runs the interactive session inside a Bubble Tea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	log "github.com/chmouel/worktrees/internal/log"
	"github.com/chmouel/worktrees/internal/session"
	"github.com/chmouel/worktrees/internal/theme"
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(session.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model adapts a session.Loop to Bubble Tea: messages become session events,
// the poll interval becomes a tick and the loop's display state is drawn
// into the view.
type Model struct {
	loop *session.Loop
	r    *renderer
	view string
}

// NewModel returns a model driving loop. title is shown in the header.
func NewModel(loop *session.Loop, th *theme.Theme, title string) *Model {
	if th == nil {
		th = theme.Dracula()
	}
	return &Model{loop: loop, r: newRenderer(th, title)}
}

// Init starts the tick.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tickMsg:
		m.loop.Tick()
		cmd = tick()
	case tea.WindowSizeMsg:
		m.loop.Dispatch(session.ResizeEvent{Width: msg.Width, Height: msg.Height})
	case tea.KeyMsg:
		for _, ev := range keyEvents(msg) {
			m.loop.Dispatch(ev)
			if _, done := m.loop.Exited(); done {
				break
			}
		}
	case tea.MouseMsg:
		ev, ok := mouseEvent(msg)
		if !ok {
			return m, nil
		}
		m.loop.Dispatch(ev)
	default:
		return m, nil
	}
	if _, done := m.loop.Exited(); done {
		m.view = ""
		return m, tea.Quit
	}
	m.draw()
	return m, cmd
}

func (m *Model) draw() {
	layout := m.loop.Env().Layout
	m.loop.Draw(func(display session.State, tick uint64) {
		m.view = m.r.render(display, layout, tick)
	})
}

// View returns the last drawn frame.
func (m *Model) View() string {
	return m.view
}

// SelectedPath returns the path the session ended with, if any.
func (m *Model) SelectedPath() string {
	path, _ := m.loop.Exited()
	return path
}

// Options configures Run.
type Options struct {
	Theme *theme.Theme
	Title string
	// Output receives the interface; nil means the terminal's stdout.
	Output io.Writer
	Input  io.Reader
}

// Run drives loop in the alternate screen until the session exits and
// returns the path it ended with.
func Run(ctx context.Context, loop *session.Loop, opts Options) (string, error) {
	m := NewModel(loop, opts.Theme, opts.Title)
	progOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if _, err := tea.NewProgram(m, progOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("running interface: %w", err)
	}
	path := m.SelectedPath()
	log.Printf("tui: session ended, selected %q", path)
	return path, nil
}
