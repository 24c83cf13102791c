package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/chmouel/worktrees/internal/models"
)

var bannerLines = []string{
	`╻ ╻┏━┓┏━┓╻┏ ╺┳╸┏━┓┏━╸┏━╸┏━┓`,
	`┃╻┃┃ ┃┣┳┛┣┻┓ ┃ ┣┳┛┣╸ ┣╸ ┗━┓`,
	`┗┻┛┗━┛╹┗╸╹ ╹ ╹ ╹┗╸┗━╸┗━╸┗━┛`,
}

type printer struct {
	out   io.Writer
	json  bool
	quiet bool

	accent  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	muted   lipgloss.Style
	bold    lipgloss.Style
}

func newPrinter(opts Options) *printer {
	r := lipgloss.NewRenderer(opts.Stdout)
	th := opts.Theme
	return &printer{
		out:     opts.Stdout,
		json:    opts.JSON,
		quiet:   opts.Quiet,
		accent:  r.NewStyle().Foreground(th.Cyan).Bold(true),
		success: r.NewStyle().Foreground(th.SuccessFg).Bold(true),
		warn:    r.NewStyle().Foreground(th.WarnFg).Bold(true),
		danger:  r.NewStyle().Foreground(th.ErrorFg).Bold(true),
		muted:   r.NewStyle().Foreground(th.MutedFg),
		bold:    r.NewStyle().Bold(true),
	}
}

// human reports whether informational lines are printed.
func (p *printer) human() bool {
	return !p.json && !p.quiet
}

func (p *printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// step prints a progress line.
func (p *printer) step(format string, args ...any) {
	if p.human() {
		p.println(p.accent.Render("➜") + " " + fmt.Sprintf(format, args...))
	}
}

// done prints a success line.
func (p *printer) done(format string, args ...any) {
	if p.human() {
		p.println(p.success.Render("✔") + " " + fmt.Sprintf(format, args...))
	}
}

// problem prints a non-fatal error line; quiet does not hide it.
func (p *printer) problem(format string, args ...any) {
	if !p.json {
		p.println("   " + p.danger.Render("✘") + " " + fmt.Sprintf(format, args...))
	}
}

func (p *printer) tip(format string, args ...any) {
	if p.human() {
		p.println("\n" + p.accent.Render("Tip:") + " " + fmt.Sprintf(format, args...))
	}
}

func (p *printer) emit(v any) error {
	if !p.json {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

func (p *printer) banner() {
	for _, line := range bannerLines {
		p.println(p.accent.Render(line))
	}
	p.println(p.muted.Render(strings.Repeat("━", runewidth.StringWidth(bannerLines[0]))) + "\n")
}

func worktreeState(wt models.Worktree) string {
	switch {
	case wt.IsBare:
		return "Bare"
	case wt.IsDetached:
		return "Detached"
	case wt.Dirty():
		return "Dirty"
	default:
		return "Active"
	}
}

// table renders worktrees as aligned columns. Cells are padded by display
// width so wide runes in branch names keep the columns straight.
func (p *printer) table(worktrees []models.Worktree) {
	header := []string{"Branch", "Commit", "Path", "Status"}
	rows := make([][]string, 0, len(worktrees))
	for _, wt := range worktrees {
		branch := wt.Branch
		if wt.IsBare {
			branch = wt.Name()
		}
		rows = append(rows, []string{branch, wt.Commit, wt.Path, worktreeState(wt)})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	format := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Render(runewidth.FillRight(cell, widths[i]))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	p.println(format(header, p.bold))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	p.println(p.muted.Render(strings.Join(rule, "  ")))
	for _, row := range rows {
		p.println(format(row, lipgloss.NewStyle()))
	}
}

// Report writes err for the user: a JSON object in JSON mode, a single line
// otherwise. Payload fields of a *Failure are merged into the JSON object.
func Report(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	var failure *Failure
	isFailure := errors.As(err, &failure)
	if !jsonMode {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		if isFailure {
			if hint, ok := failure.Payload["hint"].(string); ok {
				_, _ = fmt.Fprintf(w, "Tip: %s\n", hint)
			}
		}
		return
	}
	body := map[string]any{}
	if isFailure {
		for k, v := range failure.Payload {
			body[k] = v
		}
	}
	body["status"] = "error"
	body["message"] = err.Error()
	data, merr := json.MarshalIndent(body, "", "  ")
	if merr != nil {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(w, string(data))
}
