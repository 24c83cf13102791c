package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/chmouel/worktrees/internal/session"
	"github.com/chmouel/worktrees/internal/theme"
)

const appTitle = "Worktrees"

// renderer turns a display state into a full-screen frame laid out on
// session.Layout, so mouse hit-testing and drawing agree.
type renderer struct {
	th    *theme.Theme
	title string
	help  help.Model
	spin  spinner.Spinner

	text     lipgloss.Style
	muted    lipgloss.Style
	bold     lipgloss.Style
	accent   lipgloss.Style
	success  lipgloss.Style
	warn     lipgloss.Style
	danger   lipgloss.Style
	cyan     lipgloss.Style
	yellow   lipgloss.Style
	selected lipgloss.Style
	pill     lipgloss.Style
}

func newRenderer(th *theme.Theme, title string) *renderer {
	h := help.New()
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(th.TextFg)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(th.Border)
	h.FullSeparator = "    "
	return &renderer{
		th:       th,
		title:    title,
		help:     h,
		spin:     spinner.MiniDot,
		text:     lipgloss.NewStyle().Foreground(th.TextFg),
		muted:    lipgloss.NewStyle().Foreground(th.MutedFg),
		bold:     lipgloss.NewStyle().Foreground(th.TextFg).Bold(true),
		accent:   lipgloss.NewStyle().Foreground(th.Accent).Bold(true),
		success:  lipgloss.NewStyle().Foreground(th.SuccessFg),
		warn:     lipgloss.NewStyle().Foreground(th.WarnFg),
		danger:   lipgloss.NewStyle().Foreground(th.ErrorFg).Bold(true),
		cyan:     lipgloss.NewStyle().Foreground(th.Cyan),
		yellow:   lipgloss.NewStyle().Foreground(th.Yellow),
		selected: lipgloss.NewStyle().Foreground(th.TextFg).Background(th.AccentDim).Bold(true),
		pill:     lipgloss.NewStyle().Foreground(th.AccentFg).Background(th.Accent).Bold(true),
	}
}

// render draws a whole frame; every line is exactly the layout width.
func (r *renderer) render(s session.State, l session.Layout, tick uint64) string {
	if l.Width <= 0 || l.Height <= 0 {
		return ""
	}
	var parts []string
	if l.Header.H > 0 {
		parts = append(parts, r.header(s, l))
	}
	if l.Main.H > 0 {
		parts = append(parts, block(r.main(s, l, tick), l.Main.W, l.Main.H))
	}
	if l.Footer.H > 0 {
		parts = append(parts, r.footer(s, l, tick))
	}
	return strings.Join(parts, "\n")
}

// block clamps s to exactly w by h cells.
func block(s string, w, h int) string {
	return lipgloss.NewStyle().Width(w).Height(h).MaxWidth(w).MaxHeight(h).Render(s)
}

// fit truncates s, which may carry styling, to w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(w), "…")
}

// pad truncates or space-fills plain text to exactly w cells.
func pad(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// wrapText word-wraps s to w cells, breaking words longer than a line.
func wrapText(s string, w int) string {
	if w <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, w), w)
}

func (r *renderer) header(s session.State, l session.Layout) string {
	title := appTitle
	if r.title != "" {
		title += "  •  " + r.title
	}
	bar := lipgloss.NewStyle().
		Background(r.th.AccentDim).
		Foreground(r.th.TextFg).
		Bold(true).
		Width(l.Width).
		Padding(0, 2).
		Align(lipgloss.Center).
		Render(fit(title, l.Width-4))
	lines := []string{bar, r.context(s, l.Width)}
	return block(strings.Join(lines[:l.Header.H], "\n"), l.Width, l.Header.H)
}

// context is the second header row: the filter bar or where the user is.
func (r *renderer) context(s session.State, width int) string {
	var line string
	switch st := s.(type) {
	case *session.Listing:
		switch {
		case st.Filtering:
			line = r.pill.Padding(0, 1).Render("Filter") + " " + r.text.Render(st.Filter) + r.accent.Render("█")
		case st.Filter != "":
			line = r.pill.Padding(0, 1).Render("Filter") + " " + r.text.Render(st.Filter) +
				r.muted.Render(fmt.Sprintf("  %d of %d worktrees", len(st.Visible), len(st.Worktrees)))
		case st.Loaded && st.SelectionMode:
			line = r.muted.Render(fmt.Sprintf("%d worktrees  •  pick one with enter", len(st.Worktrees)))
		case st.Loaded:
			line = r.muted.Render(fmt.Sprintf("%d worktrees", len(st.Worktrees)))
		default:
			line = r.muted.Render("Loading worktrees…")
		}
	default:
		line = r.muted.Render(breadcrumb(s))
	}
	return lipgloss.NewStyle().Padding(0, 1).Width(width).MaxWidth(width).Render(fit(line, width-2))
}

// breadcrumb names the screen for the header.
func breadcrumb(s session.State) string {
	switch st := s.(type) {
	case *session.ViewingStatus:
		return "Status › " + st.Branch
	case *session.ViewingHistory:
		return "Log › " + st.Branch
	case *session.SwitchingBranch:
		return "Switch branch"
	case *session.PickingBaseRef:
		return "New worktree › base"
	case *session.Committing:
		return "Commit › " + st.Branch
	case *session.Prompting:
		return st.Kind.String()
	case *session.ViewingStashes:
		return "Stashes › " + st.Branch
	case *session.Confirming:
		return st.Title
	case *session.SelectingEditor:
		return "Open › " + st.Branch
	case *session.Help:
		return "Help"
	case *session.Error:
		return "Error"
	case *session.Welcome:
		return "Welcome"
	}
	if label, ok := session.BusyLabel(s); ok {
		return label
	}
	return ""
}

func (r *renderer) keyHint(b key.Binding) string {
	h := b.Help()
	return r.pill.Padding(0, 1).Render(h.Key) + " " + r.muted.Render(h.Desc)
}

func (r *renderer) footer(s session.State, l session.Layout, tick uint64) string {
	style := lipgloss.NewStyle().
		Foreground(r.th.TextFg).
		Background(r.th.AccentDim).
		Padding(0, 1)

	var pills []string
	for _, b := range hints(s) {
		if b.Enabled() {
			pills = append(pills, r.keyHint(b))
		}
	}
	content := strings.Join(pills, "  ")
	if _, busy := session.BusyLabel(s); !busy {
		return style.Width(l.Width).MaxWidth(l.Width).Render(fit(content, l.Width-2))
	}
	spin := r.accent.Render(r.frame(tick))
	gap := "  "
	available := max(l.Width-lipgloss.Width(spin)-lipgloss.Width(gap), 0)
	bar := style.Width(available).MaxWidth(available).Render(fit(content, available-2))
	return lipgloss.NewStyle().MaxWidth(l.Width).Render(lipgloss.JoinHorizontal(lipgloss.Top, bar, gap, spin))
}

func (r *renderer) frame(tick uint64) string {
	frames := r.spin.Frames
	return frames[tick%uint64(len(frames))]
}

// row is a list line in plain form for the cursor highlight and in styled
// form otherwise.
type row struct {
	plain, styled string
}

// box draws a bordered pane over rect with lines inside it.
func (r *renderer) box(rect session.Rect, lines []string) string {
	if rect.Empty() {
		return ""
	}
	inner := max(rect.W-2, 0)
	innerH := max(rect.H-2, 0)
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	fitted := make([]string, len(lines))
	for i, line := range lines {
		fitted[i] = fit(line, inner)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.th.Border).
		Width(inner).
		Height(innerH).
		MaxHeight(rect.H).
		Render(strings.Join(fitted, "\n"))
}

// window renders rows visible in a viewport of height h with cursor kept
// in view, the same scrolling session.RowAt assumes.
func (r *renderer) window(rows []row, cursor, w, h int) []string {
	if h <= 0 {
		return nil
	}
	off := session.ScrollOffset(cursor, h)
	end := min(len(rows), off+h)
	out := make([]string, 0, end-off)
	for i := off; i < end; i++ {
		if i == cursor {
			out = append(out, r.selected.Width(w).MaxWidth(w).Render(pad(rows[i].plain, w)))
			continue
		}
		out = append(out, rows[i].styled)
	}
	return out
}

// listBox draws a full-screen titled list on the layout body.
func (r *renderer) listBox(l session.Layout, title string, rows []row, cursor int, empty string) string {
	body := l.BodyRows()
	lines := []string{r.accent.Render(title)}
	if len(rows) == 0 {
		lines = append(lines, r.muted.Render(empty))
	} else {
		lines = append(lines, r.window(rows, cursor, body.W, body.H)...)
	}
	return r.box(l.Body(), lines)
}

// dialog centers a bordered message box in the main area.
func (r *renderer) dialog(l session.Layout, border lipgloss.Color, maxWidth int, body string) string {
	w := min(maxWidth, max(l.Main.W-4, 10))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(w).
		Render(body)
	return lipgloss.Place(l.Main.W, l.Main.H, lipgloss.Center, lipgloss.Center, box)
}
