package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/chmouel/worktrees/internal/models"
	"github.com/chmouel/worktrees/internal/session"
)

const (
	maxNameWidth   = 28
	maxBranchWidth = 32
	dialogWidth    = 64
	helpWidth      = 110
)

func (r *renderer) main(s session.State, l session.Layout, tick uint64) string {
	switch st := s.(type) {
	case *session.Listing:
		list := r.box(l.List, r.listingLines(st, l))
		if l.Dashboard.Empty() {
			return list
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, list, r.box(l.Dashboard, r.dashboardLines(st, l)))
	case *session.ViewingStatus:
		return r.box(l.Body(), r.statusLines(st, l))
	case *session.ViewingHistory:
		rows := make([]row, len(st.Commits))
		for i, c := range st.Commits {
			rows[i] = r.commitRow(c)
		}
		return r.listBox(l, "Log of "+st.Branch, rows, st.Cursor, "No commits.")
	case *session.SwitchingBranch:
		return r.listBox(l, "Switch "+filepath.Base(st.Path)+" to branch", r.branchRows(st.Branches), st.Cursor, "No branches.")
	case *session.PickingBaseRef:
		return r.listBox(l, "Base the new worktree on", r.branchRows(st.Branches), st.Cursor, "No branches.")
	case *session.Committing:
		rows := make([]row, len(session.CommitOptions))
		for i, opt := range session.CommitOptions {
			n := strconv.Itoa(i + 1)
			rows[i] = row{
				plain:  " " + n + "  " + opt.String(),
				styled: " " + r.accent.Render(n) + "  " + r.text.Render(opt.String()),
			}
		}
		return r.listBox(l, "Commit staged changes on "+st.Branch, rows, st.Cursor, "")
	case *session.ViewingStashes:
		rows := make([]row, len(st.Stashes))
		for i, stash := range st.Stashes {
			ref := fmt.Sprintf("stash@{%d}", stash.Index)
			rows[i] = row{
				plain:  " " + ref + "  " + stash.Message,
				styled: " " + r.yellow.Render(ref) + "  " + r.text.Render(stash.Message),
			}
		}
		return r.listBox(l, "Stashes of "+st.Branch, rows, st.Cursor, "No stashes. Press n to stash the current changes.")
	case *session.SelectingEditor:
		rows := make([]row, len(st.Options))
		for i, opt := range st.Options {
			rows[i] = row{
				plain:  " " + opt.Name + "  " + opt.Command,
				styled: " " + r.bold.Render(opt.Name) + "  " + r.muted.Render(opt.Command),
			}
		}
		return r.listBox(l, "Open "+st.Branch+" with", rows, st.Cursor, "No editors configured.")
	}
	return r.modal(s, l, tick)
}

func (r *renderer) branchRows(branches []string) []row {
	rows := make([]row, len(branches))
	for i, b := range branches {
		rows[i] = row{
			plain:  " " + iconBranch + " " + b,
			styled: " " + r.cyan.Render(iconBranch) + " " + r.text.Render(b),
		}
	}
	return rows
}

func (r *renderer) commitRow(c models.Commit) row {
	if c.IsConnector() {
		return row{plain: " " + c.Graph, styled: " " + r.cyan.Render(c.Graph)}
	}
	meta := c.Author
	if c.Date != "" {
		meta += ", " + c.Date
	}
	graph := ""
	if c.Graph != "" {
		graph = c.Graph + " "
	}
	return row{
		plain: " " + graph + c.Hash + " " + c.Message + "  " + meta,
		styled: " " + r.cyan.Render(graph) + r.yellow.Render(c.Hash) + " " +
			r.text.Render(c.Message) + "  " + r.muted.Render(meta),
	}
}

func branchLabel(wt models.Worktree) string {
	switch {
	case wt.IsBare:
		return "-"
	case wt.IsDetached:
		return "(detached)"
	}
	return wt.Branch
}

func changesLabel(wt models.Worktree) string {
	if wt.IsBare {
		return ""
	}
	return models.SummaryOf(wt.Staged, wt.Modified, wt.Untracked)
}

func remoteLabel(wt models.Worktree) string {
	var parts []string
	if wt.Ahead > 0 {
		parts = append(parts, "↑"+strconv.Itoa(wt.Ahead))
	}
	if wt.Behind > 0 {
		parts = append(parts, "↓"+strconv.Itoa(wt.Behind))
	}
	return strings.Join(parts, " ")
}

func (r *renderer) listingLines(st *session.Listing, l session.Layout) []string {
	rows := l.ListRows()
	visible := make([]models.Worktree, 0, len(st.Visible))
	for _, idx := range st.Visible {
		if idx >= 0 && idx < len(st.Worktrees) {
			visible = append(visible, st.Worktrees[idx])
		}
	}

	nameW, branchW, changesW := len("Name"), len("Branch"), len("Changes")
	for _, wt := range visible {
		nameW = max(nameW, runewidth.StringWidth(wt.Name())+2)
		branchW = max(branchW, runewidth.StringWidth(branchLabel(wt)))
		changesW = max(changesW, runewidth.StringWidth(changesLabel(wt)))
	}
	nameW = min(nameW, maxNameWidth)
	branchW = min(branchW, maxBranchWidth)

	header := "  " + pad("Name", nameW) + "  " + pad("Branch", branchW) + "  " + pad("Changes", changesW) + "  Remote"
	lines := []string{r.muted.Bold(true).Render(header)}

	switch {
	case !st.Loaded:
		return append(lines, r.muted.Render("  Loading worktrees…"))
	case len(visible) == 0 && st.Filter != "":
		return append(lines, r.muted.Render(fmt.Sprintf("  No worktrees match %q.", st.Filter)))
	case len(visible) == 0:
		return append(lines, r.muted.Render("  No worktrees yet. Press a to add one."))
	}

	list := make([]row, len(visible))
	for i, wt := range visible {
		icon := iconWorktree
		if wt.IsBare {
			icon = iconHub
		}
		name := pad(icon+" "+wt.Name(), nameW)
		branch := pad(branchLabel(wt), branchW)
		changes := pad(changesLabel(wt), changesW)
		remote := remoteLabel(wt)
		changeStyle := r.success
		if wt.Dirty() {
			changeStyle = r.warn
		}
		list[i] = row{
			plain:  "  " + name + "  " + branch + "  " + changes + "  " + remote,
			styled: "  " + r.bold.Render(name) + "  " + r.cyan.Render(branch) + "  " + changeStyle.Render(changes) + "  " + r.yellow.Render(remote),
		}
	}
	return append(lines, r.window(list, st.Cursor, rows.W, rows.H)...)
}

func (r *renderer) dashboardLines(st *session.Listing, l session.Layout) []string {
	inner := max(l.Dashboard.W-2, 0)
	tabs := make([]string, 0, len(session.DashboardTabs))
	for _, span := range l.Tabs() {
		if span.Tab == st.Dashboard.Tab {
			tabs = append(tabs, r.pill.Render(span.Label))
		} else {
			tabs = append(tabs, r.muted.Render(span.Label))
		}
	}
	lines := []string{strings.Join(tabs, " "), r.muted.Render(strings.Repeat("─", inner))}

	wt, ok := st.Selected()
	if !ok {
		return append(lines, r.muted.Render("No worktree selected."))
	}
	if st.Dashboard.Err != "" {
		return append(lines, strings.Split(r.danger.Render(wrapText(st.Dashboard.Err, inner)), "\n")...)
	}
	switch st.Dashboard.Tab {
	case session.TabStatus:
		return append(lines, r.dashboardStatus(st, wt)...)
	case session.TabLog:
		return append(lines, r.dashboardLog(st, wt)...)
	}
	return append(lines, r.dashboardInfo(wt)...)
}

func (r *renderer) field(name, value string) string {
	return r.muted.Render(pad(name, 9)) + value
}

func (r *renderer) dashboardInfo(wt models.Worktree) []string {
	lines := []string{
		r.field("Path", r.text.Render(wt.Path)),
		r.field("Branch", r.cyan.Render(branchLabel(wt))),
	}
	if wt.Commit != "" {
		lines = append(lines, r.field("Commit", r.yellow.Render(wt.Commit)))
	}
	if wt.IsBare {
		return append(lines, "", r.muted.Render("The bare hub holds the shared repository."))
	}
	changes := r.success.Render("clean")
	if wt.Dirty() {
		changes = r.warn.Render(changesLabel(wt))
	}
	remote := remoteLabel(wt)
	if remote == "" {
		remote = "up to date"
	}
	lines = append(lines,
		r.field("Changes", changes),
		r.field("Remote", r.text.Render(remote)),
	)
	if wt.SizeBytes > 0 {
		lines = append(lines, r.field("Size", r.text.Render(formatSize(wt.SizeBytes))))
	}
	return lines
}

func (r *renderer) dashboardStatus(st *session.Listing, wt models.Worktree) []string {
	if st.Dashboard.Path != wt.Path || st.Dashboard.Status == nil {
		return []string{r.muted.Render("Loading status…")}
	}
	status := *st.Dashboard.Status
	if status.Len() == 0 {
		return []string{r.success.Render("✔ Working tree clean")}
	}
	var lines []string
	section := func(title string, style lipgloss.Style, files []models.StatusFile) {
		if len(files) == 0 {
			return
		}
		lines = append(lines, style.Bold(true).Render(fmt.Sprintf("%s (%d)", title, len(files))))
		for _, f := range files {
			lines = append(lines, "  "+style.Render(f.Code)+" "+fileIcon(f.Filename)+" "+r.text.Render(f.Filename))
		}
	}
	section("Staged", r.success, status.Staged)
	section("Changes", r.warn, status.Unstaged)
	section("Untracked", r.muted, status.Untracked)
	return lines
}

func (r *renderer) dashboardLog(st *session.Listing, wt models.Worktree) []string {
	if st.Dashboard.Path != wt.Path {
		return []string{r.muted.Render("Loading log…")}
	}
	if len(st.Dashboard.History) == 0 {
		return []string{r.muted.Render("No commits.")}
	}
	lines := make([]string, len(st.Dashboard.History))
	for i, c := range st.Dashboard.History {
		lines[i] = r.commitRow(c).styled
	}
	return lines
}

func (r *renderer) statusLines(st *session.ViewingStatus, l session.Layout) []string {
	title := r.accent.Render("Status of "+st.Branch) + "  " + r.muted.Render(st.Status.Summary())
	lines := []string{title}
	if st.Status.Len() == 0 {
		return append(lines, r.success.Render("✔ Nothing to commit, working tree clean"))
	}

	files := l.StatusRows(st.ShowDiff)
	rows := make([]row, st.Status.Len())
	for i := range rows {
		f, section, _ := st.Status.At(i)
		style := r.success
		switch section {
		case models.SectionUnstaged:
			style = r.warn
		case models.SectionUntracked:
			style = r.muted
		}
		code := pad(f.Code, 2)
		icon := fileIcon(f.Filename)
		rows[i] = row{
			plain:  " " + code + " " + icon + " " + f.Filename,
			styled: " " + style.Render(code) + " " + icon + " " + r.text.Render(f.Filename),
		}
	}
	list := r.window(rows, st.Cursor, files.W, files.H)
	if !st.ShowDiff {
		return append(lines, list...)
	}

	pane := l.DiffPane()
	diff := r.diffLines(st.Diff, pane.W)
	for i := range files.H {
		left := ""
		if i < len(list) {
			left = fit(list[i], files.W)
		}
		left += strings.Repeat(" ", max(files.W-lipgloss.Width(left), 0))
		right := ""
		if i < len(diff) {
			right = diff[i]
		}
		lines = append(lines, left+r.muted.Render("│")+right)
	}
	return lines
}

func (r *renderer) diffLines(diff string, w int) []string {
	if strings.TrimSpace(diff) == "" {
		return []string{r.muted.Render("No diff for this file.")}
	}
	raw := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		line = fit(strings.ReplaceAll(line, "\t", "    "), w)
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			out[i] = r.bold.Render(line)
		case strings.HasPrefix(line, "+"):
			out[i] = r.success.Render(line)
		case strings.HasPrefix(line, "-"):
			out[i] = r.danger.UnsetBold().Render(line)
		case strings.HasPrefix(line, "@@"):
			out[i] = r.cyan.Render(line)
		default:
			out[i] = r.text.Render(line)
		}
	}
	return out
}

// modal draws the dialog screens over an empty main area.
func (r *renderer) modal(s session.State, l session.Layout, tick uint64) string {
	inner := min(dialogWidth, max(l.Main.W-4, 10)) - 4
	switch st := s.(type) {
	case *session.Confirming:
		body := r.warn.Bold(true).Render(st.Title) + "\n\n" + r.text.Render(wrapText(st.Message, inner)) +
			"\n\n" + r.keyHint(bind("y", "Confirm")) + "  " + r.keyHint(bind("n", "Cancel"))
		return r.dialog(l, r.th.WarnFg, dialogWidth, body)
	case *session.Error:
		body := r.danger.Render("Error") + "\n\n" + r.text.Render(wrapText(st.Message, inner))
		return r.dialog(l, r.th.ErrorFg, dialogWidth, body)
	case *session.Prompting:
		return r.dialog(l, r.th.Accent, dialogWidth, r.prompt(st, inner))
	case *session.Help:
		return r.dialog(l, r.th.Accent, helpWidth, r.accent.Render("Key bindings")+"\n\n"+r.help.FullHelpView(newListingKeys().full()))
	case *session.Completed:
		return r.dialog(l, r.th.SuccessFg, dialogWidth, r.success.Bold(true).Render("✔ ")+r.text.Render(wrapText(st.Label, inner-2)))
	case *session.SetupComplete:
		body := r.success.Bold(true).Render("✔ Default worktrees are ready") + "\n\n" +
			r.muted.Render("The main and dev worktrees exist in the hub.")
		return r.dialog(l, r.th.SuccessFg, dialogWidth, body)
	case *session.Welcome:
		return r.dialog(l, r.th.Accent, dialogWidth, r.welcome(st, inner))
	case *session.Exiting:
		return ""
	}
	if label, ok := session.BusyLabel(s); ok {
		body := r.accent.Render(r.frame(tick)) + " " + r.text.Render(label+"…")
		if _, setup := s.(*session.SettingUpDefaults); !setup {
			body += "\n\n" + r.muted.Render("esc to stop waiting")
		}
		return r.dialog(l, r.th.Accent, dialogWidth, body)
	}
	return ""
}

func (r *renderer) prompt(st *session.Prompting, inner int) string {
	input := st.Input
	if st.Kind == session.PromptAPIKey {
		input = strings.Repeat("•", runewidth.StringWidth(input))
	}
	// keep the end of long input in view
	if w := runewidth.StringWidth(input); w > inner-3 {
		input = "…" + runewidth.TruncateLeft(input, w-(inner-4), "")
	}
	title := r.accent.Render(st.Kind.String())
	if st.BaseRef != "" {
		title += r.muted.Render("  from " + st.BaseRef)
	}
	return title + "\n\n" + r.cyan.Render("> ") + r.text.Render(input) + r.accent.Render("█")
}

func (r *renderer) welcome(st *session.Welcome, inner int) string {
	title := r.accent.Render("Welcome to " + appTitle)
	var msg string
	switch st.Kind {
	case models.RepoStandard:
		msg = "This is a regular git checkout. Run `worktrees convert` to turn it into a bare hub, " +
			"or `worktrees migrate` to move it in place."
	default:
		msg = "No git repository here. Run `worktrees init <name> [url]` to create a bare hub."
	}
	return title + "\n\n" + r.text.Render(wrapText(msg, inner))
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
