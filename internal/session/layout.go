package session

const (
	headerHeight = 2
	footerHeight = 1
	// listPercent is the share of the width used by the worktree list.
	listPercent = 55
	// below this width the dashboard is hidden.
	splitMinWidth = 70
	tabGap        = 1
)

// Rect is a cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether cell x, y lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// inner shrinks r by a one-cell border, plus skip rows at the top.
func (r Rect) inner(skip int) Rect {
	in := Rect{X: r.X + 1, Y: r.Y + 1 + skip, W: r.W - 2, H: r.H - 2 - skip}
	if in.W < 0 {
		in.W = 0
	}
	if in.H < 0 {
		in.H = 0
	}
	return in
}

// TabSpan is the horizontal extent of a dashboard tab label.
type TabSpan struct {
	Tab    DashboardTab
	Label  string
	X0, X1 int // X1 is exclusive
}

// Layout is the screen geometry. The renderer draws with it and the
// interpreters hit-test mouse events with it.
type Layout struct {
	Width, Height int
	Header        Rect
	Main          Rect
	Footer        Rect
	List          Rect // bordered worktree list pane
	Dashboard     Rect // bordered side panel; empty on narrow terminals
}

// NewLayout computes the geometry for a terminal of the given size.
func NewLayout(width, height int) Layout {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	l := Layout{Width: width, Height: height}
	l.Header = Rect{X: 0, Y: 0, W: width, H: min(headerHeight, height)}
	footerY := max(height-footerHeight, l.Header.H)
	l.Footer = Rect{X: 0, Y: footerY, W: width, H: height - footerY}
	l.Main = Rect{X: 0, Y: l.Header.H, W: width, H: footerY - l.Header.H}

	if width < splitMinWidth {
		l.List = l.Main
		return l
	}
	listW := width * listPercent / 100
	l.List = Rect{X: 0, Y: l.Main.Y, W: listW, H: l.Main.H}
	l.Dashboard = Rect{X: listW, Y: l.Main.Y, W: width - listW, H: l.Main.H}
	return l
}

// ListRows is the area of worktree rows, below the column header.
func (l Layout) ListRows() Rect {
	return l.List.inner(1)
}

// Tabs returns the dashboard tab labels and their columns.
func (l Layout) Tabs() []TabSpan {
	if l.Dashboard.Empty() {
		return nil
	}
	spans := make([]TabSpan, 0, len(DashboardTabs))
	x := l.Dashboard.X + 1
	for i, tab := range DashboardTabs {
		label := " " + string(rune('1'+i)) + " " + tab.String() + " "
		w := len(label)
		spans = append(spans, TabSpan{Tab: tab, Label: label, X0: x, X1: x + w})
		x += w + tabGap
	}
	return spans
}

// TabRow is the screen row holding the tab labels.
func (l Layout) TabRow() int {
	return l.Dashboard.Y + 1
}

// DashboardBody is the side panel area below the tabs.
func (l Layout) DashboardBody() Rect {
	return l.Dashboard.inner(2)
}

// TabAt returns the tab under cell x, y.
func (l Layout) TabAt(x, y int) (DashboardTab, bool) {
	if y != l.TabRow() {
		return 0, false
	}
	for _, span := range l.Tabs() {
		if x >= span.X0 && x < span.X1 {
			return span.Tab, true
		}
	}
	return 0, false
}

// Body is the bordered area used by full-screen list views.
func (l Layout) Body() Rect {
	return l.Main
}

// BodyRows is the row area of Body, below its title row.
func (l Layout) BodyRows() Rect {
	return l.Main.inner(1)
}

// StatusRows is the file list of the staging view; it shares the width
// with the diff preview when that is shown.
func (l Layout) StatusRows(showDiff bool) Rect {
	rows := l.BodyRows()
	if showDiff {
		rows.W = rows.W / 2
	}
	return rows
}

// DiffPane is the diff preview area of the staging view.
func (l Layout) DiffPane() Rect {
	rows := l.BodyRows()
	half := rows.W / 2
	return Rect{X: rows.X + half + 1, Y: rows.Y, W: rows.W - half - 1, H: rows.H}
}

// ScrollOffset returns the first visible row index keeping cursor visible
// in a viewport of height rows.
func ScrollOffset(cursor, height int) int {
	if height <= 0 || cursor < height {
		return 0
	}
	return cursor - height + 1
}

// RowAt maps cell x, y inside rows to an item index, given the cursor that
// decides scrolling. It reports false outside rows or past n items.
func RowAt(rows Rect, x, y, cursor, n int) (int, bool) {
	if !rows.Contains(x, y) {
		return 0, false
	}
	idx := ScrollOffset(cursor, rows.H) + y - rows.Y
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}
