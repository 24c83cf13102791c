package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutSplitsWideTerminals(t *testing.T) {
	t.Parallel()
	l := NewLayout(120, 40)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 120, H: 2}, l.Header)
	assert.Equal(t, Rect{X: 0, Y: 39, W: 120, H: 1}, l.Footer)
	assert.Equal(t, 66, l.List.W)
	assert.Equal(t, 54, l.Dashboard.W)
	assert.Equal(t, l.List.X+l.List.W, l.Dashboard.X)
	assert.Equal(t, l.Main.H, l.List.H)
}

func TestLayoutHidesDashboardWhenNarrow(t *testing.T) {
	t.Parallel()
	l := NewLayout(60, 20)
	assert.True(t, l.Dashboard.Empty())
	assert.Equal(t, l.Main, l.List)
	assert.Nil(t, l.Tabs())
	_, ok := l.TabAt(5, l.TabRow())
	assert.False(t, ok)
}

func TestLayoutTinyTerminal(t *testing.T) {
	t.Parallel()
	l := NewLayout(3, 1)
	assert.True(t, l.ListRows().Empty())
	_, ok := RowAt(l.ListRows(), 0, 0, 0, 5)
	assert.False(t, ok)
}

func TestTabAtMatchesTabs(t *testing.T) {
	t.Parallel()
	l := NewLayout(120, 40)
	spans := l.Tabs()
	require.Len(t, spans, len(DashboardTabs))
	for i, span := range spans {
		assert.Equal(t, DashboardTabs[i], span.Tab)
		assert.Equal(t, len(span.Label), span.X1-span.X0)
		for x := span.X0; x < span.X1; x++ {
			tab, ok := l.TabAt(x, l.TabRow())
			require.True(t, ok, "x=%d", x)
			assert.Equal(t, span.Tab, tab)
		}
		_, ok := l.TabAt(span.X0, l.TabRow()+1)
		assert.False(t, ok, "only the tab row is clickable")
		if i+1 < len(spans) {
			_, ok := l.TabAt(span.X1, l.TabRow())
			assert.False(t, ok, "the gap between tabs is not a tab")
		}
	}
}

func TestRowAtScrolls(t *testing.T) {
	t.Parallel()
	rows := Rect{X: 1, Y: 3, W: 20, H: 5}

	idx, ok := RowAt(rows, 2, 3, 0, 10)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = RowAt(rows, 2, 7, 8, 10)
	require.True(t, ok)
	assert.Equal(t, 8, idx, "the cursor row is the last visible row")

	_, ok = RowAt(rows, 2, 7, 0, 3)
	assert.False(t, ok, "past the last item")
	_, ok = RowAt(rows, 0, 4, 0, 10)
	assert.False(t, ok, "outside the border")
}

func TestScrollOffset(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, ScrollOffset(3, 5))
	assert.Equal(t, 1, ScrollOffset(5, 5))
	assert.Equal(t, 0, ScrollOffset(4, 0))
}
