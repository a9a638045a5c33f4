package table

import (
	"fmt"
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string
	Name  string
	Group string
	Count int
}

func (i item) RowID() string { return i.ID }

func itemColumns() []Column[item] {
	return []Column[item]{
		{Header: "Name", Key: func(i item) any { return i.Name }, Sortable: true},
		{Header: "Count", Key: func(i item) any { return i.Count }, Sortable: true},
		{Header: "Derived", Render: func(i item) string { return i.Group + "!" }},
	}
}

// makeItems builds rows with IDs that cannot collide with search terms used
// in the filter tests.
func makeItems(names ...string) []item {
	items := make([]item, len(names))
	for i, n := range names {
		items[i] = item{ID: fmt.Sprintf("id-%d", i), Name: n, Group: "g", Count: i}
	}
	return items
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFilterMatchesAnyFieldCaseInsensitive(t *testing.T) {
	m := New(itemColumns(), 10)
	m.SetRows([]item{
		{ID: "1", Name: "Alpha", Group: "frontend", Count: 1},
		{ID: "2", Name: "Beta", Group: "backend", Count: 2},
		{ID: "3", Name: "Gamma", Group: "FRONTEND", Count: 3},
	})

	m.SetSearch("front")
	got := m.Filtered()
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Gamma", got[1].Name)

	// Matching on a non-name field.
	m.SetSearch("beta")
	got = m.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestFilterEmptyTermKeepsEverything(t *testing.T) {
	rows := makeItems("a", "b", "c", "d")
	m := New(itemColumns(), 10)
	m.SetRows(rows)

	m.SetSearch("")
	assert.Equal(t, rows, m.Filtered())
}

func TestSortCycleRestoresInsertionOrder(t *testing.T) {
	rows := []item{
		{ID: "1", Name: "banana"},
		{ID: "2", Name: "apple"},
		{ID: "3", Name: "cherry"},
	}
	m := New(itemColumns(), 10)
	m.SetRows(rows)

	// First press: ascending.
	m.CycleSort(0)
	got := m.Filtered()
	assert.Equal(t, []string{"apple", "banana", "cherry"}, names(got))

	// Second press: descending.
	m.CycleSort(0)
	got = m.Filtered()
	assert.Equal(t, []string{"cherry", "banana", "apple"}, names(got))

	// Third press: back to insertion order.
	m.CycleSort(0)
	got = m.Filtered()
	assert.Equal(t, []string{"banana", "apple", "cherry"}, names(got))
}

func names(rows []item) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSortNumericColumn(t *testing.T) {
	m := New(itemColumns(), 10)
	m.SetRows([]item{
		{ID: "1", Name: "a", Count: 30},
		{ID: "2", Name: "b", Count: 4},
		{ID: "3", Name: "c", Count: 100},
	})

	m.CycleSort(1)
	got := m.Filtered()
	assert.Equal(t, []int{4, 30, 100}, []int{got[0].Count, got[1].Count, got[2].Count})
}

func TestSortLargeIntValues(t *testing.T) {
	// Magnitudes whose difference overflows int must still order correctly.
	m := New(itemColumns(), 10)
	m.SetRows([]item{
		{ID: "1", Name: "a", Count: math.MaxInt},
		{ID: "2", Name: "b", Count: math.MinInt},
		{ID: "3", Name: "c", Count: 0},
	})

	m.CycleSort(1)
	got := m.Filtered()
	assert.Equal(t, []int{math.MinInt, 0, math.MaxInt},
		[]int{got[0].Count, got[1].Count, got[2].Count})
}

func TestDerivedColumnIsNeverSortable(t *testing.T) {
	rows := makeItems("b", "a", "c")
	m := New(itemColumns(), 10)
	m.SetRows(rows)

	m.CycleSort(2)
	assert.Equal(t, rows, m.Filtered())
}

func TestSortDoesNotMutateBackingRows(t *testing.T) {
	rows := []item{
		{ID: "1", Name: "b"},
		{ID: "2", Name: "a"},
	}
	m := New(itemColumns(), 10)
	m.SetRows(rows)

	m.CycleSort(0)
	_ = m.Filtered()
	assert.Equal(t, "b", m.Rows()[0].Name)
}

func TestPaginationSplitsFilteredRows(t *testing.T) {
	var rows []item
	for i := 0; i < 23; i++ {
		rows = append(rows, item{ID: uuid.NewString(), Name: fmt.Sprintf("row-%02d", i)})
	}
	m := New(itemColumns(), 10)
	m.SetRows(rows)

	assert.Equal(t, 3, m.PageCount())

	// Concatenating every page reproduces the filtered collection.
	var all []item
	for p := 1; p <= m.PageCount(); p++ {
		m.SetPage(p)
		all = append(all, m.PageRows()...)
	}
	assert.Equal(t, rows, all)

	m.SetPage(3)
	assert.Len(t, m.PageRows(), 3)
}

func TestPageCountEmpty(t *testing.T) {
	m := New(itemColumns(), 10)
	assert.Equal(t, 0, m.PageCount())
	assert.Empty(t, m.PageRows())
}

func TestPageSurvivesFilterChange(t *testing.T) {
	m := New(itemColumns(), 5)
	m.SetRows(makeItems("a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"))
	m.SetPage(2)
	require.Len(t, m.PageRows(), 3)

	// Narrowing the filter keeps the page index where it was, even though
	// page 2 no longer exists; the user sees an empty page.
	m.SetSearch("a1")
	assert.Equal(t, 2, m.Page())
	assert.Empty(t, m.PageRows())

	// Stepping back shows the filtered rows.
	m, _ = m.Update(keyRunes("["))
	assert.Equal(t, 1, m.Page())
	assert.Len(t, m.PageRows(), 1)
}

func TestSelectedFollowsCursor(t *testing.T) {
	m := New(itemColumns(), 10)
	m.SetRows(makeItems("a", "b", "c"))

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.Name)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	sel, ok = m.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", sel.Name)
}

func TestSelectedEmptyTable(t *testing.T) {
	m := New(itemColumns(), 10)
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestSortKeyUsesColumnCursor(t *testing.T) {
	m := New(itemColumns(), 10)
	m.SetRows([]item{
		{ID: "1", Name: "b", Count: 2},
		{ID: "2", Name: "a", Count: 1},
	})

	// Move the column cursor to Count, then sort.
	m, _ = m.Update(keyRunes("l"))
	m, _ = m.Update(keyRunes("s"))
	got := m.Filtered()
	assert.Equal(t, 1, got[0].Count)
}

func TestSearchFocusAndBlur(t *testing.T) {
	m := New(itemColumns(), 10)
	m.SetRows(makeItems("alpha", "beta"))

	m, _ = m.Update(keyRunes("/"))
	assert.True(t, m.SearchFocused())

	m, _ = m.Update(keyRunes("al"))
	assert.Len(t, m.Filtered(), 1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.SearchFocused())
}
