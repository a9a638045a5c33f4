// Package table implements the shared data table: free-text filtering,
// per-column sorting and fixed-size pagination over an in-memory row
// collection. Collections here are small (tens to low hundreds of rows), so
// filtering is a plain full-row scan and the pager enumerates every page.
package table

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/ui/styles"
)

// Row is anything with a stable identifier.
type Row interface {
	RowID() string
}

// Column describes one table column. Key is the plain field accessor used
// for ordering; Render derives the display text. Columns without a Key are
// derived and never sortable, whatever their Sortable flag says.
type Column[T Row] struct {
	Header   string
	Key      func(T) any
	Render   func(T) string
	Sortable bool
}

type direction int

const (
	unsorted direction = iota
	ascending
	descending
)

// Model is the table state for one screen.
type Model[T Row] struct {
	columns  []Column[T]
	rows     []T
	search   textinput.Model
	styles   *styles.Styles
	width    int

	sortCol int // index into columns, -1 when unsorted
	sortDir direction

	page      int // 1-based, like the pager buttons
	pageSize  int
	cursor    int // row cursor within the current page
	colCursor int // header cursor for choosing the sort column

	searchFocused bool
}

// New creates a table with the given columns and page size.
func New[T Row](columns []Column[T], pageSize int) Model[T] {
	if pageSize <= 0 {
		pageSize = 10
	}

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	return Model[T]{
		columns:  columns,
		search:   search,
		styles:   styles.NewStyles(),
		sortCol:  -1,
		page:     1,
		pageSize: pageSize,
	}
}

// SetRows replaces the backing collection. The page index is deliberately
// left alone; an out-of-range page shows empty until the user moves.
func (m *Model[T]) SetRows(rows []T) {
	m.rows = rows
	m.clampCursor()
}

// Rows returns the unfiltered backing collection.
func (m *Model[T]) Rows() []T { return m.rows }

// SetWidth sets the rendering width.
func (m *Model[T]) SetWidth(w int) {
	m.width = w
}

// SearchFocused reports whether keystrokes are going to the filter input.
func (m *Model[T]) SearchFocused() bool { return m.searchFocused }

// FocusSearch moves input focus to the filter box.
func (m *Model[T]) FocusSearch() tea.Cmd {
	m.searchFocused = true
	m.search.Focus()
	return textinput.Blink
}

// SetSearch replaces the filter term directly.
func (m *Model[T]) SetSearch(term string) {
	m.search.SetValue(term)
}

// Filtered returns the full filtered, sorted collection before pagination.
func (m *Model[T]) Filtered() []T {
	return m.sorted(m.filtered())
}

// PageRows returns the rows on the current page.
func (m *Model[T]) PageRows() []T {
	rows := m.Filtered()
	start := (m.page - 1) * m.pageSize
	if start >= len(rows) || start < 0 {
		return nil
	}
	end := start + m.pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageCount returns ceil(filtered/pageSize).
func (m *Model[T]) PageCount() int {
	n := len(m.Filtered())
	if n == 0 {
		return 0
	}
	return (n + m.pageSize - 1) / m.pageSize
}

// Page returns the current 1-based page index.
func (m *Model[T]) Page() int { return m.page }

// SetPage jumps to a page. It does not clamp; the quirk of showing an empty
// out-of-range page after filtering is part of the contract.
func (m *Model[T]) SetPage(p int) {
	if p >= 1 {
		m.page = p
	}
}

// Selected returns the row under the cursor, if any.
func (m *Model[T]) Selected() (T, bool) {
	var zero T
	rows := m.PageRows()
	if len(rows) == 0 || m.cursor >= len(rows) {
		return zero, false
	}
	return rows[m.cursor], true
}

// filtered keeps rows where any exported field's string form contains the
// search term, case-insensitively. An empty term keeps everything.
func (m *Model[T]) filtered() []T {
	term := strings.ToLower(m.search.Value())
	if term == "" {
		return m.rows
	}

	var out []T
	for _, row := range m.rows {
		if rowMatches(row, term) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches[T Row](row T, term string) bool {
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return strings.Contains(strings.ToLower(fmt.Sprintf("%v", row)), term)
	}
	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).IsExported() {
			continue
		}
		s := strings.ToLower(fmt.Sprintf("%v", v.Field(i).Interface()))
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// sorted orders a copy of rows by the active sort column. Unsorted returns
// the collection in insertion order.
func (m *Model[T]) sorted(rows []T) []T {
	if m.sortCol < 0 || m.sortDir == unsorted {
		return rows
	}
	col := m.columns[m.sortCol]
	if col.Key == nil {
		return rows
	}

	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(col.Key(out[i]), col.Key(out[j]))
		if m.sortDir == descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compare uses the native ordering of the underlying value type. No locale
// collation, no custom comparators.
func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case int64:
		bv := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// CycleSort advances the sort state of column idx: ascending, descending,
// then back to insertion order. No-op for derived or unsortable columns.
func (m *Model[T]) CycleSort(idx int) {
	if idx < 0 || idx >= len(m.columns) {
		return
	}
	col := m.columns[idx]
	if !col.Sortable || col.Key == nil {
		return
	}

	if m.sortCol != idx {
		m.sortCol = idx
		m.sortDir = ascending
		return
	}
	switch m.sortDir {
	case ascending:
		m.sortDir = descending
	case descending:
		m.sortCol = -1
		m.sortDir = unsorted
	default:
		m.sortDir = ascending
	}
}

func (m *Model[T]) clampCursor() {
	rows := m.PageRows()
	if m.cursor >= len(rows) {
		m.cursor = max(0, len(rows)-1)
	}
}

// Update handles table keys. Screens forward messages here when the table
// has focus; keys they reserve for themselves never arrive.
func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searchFocused {
		switch keyMsg.String() {
		case "esc", "enter":
			m.searchFocused = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.clampCursor()
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "/":
		return m, m.FocusSearch()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.PageRows())-1 {
			m.cursor++
		}
	case "left", "h":
		if m.colCursor > 0 {
			m.colCursor--
		}
	case "right", "l":
		if m.colCursor < len(m.columns)-1 {
			m.colCursor++
		}
	case "s":
		m.CycleSort(m.colCursor)
		m.clampCursor()
	case "[", "pgup":
		if m.page > 1 {
			m.page--
			m.cursor = 0
		}
	case "]", "pgdown":
		if m.page < m.PageCount() {
			m.page++
			m.cursor = 0
		}
	}
	return m, nil
}

// View renders the search box, header, rows and pager.
func (m Model[T]) View() string {
	s := m.styles

	searchStyle := s.Input
	if m.searchFocused {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Render(m.search.View())

	var b strings.Builder
	b.WriteString(searchBox)
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	rows := m.PageRows()
	if len(rows) == 0 {
		b.WriteString(s.TitleMuted.Render("No results"))
	} else {
		start := (m.page - 1) * m.pageSize
		var lines []string
		for i, row := range rows {
			lines = append(lines, m.renderRow(start+i+1, row, i == m.cursor))
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	b.WriteString("\n")
	b.WriteString(m.renderPager())
	return b.String()
}

func (m Model[T]) renderHeader() string {
	s := m.styles

	cells := []string{s.TitleMuted.Width(m.columnWidth(0)).Render("S.No")}
	for i, col := range m.columns {
		label := col.Header
		if col.Sortable && col.Key != nil {
			switch {
			case m.sortCol == i && m.sortDir == ascending:
				label += " ↑"
			case m.sortCol == i && m.sortDir == descending:
				label += " ↓"
			default:
				label += " ↕"
			}
		}
		style := s.TitleMuted
		if i == m.colCursor {
			style = s.Title
		}
		cells = append(cells, style.Width(m.columnWidth(i+1)).Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model[T]) renderRow(serial int, row T, selected bool) string {
	s := m.styles

	cells := []string{fmt.Sprintf("%-*d", m.columnWidth(0), serial)}
	for i, col := range m.columns {
		text := ""
		switch {
		case col.Render != nil:
			text = col.Render(row)
		case col.Key != nil:
			text = fmt.Sprintf("%v", col.Key(row))
		}
		cells = append(cells, pad(text, m.columnWidth(i+1)))
	}

	line := strings.Join(cells, "")
	if selected {
		return s.ListSelected.Render(line)
	}
	return s.ListItem.Render(line)
}

func (m Model[T]) renderPager() string {
	s := m.styles

	total := len(m.Filtered())
	pages := m.PageCount()
	if pages <= 1 {
		return s.TitleMuted.Render(fmt.Sprintf("%d result(s)", total))
	}

	start := (m.page-1)*m.pageSize + 1
	end := min(m.page*m.pageSize, total)
	if start > total {
		start, end = 0, 0
	}

	var buttons []string
	for p := 1; p <= pages; p++ {
		label := fmt.Sprintf(" %d ", p)
		if p == m.page {
			buttons = append(buttons, s.ButtonPrimary.Render(label))
		} else {
			buttons = append(buttons, s.TitleMuted.Render(label))
		}
	}

	summary := s.TitleMuted.Render(
		fmt.Sprintf("Showing %d to %d of %d results", start, end, total))
	return lipgloss.JoinHorizontal(lipgloss.Center,
		summary, "  ", strings.Join(buttons, " "))
}

// columnWidth splits the available width evenly, with a fixed slot for S.No.
func (m Model[T]) columnWidth(i int) int {
	if i == 0 {
		return 6
	}
	w := m.width
	if w <= 0 {
		w = styles.MaxWidth
	}
	per := (w - 6) / len(m.columns)
	if per < 8 {
		per = 8
	}
	return per
}

func pad(s string, w int) string {
	r := []rune(s)
	if len(r) > w-1 {
		if w > 2 {
			return string(r[:w-2]) + "… "
		}
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}
